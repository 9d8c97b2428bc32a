package runner

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/aluiziolira/go-amazon-bsr/fetcher"
	"github.com/aluiziolira/go-amazon-bsr/models"
)

type stubFetcher struct {
	pages map[string]string
	errs  map[string]error
	calls []string
}

func (s *stubFetcher) Fetch(url string) ([]byte, error) {
	s.calls = append(s.calls, url)
	if err, ok := s.errs[url]; ok {
		return nil, err
	}
	return []byte(s.pages[url]), nil
}

func rankedPage(rank, category string) string {
	return fmt.Sprintf(`<html><body>
<span id="productTitle">Product</span>
<table><tr><th>Best Sellers Rank</th><td>#%s in %s</td></tr></table>
</body></html>`, rank, category)
}

func TestRunProducesOneRecordPerURL(t *testing.T) {
	urls := []string{
		"https://www.amazon.com/dp/B000000001",
		"https://www.amazon.com/dp/B000000002",
		"https://www.amazon.com/dp/B000000003",
	}
	stub := &stubFetcher{
		pages: map[string]string{
			urls[0]: rankedPage("1,234", "Electronics"),
			urls[2]: rankedPage("7", "Books"),
		},
		errs: map[string]error{
			urls[1]: fetcher.ErrTimeout{Err: fmt.Errorf("deadline exceeded")},
		},
	}

	var out bytes.Buffer
	var sleeps []time.Duration
	r := New(stub, 3*time.Second, WithOutput(&out))
	r.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }

	result := r.Run(urls)

	if len(result.Records) != 3 {
		t.Fatalf("records = %d, want 3", len(result.Records))
	}
	if result.SuccessCount != 2 || result.ErrorCount != 1 {
		t.Fatalf("success=%d errors=%d, want 2/1", result.SuccessCount, result.ErrorCount)
	}
	if result.ErrorsByType["timeout"] != 1 {
		t.Fatalf("errors by type = %v, want one timeout", result.ErrorsByType)
	}

	first := result.Records[0]
	if first.Status != models.StatusSuccess || first.ASIN != "B000000001" {
		t.Fatalf("first record = %+v", first)
	}
	if first.PrimaryRank == nil || *first.PrimaryRank != 1234 {
		t.Fatalf("first primary rank = %v, want 1234", first.PrimaryRank)
	}

	failed := result.Records[1]
	if failed.Status != models.StatusError {
		t.Fatalf("second record status = %q, want error", failed.Status)
	}
	if failed.Error == "" || failed.PrimaryRank != nil {
		t.Fatalf("error record malformed: %+v", failed)
	}

	if result.Records[2].PrimaryCategory != "Books" {
		t.Fatalf("third record category = %q", result.Records[2].PrimaryCategory)
	}
}

func TestRunDelaysBetweenRequestsOnly(t *testing.T) {
	urls := []string{"http://a.test", "http://b.test", "http://c.test"}
	stub := &stubFetcher{pages: map[string]string{
		"http://a.test": rankedPage("1", "A"),
		"http://b.test": rankedPage("2", "B"),
		"http://c.test": rankedPage("3", "C"),
	}}

	var sleeps []time.Duration
	r := New(stub, 3*time.Second, WithOutput(&bytes.Buffer{}))
	r.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }

	r.Run(urls)

	if len(sleeps) != 2 {
		t.Fatalf("sleeps = %d, want 2 (none after final URL)", len(sleeps))
	}
	for _, d := range sleeps {
		if d != 3*time.Second {
			t.Fatalf("sleep duration = %v, want 3s", d)
		}
	}
}

func TestRunContinuesAfterFailure(t *testing.T) {
	urls := []string{"http://bad.test", "http://good.test"}
	stub := &stubFetcher{
		pages: map[string]string{"http://good.test": rankedPage("5", "Toys")},
		errs:  map[string]error{"http://bad.test": fmt.Errorf("connection reset")},
	}

	var sleeps int
	r := New(stub, time.Second, WithOutput(&bytes.Buffer{}))
	r.sleep = func(time.Duration) { sleeps++ }

	result := r.Run(urls)

	if len(stub.calls) != 2 {
		t.Fatalf("fetch calls = %d, want 2 (batch must continue)", len(stub.calls))
	}
	if sleeps != 1 {
		t.Fatalf("sleeps = %d, want 1 (standard delay after failure)", sleeps)
	}
	if result.Records[1].Status != models.StatusSuccess {
		t.Fatalf("record after failure = %+v", result.Records[1])
	}
}

func TestRunProgressOutput(t *testing.T) {
	urls := []string{"http://a.test", "http://bad.test"}
	stub := &stubFetcher{
		pages: map[string]string{"http://a.test": rankedPage("1,234", "Electronics")},
		errs:  map[string]error{"http://bad.test": fmt.Errorf("connection refused")},
	}

	var out bytes.Buffer
	r := New(stub, 0, WithOutput(&out))
	r.sleep = func(time.Duration) {}

	r.Run(urls)

	progress := out.String()
	for _, want := range []string{
		"Starting to process 2 products",
		"[1/2] Processing: http://a.test",
		"✓ BSR: #1,234 in Electronics",
		"[2/2] Processing: http://bad.test",
		"✗ Error: connection refused",
	} {
		if !strings.Contains(progress, want) {
			t.Fatalf("progress output missing %q:\n%s", want, progress)
		}
	}
}

func TestRunTruncatesLongURLs(t *testing.T) {
	long := "http://example.test/" + strings.Repeat("x", 100)
	stub := &stubFetcher{pages: map[string]string{long: rankedPage("1", "A")}}

	var out bytes.Buffer
	r := New(stub, 0, WithOutput(&out))
	r.sleep = func(time.Duration) {}

	r.Run([]string{long})

	if strings.Contains(out.String(), long) {
		t.Fatalf("long URL should be truncated in progress output")
	}
	if !strings.Contains(out.String(), long[:60]+"...") {
		t.Fatalf("truncated URL missing from output:\n%s", out.String())
	}
}

func TestRunTruncatesMultiByteURLsCleanly(t *testing.T) {
	long := "http://example.test/" + strings.Repeat("ü", 100)
	stub := &stubFetcher{pages: map[string]string{long: rankedPage("1", "A")}}

	var out bytes.Buffer
	r := New(stub, 0, WithOutput(&out))
	r.sleep = func(time.Duration) {}

	r.Run([]string{long})

	progress := out.String()
	if !utf8.ValidString(progress) {
		t.Fatalf("progress output contains a split rune:\n%q", progress)
	}
	want := "http://example.test/" + strings.Repeat("ü", 40) + "..."
	if !strings.Contains(progress, want) {
		t.Fatalf("truncated URL missing from output:\n%s", progress)
	}
}
