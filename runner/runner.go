// Package runner processes product URLs strictly in sequence.
package runner

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aluiziolira/go-amazon-bsr/fetcher"
	"github.com/aluiziolira/go-amazon-bsr/models"
	"github.com/aluiziolira/go-amazon-bsr/parser"
)

// PageFetcher retrieves raw markup for one product URL.
type PageFetcher interface {
	Fetch(url string) ([]byte, error)
}

// Runner walks a URL list one page at a time, pausing between requests to
// keep request frequency down. Per-URL failures become error records and
// never stop the batch.
type Runner struct {
	fetcher PageFetcher
	delay   time.Duration
	metrics *fetcher.Metrics

	out   io.Writer
	sleep func(time.Duration)
}

// Option adjusts runner construction.
type Option func(*Runner)

// WithMetrics records extraction counters on the fetcher's registry.
func WithMetrics(m *fetcher.Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithOutput redirects progress output, which defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.out = w
	}
}

// New builds a runner that waits delay between consecutive requests.
func New(f PageFetcher, delay time.Duration, opts ...Option) *Runner {
	r := &Runner{
		fetcher: f,
		delay:   delay,
		out:     os.Stdout,
		sleep:   time.Sleep,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes every URL in order and returns one record per URL. The
// inter-request delay is skipped after the final URL.
func (r *Runner) Run(urls []string) *models.BatchResult {
	result := &models.BatchResult{
		Records:      make([]*models.ProductRecord, 0, len(urls)),
		StartTime:    time.Now(),
		ErrorsByType: make(map[string]int),
	}

	total := len(urls)
	fmt.Fprintf(r.out, "\nStarting to process %d products...\n", total)
	fmt.Fprintf(r.out, "Estimated time: ~%.1f minutes\n\n", float64(total)*r.delay.Minutes())

	for i, url := range urls {
		fmt.Fprintf(r.out, "[%d/%d] Processing: %s...\n", i+1, total, truncate(url, 60))

		rec, errLabel := r.processURL(url)
		result.Records = append(result.Records, rec)

		if rec.Status == models.StatusSuccess {
			result.SuccessCount++
			fmt.Fprintf(r.out, "  ✓ BSR: #%s in %s\n", rec.PrimaryRankFormatted, rec.PrimaryCategory)
		} else {
			result.ErrorCount++
			result.ErrorsByType[errLabel]++
			fmt.Fprintf(r.out, "  ✗ Error: %s\n", rec.Error)
		}

		if i < total-1 {
			r.sleep(r.delay)
		}
	}

	result.EndTime = time.Now()
	return result
}

// processURL returns the record for one URL and, on failure, the error
// bucket: the transport label for fetch failures or "parse" otherwise.
func (r *Runner) processURL(url string) (*models.ProductRecord, string) {
	body, err := r.fetcher.Fetch(url)
	if err != nil {
		return models.NewErrorRecord(url, err), fetcher.ErrorLabel(err)
	}

	rec := r.extractRecord(url, body)
	if rec.Status == models.StatusError {
		return rec, "parse"
	}
	return rec, ""
}

// extractRecord converts markup into a record, turning any extraction panic
// into a parse-failure record so a malformed page cannot abort the batch.
func (r *Runner) extractRecord(url string, body []byte) (rec *models.ProductRecord) {
	defer func() {
		if p := recover(); p != nil {
			rec = models.NewErrorRecord(url, fmt.Errorf("parsing error: %v", p))
		}
	}()

	ex, err := parser.ExtractProduct(body, url)
	if err != nil {
		return models.NewErrorRecord(url, fmt.Errorf("parsing error: %w", err))
	}

	r.metrics.AddRankings(len(ex.Rankings))
	return models.NewSuccessRecord(url, ex.ASIN, ex.Title, ex.Rankings)
}

// truncate shortens s to at most n runes, never splitting a multi-byte
// character mid-sequence.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
