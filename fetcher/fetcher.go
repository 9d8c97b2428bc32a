// Package fetcher retrieves Amazon product pages one GET at a time.
package fetcher

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aluiziolira/go-amazon-bsr/config"
)

// browserHeaders mirrors a desktop Chrome navigation request so product
// pages serve the full details markup instead of a robot check stub.
var browserHeaders = map[string]string{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.9",
	"Accept-Encoding":           "gzip, deflate",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Cache-Control":             "max-age=0",
}

// Fetcher issues one synchronous GET per product URL through a colly
// collector. Repeated URLs within a run are served from an LRU page cache.
// No retries and no cross-request cookie or session state.
type Fetcher struct {
	cfg       *config.Config
	collector *colly.Collector
	cache     *lru.Cache[string, []byte]
	Metrics   *Metrics

	// Fetch serializes collector use; the capture fields hold the outcome
	// of the request in flight.
	mu       sync.Mutex
	body     []byte
	status   int
	fetchErr error
}

// New builds a fetcher configured from cfg.
func New(cfg *config.Config) (*Fetcher, error) {
	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = true
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	cache, err := lru.New[string, []byte](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create page cache: %w", err)
	}

	f := &Fetcher{
		cfg:       cfg,
		collector: collector,
		cache:     cache,
		Metrics:   NewMetrics(),
	}

	collector.OnRequest(func(r *colly.Request) {
		for name, value := range browserHeaders {
			r.Headers.Set(name, value)
		}
	})
	collector.OnResponse(func(r *colly.Response) {
		f.body = r.Body
		f.status = r.StatusCode
	})
	collector.OnError(func(r *colly.Response, err error) {
		f.fetchErr = err
		if r != nil {
			f.status = r.StatusCode
		}
	})

	return f, nil
}

// Fetch performs one GET for url and returns the raw page markup. Failures
// come back as the typed errors in this package; error responses are never
// cached.
func (f *Fetcher) Fetch(url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if body, ok := f.cache.Get(url); ok {
		f.Metrics.IncCacheHit()
		return body, nil
	}

	f.body, f.status, f.fetchErr = nil, 0, nil

	f.Metrics.IncFetch("started")
	start := time.Now()
	visitErr := f.collector.Visit(url)
	f.Metrics.ObserveDuration(time.Since(start))

	err := f.fetchErr
	if err == nil {
		err = visitErr
	}
	if err != nil || f.status < http.StatusOK || f.status >= http.StatusMultipleChoices || f.body == nil {
		classified := classifyError(err, f.status)
		f.Metrics.IncError(ErrorLabel(classified))
		return nil, classified
	}

	f.Metrics.IncFetch("completed")
	f.cache.Add(url, f.body)
	return f.body, nil
}
