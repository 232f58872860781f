package fetch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

// Config controls the colly-backed client.
type Config struct {
	// BaseURL is prepended to every relative href, e.g.
	// "https://webbook.nist.gov".
	BaseURL string
	// UserAgent is sent on every request when non-empty.
	UserAgent string
	// Timeout bounds each request; zero means 10s.
	Timeout time.Duration
}

const defaultTimeout = 10 * time.Second

// Colly implements Client using a gocolly collector. Each Fetch clones the
// base collector so per-request state never leaks between calls.
type Colly struct {
	cfg           Config
	baseCollector *colly.Collector
}

// NewColly builds a client for the given catalog base URL.
func NewColly(cfg Config) (*Colly, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = true
	c.AllowURLRevisit = true
	c.WithTransport(newHTTPTransport())
	return &Colly{cfg: cfg, baseCollector: c}, nil
}

// Fetch executes a single HTTP GET for the relative href. Any transport
// error, non-2xx status, or timeout is returned as a *Failure.
func (f *Colly) Fetch(ctx context.Context, href string) (string, error) {
	url := f.cfg.BaseURL + href

	collector := f.baseCollector.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	collector.SetRequestTimeout(f.cfg.Timeout)

	var (
		body     string
		status   int
		fetchErr error
	)
	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = string(r.Body)
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return "", &Failure{Href: href, Err: ctx.Err()}
	case err := <-done:
		switch {
		case fetchErr != nil:
			return "", &Failure{Href: href, StatusCode: status, Err: fetchErr}
		case err != nil:
			return "", &Failure{Href: href, Err: err}
		case status < 200 || status >= 300:
			return "", &Failure{Href: href, StatusCode: status, Err: fmt.Errorf("unexpected status %d", status)}
		}
		return body, nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
