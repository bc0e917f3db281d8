package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/aluiziolira/baidu-hot-search/config"
	"github.com/aluiziolira/baidu-hot-search/models"
	"github.com/gocolly/colly/v2"
)

// Scraper wraps the colly collector used to fetch the hot-search board.
type Scraper struct {
	cfg       *config.Config
	collector *colly.Collector
	out       io.Writer
	now       func() time.Time
	Metrics   *Metrics
}

// NewScraper builds a scraper instance configured from cfg. Progress lines
// are written to out.
func NewScraper(cfg *config.Config, out io.Writer) (*Scraper, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}

	// No domain filter: the board may redirect to a verification host and
	// that page must reach extraction.
	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)

	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = true
	collector.ParseHTTPErrorResponse = true
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        1,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	if out == nil {
		out = io.Discard
	}

	return &Scraper{
		cfg:       cfg,
		collector: collector,
		out:       out,
		now:       time.Now,
		Metrics:   NewMetrics(),
	}, nil
}

// WithTransport replaces the HTTP transport used by the collector.
func (s *Scraper) WithTransport(rt http.RoundTripper) {
	s.collector.WithTransport(rt)
}

// WithClock overrides the clock used to stamp extracted records.
func (s *Scraper) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Scrape fetches the board and extracts its records. The body is not parsed
// when the fetch fails.
func (s *Scraper) Scrape(ctx context.Context) ([]models.TrendRecord, error) {
	body, err := s.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	records, err := Extract(body, s.now)
	if err != nil {
		s.Metrics.IncError(ErrorKind(err))
		return nil, err
	}
	s.Metrics.AddRecords(len(records))
	return records, nil
}

// Fetch issues a single GET for the configured URL and returns the raw body.
// Every failure is reported as a *TransportError.
func (s *Scraper) Fetch(ctx context.Context) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		body       []byte
		statusCode int
		fetchErr   error
	)

	c := s.collector.Clone()
	c.OnRequest(func(r *colly.Request) {
		r.Ctx.Put("start", time.Now())
		s.Metrics.IncRequest("started")
	})
	c.OnResponse(func(r *colly.Response) {
		statusCode = r.StatusCode
		if r.StatusCode >= http.StatusBadRequest {
			fetchErr = fmt.Errorf("unexpected status %d: %s", r.StatusCode, http.StatusText(r.StatusCode))
		} else {
			body = append([]byte(nil), r.Body...)
		}
		if start, ok := r.Ctx.GetAny("start").(time.Time); ok {
			s.Metrics.ObserveDuration(time.Since(start))
		}
		s.Metrics.IncRequest("completed")
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			statusCode = r.StatusCode
		}
		fetchErr = err
	})

	fmt.Fprintf(s.out, "Requesting Baidu hot search board: %s...\n", s.cfg.BaseURL)

	done := make(chan error, 1)
	go func() {
		done <- c.Visit(s.cfg.BaseURL)
	}()

	select {
	case <-ctx.Done():
		return nil, s.transportError(ctx.Err(), 0)
	case err := <-done:
		if err == nil {
			err = fetchErr
		}
		if err != nil {
			return nil, s.transportError(err, statusCode)
		}
	}

	slog.Debug("board fetched",
		slog.String("url", s.cfg.BaseURL),
		slog.Int("status", statusCode),
		slog.Int("bytes", len(body)),
	)
	return body, nil
}

func (s *Scraper) transportError(err error, statusCode int) error {
	classified := classifyError(err, statusCode)
	category := errorTypeLabel(classified)
	s.Metrics.IncError(category)
	slog.Error("request error",
		slog.String("url", s.cfg.BaseURL),
		slog.String("category", category),
		slog.Int("status", statusCode),
		slog.Any("error", err),
	)
	return &TransportError{URL: s.cfg.BaseURL, Err: classified}
}
