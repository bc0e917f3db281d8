package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aluiziolira/baidu-hot-search/config"
	"github.com/aluiziolira/baidu-hot-search/models"
	"github.com/aluiziolira/baidu-hot-search/pipeline"
	"github.com/aluiziolira/baidu-hot-search/report"
	"github.com/aluiziolira/baidu-hot-search/scraper"
)

func main() {
	slog.SetDefault(newLogger(os.Stderr))

	if _, err := run(context.Background(), config.DefaultConfig(), os.Stdout, nil, time.Now); err != nil {
		slog.Error("run failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// run executes one fetch, extract and report cycle. Transport failures and
// page structure changes are reported on stdout and are not returned as
// errors. A nil transport keeps the collector's default.
func run(ctx context.Context, cfg *config.Config, stdout io.Writer, transport http.RoundTripper, now func() time.Time) (*models.RunResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	s, err := scraper.NewScraper(cfg, stdout)
	if err != nil {
		return nil, fmt.Errorf("initialising scraper: %w", err)
	}
	if transport != nil {
		s.WithTransport(transport)
	}
	s.WithClock(now)

	rep := report.New(stdout, cfg.TopN)
	result := &models.RunResult{StartTime: now()}

	records, err := s.Scrape(ctx)
	if err != nil {
		result.EndTime = now()
		result.ErrorKind = scraper.ErrorKind(err)

		var transportErr *scraper.TransportError
		switch {
		case errors.As(err, &transportErr):
			rep.FetchFailed(transportErr.Err)
			return result, nil
		case errors.Is(err, scraper.ErrStructureMismatch):
			rep.StructureMismatch()
			return result, nil
		default:
			return nil, fmt.Errorf("scraping failed: %w", err)
		}
	}
	result.Records = records
	if len(records) == 0 {
		result.EndTime = now()
		return result, nil
	}

	rep.Top(records)

	filename := pipeline.OutputFilename(cfg.OutputDir, cfg.FilenamePrefix, now())
	writer, err := pipeline.NewCSVWriter(filename)
	if err != nil {
		return nil, fmt.Errorf("creating writer: %w", err)
	}

	p := pipeline.NewPipeline(writer)
	if err := p.Process(records...); err != nil {
		p.Close()
		if removeErr := os.Remove(filename); removeErr != nil {
			slog.Warn("remove incomplete output", slog.String("file", filename), slog.Any("error", removeErr))
		}
		return nil, fmt.Errorf("persisting records: %w", err)
	}
	if err := p.Close(); err != nil {
		return nil, fmt.Errorf("closing output: %w", err)
	}

	result.OutputFile = writer.Filename()
	result.EndTime = now()
	rep.Saved(result.OutputFile)

	slog.Debug("run complete",
		slog.Int("records", len(result.Records)),
		slog.Any("pipeline", p.GetMetrics()),
		slog.String("output", result.OutputFile),
		slog.Duration("duration", result.EndTime.Sub(result.StartTime)),
	)
	return result, nil
}

func newLogger(f *os.File) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var handler slog.Handler
	if isTerminal(f) {
		handler = slog.NewTextHandler(f, opts)
	} else {
		handler = slog.NewJSONHandler(f, opts)
	}
	return slog.New(handler)
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
