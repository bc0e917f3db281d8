// Package pipeline validates trend records and persists them to disk.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aluiziolira/baidu-hot-search/models"
	"github.com/aluiziolira/baidu-hot-search/parser"
)

var (
	// ErrPipelineClosed is returned when Process is called after Close.
	ErrPipelineClosed = errors.New("pipeline: closed")
	// ErrNoValidRecords is returned when every submitted record is rejected.
	ErrNoValidRecords = errors.New("pipeline: no valid records")
)

// dateLayout names one output file per calendar day.
const dateLayout = "20060102"

// OutputWriter defines the interface for data output.
type OutputWriter interface {
	Write(records []models.TrendRecord) error
	Close() error
	Validate() error
	Filename() string
}

// OutputFilename derives the file path for now's date. Runs on the same day
// produce the same name and overwrite each other.
func OutputFilename(dir, prefix string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.csv", prefix, now.Format(dateLayout)))
}

// Pipeline validates records and hands them to the writer in one batch.
type Pipeline struct {
	writer  OutputWriter
	metrics metrics
	closed  bool
	err     error
}

// NewPipeline builds a pipeline around writer.
func NewPipeline(writer OutputWriter) *Pipeline {
	return &Pipeline{
		writer:  writer,
		metrics: newMetrics(),
	}
}

// Process validates records and writes the accepted ones in order.
func (p *Pipeline) Process(records ...models.TrendRecord) error {
	if p.closed {
		return ErrPipelineClosed
	}
	if len(records) == 0 {
		return nil
	}

	batch := make([]models.TrendRecord, 0, len(records))
	for i := range records {
		if err := parser.ValidateRecord(&records[i]); err != nil {
			p.metrics.addValidation("invalid_record")
			slog.Warn("record rejected",
				slog.Int("position", i),
				slog.String("rank", records[i].Rank.String()),
				slog.Any("error", err),
			)
			continue
		}
		batch = append(batch, records[i])
	}
	if len(batch) == 0 {
		p.err = fmt.Errorf("%w: %d rejected", ErrNoValidRecords, len(records))
		return p.err
	}

	if err := p.writer.Write(batch); err != nil {
		p.err = fmt.Errorf("write batch: %w", err)
		return p.err
	}
	p.metrics.processed += int64(len(batch))
	return nil
}

// Close validates the output and releases the writer. It is safe to call
// more than once.
func (p *Pipeline) Close() error {
	if p.closed {
		return p.err
	}
	p.closed = true

	validateErr := p.writer.Validate()
	if err := p.writer.Close(); err != nil {
		p.err = errors.Join(p.err, fmt.Errorf("close writer: %w", err))
	}
	if validateErr != nil {
		p.err = errors.Join(p.err, fmt.Errorf("validate output: %w", validateErr))
	}
	return p.err
}

// Err returns the first error encountered during processing.
func (p *Pipeline) Err() error {
	return p.err
}

// GetMetrics returns a snapshot of the internal counters.
func (p *Pipeline) GetMetrics() map[string]interface{} {
	return p.metrics.snapshot()
}

type metrics struct {
	processed  int64
	validation map[string]int
}

func newMetrics() metrics {
	return metrics{
		validation: make(map[string]int),
	}
}

func (m *metrics) addValidation(kind string) {
	m.validation[kind]++
}

func (m *metrics) snapshot() map[string]interface{} {
	copyValidation := make(map[string]int, len(m.validation))
	for k, v := range m.validation {
		copyValidation[k] = v
	}

	return map[string]interface{}{
		"processed_records": m.processed,
		"validation_errors": copyValidation,
	}
}
