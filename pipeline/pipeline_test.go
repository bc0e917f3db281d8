package pipeline

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/aluiziolira/baidu-hot-search/models"
)

type mockWriter struct {
	batches     [][]models.TrendRecord
	closed      bool
	writeErr    error
	validateErr error
}

func (mw *mockWriter) Write(records []models.TrendRecord) error {
	if mw.writeErr != nil {
		return mw.writeErr
	}
	copyBatch := make([]models.TrendRecord, len(records))
	copy(copyBatch, records)
	mw.batches = append(mw.batches, copyBatch)
	return nil
}

func (mw *mockWriter) Close() error {
	mw.closed = true
	return nil
}

func (mw *mockWriter) Validate() error {
	return mw.validateErr
}

func (mw *mockWriter) Filename() string {
	return "mock.csv"
}

func (mw *mockWriter) totalWritten() int {
	total := 0
	for _, batch := range mw.batches {
		total += len(batch)
	}
	return total
}

func TestPipelineProcessValidation(t *testing.T) {
	writer := &mockWriter{}
	p := NewPipeline(writer)

	valid := testRecord("1", "热搜一")
	invalid := models.TrendRecord{Rank: models.Found("2"), Title: models.Found("没有时间")}
	placeholders := models.TrendRecord{
		Rank:       models.Missing(),
		Title:      models.Missing(),
		HeatIndex:  models.Missing(),
		CapturedAt: time.Now(),
	}

	if err := p.Process(valid, invalid, placeholders); err != nil {
		t.Fatalf("process: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if got := writer.totalWritten(); got != 2 {
		t.Fatalf("written records = %d, want 2", got)
	}
	if !writer.closed {
		t.Fatalf("writer should be closed")
	}

	metrics := p.GetMetrics()
	if processed := metrics["processed_records"].(int64); processed != 2 {
		t.Fatalf("processed = %d, want 2", processed)
	}
	validation, ok := metrics["validation_errors"].(map[string]int)
	if !ok {
		t.Fatalf("expected validation errors map")
	}
	if validation["invalid_record"] != 1 {
		t.Fatalf("expected one invalid_record validation error, got %v", validation)
	}
}

func TestPipelinePreservesOrderInSingleBatch(t *testing.T) {
	writer := &mockWriter{}
	p := NewPipeline(writer)

	records := make([]models.TrendRecord, 0, 50)
	for i := 0; i < 50; i++ {
		records = append(records, testRecord(string(rune('A'+i%26)), "热搜"))
	}
	if err := p.Process(records...); err != nil {
		t.Fatalf("process: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if len(writer.batches) != 1 {
		t.Fatalf("batches = %d, want 1", len(writer.batches))
	}
	for i, record := range writer.batches[0] {
		if record.Rank != records[i].Rank {
			t.Fatalf("record %d out of order", i)
		}
	}
}

func TestPipelineClosed(t *testing.T) {
	p := NewPipeline(&mockWriter{})
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if err := p.Process(testRecord("1", "热搜")); !errors.Is(err, ErrPipelineClosed) {
		t.Fatalf("expected ErrPipelineClosed, got %v", err)
	}
}

func TestPipelineWriteAndValidateErrors(t *testing.T) {
	writeErr := errors.New("disk full")
	p := NewPipeline(&mockWriter{writeErr: writeErr})
	if err := p.Process(testRecord("1", "热搜")); !errors.Is(err, writeErr) {
		t.Fatalf("expected write error, got %v", err)
	}
	if !errors.Is(p.Err(), writeErr) {
		t.Fatalf("Err() = %v", p.Err())
	}

	validateErr := errors.New("csv file is empty")
	p = NewPipeline(&mockWriter{validateErr: validateErr})
	if err := p.Close(); !errors.Is(err, validateErr) {
		t.Fatalf("expected validate error, got %v", err)
	}
}

func TestOutputFilename(t *testing.T) {
	morning := time.Date(2026, 10, 14, 0, 0, 1, 0, time.Local)
	evening := time.Date(2026, 10, 14, 23, 59, 59, 0, time.Local)

	first := OutputFilename(".", "baidu_hot_searches", morning)
	second := OutputFilename(".", "baidu_hot_searches", evening)
	if first != "baidu_hot_searches_20261014.csv" {
		t.Fatalf("filename = %q", first)
	}
	if first != second {
		t.Fatalf("same-day filenames differ: %q vs %q", first, second)
	}

	nextDay := OutputFilename(".", "baidu_hot_searches", evening.Add(time.Second))
	if nextDay == first {
		t.Fatalf("next day should change the filename")
	}

	if got := OutputFilename("out", "hot", morning); got != filepath.Join("out", "hot_20261014.csv") {
		t.Fatalf("filename with dir = %q", got)
	}
}

func TestPipelineRejectsEmptyBatch(t *testing.T) {
	writer := &mockWriter{}
	p := NewPipeline(writer)

	undated := models.TrendRecord{Rank: models.Found("1"), Title: models.Found("没有时间")}
	err := p.Process(undated, undated)
	if !errors.Is(err, ErrNoValidRecords) {
		t.Fatalf("expected ErrNoValidRecords, got %v", err)
	}
	if len(writer.batches) != 0 {
		t.Fatalf("batches = %d, want 0", len(writer.batches))
	}
	if !errors.Is(p.Close(), ErrNoValidRecords) {
		t.Fatalf("Close() should report the rejected batch, got %v", p.Err())
	}

	validation := p.GetMetrics()["validation_errors"].(map[string]int)
	if validation["invalid_record"] != 2 {
		t.Fatalf("invalid_record = %d, want 2", validation["invalid_record"])
	}
}
