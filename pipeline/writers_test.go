package pipeline

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aluiziolira/baidu-hot-search/models"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func testRecord(rank, title string) models.TrendRecord {
	return models.TrendRecord{
		Rank:       models.Found(rank),
		Title:      models.Found(title),
		HeatIndex:  models.Found("4950000"),
		CapturedAt: time.Date(2026, 3, 8, 9, 30, 15, 0, time.UTC),
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if !bytes.HasPrefix(data, utf8BOM) {
		t.Fatalf("csv file must start with a UTF-8 byte-order mark, got % x", data[:min(len(data), 3)])
	}

	records, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	return records
}

func TestCSVWriterWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hot.csv")

	writer, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("create csv writer: %v", err)
	}

	missing := models.TrendRecord{
		Rank:       models.Found("2"),
		Title:      models.Missing(),
		HeatIndex:  models.Missing(),
		CapturedAt: time.Date(2026, 3, 8, 9, 30, 16, 0, time.UTC),
	}
	if err := writer.Write([]models.TrendRecord{testRecord("1", "春节档票房创新高, \"官方\"回应"), missing}); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if err := writer.Validate(); err != nil {
		t.Fatalf("validate csv: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close csv: %v", err)
	}

	records := readCSV(t, path)
	if len(records) != 3 {
		t.Fatalf("records=%d, want 3", len(records))
	}
	for i, column := range Header {
		if records[0][i] != column {
			t.Fatalf("unexpected header: %v", records[0])
		}
	}

	want := []string{"1", "春节档票房创新高, \"官方\"回应", "4950000", "2026-03-08 09:30:15"}
	for i := range want {
		if records[1][i] != want[i] {
			t.Fatalf("row 1 = %v, want %v", records[1], want)
		}
	}
	if records[2][1] != models.Placeholder || records[2][2] != models.Placeholder {
		t.Fatalf("row 2 = %v, want placeholders", records[2])
	}
}

func TestCSVWriterOverwritesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hot.csv")
	if err := os.WriteFile(path, []byte("stale,data\nthat,is\nlonger,than\nthe,new\nfile,content\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	writer, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("create csv writer: %v", err)
	}
	if err := writer.Write([]models.TrendRecord{testRecord("1", "新数据")}); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close csv: %v", err)
	}

	records := readCSV(t, path)
	if len(records) != 2 {
		t.Fatalf("records=%d, want 2", len(records))
	}
	if records[1][1] != "新数据" {
		t.Fatalf("row = %v", records[1])
	}
}

func TestCSVWriterCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out", "hot.csv")

	writer, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("create csv writer: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close csv: %v", err)
	}
	if writer.Filename() != path {
		t.Fatalf("filename=%q, want %q", writer.Filename(), path)
	}
	if records := readCSV(t, path); len(records) != 1 {
		t.Fatalf("records=%d, want header only", len(records))
	}
}
