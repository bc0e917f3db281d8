// Package models defines data structures for the hot-search scraper.
package models

import "time"

// Placeholder is rendered for any field the extractor could not locate.
const Placeholder = "N/A"

// CapturedAtLayout is the textual form of TrendRecord.CapturedAt.
const CapturedAtLayout = "2006-01-02 15:04:05"

// Field is a scraped text value that may be missing from the page.
type Field struct {
	Value string
	Found bool
}

// Found wraps a located value.
func Found(value string) Field {
	return Field{Value: value, Found: true}
}

// Missing returns a field that renders as Placeholder.
func Missing() Field {
	return Field{}
}

func (f Field) String() string {
	if !f.Found {
		return Placeholder
	}
	return f.Value
}

// TrendRecord is one entry of the hot-search board. Records are passed by
// value and never modified after extraction.
type TrendRecord struct {
	Rank       Field     `csv:"rank"`
	Title      Field     `csv:"title"`
	HeatIndex  Field     `csv:"heat_index"`
	CapturedAt time.Time `csv:"captured_at"`
}

// CapturedAtText formats the capture time with second precision.
func (r TrendRecord) CapturedAtText() string {
	return r.CapturedAt.Format(CapturedAtLayout)
}

// Row returns the record fields in output order.
func (r TrendRecord) Row() []string {
	return []string{
		r.Rank.String(),
		r.Title.String(),
		r.HeatIndex.String(),
		r.CapturedAtText(),
	}
}

// RunResult summarises one invocation.
type RunResult struct {
	Records    []TrendRecord
	StartTime  time.Time
	EndTime    time.Time
	OutputFile string
	ErrorKind  string
}
