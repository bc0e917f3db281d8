// Package report renders run output for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/aluiziolira/baidu-hot-search/models"
)

const separatorWidth = 40

// Reporter writes human-readable run output.
type Reporter struct {
	out  io.Writer
	topN int
}

// New returns a reporter printing at most topN rows.
func New(out io.Writer, topN int) *Reporter {
	if out == nil {
		out = io.Discard
	}
	if topN <= 0 {
		topN = 10
	}
	return &Reporter{out: out, topN: topN}
}

// Top prints the first topN records as a table. Nothing is printed for an
// empty slice.
func (r *Reporter) Top(records []models.TrendRecord) {
	if len(records) == 0 {
		return
	}
	limit := min(r.topN, len(records))

	separator := strings.Repeat("=", separatorWidth)
	fmt.Fprintln(r.out, "\n"+separator)
	fmt.Fprintf(r.out, "Baidu hot search board (Top %d):\n", r.topN)
	fmt.Fprintln(r.out, separator)

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Rank", "Title", "Heat Index", "Captured At"})
	for _, record := range records[:limit] {
		t.AppendRow(table.Row{
			record.Rank.String(),
			record.Title.String(),
			record.HeatIndex.String(),
			record.CapturedAtText(),
		})
	}
	t.Render()
}

// Saved confirms the output file.
func (r *Reporter) Saved(filename string) {
	fmt.Fprintf(r.out, "\nData saved to %s\n", filename)
}

// FetchFailed reports a transport error.
func (r *Reporter) FetchFailed(err error) {
	fmt.Fprintf(r.out, "Request failed, check the network connection or URL: %v\n", err)
}

// StructureMismatch reports a page without the list container.
func (r *Reporter) StructureMismatch() {
	fmt.Fprintln(r.out, "Error: hot search list container not found. The Baidu page structure may have changed.")
}
