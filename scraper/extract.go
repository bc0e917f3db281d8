package scraper

import (
	"bytes"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/baidu-hot-search/models"
	"github.com/aluiziolira/baidu-hot-search/parser"
)

// Structural markers of the PC board markup.
const (
	containerSelector = "div.content-wrapper_86o2n"
	rankSelector      = "div.index_1Ew56"
	titleSelector     = "div.c-single-text-ellipsis"
	heatSelector      = "div.hot-index_1Bl15"
)

// Extract parses body and returns one record per container in document
// order. It returns ErrStructureMismatch when no container is present.
func Extract(body []byte, now func() time.Time) ([]models.TrendRecord, error) {
	if now == nil {
		now = time.Now
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	containers := doc.Find(containerSelector)
	if containers.Length() == 0 {
		return nil, ErrStructureMismatch
	}

	records := make([]models.TrendRecord, 0, containers.Length())
	containers.Each(func(_ int, item *goquery.Selection) {
		records = append(records, extractRecord(item, now))
	})
	return records, nil
}

func extractRecord(item *goquery.Selection, now func() time.Time) models.TrendRecord {
	return models.TrendRecord{
		Rank:       childField(item, rankSelector, parser.NormalizeText),
		Title:      childField(item, titleSelector, parser.NormalizeText),
		HeatIndex:  childField(item, heatSelector, parser.NormalizeHeatIndex),
		CapturedAt: now().Truncate(time.Second),
	}
}

// childField looks up the first descendant matching selector.
func childField(item *goquery.Selection, selector string, normalize func(string) string) models.Field {
	child := item.Find(selector).First()
	if child.Length() == 0 {
		return models.Missing()
	}
	return models.Found(normalize(child.Text()))
}
