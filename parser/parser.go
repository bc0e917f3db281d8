package parser

import (
	"fmt"
	"strings"

	"github.com/aluiziolira/baidu-hot-search/models"
)

// tenThousand is the magnitude glyph Baidu appends to large heat indexes.
const tenThousand = "万"

// ValidateRecord ensures the extractor produced a complete record.
func ValidateRecord(r *models.TrendRecord) error {
	if r == nil {
		return fmt.Errorf("record is nil")
	}
	if r.CapturedAt.IsZero() {
		return fmt.Errorf("record missing capture time for %s", r.Title)
	}
	return nil
}

// NormalizeText trims the surrounding whitespace of extracted text.
func NormalizeText(text string) string {
	return strings.TrimSpace(text)
}

// NormalizeHeatIndex expands the ten-thousand glyph into literal zeros.
// The remaining characters are not validated as a number.
func NormalizeHeatIndex(heat string) string {
	heat = strings.ReplaceAll(heat, tenThousand, "0000")
	return strings.TrimSpace(heat)
}
