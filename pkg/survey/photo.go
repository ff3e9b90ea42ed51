package survey

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Rules is the engine's configuration: which project fields give the
// expected photo count of a section, and how to label them.
type Rules struct {
	Photo       map[string][]string
	FieldLabels map[string]string
	CommentText string
}

// FieldCount is one term of an expected photo count.
type FieldCount struct {
	Field string `json:"field"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Expectation is the base expected photo count of a section.
type Expectation struct {
	Base      int          `json:"base"`
	Breakdown []FieldCount `json:"breakdown"`
}

// Detail renders the breakdown as "2 PDC Rapide + 1 PDC Ultra-rapide".
func (e Expectation) Detail() string {
	parts := make([]string, 0, len(e.Breakdown))
	for _, fc := range e.Breakdown {
		parts = append(parts, fmt.Sprintf("%d %s", fc.Count, fc.Label))
	}
	return strings.Join(parts, " + ")
}

// ExpectedPhotos returns the base expected count for a section. ok is false
// when the section has no photo rule.
func (r Rules) ExpectedPhotos(section string, project Project) (Expectation, bool) {
	fields, ok := r.Photo[strings.TrimSpace(section)]
	if !ok {
		return Expectation{}, false
	}
	var e Expectation
	for _, field := range fields {
		n := parseCount(project[field])
		e.Base += n
		label := field
		if l, ok := r.FieldLabels[field]; ok && l != "" {
			label = l
		}
		e.Breakdown = append(e.Breakdown, FieldCount{Field: field, Label: label, Count: n})
	}
	return e, true
}

// maxCount bounds a single sheet cell so that sums and the product with the
// number of visible photo questions stay far from int overflow.
const maxCount = 100000

// parseCount reads a sheet cell as an integer. A comma decimal separator is
// accepted; anything unreadable or beyond maxCount in magnitude counts as
// zero.
func parseCount(raw string) int {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > maxCount {
		return 0
	}
	return int(f)
}
