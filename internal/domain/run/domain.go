package run

import (
	"errors"
	"strings"
)

var (
	ErrNotFound = errors.New("run not found")
	ErrNoRunID  = errors.New("no run id provided")
)

// Run is a single analysis run as reported by the backend.
type Run struct {
	ID          string    `json:"id"`
	CreatedAt   Timestamp `json:"createdAt"`
	Source      string    `json:"source,omitempty"`
	RowCount    *int      `json:"rowCount,omitempty"`
	Explain     bool      `json:"explain"`
	Coverage    []string  `json:"coverage,omitempty"`
	Explanation string    `json:"explanation,omitempty"`
	Findings    []Finding `json:"findings,omitempty"`
}

// HasExplanation is true only when an explanation was requested and the
// backend produced non-blank text for it.
func (r *Run) HasExplanation() bool {
	return r != nil && r.Explain && strings.TrimSpace(r.Explanation) != ""
}

// Finding is one anomalous input row.
type Finding struct {
	Index  *int   `json:"index,omitempty"`
	Type   string `json:"type"`
	Reason string `json:"reason"`
	Row    Value  `json:"row,omitzero"`
}

// DisplayIndex returns the explicit index or the finding's position.
func (f Finding) DisplayIndex(pos int) int {
	if f.Index != nil {
		return *f.Index
	}
	return pos
}

// Page is one page of the run listing.
type Page struct {
	Runs       []Run  `json:"runs"`
	NextCursor string `json:"nextCursor,omitempty"`
}

func (p *Page) HasNext() bool { return p != nil && p.NextCursor != "" }

// ExportFilename is the name a CSV export of the run is saved under.
func ExportFilename(id string) string { return "run-" + id + ".csv" }
