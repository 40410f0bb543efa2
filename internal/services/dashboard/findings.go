package dashboard

import (
	"github.com/kieranyoussef/finops-watchtower/internal/domain/run"
)

// FindingRow is a finding prepared for a table cell.
type FindingRow struct {
	Index  int
	Type   string
	Reason string
	Row    string
}

func FindingRows(fs []run.Finding) []FindingRow {
	out := make([]FindingRow, 0, len(fs))
	for i, f := range fs {
		out = append(out, FindingRow{
			Index:  f.DisplayIndex(i),
			Type:   f.Type,
			Reason: f.Reason,
			Row:    FormatRow(f.Row),
		})
	}
	return out
}

// FormatRow pretty-prints a row payload. The backend sometimes sends the row
// as a JSON-encoded string, so strings get a second decode; one that does
// not decode is shown as-is.
func FormatRow(v run.Value) string {
	if v.IsZero() {
		return ""
	}
	if s, ok := v.Str(); ok {
		inner, err := run.ParseValue([]byte(s))
		if err != nil {
			return s
		}
		v = inner
	}
	out, err := v.Indent()
	if err != nil {
		return ""
	}
	return out
}
