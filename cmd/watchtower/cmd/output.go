package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"

	"github.com/kieranyoussef/finops-watchtower/internal/domain/run"
)

const maxCellWidth = 48

// writeTable prints rows under headers with columns padded to their widest
// cell. Widths are measured in terminal cells so wide runes line up.
func writeTable(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	cells := make([][]string, len(rows))
	for r, row := range rows {
		cells[r] = make([]string, len(headers))
		for i := range headers {
			if i >= len(row) {
				continue
			}
			c := runewidth.Truncate(strings.ReplaceAll(row[i], "\n", " "), maxCellWidth, "…")
			cells[r][i] = c
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}

	line := func(cols []string) {
		var b strings.Builder
		for i, c := range cols {
			if i > 0 {
				b.WriteString("  ")
			}
			if i == len(cols)-1 {
				b.WriteString(c)
				continue
			}
			b.WriteString(runewidth.FillRight(c, widths[i]))
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}

	line(headers)
	for _, row := range cells {
		line(row)
	}
}

func runRows(rs []run.Run) [][]string {
	out := make([][]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, []string{
			r.ID,
			fmtTime(r.CreatedAt),
			orDash(r.Source),
			fmtCount(r.RowCount),
			strconv.Itoa(len(r.Findings)),
		})
	}
	return out
}

func fmtTime(t run.Timestamp) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04:05Z")
}

func fmtCount(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func success(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, color.Green.Sprintf(format, args...))
}

func dim(s string) string { return color.Gray.Sprint(s) }
