// Package table renders simple ASCII tables. Cell widths are measured
// without ANSI escape sequences, so colored cells stay aligned.
package table

import (
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Alignment of text within a column.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
)

// Table accumulates a header and rows and writes them on Render.
type Table struct {
	w           io.Writer
	header      []string
	rows        [][]string
	alignment   []Alignment
	headerAlign []Alignment
}

// NewTable returns a Table that renders to w.
func NewTable(w io.Writer) *Table {
	return &Table{w: w}
}

func (t *Table) WithHeader(header []string) *Table {
	t.header = header
	return t
}

func (t *Table) WithColumnAlignment(alignment []Alignment) *Table {
	t.alignment = alignment
	return t
}

func (t *Table) WithHeaderAlignment(alignment []Alignment) *Table {
	t.headerAlign = alignment
	return t
}

func (t *Table) WithRows(rows [][]string) *Table {
	t.rows = append(t.rows, rows...)
	return t
}

// Append adds one row.
func (t *Table) Append(row []string) *Table {
	t.rows = append(t.rows, row)
	return t
}

// Render writes the table. Write errors are returned.
func (t *Table) Render() error {
	widths := t.widths()
	var sb strings.Builder
	separator := t.separator(widths)
	sb.WriteString(separator)
	if len(t.header) > 0 {
		t.writeRow(&sb, t.header, widths, t.headerAlign)
		sb.WriteString(separator)
	}
	for _, row := range t.rows {
		t.writeRow(&sb, row, widths, t.alignment)
	}
	if len(t.rows) > 0 {
		sb.WriteString(separator)
	}
	_, err := io.WriteString(t.w, sb.String())
	return err
}

func (t *Table) widths() []int {
	columns := len(t.header)
	for _, row := range t.rows {
		if len(row) > columns {
			columns = len(row)
		}
	}
	widths := make([]int, columns)
	measure := func(row []string) {
		for i, cell := range row {
			if n := visibleLen(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}
	measure(t.header)
	for _, row := range t.rows {
		measure(row)
	}
	return widths
}

func (t *Table) separator(widths []int) string {
	var sb strings.Builder
	sb.WriteString("+")
	for _, w := range widths {
		sb.WriteString(strings.Repeat("-", w+2))
		sb.WriteString("+")
	}
	sb.WriteString("\n")
	return sb.String()
}

func (t *Table) writeRow(sb *strings.Builder, row []string, widths []int, alignment []Alignment) {
	sb.WriteString("|")
	for i, w := range widths {
		var cell string
		if i < len(row) {
			cell = row[i]
		}
		align := AlignLeft
		if i < len(alignment) {
			align = alignment[i]
		}
		sb.WriteString(" ")
		sb.WriteString(pad(cell, w, align))
		sb.WriteString(" |")
	}
	sb.WriteString("\n")
}

func pad(cell string, width int, align Alignment) string {
	space := width - visibleLen(cell)
	if space <= 0 {
		return cell
	}
	switch align {
	case AlignRight:
		return strings.Repeat(" ", space) + cell
	case AlignCenter:
		left := space / 2
		return strings.Repeat(" ", left) + cell + strings.Repeat(" ", space-left)
	default:
		return cell + strings.Repeat(" ", space)
	}
}

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripAnsi(s string) string {
	return ansi.ReplaceAllString(s, "")
}

func visibleLen(s string) int {
	return utf8.RuneCountInString(stripAnsi(s))
}
