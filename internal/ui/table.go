package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column.
type Column struct {
	Title string
	Width int
}

// Row is a slice of cell values.
type Row []string

// Table renders a lipgloss-styled table.
type Table struct {
	Columns []Column
	Rows    []Row
	SelIdx  int // highlighted row index (-1 = none)
}

// NewTable creates a new table.
func NewTable(cols []Column) *Table {
	return &Table{Columns: cols, SelIdx: -1}
}

// AddRow appends a row.
func (t *Table) AddRow(r Row) {
	t.Rows = append(t.Rows, r)
}

// Render returns the full table as a string. Cells are padded by display
// width so multi-byte glyphs such as "…" or "✓" keep columns aligned.
func (t *Table) Render() string {
	var sb strings.Builder

	headerStyle := lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	cellStyle := lipgloss.NewStyle().Foreground(ColorValue)

	writeLine := func(cells []string) {
		sb.WriteString(strings.TrimRight(strings.Join(cells, " "), " "))
		sb.WriteString("\n")
	}

	headers := make([]string, len(t.Columns))
	divider := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		headers[i] = headerStyle.Render(fit(col.Title, col.Width))
		divider[i] = StyleMeta.Render(strings.Repeat("-", col.Width))
	}
	writeLine(headers)
	writeLine(divider)

	for i, row := range t.Rows {
		style := cellStyle
		if i == t.SelIdx {
			style = StyleSelected
		}
		cells := make([]string, len(t.Columns))
		for j, col := range t.Columns {
			val := ""
			if j < len(row) {
				val = row[j]
			}
			cells[j] = style.Render(fit(val, col.Width))
		}
		writeLine(cells)
	}

	return sb.String()
}

// fit pads or truncates s to exactly width display cells.
func fit(s string, width int) string {
	w := lipgloss.Width(s)
	if w <= width {
		return s + strings.Repeat(" ", width-w)
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	out := string(runes) + "…"
	return out + strings.Repeat(" ", max(0, width-lipgloss.Width(out)))
}

// KeyValueBlock renders a set of key-value pairs in a bordered box.
func KeyValueBlock(title string, pairs [][2]string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title))
		sb.WriteString("\n")
	}
	for _, p := range pairs {
		key := StyleMeta.Render(fmt.Sprintf("%-16s", p[0]+":"))
		sb.WriteString("  " + key + " " + StyleValue.Render(p[1]) + "\n")
	}
	return StyleBorder.Render(strings.TrimRight(sb.String(), "\n"))
}
