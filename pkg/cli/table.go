package cli

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

const columnGap = 2

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// Table renders column-aligned output. Rows are buffered until Flush so
// column widths can be capped to the terminal width; cells that no longer
// fit are word-wrapped onto continuation lines. Empty tables produce no
// output.
type Table struct {
	out     io.Writer
	headers []string
	rows    [][]string
	prefix  string
	width   int
}

// NewTable creates a table with the given column headers writing to stdout.
func NewTable(headers ...string) *Table {
	return &Table{
		out:     os.Stdout,
		headers: headers,
		width:   TerminalWidth(),
	}
}

// WithWriter redirects output.
func (t *Table) WithWriter(w io.Writer) *Table {
	t.out = w
	return t
}

// WithWidth overrides the terminal width used for capping.
func (t *Table) WithWidth(width int) *Table {
	t.width = width
	return t
}

// WithPrefix sets a string prepended to each line (headers, divider, rows).
// Useful for indenting sub-tables within larger output.
func (t *Table) WithPrefix(prefix string) *Table {
	t.prefix = prefix
	return t
}

// Row buffers one row.
func (t *Table) Row(values ...string) {
	t.rows = append(t.rows, values)
}

// Flush writes headers, a dash divider and all buffered rows. If no rows
// were added, nothing is printed.
func (t *Table) Flush() {
	if len(t.rows) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = visualLen(h)
	}
	for _, row := range t.rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if l := visualLen(row[i]); l > widths[i] {
				widths[i] = l
			}
		}
	}
	widths = capWidths(widths, t.headers, t.width, visualLen(t.prefix))

	t.writeLine(t.headers, widths)
	dividers := make([]string, len(t.headers))
	for i, h := range t.headers {
		dividers[i] = strings.Repeat("-", visualLen(h))
	}
	t.writeLine(dividers, widths)

	for _, row := range t.rows {
		cells := make([][]string, len(widths))
		lines := 1
		for i := range widths {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			cells[i] = wrapCell(v, widths[i])
			if len(cells[i]) > lines {
				lines = len(cells[i])
			}
		}
		for l := 0; l < lines; l++ {
			line := make([]string, len(widths))
			for i := range widths {
				if l < len(cells[i]) {
					line[i] = cells[i][l]
				}
			}
			t.writeLine(line, widths)
		}
	}
	t.rows = nil
}

func (t *Table) writeLine(values []string, widths []int) {
	var b strings.Builder
	b.WriteString(t.prefix)
	for i, v := range values {
		b.WriteString(v)
		if i == len(values)-1 {
			break
		}
		b.WriteString(strings.Repeat(" ", widths[i]-visualLen(v)+columnGap))
	}
	fmt.Fprintln(t.out, strings.TrimRight(b.String(), " "))
}

// visualLen is the printed width of s, ignoring ANSI color codes.
func visualLen(s string) int {
	return len(ansiPattern.ReplaceAllString(s, ""))
}

// capWidths shrinks the widest columns until the table fits termWidth.
// No column is reduced below the width of its header.
func capWidths(widths []int, headers []string, termWidth, prefix int) []int {
	out := append([]int(nil), widths...)
	for {
		total := prefix + columnGap*(len(out)-1)
		for _, w := range out {
			total += w
		}
		excess := total - termWidth
		if excess <= 0 {
			return out
		}

		widest := -1
		for i, w := range out {
			if w > visualLen(headers[i]) && (widest < 0 || w > out[widest]) {
				widest = i
			}
		}
		if widest < 0 {
			return out
		}
		room := out[widest] - visualLen(headers[widest])
		if room > excess {
			room = excess
		}
		out[widest] -= room
	}
}

// wrapCell splits s into lines of at most width, breaking at spaces and
// hard-breaking words longer than width.
func wrapCell(s string, width int) []string {
	if visualLen(s) <= width || width <= 0 {
		return []string{s}
	}

	var lines []string
	current := ""
	for _, word := range strings.Fields(s) {
		for len(word) > width {
			if current != "" {
				lines = append(lines, current)
				current = ""
			}
			lines = append(lines, word[:width])
			word = word[width:]
		}
		switch {
		case current == "":
			current = word
		case len(current)+1+len(word) <= width:
			current += " " + word
		default:
			lines = append(lines, current)
			current = word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
