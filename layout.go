package main

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// wrapRows breaks text into rows at most cells display cells wide.
// Every newline starts a new row.
func wrapRows(text string, cells int) []string {
	var rows []string
	for _, para := range strings.Split(text, "\n") {
		var sb strings.Builder
		w := 0
		for _, r := range para {
			rw := runewidth.RuneWidth(r)
			if w+rw > cells && w > 0 {
				rows = append(rows, sb.String())
				sb.Reset()
				w = 0
			}
			sb.WriteRune(r)
			w += rw
		}
		rows = append(rows, sb.String())
	}
	return rows
}

// columns splits text into vertical columns of at most height runes.
func columns(text string, height int) [][]rune {
	var cols [][]rune
	for _, para := range strings.Split(text, "\n") {
		rs := []rune(para)
		if len(rs) == 0 {
			cols = append(cols, nil)
			continue
		}
		for len(rs) > 0 {
			n := min(height, len(rs))
			cols = append(cols, rs[:n])
			rs = rs[n:]
		}
	}
	return cols
}

// renderVertical lays columns out top to bottom, right to left, the way
// a printed sutra reads.
func renderVertical(cols [][]rune, height int) string {
	rows := make([]string, height)
	for row := range rows {
		cells := make([]string, len(cols))
		for i, col := range cols {
			ch := ""
			if row < len(col) {
				ch = string(col[row])
			}
			cells[len(cols)-1-i] = runewidth.FillRight(ch, 2)
		}
		rows[row] = strings.Join(cells, " ")
	}
	return strings.Join(rows, "\n")
}
