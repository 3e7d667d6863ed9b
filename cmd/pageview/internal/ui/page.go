package ui

import (
	"fmt"
	"strings"
)

// Page is the content shown in the terminal viewer, one rune per cell
type Page struct {
	rows  [][]rune
	width int
}

// TextPage builds a page from text. Tabs become four spaces.
func TextPage(text string) *Page {
	text = strings.ReplaceAll(text, "\t", "    ")
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	p := &Page{rows: make([][]rune, len(lines))}
	for i, line := range lines {
		p.rows[i] = []rune(line)
		if len(p.rows[i]) > p.width {
			p.width = len(p.rows[i])
		}
	}
	return p
}

// GridPage builds a labelled grid, handy for seeing pan and zoom
func GridPage(width, height int) *Page {
	var b strings.Builder
	for y := 0; y < height; y++ {
		row := make([]rune, width)
		for x := range row {
			switch {
			case y%10 == 0 && x%20 == 0:
				row[x] = '+'
			case y%10 == 0:
				row[x] = '-'
			case x%20 == 0:
				row[x] = '|'
			default:
				row[x] = ' '
			}
		}
		if y%10 == 5 {
			for x := 2; x+8 < width; x += 20 {
				copy(row[x:], []rune(fmt.Sprintf("%3d,%-3d", x/20, y/10)))
			}
		}
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return TextPage(b.String())
}

// Size returns the page size in cells
func (p *Page) Size() (w, h int) { return p.width, len(p.rows) }

// At returns the rune at cell (x, y), or a space outside the page
func (p *Page) At(x, y int) rune {
	if y < 0 || y >= len(p.rows) || x < 0 || x >= len(p.rows[y]) {
		return ' '
	}
	return p.rows[y][x]
}
