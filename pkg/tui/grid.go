package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/unowned-ai/memoirs/pkg/layout"
)

// rowScale converts layout height units to terminal rows. A terminal cell is
// roughly twice as tall as it is wide.
const rowScale = 0.5

type box struct {
	x0, y0, x1, y1 int
	label          string
	selected       bool
}

type boxRunes struct {
	tl, tr, bl, br, h, v rune
}

var (
	plainRunes    = boxRunes{'┌', '┐', '└', '┘', '─', '│'}
	selectedRunes = boxRunes{'╔', '╗', '╚', '╝', '═', '║'}
)

// renderGrid draws t placed into width terminal columns. Each media cell is a
// box labelled with its 1-based position; the collapsed-preview cell shows its
// "+N" badge. The cell for media index selected is drawn with double lines.
func renderGrid(t *layout.Tree, width int, selected int) string {
	if t.Empty() || width < 4 {
		return ""
	}

	frame := layout.Place(t, float64(width), 1)
	boxes := make([]box, 0, len(frame.Rects))
	rows := 0
	for _, r := range frame.Rects {
		b := box{
			x0:       int(math.Round(r.X)),
			y0:       int(math.Round(r.Y * rowScale)),
			x1:       int(math.Round(r.X+r.W)) - 1,
			y1:       int(math.Round((r.Y+r.H)*rowScale)) - 1,
			label:    fmt.Sprint(r.MediaIndex + 1),
			selected: r.MediaIndex == selected,
		}
		if c := t.Cell(r.MediaIndex); c != nil && c.Badge != nil {
			b.label = fmt.Sprintf("+%d", c.Badge.Count)
		}
		b.x1 = min(max(b.x1, b.x0+1), width-1)
		b.y1 = max(b.y1, b.y0+1)
		rows = max(rows, b.y1+1)
		boxes = append(boxes, b)
	}

	canvas := make([][]rune, rows)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}
	for _, b := range boxes {
		if !b.selected {
			drawBox(canvas, b)
		}
	}
	// Selected last so its outline wins where boxes touch.
	for _, b := range boxes {
		if b.selected {
			drawBox(canvas, b)
		}
	}

	lines := make([]string, rows)
	for i, row := range canvas {
		lines[i] = strings.TrimRight(string(row), " ")
	}
	return strings.Join(lines, "\n")
}

func drawBox(canvas [][]rune, b box) {
	r := plainRunes
	if b.selected {
		r = selectedRunes
	}

	for x := b.x0 + 1; x < b.x1; x++ {
		canvas[b.y0][x] = r.h
		canvas[b.y1][x] = r.h
	}
	for y := b.y0 + 1; y < b.y1; y++ {
		canvas[y][b.x0] = r.v
		canvas[y][b.x1] = r.v
	}
	canvas[b.y0][b.x0] = r.tl
	canvas[b.y0][b.x1] = r.tr
	canvas[b.y1][b.x0] = r.bl
	canvas[b.y1][b.x1] = r.br

	// Label in the middle row, or on the top edge of a two-row box.
	y := (b.y0 + b.y1) / 2
	if b.y1-b.y0 < 2 {
		y = b.y0
	}
	x := b.x0 + 1
	for _, ch := range b.label {
		if x >= b.x1 {
			break
		}
		canvas[y][x] = ch
		x++
	}
}
