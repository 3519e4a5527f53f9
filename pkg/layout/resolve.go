package layout

import "github.com/unowned-ai/memoirs/pkg/media"

const (
	// MaxTemplate is the largest count with its own table entry. Larger
	// counts use this entry.
	MaxTemplate = 13
	// Visible is how many cells a collapsed preview shows.
	Visible = 5

	fullSingleAspect    = 2.0
	previewSingleAspect = 1.0
	fullRadius          = 12
	previewRadius       = 8
	// Second rows for eight or more items hold only fill cells and need a
	// fixed shape of their own; 2:1 matches the base-five row.
	secondRowAspect = 2.0
)

// builder produces the tree for one count. Cells it creates get their corner
// radius from the resolver, not from the builder.
type builder func(m Mode) *Tree

// templates is indexed by media count. Entry 13 is deliberately the same
// arrangement as entry 12: the thirteenth item has no cell of its own.
var templates = [MaxTemplate + 1]builder{
	0:  empty,
	1:  single,
	2:  pair,
	3:  three,
	4:  four,
	5:  func(Mode) *Tree { return baseFive() },
	6:  withSecondRow(func() Node { return row(aspect(5, 2)) }),
	7:  withSecondRow(func() Node { return row(square(5), square(6)) }),
	8:  withSecondRow(func() Node { return fixedRow(col(fill(5), fill(6)), fill(7)) }),
	9:  withSecondRow(func() Node { return fixedRow(col(fill(5), row(fill(6), fill(7))), fill(8)) }),
	10: withSecondRow(func() Node { return fixedRow(grid(5), fill(9)) }),
	11: withSecondRow(func() Node { return fixedRow(grid(5), col(fill(9), fill(10))) }),
	12: withSecondRow(twoGrids),
	13: withSecondRow(twoGrids),
}

// Resolve arranges items for the given surface. It is pure: equal inputs give
// structurally equal trees, and every count is handled.
func Resolve(items []media.Asset, mode Mode, expanded bool) *Tree {
	return ResolveCount(len(items), mode, expanded)
}

// ResolveCount is Resolve for callers that only know the number of items.
func ResolveCount(n int, mode Mode, expanded bool) *Tree {
	if n < 0 {
		n = 0
	}

	var t *Tree
	if mode == Preview && !expanded && n > Visible {
		t = collapsed(n)
	} else {
		t = templates[min(n, MaxTemplate)](mode)
	}

	radius := float64(fullRadius)
	if mode == Preview {
		radius = previewRadius
	}
	t.walk(func(c *Cell) { c.CornerRadius = radius })
	return t
}

// collapsed is base-five with a count badge on the last cell. Pressing that
// cell expands the preview instead of opening the viewer.
func collapsed(n int) *Tree {
	t := baseFive()
	last := t.Cell(Visible - 1)
	last.Action = Expand
	last.Badge = &Badge{Count: n - Visible}
	return t
}

func empty(Mode) *Tree {
	return &Tree{Orientation: Row}
}

func single(m Mode) *Tree {
	ar := fullSingleAspect
	if m == Preview {
		ar = previewSingleAspect
	}
	return row(aspect(0, ar))
}

func pair(Mode) *Tree {
	return row(square(0), square(1))
}

func three(Mode) *Tree {
	return row(square(0), col(fill(1), fill(2)))
}

func four(Mode) *Tree {
	return row(square(0), col(fill(1), row(fill(2), fill(3))))
}

// baseFive is the big square on the left and a 2x2 grid of indices 1..4 on
// the right. It is the first row of every layout with six or more items.
func baseFive() *Tree {
	return row(square(0), grid(1))
}

func withSecondRow(second func() Node) builder {
	return func(Mode) *Tree {
		return col(baseFive(), second())
	}
}

func twoGrids() Node {
	return fixedRow(grid(5), grid(9))
}

// grid is a 2x2 block of fill cells for indices first..first+3.
func grid(first int) *Tree {
	return col(
		row(fill(first), fill(first+1)),
		row(fill(first+2), fill(first+3)),
	)
}

func row(nodes ...Node) *Tree {
	return &Tree{Orientation: Row, Nodes: nodes}
}

func fixedRow(nodes ...Node) *Tree {
	return &Tree{Orientation: Row, AspectRatio: secondRowAspect, Nodes: nodes}
}

func col(nodes ...Node) *Tree {
	return &Tree{Orientation: Column, Nodes: nodes}
}

func square(i int) *Cell {
	return aspect(i, 1)
}

func aspect(i int, ar float64) *Cell {
	return &Cell{MediaIndex: i, AspectRatio: ar}
}

func fill(i int) *Cell {
	return &Cell{MediaIndex: i, Fill: true}
}
