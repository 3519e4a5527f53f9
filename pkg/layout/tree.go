// Package layout arranges a memoir's media into the fixed grid templates used
// by the editor and by list previews.
package layout

import "encoding/json"

// Mode selects which surface a layout is resolved for.
type Mode int

const (
	// Full is the editor view.
	Full Mode = iota
	// Preview is the compact card shown in memoir lists.
	Preview
)

func (m Mode) String() string {
	if m == Preview {
		return "preview"
	}
	return "full"
}

// ParseMode maps "preview" to Preview and everything else to Full.
func ParseMode(s string) Mode {
	if s == "preview" {
		return Preview
	}
	return Full
}

// Orientation is the main axis of a Tree.
type Orientation int

const (
	Row Orientation = iota
	Column
)

func (o Orientation) String() string {
	if o == Column {
		return "column"
	}
	return "row"
}

func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Action is what pressing a cell does.
type Action int

const (
	// OpenViewer opens the media viewer at the cell's MediaIndex.
	OpenViewer Action = iota
	// Expand switches a collapsed preview to its full by-count template.
	Expand
)

func (a Action) String() string {
	if a == Expand {
		return "expand"
	}
	return "open"
}

func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Node is either a *Tree or a *Cell.
type Node interface {
	node()
}

// Tree is a row or column of nodes. AspectRatio, when non-zero, fixes the
// container's width:height ratio independent of its children.
type Tree struct {
	Orientation Orientation `json:"orientation"`
	AspectRatio float64     `json:"aspectRatio,omitempty"`
	Nodes       []Node      `json:"cells"`
}

// Cell is a leaf showing the media item at MediaIndex. A Fill cell stretches
// to the space its parent gives it; otherwise AspectRatio (width/height)
// determines its natural height.
type Cell struct {
	MediaIndex   int     `json:"mediaIndex"`
	AspectRatio  float64 `json:"aspectRatio,omitempty"`
	Fill         bool    `json:"fillParent,omitempty"`
	CornerRadius float64 `json:"cornerRadius"`
	Action       Action  `json:"action"`
	Badge        *Badge  `json:"badge,omitempty"`
}

// Badge is the "+N" overlay on the last visible cell of a collapsed preview.
type Badge struct {
	Count int `json:"count"`
}

func (*Tree) node() {}
func (*Cell) node() {}

// MarshalJSON tags the tree with kind "tree" so mixed node lists decode.
func (t *Tree) MarshalJSON() ([]byte, error) {
	type plain Tree
	return json.Marshal(struct {
		Kind string `json:"kind"`
		*plain
	}{"tree", (*plain)(t)})
}

// MarshalJSON tags the cell with kind "cell".
func (c *Cell) MarshalJSON() ([]byte, error) {
	type plain Cell
	return json.Marshal(struct {
		Kind string `json:"kind"`
		*plain
	}{"cell", (*plain)(c)})
}

// Empty reports whether the tree lays out nothing.
func (t *Tree) Empty() bool {
	return t == nil || len(t.Nodes) == 0
}

// Cells returns the leaf cells in depth-first order.
func (t *Tree) Cells() []*Cell {
	var out []*Cell
	t.walk(func(c *Cell) { out = append(out, c) })
	return out
}

// Indices returns the media index of every leaf in depth-first order.
func (t *Tree) Indices() []int {
	var out []int
	t.walk(func(c *Cell) { out = append(out, c.MediaIndex) })
	return out
}

// Cell returns the leaf showing media index i, or nil.
func (t *Tree) Cell(i int) *Cell {
	var found *Cell
	t.walk(func(c *Cell) {
		if found == nil && c.MediaIndex == i {
			found = c
		}
	})
	return found
}

func (t *Tree) walk(fn func(*Cell)) {
	if t == nil {
		return
	}
	for _, n := range t.Nodes {
		switch v := n.(type) {
		case *Cell:
			fn(v)
		case *Tree:
			v.walk(fn)
		}
	}
}
