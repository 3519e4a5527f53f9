package layout

// Rect is the placed rectangle for one media cell, in the same units as the
// viewport width passed to Place.
type Rect struct {
	MediaIndex int     `json:"mediaIndex"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	W          float64 `json:"w"`
	H          float64 `json:"h"`
}

// Frame is a resolved tree placed into a viewport.
type Frame struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Rects  []Rect  `json:"rects"`
}

// Place sizes t for a viewport of the given width with gap spacing between
// siblings. Rows split their width evenly. A node's natural height comes from
// its aspect ratio; fill cells have none and take whatever height their parent
// has left over.
func Place(t *Tree, width, gap float64) Frame {
	if t.Empty() || width <= 0 {
		return Frame{Width: max(width, 0)}
	}
	if gap < 0 {
		gap = 0
	}

	h := natural(t, width, gap)
	f := Frame{Width: width, Height: h}
	place(t, 0, 0, width, h, gap, &f.Rects)
	return f
}

func natural(n Node, w, gap float64) float64 {
	switch v := n.(type) {
	case *Cell:
		if v.Fill || v.AspectRatio <= 0 {
			return 0
		}
		return w / v.AspectRatio
	case *Tree:
		if v.AspectRatio > 0 {
			return w / v.AspectRatio
		}
		k := len(v.Nodes)
		if k == 0 {
			return 0
		}
		if v.Orientation == Row {
			cw := share(w, gap, k)
			var h float64
			for _, c := range v.Nodes {
				h = max(h, natural(c, cw, gap))
			}
			return h
		}
		h := gap * float64(k-1)
		for _, c := range v.Nodes {
			h += natural(c, w, gap)
		}
		return h
	}
	return 0
}

func place(n Node, x, y, w, h, gap float64, out *[]Rect) {
	switch v := n.(type) {
	case *Cell:
		*out = append(*out, Rect{MediaIndex: v.MediaIndex, X: x, Y: y, W: w, H: h})
	case *Tree:
		k := len(v.Nodes)
		if k == 0 {
			return
		}
		if v.Orientation == Row {
			cw := share(w, gap, k)
			for i, c := range v.Nodes {
				place(c, x+float64(i)*(cw+gap), y, cw, h, gap, out)
			}
			return
		}

		heights := make([]float64, k)
		used := gap * float64(k-1)
		var stretch int
		for i, c := range v.Nodes {
			heights[i] = natural(c, w, gap)
			used += heights[i]
			if heights[i] == 0 {
				stretch++
			}
		}
		if surplus := h - used; surplus > 0 {
			for i := range heights {
				switch {
				case stretch == 0:
					heights[i] += surplus / float64(k)
				case heights[i] == 0:
					heights[i] = surplus / float64(stretch)
				}
			}
		}

		cy := y
		for i, c := range v.Nodes {
			place(c, x, cy, w, heights[i], gap, out)
			cy += heights[i] + gap
		}
	}
}

func share(w, gap float64, k int) float64 {
	return max((w-gap*float64(k-1))/float64(k), 0)
}
