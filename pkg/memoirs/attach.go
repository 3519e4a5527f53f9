package memoirs

import (
	"errors"

	"github.com/unowned-ai/memoirs/pkg/layout"
	"github.com/unowned-ai/memoirs/pkg/media"
)

// DefaultAttachmentLimit is the largest count the grid has a template for.
const DefaultAttachmentLimit = layout.MaxTemplate

var ErrAttachmentLimit = errors.New("attachment limit reached")

// LimitDecision is the user's answer when a pick would exceed the limit.
type LimitDecision int

const (
	Cancel LimitDecision = iota
	ReplaceLast
)

// ConfirmFunc asks the user how to resolve a pick that exceeds the limit.
// current is the list before the pick.
type ConfirmFunc func(current []media.Asset, picked []media.Asset, limit int) LimitDecision

// Attach appends picked to current if the result fits in limit. Otherwise it
// asks confirm once: ReplaceLast swaps the last current item for the first
// picked item and drops the rest of the pick; Cancel (or a nil confirm)
// returns current unchanged with ErrAttachmentLimit.
//
// The second return value holds assets that fell out of the list and whose
// files the caller now owns.
func Attach(current, picked []media.Asset, limit int, confirm ConfirmFunc) ([]media.Asset, []media.Asset, error) {
	if len(picked) == 0 {
		return media.Clone(current), nil, nil
	}
	if limit <= 0 {
		limit = DefaultAttachmentLimit
	}

	if len(current)+len(picked) <= limit {
		out := media.Clone(current)
		out = append(out, media.Ensure(picked)...)
		return out, nil, nil
	}

	if confirm == nil || confirm(media.Clone(current), media.Clone(picked), limit) != ReplaceLast {
		return media.Clone(current), nil, ErrAttachmentLimit
	}

	incoming := media.Ensure(picked[:1])
	if len(current) == 0 {
		return incoming, nil, nil
	}

	out := media.Clone(current)
	if len(out) > limit {
		out = out[:limit]
	}
	dropped := media.Clone(current[len(out)-1:])
	out[len(out)-1] = incoming[0]
	return out, dropped, nil
}

// sameAssets reports whether a and b hold the same asset ids in order.
func sameAssets(a, b []media.Asset) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}
