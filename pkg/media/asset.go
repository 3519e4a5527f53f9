package media

import (
	"strings"

	"github.com/google/uuid"
)

// Type is the kind of an attached piece of media. It decides which rendering
// branch a client takes and how the underlying file is cleaned up.
type Type string

const (
	TypeUndefined   Type = ""
	TypeImage       Type = "image"
	TypeVideo       Type = "video"
	TypeAudio       Type = "audio"
	TypeLivePhoto   Type = "livePhoto"
	TypePairedVideo Type = "pairedVideo"
)

var knownTypes = map[Type]bool{
	TypeImage:       true,
	TypeVideo:       true,
	TypeAudio:       true,
	TypeLivePhoto:   true,
	TypePairedVideo: true,
}

// ParseType maps a string onto a Type. Matching ignores case; anything
// unrecognised becomes TypeUndefined.
func ParseType(s string) Type {
	for t := range knownTypes {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t
		}
	}
	return TypeUndefined
}

// Valid reports whether t is one of the defined media kinds.
func (t Type) Valid() bool {
	return knownTypes[t]
}

// Timed reports whether assets of this type carry a duration.
func (t Type) Timed() bool {
	return t == TypeVideo || t == TypeAudio
}

// Asset is one attached piece of media.
type Asset struct {
	ID       string   `json:"id" yaml:"id"`
	URI      string   `json:"uri" yaml:"uri"`
	Type     Type     `json:"type,omitempty" yaml:"type,omitempty"`
	Duration *float64 `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// Ensure returns a copy of list in which every asset has an ID. Assets that
// arrive without one (transient picks) get a fresh UUID.
func Ensure(list []Asset) []Asset {
	out := Clone(list)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = uuid.NewString()
		}
	}
	return out
}

// Clone deep-copies a media list. A nil list becomes an empty one so that
// records never carry a nil media slice.
func Clone(list []Asset) []Asset {
	out := make([]Asset, len(list))
	for i, a := range list {
		out[i] = a
		if a.Duration != nil {
			d := *a.Duration
			out[i].Duration = &d
		}
	}
	return out
}

// IndexOf returns the position of the asset with the given id, or -1.
func IndexOf(list []Asset, id string) int {
	for i, a := range list {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// Without returns a copy of list with the element at index i removed.
func Without(list []Asset, i int) []Asset {
	out := make([]Asset, 0, len(list))
	for j, a := range list {
		if j != i {
			out = append(out, a)
		}
	}
	return Clone(out)
}
