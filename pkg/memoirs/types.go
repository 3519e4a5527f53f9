package memoirs

import (
	"regexp"
	"strings"

	"github.com/unowned-ai/memoirs/pkg/media"
)

// Category is a derived search tag. Categories are computed from a memoir's
// state when filtering and are never stored.
type Category string

const (
	CategoryBookmark Category = "bookmark"
	CategoryPhoto    Category = "photo"
	CategoryVideo    Category = "video"
	CategoryAudio    Category = "audio"
	CategoryText     Category = "text"
)

// AllCategories lists every category in display order.
var AllCategories = []Category{CategoryBookmark, CategoryPhoto, CategoryVideo, CategoryAudio, CategoryText}

// ParseCategory returns the category named s and whether it exists.
func ParseCategory(s string) (Category, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range AllCategories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Memoir is one journal entry.
type Memoir struct {
	ID           string        `json:"id" yaml:"id"`
	Title        *string       `json:"title" yaml:"title"`
	Content      *string       `json:"content" yaml:"content"`
	Date         *string       `json:"date" yaml:"date"`
	CreatedAt    *string       `json:"createdAt" yaml:"createdAt"`
	UpdatedAt    *string       `json:"updatedAt" yaml:"updatedAt"`
	Media        []media.Asset `json:"media" yaml:"media"`
	Bookmark     bool          `json:"bookmark" yaml:"bookmark"`
	TitleVisible bool          `json:"titleVisible" yaml:"titleVisible"`
}

// Draft is the partial record an entry screen saves for the first time.
type Draft struct {
	ID           string
	Title        *string
	Content      *string
	Date         *string
	CreatedAt    *string
	UpdatedAt    *string
	Media        []media.Asset
	Bookmark     bool
	TitleVisible *bool
}

// Patch carries the fields to change on an existing memoir. Nil fields are
// left untouched.
type Patch struct {
	ID           string         `json:"id"`
	Title        *string        `json:"title,omitempty"`
	Content      *string        `json:"content,omitempty"`
	Date         *string        `json:"date,omitempty"`
	UpdatedAt    *string        `json:"updatedAt,omitempty"`
	Media        *[]media.Asset `json:"media,omitempty"`
	Bookmark     *bool          `json:"bookmark,omitempty"`
	TitleVisible *bool          `json:"titleVisible,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.Date == nil && p.UpdatedAt == nil &&
		p.Media == nil && p.Bookmark == nil && p.TitleVisible == nil
}

// apply merges p into m in place.
func (p Patch) apply(m *Memoir) {
	if p.Title != nil {
		m.Title = Str(*p.Title)
	}
	if p.Content != nil {
		m.Content = Str(*p.Content)
	}
	if p.Date != nil {
		m.Date = Str(*p.Date)
	}
	if p.UpdatedAt != nil {
		m.UpdatedAt = Str(*p.UpdatedAt)
	}
	if p.Media != nil {
		m.Media = media.Clone(*p.Media)
	}
	if p.Bookmark != nil {
		m.Bookmark = *p.Bookmark
	}
	if p.TitleVisible != nil {
		m.TitleVisible = *p.TitleVisible
	}
}

// Clone returns a deep copy.
func (m Memoir) Clone() Memoir {
	out := m
	out.Title = clonePtr(m.Title)
	out.Content = clonePtr(m.Content)
	out.Date = clonePtr(m.Date)
	out.CreatedAt = clonePtr(m.CreatedAt)
	out.UpdatedAt = clonePtr(m.UpdatedAt)
	out.Media = media.Clone(m.Media)
	return out
}

// IsContentEmpty reports whether the memoir has no media, no title and no
// content. Such a memoir has nothing worth keeping.
func (m Memoir) IsContentEmpty() bool {
	return len(m.Media) == 0 && IsBlank(m.Title) && IsBlankMarkup(m.Content)
}

// Categories derives the search categories for m.
func (m Memoir) Categories() []Category {
	var photo, video, audio bool
	for _, a := range m.Media {
		switch a.Type {
		case media.TypeImage, media.TypeLivePhoto:
			photo = true
		case media.TypeVideo, media.TypePairedVideo:
			video = true
		case media.TypeAudio:
			audio = true
		}
	}

	var out []Category
	if m.Bookmark {
		out = append(out, CategoryBookmark)
	}
	if photo {
		out = append(out, CategoryPhoto)
	}
	if video {
		out = append(out, CategoryVideo)
	}
	if audio {
		out = append(out, CategoryAudio)
	}
	if !IsBlankMarkup(m.Content) {
		out = append(out, CategoryText)
	}
	return out
}

// HasCategory reports whether c is among m's derived categories.
func (m Memoir) HasCategory(c Category) bool {
	for _, have := range m.Categories() {
		if have == c {
			return true
		}
	}
	return false
}

// DisplayTitle is the title, or a placeholder for untitled memoirs.
func (m Memoir) DisplayTitle() string {
	if IsBlank(m.Title) {
		return "Untitled"
	}
	return strings.TrimSpace(*m.Title)
}

var (
	tagPattern    = regexp.MustCompile(`<[^>]*>`)
	entityPattern = regexp.MustCompile(`&(nbsp|#160|#xa0);`)
)

// PlainText strips markup tags and non-breaking-space entities from rich-text
// content.
func PlainText(markup string) string {
	s := tagPattern.ReplaceAllString(markup, " ")
	s = entityPattern.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// IsBlank reports whether s is nil or only whitespace.
func IsBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// IsBlankMarkup reports whether rich-text content has no visible text.
func IsBlankMarkup(s *string) bool {
	return s == nil || PlainText(*s) == ""
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	return Str(*s)
}

// Str returns a pointer to s, for building drafts and patches.
func Str(s string) *string {
	return &s
}

// Deref returns the value behind s, or "" when s is nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
