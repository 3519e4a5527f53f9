package memoirs

import (
	"strings"
)

// Query narrows a memoir list. The zero Query matches everything.
type Query struct {
	// Text is matched case-insensitively against the title and the plain text
	// of the content.
	Text string
	// Categories must all be present on a memoir for it to match.
	Categories []Category
	// From and To bound the memoir date (YYYY-MM-DD, inclusive). Memoirs
	// without a date fall back to their creation time.
	From string
	To   string
}

// Search returns the memoirs in list that match q, keeping list's order.
func Search(list []Memoir, q Query) []Memoir {
	text := strings.ToLower(strings.TrimSpace(q.Text))

	out := make([]Memoir, 0, len(list))
	for _, m := range list {
		if text != "" && !matchesText(m, text) {
			continue
		}
		if !hasAll(m, q.Categories) {
			continue
		}
		if !inRange(dayOf(m), q.From, q.To) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func matchesText(m Memoir, needle string) bool {
	if strings.Contains(strings.ToLower(Deref(m.Title)), needle) {
		return true
	}
	if m.Content == nil {
		return false
	}
	return strings.Contains(strings.ToLower(PlainText(*m.Content)), needle)
}

func hasAll(m Memoir, want []Category) bool {
	if len(want) == 0 {
		return true
	}
	have := m.Categories()
	for _, c := range want {
		found := false
		for _, h := range have {
			if h == c {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// dayOf is the YYYY-MM-DD prefix of the memoir's nominal date.
func dayOf(m Memoir) string {
	d := sortDate(m)
	if len(d) > 10 {
		d = d[:10]
	}
	return d
}

func inRange(day, from, to string) bool {
	if from == "" && to == "" {
		return true
	}
	if day == "" {
		return false
	}
	if from != "" && day < from {
		return false
	}
	if to != "" && day > to {
		return false
	}
	return true
}
