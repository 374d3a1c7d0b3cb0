// Package nav decides which navigation link is highlighted for a scroll position.
package nav

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultThreshold is how far above a section's top the page may be scrolled for that
// section to count as current.
const DefaultThreshold = 200

type Section struct {
	ID  string
	Top float64
}

type Link struct {
	Href   string
	Label  string
	Active bool
}

// Active returns the id of the last section, in document order, whose top is within
// threshold of scrollY. It returns "" when the page is above every section.
func Active(sections []Section, scrollY, threshold float64) string {
	current := ""
	for _, s := range sections {
		if scrollY >= s.Top-threshold {
			current = s.ID
		}
	}
	return current
}

// Highlight returns a copy of links with only the link for section active marked.
func Highlight(links []Link, active string) []Link {
	out := make([]Link, len(links))
	for i, l := range links {
		l.Active = active != "" && l.Href == "#"+active
		out[i] = l
	}
	return out
}

// ParseSections reads "id:top" pairs.
func ParseSections(raw []string) ([]Section, error) {
	sections := make([]Section, 0, len(raw))
	for _, r := range raw {
		id, top, ok := strings.Cut(r, ":")
		if !ok || id == "" {
			return nil, fmt.Errorf("section %q: want id:top", r)
		}
		v, err := strconv.ParseFloat(top, 64)
		if err != nil {
			return nil, fmt.Errorf("section %q: %w", r, err)
		}
		sections = append(sections, Section{ID: id, Top: v})
	}
	return sections, nil
}
