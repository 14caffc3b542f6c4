// Package shape turns raw generated text into the ordered display items of a tool page.
package shape

import (
	"regexp"
	"strings"
)

// Shape parses generated text into display items.
type Shape interface {
	Name() string
	Parse(text string) []string
}

var (
	listMarker  = regexp.MustCompile(`\d+\.\s`)
	titleMarker = regexp.MustCompile(`^\d+\.\s*`)
)

// IdeaList splits a numbered list on its "N. " markers.
type IdeaList struct{}

// Name implements Shape.
func (IdeaList) Name() string { return "idea_list" }

// Parse implements Shape.
func (IdeaList) Parse(text string) []string {
	var items []string
	for _, seg := range listMarker.Split(text, -1) {
		if seg = strings.TrimSpace(seg); seg != "" {
			items = append(items, seg)
		}
	}
	return items
}

// Verbatim keeps the whole text as one item.
type Verbatim struct{}

// Name implements Shape.
func (Verbatim) Name() string { return "verbatim" }

// Parse implements Shape. Whitespace-only text has no items.
func (Verbatim) Parse(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return []string{text}
}

// TitleList keeps one item per non-blank line with its list marker stripped.
type TitleList struct{}

// Name implements Shape.
func (TitleList) Name() string { return "title_list" }

// Parse implements Shape.
func (TitleList) Parse(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line = strings.TrimSpace(titleMarker.ReplaceAllString(line, "")); line != "" {
			items = append(items, line)
		}
	}
	return items
}

// ByName resolves a shape by its Name.
func ByName(name string) (Shape, bool) {
	switch name {
	case IdeaList{}.Name():
		return IdeaList{}, true
	case Verbatim{}.Name():
		return Verbatim{}, true
	case TitleList{}.Name():
		return TitleList{}, true
	}
	return nil, false
}
