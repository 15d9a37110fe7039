package format

import (
	"fmt"
	"strings"
)

// Section names accepted in a sort order.
const (
	SectionScripts = "scripts"
	SectionStyles  = "styles"
	SectionMarkup  = "markup"
)

// DefaultSortOrder is used when Options.SortOrder is empty.
const DefaultSortOrder = "scripts-styles-markup"

type Options struct {
	// SortOrder is a permutation of scripts, styles and markup written a-b-c.
	SortOrder string
	// StrictMode quotes mustache attribute values and only self-closes void
	// elements.
	StrictMode bool
	// BracketNewLine moves the closing '>' of a broken tag to its own line.
	BracketNewLine bool

	PrintWidth int
	TabWidth   int
	UseTabs    bool
}

func (o Options) withDefaults() Options {
	if o.SortOrder == "" {
		o.SortOrder = DefaultSortOrder
	}
	if o.PrintWidth <= 0 {
		o.PrintWidth = 80
	}
	if o.TabWidth <= 0 {
		o.TabWidth = 2
	}
	return o
}

// Validate reports an invalid sort order.
func (o Options) Validate() error {
	_, err := ParseSortOrder(o.withDefaults().SortOrder)
	return err
}

// ParseSortOrder splits a sort order into its three sections.
func ParseSortOrder(s string) ([]string, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid sort order %q: want three sections like %q", s, DefaultSortOrder)
	}
	seen := map[string]bool{}
	for _, p := range parts {
		switch p {
		case SectionScripts, SectionStyles, SectionMarkup:
		default:
			return nil, fmt.Errorf("invalid sort order %q: unknown section %q", s, p)
		}
		if seen[p] {
			return nil, fmt.Errorf("invalid sort order %q: section %q repeated", s, p)
		}
		seen[p] = true
	}
	return parts, nil
}
