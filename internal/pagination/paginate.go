// Package pagination reflows plain text into fixed-capacity pages for the
// flip-book reader.
package pagination

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	// DefaultLookback is how many characters before the capacity limit are
	// searched for a break point.
	DefaultLookback = 80

	// DefaultBoundaries are the characters a page may end on.
	DefaultBoundaries = "。！？；：，\n"
)

// Default is the paginator used by Paginate.
var Default = Paginator{Lookback: DefaultLookback, Boundaries: DefaultBoundaries}

// Span is a page's position in the normalized document, in runes.
// End is exclusive.
type Span struct {
	Start int
	End   int
}

// Len returns the number of runes in the span.
func (s Span) Len() int { return s.End - s.Start }

// Paginator splits text into pages, preferring to cut just after a
// boundary character close to the capacity limit.
// The zero value never looks back and always hard-cuts at capacity.
type Paginator struct {
	Lookback   int
	Boundaries string
}

var blankRunRegex = regexp.MustCompile(`\n{3,}`)

// Normalize converts CRLF line endings to LF and caps blank lines at one.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return blankRunRegex.ReplaceAllString(text, "\n\n")
}

// Paginate normalizes text and splits it into pages using Default.
func Paginate(text string, profile Profile) []string {
	return Default.Paginate(text, profile)
}

// Paginate normalizes text and splits it into pages for profile.
// Empty text yields no pages.
func (p Paginator) Paginate(text string, profile Profile) []string {
	norm := []rune(Normalize(text))
	spans := p.segment(norm, profile.Capacity())
	pages := make([]string, len(spans))
	for i, s := range spans {
		pages[i] = string(norm[s.Start:s.End])
	}
	return pages
}

// Segment returns page spans over already-normalized text.
// It panics if capacity is not positive.
func (p Paginator) Segment(normalized string, capacity int) []Span {
	return p.segment([]rune(normalized), capacity)
}

func (p Paginator) segment(text []rune, capacity int) []Span {
	if capacity < 1 {
		panic("pagination: capacity must be positive")
	}

	var spans []Span
	start := 0
	for start < len(text) {
		cut := len(text) - start
		if cut > capacity {
			cut = capacity
			window := min(p.Lookback, cut)
			if window > 0 {
				if i := p.lastBoundary(text[start+cut-window : start+cut]); i >= 0 {
					cut = cut - window + i + 1
				}
			}
		}

		spans = append(spans, Span{Start: start, End: start + cut})
		start += cut
		for start < len(text) && isTrimmable(text[start]) {
			start++
		}
	}
	return spans
}

// lastBoundary returns the highest index in window holding any boundary
// character, or -1.
func (p Paginator) lastBoundary(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if strings.ContainsRune(p.Boundaries, window[i]) {
			return i
		}
	}
	return -1
}

func isTrimmable(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}
