package pagination

import (
	"fmt"
	"strings"
)

// Size is a named font-size class.
type Size int

const (
	Small Size = iota
	Medium
	Large
	Huge
)

// Sizes lists every size class from smallest to largest.
var Sizes = []Size{Small, Medium, Large, Huge}

var sizeNames = [...]string{"small", "medium", "large", "huge"}

func (s Size) String() string {
	if s < Small || s > Huge {
		return fmt.Sprintf("Size(%d)", int(s))
	}
	return sizeNames[s]
}

// Valid reports whether s is one of the four size classes.
func (s Size) Valid() bool {
	return s >= Small && s <= Huge
}

// ParseSize converts a size name such as "medium" into a Size.
func ParseSize(name string) (Size, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range sizeNames {
		if n == name {
			return Size(i), nil
		}
	}
	return Medium, fmt.Errorf("unknown font size %q (want small, medium, large or huge)", name)
}

func (s Size) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid font size %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Size) UnmarshalText(b []byte) error {
	v, err := ParseSize(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Bigger returns the next larger size, or s if it is already the largest.
func (s Size) Bigger() Size {
	if s < Huge {
		return s + 1
	}
	return s
}

// Smaller returns the next smaller size, or s if it is already the smallest.
func (s Size) Smaller() Size {
	if s > Small {
		return s - 1
	}
	return s
}

// Profile fixes how many characters fit on one page for a size class.
// Text is laid out in vertical right-to-left columns: CharsPerLine is the
// height of a column and LinesPerPage the number of columns.
type Profile struct {
	Size         Size
	CharsPerLine int
	LinesPerPage int
}

// Measured for a ~390x696px reading area after header and nav bars.
var profiles = [...]Profile{
	Small:  {Size: Small, CharsPerLine: 42, LinesPerPage: 21},
	Medium: {Size: Medium, CharsPerLine: 32, LinesPerPage: 16},
	Large:  {Size: Large, CharsPerLine: 28, LinesPerPage: 14},
	Huge:   {Size: Huge, CharsPerLine: 24, LinesPerPage: 11},
}

// ProfileFor returns the built-in profile for s. Unknown sizes fall back
// to Medium.
func ProfileFor(s Size) Profile {
	if !s.Valid() {
		return profiles[Medium]
	}
	return profiles[s]
}

// NewProfile builds a custom profile. Both dimensions must be at least 1.
func NewProfile(size Size, charsPerLine, linesPerPage int) (Profile, error) {
	if charsPerLine < 1 {
		return Profile{}, fmt.Errorf("chars per line must be at least 1, got %d", charsPerLine)
	}
	if linesPerPage < 1 {
		return Profile{}, fmt.Errorf("lines per page must be at least 1, got %d", linesPerPage)
	}
	return Profile{Size: size, CharsPerLine: charsPerLine, LinesPerPage: linesPerPage}, nil
}

// Capacity is the maximum number of characters on one page.
func (p Profile) Capacity() int {
	return p.CharsPerLine * p.LinesPerPage
}
