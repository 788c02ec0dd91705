// Package reader provides the reading session behind the flip-book and
// scroll views, and loaders that turn files into documents.
package reader

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/crab-xieyujin/foshuo/internal/pagination"
)

// Mode selects how a document is presented.
type Mode int

const (
	// ModeFlip shows one page per leaf between a cover and a back cover.
	ModeFlip Mode = iota
	// ModeScroll shows the whole document as one continuous flow.
	ModeScroll
)

func (m Mode) String() string {
	switch m {
	case ModeFlip:
		return "flip"
	case ModeScroll:
		return "scroll"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode converts "flip" or "scroll" into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flip":
		return ModeFlip, nil
	case "scroll":
		return ModeScroll, nil
	}
	return ModeFlip, fmt.Errorf("unknown reading mode %q (want flip or scroll)", s)
}

func (m Mode) MarshalText() ([]byte, error) {
	if m != ModeFlip && m != ModeScroll {
		return nil, fmt.Errorf("invalid reading mode %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// LeafKind tells covers apart from text pages.
type LeafKind int

const (
	LeafCover LeafKind = iota
	LeafPage
	LeafBackCover
)

// Leaf is one sheet of the flip book.
type Leaf struct {
	Kind LeafKind
	Page int // 0-based page index, -1 for covers
	Text string
	Span pagination.Span
}

// DefaultSpeed is the auto-play delay in seconds per page.
const DefaultSpeed = 5

// Reader holds the state for one reading session of a document.
type Reader struct {
	Doc      Document
	Mode     Mode
	AutoPlay bool
	Speed    int // seconds per page while auto-playing

	paginator pagination.Paginator
	size      pagination.Size
	runes     []rune
	spans     []pagination.Span
	cache     map[pagination.Size][]pagination.Span
	leaf      int
}

// Option configures a Reader.
type Option func(*Reader)

// WithPaginator replaces pagination.Default.
func WithPaginator(p pagination.Paginator) Option {
	return func(r *Reader) { r.paginator = p }
}

// WithMode sets the initial reading mode.
func WithMode(m Mode) Option {
	return func(r *Reader) { r.Mode = m }
}

// NewReader paginates doc for size and opens it at the cover.
func NewReader(doc Document, size pagination.Size, opts ...Option) *Reader {
	doc.Text = pagination.Normalize(doc.Text)
	r := &Reader{
		Doc:       doc,
		Speed:     DefaultSpeed,
		paginator: pagination.Default,
		runes:     []rune(doc.Text),
		cache:     make(map[pagination.Size][]pagination.Span),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.paginate(size)
	return r
}

func (r *Reader) paginate(size pagination.Size) {
	spans, ok := r.cache[size]
	if !ok {
		spans = r.paginator.Segment(r.Doc.Text, pagination.ProfileFor(size).Capacity())
		r.cache[size] = spans
	}
	r.size = size
	r.spans = spans
}

// Size returns the active font-size class.
func (r *Reader) Size() pagination.Size {
	return r.size
}

// Profile returns the layout profile for the active size.
func (r *Reader) Profile() pagination.Profile {
	return pagination.ProfileFor(r.size)
}

// SetSize re-paginates for a new font size, staying on the same passage.
func (r *Reader) SetSize(size pagination.Size) {
	if size == r.size {
		return
	}
	kind := r.CurrentLeaf().Kind
	off := r.Offset()
	r.paginate(size)
	switch kind {
	case LeafCover:
		r.leaf = 0
	case LeafBackCover:
		r.leaf = r.LeafCount() - 1
	default:
		r.SeekOffset(off)
	}
}

// Text returns the whole normalized document, as shown in scroll mode.
func (r *Reader) Text() string {
	return r.Doc.Text
}

// Pages returns the page strings for the active size.
func (r *Reader) Pages() []string {
	pages := make([]string, len(r.spans))
	for i := range r.spans {
		pages[i] = r.pageText(i)
	}
	return pages
}

func (r *Reader) pageText(i int) string {
	s := r.spans[i]
	return string(r.runes[s.Start:s.End])
}

// PageCount returns the number of text pages.
func (r *Reader) PageCount() int {
	return len(r.spans)
}

// LeafCount returns the number of leaves: the pages plus both covers.
func (r *Reader) LeafCount() int {
	return len(r.spans) + 2
}

// Leaf returns leaf i, clamped to the valid range.
func (r *Reader) Leaf(i int) Leaf {
	switch {
	case i <= 0:
		return Leaf{Kind: LeafCover, Page: -1, Text: r.Doc.Title}
	case i >= r.LeafCount()-1:
		end := len(r.runes)
		return Leaf{Kind: LeafBackCover, Page: -1, Span: pagination.Span{Start: end, End: end}}
	}
	return Leaf{Kind: LeafPage, Page: i - 1, Text: r.pageText(i - 1), Span: r.spans[i-1]}
}

// Current returns the current leaf index.
func (r *Reader) Current() int {
	return r.leaf
}

// CurrentLeaf returns the leaf being shown.
func (r *Reader) CurrentLeaf() Leaf {
	return r.Leaf(r.leaf)
}

// Next flips forward. Returns false at the back cover.
func (r *Reader) Next() bool {
	if r.leaf < r.LeafCount()-1 {
		r.leaf++
		return true
	}
	return false
}

// Prev flips back. Returns false at the cover.
func (r *Reader) Prev() bool {
	if r.leaf > 0 {
		r.leaf--
		return true
	}
	return false
}

// GoTo jumps to leaf i, clamped to the valid range.
func (r *Reader) GoTo(i int) {
	r.leaf = max(0, min(i, r.LeafCount()-1))
}

// AtEnd returns true if the reader is at the back cover.
func (r *Reader) AtEnd() bool {
	return r.leaf >= r.LeafCount()-1
}

// Progress returns the 1-based current leaf and the leaf count.
func (r *Reader) Progress() (current, total int) {
	return r.leaf + 1, r.LeafCount()
}

// Offset returns the rune offset of the current leaf in the document.
func (r *Reader) Offset() int {
	return r.CurrentLeaf().Span.Start
}

// SeekOffset moves to the page containing rune offset off. Offsets that
// fall in whitespace dropped between pages land on the following page.
func (r *Reader) SeekOffset(off int) {
	if len(r.spans) == 0 {
		r.leaf = 0
		return
	}
	i := sort.Search(len(r.spans), func(i int) bool { return r.spans[i].End > off })
	if i == len(r.spans) {
		i = len(r.spans) - 1
	}
	r.leaf = i + 1
}

// Chapters returns the document's chapters.
func (r *Reader) Chapters() []Chapter {
	return r.Doc.Chapters
}

// JumpToChapter moves to the page where chapter i starts.
func (r *Reader) JumpToChapter(i int) bool {
	if i < 0 || i >= len(r.Doc.Chapters) {
		return false
	}
	r.SeekOffset(r.Doc.Chapters[i].Offset)
	return true
}

// CurrentChapter returns the index of the chapter containing the current
// leaf, or -1 before the first chapter.
func (r *Reader) CurrentChapter() int {
	if r.CurrentLeaf().Kind == LeafCover {
		return -1
	}
	off := r.CurrentLeaf().Span.End - 1
	for i := len(r.Doc.Chapters) - 1; i >= 0; i-- {
		if r.Doc.Chapters[i].Offset <= off {
			return i
		}
	}
	return -1
}

// CurrentChapterTitle returns the title of the current chapter.
func (r *Reader) CurrentChapterTitle() string {
	if i := r.CurrentChapter(); i >= 0 {
		return r.Doc.Chapters[i].Title
	}
	return ""
}

// Delay returns how long each page stays up while auto-playing.
func (r *Reader) Delay() time.Duration {
	speed := r.Speed
	if speed < 1 {
		speed = DefaultSpeed
	}
	return time.Duration(speed) * time.Second
}
