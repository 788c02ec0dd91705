package reader

import (
	"strings"
	"unicode/utf8"

	"github.com/crab-xieyujin/foshuo/internal/pagination"
)

// Chapter marks where a titled section starts in a document.
type Chapter struct {
	Title  string
	Level  int // h1 = 0, h2 = 1, ...
	Offset int // rune offset into Document.Text
}

// Document is one normalized work ready for reading.
type Document struct {
	Title    string
	Text     string
	Chapters []Chapter
}

// NewDocument normalizes text and wraps it in a Document with no chapters.
func NewDocument(title, text string) Document {
	return Document{Title: title, Text: pagination.Normalize(text)}
}

// Len returns the document length in runes.
func (d Document) Len() int {
	return utf8.RuneCountInString(d.Text)
}

// docBuilder assembles a normalized document out of paragraphs, recording
// chapter offsets as it goes. Paragraphs are separated by one blank line.
type docBuilder struct {
	sb       strings.Builder
	runes    int
	chapters []Chapter
}

func (b *docBuilder) chapter(title string, level int) {
	title = strings.TrimSpace(title)
	if title == "" {
		return
	}
	off := b.runes
	if off > 0 {
		off += 2 // the separator written before the next paragraph
	}
	b.chapters = append(b.chapters, Chapter{Title: title, Level: level, Offset: off})
}

func (b *docBuilder) paragraph(text string) {
	text = strings.Trim(pagination.Normalize(text), "\n")
	if strings.TrimSpace(text) == "" {
		return
	}
	if b.runes > 0 {
		b.sb.WriteString("\n\n")
		b.runes += 2
	}
	b.sb.WriteString(text)
	b.runes += utf8.RuneCountInString(text)
}

func (b *docBuilder) document(title string) Document {
	// Chapters recorded after the last paragraph point past the end.
	chapters := b.chapters[:0:0]
	for _, ch := range b.chapters {
		if ch.Offset > b.runes {
			ch.Offset = b.runes
		}
		chapters = append(chapters, ch)
	}
	return Document{Title: title, Text: b.sb.String(), Chapters: chapters}
}
