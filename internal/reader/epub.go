package reader

import (
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// EPUBFormat implements Format for EPUB files.
type EPUBFormat struct{}

func init() {
	Register(&EPUBFormat{})
}

func (f *EPUBFormat) Name() string         { return "EPUB" }
func (f *EPUBFormat) Extensions() []string { return []string{".epub"} }

// Load reads the spine in order. Spine items listed in the NCX table of
// contents start a chapter.
func (f *EPUBFormat) Load(filename string) (Document, error) {
	rc, err := epub.OpenReader(filename)
	if err != nil {
		return Document{}, fmt.Errorf("failed to open epub: %w", err)
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return Document{}, fmt.Errorf("no rootfiles found in epub")
	}

	book := rc.Rootfiles[0]
	titles := tocTitles(book)

	var b docBuilder
	for _, ref := range book.Spine.Itemrefs {
		if ref.Item == nil {
			continue
		}

		r, err := ref.Item.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			continue
		}

		paras := htmlParagraphs(string(data))
		if len(paras) == 0 {
			continue
		}

		if t, ok := titles[ref.Item.HREF]; ok {
			b.chapter(t, 0)
		} else if t, ok := titles[path.Base(ref.Item.HREF)]; ok {
			b.chapter(t, 0)
		}
		for _, p := range paras {
			b.paragraph(p)
		}
	}

	title := strings.TrimSpace(book.Title)
	if title == "" {
		title = titleFromPath(filename)
	}
	return b.document(title), nil
}

var (
	spaceRun = regexp.MustCompile(`[ \t\r\n\f]+`)

	blockAtoms = map[atom.Atom]bool{
		atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true,
		atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
		atom.Blockquote: true, atom.Pre: true, atom.Tr: true, atom.Section: true,
	}

	skipAtoms = map[atom.Atom]bool{
		atom.Head: true, atom.Script: true, atom.Style: true,
	}
)

// htmlParagraphs extracts the text of an XHTML chapter, one string per
// block element. Whitespace runs inside a block collapse to one space.
func htmlParagraphs(s string) []string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return nil
	}

	var paras []string
	var cur strings.Builder
	flush := func() {
		if t := strings.TrimSpace(cur.String()); t != "" {
			paras = append(paras, t)
		}
		cur.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipAtoms[n.DataAtom] {
			return
		}
		if n.Type == html.TextNode {
			cur.WriteString(spaceRun.ReplaceAllString(n.Data, " "))
		}
		block := n.Type == html.ElementNode && blockAtoms[n.DataAtom]
		if block {
			flush()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			flush()
		}
	}
	walk(doc)
	flush()
	return paras
}
