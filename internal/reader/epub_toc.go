package reader

import (
	"encoding/xml"
	"io"
	"path"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
)

// NCX XML structures for parsing toc.ncx
type ncx struct {
	NavMap navMap `xml:"navMap"`
}

type navMap struct {
	NavPoints []navPoint `xml:"navPoint"`
}

type navPoint struct {
	Label    navLabel   `xml:"navLabel"`
	Content  navContent `xml:"content"`
	Children []navPoint `xml:"navPoint"`
}

type navLabel struct {
	Text string `xml:"text"`
}

type navContent struct {
	Src string `xml:"src,attr"`
}

const ncxMediaType = "application/x-dtbncx+xml"

// tocTitles maps spine hrefs (full and base name, fragment removed) to
// the first NCX title pointing at them. Books without an NCX get an
// empty map.
func tocTitles(book *epub.Rootfile) map[string]string {
	result := make(map[string]string)

	data, err := readNCX(book)
	if err != nil || data == nil {
		return result
	}
	return parseNCXTitles(data)
}

func readNCX(book *epub.Rootfile) ([]byte, error) {
	for i := range book.Manifest.Items {
		item := &book.Manifest.Items[i]
		if item.MediaType != ncxMediaType {
			continue
		}
		rc, err := item.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, nil
}

func parseNCXTitles(data []byte) map[string]string {
	result := make(map[string]string)

	var toc ncx
	if err := xml.Unmarshal(data, &toc); err != nil {
		return result
	}

	add := func(key, title string) {
		if _, exists := result[key]; !exists {
			result[key] = title
		}
	}

	var extract func(points []navPoint)
	extract = func(points []navPoint) {
		for _, np := range points {
			href := np.Content.Src
			if idx := strings.Index(href, "#"); idx != -1 {
				href = href[:idx]
			}
			title := strings.TrimSpace(np.Label.Text)
			if href != "" && title != "" {
				add(href, title)
				add(path.Base(href), title)
			}
			extract(np.Children)
		}
	}
	extract(toc.NavMap.NavPoints)

	return result
}
