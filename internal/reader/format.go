package reader

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
)

// Format defines a file format loader.
type Format interface {
	Name() string
	Extensions() []string
	Load(filename string) (Document, error)
}

var registry []Format

// Register adds a format loader to the registry.
func Register(f Format) {
	registry = append(registry, f)
}

// LoadFile loads a document using a registered format, falling back to
// plain text.
func LoadFile(filename string) (Document, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, f := range registry {
		for _, e := range f.Extensions() {
			if ext == e {
				return f.Load(filename)
			}
		}
	}
	return (&TextFormat{}).Load(filename)
}

// LoadReader reads a plain-text document from r, e.g. stdin.
func LoadReader(title string, r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, err
	}
	text, err := DecodeText(data)
	if err != nil {
		return Document{}, err
	}
	return NewDocument(title, text), nil
}

// SupportedFormats returns registered format names with their extensions.
func SupportedFormats() []string {
	var out []string
	for _, f := range registry {
		out = append(out, f.Name()+" ("+strings.Join(f.Extensions(), ", ")+")")
	}
	return out
}

// TextFormat implements Format for plain text files.
type TextFormat struct{}

func init() {
	Register(&TextFormat{})
}

func (f *TextFormat) Name() string         { return "Text" }
func (f *TextFormat) Extensions() []string { return []string{".txt"} }

func (f *TextFormat) Load(filename string) (Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Document{}, err
	}
	text, err := DecodeText(data)
	if err != nil {
		return Document{}, err
	}
	return NewDocument(titleFromPath(filename), text), nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeText returns data as a string. UTF-8 is used when valid (BOM
// stripped); anything else is decoded as GB18030, which covers GBK and
// GB2312 files.
func DecodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}
	out, err := simplifiedchinese.GB18030.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func titleFromPath(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
