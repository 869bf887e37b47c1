// Package markup converts lightweight markup to HTML for the content loader.
package markup

import (
	"bytes"
	"errors"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	fences "github.com/stefanfritsch/goldmark-fences"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// ErrUnavailable is returned by converters that cannot convert markup at all.
var ErrUnavailable = errors.New("markdown conversion unavailable")

// Converter turns a markup body into HTML.
type Converter interface {
	Convert(src []byte) ([]byte, error)
}

// Options configure the goldmark converter.
type Options struct {
	HighlightStyle string // chroma style name, empty disables highlighting
	HardWraps      bool
	UnsafeHTML     bool // pass raw HTML in markdown through
}

// Goldmark is the default Converter.
type Goldmark struct {
	md goldmark.Markdown
}

// NewGoldmark builds a goldmark converter with GFM, footnotes and fenced divs.
func NewGoldmark(opts Options) *Goldmark {
	exts := []goldmark.Extender{
		extension.GFM,
		extension.Footnote,
		&fences.Extender{},
	}
	if opts.HighlightStyle != "" {
		exts = append(exts, highlighting.NewHighlighting(
			highlighting.WithStyle(opts.HighlightStyle),
			highlighting.WithFormatOptions(chromahtml.TabWidth(2)),
		))
	}

	var rendererOpts []goldmark.Option
	var htmlOpts []renderer.Option
	if opts.HardWraps {
		htmlOpts = append(htmlOpts, goldmarkhtml.WithHardWraps())
	}
	if opts.UnsafeHTML {
		htmlOpts = append(htmlOpts, goldmarkhtml.WithUnsafe())
	}
	if len(htmlOpts) > 0 {
		rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(htmlOpts...))
	}

	md := goldmark.New(append([]goldmark.Option{
		goldmark.WithParserOptions(parser.WithAttribute()),
		goldmark.WithExtensions(exts...),
	}, rendererOpts...)...)
	return &Goldmark{md: md}
}

// Convert renders src as HTML.
func (g *Goldmark) Convert(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := g.md.Convert(src, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unavailable is a Converter used when markdown support is switched off.
type Unavailable struct{}

func (Unavailable) Convert([]byte) ([]byte, error) { return nil, ErrUnavailable }

// IsMarkdown reports whether ext (with leading dot, any case) is a markdown extension.
func IsMarkdown(ext string) bool {
	switch strings.ToLower(ext) {
	case ".md", ".mkd", ".mkdn", ".mdown", ".markdown":
		return true
	}
	return false
}

