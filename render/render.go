// Package render writes release groups as changelog documents.
package render

import (
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jeffrom/chlog/commit"
	"github.com/jeffrom/chlog/config"
)

// Renderer writes release groups, ordered as given, to w.
type Renderer interface {
	Render(w io.Writer, groups []*commit.ReleaseGroup) error
}

type Options struct {
	// Project names the project in document headers.
	Project string
	// DateFormat is a time layout for release dates. Defaults to
	// config.DateLayout.
	DateFormat    string
	IncludeHashes bool
	// Plain disables colors in terminal output.
	Plain bool
	// MaxWidth wraps terminal output. Zero wraps at 80 columns.
	MaxWidth int
	// Template is text/template source for the template format. Empty uses
	// a release notes shortlog.
	Template string
}

func (o Options) dateFormat() string {
	if o.DateFormat == "" {
		return config.DateLayout
	}
	return o.DateFormat
}

// New returns the Renderer for format. FormatAuto must be resolved by the
// caller.
func New(format string, opts Options) (Renderer, error) {
	switch format {
	case config.FormatMarkdown:
		return &Markdown{opts: opts}, nil
	case config.FormatJSON:
		return &JSON{opts: opts}, nil
	case config.FormatText:
		return &Text{opts: opts}, nil
	case config.FormatTerminal:
		return &Terminal{opts: opts}, nil
	case config.FormatTemplate:
		return NewTemplate(opts)
	}
	return nil, fmt.Errorf("render: unknown format %q", format)
}

// Message returns the display text of c: its description with the first
// letter upper-cased.
func Message(c *commit.ClassifiedCommit) string {
	return capitalizeFirst(strings.TrimSpace(c.Description))
}

func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// groupDate formats the group's date, or "Unknown" for groups without one.
func groupDate(g *commit.ReleaseGroup, layout string) string {
	if g.Date == nil {
		return "Unknown"
	}
	return g.Date.Format(layout)
}

// errWriter remembers the first write error so renderers can write
// unconditionally and check once.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	ew.printf("%s\n", s)
}
