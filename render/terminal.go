package render

import (
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/jeffrom/chlog/commit"
)

const defaultWidth = 80

const breakingLabel = "BREAKING"

type categoryStyle struct {
	color *color.Color
	icon  string
}

var categoryStyles = map[commit.Category]categoryStyle{
	commit.Added:         {color: color.New(color.FgGreen), icon: "+"},
	commit.Changed:       {color: color.New(color.FgBlue), icon: "~"},
	commit.Deprecated:    {color: color.New(color.FgYellow), icon: "!"},
	commit.Removed:       {color: color.New(color.FgRed), icon: "-"},
	commit.Fixed:         {color: color.New(color.FgYellow), icon: "*"},
	commit.Security:      {color: color.New(color.FgMagenta), icon: "#"},
	commit.Documentation: {color: color.New(color.FgCyan), icon: "?"},
	commit.Testing:       {color: color.New(color.FgCyan), icon: "="},
	commit.Build:         {color: color.New(color.FgWhite), icon: "^"},
	commit.Other:         {color: color.New(color.Faint), icon: "."},
}

// Terminal renders a colored changelog for interactive use.
type Terminal struct {
	opts Options
}

func (t *Terminal) Render(w io.Writer, groups []*commit.ReleaseGroup) error {
	ew := &errWriter{w: w}
	width := t.opts.MaxWidth
	if width <= 0 {
		width = defaultWidth
	}
	bold := color.New(color.Bold)
	breaking := color.New(color.FgRed, color.Bold)

	for i, g := range groups {
		if i > 0 {
			ew.println("")
		}
		header := g.Label
		if !g.IsUnreleased() {
			header += " (" + groupDate(g, t.opts.dateFormat()) + ")"
		}
		ew.println(t.sprint(bold, header))

		for _, cat := range g.ByCategory() {
			style := categoryStyles[cat.Category]
			ew.println("")
			ew.printf("%s %s\n", t.sprint(style.color, style.icon), t.sprint(style.color, cat.Category.String()))

			for _, c := range cat.Commits {
				prefix := "  - "
				text := Message(c)
				if c.Scope != "" {
					text = c.Scope + ": " + text
				}
				if t.opts.IncludeHashes {
					text += " (" + c.ShortID() + ")"
				}
				if c.Breaking {
					text = breakingLabel + " " + text
				}
				// wrap before coloring so escape codes don't count toward the width.
				text = wrapText(text, width-len(prefix), "    ")
				if c.Breaking {
					text = t.sprint(breaking, breakingLabel) + strings.TrimPrefix(text, breakingLabel)
				}
				ew.println(prefix + text)
			}
		}
	}
	return ew.err
}

func (t *Terminal) sprint(c *color.Color, s string) string {
	if t.opts.Plain || c == nil {
		return s
	}
	return c.Sprint(s)
}

// wrapText breaks text at spaces so no line is wider than width runes.
// Continuation lines start with indent. Words longer than width are not
// broken.
func wrapText(text string, width int, indent string) string {
	if width <= 0 || utf8.RuneCountInString(text) <= width {
		return text
	}

	var lines []string
	var line strings.Builder
	lineLen := 0
	for _, word := range strings.Fields(text) {
		wordLen := utf8.RuneCountInString(word)
		if lineLen > 0 && lineLen+1+wordLen > width {
			lines = append(lines, line.String())
			line.Reset()
			lineLen = 0
		}
		if lineLen > 0 {
			line.WriteByte(' ')
			lineLen++
		}
		line.WriteString(word)
		lineLen += wordLen
	}
	if lineLen > 0 {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n"+indent)
}
