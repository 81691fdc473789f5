package render

import (
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jeffrom/chlog/commit"
)

const textRuleWidth = 70

// Text renders a plain text changelog.
type Text struct {
	opts Options
}

func (t *Text) Render(w io.Writer, groups []*commit.ReleaseGroup) error {
	ew := &errWriter{w: w}
	upper := cases.Upper(language.Und)
	banner := strings.Repeat("=", textRuleWidth)
	rule := strings.Repeat("-", textRuleWidth)

	title := "CHANGELOG"
	if t.opts.Project != "" {
		title = upper.String(t.opts.Project) + " " + title
	}
	ew.println(banner)
	ew.println(title)
	ew.println(banner)

	for _, g := range groups {
		ew.println("")
		if g.IsUnreleased() {
			ew.println("UNRELEASED")
		} else {
			ew.printf("VERSION %s - %s\n", g.Label, groupDate(g, t.opts.dateFormat()))
		}
		ew.println(rule)

		for _, cat := range g.ByCategory() {
			ew.println("")
			ew.printf("%s:\n", upper.String(cat.Category.String()))
			for _, c := range cat.Commits {
				ew.println(t.entry(c))
			}
		}
	}
	return ew.err
}

func (t *Text) entry(c *commit.ClassifiedCommit) string {
	var b strings.Builder
	b.WriteString("  * ")
	if c.Breaking {
		b.WriteString("[BREAKING] ")
	}
	if c.Scope != "" {
		b.WriteString(c.Scope)
		b.WriteString(": ")
	}
	b.WriteString(Message(c))
	if t.opts.IncludeHashes {
		b.WriteString(" (")
		b.WriteString(c.ShortID())
		b.WriteString(")")
	}
	return b.String()
}
