package render

import (
	"io"
	"strings"

	"github.com/jeffrom/chlog/commit"
)

// Markdown renders a Keep a Changelog document.
type Markdown struct {
	opts Options
}

func (m *Markdown) Render(w io.Writer, groups []*commit.ReleaseGroup) error {
	ew := &errWriter{w: w}

	project := m.opts.Project
	if project == "" {
		project = "this project"
	}
	ew.println("# Changelog")
	ew.println("")
	ew.printf("All notable changes to %s will be documented in this file.\n", project)
	ew.println("")
	ew.println("The format is based on [Keep a Changelog](https://keepachangelog.com/en/1.1.0/),")
	ew.println("and this project adheres to [Semantic Versioning](https://semver.org/spec/v2.0.0.html).")

	for _, g := range groups {
		ew.println("")
		if g.IsUnreleased() {
			ew.println("## [Unreleased]")
		} else {
			ew.printf("## [%s] - %s\n", g.Label, groupDate(g, m.opts.dateFormat()))
		}

		for _, cat := range g.ByCategory() {
			ew.println("")
			ew.printf("### %s\n", cat.Category)
			ew.println("")
			for _, c := range cat.Commits {
				ew.println(m.entry(c))
			}
		}
	}
	return ew.err
}

func (m *Markdown) entry(c *commit.ClassifiedCommit) string {
	var b strings.Builder
	b.WriteString("- ")
	if c.Breaking {
		b.WriteString("**BREAKING** ")
	}
	if c.Scope != "" {
		b.WriteString("**")
		b.WriteString(c.Scope)
		b.WriteString(":** ")
	}
	b.WriteString(Message(c))
	if m.opts.IncludeHashes {
		b.WriteString(" (")
		b.WriteString(c.ShortID())
		b.WriteString(")")
	}
	return b.String()
}
