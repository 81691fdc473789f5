package vcs

import (
	"context"
	"strings"
	"time"

	"github.com/jeffrom/chlog/model"
)

// Mock is an in-memory Interface for tests.
type Mock struct {
	t       time.Time
	tags    []*model.Tag
	commits []*model.Commit
	err     error
}

func NewMock() *Mock {
	return &Mock{
		t: time.Now(),
	}
}

// SetTime sets the date given to the next commit without one.
func (m *Mock) SetTime(t time.Time) *Mock {
	m.t = t
	return m
}

// SetTags adds lightweight tags. Each is "name" or "name=commit"; a bare
// name tags the newest commit.
func (m *Mock) SetTags(tags ...string) *Mock {
	m.tags = nil
	for _, t := range tags {
		name, commit := t, ""
		if parts := strings.SplitN(t, "=", 2); len(parts) == 2 {
			name, commit = parts[0], parts[1]
		} else if len(m.commits) > 0 {
			commit = m.commits[0].ID
		}
		tag := &model.Tag{Name: name, Commit: commit}
		for _, c := range m.commits {
			if c.ID == commit {
				tag.Date = c.Date()
				break
			}
		}
		m.tags = append(m.tags, tag)
	}
	return m
}

func (m *Mock) AddTags(tags ...*model.Tag) *Mock {
	m.tags = append(m.tags, tags...)
	return m
}

// SetCommits sets the history, newest first. Commits without dates are given
// dates a minute apart, going back in time.
func (m *Mock) SetCommits(commits ...*model.Commit) *Mock {
	finalCommits := make([]*model.Commit, len(commits))
	for i, commit := range commits {
		c := *commit
		if c.AuthorDate.IsZero() && c.CommitterDate.IsZero() {
			c.AuthorDate = m.t
			c.CommitterDate = m.t
			m.t = m.t.Add(-time.Minute)
		}
		finalCommits[i] = &c
	}
	m.commits = finalCommits
	return m
}

// SetError makes every read return err.
func (m *Mock) SetError(err error) *Mock {
	m.err = err
	return m
}

func (m *Mock) Validate(ctx context.Context) error {
	return m.err
}

func (m *Mock) ReadCommits(ctx context.Context, opts LogOpts) ([]*model.Commit, error) {
	if m.err != nil {
		return nil, m.err
	}
	var commits []*model.Commit
	for _, c := range m.commits {
		if opts.NoMerges && c.IsMerge() {
			continue
		}
		if !opts.InRange(c.Date()) {
			continue
		}
		commits = append(commits, c)
	}
	return commits, nil
}

func (m *Mock) ReadTags(ctx context.Context, query string) ([]*model.Tag, error) {
	if m.err != nil {
		return nil, m.err
	}
	var tags []*model.Tag
	for _, t := range m.tags {
		if query == "" || GlobMatches(t.Name, query) {
			tags = append(tags, t)
		}
	}
	return tags, nil
}

func (m *Mock) Cleanup() error {
	return nil
}

// GlobMatches reports whether s matches glob, where "*" matches any run of
// characters.
func GlobMatches(s string, glob string) bool {
	parts := strings.Split(glob, "*")
	if len(parts) == 1 {
		return s == glob
	}
	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	remaining := s[len(parts[0]):]
	for _, part := range parts[1 : len(parts)-1] {
		idx := strings.Index(remaining, part)
		if idx < 0 {
			return false
		}
		remaining = remaining[idx+len(part):]
	}
	return strings.HasSuffix(remaining, parts[len(parts)-1])
}
