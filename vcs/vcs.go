// Package vcs abstracts version control systems as sources of commits and
// tags. Implementations live in vcs/gitcli and vcs/gogit.
package vcs

import (
	"context"
	"fmt"
	"time"

	"github.com/jeffrom/chlog/model"
)

type NotFoundError struct {
	Ref string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("vcs: ref %q not found", e.Ref)
}

// Interface reads history from a repository. ReadCommits returns commits
// newest first.
type Interface interface {
	Validate(ctx context.Context) error
	ReadCommits(ctx context.Context, opts LogOpts) ([]*model.Commit, error)
	ReadTags(ctx context.Context, query string) ([]*model.Tag, error)
	Cleanup() error
}

type LogOpts struct {
	// Ref is the revision to read history from. Defaults to HEAD.
	Ref      string
	Since    time.Time
	Until    time.Time
	NoMerges bool
}

func (o LogOpts) GetRef() string {
	if o.Ref == "" {
		return "HEAD"
	}
	return o.Ref
}

// InRange reports whether t falls within the since and until bounds.
func (o LogOpts) InRange(t time.Time) bool {
	if !o.Since.IsZero() && t.Before(o.Since) {
		return false
	}
	if !o.Until.IsZero() && t.After(o.Until) {
		return false
	}
	return true
}
