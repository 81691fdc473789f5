package commit

import (
	"fmt"
	"regexp"

	"github.com/jeffrom/chlog/model"
)

// DefaultExcludes match the subjects of merge commits created by git and
// common forges.
var DefaultExcludes = []string{
	`^Merge (branch|pull request|remote-tracking branch|tag) `,
}

// Filter drops commits whose subject matches any of its patterns. It runs
// before classification.
type Filter struct {
	patterns []*regexp.Regexp
}

func NewFilter(patterns []string) (*Filter, error) {
	f := &Filter{}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("commit: invalid exclude pattern %q: %w", p, err)
		}
		f.patterns = append(f.patterns, re)
	}
	return f, nil
}

func (f *Filter) Excluded(c *model.Commit) bool {
	for _, re := range f.patterns {
		if re.MatchString(c.Subject) {
			return true
		}
	}
	return false
}

// Apply returns the commits that are not excluded, in their original order.
func (f *Filter) Apply(commits []*model.Commit) []*model.Commit {
	if len(f.patterns) == 0 {
		return commits
	}
	res := make([]*model.Commit, 0, len(commits))
	for _, c := range commits {
		if !f.Excluded(c) {
			res = append(res, c)
		}
	}
	return res
}
