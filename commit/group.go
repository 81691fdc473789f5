package commit

import (
	"fmt"
	"sort"
	"time"

	"github.com/jeffrom/chlog/model"
)

// Strategy selects how commits are partitioned into release groups.
type Strategy string

const (
	// StrategyTags starts a new group at each tagged commit.
	StrategyTags Strategy = "tags"
	// StrategyDates groups commits by calendar month.
	StrategyDates Strategy = "dates"
	// StrategyAuto uses tags if there are any, otherwise dates.
	StrategyAuto Strategy = "auto"
)

// periodLabelFormat formats the label of a month group, e.g. "February 2026".
const periodLabelFormat = "January 2006"

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyTags, StrategyDates, StrategyAuto:
		return Strategy(s), nil
	case "":
		return StrategyAuto, nil
	}
	return "", fmt.Errorf("commit: unknown grouping strategy %q (expected tags, dates or auto)", s)
}

type GrouperOptions struct {
	Strategy Strategy
	// Reverse orders groups oldest first. Commits within a group keep their
	// order.
	Reverse bool
	// Now is used in place of unreadable commit dates. Defaults to time.Now.
	Now func() time.Time
}

// Grouper partitions classified commits into release groups.
type Grouper struct {
	strategy Strategy
	reverse  bool
	now      func() time.Time
}

func NewGrouper(opts GrouperOptions) *Grouper {
	strategy := opts.Strategy
	if strategy == "" {
		strategy = StrategyAuto
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Grouper{
		strategy: strategy,
		reverse:  opts.Reverse,
		now:      now,
	}
}

// Resolve returns the strategy Group will use for tags. It is never
// StrategyAuto.
func (g *Grouper) Resolve(tags []*model.Tag) Strategy {
	if g.strategy != StrategyAuto {
		return g.strategy
	}
	// semver tags are preferred, but any tag is enough to group by tag.
	if HasSemverTag(tags) || len(tags) > 0 {
		return StrategyTags
	}
	return StrategyDates
}

// Group partitions commits, which must be ordered newest first, into release
// groups ordered newest first (oldest first if the Grouper is reversed).
// Empty input returns no groups.
func (g *Grouper) Group(commits []*ClassifiedCommit, tags []*model.Tag) []*ReleaseGroup {
	if len(commits) == 0 {
		return nil
	}

	var groups []*ReleaseGroup
	switch g.Resolve(tags) {
	case StrategyDates:
		groups = g.groupByDate(commits)
	default:
		groups = g.groupByTag(commits, tags)
	}

	if g.reverse {
		for i, j := 0, len(groups)-1; i < j; i, j = i+1, j-1 {
			groups[i], groups[j] = groups[j], groups[i]
		}
	}
	return groups
}

// groupByTag walks commits newest to oldest. A tagged commit closes the
// current group and is the first commit of the group named after its tag.
func (g *Grouper) groupByTag(commits []*ClassifiedCommit, tags []*model.Tag) []*ReleaseGroup {
	byCommit := tagsByCommit(tags)

	var groups []*ReleaseGroup
	curr := &ReleaseGroup{Label: UnreleasedLabel}
	for _, c := range commits {
		if tag, ok := byCommit[c.ID]; ok {
			if len(curr.Commits) > 0 {
				groups = append(groups, curr)
			}
			date := tag.Date
			if date.IsZero() {
				date = g.commitDate(c)
			}
			curr = &ReleaseGroup{Label: tag.Name, Tag: tag.Name, Date: &date}
		}
		curr.Commits = append(curr.Commits, c)
	}
	if len(curr.Commits) > 0 {
		groups = append(groups, curr)
	}
	return groups
}

// tagsByCommit indexes tags by target commit. When a commit has several
// tags, the newest according to SortTags wins.
func tagsByCommit(tags []*model.Tag) map[string]*model.Tag {
	res := make(map[string]*model.Tag, len(tags))
	for _, t := range tags {
		if prev, ok := res[t.Commit]; ok && !tagLess(prev, t) {
			continue
		}
		res[t.Commit] = t
	}
	return res
}

type period struct {
	year  int
	month time.Month
}

func (p period) before(o period) bool {
	if p.year != o.year {
		return p.year < o.year
	}
	return p.month < o.month
}

func (g *Grouper) groupByDate(commits []*ClassifiedCommit) []*ReleaseGroup {
	byPeriod := make(map[period]*ReleaseGroup)
	var periods []period
	for _, c := range commits {
		d := g.commitDate(c)
		p := period{year: d.Year(), month: d.Month()}
		grp, ok := byPeriod[p]
		if !ok {
			start := time.Date(p.year, p.month, 1, 0, 0, 0, 0, time.UTC)
			grp = &ReleaseGroup{Label: start.Format(periodLabelFormat), Date: &start}
			byPeriod[p] = grp
			periods = append(periods, p)
		}
		grp.Commits = append(grp.Commits, c)
	}

	sort.Slice(periods, func(i, j int) bool {
		return periods[j].before(periods[i])
	})
	groups := make([]*ReleaseGroup, len(periods))
	for i, p := range periods {
		groups[i] = byPeriod[p]
	}
	return groups
}

func (g *Grouper) commitDate(c *ClassifiedCommit) time.Time {
	if d := c.Date(); !d.IsZero() {
		return d
	}
	return g.now()
}
