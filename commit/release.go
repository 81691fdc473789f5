package commit

import "time"

// UnreleasedLabel labels commits newer than any release tag.
const UnreleasedLabel = "Unreleased"

// ReleaseGroup is a set of commits released together, under a tag or within a
// calendar month. It is built once by a Grouper and not modified afterwards.
type ReleaseGroup struct {
	Label string     `json:"version"`
	Date  *time.Time `json:"date"`
	// Tag is the name of the tag the group was built from, if any.
	Tag string `json:"tag,omitempty"`
	// Commits are in input order, newest first.
	Commits []*ClassifiedCommit `json:"commits"`
}

// CategoryCommits are the commits of a group in one category.
type CategoryCommits struct {
	Category Category
	Commits  []*ClassifiedCommit
}

func (g *ReleaseGroup) IsUnreleased() bool {
	return g.Date == nil && g.Tag == ""
}

func (g *ReleaseGroup) Len() int {
	return len(g.Commits)
}

// ByCategory partitions the group's commits by category in display order.
// Empty categories are omitted.
func (g *ReleaseGroup) ByCategory() []CategoryCommits {
	byCat := make(map[Category][]*ClassifiedCommit)
	for _, c := range g.Commits {
		byCat[c.Category] = append(byCat[c.Category], c)
	}

	var res []CategoryCommits
	for _, cat := range categories {
		if commits := byCat[cat]; len(commits) > 0 {
			res = append(res, CategoryCommits{Category: cat, Commits: commits})
		}
	}
	return res
}

// Breaking returns the group's commits marked as breaking changes.
func (g *ReleaseGroup) Breaking() []*ClassifiedCommit {
	var res []*ClassifiedCommit
	for _, c := range g.Commits {
		if c.Breaking {
			res = append(res, c)
		}
	}
	return res
}
