package commit

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/blang/semver/v4"

	"github.com/jeffrom/chlog/model"
)

// semverTagRE is the official semver regexp, anchored, with an optional "v"
// prefix:
// https://semver.org/#is-there-a-suggested-regular-expression-regex-to-check-a-semver-string
var semverTagRE = regexp.MustCompile(`^v?(?P<major>0|[1-9]\d*)\.(?P<minor>0|[1-9]\d*)\.(?P<patch>0|[1-9]\d*)(?:-(?P<prerelease>(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*)(?:\.(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*))*))?(?:\+(?P<buildmetadata>[0-9a-zA-Z-]+(?:\.[0-9a-zA-Z-]+)*))?$`)

var errInvalidSemver = errors.New("invalid semver string")

// IsSemverTag reports whether name looks like vMAJOR.MINOR.PATCH, with an
// optional prerelease and build suffix.
func IsSemverTag(name string) bool {
	_, err := TagVersion(name)
	return err == nil
}

// TagVersion parses the semantic version of a tag name.
func TagVersion(name string) (semver.Version, error) {
	if !semverTagRE.MatchString(name) {
		return semver.Version{}, fmt.Errorf("%w: %q", errInvalidSemver, name)
	}
	v, err := semver.Parse(strings.TrimPrefix(name, "v"))
	if err != nil {
		return semver.Version{}, fmt.Errorf("%w: %q (%v)", errInvalidSemver, name, err)
	}
	return v, nil
}

// HasSemverTag reports whether any of tags is a semver tag.
func HasSemverTag(tags []*model.Tag) bool {
	for _, t := range tags {
		if IsSemverTag(t.Name) {
			return true
		}
	}
	return false
}

// SortTags returns tags ordered newest first. Semver tags come first, by
// descending version, followed by the rest by descending date.
func SortTags(tags []*model.Tag) []*model.Tag {
	sorted := make([]*model.Tag, len(tags))
	copy(sorted, tags)
	sort.SliceStable(sorted, func(i, j int) bool {
		return tagLess(sorted[j], sorted[i])
	})
	return sorted
}

// LatestTag returns the newest tag according to SortTags, or nil.
func LatestTag(tags []*model.Tag) *model.Tag {
	if len(tags) == 0 {
		return nil
	}
	return SortTags(tags)[0]
}

// tagLess orders a before b. Non-semver tags sort before semver tags.
func tagLess(a, b *model.Tag) bool {
	av, aerr := TagVersion(a.Name)
	bv, berr := TagVersion(b.Name)
	switch {
	case aerr == nil && berr == nil:
		if !av.EQ(bv) {
			return av.LT(bv)
		}
		return a.Name < b.Name
	case aerr == nil:
		return false
	case berr == nil:
		return true
	}
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	return a.Name < b.Name
}
