package commit

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jeffrom/chlog/model"
)

// subjectRE parses conventional commit subjects: type(scope)!: description.
var subjectRE = regexp.MustCompile(`(?s)^(?P<type>[A-Za-z]+)(?:\((?P<scope>[^()]*)\))?(?P<breaking>!)?: (?P<desc>.*)$`)

var (
	subjectTypeIdx     = subjectRE.SubexpIndex("type")
	subjectScopeIdx    = subjectRE.SubexpIndex("scope")
	subjectBreakingIdx = subjectRE.SubexpIndex("breaking")
	subjectDescIdx     = subjectRE.SubexpIndex("desc")
)

// keywordWindow bounds how far into a message a keyword may start and still
// count when the message does not begin with it.
const keywordWindow = 20

// DefaultCommitTypes returns the built-in mapping of conventional commit types
// to category names.
func DefaultCommitTypes() map[string]string {
	return map[string]string{
		"feat":      "Added",
		"feature":   "Added",
		"add":       "Added",
		"new":       "Added",
		"fix":       "Fixed",
		"bugfix":    "Fixed",
		"hotfix":    "Fixed",
		"patch":     "Fixed",
		"docs":      "Documentation",
		"doc":       "Documentation",
		"refactor":  "Changed",
		"update":    "Changed",
		"improve":   "Changed",
		"perf":      "Changed",
		"style":     "Changed",
		"test":      "Testing",
		"tests":     "Testing",
		"build":     "Build",
		"ci":        "Build",
		"release":   "Build",
		"chore":     "Build",
		"security":  "Security",
		"vuln":      "Security",
		"deprecate": "Deprecated",
		"remove":    "Removed",
		"delete":    "Removed",
		"drop":      "Removed",
	}
}

type keywordRule struct {
	category Category
	keywords []string
}

// keywordRules are checked in order when a subject has no conventional
// prefix. The first category with a matching keyword wins.
var keywordRules = []keywordRule{
	{Added, []string{"add ", "adds ", "added ", "new ", "create ", "implement ", "introduce "}},
	{Fixed, []string{"fix ", "fixes ", "fixed ", "bug ", "resolve ", "correct ", "hotfix ", "patch "}},
	{Changed, []string{"update ", "change ", "refactor ", "improve ", "modify ", "rename ", "bump "}},
	{Removed, []string{"remove ", "delete ", "drop "}},
	{Deprecated, []string{"deprecate "}},
	{Security, []string{"security ", "vulnerability ", "cve-"}},
	{Documentation, []string{"docs ", "doc ", "documentation ", "readme"}},
	{Testing, []string{"test ", "tests ", "testing "}},
	{Build, []string{"build ", "ci ", "release ", "chore "}},
}

// ClassifiedCommit is a commit together with its classification.
type ClassifiedCommit struct {
	*model.Commit
	Category Category `json:"category"`
	// Type is the lower-cased conventional commit type, or empty if the
	// category came from keyword matching.
	Type        string `json:"type,omitempty"`
	Scope       string `json:"scope,omitempty"`
	Description string `json:"description"`
	Breaking    bool   `json:"breaking,omitempty"`
}

type ClassifierOptions struct {
	// CommitTypes overrides entries of DefaultCommitTypes. Keys are commit
	// types, values are category names.
	CommitTypes map[string]string
}

// Classifier assigns categories to commits. It is safe for concurrent use.
type Classifier struct {
	types map[string]Category
}

func NewClassifier(opts ClassifierOptions) (*Classifier, error) {
	merged := DefaultCommitTypes()
	for typ, name := range opts.CommitTypes {
		merged[strings.ToLower(typ)] = name
	}

	types := make(map[string]Category, len(merged))
	for typ, name := range merged {
		cat, err := ParseCategory(name)
		if err != nil {
			return nil, fmt.Errorf("commit type %q: %w", typ, err)
		}
		types[typ] = cat
	}
	return &Classifier{types: types}, nil
}

// CommitTypes returns a copy of the classifier's type table.
func (c *Classifier) CommitTypes() map[string]Category {
	res := make(map[string]Category, len(c.types))
	for k, v := range c.types {
		res[k] = v
	}
	return res
}

// Classify assigns a category to mc. Every commit gets one; Other is used
// when nothing matches.
func (c *Classifier) Classify(mc *model.Commit) *ClassifiedCommit {
	msg := mc.Subject
	if m := subjectRE.FindStringSubmatch(msg); m != nil {
		typ := strings.ToLower(m[subjectTypeIdx])
		cat, ok := c.types[typ]
		if !ok {
			cat = Other
		}
		desc := strings.TrimSpace(m[subjectDescIdx])
		if desc == "" {
			desc = msg
		}
		return &ClassifiedCommit{
			Commit:      mc,
			Category:    cat,
			Type:        typ,
			Scope:       strings.TrimSpace(m[subjectScopeIdx]),
			Description: desc,
			Breaking:    m[subjectBreakingIdx] != "",
		}
	}

	return &ClassifiedCommit{
		Commit:      mc,
		Category:    matchKeywords(msg),
		Description: msg,
	}
}

// ClassifyAll classifies commits, preserving their order.
func (c *Classifier) ClassifyAll(commits []*model.Commit) []*ClassifiedCommit {
	res := make([]*ClassifiedCommit, len(commits))
	for i, mc := range commits {
		res[i] = c.Classify(mc)
	}
	return res
}

func matchKeywords(msg string) Category {
	lower := strings.ToLower(strings.TrimSpace(msg))
	if lower == "" {
		return Other
	}
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if keywordMatches(lower, kw) {
				return rule.category
			}
		}
	}
	return Other
}

func keywordMatches(msg, kw string) bool {
	if strings.HasPrefix(msg, kw) || msg == strings.TrimSpace(kw) {
		return true
	}
	idx := strings.Index(msg, " "+kw)
	return idx >= 0 && idx < keywordWindow
}
