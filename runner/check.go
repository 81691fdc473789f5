package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jeffrom/chlog/commit"
	"github.com/jeffrom/chlog/model"
)

type CheckFailure struct {
	Failures []FailureEntry
}

type FailureEntry struct {
	commitID    string
	commitTitle string
	err         error
}

func (cf CheckFailure) Error() string {
	return fmt.Sprintf("%d check(s) failed", len(cf.Failures))
}

func (cf CheckFailure) Is(other error) bool {
	_, ok := other.(CheckFailure)
	return ok
}

// WriteFailure writes each failing commit's title followed by its failures.
func (cf CheckFailure) WriteFailure(w io.Writer) error {
	if len(cf.Failures) == 0 {
		return nil
	}
	bw := bufio.NewWriter(w)

	var keys []string
	byCommit := make(map[string][]FailureEntry)
	for _, failure := range cf.Failures {
		key := failure.commitID
		if key == "" {
			key = failure.commitTitle
		}
		if _, ok := byCommit[key]; !ok {
			keys = append(keys, key)
		}
		byCommit[key] = append(byCommit[key], failure)
	}

	for _, key := range keys {
		failures := byCommit[key]
		title := failures[0].commitTitle
		if id := failures[0].commitID; id != "" {
			title = fmt.Sprintf("%s %s", model.ShortID(id), title)
		}
		bw.WriteString(title)
		bw.WriteString("\n")
		for _, failure := range failures {
			bw.WriteString("  ")
			bw.WriteString(failure.err.Error())
			bw.WriteString("\n")
		}
	}

	return bw.Flush()
}

// CheckCommits classifies raw commit messages and fails if any break the
// configured commit rules.
func (r *Runner) CheckCommits(ctx context.Context, messages []string) ([]*commit.ClassifiedCommit, error) {
	var failures []FailureEntry
	var ccs []*commit.ClassifiedCommit
	for _, msg := range messages {
		cc := r.classifier.Classify(parseCommit(msg))
		ccs = append(ccs, cc)
		failures = append(failures, r.checkCommit(cc)...)
	}
	if len(failures) > 0 {
		return nil, CheckFailure{Failures: failures}
	}
	return ccs, nil
}

func (r *Runner) checkCommit(cc *commit.ClassifiedCommit) []FailureEntry {
	var failures []FailureEntry
	fail := func(err error) {
		failures = append(failures, FailureEntry{commitID: cc.ID, commitTitle: cc.Subject, err: err})
	}

	if strings.TrimSpace(cc.Subject) == "" {
		fail(errors.New("commit message is empty"))
		return failures
	}
	if cc.Scope != "" && len(r.cfg.AllowedScopes) > 0 && !inStrs(cc.Scope, r.cfg.AllowedScopes) {
		fail(fmt.Errorf("scope %q is disallowed", cc.Scope))
	}
	if cc.Type != "" && len(r.cfg.AllowedTypes) > 0 && !inStrs(cc.Type, r.cfg.AllowedTypes) {
		fail(fmt.Errorf("commit type %q is disallowed", cc.Type))
	}
	if r.cfg.RequireCategory && cc.Category == commit.Other {
		fail(errors.New("commit does not match a changelog category"))
	}
	return failures
}

// parseCommit reads a raw commit message, as found in a commit message file.
// Comment lines are dropped.
func parseCommit(s string) *model.Commit {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	if len(lines) == 0 {
		return &model.Commit{}
	}
	return &model.Commit{
		Subject: strings.TrimSpace(lines[0]),
		Body:    strings.TrimSpace(strings.Join(lines[1:], "\n")),
	}
}

// CheckReadCommit checks a single commit message read from rdr.
func (r *Runner) CheckReadCommit(ctx context.Context, rdr io.Reader) ([]*commit.ClassifiedCommit, error) {
	raw, err := io.ReadAll(rdr)
	if err != nil {
		return nil, err
	}
	return r.CheckCommits(ctx, []string{string(raw)})
}

// CheckCommitsFromVCS checks the commits made since the latest tag, or all
// commits when there are no tags.
func (r *Runner) CheckCommitsFromVCS(ctx context.Context) ([]*commit.ClassifiedCommit, error) {
	commits, tags, err := r.readHistory(ctx)
	if err != nil {
		return nil, err
	}
	latest := commit.LatestTag(tags)

	var failures []FailureEntry
	var ccs []*commit.ClassifiedCommit
	for _, cc := range commits {
		if latest != nil && cc.ID == latest.Commit {
			break
		}
		failures = append(failures, r.checkCommit(cc)...)
		ccs = append(ccs, cc)
	}

	if len(failures) > 0 {
		return nil, CheckFailure{Failures: failures}
	}
	return ccs, nil
}

func inStrs(s string, cands []string) bool {
	for _, cand := range cands {
		if s == cand {
			return true
		}
	}
	return false
}
