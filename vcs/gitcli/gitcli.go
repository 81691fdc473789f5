// Package gitcli implements vcs.Interface using the git commandline tool.
package gitcli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/jeffrom/chlog/config"
	"github.com/jeffrom/chlog/model"
	"github.com/jeffrom/chlog/vcs"
)

var (
	ErrGitNotInstalled = errors.New("gitcli: git is not installed")
	ErrNotRepository   = errors.New("gitcli: not a git repository")
)

// Git implements vcs.Interface using the git commandline tool.
type Git struct {
	cfg    config.Config
	wd     string
	tmpDir string
}

func New(cfg config.Config, wd string) *Git {
	return &Git{
		cfg: cfg,
		wd:  wd,
	}
}

// Clone clones url into a temporary directory and reads from it afterwards.
// Cleanup removes the clone.
func (g *Git) Clone(ctx context.Context, url string) error {
	dir, err := os.MkdirTemp("", "chlog-clone-")
	if err != nil {
		return err
	}
	g.tmpDir = dir
	if _, err := g.call(ctx, []string{"clone", "--quiet", url, dir}); err != nil {
		return err
	}
	g.wd = dir
	return nil
}

func (g *Git) Cleanup() error {
	if g.tmpDir == "" {
		return nil
	}
	dir := g.tmpDir
	g.tmpDir = ""
	return os.RemoveAll(dir)
}

func (g *Git) Validate(ctx context.Context) error {
	if _, err := exec.LookPath("git"); err != nil {
		return ErrGitNotInstalled
	}
	if _, err := g.call(ctx, []string{"rev-parse", "--git-dir"}); err != nil {
		return fmt.Errorf("%w: %s", ErrNotRepository, g.wd)
	}
	return nil
}

const (
	logFormat          = "--pretty=tformat:_START_%H_SEP_%aN_SEP_%ae_SEP_%ai_SEP_%cN_SEP_%ce_SEP_%ci_SEP_%P_SEP_%s_SEP_%b_END_"
	EXPECTED_LOG_PARTS = 10
)

func (g *Git) ReadCommits(ctx context.Context, opts vcs.LogOpts) ([]*model.Commit, error) {
	ref := opts.GetRef()
	if _, err := g.call(ctx, []string{"rev-parse", "--verify", "--quiet", ref + "^{commit}"}); err != nil {
		if ref == "HEAD" {
			// no commits yet
			return nil, nil
		}
		return nil, vcs.NotFoundError{Ref: ref}
	}

	args := []string{"log", logFormat}
	if opts.NoMerges {
		args = append(args, "--no-merges")
	}
	if !opts.Since.IsZero() {
		args = append(args, "--since="+opts.Since.Format(time.RFC3339))
	}
	if !opts.Until.IsZero() {
		args = append(args, "--until="+opts.Until.Format(time.RFC3339))
	}
	args = append(args, ref, "--")

	b, err := g.call(ctx, args)
	if err != nil {
		return nil, err
	}
	return g.parseLog(b)
}

func (g *Git) parseLog(b []byte) ([]*model.Commit, error) {
	var commits []*model.Commit
	scanner := bufio.NewScanner(bytes.NewBuffer(b))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		s := scanner.Text()
		if strings.TrimSpace(s) == "" {
			continue
		}
		// separators after the subject belong to the body.
		parts := strings.SplitN(s, "_SEP_", EXPECTED_LOG_PARTS)
		if len(parts) != EXPECTED_LOG_PARTS {
			return nil, fmt.Errorf("gitcli: expected %d parts from git log, got %d", EXPECTED_LOG_PARTS, len(parts))
		}

		commitID := parts[0]
		if !strings.HasPrefix(commitID, "_START_") {
			return nil, fmt.Errorf("gitcli: unexpected git log line: %q", s)
		}
		commitID = strings.TrimPrefix(commitID, "_START_")

		// body can be multiple lines.
		var body string
		bodypart := parts[len(parts)-1]
		if strings.HasSuffix(bodypart, "_END_") {
			body = strings.TrimSuffix(bodypart, "_END_")
		} else {
			var bodyb strings.Builder
			bodyb.WriteString(bodypart)
			bodyb.WriteString("\n")
			for scanner.Scan() {
				bodyline := scanner.Text()
				if strings.HasSuffix(bodyline, "_END_") {
					if trimmed := strings.TrimSpace(strings.TrimSuffix(bodyline, "_END_")); trimmed != "" {
						bodyb.WriteString(trimmed)
					}
					break
				}
				bodyb.WriteString(bodyline)
				bodyb.WriteString("\n")
			}
			body = bodyb.String()
		}

		commits = append(commits, &model.Commit{
			ID:             commitID,
			Author:         parts[1],
			AuthorEmail:    parts[2],
			AuthorDate:     g.parseDate(commitID, parts[3]),
			Committer:      parts[4],
			CommitterEmail: parts[5],
			CommitterDate:  g.parseDate(commitID, parts[6]),
			Parents:        len(strings.Fields(parts[7])),
			Subject:        parts[8],
			Body:           strings.TrimSpace(body),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return commits, nil
}

// parseDate leaves unreadable dates zero. Grouping substitutes the current
// time for them.
func (g *Git) parseDate(commitID, s string) time.Time {
	t, err := ParseGitISO8601(s)
	if err != nil {
		g.cfg.Debugf("gitcli: commit %s has an unreadable date %q: %v", commitID, s, err)
		return time.Time{}
	}
	return t
}

const tagFormat = "--format=%(refname:short)_SEP_%(objectname)_SEP_%(*objectname)_SEP_%(creatordate:iso)"

func (g *Git) ReadTags(ctx context.Context, query string) ([]*model.Tag, error) {
	args := []string{"for-each-ref", tagFormat}
	if query != "" {
		args = append(args, "refs/tags/"+query)
	} else {
		args = append(args, "refs/tags")
	}
	b, err := g.call(ctx, args)
	if err != nil {
		return nil, err
	}
	return g.parseTags(b)
}

func (g *Git) parseTags(b []byte) ([]*model.Tag, error) {
	var tags []*model.Tag
	scanner := bufio.NewScanner(bytes.NewBuffer(b))
	for scanner.Scan() {
		s := scanner.Text()
		if s == "" {
			continue
		}
		parts := strings.Split(s, "_SEP_")
		if len(parts) != 4 {
			return nil, fmt.Errorf("gitcli: unexpected git for-each-ref line: %q", s)
		}

		// annotated tags point at a tag object. the peeled id is the commit.
		commitID := parts[2]
		if commitID == "" {
			commitID = parts[1]
		}
		tag := &model.Tag{Name: parts[0], Commit: commitID}
		if parts[3] != "" {
			tag.Date = g.parseDate(commitID, parts[3])
		}
		tags = append(tags, tag)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return tags, nil
}
