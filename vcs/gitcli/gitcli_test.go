package gitcli

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jeffrom/chlog/config"
	"github.com/jeffrom/chlog/vcs"
)

func TestParseLog(t *testing.T) {
	out := strings.Join([]string{
		"_START_bbbbbbbbbb_SEP_Jeff_SEP_jeff@example.com_SEP_2026-02-03 10:00:00 -0800_SEP_Jeff_SEP_jeff@example.com_SEP_2026-02-03 10:00:00 -0800_SEP_aaaa cccc_SEP_Merge branch 'x'_SEP__END_",
		"_START_aaaaaaaaaa_SEP_Jeff_SEP_jeff@example.com_SEP_garbage_SEP_Jeff_SEP_jeff@example.com_SEP_2026-01-31 23:00:00 +0000_SEP_cccc_SEP_feat(api): add thing_SEP_first line",
		"",
		"second line",
		"_END_",
		"_START_cccccccccc_SEP_Jeff_SEP_jeff@example.com_SEP_2026-01-01 00:00:00 +0000_SEP_Jeff_SEP_jeff@example.com_SEP_2026-01-01 00:00:00 +0000_SEP__SEP_Initial commit_SEP__END_",
		"",
	}, "\n")

	g := New(config.Config{}, "")
	commits, err := g.parseLog([]byte(out))
	if err != nil {
		t.Fatal(err)
	}
	if len(commits) != 3 {
		t.Fatalf("expected 3 commits, got %d", len(commits))
	}

	if !commits[0].IsMerge() {
		t.Errorf("expected first commit to be a merge")
	}
	c := commits[1]
	if c.Subject != "feat(api): add thing" {
		t.Errorf("unexpected subject %q", c.Subject)
	}
	if c.Body != "first line\n\nsecond line" {
		t.Errorf("unexpected body %q", c.Body)
	}
	if !c.AuthorDate.IsZero() {
		t.Errorf("expected unreadable author date to be zero, got %s", c.AuthorDate)
	}
	if c.Date().IsZero() {
		t.Errorf("expected committer date to be used")
	}
	if commits[2].Parents != 0 || commits[2].Subject != "Initial commit" {
		t.Errorf("unexpected root commit: %+v", commits[2])
	}
}

func TestParseLogSeparatorInBody(t *testing.T) {
	out := strings.Join([]string{
		"_START_aaaaaaaaaa_SEP_Jeff_SEP_jeff@example.com_SEP_2026-01-01 00:00:00 +0000_SEP_Jeff_SEP_jeff@example.com_SEP_2026-01-01 00:00:00 +0000_SEP__SEP_fix: escape markers_SEP_the _SEP_ marker",
		"and _SEP_ again",
		"_END_",
		"",
	}, "\n")

	g := New(config.Config{}, "")
	commits, err := g.parseLog([]byte(out))
	if err != nil {
		t.Fatal(err)
	}
	if len(commits) != 1 {
		t.Fatalf("expected 1 commit, got %d", len(commits))
	}
	if c := commits[0]; c.Subject != "fix: escape markers" || c.Body != "the _SEP_ marker\nand _SEP_ again" {
		t.Errorf("unexpected commit: subject %q, body %q", c.Subject, c.Body)
	}
}

func TestParseLogInvalid(t *testing.T) {
	g := New(config.Config{}, "")
	if _, err := g.parseLog([]byte("nope_SEP_nope\n")); err == nil {
		t.Fatal("expected error")
	}
}

func TestParseTags(t *testing.T) {
	out := strings.Join([]string{
		"v0.1.0_SEP_aaaa_SEP__SEP_2026-01-01 00:00:00 +0000",
		"v0.2.0_SEP_tagobj_SEP_bbbb_SEP_2026-02-01 12:30:00 -0500",
		"",
	}, "\n")
	g := New(config.Config{}, "")
	tags, err := g.parseTags([]byte(out))
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(tags))
	}
	if tags[0].Commit != "aaaa" {
		t.Errorf("expected lightweight tag commit aaaa, got %q", tags[0].Commit)
	}
	if tags[1].Commit != "bbbb" {
		t.Errorf("expected annotated tag to be peeled to bbbb, got %q", tags[1].Commit)
	}
	want := time.Date(2026, 2, 1, 17, 30, 0, 0, time.UTC)
	if !tags[1].Date.Equal(want) {
		t.Errorf("expected %s, got %s", want, tags[1].Date)
	}
}

func TestArgsString(t *testing.T) {
	got := ArgsString([]string{"log", "--since=2026-01-01", "a b"})
	if got != `log --since=2026-01-01 "a b"` {
		t.Fatalf("unexpected args string: %s", got)
	}
}

func TestGit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping in short mode")
	}
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	ctx := context.Background()
	dir := t.TempDir()

	g := New(config.Config{}, dir)
	if err := g.Validate(ctx); !errors.Is(err, ErrNotRepository) {
		t.Fatalf("expected %v, got %v", ErrNotRepository, err)
	}

	gitRun(t, dir, time.Time{}, "init", "--quiet")
	if err := g.Validate(ctx); err != nil {
		t.Fatal(err)
	}
	commits, err := g.ReadCommits(ctx, vcs.LogOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(commits) != 0 {
		t.Fatalf("expected no commits in empty repo, got %d", len(commits))
	}

	start := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	gitCommit(t, dir, start, "Initial commit")
	gitRun(t, dir, start, "tag", "v0.1.0")
	gitCommit(t, dir, start.Add(24*time.Hour), "feat: add a thing")
	gitCommit(t, dir, start.Add(48*time.Hour), "fix: fix the thing")
	gitRun(t, dir, start.Add(48*time.Hour), "tag", "-a", "v0.2.0", "-m", "v0.2.0")

	all, err := g.ReadCommits(ctx, vcs.LogOpts{NoMerges: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 commits, got %d", len(all))
	}
	if all[0].Subject != "fix: fix the thing" || all[2].Subject != "Initial commit" {
		t.Fatalf("expected newest first, got %q ... %q", all[0].Subject, all[2].Subject)
	}
	if !all[2].AuthorDate.Equal(start) {
		t.Errorf("expected author date %s, got %s", start, all[2].AuthorDate)
	}

	commits, err = g.ReadCommits(ctx, vcs.LogOpts{Since: start.Add(12 * time.Hour)})
	if err != nil {
		t.Fatal(err)
	}
	if len(commits) != 2 {
		t.Fatalf("expected 2 commits since, got %d", len(commits))
	}

	tags, err := g.ReadTags(ctx, "v*")
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(tags))
	}
	byName := make(map[string]string)
	for _, tag := range tags {
		byName[tag.Name] = tag.Commit
	}
	if byName["v0.1.0"] != all[2].ID {
		t.Errorf("expected v0.1.0 to point at %s, got %s", all[2].ID, byName["v0.1.0"])
	}
	if byName["v0.2.0"] != all[0].ID {
		t.Errorf("expected annotated tag to point at %s, got %s", all[0].ID, byName["v0.2.0"])
	}

	if _, err := g.ReadCommits(ctx, vcs.LogOpts{Ref: "nope"}); !errors.As(err, &vcs.NotFoundError{}) {
		t.Fatalf("expected not found error, got %v", err)
	}

	clone := New(config.Config{}, "")
	if err := clone.Clone(ctx, dir); err != nil {
		t.Fatal(err)
	}
	cloneDir := clone.wd
	commits, err = clone.ReadCommits(ctx, vcs.LogOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(commits) != 3 {
		t.Fatalf("expected 3 commits in clone, got %d", len(commits))
	}
	if err := clone.Cleanup(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(cloneDir); !os.IsNotExist(err) {
		t.Fatalf("expected clone to be removed, got %v", err)
	}
}

func gitCommit(t testing.TB, dir string, date time.Time, msg string) {
	t.Helper()
	name := filepath.Join(dir, "file.txt")
	f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(msg + "\n"); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	gitRun(t, dir, date, "add", "file.txt")
	gitRun(t, dir, date, "commit", "--quiet", "-m", msg)
}

func gitRun(t testing.TB, dir string, date time.Time, args ...string) {
	t.Helper()
	if date.IsZero() {
		date = time.Now()
	}
	d := date.Format(time.RFC3339)
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=chlog",
		"GIT_AUTHOR_EMAIL=chlog@example.com",
		"GIT_COMMITTER_NAME=chlog",
		"GIT_COMMITTER_EMAIL=chlog@example.com",
		"GIT_AUTHOR_DATE="+d,
		"GIT_COMMITTER_DATE="+d,
		"GIT_CONFIG_NOSYSTEM=1",
		"HOME="+dir,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %s: %v: %s", strings.Join(args, " "), err, out)
	}
}
