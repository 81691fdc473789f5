package runner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jeffrom/chlog/config"
	"github.com/jeffrom/chlog/vcs"
)

func TestWriteChangelog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CHANGELOG.md")

	cfg := config.New(&config.Config{MaxBackups: 2})
	rnr := testRunner(t, cfg, vcs.NewMock())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rnr.now = func() time.Time {
		now = now.Add(time.Second)
		return now
	}

	for _, content := range []string{"one", "two", "three", "four"} {
		if err := rnr.WriteChangelog(path, []byte(content)); err != nil {
			t.Fatal(err)
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "four" {
		t.Fatalf("expected latest content, got %q", b)
	}

	backups, err := listBackups(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 2 {
		t.Fatalf("expected 2 backups, got %v", backups)
	}
	if filepath.Base(backups[0]) != "CHANGELOG.md.backup.20260301_120002" {
		t.Errorf("unexpected oldest backup %s", backups[0])
	}
	b, err = os.ReadFile(backups[1])
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "three" {
		t.Errorf("expected newest backup to hold the previous content, got %q", b)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("expected no temporary files to be left, got %d entries", len(entries))
	}
}

func TestWriteChangelogNoBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CHANGELOG.md")
	if err := os.WriteFile(path, []byte("old"), 0600); err != nil {
		t.Fatal(err)
	}

	rnr := testRunner(t, config.New(&config.Config{NoBackup: true}), vcs.NewMock())
	if err := rnr.WriteChangelog(path, []byte("new")); err != nil {
		t.Fatal(err)
	}
	backups, err := listBackups(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 0 {
		t.Fatalf("expected no backups, got %v", backups)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode().Perm() != 0600 {
		t.Errorf("expected file mode to be kept, got %s", fi.Mode())
	}
}

func TestWriteChangelogDryrun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CHANGELOG.md")
	rnr := testRunner(t, config.New(&config.Config{Dryrun: true, Quiet: true}), vcs.NewMock())
	if err := rnr.WriteChangelog(path, []byte("new")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no file to be written, got %v", err)
	}
}

func TestWriteChangelogUnlimitedBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CHANGELOG.md")

	cfg := config.New(nil)
	cfg.MaxBackups = 0
	rnr := testRunner(t, cfg, vcs.NewMock())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rnr.now = func() time.Time {
		now = now.Add(time.Second)
		return now
	}

	for i := 0; i < 8; i++ {
		if err := rnr.WriteChangelog(path, []byte{byte('a' + i)}); err != nil {
			t.Fatal(err)
		}
	}
	backups, err := listBackups(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 7 {
		t.Fatalf("expected every previous version to be kept, got %d backups", len(backups))
	}
}
