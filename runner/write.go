package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const backupTimeLayout = "20060102_150405"

// WriteChangelog replaces the file at path with content. Unless backups are
// disabled, an existing file is first copied to
// <path>.backup.<YYYYMMDD_HHMMSS>, keeping at most MaxBackups copies.
func (r *Runner) WriteChangelog(path string, content []byte) error {
	if r.cfg.Dryrun {
		r.cfg.Printf("would write %d bytes to %s (dryrun)", len(content), path)
		return nil
	}
	if !r.cfg.NoBackup {
		if err := r.backup(path); err != nil {
			return err
		}
	}
	if err := writeAtomic(path, content); err != nil {
		return fmt.Errorf("runner: writing %s: %w", path, err)
	}
	return nil
}

func (r *Runner) backup(path string) error {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("runner: backup: %w", err)
	}

	name := path + ".backup." + r.now().Format(backupTimeLayout)
	if err := writeAtomic(name, b); err != nil {
		return fmt.Errorf("runner: backup: %w", err)
	}
	r.cfg.Debugf("backed up %s to %s", path, name)
	return r.rotateBackups(path)
}

// rotateBackups removes the oldest backups of path beyond MaxBackups.
func (r *Runner) rotateBackups(path string) error {
	if r.cfg.MaxBackups <= 0 {
		return nil
	}
	backups, err := listBackups(path)
	if err != nil {
		return err
	}
	if len(backups) <= r.cfg.MaxBackups {
		return nil
	}
	for _, name := range backups[:len(backups)-r.cfg.MaxBackups] {
		r.cfg.Debugf("removing old backup %s", name)
		if err := os.Remove(name); err != nil {
			return fmt.Errorf("runner: rotate backups: %w", err)
		}
	}
	return nil
}

// listBackups returns the backups of path, oldest first.
func listBackups(path string) ([]string, error) {
	dir := filepath.Dir(path)
	prefix := filepath.Base(path) + ".backup."
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var backups []string
	for _, ent := range entries {
		if ent.IsDir() || !strings.HasPrefix(ent.Name(), prefix) {
			continue
		}
		backups = append(backups, filepath.Join(dir, ent.Name()))
	}
	sort.Strings(backups)
	return backups, nil
}

// writeAtomic writes to a temporary file in the target directory and renames
// it over path, so readers never see a partial file.
func writeAtomic(path string, content []byte) error {
	mode := os.FileMode(0644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	cleanup := func() {
		f.Close()
		os.Remove(tmp)
	}
	if _, err := f.Write(content); err != nil {
		cleanup()
		return err
	}
	if err := f.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, mode); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
