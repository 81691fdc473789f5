// Package gogit implements vcs.Interface with go-git, reading repositories
// without a git executable.
package gogit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/jeffrom/chlog/config"
	"github.com/jeffrom/chlog/model"
	"github.com/jeffrom/chlog/vcs"
)

var ErrNotRepository = errors.New("gogit: not a git repository")

type Git struct {
	cfg    config.Config
	wd     string
	repo   *git.Repository
	tmpDir string
}

func New(cfg config.Config, wd string) *Git {
	return &Git{
		cfg: cfg,
		wd:  wd,
	}
}

// Clone clones url into a temporary directory. Cleanup removes it.
func (g *Git) Clone(ctx context.Context, url string) error {
	dir, err := os.MkdirTemp("", "chlog-clone-")
	if err != nil {
		return err
	}
	g.tmpDir = dir
	g.cfg.Debugf("gogit: cloning %s into %s", url, dir)
	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{URL: url, Tags: git.AllTags})
	if err != nil {
		return fmt.Errorf("gogit: clone %s: %w", url, err)
	}
	g.repo = repo
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

func (g *Git) open() (*git.Repository, error) {
	if g.repo != nil {
		return g.repo, nil
	}
	path := g.wd
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, err
		}
	}
	g.cfg.Debugf("gogit: opening repository at %s", path)
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("%w: %s", ErrNotRepository, path)
	}
	if err != nil {
		return nil, fmt.Errorf("gogit: opening repository at %s: %w", path, err)
	}
	g.repo = repo
	return repo, nil
}

func (g *Git) Validate(ctx context.Context) error {
	_, err := g.open()
	return err
}

func (g *Git) ReadCommits(ctx context.Context, opts vcs.LogOpts) ([]*model.Commit, error) {
	repo, err := g.open()
	if err != nil {
		return nil, err
	}

	ref := opts.GetRef()
	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		if ref == "HEAD" && errors.Is(err, plumbing.ErrReferenceNotFound) {
			// no commits yet
			return nil, nil
		}
		return nil, vcs.NotFoundError{Ref: ref}
	}

	logOpts := &git.LogOptions{
		From:  *hash,
		Order: git.LogOrderCommitterTime,
	}
	if !opts.Since.IsZero() {
		since := opts.Since
		logOpts.Since = &since
	}
	if !opts.Until.IsZero() {
		until := opts.Until
		logOpts.Until = &until
	}
	iter, err := repo.Log(logOpts)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var commits []*model.Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if opts.NoMerges && c.NumParents() > 1 {
			return nil
		}
		commits = append(commits, toCommit(c))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return commits, nil
}

func toCommit(c *object.Commit) *model.Commit {
	subject, body, _ := strings.Cut(c.Message, "\n")
	return &model.Commit{
		ID:             c.Hash.String(),
		Author:         c.Author.Name,
		AuthorEmail:    c.Author.Email,
		AuthorDate:     c.Author.When,
		Committer:      c.Committer.Name,
		CommitterEmail: c.Committer.Email,
		CommitterDate:  c.Committer.When,
		Subject:        strings.TrimSpace(subject),
		Body:           strings.TrimSpace(body),
		Parents:        c.NumParents(),
	}
}

func (g *Git) ReadTags(ctx context.Context, query string) ([]*model.Tag, error) {
	repo, err := g.open()
	if err != nil {
		return nil, err
	}
	iter, err := repo.Tags()
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var tags []*model.Tag
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := ref.Name().Short()
		if query != "" && !vcs.GlobMatches(name, query) {
			return nil
		}
		tag, err := readTag(repo, name, ref.Hash())
		if err != nil {
			return err
		}
		if tag == nil {
			g.cfg.Debugf("gogit: skipping tag %s, which does not point at a commit", name)
			return nil
		}
		tags = append(tags, tag)
		return nil
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		return nil, err
	}
	return tags, nil
}

// readTag peels annotated tags. It returns nil for tags of trees or blobs.
func readTag(repo *git.Repository, name string, hash plumbing.Hash) (*model.Tag, error) {
	obj, err := repo.TagObject(hash)
	switch {
	case err == nil:
		c, err := obj.Commit()
		if errors.Is(err, object.ErrUnsupportedObject) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("gogit: tag %s: %w", name, err)
		}
		return &model.Tag{Name: name, Commit: c.Hash.String(), Date: obj.Tagger.When}, nil
	case errors.Is(err, plumbing.ErrObjectNotFound):
		c, err := repo.CommitObject(hash)
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("gogit: tag %s: %w", name, err)
		}
		return &model.Tag{Name: name, Commit: c.Hash.String(), Date: c.Committer.When}, nil
	default:
		return nil, fmt.Errorf("gogit: tag %s: %w", name, err)
	}
}
