// Package runner manages command-line execution
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jeffrom/chlog/commit"
	"github.com/jeffrom/chlog/config"
	"github.com/jeffrom/chlog/model"
	"github.com/jeffrom/chlog/render"
	"github.com/jeffrom/chlog/vcs"
)

var (
	ErrNoCommits = errors.New("runner: no commits found")
	ErrNoTags    = errors.New("runner: no tags found")
)

type Runner struct {
	cfg        config.Config
	vcs        vcs.Interface
	filter     *commit.Filter
	classifier *commit.Classifier
	grouper    *commit.Grouper
	now        func() time.Time
}

func New(cfg config.Config, vcs vcs.Interface) (*Runner, error) {
	filter, err := commit.NewFilter(cfg.Excludes)
	if err != nil {
		return nil, err
	}
	classifier, err := commit.NewClassifier(commit.ClassifierOptions{CommitTypes: cfg.CommitTypes})
	if err != nil {
		return nil, err
	}
	strategy, err := commit.ParseStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}
	return &Runner{
		cfg:        cfg,
		vcs:        vcs,
		filter:     filter,
		classifier: classifier,
		grouper:    commit.NewGrouper(commit.GrouperOptions{Strategy: strategy, Reverse: cfg.Reverse}),
		now:        time.Now,
	}, nil
}

func (r *Runner) logOpts() (vcs.LogOpts, error) {
	since, err := r.cfg.SinceTime()
	if err != nil {
		return vcs.LogOpts{}, err
	}
	until, err := r.cfg.UntilTime()
	if err != nil {
		return vcs.LogOpts{}, err
	}
	return vcs.LogOpts{
		Ref:      r.cfg.Ref,
		Since:    since,
		Until:    until,
		NoMerges: !r.cfg.IncludeMerges,
	}, nil
}

func (r *Runner) keep(c *model.Commit) bool {
	if c.IsMerge() && !r.cfg.IncludeMerges {
		return false
	}
	return !r.filter.Excluded(c)
}

// ReadCommits reads, filters, and classifies commits, newest first.
func (r *Runner) ReadCommits(ctx context.Context) ([]*commit.ClassifiedCommit, error) {
	opts, err := r.logOpts()
	if err != nil {
		return nil, err
	}
	commits, err := r.vcs.ReadCommits(ctx, opts)
	if err != nil {
		return nil, err
	}
	filtered := r.filter.Apply(commits)
	r.cfg.Debugf("read %d commits from %s, excluded %d", len(commits), opts.GetRef(), len(commits)-len(filtered))
	return r.classifier.ClassifyAll(filtered), nil
}

// readHistory reads commits and tags for grouping. Merge commits are read
// so tags on commits that are filtered out can be moved to the next older
// commit that is kept.
func (r *Runner) readHistory(ctx context.Context) ([]*commit.ClassifiedCommit, []*model.Tag, error) {
	opts, err := r.logOpts()
	if err != nil {
		return nil, nil, err
	}
	opts.NoMerges = false
	all, err := r.vcs.ReadCommits(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	tags, err := r.vcs.ReadTags(ctx, r.cfg.TagQuery)
	if err != nil {
		return nil, nil, err
	}

	kept := make([]*model.Commit, 0, len(all))
	keptIDs := make(map[string]bool, len(all))
	for _, c := range all {
		if r.keep(c) {
			kept = append(kept, c)
			keptIDs[c.ID] = true
		}
	}
	r.cfg.Debugf("read %d commits from %s, dropped %d", len(all), opts.GetRef(), len(all)-len(kept))
	return r.classifier.ClassifyAll(kept), anchorTags(tags, all, keptIDs), nil
}

// anchorTags moves tags on dropped commits to the next older kept commit.
// A moved tag that would land on an already tagged commit, or past the
// oldest commit, marks an empty release and is dropped.
func anchorTags(tags []*model.Tag, all []*model.Commit, kept map[string]bool) []*model.Tag {
	pos := make(map[string]int, len(all))
	for i, c := range all {
		pos[c.ID] = i
	}
	tagged := make(map[string]bool, len(tags))
	for _, t := range tags {
		tagged[t.Commit] = true
	}

	res := make([]*model.Tag, 0, len(tags))
	for _, t := range tags {
		i, ok := pos[t.Commit]
		if !ok || kept[t.Commit] {
			res = append(res, t)
			continue
		}
		for _, c := range all[i+1:] {
			if tagged[c.ID] {
				break
			}
			if kept[c.ID] {
				moved := *t
				moved.Commit = c.ID
				res = append(res, &moved)
				break
			}
		}
	}
	return res
}

// Generate returns the release groups for the configured repository.
func (r *Runner) Generate(ctx context.Context) ([]*commit.ReleaseGroup, error) {
	commits, tags, err := r.readHistory(ctx)
	if err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return nil, ErrNoCommits
	}
	r.cfg.Debugf("read %d tags, grouping by %s", len(tags), r.grouper.Resolve(tags))

	groups := r.grouper.Group(commits, tags)
	r.cfg.Debugf("%d release groups", len(groups))
	return groups, nil
}

// Format resolves config.FormatAuto. Interactive terminals get colored
// output, other streams get plain text, and files get markdown.
func (r *Runner) Format() string {
	if r.cfg.Format != config.FormatAuto && r.cfg.Format != "" {
		return r.cfg.Format
	}
	if !r.cfg.Stdout {
		return config.FormatMarkdown
	}
	if r.cfg.Term.IsTerminal() {
		return config.FormatTerminal
	}
	return config.FormatText
}

func (r *Runner) renderOptions(format string) (render.Options, error) {
	opts := render.Options{
		Project:       r.cfg.Project,
		DateFormat:    r.cfg.DateFormat,
		IncludeHashes: r.cfg.IncludeHashes,
		Plain:         r.cfg.Plain,
	}
	switch format {
	case config.FormatTerminal:
		// output written to stdout wraps at the terminal's width.
		if r.cfg.Stdout {
			opts.MaxWidth = r.cfg.Term.Width()
		}
	case config.FormatTemplate:
		if r.cfg.Template != "" {
			b, err := os.ReadFile(r.cfg.Template)
			if err != nil {
				return opts, fmt.Errorf("runner: reading template: %w", err)
			}
			opts.Template = string(b)
		}
	}
	return opts, nil
}

func (r *Runner) renderer() (render.Renderer, error) {
	format := r.Format()
	opts, err := r.renderOptions(format)
	if err != nil {
		return nil, err
	}
	return render.New(format, opts)
}

func (r *Runner) Render(w io.Writer, groups []*commit.ReleaseGroup) error {
	rend, err := r.renderer()
	if err != nil {
		return err
	}
	return rend.Render(w, groups)
}

// LatestTag returns the newest tag matching the tag query.
func (r *Runner) LatestTag(ctx context.Context) (*model.Tag, error) {
	tags, err := r.vcs.ReadTags(ctx, r.cfg.TagQuery)
	if err != nil {
		return nil, err
	}
	latest := commit.LatestTag(tags)
	if latest == nil {
		return nil, ErrNoTags
	}
	return latest, nil
}
