// Package config holds chlog's configuration: defaults, override merging,
// validation, and the terminal output helpers used for logging.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/imdario/mergo"

	"github.com/jeffrom/chlog/commit"
)

// Output formats.
const (
	FormatAuto     = "auto"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatText     = "text"
	FormatTerminal = "terminal"
	FormatTemplate = "template"
)

// Commit source backends.
const (
	BackendGit   = "git"
	BackendGoGit = "go-git"
)

// DateLayout is the layout of the since and until options.
const DateLayout = "2006-01-02"

type Config struct {
	Verbose bool `json:"verbose,omitempty"`
	Dryrun  bool `json:"dryrun,omitempty"`
	Quiet   bool `json:"quiet,omitempty"`

	// Strategy is one of tags, dates or auto.
	Strategy string `json:"strategy,omitempty"`
	// Reverse lists releases oldest first.
	Reverse bool `json:"reverse,omitempty"`
	// CommitTypes maps conventional commit types to category names. Entries
	// are merged over the built-in table.
	CommitTypes map[string]string `json:"commit_types,omitempty"`
	// Excludes are regular expressions. Commits with matching subjects are
	// left out of the changelog.
	Excludes      []string `json:"excludes,omitempty"`
	IncludeMerges bool     `json:"include_merges,omitempty"`

	Backend  string `json:"backend,omitempty"`
	Remote   string `json:"remote,omitempty"`
	Ref      string `json:"ref,omitempty"`
	TagQuery string `json:"tag_query,omitempty"`
	Since    string `json:"since,omitempty"`
	Until    string `json:"until,omitempty"`

	Format        string `json:"format,omitempty"`
	Output        string `json:"output,omitempty"`
	Stdout        bool   `json:"stdout,omitempty"`
	NoBackup      bool   `json:"no_backup,omitempty"`
	MaxBackups    int    `json:"max_backups,omitempty"`
	Project       string `json:"project,omitempty"`
	DateFormat    string `json:"date_format,omitempty"`
	IncludeHashes bool   `json:"include_hashes,omitempty"`
	// Template is the path of a text/template file used by the template
	// format.
	Template string `json:"template,omitempty"`
	Plain    bool   `json:"plain,omitempty"`

	AllowedTypes    []string `json:"allowed_types,omitempty"`
	AllowedScopes   []string `json:"allowed_scopes,omitempty"`
	RequireCategory bool     `json:"require_category,omitempty"`

	Term TerminalIO `json:"-"`
}

func New(overrides *Config) Config {
	return NewWithTerminalIO(overrides, nil)
}

func NewWithTerminalIO(overrides *Config, termio *TerminalIO) Config {
	cfg := GetDefault()
	if termio == nil {
		termio = &DefaultTermIO
	}
	cfg.Term = *termio

	if overrides != nil {
		if err := mergo.Merge(&cfg, overrides, mergo.WithOverride); err != nil {
			panic(err)
		}
	}
	return cfg
}

func (c Config) Validate() error {
	if _, err := commit.ParseStrategy(c.Strategy); err != nil {
		return err
	}
	switch c.Format {
	case FormatAuto, FormatMarkdown, FormatJSON, FormatText, FormatTerminal, FormatTemplate:
	default:
		return fmt.Errorf("config: unknown format %q", c.Format)
	}
	switch c.Backend {
	case BackendGit, BackendGoGit:
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}
	if c.MaxBackups < 0 {
		return errors.New("config: max backups must not be negative")
	}

	since, err := c.SinceTime()
	if err != nil {
		return err
	}
	until, err := c.UntilTime()
	if err != nil {
		return err
	}
	if !since.IsZero() && !until.IsZero() && until.Before(since) {
		return fmt.Errorf("config: until (%s) is before since (%s)", c.Until, c.Since)
	}
	return nil
}

func (c Config) SinceTime() (time.Time, error) {
	return parseDate("since", c.Since)
}

// UntilTime returns the end of the until day, so commits made on that day are
// included.
func (c Config) UntilTime() (time.Time, error) {
	t, err := parseDate("until", c.Until)
	if err != nil || t.IsZero() {
		return t, err
	}
	if len(c.Until) == len(DateLayout) {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func parseDate(name, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation(DateLayout, s, time.Local); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("config: invalid %s date %q (expected YYYY-MM-DD)", name, s)
	}
	return t, nil
}

// OutputPath returns the file the changelog is written to.
func (c Config) OutputPath(format string) string {
	if c.Output != "" {
		return c.Output
	}
	switch format {
	case FormatJSON:
		return "CHANGELOG.json"
	case FormatText, FormatTerminal:
		return "CHANGELOG.txt"
	}
	return "CHANGELOG.md"
}

func (c Config) Printf(msg string, args ...interface{}) {
	if c.Quiet {
		return
	}
	fmt.Fprintf(c.Term.Stdout, msg+"\n", args...)
}

func (c Config) Errorf(msg string, args ...interface{}) {
	fmt.Fprintf(c.Term.Stderr, msg+"\n", args...)
}

// Debugf writes to stderr so verbose output never mixes with a changelog
// written to stdout.
func (c Config) Debugf(msg string, args ...interface{}) {
	if !c.Verbose || c.Quiet {
		return
	}
	c.Errorf(msg, args...)
}
