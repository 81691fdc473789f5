package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/imdario/mergo"
	"github.com/spf13/pflag"

	"github.com/jeffrom/chlog/config"
	"github.com/jeffrom/chlog/runner"
	"github.com/jeffrom/chlog/vcs"
	"github.com/jeffrom/chlog/vcs/gitcli"
	"github.com/jeffrom/chlog/vcs/gogit"
)

// overridden by go build -X
var Version string

const configFileName = "chlog.yaml"

func main() {
	if err := run(os.Args, config.DefaultTermIO); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(rawArgs []string, termio config.TerminalIO) error {
	cfg := config.NewWithTerminalIO(nil, &termio)
	flagCfg := config.Config{}

	var help bool
	var version bool
	var cfgFile string
	var commitTypes []string
	var noExcludes bool
	var checkCommits []string
	var checkCommitsFromVCS bool
	var readStats bool
	var debugConfig string
	var printConfig bool
	var printLatest bool
	flags := pflag.NewFlagSet("chlog", pflag.ContinueOnError)
	flags.SetOutput(termio.Stderr)
	flags.BoolVarP(&help, "help", "h", false, "show help")
	flags.BoolVarP(&version, "version", "V", false, "print version and exit")
	flags.BoolVarP(&flagCfg.Dryrun, "dry-run", "n", false, "don't write any files")
	flags.BoolVarP(&flagCfg.Verbose, "verbose", "v", false, "print additional debugging info")
	flags.BoolVarP(&flagCfg.Quiet, "quiet", "q", false, "print as little as necessary")
	flags.StringVarP(&cfgFile, "config", "c", "", "specify config `file`")

	flags.StringVarP(&flagCfg.Format, "format", "f", "", "output `format`: markdown, json, text, terminal, template, or auto")
	flags.StringVarP(&flagCfg.Output, "output", "o", "", "write the changelog to `file`")
	flags.BoolVar(&flagCfg.Stdout, "stdout", false, "write the changelog to stdout instead of a file")
	flags.BoolVar(&flagCfg.NoBackup, "no-backup", false, "don't back up an existing changelog")
	flags.IntVar(&flagCfg.MaxBackups, "max-backups", 0, "keep at most `n` backups")
	flags.StringVar(&flagCfg.Project, "project", "", "project `name` used in headers")
	flags.StringVar(&flagCfg.DateFormat, "date-format", "", "go time `layout` for release dates")
	flags.BoolVar(&flagCfg.IncludeHashes, "hashes", false, "include short commit hashes")
	flags.StringVar(&flagCfg.Template, "template", "", "go text/template `file` for the template format")
	flags.BoolVar(&flagCfg.Plain, "plain", false, "disable colors in terminal output")

	flags.StringVarP(&flagCfg.Strategy, "strategy", "s", "", "group releases by `strategy`: tags, dates, or auto")
	flags.BoolVarP(&flagCfg.Reverse, "reverse", "r", false, "list releases oldest first")
	flags.StringVar(&flagCfg.Since, "since", "", "include commits since `date` (YYYY-MM-DD)")
	flags.StringVar(&flagCfg.Until, "until", "", "include commits until `date` (YYYY-MM-DD)")
	flags.StringVar(&flagCfg.Ref, "ref", "", "read history from `revision`")
	flags.StringVar(&flagCfg.TagQuery, "tag-query", "", "only use tags matching `glob`")
	flags.StringArrayVarP(&flagCfg.Excludes, "exclude", "x", nil, "exclude commits with subjects matching `regexp`")
	flags.BoolVar(&noExcludes, "no-exclude", false, "disable all exclude patterns")
	flags.BoolVar(&flagCfg.IncludeMerges, "include-merges", false, "include merge commits")
	flags.StringArrayVarP(&commitTypes, "type", "t", nil, "map a commit type to a category, as `type=Category`")
	flags.StringVar(&flagCfg.Backend, "backend", "", "read repositories with `backend`: git or go-git")
	flags.StringVar(&flagCfg.Remote, "remote", "", "clone and read the repository at `url`")

	flags.BoolVarP(&readStats, "stats", "S", false, "print commit stats and exit")
	flags.BoolVarP(&checkCommitsFromVCS, "check", "C", false, "validate commits since the latest tag")
	flags.StringArrayVar(&checkCommits, "check-commit", nil, "only validate provided commit `message` (- reads stdin)")
	flags.StringArrayVar(&flagCfg.AllowedScopes, "allowed-scope", nil, "declare allowed scopes' `name`s")
	flags.StringArrayVar(&flagCfg.AllowedTypes, "allowed-type", nil, "declare allowed commit `type`s")
	flags.BoolVar(&flagCfg.RequireCategory, "require-category", false, "fail checks for commits without a changelog category")
	flags.BoolVar(&printConfig, "print-config", false, "print default configuration and exit")
	flags.BoolVar(&printLatest, "latest", false, "print the latest tag and exit")
	flags.StringVar(&debugConfig, "debug-config", "", "write configuration to `file` and exit")

	if err := flags.Parse(rawArgs); err != nil {
		return err
	}
	args := flags.Args()[1:]
	if len(args) > 0 && args[0] == "generate" {
		args = args[1:]
	}
	if len(args) > 1 {
		return fmt.Errorf("expected at most one repository path, got %d", len(args))
	}

	if help {
		usage(cfg, flags)
		return nil
	}
	if version {
		cfg.Printf("%s", Version)
		return nil
	}
	if printConfig {
		b, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		cfg.Printf("%s", string(b))
		return nil
	}

	var repoDir string
	if len(args) > 0 {
		repoDir = args[0]
	}

	chlogYAML, err := readChlogYAML(cfgFile, repoDir)
	if err != nil {
		return err
	}
	if chlogYAML != nil {
		if err := mergo.Merge(&cfg, chlogYAML.Config, mergo.WithOverride); err != nil {
			return err
		}
		// mergo skips zero values, so explicit zeroes are applied here.
		if chlogYAML.has("excludes") && len(chlogYAML.Excludes) == 0 {
			cfg.Excludes = nil
		}
		if chlogYAML.has("max_backups") {
			cfg.MaxBackups = chlogYAML.MaxBackups
		}
	}

	if len(commitTypes) > 0 {
		flagCfg.CommitTypes = make(map[string]string, len(commitTypes))
		for _, ct := range commitTypes {
			typ, cat, ok := strings.Cut(ct, "=")
			if !ok || typ == "" || cat == "" {
				return fmt.Errorf("invalid --type %q, expected type=Category", ct)
			}
			flagCfg.CommitTypes[typ] = cat
		}
	}
	if err := mergo.Merge(&cfg, flagCfg, mergo.WithOverride); err != nil {
		return err
	}
	if noExcludes {
		cfg.Excludes = nil
	}
	if flags.Lookup("max-backups").Changed {
		cfg.MaxBackups = flagCfg.MaxBackups
	}

	if cfg.Verbose {
		b, err := json.MarshalIndent(cfg, "", "  ")
		die(err)
		cfg.Debugf("config: %s", string(b))
	}
	if debugConfig != "" {
		b, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		if debugConfig == "-" {
			cfg.Printf("%s", b)
		} else {
			if err := os.WriteFile(debugConfig, b, 0644); err != nil {
				return err
			}
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if debugConfig != "" {
		return nil
	}
	// done setting up config

	ctx := context.Background()

	// commit messages are checked without reading a repository.
	if flags.Lookup("check-commit").Changed {
		rnr, err := runner.New(cfg, nil)
		if err != nil {
			return err
		}
		if len(checkCommits) == 1 && checkCommits[0] == "-" {
			if !cfg.Term.StdinPiped() {
				return errors.New("--check-commit - expects a commit message on stdin")
			}
			_, err = rnr.CheckReadCommit(ctx, cfg.Term.Stdin)
		} else {
			_, err = rnr.CheckCommits(ctx, checkCommits)
		}
		return reportCheck(cfg, err)
	}

	src, err := newVCS(ctx, cfg, repoDir)
	if src != nil {
		defer func() {
			if err := src.Cleanup(); err != nil {
				cfg.Errorf("cleanup failed: %v", err)
			}
		}()
	}
	if err != nil {
		return err
	}
	rnr, err := runner.New(cfg, src)
	if err != nil {
		return err
	}

	if readStats {
		stats, err := rnr.Stats(ctx)
		if err != nil {
			return err
		}
		return stats.TextSummary(cfg.Term.Stdout)
	}

	if checkCommitsFromVCS {
		_, err := rnr.CheckCommitsFromVCS(ctx)
		return reportCheck(cfg, err)
	}

	if printLatest {
		latest, err := rnr.LatestTag(ctx)
		if err != nil {
			return err
		}
		cfg.Debugf("latest tag %s points at %s", latest.Name, latest.ShortCommit())
		if cfg.Quiet || !cfg.Term.IsTerminal() {
			fmt.Fprintf(cfg.Term.Stdout, "%s", latest.Name)
		} else {
			fmt.Fprintln(cfg.Term.Stdout, latest.Name)
		}
		return nil
	}

	groups, err := rnr.Generate(ctx)
	if err != nil {
		return err
	}
	b := &bytes.Buffer{}
	if err := rnr.Render(b, groups); err != nil {
		return err
	}
	if cfg.Stdout {
		_, err := cfg.Term.Stdout.Write(b.Bytes())
		return err
	}

	path := cfg.OutputPath(rnr.Format())
	if err := rnr.WriteChangelog(path, b.Bytes()); err != nil {
		return err
	}
	if !cfg.Dryrun {
		cfg.Printf("Changelog generated: %s (%d releases)", path, len(groups))
	}
	return nil
}

func reportCheck(cfg config.Config, err error) error {
	if err != nil {
		cf := runner.CheckFailure{}
		if errors.As(err, &cf) {
			if err := cf.WriteFailure(cfg.Term.Stdout); err != nil {
				cfg.Errorf("failed to write invalid commit information: %v", err)
			}
		}
		return err
	}
	cfg.Printf("OK")
	return nil
}

// newVCS returns the configured commit source. When a remote is configured
// the repository is cloned first. The returned source must be cleaned up even
// if err is not nil.
func newVCS(ctx context.Context, cfg config.Config, dir string) (vcs.Interface, error) {
	type cloner interface {
		vcs.Interface
		Clone(ctx context.Context, url string) error
	}

	var src cloner
	switch cfg.Backend {
	case config.BackendGoGit:
		src = gogit.New(cfg, dir)
	default:
		src = gitcli.New(cfg, dir)
	}

	if cfg.Remote != "" {
		cfg.Debugf("cloning %s", cfg.Remote)
		if err := src.Clone(ctx, cfg.Remote); err != nil {
			return src, err
		}
	}
	if err := src.Validate(ctx); err != nil {
		return src, err
	}
	return src, nil
}

func die(err error) {
	if err != nil {
		panic(err)
	}
}

func usage(cfg config.Config, flags *pflag.FlagSet) {
	cfg.Printf(`%s [generate] [repo]

Generates a changelog from git history, grouping commits into releases by tag
or by month and sorting them into Keep a Changelog categories.

FLAGS
%s

Configuration is read from chlog.yaml, found by walking up from the
repository directory, or from the file given with --config.

EXAMPLES

# write CHANGELOG.md for the current repository
$ chlog

# print a changelog for another repository
$ chlog --stdout ../other-repo

# write CHANGELOG.json covering this year only
$ chlog --format json --since 2026-01-01

# group by month, oldest first
$ chlog --strategy dates --reverse

# validate a commit message from a commit-msg hook
$ chlog --check-commit - --allowed-type feat --allowed-type fix < "$1"
`, flags.Name(), flags.FlagUsages())
}

// configFile is a parsed chlog.yaml. keys records which fields were set so
// explicit zero values can be told apart from missing ones.
type configFile struct {
	config.Config
	keys map[string]interface{}
}

func (f *configFile) has(key string) bool {
	_, ok := f.keys[key]
	return ok
}

// readChlogYAML reads p, or the nearest chlog.yaml in dir or its parents.
// dir defaults to the working directory.
func readChlogYAML(p string, dir string) (*configFile, error) {
	if p != "" {
		return readConfigFile(p)
	}

	wd := dir
	if wd == "" {
		var err error
		wd, err = os.Getwd()
		if err != nil {
			return nil, err
		}
	}
	wd, err := filepath.Abs(wd)
	if err != nil {
		return nil, err
	}

	for {
		cfg, err := readConfigFile(filepath.Join(wd, configFileName))
		if err == nil {
			return cfg, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		parent := filepath.Dir(wd)
		if parent == wd {
			break
		}
		wd = parent
	}
	return nil, nil
}

func readConfigFile(p string) (*configFile, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	f := &configFile{}
	if err := yaml.Unmarshal(b, &f.Config); err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	if err := yaml.Unmarshal(b, &f.keys); err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return f, nil
}
