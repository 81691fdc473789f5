// Package chlog generates changelogs from version control history. Commits
// are classified into Keep a Changelog categories and grouped into releases
// by tag or by month.
//
// Related packages: config, commit, runner, model, render, vcs, vcs/gitcli,
// vcs/gogit
package chlog

import "github.com/jeffrom/chlog/config"

// Config holds most of the configuration variables for chlog. This struct is
// intended for command-line use, so not all of its attributes are applicable
// to every operation.
//
// See "go doc github.com/jeffrom/chlog/config Config" for more information.
type Config = config.Config
