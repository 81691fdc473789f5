package config

import "github.com/jeffrom/chlog/commit"

func GetDefault() Config {
	excludes := make([]string, len(commit.DefaultExcludes))
	copy(excludes, commit.DefaultExcludes)

	return Config{
		Strategy:   string(commit.StrategyAuto),
		Excludes:   excludes,
		Backend:    BackendGit,
		Ref:        "HEAD",
		Format:     FormatMarkdown,
		MaxBackups: 5,
		DateFormat: DateLayout,
	}
}
