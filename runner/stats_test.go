package runner

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jeffrom/chlog/config"
)

func TestStats(t *testing.T) {
	rnr := testRunner(t, config.New(nil), testMock())

	stats, err := rnr.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Commits != 4 {
		t.Errorf("expected 4 commits, got %d", stats.Commits)
	}
	if stats.Breaking != 1 {
		t.Errorf("expected 1 breaking commit, got %d", stats.Breaking)
	}

	if !stats.Last.Equal(testStart) || !stats.First.Equal(testStart.Add(-5*time.Minute)) {
		t.Errorf("expected commits from %s to %s, got %s to %s", testStart.Add(-5*time.Minute), testStart, stats.First, stats.Last)
	}

	expectCounters := []string{"author", "category", "scope", "commit_type"}
	if len(stats.Counts) != len(expectCounters) {
		t.Errorf("expected %d counters, got %d", len(expectCounters), len(stats.Counts))
	}
	for _, expect := range expectCounters {
		if counts := stats.Counts[expect]; len(counts) == 0 {
			t.Errorf("expected %q counter not to be empty", expect)
		}
	}

	tcs := []struct {
		bucket string
		name   string
		expect int64
	}{
		{bucket: "category", name: "Added", expect: 1},
		{bucket: "category", name: "Fixed", expect: 1},
		{bucket: "category", name: "Documentation", expect: 1},
		{bucket: "category", name: "Other", expect: 1},
		{bucket: "scope", name: "", expect: 2},
		{bucket: "commit_type", name: "feat", expect: 1},
		{bucket: "commit_type", name: "nope", expect: 0},
		{bucket: "author", name: "", expect: 4},
	}
	for _, tc := range tcs {
		t.Run(tc.bucket+"/"+tc.name, func(t *testing.T) {
			if got := stats.Count(tc.bucket, tc.name); got != tc.expect {
				t.Fatalf("expected %d, got %d", tc.expect, got)
			}
		})
	}

	b := &bytes.Buffer{}
	if err := stats.TextSummary(b); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	for _, expect := range []string{"4 commits, 1 breaking (2026-03-01 to 2026-03-01)", "Category:", "Commit Type:", "n/a"} {
		if !strings.Contains(out, expect) {
			t.Errorf("expected summary to contain %q, got:\n%s", expect, out)
		}
	}
}
