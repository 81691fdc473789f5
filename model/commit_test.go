package model

import (
	"testing"
	"time"
)

func TestCommit(t *testing.T) {
	cmt := &Commit{ID: "deadbeefdeadbeef"}
	short := cmt.ShortID()
	expect := "deadbee"
	if short != expect {
		t.Fatal("expected", expect, "got", short)
	}

	cmt = &Commit{ID: "abc"}
	if short := cmt.ShortID(); short != "abc" {
		t.Fatal("expected", "abc", "got", short)
	}
}

func TestCommitDate(t *testing.T) {
	author := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	committer := author.Add(time.Hour)

	tcs := []struct {
		name   string
		commit *Commit
		expect time.Time
	}{
		{
			name:   "author",
			commit: &Commit{AuthorDate: author, CommitterDate: committer},
			expect: author,
		},
		{
			name:   "committer-fallback",
			commit: &Commit{CommitterDate: committer},
			expect: committer,
		},
		{
			name:   "none",
			commit: &Commit{},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.commit.Date(); !got.Equal(tc.expect) {
				t.Fatalf("expected %s, got %s", tc.expect, got)
			}
		})
	}
}
