package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"sort"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jeffrom/chlog/config"
)

// Stats summarizes the commits a changelog would be generated from.
type Stats struct {
	Commits  int64
	Breaking int64
	// First and Last are the oldest and newest commit dates.
	First time.Time
	Last  time.Time
	// Counts maps a bucket, such as "category", to per-label commit counts.
	Counts map[string]map[string]int64
}

func newStats() *Stats {
	return &Stats{Counts: make(map[string]map[string]int64)}
}

func (s *Stats) Add(bucket, name string, n int64) {
	counts, ok := s.Counts[bucket]
	if !ok {
		counts = make(map[string]int64)
		s.Counts[bucket] = counts
	}
	counts[name] += n
}

// Count returns the count of name in bucket.
func (s *Stats) Count(bucket, name string) int64 {
	return s.Counts[bucket][name]
}

func (s *Stats) addDate(d time.Time) {
	if d.IsZero() {
		return
	}
	if s.First.IsZero() || d.Before(s.First) {
		s.First = d
	}
	if d.After(s.Last) {
		s.Last = d
	}
}

type statCount struct {
	label string
	n     int64
}

// sorted returns the counts of bucket, highest first. Ties are ordered by
// label.
func (s *Stats) sorted(bucket string) []statCount {
	counts := make([]statCount, 0, len(s.Counts[bucket]))
	for label, n := range s.Counts[bucket] {
		counts = append(counts, statCount{label: label, n: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].n != counts[j].n {
			return counts[i].n > counts[j].n
		}
		return counts[i].label < counts[j].label
	})
	return counts
}

func (s *Stats) sortedBuckets() []string {
	buckets := make([]string, 0, len(s.Counts))
	for name := range s.Counts {
		buckets = append(buckets, name)
	}
	sort.Strings(buckets)
	return buckets
}

func (s *Stats) TextSummary(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d commits, %d breaking", s.Commits, s.Breaking)
	if !s.First.IsZero() {
		fmt.Fprintf(bw, " (%s to %s)", s.First.Format(config.DateLayout), s.Last.Format(config.DateLayout))
	}
	bw.WriteString("\n\n")

	for _, bucket := range s.sortedBuckets() {
		fmt.Fprintf(bw, "%s:\n", toTitle(bucket))
		for _, count := range s.sorted(bucket) {
			label := count.label
			if label == "" {
				label = "n/a"
			}
			fmt.Fprintf(bw, "  %20s\t\t%d\n", label, count.n)
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

// Stats counts the configured commits by category, scope, conventional
// commit type and author.
func (r *Runner) Stats(ctx context.Context) (*Stats, error) {
	commits, err := r.ReadCommits(ctx)
	if err != nil {
		return nil, err
	}
	stats := newStats()
	stats.Commits = int64(len(commits))

	for _, c := range commits {
		stats.Add("category", c.Category.String(), 1)
		stats.Add("scope", c.Scope, 1)
		stats.Add("commit_type", c.Type, 1)
		stats.Add("author", c.Author, 1)
		stats.addDate(c.Date())
		if c.Breaking {
			stats.Breaking++
		}
	}
	return stats, nil
}

var nonAlphaRE = regexp.MustCompile(`[^A-Za-z]`)

func toTitle(s string) string {
	s = nonAlphaRE.ReplaceAllLiteralString(s, " ")
	return cases.Title(language.Und).String(s)
}
