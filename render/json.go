package render

import (
	"bytes"
	"encoding/json"
	"io"
	"time"

	"github.com/jeffrom/chlog/commit"
)

// JSON renders an array of releases. Categories keep display order.
type JSON struct {
	opts Options
}

type jsonRelease struct {
	Version string      `json:"version"`
	Date    *string     `json:"date"`
	Changes jsonChanges `json:"changes"`
}

type jsonChange struct {
	Message  string    `json:"message"`
	Type     string    `json:"type,omitempty"`
	Scope    string    `json:"scope,omitempty"`
	Breaking bool      `json:"breaking,omitempty"`
	Hash     string    `json:"hash"`
	Author   string    `json:"author"`
	Date     time.Time `json:"date"`
}

type jsonChanges []commit.CategoryCommits

// MarshalJSON writes an object keyed by category name in display order,
// which a map would not preserve.
func (cs jsonChanges) MarshalJSON() ([]byte, error) {
	b := &bytes.Buffer{}
	b.WriteByte('{')
	for i, cat := range cs {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(cat.Category.String())
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')

		changes := make([]jsonChange, len(cat.Commits))
		for j, c := range cat.Commits {
			changes[j] = jsonChange{
				Message:  Message(c),
				Type:     c.Type,
				Scope:    c.Scope,
				Breaking: c.Breaking,
				Hash:     c.ID,
				Author:   c.Author,
				Date:     c.Date(),
			}
		}
		val, err := json.Marshal(changes)
		if err != nil {
			return nil, err
		}
		b.Write(val)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func (j *JSON) Render(w io.Writer, groups []*commit.ReleaseGroup) error {
	releases := make([]jsonRelease, len(groups))
	for i, g := range groups {
		rel := jsonRelease{
			Version: g.Label,
			Changes: jsonChanges(g.ByCategory()),
		}
		if g.Date != nil {
			d := g.Date.Format(j.opts.dateFormat())
			rel.Date = &d
		}
		releases[i] = rel
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(releases)
}
