// Package model contains abstract data models shared by commit sources, the
// classification engine and renderers.
package model

import "time"

// Tag is a reference to a commit by name, such as a release tag. Commit is
// the id of the tagged commit, peeled through annotated tag objects.
type Tag struct {
	Name   string    `json:"name"`
	Commit string    `json:"commit"`
	Date   time.Time `json:"date"`
}

func (t *Tag) ShortCommit() string {
	return ShortID(t.Commit)
}
