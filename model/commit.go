package model

import "time"

// ShortIDLen is the length of abbreviated commit ids used for display.
const ShortIDLen = 7

// Commit is a single commit record as read from version control. It is not
// modified after a commit source returns it.
type Commit struct {
	ID             string `json:"commit"`
	Author         string
	AuthorEmail    string
	AuthorDate     time.Time
	Committer      string
	CommitterEmail string
	CommitterDate  time.Time
	Subject        string
	Body           string
	Parents        int `json:"parents,omitempty"`
}

func (c *Commit) ShortID() string {
	return ShortID(c.ID)
}

// Date returns the author date, or the committer date if the author date is
// unset. It is zero if neither could be read.
func (c *Commit) Date() time.Time {
	if !c.AuthorDate.IsZero() {
		return c.AuthorDate
	}
	return c.CommitterDate
}

func (c *Commit) IsMerge() bool {
	return c.Parents > 1
}

// ShortID abbreviates a commit id to ShortIDLen characters.
func ShortID(id string) string {
	if len(id) < ShortIDLen {
		return id
	}
	return id[:ShortIDLen]
}
