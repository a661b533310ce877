// Package proto holds the wire types and errors shared by the server and the client.
package proto

import (
	"strings"
	"time"
)

// Signature identifies the author or committer of a commit.
type Signature struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Commit is a read-only snapshot of a commit taken at read time.
type Commit struct {
	// ID is the full hex object id.
	ID      string `json:"id"`
	Summary string `json:"summary"`
	Body    string `json:"body"`
	// Time is the authorship timestamp in UTC.
	Time      time.Time `json:"time"`
	Committer Signature `json:"committer"`
	Author    Signature `json:"author"`
}

// SplitMessage splits a commit message into its summary and body.
//
// The summary is the first paragraph with runs of whitespace squashed into
// a single space. The body is everything after the first paragraph, trimmed.
func SplitMessage(msg string) (summary string, body string) {
	msg = strings.TrimLeft(msg, " \t\r\n")
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	first, rest, _ := strings.Cut(msg, "\n\n")
	summary = strings.Join(strings.Fields(first), " ")
	body = strings.TrimSpace(rest)
	return summary, body
}

// RevisionRange selects commits reachable from Head but not from Base.
// A nil Head means HEAD; a nil Base means no lower bound.
type RevisionRange struct {
	Base *string
	Head *string
}

// NewRevisionRange returns a range from optional base and head revisions.
// Empty strings are treated as absent.
func NewRevisionRange(base, head string) RevisionRange {
	var rng RevisionRange
	if base != "" {
		rng.Base = &base
	}
	if head != "" {
		rng.Head = &head
	}
	return rng
}
