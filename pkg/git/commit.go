package git

import (
	"time"

	"github.com/debugflow/revd/pkg/proto"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// newCommit takes a snapshot of a go-git commit.
func newCommit(c *object.Commit) proto.Commit {
	summary, body := proto.SplitMessage(c.Message)
	return proto.Commit{
		ID:        c.Hash.String(),
		Summary:   summary,
		Body:      body,
		Time:      c.Author.When.UTC().Truncate(time.Second),
		Committer: newSignature(c.Committer),
		Author:    newSignature(c.Author),
	}
}

func newSignature(s object.Signature) proto.Signature {
	return proto.Signature{
		Name:  s.Name,
		Email: s.Email,
	}
}
