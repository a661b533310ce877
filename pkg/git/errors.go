package git

import (
	"errors"
	"io"
	"strings"

	"github.com/debugflow/revd/pkg/proto"
	"github.com/go-git/go-git/v5/plumbing"
)

var (
	// ErrNotAGitRepository is returned when the given path is not a git
	// repository.
	ErrNotAGitRepository = errors.New("not a git repository")
)

// invalidRevisionPrefix starts every error of go-git's revision parser. The
// parser's error type lives in an internal package.
const invalidRevisionPrefix = "Revision invalid"

// revisionError maps a go-git resolution error to the error taxonomy.
func revisionError(rev string, err error) error {
	switch {
	case strings.HasPrefix(err.Error(), invalidRevisionPrefix):
		return proto.BadRequestf("revision %q: %s", rev, err.Error())
	case errors.Is(err, plumbing.ErrReferenceNotFound),
		errors.Is(err, plumbing.ErrObjectNotFound),
		errors.Is(err, io.EOF):
		return proto.NotFoundf("revision %q", rev)
	default:
		return proto.Internal("resolve revision", err)
	}
}
