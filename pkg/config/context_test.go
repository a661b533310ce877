package config

import (
	"context"
	"testing"

	"github.com/matryer/is"
)

func TestFromContextMissing(t *testing.T) {
	is := is.New(t)
	is.Equal(FromContext(context.Background()), nil)
}

func TestFromContextRoundTrip(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	cfg.RepoPath = t.TempDir()
	cfg.Actor.MailboxSize = 4

	ctx := WithContext(context.Background(), cfg)
	got := FromContext(ctx)
	is.True(got == cfg) // same pointer, not a copy
	is.Equal(got.Name, "revd")
	is.Equal(got.RepoPath, cfg.RepoPath)
	is.Equal(got.Actor.MailboxSize, 4)
}

func TestFromContextWrongType(t *testing.T) {
	is := is.New(t)
	ctx := context.WithValue(context.Background(), ContextKey, Config{Name: "revd"})
	is.Equal(FromContext(ctx), nil)
}
