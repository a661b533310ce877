package actor

import "github.com/charmbracelet/log"

type options struct {
	name        string
	mailboxSize int
	logger      *log.Logger
	closer      func() error
}

// Option configures an Actor.
type Option func(*options)

// WithName sets the name used to label the actor's metrics.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithMailboxSize sets the mailbox capacity.
func WithMailboxSize(size int) Option {
	return func(o *options) {
		o.mailboxSize = size
	}
}

// WithLogger sets the actor's logger.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithCloser sets a function that runs once the actor has stopped, e.g. to
// release the owned value.
func WithCloser(fn func() error) Option {
	return func(o *options) {
		o.closer = fn
	}
}
