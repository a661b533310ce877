// Package actor provides a single-owner execution unit. An Actor owns a
// value that is not safe for concurrent use and runs messages against it
// one at a time, in the order they were sent.
package actor

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/debugflow/revd/pkg/proto"
)

// DefaultMailboxSize is the number of messages that can wait for the actor
// before new ones are rejected.
const DefaultMailboxSize = 128

var (
	// ErrMailboxFull is returned when a message is rejected because the
	// mailbox is at capacity. Callers may retry later.
	ErrMailboxFull = fmt.Errorf("%w: mailbox full", proto.ErrUnavailable)

	// ErrStopped is returned when a message is sent to a stopped actor, or
	// was still queued when the actor stopped.
	ErrStopped = fmt.Errorf("%w: actor stopped", proto.ErrUnavailable)
)

// Message is a request handled by an actor owning a T that produces an R.
type Message[T, R any] interface {
	// Name identifies the message kind in logs and metrics.
	Name() string
	// Handle runs the message against the owned value.
	Handle(T) (R, error)
}

type envelope[T any] struct {
	name string
	run  func(T) error
	fail func(error)
}

type result[R any] struct {
	val R
	err error
}

// Actor owns a value of type T and serializes all access to it.
type Actor[T any] struct {
	state   T
	mailbox chan envelope[T]
	done    chan struct{}
	opts    options

	mu       sync.RWMutex
	stopped  bool
	closeErr error
}

// New starts an actor owning state. The caller must not use state after
// handing it over.
func New[T any](state T, opts ...Option) *Actor[T] {
	o := options{
		name:        "repository",
		mailboxSize: DefaultMailboxSize,
		logger:      log.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.mailboxSize <= 0 {
		o.mailboxSize = DefaultMailboxSize
	}
	o.logger = o.logger.WithPrefix("actor")

	a := &Actor[T]{
		state:   state,
		mailbox: make(chan envelope[T], o.mailboxSize),
		done:    make(chan struct{}),
		opts:    o,
	}
	go a.loop()
	return a
}

// Call sends msg to the actor and waits for its reply.
//
// Call never blocks on a full mailbox, it fails with ErrMailboxFull
// instead. If ctx is done before the reply arrives, Call returns the
// context error; a message that was already dequeued still runs to
// completion and its result is dropped.
func Call[T, R any](ctx context.Context, a *Actor[T], msg Message[T, R]) (R, error) {
	var zero R
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	reply := make(chan result[R], 1)
	env := envelope[T]{
		name: msg.Name(),
		run: func(state T) error {
			val, err := msg.Handle(state)
			reply <- result[R]{val: val, err: err}
			return err
		},
		fail: func(err error) {
			reply <- result[R]{err: err}
		},
	}

	if err := a.send(env); err != nil {
		return zero, err
	}

	select {
	case res := <-reply:
		return res.val, res.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (a *Actor[T]) send(env envelope[T]) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.stopped {
		rejectedCounter.WithLabelValues(a.opts.name, "stopped").Inc()
		return ErrStopped
	}

	select {
	case a.mailbox <- env:
		mailboxDepth.WithLabelValues(a.opts.name).Set(float64(len(a.mailbox)))
		return nil
	default:
		rejectedCounter.WithLabelValues(a.opts.name, "full").Inc()
		a.opts.logger.Warn("mailbox full, rejecting message", "message", env.name, "capacity", cap(a.mailbox))
		return ErrMailboxFull
	}
}

func (a *Actor[T]) loop() {
	defer close(a.done)

	for env := range a.mailbox {
		mailboxDepth.WithLabelValues(a.opts.name).Set(float64(len(a.mailbox)))
		a.mu.RLock()
		stopped := a.stopped
		a.mu.RUnlock()
		if stopped {
			env.fail(ErrStopped)
			continue
		}
		a.process(env)
	}

	if a.opts.closer != nil {
		a.closeErr = a.opts.closer()
	}
}

func (a *Actor[T]) process(env envelope[T]) {
	start := time.Now()
	outcome := "ok"

	defer func() {
		if v := recover(); v != nil {
			outcome = "panic"
			a.opts.logger.Error("panic while handling message", "message", env.name, "panic", v, "stack", string(debug.Stack()))
			env.fail(fmt.Errorf("%w: %s: panic: %v", proto.ErrInternal, env.name, v))
		}

		elapsed := time.Since(start)
		messageDuration.WithLabelValues(a.opts.name, env.name).Observe(elapsed.Seconds())
		messageCounter.WithLabelValues(a.opts.name, env.name, outcome).Inc()
		a.opts.logger.Debug("handled message", "message", env.name, "outcome", outcome, "duration", elapsed)
	}()

	if err := env.run(a.state); err != nil {
		outcome = outcomeOf(err)
	}
}

// Stop stops accepting messages, fails the ones still queued with
// ErrStopped, and waits for the message in progress to finish. The closer
// configured with WithCloser runs last, on the actor's goroutine.
func (a *Actor[T]) Stop(ctx context.Context) error {
	a.mu.Lock()
	if !a.stopped {
		a.stopped = true
		close(a.mailbox)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return a.closeErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done returns a channel that is closed once the actor has stopped.
func (a *Actor[T]) Done() <-chan struct{} {
	return a.done
}

// Len returns the number of messages waiting in the mailbox.
func (a *Actor[T]) Len() int {
	return len(a.mailbox)
}

// Cap returns the mailbox capacity.
func (a *Actor[T]) Cap() int {
	return cap(a.mailbox)
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, proto.ErrNotFound):
		return "not_found"
	case errors.Is(err, proto.ErrBadRequest):
		return "bad_request"
	default:
		return "error"
	}
}
