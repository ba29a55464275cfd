// Package mutation implements row deletion as a single state machine:
// Idle → ConfirmationOpen → Deleting → Idle, with Cancel returning to Idle.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/h0rv/posdash/internal/domain"
	"github.com/h0rv/posdash/internal/listview"
	"github.com/h0rv/posdash/internal/notify"
	"go.uber.org/zap"
)

var (
	// ErrBusy indicates a deletion is already pending for another target.
	ErrBusy = errors.New("deletion already in progress")
	// ErrNotConfirming indicates Confirm was called without an open confirmation.
	ErrNotConfirming = errors.New("no deletion awaiting confirmation")
	// ErrNoRef indicates the target has no identifier to delete by.
	ErrNoRef = errors.New("target has no identifier")
)

// Phase is the state of a Flow.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseConfirmationOpen
	PhaseDeleting
)

func (p Phase) String() string {
	switch p {
	case PhaseConfirmationOpen:
		return "confirmation-open"
	case PhaseDeleting:
		return "deleting"
	default:
		return "idle"
	}
}

// Deleter removes a record by identifier.
type Deleter interface {
	Delete(ctx context.Context, ref string) error
}

// DeleterFunc adapts a function to Deleter.
type DeleterFunc func(ctx context.Context, ref string) error

// Delete calls f.
func (f DeleterFunc) Delete(ctx context.Context, ref string) error { return f(ctx, ref) }

// Refetcher re-issues the owning list's current query.
type Refetcher interface {
	Refetch() listview.Request
}

// Messages are the notifications of one screen's deletions.
type Messages struct {
	Success string
	Failure string
}

// DefaultMessages matches the list screens' wording.
var DefaultMessages = Messages{
	Success: "Successfully deleted item",
	Failure: "Failed to delete the item",
}

// Flow coordinates confirmation, deletion and refresh for one list.
type Flow[T any] struct {
	deleter   Deleter
	refetcher Refetcher
	notify    notify.Notifier
	ref       func(T) string
	describe  func(T) string
	msgs      Messages
	log       *zap.Logger

	mu     sync.Mutex
	phase  Phase
	target T
}

// Option configures a Flow.
type Option[T any] func(*Flow[T])

// WithMessages overrides the success and failure notifications.
func WithMessages[T any](m Messages) Option[T] {
	return func(f *Flow[T]) { f.msgs = m }
}

// WithDescribe sets how a target is named in the confirmation prompt.
func WithDescribe[T any](describe func(T) string) Option[T] {
	return func(f *Flow[T]) { f.describe = describe }
}

// WithLogger sets the flow's logger.
func WithLogger[T any](l *zap.Logger) Option[T] {
	return func(f *Flow[T]) { f.log = l }
}

// New creates an idle flow. ref extracts the identifier passed to the deleter.
func New[T any](deleter Deleter, refetcher Refetcher, n notify.Notifier, ref func(T) string, opts ...Option[T]) *Flow[T] {
	if n == nil {
		n = notify.Discard
	}
	f := &Flow[T]{
		deleter:   deleter,
		refetcher: refetcher,
		notify:    n,
		ref:       ref,
		describe:  func(t T) string { return ref(t) },
		msgs:      DefaultMessages,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Phase returns the current phase.
func (f *Flow[T]) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

// Target returns the pending target. ok is false when Idle.
func (f *Flow[T]) Target() (target T, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase == PhaseIdle {
		return target, false
	}
	return f.target, true
}

// RequestDelete opens the confirmation for target.
func (f *Flow[T]) RequestDelete(target T) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase != PhaseIdle {
		return ErrBusy
	}
	f.target = target
	f.phase = PhaseConfirmationOpen
	return nil
}

// Cancel closes an open confirmation without side effects. It reports whether
// anything was cancelled; a deletion already underway cannot be cancelled.
func (f *Flow[T]) Cancel() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase != PhaseConfirmationOpen {
		return false
	}
	f.resetLocked()
	return true
}

// Prompt returns the confirmation question, or "" when nothing is pending.
func (f *Flow[T]) Prompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase == PhaseIdle {
		return ""
	}
	return fmt.Sprintf("Are you sure you want to delete %q? This action cannot be undone.", f.describe(f.target))
}

// Confirm deletes the pending target. On success the owning list is refetched
// once and then one success notification is sent. On failure one failure
// notification carrying the upstream detail is sent and nothing is refetched.
// The flow is Idle again when Confirm returns.
func (f *Flow[T]) Confirm(ctx context.Context) error {
	f.mu.Lock()
	if f.phase != PhaseConfirmationOpen {
		f.mu.Unlock()
		return ErrNotConfirming
	}
	target := f.target
	f.phase = PhaseDeleting
	f.mu.Unlock()

	ref := f.ref(target)
	err := ErrNoRef
	if ref != "" {
		err = f.deleter.Delete(ctx, ref)
	}

	f.mu.Lock()
	f.resetLocked()
	f.mu.Unlock()

	if err != nil {
		f.log.Warn("delete failed", zap.String("ref", ref), zap.Error(err))
		f.notify.Error(fmt.Sprintf("%s: %s", f.msgs.Failure, domain.Detail(err)))
		return fmt.Errorf("failed to delete %s: %w", ref, err)
	}

	f.log.Info("deleted", zap.String("ref", ref))
	if f.refetcher != nil {
		f.refetcher.Refetch().Do()
	}
	f.notify.Success(f.msgs.Success)
	return nil
}

func (f *Flow[T]) resetLocked() {
	var zero T
	f.target = zero
	f.phase = PhaseIdle
}
