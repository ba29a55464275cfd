// Package form validates and submits the create and update forms (sales,
// products, categories, the point-of-sale cart) and derives sale totals.
package form

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/h0rv/posdash/internal/domain"
	"github.com/h0rv/posdash/internal/notify"
	"go.uber.org/zap"
)

// ErrInFlight is returned when a submission is already running.
var ErrInFlight = errors.New("submission already in progress")

// Form is a form that can check itself and produce its request body.
type Form[P any] interface {
	Validate() error
	Payload() P
}

// Messages are the notifications of one form.
type Messages struct {
	Success string
	// FailurePrefix precedes the upstream error text, e.g. "Transaction failed".
	FailurePrefix string
}

// Submitter runs validation and, when it passes, one send per Submit call.
type Submitter[P any] struct {
	send   func(ctx context.Context, payload P) error
	notify notify.Notifier
	msgs   Messages
	log    *zap.Logger

	inFlight atomic.Bool
}

// NewSubmitter creates a submitter around send.
func NewSubmitter[P any](send func(ctx context.Context, payload P) error, n notify.Notifier, msgs Messages, log *zap.Logger) *Submitter[P] {
	if n == nil {
		n = notify.Discard
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Submitter[P]{send: send, notify: n, msgs: msgs, log: log}
}

// InFlight reports whether a send is running.
func (s *Submitter[P]) InFlight() bool { return s.inFlight.Load() }

// Submit validates f before any network call. Field errors are returned as
// domain.FieldErrors without a notification, for inline display. Any other
// validation error is notified once and returned. A valid form is sent; on
// success one success notification is sent and then runs, on failure one
// failure notification carries the upstream text. The form is never reset here.
func (s *Submitter[P]) Submit(ctx context.Context, f Form[P], then func()) error {
	if err := f.Validate(); err != nil {
		var fe domain.FieldErrors
		if errors.As(err, &fe) {
			return fe
		}
		s.notify.Error(err.Error())
		return err
	}

	if !s.inFlight.CompareAndSwap(false, true) {
		return ErrInFlight
	}
	defer s.inFlight.Store(false)

	if err := s.send(ctx, f.Payload()); err != nil {
		s.log.Warn("submit failed", zap.Error(err))
		s.notify.Error(fmt.Sprintf("%s: %s", s.msgs.FailurePrefix, domain.Detail(err)))
		return err
	}

	s.notify.Success(s.msgs.Success)
	if then != nil {
		then()
	}
	return nil
}
