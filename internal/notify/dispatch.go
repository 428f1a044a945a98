package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/pkordes/planner/backend/internal/domain"
	"github.com/pkordes/planner/backend/internal/mail"
)

// Sender is the mail gateway the dispatcher delivers through.
// *mail.SMTPSender and *mail.LogSender satisfy it.
type Sender interface {
	Send(ctx context.Context, msg mail.Message) (messageID string, err error)
}

// Delivery is one message addressed to one participant.
type Delivery struct {
	ParticipantID uuid.UUID
	Message       mail.Message
}

// DeliveryResult is the settled outcome of a Delivery. Exactly one of
// MessageID and Err is set.
type DeliveryResult struct {
	Delivery  Delivery
	MessageID string
	Attempts  int
	Err       error
}

// DispatcherConfig bounds each delivery.
type DispatcherConfig struct {
	// Timeout bounds a single send attempt. Zero means no per-attempt timeout.
	Timeout time.Duration
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries uint64
	// Backoff is the base delay of the exponential backoff between attempts.
	Backoff time.Duration
	// Concurrency caps in-flight sends. Zero or negative means unlimited.
	Concurrency int
	// Deadline bounds a whole Dispatch call, across retries, backoff sleeps
	// and waves of Concurrency. Deliveries still pending when it expires fail
	// with ErrTransport. Zero means no overall deadline.
	Deadline time.Duration
}

// Dispatcher fans deliveries out to a Sender concurrently and gathers one
// result per delivery. A failed delivery never cancels its siblings.
type Dispatcher struct {
	sender Sender
	log    *slog.Logger
	cfg    DispatcherConfig
}

// NewDispatcher constructs a Dispatcher. A non-positive Backoff defaults to 200ms.
func NewDispatcher(sender Sender, log *slog.Logger, cfg DispatcherConfig) *Dispatcher {
	if cfg.Backoff <= 0 {
		cfg.Backoff = 200 * time.Millisecond
	}
	return &Dispatcher{sender: sender, log: log, cfg: cfg}
}

// Dispatch sends every delivery and blocks until all of them have settled.
// results[i] corresponds to deliveries[i]. An empty input returns immediately.
// Dispatch returns no later than the configured Deadline.
func (d *Dispatcher) Dispatch(ctx context.Context, deliveries []Delivery) []DeliveryResult {
	results := make([]DeliveryResult, len(deliveries))
	if len(deliveries) == 0 {
		return results
	}

	if d.cfg.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Deadline)
		defer cancel()
	}

	// A plain Group, not WithContext: one recipient's failure must not cancel
	// the others.
	var g errgroup.Group
	if d.cfg.Concurrency > 0 {
		g.SetLimit(d.cfg.Concurrency)
	}
	for i, dl := range deliveries {
		g.Go(func() error {
			results[i] = d.deliver(ctx, dl)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// deliver sends one message, retrying transport failures with exponential
// backoff until MaxRetries is exhausted or ctx is done. Messages the gateway
// rejects as malformed are not retried. The returned Err always wraps
// domain.ErrTransport.
func (d *Dispatcher) deliver(ctx context.Context, dl Delivery) DeliveryResult {
	res := DeliveryResult{Delivery: dl}
	backoff := retry.WithMaxRetries(d.cfg.MaxRetries, retry.NewExponential(d.cfg.Backoff))

	var lastErr error
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		res.Attempts++
		attemptCtx := ctx
		if d.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
			defer cancel()
		}
		id, err := d.sender.Send(attemptCtx, dl.Message)
		if err != nil {
			lastErr = err
			if errors.Is(err, mail.ErrInvalidMessage) {
				return err
			}
			return retry.RetryableError(err)
		}
		res.MessageID = id
		return nil
	})
	if err != nil {
		// Cancellation during a backoff sleep reports ctx.Err(); keep the
		// transport error that caused the retry.
		if lastErr != nil && !errors.Is(err, lastErr) {
			err = fmt.Errorf("%w; last attempt: %w", err, lastErr)
		}
		if !errors.Is(err, domain.ErrTransport) {
			err = fmt.Errorf("%w: %w", domain.ErrTransport, err)
		}
	}
	res.Err = err

	if err != nil {
		d.log.WarnContext(ctx, "notification failed",
			"participant_id", dl.ParticipantID,
			"to", dl.Message.To,
			"attempts", res.Attempts,
			"error", err,
		)
	} else {
		d.log.DebugContext(ctx, "notification sent",
			"participant_id", dl.ParticipantID,
			"message_id", res.MessageID,
			"attempts", res.Attempts,
		)
	}
	return res
}

// Failures folds the failed results into a *domain.NotificationError for
// tripID. It returns nil when every delivery succeeded.
func Failures(tripID uuid.UUID, results []DeliveryResult) error {
	var (
		failures []domain.DeliveryFailure
		cause    error
	)
	for _, r := range results {
		if r.Err == nil {
			continue
		}
		failures = append(failures, domain.DeliveryFailure{
			ParticipantID: r.Delivery.ParticipantID,
			Email:         r.Delivery.Message.To,
			Err:           r.Err,
		})
		cause = multierr.Append(cause, r.Err)
	}
	if len(failures) == 0 {
		return nil
	}
	return &domain.NotificationError{TripID: tripID, Failures: failures, Cause: cause}
}
