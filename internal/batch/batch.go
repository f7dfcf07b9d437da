// Package batch sends a fixed number of messages against a caller-supplied
// send operation, pacing initiations and accounting for per-message
// success or failure without aborting the batch on individual errors.
package batch

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

const (
	// MinDelay is the floor applied to the inter-send delay whenever a
	// batch has more than one message, bounding throughput to ~25/sec.
	MinDelay = 40 * time.Millisecond

	// completionPoll is how often the wait phase re-checks for
	// outstanding sends.
	completionPoll = 100 * time.Millisecond

	// completionWaitFloor is the minimum time the wait phase allows for
	// in-flight sends before giving up and returning a partial summary.
	// The effective bound is max(floor, total*delay*2), a heuristic
	// inherited from the original tool.
	completionWaitFloor = 5 * time.Second
)

// Options configures one batch run. Send and Payload are required.
type Options struct {
	// Total is the number of messages to send. Must be >= 1.
	Total int

	// Delay is the requested spacing between successive send
	// initiations. Values below MinDelay are clamped when Total > 1.
	Delay time.Duration

	// Payload produces the message body for the given 1-based index.
	// It is invoked at initiation time, so a running-counter token
	// reflects initiation order even when completions race.
	Payload func(index int) string

	// Send performs one send. It may block; the loop does not wait for
	// it before initiating the next message.
	Send func(ctx context.Context, payload string) error

	// OnProgress, if set, receives periodic sent/errors/total counts
	// while the batch is in flight. Never called when Total == 1.
	OnProgress func(sent, errors, total int)

	// ProgressInterval is the reporting period for OnProgress.
	// Defaults to ProgressIntervalText.
	ProgressInterval time.Duration
}

func (o Options) validate() error {
	if o.Total < 1 {
		return fmt.Errorf("total must be >= 1, got %d", o.Total)
	}
	if o.Delay < 0 {
		return fmt.Errorf("delay must be >= 0, got %s", o.Delay)
	}
	if o.Payload == nil {
		return fmt.Errorf("payload function is required")
	}
	if o.Send == nil {
		return fmt.Errorf("send function is required")
	}
	return nil
}

// Run executes the batch and returns its summary.
//
// For Total == 1 the send is awaited synchronously: a failure is returned
// as an error and no summary is produced. For larger batches individual
// failures are recorded in the summary instead, and Run only returns an
// error for invalid options or a canceled context. A summary whose
// Complete method reports false means the completion wait timed out with
// sends still outstanding; the counts cover whatever finished in time.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	if opts.Total == 1 {
		if err := opts.Send(ctx, opts.Payload(1)); err != nil {
			return nil, err
		}
		return &Summary{
			Total:   1,
			Sent:    1,
			Results: []Result{{Index: 1}},
		}, nil
	}

	delay := opts.Delay
	if delay < MinDelay {
		delay = MinDelay
	}

	tr := newTracker(opts.Total)

	if opts.OnProgress != nil {
		interval := opts.ProgressInterval
		if interval <= 0 {
			interval = ProgressIntervalText
		}
		stop := startReporter(tr, opts.OnProgress, interval)
		defer stop()
	}

	limiter := rate.NewLimiter(rate.Every(delay), 1)
	for i := 1; i <= opts.Total; i++ {
		if err := limiter.Wait(ctx); err != nil {
			// Context canceled mid-batch: stop initiating and fall
			// through to collect whatever is already in flight.
			break
		}
		payload := opts.Payload(i)
		i := i
		go func() {
			tr.record(i, payload, opts.Send(ctx, payload))
		}()
	}

	bound := completionWaitFloor
	if d := time.Duration(opts.Total) * delay * 2; d > bound {
		bound = d
	}

	deadline := time.NewTimer(bound)
	defer deadline.Stop()
	ticker := time.NewTicker(completionPoll)
	defer ticker.Stop()

	for tr.terminal() < opts.Total {
		select {
		case <-ctx.Done():
			return tr.snapshot(), ctx.Err()
		case <-deadline.C:
			// Outstanding sends are abandoned; the partial summary is
			// a degraded outcome, not an error.
			return tr.snapshot(), nil
		case <-ticker.C:
		}
	}
	return tr.snapshot(), nil
}
