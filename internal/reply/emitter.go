package reply

import (
	"context"
	"sync"
	"time"

	"github.com/yuli2514/rurichat/internal/types"
)

// Emitter delivers decomposed events one at a time, modeling the typing
// rhythm of the character. Batch delivery would change the perceived UX.
type Emitter struct {
	// Pace is the gap between successive bubbles.
	Pace time.Duration
	// RecallDelay is how long a pending-recall bubble stays visible.
	RecallDelay time.Duration
}

// NewEmitter creates an Emitter with the given pacing policy.
func NewEmitter(pace, recallDelay time.Duration) *Emitter {
	return &Emitter{Pace: pace, RecallDelay: recallDelay}
}

// Emit delivers events in order, waiting Pace between successive
// deliveries. deliver persists and renders one event; returning an error
// stops the sequence. recall is invoked RecallDelay after a pending-recall
// event was delivered, overlapping subsequent deliveries just like a
// retraction timer would. The context is checked before every delay so a
// closed conversation stops appending immediately; Emit returns only after
// any outstanding recall timers have fired or were cancelled.
func (e *Emitter) Emit(ctx context.Context, events []types.MessageEvent, deliver func(types.MessageEvent) error, recall func(types.MessageEvent)) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	for i, ev := range events {
		if i > 0 {
			if err := sleepCtx(ctx, e.Pace); err != nil {
				return err
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		if err := deliver(ev); err != nil {
			return err
		}

		if ev.PendingRecall && recall != nil {
			wg.Add(1)
			go func(ev types.MessageEvent) {
				defer wg.Done()
				if sleepCtx(ctx, e.RecallDelay) == nil {
					recall(ev)
				}
			}(ev)
		}
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
