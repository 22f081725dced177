package healing

import (
	"context"
	"time"

	"github.com/qmuntal/stateless"

	"github.com/afterus/afterus-backend/internal/models"
)

// Activity lifecycle states
const (
	StatePending   = "pending"
	StateCompleted = "completed"
)

// Activity lifecycle triggers
const (
	TriggerComplete = "complete"
	TriggerReopen   = "reopen"
)

// ApplyActivityUpdate moves an activity through its lifecycle. Completing
// stamps completed_date with now when the activity has none; reopening clears
// it. Both triggers re-enter their own state, so repeating one is harmless.
// An explicit completed_date in the update is applied last.
func ApplyActivityUpdate(ctx context.Context, a *models.ClosureActivity, upd models.ActivityUpdate, now time.Time) error {
	initial := StatePending
	if a.Completed {
		initial = StateCompleted
	}

	fsm := stateless.NewStateMachine(initial)
	fsm.Configure(StatePending).
		Permit(TriggerComplete, StateCompleted).
		PermitReentry(TriggerReopen)
	fsm.Configure(StateCompleted).
		OnEntryFrom(TriggerComplete, func(_ context.Context, _ ...any) error {
			a.Completed = true
			if a.CompletedDate == nil {
				ts := now
				a.CompletedDate = &ts
			}
			return nil
		}).
		Permit(TriggerReopen, StatePending).
		PermitReentry(TriggerComplete)
	fsm.Configure(StatePending).
		OnEntryFrom(TriggerReopen, func(_ context.Context, _ ...any) error {
			a.Completed = false
			a.CompletedDate = nil
			return nil
		})

	if upd.Completed != nil {
		trigger := TriggerReopen
		if *upd.Completed {
			trigger = TriggerComplete
		}
		if err := fsm.FireCtx(ctx, trigger); err != nil {
			return err
		}
	}

	if upd.CompletedDate != nil {
		ts := *upd.CompletedDate
		a.CompletedDate = &ts
	}
	return nil
}
