package workflow

import (
	"errors"
	"fmt"
	"time"

	"pizzaworkflow/internal/core/domain/model/order"
	"pizzaworkflow/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrInstanceIsNotConstructed = errors.New("Instance must be created via NewInstance constructor")

// Instance is the durable record of one order's workflow. It is owned by a
// single writer; callers serialize access per instance id.
type Instance struct {
	id           string
	order        order.Order
	state        State
	resumeTarget State
	stageIndex   int
	stageCount   int
	pending      *Decision
	decision     *Decision
	failure      string
	history      []Transition
	createdAt    time.Time
	updatedAt    time.Time
	waitingSince *time.Time

	isConstructed bool
}

// NewInstance creates a NotStarted instance for the order. stageCount is the
// number of processing stages the instance must complete before Confirm.
func NewInstance(o order.Order, stageCount int, now time.Time) (*Instance, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if stageCount <= 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"stage_count",
			fmt.Errorf("%d is not greater than 0", stageCount),
		)
	}

	return &Instance{
		id:            InstanceID(o.ID()),
		order:         o,
		state:         NotStarted,
		stageCount:    stageCount,
		createdAt:     now,
		updatedAt:     now,
		isConstructed: true,
	}, nil
}

func (i *Instance) Validate() error {
	if i == nil || !i.isConstructed {
		return ErrInstanceIsNotConstructed
	}
	return nil
}

func (i *Instance) ID() string { return i.id }

func (i *Instance) OrderID() string { return i.order.ID() }

// Order returns the order as submitted when the workflow started.
func (i *Instance) Order() order.Order { return i.order }

func (i *Instance) State() State { return i.state }

// ResumeTarget is the state Resume returns to; empty unless Paused.
func (i *Instance) ResumeTarget() State { return i.resumeTarget }

// StageIndex is the index of the next processing stage to run, which is
// also the number of stages already completed.
func (i *Instance) StageIndex() int { return i.stageIndex }

func (i *Instance) StageCount() int { return i.stageCount }

func (i *Instance) HasPendingDecision() bool { return i.pending != nil }

func (i *Instance) FailureReason() string { return i.failure }

func (i *Instance) UpdatedAt() time.Time { return i.updatedAt }

func (i *Instance) History() []Transition {
	out := make([]Transition, len(i.history))
	copy(out, i.history)
	return out
}

// IsProcessing reports whether the instance is running stages, or paused
// while doing so.
func (i *Instance) IsProcessing() bool {
	return i.state == Processing || (i.state == Paused && i.resumeTarget == Processing)
}

// Begin moves a fresh instance into Validating.
func (i *Instance) Begin(now time.Time) error {
	if i.state != NotStarted {
		return i.refuse("begin")
	}
	i.move(Validating, "workflow started", now)
	return nil
}

// ValidationRequested records that the validation activity finished. A
// Validating instance starts waiting for its decision and immediately
// consumes one that was buffered. A paused instance only moves its resume
// target forward so the activity is not repeated after Resume.
func (i *Instance) ValidationRequested(now time.Time) error {
	switch {
	case i.state == Validating:
		i.enterWaiting("validation requested", now)
		return nil
	case i.state == Paused && i.resumeTarget == Validating:
		i.resumeTarget = WaitingForValidation
		i.updatedAt = now
		return nil
	default:
		return i.refuse("record validation request")
	}
}

// Deliver hands a ValidationComplete decision to the instance. It is applied
// when the instance is waiting for it, buffered when the instance has not got
// there yet, and refused otherwise. The first buffered decision wins; later
// duplicates are dropped. The returned bool is true when it was applied.
func (i *Instance) Deliver(d Decision, now time.Time) (bool, error) {
	if d.OrderID != "" && d.OrderID != i.order.ID() {
		return false, errs.NewValueIsInvalidErrorWithCause(
			"order_id",
			fmt.Errorf("decision for order %q delivered to %s", d.OrderID, i.id),
		)
	}

	switch {
	case i.state == WaitingForValidation:
		i.decide(d, now)
		return true, nil
	case i.state == Validating,
		i.state == Paused && (i.resumeTarget == Validating || i.resumeTarget == WaitingForValidation):
		if i.pending == nil {
			buffered := d
			i.pending = &buffered
			i.updatedAt = now
		}
		return false, nil
	default:
		return false, i.refuse("deliver " + ValidationCompleteEvent)
	}
}

// Pause suspends a running instance and remembers where to resume.
func (i *Instance) Pause(now time.Time) error {
	if !i.state.IsPausable() {
		return i.refuse("pause")
	}
	i.resumeTarget = i.state
	i.move(Paused, "paused from "+i.state.String(), now)
	return nil
}

// Resume returns a paused instance to its recorded state. Resuming into
// WaitingForValidation consumes a decision buffered during the pause.
func (i *Instance) Resume(now time.Time) error {
	if i.state != Paused {
		return i.refuse("resume")
	}
	target := i.resumeTarget
	i.resumeTarget = ""
	if target == WaitingForValidation {
		i.enterWaiting("resumed", now)
		return nil
	}
	i.move(target, "resumed", now)
	return nil
}

// Terminate ends any non-terminal instance. Nothing already done is undone.
func (i *Instance) Terminate(reason string, now time.Time) error {
	if i.state.IsTerminal() {
		return i.refuse("terminate")
	}
	if reason == "" {
		reason = "terminated"
	}
	i.resumeTarget = ""
	i.pending = nil
	i.waitingSince = nil
	i.move(Terminated, reason, now)
	return nil
}

// CompleteStage advances the stage marker past index. Stages complete in
// order, exactly once; a stage finishing after Pause still counts.
func (i *Instance) CompleteStage(index int, now time.Time) error {
	action := fmt.Sprintf("complete stage %d", index)
	if !i.IsProcessing() {
		return i.refuse(action)
	}
	if index != i.stageIndex || index >= i.stageCount {
		return errs.NewInvalidTransitionError(action, fmt.Sprintf("%s at stage %d", i.state, i.stageIndex))
	}

	i.history = append(i.history, Transition{
		ID:     uuid.New(),
		From:   i.state,
		To:     i.state,
		Stage:  index,
		Reason: "stage completed",
		At:     now,
	})
	i.stageIndex++
	i.updatedAt = now
	return nil
}

// Confirm finishes an instance whose stages have all completed.
func (i *Instance) Confirm(now time.Time) error {
	if i.state != Processing || i.stageIndex < i.stageCount {
		return i.refuse("confirm")
	}
	i.move(Confirmed, "all stages completed", now)
	return nil
}

// Fail records a processing failure (or a failed validation activity).
func (i *Instance) Fail(reason string, now time.Time) error {
	if i.state != Validating && i.state != Processing && i.state != Paused {
		return i.refuse("fail")
	}
	i.failure = reason
	i.resumeTarget = ""
	i.pending = nil
	i.move(Failed, reason, now)
	return nil
}

// ValidationDeadline returns when a waiting instance expires under timeout.
func (i *Instance) ValidationDeadline(timeout time.Duration) (time.Time, bool) {
	if timeout <= 0 || i.state != WaitingForValidation || i.waitingSince == nil {
		return time.Time{}, false
	}
	return i.waitingSince.Add(timeout), true
}

// Expire ends an instance that waited too long for its decision.
func (i *Instance) Expire(now time.Time) error {
	if i.state != WaitingForValidation {
		return i.refuse("expire")
	}
	i.waitingSince = nil
	i.move(Expired, "validation not received in time", now)
	return nil
}

func (i *Instance) enterWaiting(reason string, now time.Time) {
	i.move(WaitingForValidation, reason, now)
	since := now
	i.waitingSince = &since
	if i.pending != nil {
		d := *i.pending
		i.pending = nil
		i.decide(d, now)
	}
}

func (i *Instance) decide(d Decision, now time.Time) {
	i.decision = &d
	i.waitingSince = nil
	if d.Approved {
		i.move(Processing, "validation approved", now)
		return
	}
	reason := "validation rejected"
	if d.Reason != "" {
		reason += ": " + d.Reason
	}
	i.move(Rejected, reason, now)
}

func (i *Instance) move(to State, reason string, now time.Time) {
	i.history = append(i.history, Transition{
		ID:     uuid.New(),
		From:   i.state,
		To:     to,
		Stage:  i.stageIndex,
		Reason: reason,
		At:     now,
	})
	i.state = to
	i.updatedAt = now
}

func (i *Instance) refuse(action string) error {
	if i.state.IsTerminal() {
		return errs.NewTerminalStateError(action, i.state.String())
	}
	return errs.NewInvalidTransitionError(action, i.state.String())
}
