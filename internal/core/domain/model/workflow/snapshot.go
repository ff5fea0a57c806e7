package workflow

import (
	"fmt"
	"time"

	"pizzaworkflow/internal/core/domain/model/order"
	"pizzaworkflow/internal/pkg/errs"
)

// Snapshot is the persisted form of an Instance. Repositories store it as a
// single JSON document and index it by ID and State.
type Snapshot struct {
	ID           string         `json:"id"`
	Order        order.Document `json:"order"`
	State        State          `json:"state"`
	ResumeTarget State          `json:"resume_target,omitempty"`
	StageIndex   int            `json:"stage_index"`
	StageCount   int            `json:"stage_count"`
	Pending      *Decision      `json:"pending,omitempty"`
	Decision     *Decision      `json:"decision,omitempty"`
	Failure      string         `json:"failure,omitempty"`
	History      []Transition   `json:"history"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	WaitingSince *time.Time     `json:"waiting_since,omitempty"`
}

func (i *Instance) Snapshot() Snapshot {
	return Snapshot{
		ID:           i.id,
		Order:        i.order.Document(),
		State:        i.state,
		ResumeTarget: i.resumeTarget,
		StageIndex:   i.stageIndex,
		StageCount:   i.stageCount,
		Pending:      copyDecision(i.pending),
		Decision:     copyDecision(i.decision),
		Failure:      i.failure,
		History:      i.History(),
		CreatedAt:    i.createdAt,
		UpdatedAt:    i.updatedAt,
		WaitingSince: copyTime(i.waitingSince),
	}
}

// RestoreInstance rebuilds an Instance from storage and checks that the
// snapshot is internally consistent.
func RestoreInstance(s Snapshot) (*Instance, error) {
	o, err := order.FromDocument(s.Order)
	if err != nil {
		return nil, err
	}
	if s.ID != InstanceID(o.ID()) {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"id",
			fmt.Errorf("instance %q does not belong to order %q", s.ID, o.ID()),
		)
	}
	if err = s.State.Validate(); err != nil {
		return nil, err
	}
	if s.State == Paused {
		if err = s.ResumeTarget.Validate(); err != nil || !s.ResumeTarget.IsPausable() {
			return nil, errs.NewValueIsInvalidErrorWithCause(
				"resume_target",
				fmt.Errorf("%q cannot be resumed into", s.ResumeTarget),
			)
		}
	}
	if s.StageCount <= 0 || s.StageIndex < 0 || s.StageIndex > s.StageCount {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"stage_index",
			fmt.Errorf("%d is outside 0..%d", s.StageIndex, s.StageCount),
		)
	}

	history := make([]Transition, len(s.History))
	copy(history, s.History)

	return &Instance{
		id:            s.ID,
		order:         o,
		state:         s.State,
		resumeTarget:  s.ResumeTarget,
		stageIndex:    s.StageIndex,
		stageCount:    s.StageCount,
		pending:       copyDecision(s.Pending),
		decision:      copyDecision(s.Decision),
		failure:       s.Failure,
		history:       history,
		createdAt:     s.CreatedAt,
		updatedAt:     s.UpdatedAt,
		waitingSince:  copyTime(s.WaitingSince),
		isConstructed: true,
	}, nil
}

func copyDecision(d *Decision) *Decision {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
