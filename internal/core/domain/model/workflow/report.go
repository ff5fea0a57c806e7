package workflow

import "time"

// StatusReport is the read model returned by status queries.
type StatusReport struct {
	InstanceID        string       `json:"instance_id"`
	OrderID           string       `json:"order_id"`
	State             State        `json:"state"`
	ResumeTarget      State        `json:"resume_target,omitempty"`
	CurrentStageIndex int          `json:"current_stage_index"`
	StageCount        int          `json:"stage_count"`
	PendingDecision   bool         `json:"pending_decision"`
	Decision          *Decision    `json:"decision,omitempty"`
	Error             string       `json:"error,omitempty"`
	History           []Transition `json:"history"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

func (i *Instance) Report() StatusReport {
	return StatusReport{
		InstanceID:        i.id,
		OrderID:           i.order.ID(),
		State:             i.state,
		ResumeTarget:      i.resumeTarget,
		CurrentStageIndex: i.stageIndex,
		StageCount:        i.stageCount,
		PendingDecision:   i.pending != nil,
		Decision:          copyDecision(i.decision),
		Error:             i.failure,
		History:           i.History(),
		CreatedAt:         i.createdAt,
		UpdatedAt:         i.updatedAt,
	}
}
