// Package instancerepo persists workflow instances in PostgreSQL. The full
// instance snapshot is kept as JSON; state and order id are duplicated into
// indexed columns for recovery and expiry scans.
package instancerepo

import (
	"encoding/json"
	"time"

	"pizzaworkflow/internal/core/domain/model/workflow"
)

type InstanceDTO struct {
	ID         string `gorm:"primaryKey;size:160"`
	OrderID    string `gorm:"size:128;index"`
	State      string `gorm:"size:32;index"`
	StageIndex int
	Snapshot   []byte `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (InstanceDTO) TableName() string {
	return "workflow_instances"
}

func fromDomain(instance *workflow.Instance) (InstanceDTO, error) {
	snapshot := instance.Snapshot()
	data, err := json.Marshal(snapshot)
	if err != nil {
		return InstanceDTO{}, err
	}

	return InstanceDTO{
		ID:         snapshot.ID,
		OrderID:    instance.OrderID(),
		State:      snapshot.State.String(),
		StageIndex: snapshot.StageIndex,
		Snapshot:   data,
		CreatedAt:  snapshot.CreatedAt,
		UpdatedAt:  snapshot.UpdatedAt,
	}, nil
}

func toDomain(dto InstanceDTO) (*workflow.Instance, error) {
	var snapshot workflow.Snapshot
	if err := json.Unmarshal(dto.Snapshot, &snapshot); err != nil {
		return nil, err
	}
	return workflow.RestoreInstance(snapshot)
}
