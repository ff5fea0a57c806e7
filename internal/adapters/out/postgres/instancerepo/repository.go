package instancerepo

import (
	"context"
	"errors"

	"pizzaworkflow/internal/core/domain/model/workflow"
	"pizzaworkflow/internal/core/ports"
	"pizzaworkflow/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const storeName = "workflow_instances"

var _ ports.InstanceRepository = (*GormInstanceRepository)(nil)

type GormInstanceRepository struct {
	db *gorm.DB
}

func NewGormInstanceRepository(db *gorm.DB) *GormInstanceRepository {
	return &GormInstanceRepository{db: db}
}

func (r *GormInstanceRepository) Get(ctx context.Context, instanceID string) (*workflow.Instance, error) {
	var dto InstanceDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", instanceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("instance_id", instanceID)
		}
		return nil, errs.NewStoreUnavailableError(storeName, instanceID, err)
	}
	return toDomain(dto)
}

// Save inserts the instance or replaces every column of the existing row.
func (r *GormInstanceRepository) Save(ctx context.Context, instance *workflow.Instance) error {
	if err := instance.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(instance)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "stage_index", "snapshot", "updated_at"}),
	}).Create(&dto).Error
	if err != nil {
		return errs.NewStoreUnavailableError(storeName, dto.ID, err)
	}
	return nil
}

func (r *GormInstanceRepository) ListByState(ctx context.Context, states ...workflow.State) ([]*workflow.Instance, error) {
	if len(states) == 0 {
		return nil, nil
	}

	names := make([]string, len(states))
	for i, s := range states {
		names[i] = s.String()
	}

	var dtos []InstanceDTO
	if err := r.db.WithContext(ctx).Where("state IN ?", names).Order("id").Find(&dtos).Error; err != nil {
		return nil, errs.NewStoreUnavailableError(storeName, "state", err)
	}

	instances := make([]*workflow.Instance, 0, len(dtos))
	for _, dto := range dtos {
		instance, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		instances = append(instances, instance)
	}
	return instances, nil
}
