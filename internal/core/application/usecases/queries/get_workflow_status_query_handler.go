package queries

import (
	"context"

	"pizzaworkflow/internal/core/domain/model/workflow"
	"pizzaworkflow/internal/core/ports"
)

type GetWorkflowStatusResponse struct {
	OrderID string
	Report  workflow.StatusReport
}

type GetWorkflowStatusQueryHandler struct {
	engine ports.WorkflowEngine
}

func NewGetWorkflowStatusQueryHandler(engine ports.WorkflowEngine) GetWorkflowStatusQueryHandler {
	return GetWorkflowStatusQueryHandler{engine: engine}
}

// Handle returns an ObjectNotFoundError when the order was never started.
func (h GetWorkflowStatusQueryHandler) Handle(
	ctx context.Context,
	query GetWorkflowStatusQuery,
) (GetWorkflowStatusResponse, error) {
	if err := query.Validate(); err != nil {
		return GetWorkflowStatusResponse{}, err
	}

	report, err := h.engine.GetStatus(ctx, workflow.InstanceID(query.OrderID()))
	if err != nil {
		return GetWorkflowStatusResponse{}, err
	}
	return GetWorkflowStatusResponse{OrderID: query.OrderID(), Report: report}, nil
}
