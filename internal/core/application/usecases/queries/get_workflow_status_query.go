package queries

import (
	"errors"
	"strings"

	"pizzaworkflow/internal/pkg/errs"
	"pizzaworkflow/internal/pkg/guard"
)

var ErrGetWorkflowStatusQueryIsNotConstructed = errors.New(
	"GetWorkflowStatusQuery must be created via NewGetWorkflowStatusQuery constructor",
)

// GetWorkflowStatusQuery reads the state, stage progress and transition
// history of an order's workflow instance.
//
// Example:
//
//	query, err := NewGetWorkflowStatusQuery("123")
//	if err != nil {
//	    return err
//	}
//	status, err := handler.Handle(ctx, query)
//	fmt.Println(status.Report.State, status.Report.CurrentStageIndex)
type GetWorkflowStatusQuery struct {
	orderID string

	guard guard.ConstructorGuard
}

func NewGetWorkflowStatusQuery(orderID string) (GetWorkflowStatusQuery, error) {
	id, err := requireOrderID(orderID)
	if err != nil {
		return GetWorkflowStatusQuery{}, err
	}
	return GetWorkflowStatusQuery{orderID: id, guard: guard.NewConstructorGuard()}, nil
}

func (q GetWorkflowStatusQuery) Validate() error {
	return q.guard.Validate(ErrGetWorkflowStatusQueryIsNotConstructed)
}

func (q GetWorkflowStatusQuery) OrderID() string { return q.orderID }

func requireOrderID(orderID string) (string, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return "", errs.NewValueIsRequiredError("order_id")
	}
	return orderID, nil
}
