package commands

import (
	"context"

	"pizzaworkflow/internal/core/ports"
)

const StatusDeleted = "deleted"

type DeleteOrderCommandHandler struct {
	orders ports.OrderDeleter
}

func NewDeleteOrderCommandHandler(orders ports.OrderDeleter) DeleteOrderCommandHandler {
	return DeleteOrderCommandHandler{orders: orders}
}

func (h DeleteOrderCommandHandler) Handle(ctx context.Context, cmd DeleteOrderCommand) (ControlResult, error) {
	if err := cmd.Validate(); err != nil {
		return ControlResult{}, err
	}
	if err := h.orders.Delete(ctx, cmd.OrderID()); err != nil {
		return ControlResult{}, err
	}
	return ControlResult{OrderID: cmd.OrderID(), Status: StatusDeleted}, nil
}
