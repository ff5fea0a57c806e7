package commands

import (
	"context"
	"errors"

	"pizzaworkflow/internal/core/ports"
	"pizzaworkflow/internal/pkg/guard"
)

var (
	ErrRecoverInstancesCommandIsNotConstructed = errors.New(
		"RecoverInstancesCommand must be created via NewRecoverInstancesCommand constructor",
	)
	ErrExpireValidationsCommandIsNotConstructed = errors.New(
		"ExpireValidationsCommand must be created via NewExpireValidationsCommand constructor",
	)
)

// RecoverInstancesCommand re-drives instances left running by a previous
// process.
type RecoverInstancesCommand struct { //nolint:recvcheck //using for validation
	guard guard.ConstructorGuard
}

func NewRecoverInstancesCommand() RecoverInstancesCommand {
	return RecoverInstancesCommand{guard: guard.NewConstructorGuard()}
}

func (c RecoverInstancesCommand) Validate() error {
	return c.guard.Validate(ErrRecoverInstancesCommandIsNotConstructed)
}

type RecoverInstancesCommandHandler struct {
	maintenance ports.WorkflowMaintenance
}

func NewRecoverInstancesCommandHandler(maintenance ports.WorkflowMaintenance) RecoverInstancesCommandHandler {
	return RecoverInstancesCommandHandler{maintenance: maintenance}
}

// Handle returns the number of instances picked up.
func (h RecoverInstancesCommandHandler) Handle(ctx context.Context, cmd RecoverInstancesCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}
	return h.maintenance.Recover(ctx)
}

// ExpireValidationsCommand expires instances whose validation deadline
// passed.
type ExpireValidationsCommand struct { //nolint:recvcheck //using for validation
	guard guard.ConstructorGuard
}

func NewExpireValidationsCommand() ExpireValidationsCommand {
	return ExpireValidationsCommand{guard: guard.NewConstructorGuard()}
}

func (c ExpireValidationsCommand) Validate() error {
	return c.guard.Validate(ErrExpireValidationsCommandIsNotConstructed)
}

type ExpireValidationsCommandHandler struct {
	maintenance ports.WorkflowMaintenance
}

func NewExpireValidationsCommandHandler(maintenance ports.WorkflowMaintenance) ExpireValidationsCommandHandler {
	return ExpireValidationsCommandHandler{maintenance: maintenance}
}

// Handle returns the number of instances that expired.
func (h ExpireValidationsCommandHandler) Handle(ctx context.Context, cmd ExpireValidationsCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}
	return h.maintenance.ExpireStale(ctx)
}
