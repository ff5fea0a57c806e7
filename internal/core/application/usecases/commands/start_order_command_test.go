package commands_test

import (
	"testing"

	"pizzaworkflow/internal/core/application/usecases/commands"
	"pizzaworkflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStartOrderCommand_ValidInput(t *testing.T) {
	cmd, err := commands.NewStartOrderCommand(" 123 ", "Alice", "Margherita", "")

	require.NoError(t, err)
	require.NoError(t, cmd.Validate())
	assert.Equal(t, "123", cmd.Order().ID())
	customer, _ := cmd.Order().Customer()
	assert.Equal(t, "Alice", customer)
	_, hasSize := cmd.Order().Size()
	assert.False(t, hasSize)
}

func TestNewStartOrderCommand_MissingOrderID(t *testing.T) {
	_, err := commands.NewStartOrderCommand("  ", "Alice", "", "")

	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestStartOrderCommand_NotConstructed(t *testing.T) {
	err := commands.StartOrderCommand{}.Validate()

	require.ErrorIs(t, err, commands.ErrStartOrderCommandIsNotConstructed)
}

func TestNewSubmitValidationCommand(t *testing.T) {
	cmd, err := commands.NewSubmitValidationCommand("123", false, "burnt")
	require.NoError(t, err)

	decision := cmd.Decision()
	assert.Equal(t, "123", decision.OrderID)
	assert.False(t, decision.Approved)
	assert.Equal(t, "burnt", decision.Reason)

	_, err = commands.NewSubmitValidationCommand("", true, "")
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestNewControlCommands_RequireOrderID(t *testing.T) {
	_, pauseErr := commands.NewPauseOrderCommand("")
	_, resumeErr := commands.NewResumeOrderCommand("")
	_, cancelErr := commands.NewCancelOrderCommand("", "")

	require.ErrorIs(t, pauseErr, errs.ErrValueIsRequired)
	require.ErrorIs(t, resumeErr, errs.ErrValueIsRequired)
	require.ErrorIs(t, cancelErr, errs.ErrValueIsRequired)
}

func TestNewCancelOrderCommand_DefaultReason(t *testing.T) {
	cmd, err := commands.NewCancelOrderCommand("1", "")

	require.NoError(t, err)
	assert.Equal(t, commands.DefaultCancelReason, cmd.Reason())
}
