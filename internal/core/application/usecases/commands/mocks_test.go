package commands_test

import (
	"context"

	"pizzaworkflow/internal/core/domain/model/order"
	"pizzaworkflow/internal/core/domain/model/workflow"

	"github.com/stretchr/testify/mock"
)

type MockEngine struct{ mock.Mock }

func (m *MockEngine) Start(ctx context.Context, o order.Order) (workflow.StatusReport, error) {
	args := m.Called(ctx, o)
	return args.Get(0).(workflow.StatusReport), args.Error(1)
}

func (m *MockEngine) RaiseEvent(ctx context.Context, instanceID, eventName string, payload []byte) error {
	args := m.Called(ctx, instanceID, eventName, payload)
	return args.Error(0)
}

func (m *MockEngine) SignalValidation(ctx context.Context, instanceID string, decision workflow.Decision) error {
	args := m.Called(ctx, instanceID, decision)
	return args.Error(0)
}

func (m *MockEngine) GetStatus(ctx context.Context, instanceID string) (workflow.StatusReport, error) {
	args := m.Called(ctx, instanceID)
	return args.Get(0).(workflow.StatusReport), args.Error(1)
}

func (m *MockEngine) Pause(ctx context.Context, instanceID string) error {
	args := m.Called(ctx, instanceID)
	return args.Error(0)
}

func (m *MockEngine) Resume(ctx context.Context, instanceID string) error {
	args := m.Called(ctx, instanceID)
	return args.Error(0)
}

func (m *MockEngine) Terminate(ctx context.Context, instanceID, reason string) error {
	args := m.Called(ctx, instanceID, reason)
	return args.Error(0)
}

type MockMaintenance struct{ mock.Mock }

func (m *MockMaintenance) Recover(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockMaintenance) ExpireStale(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockOrderDeleter struct{ mock.Mock }

func (m *MockOrderDeleter) Delete(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}
