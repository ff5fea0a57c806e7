package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	httpin "pizzaworkflow/internal/adapters/in/http"
	"pizzaworkflow/internal/core/application/usecases/commands"
	"pizzaworkflow/internal/core/application/usecases/queries"
	"pizzaworkflow/internal/core/domain/model/order"
	"pizzaworkflow/internal/core/domain/model/workflow"
	"pizzaworkflow/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockEngine struct{ mock.Mock }

func (m *MockEngine) Start(ctx context.Context, o order.Order) (workflow.StatusReport, error) {
	args := m.Called(ctx, o)
	return args.Get(0).(workflow.StatusReport), args.Error(1)
}

func (m *MockEngine) RaiseEvent(ctx context.Context, instanceID, eventName string, payload []byte) error {
	return m.Called(ctx, instanceID, eventName, payload).Error(0)
}

func (m *MockEngine) SignalValidation(ctx context.Context, instanceID string, decision workflow.Decision) error {
	return m.Called(ctx, instanceID, decision).Error(0)
}

func (m *MockEngine) GetStatus(ctx context.Context, instanceID string) (workflow.StatusReport, error) {
	args := m.Called(ctx, instanceID)
	return args.Get(0).(workflow.StatusReport), args.Error(1)
}

func (m *MockEngine) Pause(ctx context.Context, instanceID string) error {
	return m.Called(ctx, instanceID).Error(0)
}

func (m *MockEngine) Resume(ctx context.Context, instanceID string) error {
	return m.Called(ctx, instanceID).Error(0)
}

func (m *MockEngine) Terminate(ctx context.Context, instanceID, reason string) error {
	return m.Called(ctx, instanceID, reason).Error(0)
}

type stubOrders map[string]order.Order

func (s stubOrders) Get(_ context.Context, orderID string) (order.Order, error) {
	o, ok := s[orderID]
	if !ok {
		return order.Order{}, errs.NewObjectNotFoundError("order_id", orderID)
	}
	return o, nil
}

func (s stubOrders) Delete(_ context.Context, orderID string) error {
	delete(s, orderID)
	return nil
}

func newTestRouter(engine *MockEngine, orders stubOrders) *echo.Echo {
	server := httpin.NewServer(
		commands.NewStartOrderCommandHandler(engine),
		commands.NewSubmitValidationCommandHandler(engine),
		commands.NewPauseOrderCommandHandler(engine),
		commands.NewResumeOrderCommandHandler(engine),
		commands.NewCancelOrderCommandHandler(engine),
		commands.NewDeleteOrderCommandHandler(orders),
		queries.NewGetWorkflowStatusQueryHandler(engine),
		queries.NewGetOrderQueryHandler(orders),
	)
	e := echo.New()
	server.Register(e)
	return e
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestStartOrder(t *testing.T) {
	// Given
	engine := &MockEngine{}
	engine.On("Start", mock.Anything, mock.MatchedBy(func(o order.Order) bool {
		pizza, _ := o.PizzaType()
		return o.ID() == "42" && pizza == "margherita"
	})).Return(workflow.StatusReport{
		InstanceID: "pizza-order-42",
		OrderID:    "42",
		State:      workflow.Validating,
	}, nil)
	e := newTestRouter(engine, nil)

	// When
	rec := do(e, http.MethodPost, "/start-order",
		`{"order_id":"42","customer":"Alice","pizza_type":"margherita","size":"large"}`)

	// Then
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"order_id":"42","instance_id":"pizza-order-42","status":"Validating"}`, rec.Body.String())
	engine.AssertExpectations(t)
}

func TestStartOrder_MissingOrderID(t *testing.T) {
	engine := &MockEngine{}
	e := newTestRouter(engine, nil)

	rec := do(e, http.MethodPost, "/start-order", `{"customer":"Alice"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	engine.AssertNotCalled(t, "Start", mock.Anything, mock.Anything)
}

func TestValidatePizza(t *testing.T) {
	// Given
	engine := &MockEngine{}
	engine.On("SignalValidation", mock.Anything, "pizza-order-42",
		workflow.Decision{OrderID: "42", Approved: false, Reason: "no pineapple"}).Return(nil)
	e := newTestRouter(engine, nil)

	// When
	rec := do(e, http.MethodPost, "/validate-pizza", `{"order_id":"42","approved":false,"reason":"no pineapple"}`)

	// Then
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"order_id":"42","validation_status":"rejected"}`, rec.Body.String())
	engine.AssertExpectations(t)
}

func TestGetStatus(t *testing.T) {
	engine := &MockEngine{}
	engine.On("GetStatus", mock.Anything, "pizza-order-42").Return(workflow.StatusReport{
		InstanceID: "pizza-order-42",
		OrderID:    "42",
		State:      workflow.Processing,
		StageCount: 3,
	}, nil)
	engine.On("GetStatus", mock.Anything, "pizza-order-7").
		Return(workflow.StatusReport{}, errs.NewObjectNotFoundError("instance_id", "pizza-order-7"))
	e := newTestRouter(engine, nil)

	rec := do(e, http.MethodGet, "/get-status/42", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"Processing"`)
	assert.Contains(t, rec.Body.String(), `"stage_count":3`)

	rec = do(e, http.MethodGet, "/get-status/7", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestControlOperations(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		setup    func(engine *MockEngine)
		wantCode int
		wantBody string
	}{
		{
			name: "pause",
			path: "/pause-order",
			setup: func(engine *MockEngine) {
				engine.On("Pause", mock.Anything, "pizza-order-1").Return(nil)
			},
			wantCode: http.StatusOK,
			wantBody: `{"order_id":"1","status":"paused"}`,
		},
		{
			name: "resume of a running instance",
			path: "/resume-order",
			setup: func(engine *MockEngine) {
				engine.On("Resume", mock.Anything, "pizza-order-1").
					Return(errs.NewInvalidTransitionError("resume", "Processing"))
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "cancel",
			path: "/cancel-order",
			setup: func(engine *MockEngine) {
				engine.On("Terminate", mock.Anything, "pizza-order-1", commands.DefaultCancelReason).Return(nil)
			},
			wantCode: http.StatusOK,
			wantBody: `{"order_id":"1","status":"terminated"}`,
		},
		{
			name: "cancel of a finished instance",
			path: "/cancel-order",
			setup: func(engine *MockEngine) {
				engine.On("Terminate", mock.Anything, "pizza-order-1", commands.DefaultCancelReason).
					Return(errs.NewTerminalStateError("terminate", "Confirmed"))
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "pause while the store is down",
			path: "/pause-order",
			setup: func(engine *MockEngine) {
				engine.On("Pause", mock.Anything, "pizza-order-1").
					Return(errs.NewStoreUnavailableError("pizzastatestore", "order_1", assert.AnError))
			},
			wantCode: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given
			engine := &MockEngine{}
			tt.setup(engine)
			e := newTestRouter(engine, nil)

			// When
			rec := do(e, http.MethodPost, tt.path, `{"order_id":"1"}`)

			// Then
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
			engine.AssertExpectations(t)
		})
	}
}

func TestGetOrder(t *testing.T) {
	o, err := order.NewOrder("42")
	require.NoError(t, err)
	orders := stubOrders{"42": o.WithCustomer("Alice").WithStatus(order.Processing)}
	e := newTestRouter(&MockEngine{}, orders)

	rec := do(e, http.MethodGet, "/order/42", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"order_id":"42","customer":"Alice","status":"processing"}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/order/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteOrder(t *testing.T) {
	// Given
	o, _ := order.NewOrder("42")
	orders := stubOrders{"42": o.WithStatus(order.Confirmed)}
	e := newTestRouter(&MockEngine{}, orders)

	// When
	rec := do(e, http.MethodDelete, "/order/42", "")

	// Then
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"order_id":"42","status":"deleted"}`, rec.Body.String())
	assert.NotContains(t, orders, "42")
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/order/42", "").Code)

	rec = do(e, http.MethodDelete, "/order/42", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
