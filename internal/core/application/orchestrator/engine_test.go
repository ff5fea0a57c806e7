package orchestrator_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"pizzaworkflow/internal/adapters/out/memory"
	"pizzaworkflow/internal/core/application/notification"
	"pizzaworkflow/internal/core/application/orchestrator"
	"pizzaworkflow/internal/core/application/orderstore"
	"pizzaworkflow/internal/core/application/pipeline"
	"pizzaworkflow/internal/core/domain/model/order"
	"pizzaworkflow/internal/core/domain/model/workflow"
	"pizzaworkflow/internal/core/ports"
	"pizzaworkflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	storeName  = "pizzastatestore"
	topic      = "orders"
	instanceID = "pizza-order-123"
	waitFor    = 2 * time.Second
	tick       = 5 * time.Millisecond
)

type harness struct {
	engine    *orchestrator.Engine
	orders    *orderstore.Store
	state     ports.StateStore
	bus       *memory.Bus
	instances *memory.InstanceRepository
}

func newHarness(
	t *testing.T,
	work pipeline.Work,
	validation orchestrator.ValidationActivity,
	opts ...orchestrator.Option,
) *harness {
	t.Helper()
	return newHarnessOn(t, memory.NewStateStore(), work, validation, opts...)
}

func newHarnessOn(
	t *testing.T,
	state ports.StateStore,
	work pipeline.Work,
	validation orchestrator.ValidationActivity,
	opts ...orchestrator.Option,
) *harness {
	t.Helper()

	bus := memory.NewBus()
	instances := memory.NewInstanceRepository()

	orders, err := orderstore.NewStore(state, storeName, nil)
	require.NoError(t, err)
	notifier, err := notification.NewNotifier(bus, topic, nil, nil)
	require.NoError(t, err)

	if work == nil {
		work = func(context.Context, pipeline.Stage, order.Order) error { return nil }
	}
	p, err := pipeline.New(orders, notifier, pipeline.DefaultStages(1), pipeline.WithWork(work))
	require.NoError(t, err)

	if validation == nil {
		validation = orchestrator.RecordPendingValidation(state, storeName)
	}
	engine, err := orchestrator.New(orchestrator.Dependencies{
		Instances:  instances,
		Orders:     orders,
		Publisher:  notifier,
		Pipeline:   p,
		Validation: validation,
	}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), waitFor)
		defer cancel()
		_ = engine.Shutdown(ctx)
	})

	return &harness{engine: engine, orders: orders, state: state, bus: bus, instances: instances}
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	o, err := order.NewOrder("123")
	require.NoError(t, err)
	_, err = h.engine.Start(t.Context(), o.WithCustomer("Alice").WithPizzaType("Margherita").WithSize("large"))
	require.NoError(t, err)
}

func (h *harness) waitState(t *testing.T, want workflow.State) workflow.StatusReport {
	t.Helper()
	var report workflow.StatusReport
	require.Eventually(t, func() bool {
		var err error
		report, err = h.engine.GetStatus(context.Background(), instanceID)
		return err == nil && report.State == want
	}, waitFor, tick, "instance never reached %s", want)
	return report
}

func (h *harness) published() []string {
	messages := h.bus.Messages(topic)
	statuses := make([]string, 0, len(messages))
	for _, msg := range messages {
		var doc order.Document
		if err := json.Unmarshal(msg.Payload, &doc); err == nil {
			statuses = append(statuses, doc.Status)
		}
	}
	return statuses
}

func (h *harness) orderStatus(t *testing.T) order.Status {
	t.Helper()
	o, err := h.orders.Get(context.Background(), "123")
	require.NoError(t, err)
	return o.Status()
}

// blocker holds chosen stages until released or cancelled.
type blocker struct {
	mu      sync.Mutex
	entered map[order.Status]chan struct{}
	release map[order.Status]chan struct{}
}

func newBlocker(stages ...order.Status) *blocker {
	b := &blocker{
		entered: make(map[order.Status]chan struct{}),
		release: make(map[order.Status]chan struct{}),
	}
	for _, s := range stages {
		b.entered[s] = make(chan struct{})
		b.release[s] = make(chan struct{})
	}
	return b
}

func (b *blocker) work(ctx context.Context, stage pipeline.Stage, _ order.Order) error {
	b.mu.Lock()
	release, ok := b.release[stage.Name]
	if ok {
		select {
		case <-b.entered[stage.Name]:
		default:
			close(b.entered[stage.Name])
		}
	}
	b.mu.Unlock()
	if !ok {
		return nil
	}

	select {
	case <-release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *blocker) waitEntered(t *testing.T, stage order.Status) {
	t.Helper()
	select {
	case <-b.entered[stage]:
	case <-time.After(waitFor):
		t.Fatalf("stage %s never started", stage)
	}
}

func (b *blocker) open(stage order.Status) {
	close(b.release[stage])
}

func TestEngine_Start(t *testing.T) {
	t.Run("waits_for_validation_and_records_request", func(t *testing.T) {
		h := newHarness(t, nil, nil)

		h.start(t)

		h.waitState(t, workflow.WaitingForValidation)
		assert.Equal(t, order.Created, h.orderStatus(t))
		record, found, err := h.state.Get(t.Context(), storeName, "validation_123")
		require.NoError(t, err)
		require.True(t, found)
		assert.JSONEq(t, `{"order_id":"123","status":"pending_validation"}`, string(record))
	})

	t.Run("duplicate_start_returns_existing_status", func(t *testing.T) {
		h := newHarness(t, nil, nil)
		h.start(t)
		h.waitState(t, workflow.WaitingForValidation)

		o, _ := order.NewOrder("123")
		report, err := h.engine.Start(t.Context(), o.WithCustomer("Mallory"))

		require.NoError(t, err)
		assert.Equal(t, workflow.WaitingForValidation, report.State)
		stored, _ := h.orders.Get(t.Context(), "123")
		customer, _ := stored.Customer()
		assert.Equal(t, "Alice", customer)
	})

	t.Run("rejects_unconstructed_order", func(t *testing.T) {
		h := newHarness(t, nil, nil)

		_, err := h.engine.Start(t.Context(), order.Order{})

		require.ErrorIs(t, err, order.ErrOrderIsNotConstructed)
	})
}

func TestEngine_ApprovedOrderIsConfirmed(t *testing.T) {
	// Given
	h := newHarness(t, nil, nil)
	h.start(t)
	h.waitState(t, workflow.WaitingForValidation)

	// When
	err := h.engine.SignalValidation(t.Context(), instanceID, workflow.Decision{OrderID: "123", Approved: true})

	// Then
	require.NoError(t, err)
	report := h.waitState(t, workflow.Confirmed)
	assert.Equal(t, 3, report.CurrentStageIndex)
	assert.Equal(t, []string{"validating", "processing", "confirmed"}, h.published())

	stored, err := h.orders.Get(t.Context(), "123")
	require.NoError(t, err)
	assert.Equal(t, order.Confirmed, stored.Status())
	customer, _ := stored.Customer()
	assert.Equal(t, "Alice", customer)
}

func TestEngine_RejectedOrder(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.start(t)
	h.waitState(t, workflow.WaitingForValidation)

	err := h.engine.RaiseEvent(t.Context(), instanceID, workflow.ValidationCompleteEvent,
		[]byte(`{"order_id":"123","approved":false,"reason":"out of dough"}`))

	require.NoError(t, err)
	report, err := h.engine.GetStatus(t.Context(), instanceID)
	require.NoError(t, err)
	assert.Equal(t, workflow.Rejected, report.State)
	require.NotNil(t, report.Decision)
	assert.Equal(t, "out of dough", report.Decision.Reason)
	assert.Equal(t, order.Rejected, h.orderStatus(t))
	assert.Equal(t, []string{"rejected"}, h.published())
}

func TestEngine_RaiseEvent_UnknownEvent(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.start(t)

	err := h.engine.RaiseEvent(t.Context(), instanceID, "OvenPreheated", []byte(`{}`))

	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestEngine_RaiseEvent_DecisionNamesOrder(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.start(t)
	h.waitState(t, workflow.WaitingForValidation)

	err := h.engine.RaiseEvent(t.Context(), instanceID, workflow.ValidationCompleteEvent, []byte(`{"approved":false}`))

	require.NoError(t, err)
	report, err := h.engine.GetStatus(t.Context(), instanceID)
	require.NoError(t, err)
	require.NotNil(t, report.Decision)
	assert.Equal(t, "123", report.Decision.OrderID)
}

func TestEngine_RaiseEvent_ForeignInstance(t *testing.T) {
	h := newHarness(t, nil, nil)

	err := h.engine.RaiseEvent(t.Context(), "order-123", workflow.ValidationCompleteEvent, []byte(`{"approved":true}`))

	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestEngine_DecisionBufferedWhileValidating(t *testing.T) {
	// Given a validation activity that has not finished yet
	release := make(chan struct{})
	h := newHarness(t, nil, func(ctx context.Context, _ order.Order) error {
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	h.start(t)
	h.waitState(t, workflow.Validating)

	// When the decision arrives early
	err := h.engine.SignalValidation(t.Context(), instanceID, workflow.Decision{Approved: true})

	// Then it is held until the instance waits for it
	require.NoError(t, err)
	report, err := h.engine.GetStatus(t.Context(), instanceID)
	require.NoError(t, err)
	assert.True(t, report.PendingDecision)
	assert.Equal(t, workflow.Validating, report.State)

	close(release)
	h.waitState(t, workflow.Confirmed)
	assert.Equal(t, []string{"validating", "processing", "confirmed"}, h.published())
}

func TestEngine_PauseResumeMidProcessing(t *testing.T) {
	// Given an instance whose processing stage is in flight
	b := newBlocker(order.Processing)
	h := newHarness(t, b.work, nil)
	h.start(t)
	h.waitState(t, workflow.WaitingForValidation)
	require.NoError(t, h.engine.SignalValidation(t.Context(), instanceID, workflow.Decision{Approved: true}))
	b.waitEntered(t, order.Processing)

	// When it is paused and the stage finishes
	require.NoError(t, h.engine.Pause(t.Context(), instanceID))
	b.open(order.Processing)

	// Then the finished stage is recorded and nothing else runs
	require.Eventually(t, func() bool {
		report, err := h.engine.GetStatus(context.Background(), instanceID)
		return err == nil && report.CurrentStageIndex == 2
	}, waitFor, tick)
	report, err := h.engine.GetStatus(t.Context(), instanceID)
	require.NoError(t, err)
	assert.Equal(t, workflow.Paused, report.State)
	assert.Equal(t, workflow.Processing, report.ResumeTarget)
	assert.Equal(t, order.Paused, h.orderStatus(t))
	assert.Equal(t, []string{"validating", "processing"}, h.published())

	// When resumed
	require.NoError(t, h.engine.Resume(t.Context(), instanceID))

	// Then only the remaining stage is run and published
	h.waitState(t, workflow.Confirmed)
	assert.Equal(t, []string{"validating", "processing", "confirmed"}, h.published())
	assert.Equal(t, order.Confirmed, h.orderStatus(t))
}

func TestEngine_PauseWhileWaiting(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.start(t)
	h.waitState(t, workflow.WaitingForValidation)

	require.NoError(t, h.engine.Pause(t.Context(), instanceID))
	require.NoError(t, h.engine.SignalValidation(t.Context(), instanceID, workflow.Decision{Approved: true}))

	report, _ := h.engine.GetStatus(t.Context(), instanceID)
	assert.Equal(t, workflow.Paused, report.State)
	assert.True(t, report.PendingDecision)
	assert.Empty(t, h.published())

	require.ErrorIs(t, h.engine.Pause(t.Context(), instanceID), errs.ErrInvalidTransition)
	require.NoError(t, h.engine.Resume(t.Context(), instanceID))
	h.waitState(t, workflow.Confirmed)
}

func TestEngine_TerminalImmutability(t *testing.T) {
	// Given
	h := newHarness(t, nil, nil)
	h.start(t)
	h.waitState(t, workflow.WaitingForValidation)
	require.NoError(t, h.engine.SignalValidation(t.Context(), instanceID, workflow.Decision{Approved: true}))
	before := h.waitState(t, workflow.Confirmed)

	// When
	signalErr := h.engine.SignalValidation(t.Context(), instanceID, workflow.Decision{Approved: true})
	pauseErr := h.engine.Pause(t.Context(), instanceID)
	resumeErr := h.engine.Resume(t.Context(), instanceID)
	cancelErr := h.engine.Terminate(t.Context(), instanceID, "")

	// Then
	require.ErrorIs(t, signalErr, errs.ErrTerminalState)
	require.ErrorIs(t, pauseErr, errs.ErrTerminalState)
	require.ErrorIs(t, resumeErr, errs.ErrTerminalState)
	require.ErrorIs(t, cancelErr, errs.ErrTerminalState)

	after, err := h.engine.GetStatus(t.Context(), instanceID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestEngine_CancelFromWait(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.start(t)
	h.waitState(t, workflow.WaitingForValidation)

	require.NoError(t, h.engine.Terminate(t.Context(), instanceID, "customer cancelled"))
	err := h.engine.RaiseEvent(t.Context(), instanceID, workflow.ValidationCompleteEvent, []byte(`{"approved":true}`))

	require.ErrorIs(t, err, errs.ErrInvalidTransition)
	report, _ := h.engine.GetStatus(t.Context(), instanceID)
	assert.Equal(t, workflow.Terminated, report.State)
	assert.Equal(t, order.Terminated, h.orderStatus(t))
	assert.Equal(t, []string{"terminated"}, h.published())
}

func TestEngine_TerminateMidProcessing(t *testing.T) {
	b := newBlocker(order.Processing)
	h := newHarness(t, b.work, nil)
	h.start(t)
	h.waitState(t, workflow.WaitingForValidation)
	require.NoError(t, h.engine.SignalValidation(t.Context(), instanceID, workflow.Decision{Approved: true}))
	b.waitEntered(t, order.Processing)

	require.NoError(t, h.engine.Terminate(t.Context(), instanceID, ""))

	report := h.waitState(t, workflow.Terminated)
	assert.Equal(t, 1, report.CurrentStageIndex)
	require.Eventually(t, func() bool {
		o, err := h.orders.Get(context.Background(), "123")
		return err == nil && o.Status() == order.Terminated
	}, waitFor, tick)
	assert.Equal(t, []string{"validating", "processing", "terminated"}, h.published())
}

// stallingStateStore holds the first write of an order document carrying
// status until released.
type stallingStateStore struct {
	ports.StateStore
	status  string
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newStallingStateStore(status order.Status) *stallingStateStore {
	return &stallingStateStore{
		StateStore: memory.NewStateStore(),
		status:     `"status":"` + status.String() + `"`,
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
}

func (s *stallingStateStore) Set(ctx context.Context, name, key string, value []byte) error {
	if name == storeName && strings.Contains(string(value), s.status) {
		stall := false
		s.once.Do(func() { stall = true })
		if stall {
			close(s.entered)
			<-s.release
		}
	}
	return s.StateStore.Set(ctx, name, key, value)
}

func TestEngine_TerminateDuringStageWrite(t *testing.T) {
	// Given a processing stage whose order write is still in flight
	state := newStallingStateStore(order.Processing)
	h := newHarnessOn(t, state, nil, nil)
	projection, err := orderstore.NewStore(state, "projection", nil)
	require.NoError(t, err)
	subscriber, err := orderstore.NewSubscriber(projection)
	require.NoError(t, err)
	h.bus.Subscribe(topic, func(ctx context.Context, msg memory.Message) error {
		return subscriber.Handle(ctx, msg.Payload)
	})
	h.start(t)
	h.waitState(t, workflow.WaitingForValidation)
	require.NoError(t, h.engine.SignalValidation(t.Context(), instanceID, workflow.Decision{Approved: true}))
	select {
	case <-state.entered:
	case <-time.After(waitFor):
		t.Fatal("processing write never started")
	}

	// When the instance is terminated and the stale write lands afterwards
	require.NoError(t, h.engine.Terminate(t.Context(), instanceID, "customer cancelled"))
	close(state.release)

	// Then the store, the last notification and the projection end on terminated
	h.waitState(t, workflow.Terminated)
	require.Eventually(t, func() bool {
		o, getErr := h.orders.Get(context.Background(), "123")
		return getErr == nil && o.Status() == order.Terminated
	}, waitFor, tick)
	require.Eventually(t, func() bool {
		published := h.published()
		return len(published) > 0 && published[len(published)-1] == "terminated"
	}, waitFor, tick)
	assert.NotContains(t, h.published(), "processing")
	require.Eventually(t, func() bool {
		o, getErr := projection.Get(context.Background(), "123")
		return getErr == nil && o.Status() == order.Terminated
	}, waitFor, tick)
}

func TestEngine_StageFailure(t *testing.T) {
	h := newHarness(t, func(_ context.Context, stage pipeline.Stage, _ order.Order) error {
		if stage.Name == order.Processing {
			return errors.New("oven on fire")
		}
		return nil
	}, nil)
	h.start(t)
	h.waitState(t, workflow.WaitingForValidation)

	require.NoError(t, h.engine.SignalValidation(t.Context(), instanceID, workflow.Decision{Approved: true}))

	report := h.waitState(t, workflow.Failed)
	assert.Contains(t, report.Error, "oven on fire")
	stored, err := h.orders.Get(t.Context(), "123")
	require.NoError(t, err)
	assert.Equal(t, order.Failed, stored.Status())
	reason, _ := stored.FailureReason()
	assert.Contains(t, reason, "oven on fire")
	assert.Equal(t, []string{"validating", "processing", "failed"}, h.published())
}

func TestEngine_ValidationActivityFailure(t *testing.T) {
	h := newHarness(t, nil, func(context.Context, order.Order) error {
		return errs.NewStoreUnavailableError(storeName, "validation_123", errors.New("timeout"))
	})

	h.start(t)

	report := h.waitState(t, workflow.Failed)
	assert.Contains(t, report.Error, "store is unavailable")
	assert.Equal(t, []string{"failed"}, h.published())
}

func TestEngine_NotFound(t *testing.T) {
	h := newHarness(t, nil, nil)
	ctx := t.Context()

	_, statusErr := h.engine.GetStatus(ctx, "pizza-order-nope")
	signalErr := h.engine.SignalValidation(ctx, "pizza-order-nope", workflow.Decision{Approved: true})
	pauseErr := h.engine.Pause(ctx, "pizza-order-nope")

	require.ErrorIs(t, statusErr, errs.ErrObjectNotFound)
	require.ErrorIs(t, signalErr, errs.ErrObjectNotFound)
	require.ErrorIs(t, pauseErr, errs.ErrObjectNotFound)
}

func TestEngine_Recover(t *testing.T) {
	// Given an instance persisted mid-processing by a previous process
	h := newHarness(t, nil, nil)
	now := time.Now().UTC()
	o, _ := order.NewOrder("123")
	instance, err := workflow.NewInstance(o.WithCustomer("Alice"), 3, now)
	require.NoError(t, err)
	require.NoError(t, instance.Begin(now))
	require.NoError(t, instance.ValidationRequested(now))
	_, err = instance.Deliver(workflow.Decision{Approved: true}, now)
	require.NoError(t, err)
	require.NoError(t, instance.CompleteStage(0, now))
	require.NoError(t, h.instances.Save(t.Context(), instance))

	// When
	recovered, err := h.engine.Recover(t.Context())

	// Then
	require.NoError(t, err)
	assert.Equal(t, 1, recovered)
	h.waitState(t, workflow.Confirmed)
	assert.Equal(t, []string{"processing", "confirmed"}, h.published())
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestEngine_ExpireStale(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)}
	h := newHarness(t, nil, nil,
		orchestrator.WithClock(clock.Now),
		orchestrator.WithValidationTimeout(time.Minute),
	)
	h.start(t)
	h.waitState(t, workflow.WaitingForValidation)

	expired, err := h.engine.ExpireStale(t.Context())
	require.NoError(t, err)
	assert.Zero(t, expired)

	clock.Advance(2 * time.Minute)
	expired, err = h.engine.ExpireStale(t.Context())

	require.NoError(t, err)
	assert.Equal(t, 1, expired)
	h.waitState(t, workflow.Expired)
	assert.Equal(t, order.Expired, h.orderStatus(t))
	err = h.engine.SignalValidation(t.Context(), instanceID, workflow.Decision{Approved: true})
	require.ErrorIs(t, err, errs.ErrTerminalState)
}

func TestEngine_ExpireStale_Unbounded(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.start(t)
	h.waitState(t, workflow.WaitingForValidation)

	expired, err := h.engine.ExpireStale(t.Context())

	require.NoError(t, err)
	assert.Zero(t, expired)
}

func TestEngine_Shutdown(t *testing.T) {
	b := newBlocker(order.Processing)
	h := newHarness(t, b.work, nil)
	h.start(t)
	h.waitState(t, workflow.WaitingForValidation)
	require.NoError(t, h.engine.SignalValidation(t.Context(), instanceID, workflow.Decision{Approved: true}))
	b.waitEntered(t, order.Processing)

	ctx, cancel := context.WithTimeout(t.Context(), waitFor)
	defer cancel()
	require.NoError(t, h.engine.Shutdown(ctx))

	report, err := h.engine.GetStatus(t.Context(), instanceID)
	require.NoError(t, err)
	assert.Equal(t, workflow.Processing, report.State)
	assert.Equal(t, 1, report.CurrentStageIndex)
}
