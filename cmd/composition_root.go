package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	httpin "pizzaworkflow/internal/adapters/in/http"
	kafkaadapter "pizzaworkflow/internal/adapters/out/kafka"
	"pizzaworkflow/internal/adapters/out/memory"
	"pizzaworkflow/internal/adapters/out/metrics"
	pgadapter "pizzaworkflow/internal/adapters/out/postgres"
	"pizzaworkflow/internal/adapters/out/postgres/instancerepo"
	"pizzaworkflow/internal/adapters/out/postgres/staterepo"
	redisadapter "pizzaworkflow/internal/adapters/out/redis"
	"pizzaworkflow/internal/core/application/notification"
	"pizzaworkflow/internal/core/application/orchestrator"
	"pizzaworkflow/internal/core/application/orderstore"
	"pizzaworkflow/internal/core/application/pipeline"
	"pizzaworkflow/internal/core/application/usecases/commands"
	"pizzaworkflow/internal/core/application/usecases/queries"
	"pizzaworkflow/internal/core/ports"
	"pizzaworkflow/internal/jobs"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
)

// Consumer is a long-running message consumer started by main.
type Consumer interface {
	Run(ctx context.Context) error
}

type CompositionRoot struct {
	cfg    Config
	logger *slog.Logger

	registry *prometheus.Registry
	metrics  ports.Metrics

	state     ports.StateStore
	instances ports.InstanceRepository
	bus       ports.NotificationBus

	orders *orderstore.Store
	engine *orchestrator.Engine

	consumers []Consumer
	closers   []func() error
}

func NewCompositionRoot(cfg Config, logger *slog.Logger) (*CompositionRoot, error) {
	c := &CompositionRoot{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}

	c.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.NewPrometheus(c.registry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	c.metrics = m

	if err := c.buildStorage(); err != nil {
		return nil, errors.Join(err, c.Close())
	}
	if err := c.buildBus(); err != nil {
		return nil, errors.Join(err, c.Close())
	}
	if err := c.buildWorkflow(); err != nil {
		return nil, errors.Join(err, c.Close())
	}
	if err := c.buildProjection(); err != nil {
		return nil, errors.Join(err, c.Close())
	}
	return c, nil
}

func (c *CompositionRoot) buildStorage() error {
	switch c.cfg.StateBackend {
	case BackendRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     c.cfg.RedisAddr,
			Password: c.cfg.RedisPassword,
			DB:       c.cfg.RedisDB,
		})
		c.closers = append(c.closers, client.Close)
		state := redisadapter.NewStateStore(client)
		if err := state.Ping(context.Background()); err != nil {
			return fmt.Errorf("connect to redis %s: %w", c.cfg.RedisAddr, err)
		}
		c.state = state
		c.instances = redisadapter.NewInstanceRepository(client)

	case BackendPostgres:
		db, err := pgadapter.Open(pgadapter.Config{
			Host:     c.cfg.DBHost,
			Port:     c.cfg.DBPort,
			User:     c.cfg.DBUser,
			Password: c.cfg.DBPassword,
			Name:     c.cfg.DBName,
			SSLMode:  c.cfg.DBSslMode,
		})
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			c.closers = append(c.closers, sqlDB.Close)
		}
		if err := pgadapter.Migrate(db); err != nil {
			return fmt.Errorf("migrate postgres: %w", err)
		}
		c.state = staterepo.NewGormStateStore(db)
		c.instances = instancerepo.NewGormInstanceRepository(db)

	default:
		c.state = memory.NewStateStore()
		c.instances = memory.NewInstanceRepository()
	}

	c.logger.Info("State backend ready", "backend", c.cfg.StateBackend)
	return nil
}

func (c *CompositionRoot) buildBus() error {
	switch c.cfg.BusBackend {
	case BackendKafka:
		writer := kafkaadapter.NewWriter(c.cfg.KafkaBrokers)
		c.closers = append(c.closers, writer.Close)
		c.bus = kafkaadapter.NewBus(writer, c.logger)
	default:
		c.bus = memory.NewBus()
	}

	c.logger.Info("Notification bus ready", "backend", c.cfg.BusBackend, "topic", c.cfg.NotificationTopic)
	return nil
}

func (c *CompositionRoot) buildWorkflow() error {
	orders, err := orderstore.NewStore(c.state, c.cfg.StateStoreName, c.logger)
	if err != nil {
		return err
	}
	c.orders = orders

	notifier, err := notification.NewNotifier(c.bus, c.cfg.NotificationTopic, c.metrics, c.logger)
	if err != nil {
		return err
	}

	stages, err := pipeline.New(orders, notifier, pipeline.DefaultStages(c.cfg.StageDurationScale),
		pipeline.WithMetrics(c.metrics),
		pipeline.WithLogger(c.logger),
	)
	if err != nil {
		return err
	}

	engine, err := orchestrator.New(orchestrator.Dependencies{
		Instances:  c.instances,
		Orders:     orders,
		Publisher:  notifier,
		Pipeline:   stages,
		Validation: orchestrator.RecordPendingValidation(c.state, c.cfg.StateStoreName),
	},
		orchestrator.WithValidationTimeout(c.cfg.ValidationTimeout),
		orchestrator.WithMetrics(c.metrics),
		orchestrator.WithLogger(c.logger),
	)
	if err != nil {
		return err
	}
	c.engine = engine
	return nil
}

// buildProjection makes a second order store follow the notification topic.
func (c *CompositionRoot) buildProjection() error {
	if c.cfg.ProjectionStoreName == "" {
		return nil
	}
	projection, err := orderstore.NewStore(c.state, c.cfg.ProjectionStoreName, c.logger)
	if err != nil {
		return err
	}
	subscriber, err := orderstore.NewSubscriber(projection)
	if err != nil {
		return err
	}

	switch bus := c.bus.(type) {
	case *memory.Bus:
		// a projection failure must not fail the publishing stage
		bus.Subscribe(c.cfg.NotificationTopic, func(ctx context.Context, msg memory.Message) error {
			if err := subscriber.Handle(ctx, msg.Payload); err != nil {
				c.logger.ErrorContext(ctx, "Projection update failed", "order_id", msg.Key, "error", err)
			}
			return nil
		})
	default:
		reader := kafkaadapter.NewReader(c.cfg.KafkaBrokers, c.cfg.NotificationTopic, c.cfg.KafkaConsumerGroup)
		c.consumers = append(c.consumers, kafkaadapter.NewConsumer(reader, subscriber.Handle, c.logger))
	}

	c.logger.Info("Order projection enabled", "store", c.cfg.ProjectionStoreName)
	return nil
}

func (c *CompositionRoot) Engine() *orchestrator.Engine {
	return c.engine
}

func (c *CompositionRoot) Consumers() []Consumer {
	return c.consumers
}

func (c *CompositionRoot) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *CompositionRoot) CreateStartOrderCommandHandler() commands.StartOrderCommandHandler {
	return commands.NewStartOrderCommandHandler(c.engine)
}

func (c *CompositionRoot) CreateSubmitValidationCommandHandler() commands.SubmitValidationCommandHandler {
	return commands.NewSubmitValidationCommandHandler(c.engine)
}

func (c *CompositionRoot) CreatePauseOrderCommandHandler() commands.PauseOrderCommandHandler {
	return commands.NewPauseOrderCommandHandler(c.engine)
}

func (c *CompositionRoot) CreateResumeOrderCommandHandler() commands.ResumeOrderCommandHandler {
	return commands.NewResumeOrderCommandHandler(c.engine)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(c.engine)
}

func (c *CompositionRoot) CreateDeleteOrderCommandHandler() commands.DeleteOrderCommandHandler {
	return commands.NewDeleteOrderCommandHandler(c.orders)
}

func (c *CompositionRoot) CreateRecoverInstancesCommandHandler() commands.RecoverInstancesCommandHandler {
	return commands.NewRecoverInstancesCommandHandler(c.engine)
}

func (c *CompositionRoot) CreateExpireValidationsCommandHandler() commands.ExpireValidationsCommandHandler {
	return commands.NewExpireValidationsCommandHandler(c.engine)
}

func (c *CompositionRoot) CreateGetWorkflowStatusQueryHandler() queries.GetWorkflowStatusQueryHandler {
	return queries.NewGetWorkflowStatusQueryHandler(c.engine)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.orders)
}

func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(
		c.CreateStartOrderCommandHandler(),
		c.CreateSubmitValidationCommandHandler(),
		c.CreatePauseOrderCommandHandler(),
		c.CreateResumeOrderCommandHandler(),
		c.CreateCancelOrderCommandHandler(),
		c.CreateDeleteOrderCommandHandler(),
		c.CreateGetWorkflowStatusQueryHandler(),
		c.CreateGetOrderQueryHandler(),
	)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateRecoverInstancesCommandHandler(),
		c.CreateExpireValidationsCommandHandler(),
		jobs.Config{
			RecoverySchedule: c.cfg.RecoverySchedule,
			ExpirySchedule:   c.cfg.ExpirySchedule,
			ExpiryEnabled:    c.cfg.ValidationTimeout > 0,
		},
		c.logger,
	)
}

// Close releases backend connections in reverse order of creation.
func (c *CompositionRoot) Close() error {
	var err error
	for i := len(c.closers) - 1; i >= 0; i-- {
		err = errors.Join(err, c.closers[i]())
	}
	c.closers = nil
	return err
}
