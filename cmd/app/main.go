package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pizzaworkflow/cmd"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configs := getConfigs()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	app, err := cmd.NewCompositionRoot(configs, logger)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, app, configs, logger); err != nil {
		log.Fatalf("Application stopped with error: %v", err)
	}
}

func getConfigs() cmd.Config {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	config, err := cmd.LoadConfig(os.Getenv)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return config
}

func run(ctx context.Context, app *cmd.CompositionRoot, configs cmd.Config, logger *slog.Logger) error {
	recovered, err := app.Engine().Recover(ctx)
	if err != nil {
		return fmt.Errorf("recover workflow instances: %w", err)
	}
	logger.InfoContext(ctx, "Startup recovery finished", "recovered", recovered)

	jobManager := app.CreateJobManager()
	if err := jobManager.StartAll(); err != nil {
		return err
	}

	e := newWebServer(app)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort))
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	for _, consumer := range app.Consumers() {
		g.Go(func() error { return consumer.Run(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		jobManager.StopAll()
		return errors.Join(
			e.Shutdown(shutdownCtx),
			app.Engine().Shutdown(shutdownCtx),
			app.Close(),
		)
	})

	return g.Wait()
}

func newWebServer(app *cmd.CompositionRoot) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(app.MetricsHandler()))
	app.CreateHTTPServer().Register(e)
	return e
}
