package main

import (
	"context"
	"fmt"
	"os"

	"github.com/canvion/canvion/pkg/autosave"
	"github.com/canvion/canvion/pkg/cmd"
	"github.com/canvion/canvion/pkg/log"
	"github.com/canvion/canvion/pkg/otelhelper"
	"github.com/canvion/canvion/pkg/status"
	"github.com/canvion/canvion/pkg/tasks"
	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9290

func main() {
	_ = godotenv.Load()

	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "canvion-api",
		Usage:                 "Serve the canvas workflow and background task API",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Workflow persistence location (file path or file:// URL)",
				Value:   "./data",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "storage-url",
				Usage:   "Key-value storage for tasks and autosaves (memory://, file path or redis://)",
				Value:   "memory://",
				Sources: cli.EnvVars("STORAGE_URL"),
			},
			&cli.StringFlag{
				Name:     "backend-url",
				Usage:    "Generation backend base URL for task status polling",
				Required: true,
				Sources:  cli.EnvVars("BACKEND_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus transport (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export traces via OTLP (endpoint from OTEL_EXPORTER_OTLP_* env)",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing Canvion API")

			persistence := cmd.NewPersistence(command.String("database-url"))

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			store, err := cmd.NewStorage(ctx, command.String("storage-url"))
			if err != nil {
				return err
			}

			eventBus := cmd.NewEventBus(command.String("event-bus"), logger)

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			client := status.NewHTTPClient(command.String("backend-url"))

			managerOpts := []tasks.Option{tasks.WithEventBus(eventBus)}

			if command.Bool("tracing") {
				tracerProvider, err := otelhelper.InitTracer(ctx, "canvion-api")
				if err != nil {
					return fmt.Errorf("failed to initialize tracer: %w", err)
				}

				defer func() {
					if err := tracerProvider.Shutdown(ctx); err != nil {
						logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
					}
				}()

				managerOpts = append(managerOpts, tasks.WithTracer(tracerProvider.Tracer("canvion-api")))
			}

			taskManager := tasks.NewManager(store, client, logger, managerOpts...)
			if err := taskManager.Init(); err != nil {
				return err
			}

			defer taskManager.Shutdown()

			// The API has no live canvas to sample; the autosave service
			// only serves and manages the persisted history here.
			autosaves := autosave.NewService(store, func() *autosave.Snapshot { return nil }, logger)

			api := NewAPI(logger, persistence, taskManager, autosaves)

			if err := api.Start(command.Int("port")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)

				return err
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		logger.Error("canvion-api exited", "error", err)
		os.Exit(1)
	}
}
