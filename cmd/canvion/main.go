// Package main provides the canvion command line tool.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/canvion/canvion/pkg/autosave"
	"github.com/canvion/canvion/pkg/cmd"
	"github.com/canvion/canvion/pkg/graph"
	"github.com/canvion/canvion/pkg/log"
	"github.com/canvion/canvion/pkg/models"
	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v3"
)

func main() {
	_ = godotenv.Load()

	logger := log.WithModule("cli")

	command := &cli.Command{
		Name:                  "canvion",
		Usage:                 "Inspect and validate canvas workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "Validate a workflow document",
				ArgsUsage: "<workflow.json>",
				Action: func(ctx context.Context, command *cli.Command) error {
					log.Setup(command.String("log-level"))

					path := command.Args().First()
					if path == "" {
						return fmt.Errorf("usage: canvion validate <workflow.json>")
					}

					data, err := os.ReadFile(path)
					if err != nil {
						return fmt.Errorf("read workflow: %w", err)
					}

					var workflow models.Workflow
					if err := json.Unmarshal(data, &workflow); err != nil {
						return fmt.Errorf("parse workflow: %w", err)
					}

					if err := graph.ValidateWorkflow(&workflow); err != nil {
						return fmt.Errorf("workflow is invalid: %w", err)
					}

					fmt.Printf("%s: valid (%d nodes, %d edges)\n", path, len(workflow.Nodes), len(workflow.Edges))

					return nil
				},
			},
			{
				Name:  "workflows",
				Usage: "Manage saved workflows",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "database-url",
						Usage:   "Workflow persistence location",
						Value:   "./data",
						Sources: cli.EnvVars("DATABASE_URL"),
					},
				},
				Commands: []*cli.Command{
					{
						Name:    "list",
						Aliases: []string{"ls"},
						Usage:   "List saved workflows",
						Action: func(ctx context.Context, command *cli.Command) error {
							log.Setup(command.String("log-level"))

							persistence := cmd.NewPersistence(command.String("database-url"))

							defer func() {
								_ = persistence.Close(ctx)
							}()

							workflows, err := persistence.WorkflowRepository().GetAll(ctx)
							if err != nil {
								return err
							}

							if len(workflows) == 0 {
								fmt.Println("no saved workflows")

								return nil
							}

							for _, wf := range workflows {
								fmt.Printf("%s\t%s\t%d nodes\n", wf.ID, wf.Name, len(wf.Nodes))
							}

							return nil
						},
					},
				},
			},
			{
				Name:  "history",
				Usage: "Inspect the auto-save history",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "storage-url",
						Usage:   "Storage location (memory://, redis://, or a directory)",
						Value:   "./data",
						Sources: cli.EnvVars("STORAGE_URL"),
					},
				},
				Commands: []*cli.Command{
					{
						Name:    "list",
						Aliases: []string{"ls"},
						Usage:   "List auto-save entries, newest first",
						Action: func(ctx context.Context, command *cli.Command) error {
							log.Setup(command.String("log-level"))

							store, err := cmd.NewStorage(ctx, command.String("storage-url"))
							if err != nil {
								return fmt.Errorf("open storage: %w", err)
							}

							service := autosave.NewService(store, nil, logger)

							entries := service.Entries()
							if len(entries) == 0 {
								fmt.Println("no auto-saves")

								return nil
							}

							for _, e := range entries {
								fmt.Printf("%s\t%s\t%s\t%d nodes\n",
									e.ID, e.SavedAt.Format(time.RFC3339), e.Name, len(e.Workflow.Nodes))
							}

							return nil
						},
					},
					{
						Name:  "clear",
						Usage: "Delete all auto-save entries",
						Action: func(ctx context.Context, command *cli.Command) error {
							log.Setup(command.String("log-level"))

							store, err := cmd.NewStorage(ctx, command.String("storage-url"))
							if err != nil {
								return fmt.Errorf("open storage: %w", err)
							}

							service := autosave.NewService(store, nil, logger)

							if err := service.Clear(); err != nil {
								return fmt.Errorf("clear auto-saves: %w", err)
							}

							fmt.Println("auto-save history cleared")

							return nil
						},
					},
				},
			},
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		logger.Error("canvion exited", "error", err)
		os.Exit(1)
	}
}
