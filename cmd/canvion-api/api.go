// Package main provides the Canvion API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/canvion/canvion/pkg/autosave"
	"github.com/canvion/canvion/pkg/persistence"
	"github.com/canvion/canvion/pkg/tasks"
	"github.com/canvion/canvion/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	tasks       *tasks.Manager
	autosaves   *autosave.Service
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	taskManager *tasks.Manager,
	autosaves *autosave.Service,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		tasks:       taskManager,
		autosaves:   autosaves,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.persistence.WorkflowRepository(), a.tasks, a.autosaves, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Canvion API")
	})

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Put("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)

	tg := app.Group("/tasks")
	tg.Get("/", handlers.GetTasks)
	tg.Post("/", handlers.RegisterTask)
	tg.Get("/:id", handlers.GetTask)
	tg.Delete("/:id", handlers.RemoveCompletedTask)
	tg.Delete("/", handlers.ClearCompletedTasks)

	as := app.Group("/autosaves")
	as.Get("/", handlers.GetAutoSaves)
	as.Get("/:id", handlers.GetAutoSave)
	as.Delete("/:id", handlers.DeleteAutoSave)
	as.Delete("/", handlers.ClearAutoSaves)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
