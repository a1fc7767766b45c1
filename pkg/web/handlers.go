// Package web provides HTTP handlers and REST API endpoints for workflow and
// background task management.
package web

import (
	"github.com/canvion/canvion/pkg/autosave"
	"github.com/canvion/canvion/pkg/graph"
	"github.com/canvion/canvion/pkg/models"
	"github.com/canvion/canvion/pkg/persistence"
	"github.com/canvion/canvion/pkg/tasks"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type APIHandlers struct {
	workflows persistence.WorkflowRepository
	tasks     *tasks.Manager
	autosaves *autosave.Service
	validator *validator.Validate
}

func NewAPIHandlers(
	workflows persistence.WorkflowRepository,
	taskManager *tasks.Manager,
	autosaves *autosave.Service,
	validate *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		workflows: workflows,
		tasks:     taskManager,
		autosaves: autosaves,
		validator: validate,
	}
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.workflows.GetAll(c.Context())
	if err != nil {
		return handleRepositoryError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows":   workflows,
		"total_count": len(workflows),
	})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	workflow, err := h.workflows.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleRepositoryError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req SaveWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	workflow := req.toWorkflow()
	if workflow.ID == "" {
		workflow.ID = uuid.NewString()
	}

	if err := graph.ValidateWorkflow(workflow); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.workflows.Save(c.Context(), workflow); err != nil {
		return handleRepositoryError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(workflow)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")

	if _, err := h.workflows.GetByID(c.Context(), id); err != nil {
		return handleRepositoryError(c, err)
	}

	var req SaveWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	workflow := req.toWorkflow()
	workflow.ID = id

	if err := graph.ValidateWorkflow(workflow); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.workflows.Save(c.Context(), workflow); err != nil {
		return handleRepositoryError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	if err := h.workflows.Delete(c.Context(), c.Params("id")); err != nil {
		return handleRepositoryError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) RegisterTask(c fiber.Ctx) error {
	var req RegisterTaskRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	task := h.tasks.RegisterTask(req.TaskID, req.Type, req.NodeID, req.TabID, req.Metadata)

	return c.Status(fiber.StatusCreated).JSON(task)
}

func (h *APIHandlers) GetTasks(c fiber.Ctx) error {
	var list []*models.Task

	switch {
	case c.Query("nodeId") != "":
		list = h.tasks.TasksByNode(c.Query("nodeId"))
	case c.Query("tabId") != "":
		list = h.tasks.TasksByTab(c.Query("tabId"))
	default:
		list = h.tasks.Tasks()
	}

	if list == nil {
		list = []*models.Task{}
	}

	return c.JSON(fiber.Map{"tasks": list, "stats": h.tasks.Stats()})
}

func (h *APIHandlers) GetTask(c fiber.Ctx) error {
	task, ok := h.tasks.Task(c.Params("id"))
	if !ok {
		return notFound(c, "task not found")
	}

	return c.JSON(task)
}

func (h *APIHandlers) RemoveCompletedTask(c fiber.Ctx) error {
	if !h.tasks.RemoveCompletedTask(c.Params("id")) {
		return notFound(c, "no completed task with that id")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ClearCompletedTasks(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"removed": h.tasks.ClearCompletedTasks()})
}

func (h *APIHandlers) GetAutoSaves(c fiber.Ctx) error {
	entries := h.autosaves.Entries()

	return c.JSON(fiber.Map{"autosaves": entries, "stats": h.autosaves.Stats()})
}

func (h *APIHandlers) GetAutoSave(c fiber.Ctx) error {
	entry, err := h.autosaves.Entry(c.Params("id"))
	if err != nil {
		return notFound(c, "autosave not found")
	}

	return c.JSON(entry)
}

func (h *APIHandlers) DeleteAutoSave(c fiber.Ctx) error {
	if err := h.autosaves.Delete(c.Params("id")); err != nil {
		return internalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ClearAutoSaves(c fiber.Ctx) error {
	if err := h.autosaves.Clear(); err != nil {
		return internalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
