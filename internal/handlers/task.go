package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/pmo-timeline-api/internal/dto"
	apierrors "github.com/yukikurage/pmo-timeline-api/internal/errors"
	"github.com/yukikurage/pmo-timeline-api/internal/models"
	"github.com/yukikurage/pmo-timeline-api/internal/services"
	"github.com/yukikurage/pmo-timeline-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns tasks filtered by thread_id, assignee_id and status.
// Pass sort=due_date to order by due date with undated tasks last.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	threadID, ok := parseOptionalUint(c, "thread_id")
	if !ok {
		return
	}
	assigneeID, ok := parseOptionalUint(c, "assignee_id")
	if !ok {
		return
	}

	var status *models.TaskStatus
	if raw := c.Query("status"); raw != "" {
		s := models.TaskStatus(raw)
		status = &s
	}

	params := utils.GetPaginationParams(c)

	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), services.ListTasksInput{
		ThreadID:      threadID,
		AssigneeID:    assigneeID,
		Status:        status,
		SortByDueDate: c.Query("sort") == "due_date",
		Page:          params.Page,
		PageSize:      params.Limit,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, h.taskService.Today(), params, total))
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task, h.taskService.Today()))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		ThreadID:   req.ThreadID,
		Title:      req.Title,
		AssigneeID: req.AssigneeID,
		DueDate:    req.DueDate.Ptr(),
		Status:     req.Status,
		Priority:   req.Priority,
		Notes:      req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task, h.taskService.Today()))
}

// UpdateTask updates an existing task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), id, services.UpdateTaskInput{
		Title:         req.Title,
		AssigneeID:    req.AssigneeID,
		ClearAssignee: req.ClearAssignee,
		DueDate:       req.DueDate.Ptr(),
		ClearDueDate:  req.ClearDueDate,
		Status:        req.Status,
		Priority:      req.Priority,
		Notes:         req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task, h.taskService.Today()))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// GenerateTasks suggests tasks for the thread from free text using AI
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	thread, ok := currentThread(c)
	if !ok {
		return
	}

	var req dto.GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	suggested, saved, err := h.taskService.GenerateTasks(c.Request.Context(), services.GenerateTasksInput{
		ThreadID: thread.ID,
		Text:     req.Text,
		Save:     req.Save,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if !req.Save {
		c.JSON(http.StatusOK, gin.H{"tasks": suggested})
		return
	}

	today := h.taskService.Today()
	items := make([]dto.TaskDTO, len(saved))
	for i, task := range saved {
		items[i] = dto.ToTaskDTO(task, today)
	}
	c.JSON(http.StatusCreated, gin.H{"tasks": items})
}
