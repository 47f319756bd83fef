package dto

import (
	"time"

	"github.com/yukikurage/pmo-timeline-api/internal/models"
	"github.com/yukikurage/pmo-timeline-api/internal/timeline"
	"github.com/yukikurage/pmo-timeline-api/internal/utils"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64              `json:"id"`
	ThreadID    uint64              `json:"thread_id"`
	Title       string              `json:"title"`
	AssigneeID  *uint64             `json:"assignee_id"`
	DueDate     *Date               `json:"due_date"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	Notes       string              `json:"notes"`
	CompletedAt *time.Time          `json:"completed_at"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	// Urgency is omitted for tasks without a due date.
	Urgency *timeline.Urgency `json:"urgency,omitempty"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToTaskDTO converts a Task model to TaskDTO, computing its D-day from today
func ToTaskDTO(task models.Task, today time.Time) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		ThreadID:    task.ThreadID,
		Title:       task.Title,
		AssigneeID:  task.AssigneeID,
		Status:      task.Status,
		Priority:    task.Priority,
		Notes:       task.Notes,
		CompletedAt: task.CompletedAt,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	if task.DueDate != nil {
		due := time.Time(*task.DueDate)
		dto.DueDate = &Date{Time: due}
		urgency := timeline.UrgencyOf(due, today)
		dto.Urgency = &urgency
	}

	return dto
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, today time.Time, params utils.PaginationParams, total int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task, today)
	}

	return TaskListResponse{
		Tasks: items,
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	}
}
