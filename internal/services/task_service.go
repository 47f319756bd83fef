package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/pmo-timeline-api/internal/clock"
	"github.com/yukikurage/pmo-timeline-api/internal/constants"
	"github.com/yukikurage/pmo-timeline-api/internal/models"
	"github.com/yukikurage/pmo-timeline-api/internal/repository"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrAssigneeNotFound       = errors.New("assignee is not a known member")
	ErrTextRequired           = errors.New("text is required")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
	ErrAITooManyTasks         = fmt.Errorf("AI generated too many tasks (max %d)", constants.MaxAIGeneratedTasks)
)

// TaskGenerator suggests tasks for a thread from free text.
type TaskGenerator interface {
	GenerateTasks(ctx context.Context, req GenerateRequest) ([]GeneratedTask, error)
}

// TaskService handles task business logic
type TaskService struct {
	taskRepo   repository.TaskRepository
	threadRepo repository.ThreadRepository
	memberRepo repository.MemberRepository
	generator  TaskGenerator
	clock      clock.Clock
}

// NewTaskService creates a new TaskService. generator may be nil when no AI
// backend is configured.
func NewTaskService(
	taskRepo repository.TaskRepository,
	threadRepo repository.ThreadRepository,
	memberRepo repository.MemberRepository,
	generator TaskGenerator,
	clk clock.Clock,
) *TaskService {
	return &TaskService{
		taskRepo:   taskRepo,
		threadRepo: threadRepo,
		memberRepo: memberRepo,
		generator:  generator,
		clock:      clk,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	ThreadID      *uint64
	AssigneeID    *uint64
	Status        *models.TaskStatus
	SortByDueDate bool
	Page          int
	PageSize      int
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	ThreadID   uint64
	Title      string
	AssigneeID *uint64
	DueDate    *time.Time
	Status     *models.TaskStatus
	Priority   *models.TaskPriority
	Notes      string
}

// UpdateTaskInput represents input for updating a task
type UpdateTaskInput struct {
	Title         *string
	AssigneeID    *uint64
	ClearAssignee bool
	DueDate       *time.Time
	ClearDueDate  bool
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	Notes         *string
}

// Today returns the service clock's current instant.
func (s *TaskService) Today() time.Time {
	return s.clock.Now()
}

// ListTasks returns tasks matching the filters
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) ([]models.Task, int64, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}

	tasks, total, err := s.taskRepo.List(ctx, repository.TaskFilter{
		ThreadID:      input.ThreadID,
		AssigneeID:    input.AssigneeID,
		Status:        input.Status,
		SortByDueDate: input.SortByDueDate,
		Page:          input.Page,
		PageSize:      input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task by ID
func (s *TaskService) GetTask(ctx context.Context, id uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrTaskNotFound, "task")
	}
	return task, nil
}

// CreateTask creates a new task on an existing thread
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	if blank(input.Title) {
		return nil, ErrTitleRequired
	}

	if _, err := s.threadRepo.FindByID(ctx, input.ThreadID); err != nil {
		return nil, lookupError(err, ErrThreadNotFound, "thread")
	}
	if err := s.ensureAssignee(ctx, input.AssigneeID); err != nil {
		return nil, err
	}

	task := &models.Task{
		ThreadID:   input.ThreadID,
		Title:      input.Title,
		AssigneeID: input.AssigneeID,
		DueDate:    toDatePtr(input.DueDate),
		Status:     models.TaskStatusPending,
		Priority:   models.PriorityMedium,
		Notes:      input.Notes,
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.Status != nil {
		if err := s.setStatus(task, *input.Status); err != nil {
			return nil, err
		}
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// UpdateTask applies a partial update. Moving a task into completed stamps
// CompletedAt; moving it out clears it.
func (s *TaskService) UpdateTask(ctx context.Context, id uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if blank(*input.Title) {
			return nil, ErrTitleRequired
		}
		task.Title = *input.Title
	}
	if input.ClearAssignee {
		task.AssigneeID = nil
	} else if input.AssigneeID != nil {
		if err := s.ensureAssignee(ctx, input.AssigneeID); err != nil {
			return nil, err
		}
		task.AssigneeID = input.AssigneeID
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = toDatePtr(input.DueDate)
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.Notes != nil {
		task.Notes = *input.Notes
	}
	if input.Status != nil {
		if err := s.setStatus(task, *input.Status); err != nil {
			return nil, err
		}
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// DeleteTask deletes a task
func (s *TaskService) DeleteTask(ctx context.Context, id uint64) error {
	if _, err := s.GetTask(ctx, id); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// GenerateTasksInput represents input for AI task generation
type GenerateTasksInput struct {
	ThreadID uint64
	Text     string
	Save     bool
}

// GenerateTasks asks the AI backend for task suggestions on a thread. With
// Save set the suggestions are stored as pending tasks and returned as such.
func (s *TaskService) GenerateTasks(ctx context.Context, input GenerateTasksInput) ([]GeneratedTask, []models.Task, error) {
	if s.generator == nil {
		return nil, nil, ErrAIServiceNotConfigured
	}
	if blank(input.Text) {
		return nil, nil, ErrTextRequired
	}

	thread, err := s.threadRepo.FindByID(ctx, input.ThreadID)
	if err != nil {
		return nil, nil, lookupError(err, ErrThreadNotFound, "thread")
	}

	now := s.clock.Now()
	generated, err := s.generator.GenerateTasks(ctx, GenerateRequest{
		Text:   input.Text,
		Thread: *thread,
		Now:    now,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(generated) == 0 {
		return nil, nil, ErrAINoTasksGenerated
	}
	if len(generated) > constants.MaxAIGeneratedTasks {
		return nil, nil, ErrAITooManyTasks
	}

	valid := make([]GeneratedTask, 0, len(generated))
	cutoff := time.Time(toDate(now))
	for _, g := range generated {
		if blank(g.Title) {
			continue
		}
		if !models.ParseTaskPriority(g.Priority).Valid() {
			g.Priority = string(models.PriorityMedium)
		}
		if g.DueDate != nil && g.DueDate.Before(cutoff) {
			g.DueDate = nil
		}
		valid = append(valid, g)
	}

	if len(valid) == 0 {
		return nil, nil, ErrAINoValidTasks
	}
	if !input.Save {
		return valid, nil, nil
	}

	tasks := make([]models.Task, 0, len(valid))
	for _, g := range valid {
		tasks = append(tasks, models.Task{
			ThreadID: thread.ID,
			Title:    g.Title,
			DueDate:  toDatePtr(g.DueDate),
			Status:   models.TaskStatusPending,
			Priority: models.ParseTaskPriority(g.Priority),
			Notes:    g.Notes,
		})
	}
	if err := s.taskRepo.CreateBatch(ctx, tasks); err != nil {
		return nil, nil, fmt.Errorf("failed to save generated tasks: %w", err)
	}

	return valid, tasks, nil
}

func (s *TaskService) setStatus(task *models.Task, status models.TaskStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}

	switch {
	case status == models.TaskStatusCompleted && task.Status != models.TaskStatusCompleted:
		now := s.clock.Now()
		task.CompletedAt = &now
	case status != models.TaskStatusCompleted:
		task.CompletedAt = nil
	}

	task.Status = status
	return nil
}

func (s *TaskService) ensureAssignee(ctx context.Context, assigneeID *uint64) error {
	if assigneeID == nil {
		return nil
	}
	if _, err := s.memberRepo.FindByID(ctx, *assigneeID); err != nil {
		return lookupError(err, ErrAssigneeNotFound, "assignee")
	}
	return nil
}
