package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/pmo-timeline-api/internal/clock"
	"github.com/yukikurage/pmo-timeline-api/internal/models"
	"github.com/yukikurage/pmo-timeline-api/internal/repository"
)

var ErrTemplateNotFound = errors.New("template not found")

// ThreadService handles thread business logic. Status transitions are not
// restricted; only the closed set of statuses is enforced.
type ThreadService struct {
	threadRepo   repository.ThreadRepository
	projectRepo  repository.ProjectRepository
	templateRepo repository.TemplateRepository
	clock        clock.Clock
	invalidator  Invalidator
}

// NewThreadService creates a new ThreadService
func NewThreadService(
	threadRepo repository.ThreadRepository,
	projectRepo repository.ProjectRepository,
	templateRepo repository.TemplateRepository,
	clk clock.Clock,
	invalidator Invalidator,
) *ThreadService {
	if invalidator == nil {
		invalidator = nopInvalidator{}
	}
	return &ThreadService{
		threadRepo:   threadRepo,
		projectRepo:  projectRepo,
		templateRepo: templateRepo,
		clock:        clk,
		invalidator:  invalidator,
	}
}

// ListThreadsInput represents filters for listing threads
type ListThreadsInput struct {
	ProjectID *uint64
	Status    *models.ThreadStatus
	Page      int
	PageSize  int
}

// CreateThreadInput represents input for creating a thread
type CreateThreadInput struct {
	ProjectID   uint64
	Title       string
	ThreadType  string
	StartDate   *time.Time
	DueDate     *time.Time
	Status      *models.ThreadStatus
	OutcomeGoal string
}

// UpdateThreadInput represents a partial thread update
type UpdateThreadInput struct {
	ProjectID   *uint64
	Title       *string
	ThreadType  *string
	StartDate   *time.Time
	DueDate     *time.Time
	Status      *models.ThreadStatus
	OutcomeGoal *string
}

// CreateFromTemplateInput represents input for instantiating a template
type CreateFromTemplateInput struct {
	TemplateID  uint64
	ProjectID   uint64
	Title       string
	StartDate   *time.Time
	DueDate     *time.Time
	OutcomeGoal string
}

// Today returns the service clock's current instant.
func (s *ThreadService) Today() time.Time {
	return s.clock.Now()
}

// ListThreads returns threads, soonest due first
func (s *ThreadService) ListThreads(ctx context.Context, input ListThreadsInput) ([]models.Thread, int64, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}

	threads, total, err := s.threadRepo.List(ctx, repository.ThreadFilter{
		ProjectID: input.ProjectID,
		Status:    input.Status,
		Page:      input.Page,
		PageSize:  input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list threads: %w", err)
	}
	return threads, total, nil
}

// GetThread returns a thread by ID
func (s *ThreadService) GetThread(ctx context.Context, id uint64) (*models.Thread, error) {
	thread, err := s.threadRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrThreadNotFound, "thread")
	}
	return thread, nil
}

// CreateThread validates and creates a thread. The start date defaults to today.
func (s *ThreadService) CreateThread(ctx context.Context, input CreateThreadInput) (*models.Thread, error) {
	thread, err := s.newThread(ctx, input.ProjectID, input.Title, input.StartDate, input.DueDate, input.OutcomeGoal)
	if err != nil {
		return nil, err
	}

	thread.ThreadType = models.ParseThreadType(input.ThreadType)
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		thread.Status = *input.Status
	}

	if err := s.threadRepo.Create(ctx, thread); err != nil {
		return nil, fmt.Errorf("failed to create thread: %w", err)
	}

	s.invalidator.Invalidate()
	return thread, nil
}

// CreateFromTemplate creates a thread of the template's type together with
// one task per template task, each due DayOffset days from the thread due date.
func (s *ThreadService) CreateFromTemplate(ctx context.Context, input CreateFromTemplateInput) (*models.Thread, error) {
	template, err := s.templateRepo.FindByID(ctx, input.TemplateID)
	if err != nil {
		return nil, lookupError(err, ErrTemplateNotFound, "template")
	}

	title := input.Title
	if blank(title) {
		title = template.Name
	}

	thread, err := s.newThread(ctx, input.ProjectID, title, input.StartDate, input.DueDate, input.OutcomeGoal)
	if err != nil {
		return nil, err
	}
	thread.ThreadType = template.ThreadType

	due := thread.Due()
	tasks := make([]models.Task, 0, len(template.Tasks))
	for _, tt := range template.Tasks {
		taskDue := toDate(due.AddDate(0, 0, tt.DayOffset))
		priority := tt.Priority
		if !priority.Valid() {
			priority = models.PriorityMedium
		}
		tasks = append(tasks, models.Task{
			Title:    tt.Title,
			DueDate:  &taskDue,
			Status:   models.TaskStatusPending,
			Priority: priority,
			Notes:    tt.Notes,
		})
	}

	if err := s.threadRepo.CreateWithTasks(ctx, thread, tasks); err != nil {
		return nil, fmt.Errorf("failed to create thread from template: %w", err)
	}

	s.invalidator.Invalidate()
	return thread, nil
}

// UpdateThread applies a partial update
func (s *ThreadService) UpdateThread(ctx context.Context, id uint64, input UpdateThreadInput) (*models.Thread, error) {
	thread, err := s.GetThread(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.ProjectID != nil && *input.ProjectID != thread.ProjectID {
		if err := s.ensureProject(ctx, *input.ProjectID); err != nil {
			return nil, err
		}
		thread.ProjectID = *input.ProjectID
	}
	if input.Title != nil {
		if blank(*input.Title) {
			return nil, ErrTitleRequired
		}
		thread.Title = *input.Title
	}
	if input.ThreadType != nil {
		thread.ThreadType = models.ParseThreadType(*input.ThreadType)
	}
	if input.StartDate != nil {
		thread.StartDate = toDate(*input.StartDate)
	}
	if input.DueDate != nil {
		thread.DueDate = toDate(*input.DueDate)
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		thread.Status = *input.Status
	}
	if input.OutcomeGoal != nil {
		thread.OutcomeGoal = *input.OutcomeGoal
	}

	if err := s.threadRepo.Update(ctx, thread); err != nil {
		return nil, fmt.Errorf("failed to update thread: %w", err)
	}

	s.invalidator.Invalidate()
	return thread, nil
}

// DeleteThread deletes a thread with its tasks, ledger and stakeholder mappings
func (s *ThreadService) DeleteThread(ctx context.Context, id uint64) error {
	if _, err := s.GetThread(ctx, id); err != nil {
		return err
	}

	if err := s.threadRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete thread: %w", err)
	}

	s.invalidator.Invalidate()
	return nil
}

func (s *ThreadService) newThread(ctx context.Context, projectID uint64, title string, start, due *time.Time, goal string) (*models.Thread, error) {
	if blank(title) {
		return nil, ErrTitleRequired
	}
	if due == nil {
		return nil, ErrDueDateRequired
	}
	if err := s.ensureProject(ctx, projectID); err != nil {
		return nil, err
	}

	startDate := s.clock.Now()
	if start != nil {
		startDate = *start
	}

	return &models.Thread{
		ProjectID:   projectID,
		Title:       title,
		ThreadType:  models.ThreadTypeExecution,
		StartDate:   toDate(startDate),
		DueDate:     toDate(*due),
		Status:      models.ThreadStatusActive,
		OutcomeGoal: goal,
	}, nil
}

func (s *ThreadService) ensureProject(ctx context.Context, projectID uint64) error {
	if _, err := s.projectRepo.FindByID(ctx, projectID); err != nil {
		return lookupError(err, ErrProjectNotFound, "project")
	}
	return nil
}
