package repository

import (
	"context"
	"time"

	"github.com/yukikurage/pmo-timeline-api/internal/models"
	"gorm.io/gorm"
)

// paginate limits a list query to one page. A zero page or size means
// everything.
func paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page <= 0 || pageSize <= 0 {
			return db
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(ctx context.Context, project *models.Project) error

	// FindByID finds a project by ID
	FindByID(ctx context.Context, id uint64) (*models.Project, error)

	// List retrieves projects with filtering and pagination
	List(ctx context.Context, filter ProjectFilter) ([]models.Project, int64, error)

	// Update updates a project
	Update(ctx context.Context, project *models.Project) error

	// Delete deletes a project together with its threads and their children
	Delete(ctx context.Context, id uint64) error
}

// ProjectFilter holds filtering options for listing projects
type ProjectFilter struct {
	Status   *models.ThreadStatus
	Page     int
	PageSize int
}

// ThreadRepository defines the interface for thread data access
type ThreadRepository interface {
	// Create creates a new thread
	Create(ctx context.Context, thread *models.Thread) error

	// CreateWithTasks creates a thread and its initial tasks in one transaction
	CreateWithTasks(ctx context.Context, thread *models.Thread, tasks []models.Task) error

	// FindByID finds a thread by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Thread, error)

	// List retrieves threads with filtering and pagination
	List(ctx context.Context, filter ThreadFilter) ([]models.Thread, int64, error)

	// Update updates a thread
	Update(ctx context.Context, thread *models.Thread) error

	// Delete deletes a thread with its tasks, ledger records and stakeholder mappings
	Delete(ctx context.Context, id uint64) error
}

// ThreadFilter holds filtering options for listing threads
type ThreadFilter struct {
	ProjectID *uint64
	Status    *models.ThreadStatus
	Page      int
	PageSize  int
}

// AssignmentRepository defines the interface for the thread assignment ledger
type AssignmentRepository interface {
	// Create appends a new ledger record
	Create(ctx context.Context, assignment *models.ThreadAssignment) error

	// FindByID finds a ledger record by ID
	FindByID(ctx context.Context, id uint64) (*models.ThreadAssignment, error)

	// Release closes an open record. It reports false when the record was
	// already closed (or does not exist) and nothing was written.
	Release(ctx context.Context, id uint64, at time.Time, note *string) (bool, error)

	// ListByThread returns every record of a thread ordered by grab time and ID
	ListByThread(ctx context.Context, threadID uint64) ([]models.ThreadAssignment, error)

	// ListOpenByThread returns the open records of a thread
	ListOpenByThread(ctx context.Context, threadID uint64) ([]models.ThreadAssignment, error)

	// ListOpenByThreads returns the open records of several threads at once
	ListOpenByThreads(ctx context.Context, threadIDs []uint64) ([]models.ThreadAssignment, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// CreateBatch creates several tasks in one statement
	CreateBatch(ctx context.Context, tasks []models.Task) error

	// FindByID finds a task by ID
	FindByID(ctx context.Context, id uint64) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(ctx context.Context, task *models.Task) error

	// Delete soft deletes a task
	Delete(ctx context.Context, id uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	ThreadID      *uint64
	AssigneeID    *uint64
	Status        *models.TaskStatus
	SortByDueDate bool
	Page          int
	PageSize      int
}

// MemberRepository defines the interface for team member data access
type MemberRepository interface {
	// Create creates a new member
	Create(ctx context.Context, member *models.Member) error

	// FindByID finds a member by ID regardless of IsActive
	FindByID(ctx context.Context, id uint64) (*models.Member, error)

	// List lists members ordered by ID, optionally including inactive ones
	List(ctx context.Context, includeInactive bool) ([]models.Member, error)

	// Update updates a member
	Update(ctx context.Context, member *models.Member) error

	// Deactivate flips IsActive off, keeping the row for historical lookups
	Deactivate(ctx context.Context, id uint64) error
}

// StakeholderRepository defines the interface for stakeholder data access
type StakeholderRepository interface {
	// Create creates a new stakeholder
	Create(ctx context.Context, stakeholder *models.Stakeholder) error

	// FindByID finds a stakeholder by ID
	FindByID(ctx context.Context, id uint64) (*models.Stakeholder, error)

	// List lists stakeholders, optionally narrowed to one type
	List(ctx context.Context, stakeholderType *models.StakeholderType) ([]models.Stakeholder, error)

	// Update updates a stakeholder
	Update(ctx context.Context, stakeholder *models.Stakeholder) error

	// Delete deletes a stakeholder and its thread mappings
	Delete(ctx context.Context, id uint64) error

	// AddToThread maps a stakeholder onto a thread, replacing the role of an existing mapping
	AddToThread(ctx context.Context, mapping *models.ThreadStakeholder) error

	// RemoveFromThread removes a mapping and reports whether one existed
	RemoveFromThread(ctx context.Context, threadID, stakeholderID uint64) (bool, error)

	// ListByThread lists the mappings of a thread with their stakeholders
	ListByThread(ctx context.Context, threadID uint64) ([]models.ThreadStakeholder, error)
}

// TemplateRepository defines the interface for thread template data access
type TemplateRepository interface {
	// Create creates a template together with its tasks
	Create(ctx context.Context, template *models.ThreadTemplate) error

	// FindByID finds a template with its tasks in order
	FindByID(ctx context.Context, id uint64) (*models.ThreadTemplate, error)

	// FindByName finds a template by its unique name
	FindByName(ctx context.Context, name string) (*models.ThreadTemplate, error)

	// List lists all templates without their tasks
	List(ctx context.Context) ([]models.ThreadTemplate, error)

	// Update updates the template row only
	Update(ctx context.Context, template *models.ThreadTemplate) error

	// ReplaceTasks swaps the template's task list in one transaction
	ReplaceTasks(ctx context.Context, templateID uint64, tasks []models.TemplateTask) error

	// ListTasks lists a template's tasks ordered by sort order
	ListTasks(ctx context.Context, templateID uint64) ([]models.TemplateTask, error)

	// Delete deletes a template and its tasks
	Delete(ctx context.Context, id uint64) error
}
