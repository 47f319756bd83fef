package repository

import (
	"context"

	"github.com/yukikurage/pmo-timeline-api/internal/models"
	"gorm.io/gorm"
)

// GormThreadRepository is a GORM implementation of ThreadRepository
type GormThreadRepository struct {
	db *gorm.DB
}

// NewThreadRepository creates a new ThreadRepository
func NewThreadRepository(db *gorm.DB) ThreadRepository {
	return &GormThreadRepository{db: db}
}

// Create creates a new thread
func (r *GormThreadRepository) Create(ctx context.Context, thread *models.Thread) error {
	return r.db.WithContext(ctx).Create(thread).Error
}

// CreateWithTasks creates a thread and its initial tasks in one transaction
func (r *GormThreadRepository) CreateWithTasks(ctx context.Context, thread *models.Thread, tasks []models.Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tasks", "Assignments").Create(thread).Error; err != nil {
			return err
		}
		if len(tasks) == 0 {
			return nil
		}

		for i := range tasks {
			tasks[i].ThreadID = thread.ID
		}
		if err := tx.Create(&tasks).Error; err != nil {
			return err
		}
		thread.Tasks = tasks
		return nil
	})
}

// FindByID finds a thread by ID with optional preloading
func (r *GormThreadRepository) FindByID(ctx context.Context, id uint64, preload ...string) (*models.Thread, error) {
	var thread models.Thread
	query := r.db.WithContext(ctx)

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&thread, id).Error; err != nil {
		return nil, err
	}

	return &thread, nil
}

// List retrieves threads with filtering and pagination, soonest due first
func (r *GormThreadRepository) List(ctx context.Context, filter ThreadFilter) ([]models.Thread, int64, error) {
	var threads []models.Thread

	query := r.db.WithContext(ctx).Model(&models.Thread{})
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("due_date ASC").Order("id ASC").Scopes(paginate(filter.Page, filter.PageSize))
	if err := listQuery.Find(&threads).Error; err != nil {
		return nil, 0, err
	}

	return threads, total, nil
}

// Update updates a thread
func (r *GormThreadRepository) Update(ctx context.Context, thread *models.Thread) error {
	return r.db.WithContext(ctx).Omit("Tasks", "Assignments").Save(thread).Error
}

// Delete deletes a thread with its tasks, ledger records and stakeholder mappings
func (r *GormThreadRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteThreads(tx, []uint64{id})
	})
}

// deleteThreads removes threads and everything they own. It must run inside
// a transaction.
func deleteThreads(tx *gorm.DB, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}

	if err := tx.Where("thread_id IN ?", ids).Delete(&models.Task{}).Error; err != nil {
		return err
	}
	if err := tx.Where("thread_id IN ?", ids).Delete(&models.ThreadAssignment{}).Error; err != nil {
		return err
	}
	if err := tx.Where("thread_id IN ?", ids).Delete(&models.ThreadStakeholder{}).Error; err != nil {
		return err
	}

	return tx.Delete(&models.Thread{}, ids).Error
}
