package repository

import (
	"context"
	"time"

	"github.com/yukikurage/pmo-timeline-api/internal/models"
	"gorm.io/gorm"
)

// GormAssignmentRepository is a GORM implementation of AssignmentRepository
type GormAssignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository creates a new AssignmentRepository
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &GormAssignmentRepository{db: db}
}

// Create appends a new ledger record
func (r *GormAssignmentRepository) Create(ctx context.Context, assignment *models.ThreadAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

// FindByID finds a ledger record by ID
func (r *GormAssignmentRepository) FindByID(ctx context.Context, id uint64) (*models.ThreadAssignment, error) {
	var assignment models.ThreadAssignment
	if err := r.db.WithContext(ctx).First(&assignment, id).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Release closes an open record. The released_at IS NULL guard makes the
// write a compare-and-swap: of two concurrent releases only one updates a row.
func (r *GormAssignmentRepository) Release(ctx context.Context, id uint64, at time.Time, note *string) (bool, error) {
	updates := map[string]interface{}{"released_at": at}
	if note != nil {
		updates["note"] = *note
	}

	result := r.db.WithContext(ctx).
		Model(&models.ThreadAssignment{}).
		Where("id = ? AND released_at IS NULL", id).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// ListByThread returns every record of a thread ordered by grab time and ID
func (r *GormAssignmentRepository) ListByThread(ctx context.Context, threadID uint64) ([]models.ThreadAssignment, error) {
	var records []models.ThreadAssignment
	err := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("grabbed_at ASC").
		Order("id ASC").
		Find(&records).Error
	return records, err
}

// ListOpenByThread returns the open records of a thread
func (r *GormAssignmentRepository) ListOpenByThread(ctx context.Context, threadID uint64) ([]models.ThreadAssignment, error) {
	var records []models.ThreadAssignment
	err := r.db.WithContext(ctx).
		Where("thread_id = ? AND released_at IS NULL", threadID).
		Order("grabbed_at ASC").
		Order("id ASC").
		Find(&records).Error
	return records, err
}

// ListOpenByThreads returns the open records of several threads at once
func (r *GormAssignmentRepository) ListOpenByThreads(ctx context.Context, threadIDs []uint64) ([]models.ThreadAssignment, error) {
	if len(threadIDs) == 0 {
		return []models.ThreadAssignment{}, nil
	}

	var records []models.ThreadAssignment
	err := r.db.WithContext(ctx).
		Where("thread_id IN ? AND released_at IS NULL", threadIDs).
		Order("thread_id ASC").
		Order("grabbed_at ASC").
		Order("id ASC").
		Find(&records).Error
	return records, err
}
