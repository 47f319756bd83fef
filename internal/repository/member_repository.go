package repository

import (
	"context"

	"github.com/yukikurage/pmo-timeline-api/internal/models"
	"gorm.io/gorm"
)

// GormMemberRepository is a GORM implementation of MemberRepository
type GormMemberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &GormMemberRepository{db: db}
}

// Create creates a new member
func (r *GormMemberRepository) Create(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// FindByID finds a member by ID regardless of IsActive
func (r *GormMemberRepository) FindByID(ctx context.Context, id uint64) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).First(&member, id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// List lists members ordered by ID
func (r *GormMemberRepository) List(ctx context.Context, includeInactive bool) ([]models.Member, error) {
	var members []models.Member
	query := r.db.WithContext(ctx).Order("id ASC")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	err := query.Find(&members).Error
	return members, err
}

// Update updates a member
func (r *GormMemberRepository) Update(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Save(member).Error
}

// Deactivate flips IsActive off
func (r *GormMemberRepository) Deactivate(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
