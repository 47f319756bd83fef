package repository

import (
	"context"

	"github.com/yukikurage/pmo-timeline-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStakeholderRepository is a GORM implementation of StakeholderRepository
type GormStakeholderRepository struct {
	db *gorm.DB
}

// NewStakeholderRepository creates a new StakeholderRepository
func NewStakeholderRepository(db *gorm.DB) StakeholderRepository {
	return &GormStakeholderRepository{db: db}
}

// Create creates a new stakeholder
func (r *GormStakeholderRepository) Create(ctx context.Context, stakeholder *models.Stakeholder) error {
	return r.db.WithContext(ctx).Create(stakeholder).Error
}

// FindByID finds a stakeholder by ID
func (r *GormStakeholderRepository) FindByID(ctx context.Context, id uint64) (*models.Stakeholder, error) {
	var stakeholder models.Stakeholder
	if err := r.db.WithContext(ctx).First(&stakeholder, id).Error; err != nil {
		return nil, err
	}
	return &stakeholder, nil
}

// List lists stakeholders, optionally narrowed to one type
func (r *GormStakeholderRepository) List(ctx context.Context, stakeholderType *models.StakeholderType) ([]models.Stakeholder, error) {
	var stakeholders []models.Stakeholder
	query := r.db.WithContext(ctx).Order("id ASC")
	if stakeholderType != nil {
		query = query.Where("type = ?", *stakeholderType)
	}
	err := query.Find(&stakeholders).Error
	return stakeholders, err
}

// Update updates a stakeholder
func (r *GormStakeholderRepository) Update(ctx context.Context, stakeholder *models.Stakeholder) error {
	return r.db.WithContext(ctx).Save(stakeholder).Error
}

// Delete deletes a stakeholder and its thread mappings
func (r *GormStakeholderRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("stakeholder_id = ?", id).Delete(&models.ThreadStakeholder{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Stakeholder{}, id).Error
	})
}

// AddToThread maps a stakeholder onto a thread, replacing the role of an existing mapping
func (r *GormStakeholderRepository) AddToThread(ctx context.Context, mapping *models.ThreadStakeholder) error {
	return r.db.WithContext(ctx).
		Omit("Stakeholder").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "thread_id"}, {Name: "stakeholder_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role_type"}),
		}).
		Create(mapping).Error
}

// RemoveFromThread removes a mapping and reports whether one existed
func (r *GormStakeholderRepository) RemoveFromThread(ctx context.Context, threadID, stakeholderID uint64) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("thread_id = ? AND stakeholder_id = ?", threadID, stakeholderID).
		Delete(&models.ThreadStakeholder{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListByThread lists the mappings of a thread with their stakeholders
func (r *GormStakeholderRepository) ListByThread(ctx context.Context, threadID uint64) ([]models.ThreadStakeholder, error) {
	var mappings []models.ThreadStakeholder
	err := r.db.WithContext(ctx).
		Preload("Stakeholder").
		Where("thread_id = ?", threadID).
		Order("stakeholder_id ASC").
		Find(&mappings).Error
	return mappings, err
}
