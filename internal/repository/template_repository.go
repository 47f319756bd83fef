package repository

import (
	"context"

	"github.com/yukikurage/pmo-timeline-api/internal/models"
	"gorm.io/gorm"
)

// GormTemplateRepository is a GORM implementation of TemplateRepository
type GormTemplateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository creates a new TemplateRepository
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &GormTemplateRepository{db: db}
}

// Create creates a template together with its tasks
func (r *GormTemplateRepository) Create(ctx context.Context, template *models.ThreadTemplate) error {
	return r.db.WithContext(ctx).Create(template).Error
}

// FindByID finds a template with its tasks in order
func (r *GormTemplateRepository) FindByID(ctx context.Context, id uint64) (*models.ThreadTemplate, error) {
	var template models.ThreadTemplate
	if err := r.db.WithContext(ctx).Preload("Tasks", orderedTasks).First(&template, id).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

// FindByName finds a template by its unique name
func (r *GormTemplateRepository) FindByName(ctx context.Context, name string) (*models.ThreadTemplate, error) {
	var template models.ThreadTemplate
	if err := r.db.WithContext(ctx).Preload("Tasks", orderedTasks).Where("name = ?", name).First(&template).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

// List lists all templates without their tasks
func (r *GormTemplateRepository) List(ctx context.Context) ([]models.ThreadTemplate, error) {
	var templates []models.ThreadTemplate
	err := r.db.WithContext(ctx).Order("id ASC").Find(&templates).Error
	return templates, err
}

// Update updates the template row only
func (r *GormTemplateRepository) Update(ctx context.Context, template *models.ThreadTemplate) error {
	return r.db.WithContext(ctx).Omit("Tasks").Save(template).Error
}

// ReplaceTasks swaps the template's task list in one transaction
func (r *GormTemplateRepository) ReplaceTasks(ctx context.Context, templateID uint64, tasks []models.TemplateTask) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", templateID).Delete(&models.TemplateTask{}).Error; err != nil {
			return err
		}
		if len(tasks) == 0 {
			return nil
		}
		for i := range tasks {
			tasks[i].ID = 0
			tasks[i].TemplateID = templateID
		}
		return tx.Create(&tasks).Error
	})
}

// ListTasks lists a template's tasks ordered by sort order
func (r *GormTemplateRepository) ListTasks(ctx context.Context, templateID uint64) ([]models.TemplateTask, error) {
	var tasks []models.TemplateTask
	err := orderedTasks(r.db.WithContext(ctx)).Where("template_id = ?", templateID).Find(&tasks).Error
	return tasks, err
}

// Delete deletes a template and its tasks
func (r *GormTemplateRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", id).Delete(&models.TemplateTask{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ThreadTemplate{}, id).Error
	})
}

func orderedTasks(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC").Order("id ASC")
}
