package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/pmo-timeline-api/internal/models"
	"github.com/yukikurage/pmo-timeline-api/internal/repository"
	"gorm.io/gorm"
)

// TemplateService manages thread templates and their task blueprints
type TemplateService struct {
	templateRepo repository.TemplateRepository
}

// NewTemplateService creates a new TemplateService
func NewTemplateService(templateRepo repository.TemplateRepository) *TemplateService {
	return &TemplateService{templateRepo: templateRepo}
}

// TemplateTaskInput describes one task blueprint
type TemplateTaskInput struct {
	Title     string `yaml:"title"`
	DayOffset int    `yaml:"day_offset"`
	Priority  string `yaml:"priority"`
	Notes     string `yaml:"notes"`
}

// TemplateInput represents input for creating or updating a template. A nil
// Tasks leaves the task list untouched on update.
type TemplateInput struct {
	Name        *string
	ThreadType  *string
	Description *string
	Tasks       []TemplateTaskInput
}

func (s *TemplateService) ListTemplates(ctx context.Context) ([]models.ThreadTemplate, error) {
	templates, err := s.templateRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

// GetTemplate returns a template with its tasks in order
func (s *TemplateService) GetTemplate(ctx context.Context, id uint64) (*models.ThreadTemplate, error) {
	template, err := s.templateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrTemplateNotFound, "template")
	}
	return template, nil
}

func (s *TemplateService) ListTemplateTasks(ctx context.Context, id uint64) ([]models.TemplateTask, error) {
	if _, err := s.GetTemplate(ctx, id); err != nil {
		return nil, err
	}

	tasks, err := s.templateRepo.ListTasks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list template tasks: %w", err)
	}
	return tasks, nil
}

func (s *TemplateService) CreateTemplate(ctx context.Context, input TemplateInput) (*models.ThreadTemplate, error) {
	if input.Name == nil || blank(*input.Name) {
		return nil, ErrNameRequired
	}

	tasks, err := templateTasks(input.Tasks)
	if err != nil {
		return nil, err
	}

	template := &models.ThreadTemplate{
		Name:       *input.Name,
		ThreadType: models.ThreadTypeOther,
		Tasks:      tasks,
	}
	applyTemplateInput(template, input)

	if err := s.templateRepo.Create(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return template, nil
}

func (s *TemplateService) UpdateTemplate(ctx context.Context, id uint64, input TemplateInput) (*models.ThreadTemplate, error) {
	template, err := s.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if blank(*input.Name) {
			return nil, ErrNameRequired
		}
		template.Name = *input.Name
	}
	applyTemplateInput(template, input)

	if err := s.templateRepo.Update(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to update template: %w", err)
	}

	if input.Tasks != nil {
		tasks, err := templateTasks(input.Tasks)
		if err != nil {
			return nil, err
		}
		if err := s.templateRepo.ReplaceTasks(ctx, template.ID, tasks); err != nil {
			return nil, fmt.Errorf("failed to replace template tasks: %w", err)
		}
	}

	return s.GetTemplate(ctx, id)
}

// UpsertTemplate creates the named template or replaces the existing one's
// fields and tasks. It reports whether a new template was created.
func (s *TemplateService) UpsertTemplate(ctx context.Context, input TemplateInput) (*models.ThreadTemplate, bool, error) {
	if input.Name == nil || blank(*input.Name) {
		return nil, false, ErrNameRequired
	}

	existing, err := s.templateRepo.FindByName(ctx, *input.Name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		template, err := s.CreateTemplate(ctx, input)
		return template, err == nil, err
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to find template: %w", err)
	}

	if input.Tasks == nil {
		input.Tasks = []TemplateTaskInput{}
	}
	template, err := s.UpdateTemplate(ctx, existing.ID, input)
	return template, false, err
}

func (s *TemplateService) DeleteTemplate(ctx context.Context, id uint64) error {
	if _, err := s.GetTemplate(ctx, id); err != nil {
		return err
	}

	if err := s.templateRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	return nil
}

func applyTemplateInput(template *models.ThreadTemplate, input TemplateInput) {
	if input.ThreadType != nil {
		template.ThreadType = models.ParseThreadType(*input.ThreadType)
	}
	if input.Description != nil {
		template.Description = *input.Description
	}
}

func templateTasks(inputs []TemplateTaskInput) ([]models.TemplateTask, error) {
	tasks := make([]models.TemplateTask, 0, len(inputs))
	for i, in := range inputs {
		if blank(in.Title) {
			return nil, ErrTitleRequired
		}

		priority := models.PriorityMedium
		if in.Priority != "" {
			priority = models.ParseTaskPriority(in.Priority)
			if !priority.Valid() {
				return nil, ErrInvalidPriority
			}
		}

		tasks = append(tasks, models.TemplateTask{
			Title:     in.Title,
			DayOffset: in.DayOffset,
			Priority:  priority,
			Notes:     in.Notes,
			SortOrder: i,
		})
	}
	return tasks, nil
}
