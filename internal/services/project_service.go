package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/pmo-timeline-api/internal/models"
	"github.com/yukikurage/pmo-timeline-api/internal/repository"
)

var ErrProjectNotFound = errors.New("project not found")

// ProjectService handles project business logic
type ProjectService struct {
	projectRepo repository.ProjectRepository
	invalidator Invalidator
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo repository.ProjectRepository, invalidator Invalidator) *ProjectService {
	if invalidator == nil {
		invalidator = nopInvalidator{}
	}
	return &ProjectService{
		projectRepo: projectRepo,
		invalidator: invalidator,
	}
}

// ProjectInput represents input for creating or updating a project. Nil
// fields are left untouched on update.
type ProjectInput struct {
	Name        *string
	Description *string
	Status      *models.ThreadStatus
	StartDate   *time.Time
	EndDate     *time.Time
}

// ListProjects returns projects, optionally filtered by status
func (s *ProjectService) ListProjects(ctx context.Context, status *models.ThreadStatus, page, pageSize int) ([]models.Project, int64, error) {
	projects, total, err := s.projectRepo.List(ctx, repository.ProjectFilter{
		Status:   status,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, total, nil
}

// GetProject returns a project by ID
func (s *ProjectService) GetProject(ctx context.Context, id uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrProjectNotFound, "project")
	}
	return project, nil
}

// CreateProject creates a new project
func (s *ProjectService) CreateProject(ctx context.Context, input ProjectInput) (*models.Project, error) {
	if input.Name == nil || blank(*input.Name) {
		return nil, ErrNameRequired
	}

	project := &models.Project{
		Name:   *input.Name,
		Status: models.ThreadStatusActive,
	}
	if err := applyProjectInput(project, input); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.invalidator.Invalidate()
	return project, nil
}

// UpdateProject applies a partial update
func (s *ProjectService) UpdateProject(ctx context.Context, id uint64, input ProjectInput) (*models.Project, error) {
	project, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if blank(*input.Name) {
			return nil, ErrNameRequired
		}
		project.Name = *input.Name
	}
	if err := applyProjectInput(project, input); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	s.invalidator.Invalidate()
	return project, nil
}

// DeleteProject deletes a project and everything under it
func (s *ProjectService) DeleteProject(ctx context.Context, id uint64) error {
	if _, err := s.GetProject(ctx, id); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	s.invalidator.Invalidate()
	return nil
}

func applyProjectInput(project *models.Project, input ProjectInput) error {
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return ErrInvalidStatus
		}
		project.Status = *input.Status
	}
	if input.StartDate != nil {
		project.StartDate = toDatePtr(input.StartDate)
	}
	if input.EndDate != nil {
		project.EndDate = toDatePtr(input.EndDate)
	}
	return nil
}
