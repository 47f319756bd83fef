package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/pmo-timeline-api/internal/models"
	"github.com/yukikurage/pmo-timeline-api/internal/repository"
)

const defaultStakeholderRole = "counterpart"

var (
	ErrStakeholderNotFound    = errors.New("stakeholder not found")
	ErrInvalidStakeholderType = errors.New("stakeholder type must be internal or external")
	ErrMappingNotFound        = errors.New("stakeholder is not mapped to the thread")
)

// StakeholderService handles stakeholders and their thread mappings
type StakeholderService struct {
	stakeholderRepo repository.StakeholderRepository
	threadRepo      repository.ThreadRepository
}

// NewStakeholderService creates a new StakeholderService
func NewStakeholderService(stakeholderRepo repository.StakeholderRepository, threadRepo repository.ThreadRepository) *StakeholderService {
	return &StakeholderService{
		stakeholderRepo: stakeholderRepo,
		threadRepo:      threadRepo,
	}
}

// StakeholderInput represents input for creating or updating a stakeholder
type StakeholderInput struct {
	Name         *string
	Type         *string
	Organization *string
	Contact      *string
}

// ThreadStakeholder is a mapping joined with its stakeholder.
type ThreadStakeholder struct {
	models.Stakeholder
	RoleType string `json:"role_type"`
}

func (s *StakeholderService) ListStakeholders(ctx context.Context, stakeholderType *string) ([]models.Stakeholder, error) {
	var filter *models.StakeholderType
	if stakeholderType != nil {
		t, ok := models.ParseStakeholderType(*stakeholderType)
		if !ok {
			return nil, ErrInvalidStakeholderType
		}
		filter = &t
	}

	stakeholders, err := s.stakeholderRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list stakeholders: %w", err)
	}
	return stakeholders, nil
}

func (s *StakeholderService) GetStakeholder(ctx context.Context, id uint64) (*models.Stakeholder, error) {
	stakeholder, err := s.stakeholderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrStakeholderNotFound, "stakeholder")
	}
	return stakeholder, nil
}

// CreateStakeholder creates a stakeholder. The type defaults to external.
func (s *StakeholderService) CreateStakeholder(ctx context.Context, input StakeholderInput) (*models.Stakeholder, error) {
	if input.Name == nil || blank(*input.Name) {
		return nil, ErrNameRequired
	}

	stakeholder := &models.Stakeholder{
		Name: *input.Name,
		Type: models.StakeholderExternal,
	}
	if err := applyStakeholderInput(stakeholder, input); err != nil {
		return nil, err
	}

	if err := s.stakeholderRepo.Create(ctx, stakeholder); err != nil {
		return nil, fmt.Errorf("failed to create stakeholder: %w", err)
	}
	return stakeholder, nil
}

func (s *StakeholderService) UpdateStakeholder(ctx context.Context, id uint64, input StakeholderInput) (*models.Stakeholder, error) {
	stakeholder, err := s.GetStakeholder(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if blank(*input.Name) {
			return nil, ErrNameRequired
		}
		stakeholder.Name = *input.Name
	}
	if err := applyStakeholderInput(stakeholder, input); err != nil {
		return nil, err
	}

	if err := s.stakeholderRepo.Update(ctx, stakeholder); err != nil {
		return nil, fmt.Errorf("failed to update stakeholder: %w", err)
	}
	return stakeholder, nil
}

// DeleteStakeholder deletes a stakeholder and removes it from every thread
func (s *StakeholderService) DeleteStakeholder(ctx context.Context, id uint64) error {
	if _, err := s.GetStakeholder(ctx, id); err != nil {
		return err
	}

	if err := s.stakeholderRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete stakeholder: %w", err)
	}
	return nil
}

// AddToThread maps a stakeholder onto a thread. Mapping it again replaces
// the role type.
func (s *StakeholderService) AddToThread(ctx context.Context, threadID, stakeholderID uint64, roleType string) (*models.ThreadStakeholder, error) {
	if err := s.ensureThread(ctx, threadID); err != nil {
		return nil, err
	}
	if _, err := s.GetStakeholder(ctx, stakeholderID); err != nil {
		return nil, err
	}

	if blank(roleType) {
		roleType = defaultStakeholderRole
	}

	mapping := &models.ThreadStakeholder{
		ThreadID:      threadID,
		StakeholderID: stakeholderID,
		RoleType:      roleType,
	}
	if err := s.stakeholderRepo.AddToThread(ctx, mapping); err != nil {
		return nil, fmt.Errorf("failed to add stakeholder to thread: %w", err)
	}
	return mapping, nil
}

func (s *StakeholderService) RemoveFromThread(ctx context.Context, threadID, stakeholderID uint64) error {
	removed, err := s.stakeholderRepo.RemoveFromThread(ctx, threadID, stakeholderID)
	if err != nil {
		return fmt.Errorf("failed to remove stakeholder from thread: %w", err)
	}
	if !removed {
		return ErrMappingNotFound
	}
	return nil
}

func (s *StakeholderService) ListForThread(ctx context.Context, threadID uint64) ([]ThreadStakeholder, error) {
	if err := s.ensureThread(ctx, threadID); err != nil {
		return nil, err
	}

	mappings, err := s.stakeholderRepo.ListByThread(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list thread stakeholders: %w", err)
	}

	result := make([]ThreadStakeholder, 0, len(mappings))
	for _, m := range mappings {
		result = append(result, ThreadStakeholder{Stakeholder: m.Stakeholder, RoleType: m.RoleType})
	}
	return result, nil
}

func (s *StakeholderService) ensureThread(ctx context.Context, threadID uint64) error {
	if _, err := s.threadRepo.FindByID(ctx, threadID); err != nil {
		return lookupError(err, ErrThreadNotFound, "thread")
	}
	return nil
}

func applyStakeholderInput(stakeholder *models.Stakeholder, input StakeholderInput) error {
	if input.Type != nil {
		t, ok := models.ParseStakeholderType(*input.Type)
		if !ok {
			return ErrInvalidStakeholderType
		}
		stakeholder.Type = t
	}
	if input.Organization != nil {
		stakeholder.Organization = *input.Organization
	}
	if input.Contact != nil {
		stakeholder.Contact = *input.Contact
	}
	return nil
}
