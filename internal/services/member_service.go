package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/pmo-timeline-api/internal/models"
	"github.com/yukikurage/pmo-timeline-api/internal/repository"
)

var ErrInvalidMemberRole = errors.New("member role must be pm, member or intern")

// MemberService handles team member business logic
type MemberService struct {
	memberRepo  repository.MemberRepository
	invalidator Invalidator
}

// NewMemberService creates a new MemberService
func NewMemberService(memberRepo repository.MemberRepository, invalidator Invalidator) *MemberService {
	if invalidator == nil {
		invalidator = nopInvalidator{}
	}
	return &MemberService{
		memberRepo:  memberRepo,
		invalidator: invalidator,
	}
}

// MemberInput represents input for creating or updating a member
type MemberInput struct {
	Name  *string
	Role  *models.MemberRole
	Color *string
}

// ListMembers lists active members, or all members when includeInactive is set
func (s *MemberService) ListMembers(ctx context.Context, includeInactive bool) ([]models.Member, error) {
	members, err := s.memberRepo.List(ctx, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// GetMember returns a member whether active or not
func (s *MemberService) GetMember(ctx context.Context, id uint64) (*models.Member, error) {
	member, err := s.memberRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrMemberNotFound, "member")
	}
	return member, nil
}

// CreateMember creates an active member. The role defaults to member.
func (s *MemberService) CreateMember(ctx context.Context, input MemberInput) (*models.Member, error) {
	if input.Name == nil || blank(*input.Name) {
		return nil, ErrNameRequired
	}

	member := &models.Member{
		Name:     *input.Name,
		Role:     models.MemberRoleMember,
		Color:    "#374151",
		IsActive: true,
	}
	if err := applyMemberInput(member, input); err != nil {
		return nil, err
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	s.invalidator.Invalidate()
	return member, nil
}

// UpdateMember applies a partial update
func (s *MemberService) UpdateMember(ctx context.Context, id uint64, input MemberInput) (*models.Member, error) {
	member, err := s.GetMember(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if blank(*input.Name) {
			return nil, ErrNameRequired
		}
		member.Name = *input.Name
	}
	if err := applyMemberInput(member, input); err != nil {
		return nil, err
	}

	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	s.invalidator.Invalidate()
	return member, nil
}

// DeactivateMember hides a member from listings and the legend. Existing
// ledger records keep resolving to the member.
func (s *MemberService) DeactivateMember(ctx context.Context, id uint64) error {
	member, err := s.GetMember(ctx, id)
	if err != nil {
		return err
	}
	if !member.IsActive {
		return nil
	}

	if err := s.memberRepo.Deactivate(ctx, id); err != nil {
		return lookupError(err, ErrMemberNotFound, "member")
	}

	s.invalidator.Invalidate()
	return nil
}

func applyMemberInput(member *models.Member, input MemberInput) error {
	if input.Role != nil {
		if !input.Role.Valid() {
			return ErrInvalidMemberRole
		}
		member.Role = *input.Role
	}
	if input.Color != nil && !blank(*input.Color) {
		member.Color = *input.Color
	}
	return nil
}
