package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/pmo-timeline-api/internal/dto"
	apierrors "github.com/yukikurage/pmo-timeline-api/internal/errors"
	"github.com/yukikurage/pmo-timeline-api/internal/services"
)

type MemberHandler struct {
	memberService *services.MemberService
}

func NewMemberHandler(memberService *services.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// ListMembers returns active members; include_inactive=true lists everyone
func (h *MemberHandler) ListMembers(c *gin.Context) {
	members, err := h.memberService.ListMembers(c.Request.Context(), c.Query("include_inactive") == "true")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}

// GetMember returns a member, active or not
func (h *MemberHandler) GetMember(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	member, err := h.memberService.GetMember(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, member)
}

func (h *MemberHandler) CreateMember(c *gin.Context) {
	var req dto.CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	member, err := h.memberService.CreateMember(c.Request.Context(), services.MemberInput{
		Name:  &req.Name,
		Role:  req.Role,
		Color: req.Color,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, member)
}

func (h *MemberHandler) UpdateMember(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	member, err := h.memberService.UpdateMember(c.Request.Context(), id, services.MemberInput{
		Name:  req.Name,
		Role:  req.Role,
		Color: req.Color,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, member)
}

// DeleteMember deactivates a member; ledger history keeps resolving them
func (h *MemberHandler) DeleteMember(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.memberService.DeactivateMember(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member deactivated successfully",
	})
}
