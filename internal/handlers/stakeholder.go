package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/pmo-timeline-api/internal/dto"
	apierrors "github.com/yukikurage/pmo-timeline-api/internal/errors"
	"github.com/yukikurage/pmo-timeline-api/internal/services"
)

type StakeholderHandler struct {
	stakeholderService *services.StakeholderService
}

func NewStakeholderHandler(stakeholderService *services.StakeholderService) *StakeholderHandler {
	return &StakeholderHandler{stakeholderService: stakeholderService}
}

// ListStakeholders returns stakeholders, optionally filtered by type
func (h *StakeholderHandler) ListStakeholders(c *gin.Context) {
	var stakeholderType *string
	if raw := c.Query("type"); raw != "" {
		stakeholderType = &raw
	}

	stakeholders, err := h.stakeholderService.ListStakeholders(c.Request.Context(), stakeholderType)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stakeholders": stakeholders})
}

func (h *StakeholderHandler) GetStakeholder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	stakeholder, err := h.stakeholderService.GetStakeholder(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stakeholder)
}

func (h *StakeholderHandler) CreateStakeholder(c *gin.Context) {
	var req dto.CreateStakeholderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	stakeholder, err := h.stakeholderService.CreateStakeholder(c.Request.Context(), services.StakeholderInput{
		Name:         &req.Name,
		Type:         req.Type,
		Organization: req.Organization,
		Contact:      req.Contact,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, stakeholder)
}

func (h *StakeholderHandler) UpdateStakeholder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateStakeholderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	stakeholder, err := h.stakeholderService.UpdateStakeholder(c.Request.Context(), id, services.StakeholderInput{
		Name:         req.Name,
		Type:         req.Type,
		Organization: req.Organization,
		Contact:      req.Contact,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stakeholder)
}

func (h *StakeholderHandler) DeleteStakeholder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.stakeholderService.DeleteStakeholder(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stakeholder deleted successfully",
	})
}

// ListThreadStakeholders returns the stakeholders mapped onto a thread
func (h *StakeholderHandler) ListThreadStakeholders(c *gin.Context) {
	thread, ok := currentThread(c)
	if !ok {
		return
	}

	mappings, err := h.stakeholderService.ListForThread(c.Request.Context(), thread.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stakeholders": mappings})
}

// AddThreadStakeholder maps a stakeholder onto a thread
func (h *StakeholderHandler) AddThreadStakeholder(c *gin.Context) {
	thread, ok := currentThread(c)
	if !ok {
		return
	}

	var req dto.ThreadStakeholderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	mapping, err := h.stakeholderService.AddToThread(c.Request.Context(), thread.ID, req.StakeholderID, req.RoleType)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, mapping)
}

func (h *StakeholderHandler) RemoveThreadStakeholder(c *gin.Context) {
	thread, ok := currentThread(c)
	if !ok {
		return
	}
	stakeholderID, ok := parseIDParam(c, "stakeholder_id")
	if !ok {
		return
	}

	if err := h.stakeholderService.RemoveFromThread(c.Request.Context(), thread.ID, stakeholderID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stakeholder removed from thread",
	})
}
