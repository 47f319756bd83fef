package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/pmo-timeline-api/internal/dto"
	apierrors "github.com/yukikurage/pmo-timeline-api/internal/errors"
	"github.com/yukikurage/pmo-timeline-api/internal/services"
)

type TemplateHandler struct {
	templateService *services.TemplateService
}

func NewTemplateHandler(templateService *services.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	templates, err := h.templateService.ListTemplates(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

// GetTemplate returns a template with its tasks
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	template, err := h.templateService.GetTemplate(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, template)
}

func (h *TemplateHandler) ListTemplateTasks(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tasks, err := h.templateService.ListTemplateTasks(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var req dto.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	template, err := h.templateService.CreateTemplate(c.Request.Context(), services.TemplateInput{
		Name:        &req.Name,
		ThreadType:  req.ThreadType,
		Description: req.Description,
		Tasks:       templateTaskInputs(req.Tasks),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, template)
}

// UpdateTemplate updates a template; a tasks array replaces the task list
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	template, err := h.templateService.UpdateTemplate(c.Request.Context(), id, services.TemplateInput{
		Name:        req.Name,
		ThreadType:  req.ThreadType,
		Description: req.Description,
		Tasks:       templateTaskInputs(req.Tasks),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, template)
}

func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.templateService.DeleteTemplate(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Template deleted successfully",
	})
}

// templateTaskInputs keeps nil as nil so updates can leave tasks untouched
func templateTaskInputs(reqs []dto.TemplateTaskRequest) []services.TemplateTaskInput {
	if reqs == nil {
		return nil
	}
	inputs := make([]services.TemplateTaskInput, len(reqs))
	for i, r := range reqs {
		inputs[i] = services.TemplateTaskInput{
			Title:     r.Title,
			DayOffset: r.DayOffset,
			Priority:  r.Priority,
			Notes:     r.Notes,
		}
	}
	return inputs
}
