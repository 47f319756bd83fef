package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/pmo-timeline-api/internal/dto"
	apierrors "github.com/yukikurage/pmo-timeline-api/internal/errors"
	"github.com/yukikurage/pmo-timeline-api/internal/models"
	"github.com/yukikurage/pmo-timeline-api/internal/services"
	"github.com/yukikurage/pmo-timeline-api/internal/utils"
)

// ThreadHandler serves threads and their assignment ledger. Routes with a
// thread id run behind middleware.LoadThread.
type ThreadHandler struct {
	threadService   *services.ThreadService
	ledgerService   *services.LedgerService
	timelineService *services.TimelineService
}

func NewThreadHandler(threadService *services.ThreadService, ledgerService *services.LedgerService, timelineService *services.TimelineService) *ThreadHandler {
	return &ThreadHandler{
		threadService:   threadService,
		ledgerService:   ledgerService,
		timelineService: timelineService,
	}
}

// ListThreads returns threads filtered by project_id and status
func (h *ThreadHandler) ListThreads(c *gin.Context) {
	projectID, ok := parseOptionalUint(c, "project_id")
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	threads, total, err := h.threadService.ListThreads(c.Request.Context(), services.ListThreadsInput{
		ProjectID: projectID,
		Status:    threadStatusQuery(c),
		Page:      params.Page,
		PageSize:  params.Limit,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToThreadListResponse(threads, h.threadService.Today(), params, total))
}

func (h *ThreadHandler) GetThread(c *gin.Context) {
	thread, ok := currentThread(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.ToThreadDTO(*thread, h.threadService.Today()))
}

func (h *ThreadHandler) CreateThread(c *gin.Context) {
	var req dto.CreateThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	thread, err := h.threadService.CreateThread(c.Request.Context(), services.CreateThreadInput{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		ThreadType:  req.ThreadType,
		StartDate:   req.StartDate.Ptr(),
		DueDate:     req.DueDate.Ptr(),
		Status:      req.Status,
		OutcomeGoal: req.OutcomeGoal,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToThreadDTO(*thread, h.threadService.Today()))
}

// CreateFromTemplate creates a thread with the template's tasks
func (h *ThreadHandler) CreateFromTemplate(c *gin.Context) {
	var req dto.CreateFromTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	thread, err := h.threadService.CreateFromTemplate(c.Request.Context(), services.CreateFromTemplateInput{
		TemplateID:  req.TemplateID,
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		StartDate:   req.StartDate.Ptr(),
		DueDate:     req.DueDate.Ptr(),
		OutcomeGoal: req.OutcomeGoal,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToThreadDTO(*thread, h.threadService.Today()))
}

func (h *ThreadHandler) UpdateThread(c *gin.Context) {
	thread, ok := currentThread(c)
	if !ok {
		return
	}

	var req dto.UpdateThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	updated, err := h.threadService.UpdateThread(c.Request.Context(), thread.ID, services.UpdateThreadInput{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		ThreadType:  req.ThreadType,
		StartDate:   req.StartDate.Ptr(),
		DueDate:     req.DueDate.Ptr(),
		Status:      req.Status,
		OutcomeGoal: req.OutcomeGoal,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToThreadDTO(*updated, h.threadService.Today()))
}

// DeleteThread deletes a thread with its tasks, ledger and stakeholder mappings
func (h *ThreadHandler) DeleteThread(c *gin.Context) {
	thread, ok := currentThread(c)
	if !ok {
		return
	}

	if err := h.threadService.DeleteThread(c.Request.Context(), thread.ID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Thread deleted successfully",
	})
}

// Assign opens a ledger record for a member
func (h *ThreadHandler) Assign(c *gin.Context) {
	thread, ok := currentThread(c)
	if !ok {
		return
	}

	var req dto.GrabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	record, err := h.ledgerService.Grab(c.Request.Context(), services.GrabInput{
		ThreadID: thread.ID,
		MemberID: req.MemberID,
		Role:     models.ParseAssignmentRole(req.Role),
		Note:     req.Note,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// Release closes an open ledger record
func (h *ThreadHandler) Release(c *gin.Context) {
	thread, ok := currentThread(c)
	if !ok {
		return
	}

	var req dto.ReleaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	record, err := h.ledgerService.Release(c.Request.Context(), services.ReleaseInput{
		ThreadID:     thread.ID,
		AssignmentID: req.AssignmentID,
		Note:         req.Note,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

func (h *ThreadHandler) CurrentAssignments(c *gin.Context) {
	thread, ok := currentThread(c)
	if !ok {
		return
	}

	records, err := h.ledgerService.Current(c.Request.Context(), thread.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"assignments": records})
}

func (h *ThreadHandler) History(c *gin.Context) {
	thread, ok := currentThread(c)
	if !ok {
		return
	}

	records, err := h.ledgerService.History(c.Request.Context(), thread.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"assignments": records})
}

// Events returns the grab/release stream, newest first
func (h *ThreadHandler) Events(c *gin.Context) {
	thread, ok := currentThread(c)
	if !ok {
		return
	}

	evts, err := h.ledgerService.Events(c.Request.Context(), thread.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": evts})
}

// Segments returns the ownership breakdown of the thread bar. Pass
// include_released=true to apportion the full history.
func (h *ThreadHandler) Segments(c *gin.Context) {
	thread, ok := currentThread(c)
	if !ok {
		return
	}

	includeReleased := false
	if raw := c.Query("include_released"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid include_released")
			return
		}
		includeReleased = v
	}

	view, err := h.timelineService.Segments(c.Request.Context(), thread.ID, includeReleased)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
