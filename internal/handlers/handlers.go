package handlers

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/pmo-timeline-api/internal/errors"
	"github.com/yukikurage/pmo-timeline-api/internal/middleware"
	"github.com/yukikurage/pmo-timeline-api/internal/models"
	"github.com/yukikurage/pmo-timeline-api/internal/services"
)

// parseIDParam reads a numeric route parameter, answering 400 when malformed.
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// parseOptionalUint reads an optional numeric query parameter.
func parseOptionalUint(c *gin.Context, name string) (*uint64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name)
		return nil, false
	}
	return &v, true
}

func threadStatusQuery(c *gin.Context) *models.ThreadStatus {
	raw := c.Query("status")
	if raw == "" {
		return nil
	}
	status := models.ThreadStatus(raw)
	return &status
}

// currentThread returns the thread loaded by middleware.LoadThread.
func currentThread(c *gin.Context) (*models.Thread, bool) {
	thread, ok := middleware.GetThread(c)
	if !ok {
		apierrors.InternalError(c, "Thread not found in context")
		return nil, false
	}
	return thread, true
}

// respondServiceError maps service sentinels onto API errors
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrThreadNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrMemberNotFound),
		errors.Is(err, services.ErrAssignmentNotFound),
		errors.Is(err, services.ErrStakeholderNotFound),
		errors.Is(err, services.ErrMappingNotFound),
		errors.Is(err, services.ErrTemplateNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrAssignmentAlreadyReleased):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrNameRequired),
		errors.Is(err, services.ErrDueDateRequired),
		errors.Is(err, services.ErrTextRequired),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrInvalidMemberRole),
		errors.Is(err, services.ErrInvalidStakeholderType),
		errors.Is(err, services.ErrMemberInactive),
		errors.Is(err, services.ErrAssigneeNotFound),
		errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks),
		errors.Is(err, services.ErrAITooManyTasks):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, err.Error())
	default:
		slog.ErrorContext(c.Request.Context(), "request failed",
			"path", c.FullPath(),
			"request_id", middleware.GetRequestID(c),
			"error", err,
		)
		apierrors.InternalError(c, "Internal server error")
	}
}
