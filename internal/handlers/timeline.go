package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/pmo-timeline-api/internal/constants"
	"github.com/yukikurage/pmo-timeline-api/internal/dto"
	apierrors "github.com/yukikurage/pmo-timeline-api/internal/errors"
	"github.com/yukikurage/pmo-timeline-api/internal/services"
	"github.com/yukikurage/pmo-timeline-api/internal/timeline"
)

type TimelineHandler struct {
	timelineService *services.TimelineService
}

func NewTimelineHandler(timelineService *services.TimelineService) *TimelineHandler {
	return &TimelineHandler{timelineService: timelineService}
}

// GetTimeline renders the four-week timeline. The anchor comes from the
// query, then from the session, then defaults to today.
func (h *TimelineHandler) GetTimeline(c *gin.Context) {
	projectID, ok := parseOptionalUint(c, "project_id")
	if !ok {
		return
	}

	var anchor time.Time
	if raw := c.Query("anchor"); raw != "" {
		parsed, err := dto.ParseDate(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid anchor")
			return
		}
		anchor = parsed
	} else {
		anchor = sessionAnchor(c)
	}

	h.respondTimeline(c, projectID, anchor)
}

// Navigate moves the session anchor by whole weeks, or back to the current
// week when today is set.
func (h *TimelineHandler) Navigate(c *gin.Context) {
	projectID, ok := parseOptionalUint(c, "project_id")
	if !ok {
		return
	}

	var req dto.NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	var anchor time.Time
	if !req.Today {
		anchor = sessionAnchor(c)
		if anchor.IsZero() {
			anchor = h.timelineService.Today()
		}
		anchor = timeline.MondayOf(anchor).AddDate(0, 0, 7*req.Offset)
	}

	session := sessions.Default(c)
	if anchor.IsZero() {
		session.Delete(constants.SessionKeyTimelineAnchor)
	} else {
		session.Set(constants.SessionKeyTimelineAnchor, anchor.Format(constants.DateLayout))
	}
	if err := session.Save(); err != nil {
		slog.WarnContext(c.Request.Context(), "failed to save timeline anchor", "error", err)
	}

	h.respondTimeline(c, projectID, anchor)
}

func (h *TimelineHandler) respondTimeline(c *gin.Context, projectID *uint64, anchor time.Time) {
	view, err := h.timelineService.Build(c.Request.Context(), services.TimelineQuery{
		ProjectID: projectID,
		Anchor:    anchor,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// sessionAnchor returns the stored anchor, zero when unset or unreadable.
func sessionAnchor(c *gin.Context) time.Time {
	raw, ok := sessions.Default(c).Get(constants.SessionKeyTimelineAnchor).(string)
	if !ok {
		return time.Time{}
	}
	anchor, err := dto.ParseDate(raw)
	if err != nil {
		return time.Time{}
	}
	return anchor
}
