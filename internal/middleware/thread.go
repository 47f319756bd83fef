package middleware

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/pmo-timeline-api/internal/constants"
	apierrors "github.com/yukikurage/pmo-timeline-api/internal/errors"
	"github.com/yukikurage/pmo-timeline-api/internal/models"
	"github.com/yukikurage/pmo-timeline-api/internal/services"
)

// LoadThread resolves the :id route parameter to a thread and stores it in
// the context, answering 400 or 404 itself when that fails.
func LoadThread(threads *services.ThreadService) gin.HandlerFunc {
	return func(c *gin.Context) {
		threadID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid thread ID")
			return
		}

		thread, err := threads.GetThread(c.Request.Context(), threadID)
		if err != nil {
			if errors.Is(err, services.ErrThreadNotFound) {
				apierrors.NotFound(c, "Thread not found")
				return
			}
			apierrors.InternalError(c, "Failed to load thread")
			return
		}

		c.Set(constants.ContextKeyThread, thread)
		c.Next()
	}
}

// GetThread returns the thread stored by LoadThread
func GetThread(c *gin.Context) (*models.Thread, bool) {
	value, exists := c.Get(constants.ContextKeyThread)
	if !exists {
		return nil, false
	}
	thread, ok := value.(*models.Thread)
	return thread, ok
}
