package dto

import (
	"time"

	"github.com/yukikurage/pmo-timeline-api/internal/models"
	"github.com/yukikurage/pmo-timeline-api/internal/timeline"
	"github.com/yukikurage/pmo-timeline-api/internal/utils"
)

// ThreadDTO is a thread with its D-day urgency
type ThreadDTO struct {
	models.Thread
	Urgency timeline.Urgency `json:"urgency"`
}

// ThreadListResponse represents a paginated list of threads
type ThreadListResponse struct {
	Threads    []ThreadDTO              `json:"threads"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

func ToThreadDTO(thread models.Thread, today time.Time) ThreadDTO {
	return ThreadDTO{
		Thread:  thread,
		Urgency: timeline.UrgencyOf(thread.Due(), today),
	}
}

func ToThreadListResponse(threads []models.Thread, today time.Time, params utils.PaginationParams, total int64) ThreadListResponse {
	items := make([]ThreadDTO, len(threads))
	for i, t := range threads {
		items[i] = ToThreadDTO(t, today)
	}

	return ThreadListResponse{
		Threads: items,
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	}
}
