package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yukikurage/pmo-timeline-api/internal/clock"
	"github.com/yukikurage/pmo-timeline-api/internal/constants"
	"github.com/yukikurage/pmo-timeline-api/internal/ledger"
	"github.com/yukikurage/pmo-timeline-api/internal/metrics"
	"github.com/yukikurage/pmo-timeline-api/internal/models"
	"github.com/yukikurage/pmo-timeline-api/internal/repository"
	"github.com/yukikurage/pmo-timeline-api/internal/timeline"
	"gorm.io/datatypes"
)

// TimelineView is everything needed to draw the weekly timeline.
type TimelineView struct {
	Today        time.Time               `json:"today"`
	Anchor       time.Time               `json:"anchor"`
	WindowStart  time.Time               `json:"window_start"`
	WindowEnd    time.Time               `json:"window_end"`
	Weeks        []timeline.Week         `json:"weeks"`
	TodayPercent *float64                `json:"today_percent"`
	Threads      []ThreadRow             `json:"threads"`
	Legend       []LegendEntry           `json:"legend"`
	Team         []timeline.MemberStatus `json:"team"`
}

// ThreadRow is one bar of the timeline.
type ThreadRow struct {
	ID          uint64                    `json:"id"`
	ProjectID   uint64                    `json:"project_id"`
	Title       string                    `json:"title"`
	ThreadType  models.ThreadType         `json:"thread_type"`
	Status      models.ThreadStatus       `json:"status"`
	StartDate   datatypes.Date            `json:"start_date"`
	DueDate     datatypes.Date            `json:"due_date"`
	OutcomeGoal string                    `json:"outcome_goal"`
	Position    timeline.Position         `json:"position"`
	Segments    []timeline.Segment        `json:"segments"`
	Bands       []timeline.Band           `json:"bands"`
	Urgency     timeline.Urgency          `json:"urgency"`
	Assignees   string                    `json:"assignees"`
	Assignments []models.ThreadAssignment `json:"assignments"`
}

// LegendEntry is an active member shown under the timeline.
type LegendEntry struct {
	MemberID   uint64            `json:"member_id"`
	Name       string            `json:"name"`
	Role       models.MemberRole `json:"role"`
	ColorClass string            `json:"color_class"`
	Color      string            `json:"color"`
}

// SegmentsView is the ownership breakdown of a single thread.
type SegmentsView struct {
	ThreadID uint64             `json:"thread_id"`
	Segments []timeline.Segment `json:"segments"`
	Bands    []timeline.Band    `json:"bands"`
}

// TimelineQuery selects what the timeline shows.
type TimelineQuery struct {
	ProjectID *uint64
	// Anchor is any day inside the first visible week; zero means today.
	Anchor time.Time
	Weeks  int
}

// TimelineService assembles timeline views from the ledger and the thread
// store. Views are cached until the next write.
type TimelineService struct {
	threadRepo repository.ThreadRepository
	memberRepo repository.MemberRepository
	ledger     *LedgerService
	clock      clock.Clock
	cache      *ViewCache[*TimelineView]
	recorder   metrics.Recorder
}

// NewTimelineService creates a new TimelineService. cache and recorder may be nil.
func NewTimelineService(
	threadRepo repository.ThreadRepository,
	memberRepo repository.MemberRepository,
	ledgerService *LedgerService,
	clk clock.Clock,
	cache *ViewCache[*TimelineView],
	recorder metrics.Recorder,
) *TimelineService {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &TimelineService{
		threadRepo: threadRepo,
		memberRepo: memberRepo,
		ledger:     ledgerService,
		clock:      clk,
		cache:      cache,
		recorder:   recorder,
	}
}

// Today returns the clock's current civil date as UTC midnight, the same
// form thread dates and anchors take.
func (s *TimelineService) Today() time.Time {
	now := s.clock.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// Build returns the timeline for query.
func (s *TimelineService) Build(ctx context.Context, query TimelineQuery) (*TimelineView, error) {
	started := time.Now()
	today := s.Today()

	anchor := query.Anchor
	if anchor.IsZero() {
		anchor = today
	}
	weeks := query.Weeks
	if weeks <= 0 {
		weeks = constants.TimelineWeeks
	}

	key := cacheKey(query.ProjectID, timeline.MondayOf(anchor), weeks, today)
	var generation uint64
	if s.cache != nil {
		if view, ok := s.cache.Load(key); ok {
			s.recorder.TimelineBuilt(true, time.Since(started))
			return view, nil
		}
		generation = s.cache.Generation()
	}

	view, err := s.build(ctx, query.ProjectID, anchor, weeks, today)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Store(key, generation, view)
	}
	s.recorder.TimelineBuilt(false, time.Since(started))

	return view, nil
}

func (s *TimelineService) build(ctx context.Context, projectID *uint64, anchor time.Time, weekCount int, today time.Time) (*TimelineView, error) {
	threads, _, err := s.threadRepo.List(ctx, repository.ThreadFilter{ProjectID: projectID})
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}

	members, err := s.memberRepo.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	index := timeline.IndexMembers(members)

	threadIDs := make([]uint64, len(threads))
	for i, t := range threads {
		threadIDs[i] = t.ID
	}
	open, err := s.ledger.CurrentForThreads(ctx, threadIDs)
	if err != nil {
		return nil, err
	}

	weeks := timeline.Weeks(anchor, weekCount)
	windowStart, windowEnd := timeline.Window(weeks)

	view := &TimelineView{
		Today:        today,
		Anchor:       weeks[0].Start,
		WindowStart:  windowStart,
		WindowEnd:    windowEnd,
		Weeks:        weeks,
		TodayPercent: timeline.TodayMarker(today, windowStart, windowEnd),
		Threads:      make([]ThreadRow, 0, len(threads)),
		Legend:       []LegendEntry{},
	}

	for _, t := range threads {
		records := open[t.ID]
		display := ledger.ForDisplay(records)
		view.Threads = append(view.Threads, ThreadRow{
			ID:          t.ID,
			ProjectID:   t.ProjectID,
			Title:       t.Title,
			ThreadType:  t.ThreadType,
			Status:      t.Status,
			StartDate:   t.StartDate,
			DueDate:     t.DueDate,
			OutcomeGoal: t.OutcomeGoal,
			Position:    timeline.Layout(t.Start(), t.Due(), windowStart, windowEnd),
			Segments:    timeline.Segments(t, records, index),
			Bands:       timeline.Bands(records, index),
			Urgency:     timeline.UrgencyOf(t.Due(), today),
			Assignees:   timeline.AssigneeNames(display, index),
			Assignments: display,
		})
	}

	active := make([]models.Member, 0, len(members))
	for _, m := range members {
		if !m.IsActive {
			continue
		}
		active = append(active, m)
		view.Legend = append(view.Legend, LegendEntry{
			MemberID:   m.ID,
			Name:       m.Name,
			Role:       m.Role,
			ColorClass: timeline.MemberColorClass(m.Role),
			Color:      m.Color,
		})
	}
	view.Team = timeline.TeamStatus(active, threads, open, today)

	return view, nil
}

// Segments returns the ownership breakdown of one thread. By default only
// open records are apportioned; includeReleased walks the full history.
func (s *TimelineService) Segments(ctx context.Context, threadID uint64, includeReleased bool) (*SegmentsView, error) {
	thread, err := s.ledger.findThread(ctx, threadID)
	if err != nil {
		return nil, err
	}

	var records []models.ThreadAssignment
	if includeReleased {
		records, err = s.ledger.History(ctx, threadID)
	} else {
		records, err = s.ledger.Current(ctx, threadID)
	}
	if err != nil {
		return nil, err
	}

	members, err := s.memberRepo.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	index := timeline.IndexMembers(members)

	return &SegmentsView{
		ThreadID: thread.ID,
		Segments: timeline.Segments(*thread, records, index),
		Bands:    timeline.Bands(records, index),
	}, nil
}

func cacheKey(projectID *uint64, monday time.Time, weeks int, today time.Time) string {
	project := "all"
	if projectID != nil {
		project = fmt.Sprintf("%d", *projectID)
	}
	return fmt.Sprintf("project=%s|from=%s|weeks=%d|today=%s",
		project,
		monday.Format(constants.DateLayout),
		weeks,
		today.Format(constants.DateLayout),
	)
}
