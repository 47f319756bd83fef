package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yukikurage/pmo-timeline-api/internal/clock"
	"github.com/yukikurage/pmo-timeline-api/internal/events"
	"github.com/yukikurage/pmo-timeline-api/internal/ledger"
	"github.com/yukikurage/pmo-timeline-api/internal/metrics"
	"github.com/yukikurage/pmo-timeline-api/internal/models"
	"github.com/yukikurage/pmo-timeline-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrThreadNotFound            = errors.New("thread not found")
	ErrMemberNotFound            = errors.New("member not found")
	ErrMemberInactive            = errors.New("member is inactive")
	ErrInvalidRole               = errors.New("role must be lead or support")
	ErrAssignmentNotFound        = errors.New("assignment not found")
	ErrAssignmentAlreadyReleased = errors.New("assignment is already released")
)

// LedgerService drives the append-only assignment ledger of threads.
type LedgerService struct {
	threadRepo     repository.ThreadRepository
	memberRepo     repository.MemberRepository
	assignmentRepo repository.AssignmentRepository
	clock          clock.Clock
	publisher      events.Publisher
	recorder       metrics.Recorder
	invalidator    Invalidator
}

// LedgerOption customises a LedgerService.
type LedgerOption func(*LedgerService)

// WithPublisher sends grab and release events through p.
func WithPublisher(p events.Publisher) LedgerOption {
	return func(s *LedgerService) { s.publisher = p }
}

// WithRecorder counts grabs and releases on r.
func WithRecorder(r metrics.Recorder) LedgerOption {
	return func(s *LedgerService) { s.recorder = r }
}

// WithInvalidator drops cached views after every ledger write.
func WithInvalidator(i Invalidator) LedgerOption {
	return func(s *LedgerService) { s.invalidator = i }
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	threadRepo repository.ThreadRepository,
	memberRepo repository.MemberRepository,
	assignmentRepo repository.AssignmentRepository,
	clk clock.Clock,
	opts ...LedgerOption,
) *LedgerService {
	s := &LedgerService{
		threadRepo:     threadRepo,
		memberRepo:     memberRepo,
		assignmentRepo: assignmentRepo,
		clock:          clk,
		publisher:      events.Nop{},
		recorder:       metrics.Nop{},
		invalidator:    nopInvalidator{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GrabInput represents input for opening an assignment record
type GrabInput struct {
	ThreadID uint64
	MemberID uint64
	Role     models.AssignmentRole
	Note     string
}

// Grab opens a new record for the member on the thread. Several records may
// be open on the same thread at once.
func (s *LedgerService) Grab(ctx context.Context, input GrabInput) (*models.ThreadAssignment, error) {
	if !input.Role.Valid() {
		return nil, ErrInvalidRole
	}

	if _, err := s.findThread(ctx, input.ThreadID); err != nil {
		return nil, err
	}

	member, err := s.memberRepo.FindByID(ctx, input.MemberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	if !member.IsActive {
		return nil, ErrMemberInactive
	}

	record := &models.ThreadAssignment{
		ThreadID:  input.ThreadID,
		MemberID:  input.MemberID,
		Role:      input.Role,
		GrabbedAt: s.clock.Now(),
		Note:      input.Note,
	}
	if err := s.assignmentRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to grab thread: %w", err)
	}

	s.recorder.AssignmentGrabbed(record.Role)
	s.afterWrite(ctx, ledger.EventGrabbed, *record)

	return record, nil
}

// ReleaseInput represents input for closing an assignment record
type ReleaseInput struct {
	ThreadID     uint64
	AssignmentID uint64
	Note         string
}

// Release closes an open record of the thread. A non-empty note replaces the
// stored one. Releasing a closed record fails with ErrAssignmentAlreadyReleased.
func (s *LedgerService) Release(ctx context.Context, input ReleaseInput) (*models.ThreadAssignment, error) {
	record, err := s.assignmentRepo.FindByID(ctx, input.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to find assignment: %w", err)
	}
	if record.ThreadID != input.ThreadID {
		return nil, ErrAssignmentNotFound
	}
	if !record.IsOpen() {
		s.recorder.ReleaseConflict()
		return nil, ErrAssignmentAlreadyReleased
	}

	var note *string
	if input.Note != "" {
		note = &input.Note
	}

	releasedAt := s.clock.Now()
	ok, err := s.assignmentRepo.Release(ctx, record.ID, releasedAt, note)
	if err != nil {
		return nil, fmt.Errorf("failed to release assignment: %w", err)
	}
	if !ok {
		// lost the race against a concurrent release
		s.recorder.ReleaseConflict()
		return nil, ErrAssignmentAlreadyReleased
	}

	record.ReleasedAt = &releasedAt
	if note != nil {
		record.Note = *note
	}

	s.recorder.AssignmentReleased(record.Role)
	s.afterWrite(ctx, ledger.EventReleased, *record)

	return record, nil
}

// Current returns the open records of a thread, leads first.
func (s *LedgerService) Current(ctx context.Context, threadID uint64) ([]models.ThreadAssignment, error) {
	if _, err := s.findThread(ctx, threadID); err != nil {
		return nil, err
	}

	records, err := s.assignmentRepo.ListOpenByThread(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list current assignments: %w", err)
	}

	return ledger.ForDisplay(records), nil
}

// History returns every record of a thread, oldest grab first.
func (s *LedgerService) History(ctx context.Context, threadID uint64) ([]models.ThreadAssignment, error) {
	if _, err := s.findThread(ctx, threadID); err != nil {
		return nil, err
	}

	records, err := s.assignmentRepo.ListByThread(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignment history: %w", err)
	}

	return ledger.ByGrab(records), nil
}

// Events returns the grab/release stream of a thread, newest first.
func (s *LedgerService) Events(ctx context.Context, threadID uint64) ([]ledger.Event, error) {
	records, err := s.History(ctx, threadID)
	if err != nil {
		return nil, err
	}
	return ledger.Events(records), nil
}

// CurrentForThreads fetches the open records of many threads with a single
// query, keyed by thread id.
func (s *LedgerService) CurrentForThreads(ctx context.Context, threadIDs []uint64) (map[uint64][]models.ThreadAssignment, error) {
	records, err := s.assignmentRepo.ListOpenByThreads(ctx, threadIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list current assignments: %w", err)
	}
	return ledger.GroupByThread(records), nil
}

func (s *LedgerService) findThread(ctx context.Context, threadID uint64) (*models.Thread, error) {
	thread, err := s.threadRepo.FindByID(ctx, threadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrThreadNotFound
		}
		return nil, fmt.Errorf("failed to find thread: %w", err)
	}
	return thread, nil
}

func (s *LedgerService) afterWrite(ctx context.Context, kind ledger.EventKind, record models.ThreadAssignment) {
	s.invalidator.Invalidate()

	if err := s.publisher.Publish(ctx, events.NewAssignmentEvent(kind, record)); err != nil {
		slog.WarnContext(ctx, "failed to publish assignment event",
			"kind", kind,
			"assignment_id", record.ID,
			"thread_id", record.ThreadID,
			"error", err,
		)
	}
}
