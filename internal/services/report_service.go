package services

import (
	"context"
	"fmt"

	"github.com/yukikurage/pmo-timeline-api/internal/clock"
	"github.com/yukikurage/pmo-timeline-api/internal/report"
	"github.com/yukikurage/pmo-timeline-api/internal/repository"
)

// ReportService gathers the export snapshot of the whole workspace or of a
// single project.
type ReportService struct {
	threadRepo repository.ThreadRepository
	taskRepo   repository.TaskRepository
	memberRepo repository.MemberRepository
	ledger     *LedgerService
	clock      clock.Clock
}

// NewReportService creates a new ReportService
func NewReportService(
	threadRepo repository.ThreadRepository,
	taskRepo repository.TaskRepository,
	memberRepo repository.MemberRepository,
	ledgerService *LedgerService,
	clk clock.Clock,
) *ReportService {
	return &ReportService{
		threadRepo: threadRepo,
		taskRepo:   taskRepo,
		memberRepo: memberRepo,
		ledger:     ledgerService,
		clock:      clk,
	}
}

// Snapshot loads threads, their tasks, active members and open ledger records.
func (s *ReportService) Snapshot(ctx context.Context, projectID *uint64) (report.Data, error) {
	threads, _, err := s.threadRepo.List(ctx, repository.ThreadFilter{ProjectID: projectID})
	if err != nil {
		return report.Data{}, fmt.Errorf("failed to list threads: %w", err)
	}

	threadIDs := make([]uint64, len(threads))
	inScope := make(map[uint64]struct{}, len(threads))
	for i, t := range threads {
		threadIDs[i] = t.ID
		inScope[t.ID] = struct{}{}
	}

	allTasks, _, err := s.taskRepo.List(ctx, repository.TaskFilter{SortByDueDate: true})
	if err != nil {
		return report.Data{}, fmt.Errorf("failed to list tasks: %w", err)
	}
	tasks := allTasks[:0]
	for _, t := range allTasks {
		if _, ok := inScope[t.ThreadID]; ok {
			tasks = append(tasks, t)
		}
	}

	members, err := s.memberRepo.List(ctx, false)
	if err != nil {
		return report.Data{}, fmt.Errorf("failed to list members: %w", err)
	}

	open, err := s.ledger.CurrentForThreads(ctx, threadIDs)
	if err != nil {
		return report.Data{}, err
	}

	return report.Data{
		Today:   s.clock.Now(),
		Threads: threads,
		Tasks:   tasks,
		Members: members,
		Open:    open,
	}, nil
}
