// Package app wires repositories and services onto a database handle. The
// HTTP server and the pmoctl CLI share it.
package app

import (
	"io"
	"log/slog"
	"strings"

	"github.com/yukikurage/pmo-timeline-api/internal/clock"
	"github.com/yukikurage/pmo-timeline-api/internal/events"
	"github.com/yukikurage/pmo-timeline-api/internal/handlers"
	"github.com/yukikurage/pmo-timeline-api/internal/metrics"
	"github.com/yukikurage/pmo-timeline-api/internal/repository"
	"github.com/yukikurage/pmo-timeline-api/internal/services"
	"gorm.io/gorm"
)

// Options carries the optional collaborators. Zero values fall back to no-ops.
type Options struct {
	Clock     clock.Clock
	Publisher events.Publisher
	Recorder  metrics.Recorder
	Generator services.TaskGenerator
}

// NewServices builds every service over db. All timeline-affecting writes
// share one view cache.
func NewServices(db *gorm.DB, opts Options) handlers.Services {
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Publisher == nil {
		opts.Publisher = events.Nop{}
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.Nop{}
	}

	projectRepo := repository.NewProjectRepository(db)
	threadRepo := repository.NewThreadRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	stakeholderRepo := repository.NewStakeholderRepository(db)
	templateRepo := repository.NewTemplateRepository(db)

	cache := services.NewViewCache[*services.TimelineView]()

	ledgerService := services.NewLedgerService(threadRepo, memberRepo, assignmentRepo, opts.Clock,
		services.WithPublisher(opts.Publisher),
		services.WithRecorder(opts.Recorder),
		services.WithInvalidator(cache),
	)

	return handlers.Services{
		Projects:     services.NewProjectService(projectRepo, cache),
		Threads:      services.NewThreadService(threadRepo, projectRepo, templateRepo, opts.Clock, cache),
		Ledger:       ledgerService,
		Timeline:     services.NewTimelineService(threadRepo, memberRepo, ledgerService, opts.Clock, cache, opts.Recorder),
		Tasks:        services.NewTaskService(taskRepo, threadRepo, memberRepo, opts.Generator, opts.Clock),
		Members:      services.NewMemberService(memberRepo, cache),
		Stakeholders: services.NewStakeholderService(stakeholderRepo, threadRepo),
		Templates:    services.NewTemplateService(templateRepo),
		Reports:      services.NewReportService(threadRepo, taskRepo, memberRepo, ledgerService, opts.Clock),
	}
}

// NewLogger returns a slog logger writing text or JSON at the named level.
// Unknown levels fall back to info.
func NewLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
