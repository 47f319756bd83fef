package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/pmo-timeline-api/internal/clock"
	"github.com/yukikurage/pmo-timeline-api/internal/events"
	"github.com/yukikurage/pmo-timeline-api/internal/ledger"
	"github.com/yukikurage/pmo-timeline-api/internal/models"
	"github.com/yukikurage/pmo-timeline-api/internal/repository"
	"github.com/yukikurage/pmo-timeline-api/internal/timeline"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.AssignmentEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.AssignmentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() {}

type countingRecorder struct {
	mu                           sync.Mutex
	grabbed, released, conflicts int
	builds                       map[bool]int
}

func (r *countingRecorder) AssignmentGrabbed(models.AssignmentRole) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.grabbed++
}

func (r *countingRecorder) AssignmentReleased(models.AssignmentRole) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.released++
}

func (r *countingRecorder) ReleaseConflict() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conflicts++
}

func (r *countingRecorder) TimelineBuilt(cached bool, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.builds == nil {
		r.builds = map[bool]int{}
	}
	r.builds[cached]++
}
func (r *countingRecorder) HTTPRequest(string, string, int, time.Duration) {}

type stubGenerator struct {
	tasks []GeneratedTask
	err   error
	req   GenerateRequest
}

func (g *stubGenerator) GenerateTasks(_ context.Context, req GenerateRequest) ([]GeneratedTask, error) {
	g.req = req
	return g.tasks, g.err
}

// ServiceTestSuite wires every service onto one in-memory database
type ServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	db        *gorm.DB
	clock     *clock.Fixed
	cache     *ViewCache[*TimelineView]
	publisher *recordingPublisher
	recorder  *countingRecorder
	generator *stubGenerator

	projects     *ProjectService
	threads      *ThreadService
	tasks        *TaskService
	members      *MemberService
	stakeholders *StakeholderService
	templates    *TemplateService
	ledger       *LedgerService
	timeline     *TimelineService
	reports      *ReportService
}

func (suite *ServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)
	suite.Require().NoError(suite.db.AutoMigrate(models.All()...))

	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	suite.ctx = context.Background()
	suite.clock = clock.NewFixed(time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC))
	suite.cache = NewViewCache[*TimelineView]()
	suite.publisher = &recordingPublisher{}
	suite.recorder = &countingRecorder{}
	suite.generator = &stubGenerator{}

	projectRepo := repository.NewProjectRepository(suite.db)
	threadRepo := repository.NewThreadRepository(suite.db)
	taskRepo := repository.NewTaskRepository(suite.db)
	memberRepo := repository.NewMemberRepository(suite.db)
	assignmentRepo := repository.NewAssignmentRepository(suite.db)
	stakeholderRepo := repository.NewStakeholderRepository(suite.db)
	templateRepo := repository.NewTemplateRepository(suite.db)

	suite.ledger = NewLedgerService(threadRepo, memberRepo, assignmentRepo, suite.clock,
		WithPublisher(suite.publisher),
		WithRecorder(suite.recorder),
		WithInvalidator(suite.cache),
	)
	suite.projects = NewProjectService(projectRepo, suite.cache)
	suite.threads = NewThreadService(threadRepo, projectRepo, templateRepo, suite.clock, suite.cache)
	suite.tasks = NewTaskService(taskRepo, threadRepo, memberRepo, suite.generator, suite.clock)
	suite.members = NewMemberService(memberRepo, suite.cache)
	suite.stakeholders = NewStakeholderService(stakeholderRepo, threadRepo)
	suite.templates = NewTemplateService(templateRepo)
	suite.timeline = NewTimelineService(threadRepo, memberRepo, suite.ledger, suite.clock, suite.cache, suite.recorder)
	suite.reports = NewReportService(threadRepo, taskRepo, memberRepo, suite.ledger, suite.clock)
}

func (suite *ServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func ptr[T any](v T) *T {
	return &v
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func (suite *ServiceTestSuite) createProject(name string) *models.Project {
	project, err := suite.projects.CreateProject(suite.ctx, ProjectInput{Name: ptr(name)})
	suite.Require().NoError(err)
	return project
}

func (suite *ServiceTestSuite) createThread(projectID uint64, title, start, due string) *models.Thread {
	thread, err := suite.threads.CreateThread(suite.ctx, CreateThreadInput{
		ProjectID: projectID,
		Title:     title,
		StartDate: ptr(day(start)),
		DueDate:   ptr(day(due)),
	})
	suite.Require().NoError(err)
	return thread
}

func (suite *ServiceTestSuite) createMember(name string, role models.MemberRole) *models.Member {
	member, err := suite.members.CreateMember(suite.ctx, MemberInput{Name: ptr(name), Role: ptr(role)})
	suite.Require().NoError(err)
	return member
}

func (suite *ServiceTestSuite) grab(threadID, memberID uint64, role models.AssignmentRole) *models.ThreadAssignment {
	record, err := suite.ledger.Grab(suite.ctx, GrabInput{ThreadID: threadID, MemberID: memberID, Role: role})
	suite.Require().NoError(err)
	return record
}

// Ledger

func (suite *ServiceTestSuite) TestGrab_Validation() {
	project := suite.createProject("Alpha")
	thread := suite.createThread(project.ID, "Vendor contract", "2024-01-01", "2024-01-11")
	member := suite.createMember("Alice", models.MemberRolePM)

	_, err := suite.ledger.Grab(suite.ctx, GrabInput{ThreadID: thread.ID, MemberID: member.ID, Role: "owner"})
	suite.ErrorIs(err, ErrInvalidRole)

	_, err = suite.ledger.Grab(suite.ctx, GrabInput{ThreadID: 999, MemberID: member.ID, Role: models.RoleLead})
	suite.ErrorIs(err, ErrThreadNotFound)

	_, err = suite.ledger.Grab(suite.ctx, GrabInput{ThreadID: thread.ID, MemberID: 999, Role: models.RoleLead})
	suite.ErrorIs(err, ErrMemberNotFound)

	suite.Require().NoError(suite.members.DeactivateMember(suite.ctx, member.ID))
	_, err = suite.ledger.Grab(suite.ctx, GrabInput{ThreadID: thread.ID, MemberID: member.ID, Role: models.RoleLead})
	suite.ErrorIs(err, ErrMemberInactive)

	suite.Zero(suite.recorder.grabbed)
	suite.Empty(suite.publisher.events)
}

func (suite *ServiceTestSuite) TestGrab_AllowsConcurrentHolders() {
	project := suite.createProject("Alpha")
	thread := suite.createThread(project.ID, "Vendor contract", "2024-01-01", "2024-01-11")
	alice := suite.createMember("Alice", models.MemberRolePM)
	bora := suite.createMember("Bora", models.MemberRoleIntern)

	first := suite.grab(thread.ID, alice.ID, models.RoleLead)
	suite.clock.Advance(time.Hour)
	second := suite.grab(thread.ID, bora.ID, models.RoleSupport)

	suite.True(first.IsOpen())
	suite.Equal(suite.clock.Now(), second.GrabbedAt)

	current, err := suite.ledger.Current(suite.ctx, thread.ID)
	suite.Require().NoError(err)
	suite.Len(current, 2)
	suite.Equal(first.ID, current[0].ID)

	suite.Equal(2, suite.recorder.grabbed)
	suite.Require().Len(suite.publisher.events, 2)
	suite.Equal(ledger.EventGrabbed, suite.publisher.events[0].Kind)
	suite.Equal(thread.ID, suite.publisher.events[1].ThreadID)
}

func (suite *ServiceTestSuite) TestGrab_ConcurrentCallsBothOpen() {
	project := suite.createProject("Alpha")
	thread := suite.createThread(project.ID, "Vendor contract", "2024-01-01", "2024-01-11")
	alice := suite.createMember("Alice", models.MemberRolePM)
	bora := suite.createMember("Bora", models.MemberRoleIntern)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, memberID := range []uint64{alice.ID, bora.ID} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = suite.ledger.Grab(suite.ctx, GrabInput{ThreadID: thread.ID, MemberID: memberID, Role: models.RoleLead})
		}()
	}
	wg.Wait()
	suite.Require().NoError(errs[0])
	suite.Require().NoError(errs[1])

	current, err := suite.ledger.Current(suite.ctx, thread.ID)
	suite.Require().NoError(err)
	suite.Require().Len(current, 2)
	suite.NotEqual(current[0].ID, current[1].ID)
	suite.ElementsMatch([]uint64{alice.ID, bora.ID}, []uint64{current[0].MemberID, current[1].MemberID})
	for _, r := range current {
		suite.True(r.IsOpen())
	}
}

func (suite *ServiceTestSuite) TestRelease() {
	project := suite.createProject("Alpha")
	thread := suite.createThread(project.ID, "Vendor contract", "2024-01-01", "2024-01-11")
	other := suite.createThread(project.ID, "Launch", "2024-01-01", "2024-01-20")
	alice := suite.createMember("Alice", models.MemberRolePM)
	record := suite.grab(thread.ID, alice.ID, models.RoleLead)

	_, err := suite.ledger.Release(suite.ctx, ReleaseInput{ThreadID: other.ID, AssignmentID: record.ID})
	suite.ErrorIs(err, ErrAssignmentNotFound)

	_, err = suite.ledger.Release(suite.ctx, ReleaseInput{ThreadID: thread.ID, AssignmentID: 999})
	suite.ErrorIs(err, ErrAssignmentNotFound)

	suite.clock.Advance(24 * time.Hour)
	released, err := suite.ledger.Release(suite.ctx, ReleaseInput{ThreadID: thread.ID, AssignmentID: record.ID, Note: "handed over"})
	suite.Require().NoError(err)
	suite.Require().NotNil(released.ReleasedAt)
	suite.Equal(suite.clock.Now(), *released.ReleasedAt)
	suite.Equal("handed over", released.Note)

	_, err = suite.ledger.Release(suite.ctx, ReleaseInput{ThreadID: thread.ID, AssignmentID: record.ID})
	suite.ErrorIs(err, ErrAssignmentAlreadyReleased)
	suite.Equal(1, suite.recorder.conflicts)

	current, err := suite.ledger.Current(suite.ctx, thread.ID)
	suite.Require().NoError(err)
	suite.Empty(current)

	history, err := suite.ledger.History(suite.ctx, thread.ID)
	suite.Require().NoError(err)
	suite.Len(history, 1)

	evts, err := suite.ledger.Events(suite.ctx, thread.ID)
	suite.Require().NoError(err)
	suite.Require().Len(evts, 2)
	suite.Equal(ledger.EventReleased, evts[0].Kind)
	suite.Equal(ledger.EventGrabbed, evts[1].Kind)
}

func (suite *ServiceTestSuite) TestPublishFailureDoesNotFailGrab() {
	project := suite.createProject("Alpha")
	thread := suite.createThread(project.ID, "Vendor contract", "2024-01-01", "2024-01-11")
	alice := suite.createMember("Alice", models.MemberRolePM)
	suite.publisher.err = errors.New("broker down")

	_, err := suite.ledger.Grab(suite.ctx, GrabInput{ThreadID: thread.ID, MemberID: alice.ID, Role: models.RoleLead})
	suite.NoError(err)
}

func (suite *ServiceTestSuite) TestHistoryOfMissingThread() {
	_, err := suite.ledger.History(suite.ctx, 42)
	suite.ErrorIs(err, ErrThreadNotFound)
}

// Timeline

func (suite *ServiceTestSuite) TestTimeline_Build() {
	project := suite.createProject("Alpha")
	thread := suite.createThread(project.ID, "Vendor contract", "2024-01-01", "2024-01-11")
	alice := suite.createMember("Alice", models.MemberRolePM)
	bora := suite.createMember("Bora", models.MemberRoleIntern)
	gone := suite.createMember("Chen", models.MemberRoleMember)

	suite.clock.T = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.grab(thread.ID, alice.ID, models.RoleLead)
	suite.clock.T = time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)
	suite.grab(thread.ID, bora.ID, models.RoleSupport)
	suite.Require().NoError(suite.members.DeactivateMember(suite.ctx, gone.ID))
	suite.clock.T = time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)

	view, err := suite.timeline.Build(suite.ctx, TimelineQuery{})
	suite.Require().NoError(err)

	suite.Equal(day("2024-01-08"), view.Anchor)
	suite.Len(view.Weeks, 4)
	suite.Require().NotNil(view.TodayPercent)
	suite.InDelta(0, *view.TodayPercent, 1e-9)

	suite.Require().Len(view.Threads, 1)
	row := view.Threads[0]
	suite.Equal("Alice, Bora", row.Assignees)
	suite.Equal(3, row.Urgency.DDay)
	suite.Require().Len(row.Segments, 2)
	suite.InDelta(50, row.Segments[0].WidthPercent, 1e-9)
	suite.Equal("Alice", row.Segments[0].Label)
	suite.Equal("B", row.Segments[1].Label)
	suite.Len(row.Bands, 2)

	suite.Len(view.Legend, 2)
	suite.Require().Len(view.Team, 2)
	suite.Equal(alice.ID, view.Team[0].MemberID)
}

func (suite *ServiceTestSuite) TestTimeline_NonUTCClockUsesCivilDate() {
	seoul := time.FixedZone("KST", 9*60*60)
	suite.clock.T = time.Date(2024, 1, 8, 10, 0, 0, 0, seoul)
	project := suite.createProject("Alpha")
	suite.createThread(project.ID, "Vendor contract", "2024-01-08", "2024-01-15")

	view, err := suite.timeline.Build(suite.ctx, TimelineQuery{})
	suite.Require().NoError(err)
	suite.Equal(time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), view.Today)
	suite.Equal(time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), view.WindowStart)
	suite.Require().NotNil(view.TodayPercent)
	suite.Zero(*view.TodayPercent)
	suite.Require().Len(view.Threads, 1)
	suite.Zero(view.Threads[0].Position.LeftPercent)

	anchored, err := suite.timeline.Build(suite.ctx, TimelineQuery{Anchor: day("2024-01-08")})
	suite.Require().NoError(err)
	suite.Equal(view.WindowStart, anchored.WindowStart)
	suite.Require().NotNil(anchored.TodayPercent)
	suite.Zero(*anchored.TodayPercent)

	// still the 7th in UTC
	suite.clock.T = time.Date(2024, 1, 8, 7, 30, 0, 0, seoul)
	suite.Equal(time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), suite.timeline.Today())
}

func (suite *ServiceTestSuite) TestTimeline_CacheInvalidatedByWrites() {
	project := suite.createProject("Alpha")
	thread := suite.createThread(project.ID, "Vendor contract", "2024-01-01", "2024-01-11")
	alice := suite.createMember("Alice", models.MemberRolePM)

	first, err := suite.timeline.Build(suite.ctx, TimelineQuery{})
	suite.Require().NoError(err)
	second, err := suite.timeline.Build(suite.ctx, TimelineQuery{})
	suite.Require().NoError(err)
	suite.Same(first, second)
	suite.Equal(1, suite.recorder.builds[true])

	suite.grab(thread.ID, alice.ID, models.RoleLead)
	suite.Zero(suite.cache.Len())

	third, err := suite.timeline.Build(suite.ctx, TimelineQuery{})
	suite.Require().NoError(err)
	suite.NotSame(first, third)
	suite.Equal("Alice", third.Threads[0].Assignees)
}

func (suite *ServiceTestSuite) TestTimeline_ProjectFilterAndSegments() {
	alpha := suite.createProject("Alpha")
	beta := suite.createProject("Beta")
	thread := suite.createThread(alpha.ID, "Vendor contract", "2024-01-01", "2024-01-11")
	suite.createThread(beta.ID, "Hiring", "2024-01-01", "2024-01-30")
	alice := suite.createMember("Alice", models.MemberRolePM)

	view, err := suite.timeline.Build(suite.ctx, TimelineQuery{ProjectID: &alpha.ID})
	suite.Require().NoError(err)
	suite.Require().Len(view.Threads, 1)
	suite.Equal(thread.ID, view.Threads[0].ID)

	record := suite.grab(thread.ID, alice.ID, models.RoleLead)
	suite.clock.Advance(time.Hour)
	_, err = suite.ledger.Release(suite.ctx, ReleaseInput{ThreadID: thread.ID, AssignmentID: record.ID})
	suite.Require().NoError(err)

	segs, err := suite.timeline.Segments(suite.ctx, thread.ID, false)
	suite.Require().NoError(err)
	suite.Require().Len(segs.Segments, 1)
	suite.True(segs.Segments[0].Remaining)

	segs, err = suite.timeline.Segments(suite.ctx, thread.ID, true)
	suite.Require().NoError(err)
	suite.Require().Len(segs.Segments, 2)
	suite.Equal(timeline.ColorClassGap, segs.Segments[0].ColorClass)
	suite.Equal("Alice", segs.Segments[1].Label)

	_, err = suite.timeline.Segments(suite.ctx, 999, false)
	suite.ErrorIs(err, ErrThreadNotFound)
}

// Projects and threads

func (suite *ServiceTestSuite) TestProject_Validation() {
	_, err := suite.projects.CreateProject(suite.ctx, ProjectInput{Name: ptr("  ")})
	suite.ErrorIs(err, ErrNameRequired)

	_, err = suite.projects.CreateProject(suite.ctx, ProjectInput{Name: ptr("Alpha"), Status: ptr(models.ThreadStatus("archived"))})
	suite.ErrorIs(err, ErrInvalidStatus)

	_, err = suite.projects.GetProject(suite.ctx, 404)
	suite.ErrorIs(err, ErrProjectNotFound)

	project := suite.createProject("Alpha")
	updated, err := suite.projects.UpdateProject(suite.ctx, project.ID, ProjectInput{Status: ptr(models.ThreadStatusOnHold)})
	suite.Require().NoError(err)
	suite.Equal(models.ThreadStatusOnHold, updated.Status)
	suite.Equal("Alpha", updated.Name)
}

func (suite *ServiceTestSuite) TestProject_DeleteCascades() {
	project := suite.createProject("Alpha")
	thread := suite.createThread(project.ID, "Vendor contract", "2024-01-01", "2024-01-11")
	alice := suite.createMember("Alice", models.MemberRolePM)
	suite.grab(thread.ID, alice.ID, models.RoleLead)

	suite.Require().NoError(suite.projects.DeleteProject(suite.ctx, project.ID))

	_, err := suite.threads.GetThread(suite.ctx, thread.ID)
	suite.ErrorIs(err, ErrThreadNotFound)
	suite.ErrorIs(suite.projects.DeleteProject(suite.ctx, project.ID), ErrProjectNotFound)
}

func (suite *ServiceTestSuite) TestThread_Create() {
	project := suite.createProject("Alpha")

	_, err := suite.threads.CreateThread(suite.ctx, CreateThreadInput{ProjectID: project.ID, DueDate: ptr(day("2024-02-01"))})
	suite.ErrorIs(err, ErrTitleRequired)

	_, err = suite.threads.CreateThread(suite.ctx, CreateThreadInput{ProjectID: project.ID, Title: "No due"})
	suite.ErrorIs(err, ErrDueDateRequired)

	_, err = suite.threads.CreateThread(suite.ctx, CreateThreadInput{ProjectID: 999, Title: "Orphan", DueDate: ptr(day("2024-02-01"))})
	suite.ErrorIs(err, ErrProjectNotFound)

	_, err = suite.threads.CreateThread(suite.ctx, CreateThreadInput{
		ProjectID: project.ID,
		Title:     "Bad status",
		DueDate:   ptr(day("2024-02-01")),
		Status:    ptr(models.ThreadStatus("paused")),
	})
	suite.ErrorIs(err, ErrInvalidStatus)

	thread, err := suite.threads.CreateThread(suite.ctx, CreateThreadInput{
		ProjectID:  project.ID,
		Title:      "Kickoff",
		ThreadType: "brainstorm",
		DueDate:    ptr(day("2024-02-01")),
	})
	suite.Require().NoError(err)
	suite.Equal(day("2024-01-08"), thread.Start())
	suite.Equal(models.ThreadTypeOther, thread.ThreadType)
	suite.Equal(models.ThreadStatusActive, thread.Status)
}

func (suite *ServiceTestSuite) TestThread_UpdateAndList() {
	alpha := suite.createProject("Alpha")
	beta := suite.createProject("Beta")
	thread := suite.createThread(alpha.ID, "Vendor contract", "2024-01-01", "2024-01-11")
	suite.createThread(alpha.ID, "Launch", "2024-01-01", "2024-01-05")

	updated, err := suite.threads.UpdateThread(suite.ctx, thread.ID, UpdateThreadInput{
		ProjectID: &beta.ID,
		Status:    ptr(models.ThreadStatusCompleted),
	})
	suite.Require().NoError(err)
	suite.Equal(beta.ID, updated.ProjectID)
	suite.Equal("Vendor contract", updated.Title)

	_, err = suite.threads.UpdateThread(suite.ctx, thread.ID, UpdateThreadInput{Status: ptr(models.ThreadStatus("done"))})
	suite.ErrorIs(err, ErrInvalidStatus)

	_, err = suite.threads.UpdateThread(suite.ctx, thread.ID, UpdateThreadInput{ProjectID: ptr(uint64(999))})
	suite.ErrorIs(err, ErrProjectNotFound)

	threads, total, err := suite.threads.ListThreads(suite.ctx, ListThreadsInput{ProjectID: &alpha.ID})
	suite.Require().NoError(err)
	suite.EqualValues(1, total)
	suite.Equal("Launch", threads[0].Title)

	_, _, err = suite.threads.ListThreads(suite.ctx, ListThreadsInput{Status: ptr(models.ThreadStatus("x"))})
	suite.ErrorIs(err, ErrInvalidStatus)
}

func (suite *ServiceTestSuite) TestThread_CreateFromTemplate() {
	project := suite.createProject("Alpha")
	template, err := suite.templates.CreateTemplate(suite.ctx, TemplateInput{
		Name:       ptr("Contract negotiation"),
		ThreadType: ptr("negotiation"),
		Tasks: []TemplateTaskInput{
			{Title: "Send draft", DayOffset: -7, Priority: "high"},
			{Title: "Sign", DayOffset: 0},
		},
	})
	suite.Require().NoError(err)

	thread, err := suite.threads.CreateFromTemplate(suite.ctx, CreateFromTemplateInput{
		TemplateID: template.ID,
		ProjectID:  project.ID,
		DueDate:    ptr(day("2024-02-15")),
	})
	suite.Require().NoError(err)
	suite.Equal("Contract negotiation", thread.Title)
	suite.Equal(models.ThreadTypeNegotiation, thread.ThreadType)

	tasks, _, err := suite.tasks.ListTasks(suite.ctx, ListTasksInput{ThreadID: &thread.ID, SortByDueDate: true})
	suite.Require().NoError(err)
	suite.Require().Len(tasks, 2)
	suite.Equal("Send draft", tasks[0].Title)
	suite.Equal(day("2024-02-08"), time.Time(*tasks[0].DueDate).UTC())
	suite.Equal(models.PriorityHigh, tasks[0].Priority)
	suite.Equal(day("2024-02-15"), time.Time(*tasks[1].DueDate).UTC())
	suite.Equal(models.PriorityMedium, tasks[1].Priority)

	_, err = suite.threads.CreateFromTemplate(suite.ctx, CreateFromTemplateInput{TemplateID: 999, ProjectID: project.ID, DueDate: ptr(day("2024-02-15"))})
	suite.ErrorIs(err, ErrTemplateNotFound)
}

func (suite *ServiceTestSuite) TestThread_DeleteCascades() {
	project := suite.createProject("Alpha")
	thread := suite.createThread(project.ID, "Vendor contract", "2024-01-01", "2024-01-11")
	alice := suite.createMember("Alice", models.MemberRolePM)
	suite.grab(thread.ID, alice.ID, models.RoleLead)

	task, err := suite.tasks.CreateTask(suite.ctx, CreateTaskInput{ThreadID: thread.ID, Title: "Draft"})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.threads.DeleteThread(suite.ctx, thread.ID))

	_, err = suite.tasks.GetTask(suite.ctx, task.ID)
	suite.ErrorIs(err, ErrTaskNotFound)

	_, err = suite.ledger.History(suite.ctx, thread.ID)
	suite.ErrorIs(err, ErrThreadNotFound)

	var count int64
	suite.Require().NoError(suite.db.Model(&models.ThreadAssignment{}).Where("thread_id = ?", thread.ID).Count(&count).Error)
	suite.Zero(count)
}

// Tasks

func (suite *ServiceTestSuite) TestTask_CompletedAtFollowsStatus() {
	project := suite.createProject("Alpha")
	thread := suite.createThread(project.ID, "Vendor contract", "2024-01-01", "2024-01-11")

	task, err := suite.tasks.CreateTask(suite.ctx, CreateTaskInput{ThreadID: thread.ID, Title: "Draft"})
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusPending, task.Status)
	suite.Equal(models.PriorityMedium, task.Priority)
	suite.Nil(task.CompletedAt)

	task, err = suite.tasks.UpdateTask(suite.ctx, task.ID, UpdateTaskInput{Status: ptr(models.TaskStatusCompleted)})
	suite.Require().NoError(err)
	suite.Require().NotNil(task.CompletedAt)
	suite.Equal(suite.clock.Now(), *task.CompletedAt)

	task, err = suite.tasks.UpdateTask(suite.ctx, task.ID, UpdateTaskInput{Status: ptr(models.TaskStatusInProgress)})
	suite.Require().NoError(err)
	suite.Nil(task.CompletedAt)
}

func (suite *ServiceTestSuite) TestTask_Validation() {
	project := suite.createProject("Alpha")
	thread := suite.createThread(project.ID, "Vendor contract", "2024-01-01", "2024-01-11")

	_, err := suite.tasks.CreateTask(suite.ctx, CreateTaskInput{ThreadID: thread.ID})
	suite.ErrorIs(err, ErrTitleRequired)

	_, err = suite.tasks.CreateTask(suite.ctx, CreateTaskInput{ThreadID: 999, Title: "Draft"})
	suite.ErrorIs(err, ErrThreadNotFound)

	_, err = suite.tasks.CreateTask(suite.ctx, CreateTaskInput{ThreadID: thread.ID, Title: "Draft", AssigneeID: ptr(uint64(77))})
	suite.ErrorIs(err, ErrAssigneeNotFound)

	_, err = suite.tasks.CreateTask(suite.ctx, CreateTaskInput{ThreadID: thread.ID, Title: "Draft", Priority: ptr(models.TaskPriority("urgent"))})
	suite.ErrorIs(err, ErrInvalidPriority)

	_, err = suite.tasks.CreateTask(suite.ctx, CreateTaskInput{ThreadID: thread.ID, Title: "Draft", Status: ptr(models.TaskStatus("blocked"))})
	suite.ErrorIs(err, ErrInvalidStatus)

	alice := suite.createMember("Alice", models.MemberRolePM)
	task, err := suite.tasks.CreateTask(suite.ctx, CreateTaskInput{ThreadID: thread.ID, Title: "Draft", AssigneeID: &alice.ID, DueDate: ptr(day("2024-01-10"))})
	suite.Require().NoError(err)

	task, err = suite.tasks.UpdateTask(suite.ctx, task.ID, UpdateTaskInput{ClearAssignee: true, ClearDueDate: true})
	suite.Require().NoError(err)
	suite.Nil(task.AssigneeID)
	suite.Nil(task.DueDate)

	suite.ErrorIs(suite.tasks.DeleteTask(suite.ctx, 999), ErrTaskNotFound)
}

func (suite *ServiceTestSuite) TestTask_Generate() {
	project := suite.createProject("Alpha")
	thread := suite.createThread(project.ID, "Vendor contract", "2024-01-01", "2024-01-31")

	suite.generator.tasks = []GeneratedTask{
		{Title: "Prepare pricing", Priority: "high", DueDate: ptr(day("2024-01-15"))},
		{Title: "  "},
		{Title: "Old item", Priority: "whenever", DueDate: ptr(day("2023-12-01"))},
	}

	suggested, saved, err := suite.tasks.GenerateTasks(suite.ctx, GenerateTasksInput{ThreadID: thread.ID, Text: "notes"})
	suite.Require().NoError(err)
	suite.Nil(saved)
	suite.Require().Len(suggested, 2)
	suite.Equal("medium", suggested[1].Priority)
	suite.Nil(suggested[1].DueDate)
	suite.Equal(thread.ID, suite.generator.req.Thread.ID)
	suite.Equal(suite.clock.Now(), suite.generator.req.Now)

	_, saved, err = suite.tasks.GenerateTasks(suite.ctx, GenerateTasksInput{ThreadID: thread.ID, Text: "notes", Save: true})
	suite.Require().NoError(err)
	suite.Require().Len(saved, 2)
	suite.NotZero(saved[0].ID)
	suite.Equal(models.PriorityHigh, saved[0].Priority)

	_, _, err = suite.tasks.GenerateTasks(suite.ctx, GenerateTasksInput{ThreadID: thread.ID})
	suite.ErrorIs(err, ErrTextRequired)

	suite.generator.tasks = nil
	_, _, err = suite.tasks.GenerateTasks(suite.ctx, GenerateTasksInput{ThreadID: thread.ID, Text: "notes"})
	suite.ErrorIs(err, ErrAINoTasksGenerated)

	suite.generator.tasks = []GeneratedTask{{Title: ""}}
	_, _, err = suite.tasks.GenerateTasks(suite.ctx, GenerateTasksInput{ThreadID: thread.ID, Text: "notes"})
	suite.ErrorIs(err, ErrAINoValidTasks)

	noAI := NewTaskService(repository.NewTaskRepository(suite.db), repository.NewThreadRepository(suite.db), repository.NewMemberRepository(suite.db), nil, suite.clock)
	_, _, err = noAI.GenerateTasks(suite.ctx, GenerateTasksInput{ThreadID: thread.ID, Text: "notes"})
	suite.ErrorIs(err, ErrAIServiceNotConfigured)
}

// Members, stakeholders and templates

func (suite *ServiceTestSuite) TestMember_Lifecycle() {
	_, err := suite.members.CreateMember(suite.ctx, MemberInput{Name: ptr("Dana"), Role: ptr(models.MemberRole("boss"))})
	suite.ErrorIs(err, ErrInvalidMemberRole)

	alice := suite.createMember("Alice", models.MemberRolePM)
	bora := suite.createMember("Bora", models.MemberRoleIntern)
	suite.Equal("#374151", alice.Color)

	suite.Require().NoError(suite.members.DeactivateMember(suite.ctx, bora.ID))
	suite.Require().NoError(suite.members.DeactivateMember(suite.ctx, bora.ID))
	suite.ErrorIs(suite.members.DeactivateMember(suite.ctx, 999), ErrMemberNotFound)

	active, err := suite.members.ListMembers(suite.ctx, false)
	suite.Require().NoError(err)
	suite.Len(active, 1)

	all, err := suite.members.ListMembers(suite.ctx, true)
	suite.Require().NoError(err)
	suite.Len(all, 2)

	got, err := suite.members.GetMember(suite.ctx, bora.ID)
	suite.Require().NoError(err)
	suite.False(got.IsActive)

	updated, err := suite.members.UpdateMember(suite.ctx, alice.ID, MemberInput{Color: ptr("#FF0000")})
	suite.Require().NoError(err)
	suite.Equal("#FF0000", updated.Color)
	suite.Equal(models.MemberRolePM, updated.Role)
}

func (suite *ServiceTestSuite) TestStakeholder_Mappings() {
	project := suite.createProject("Alpha")
	thread := suite.createThread(project.ID, "Vendor contract", "2024-01-01", "2024-01-11")

	_, err := suite.stakeholders.CreateStakeholder(suite.ctx, StakeholderInput{Name: ptr("Acme"), Type: ptr("partner")})
	suite.ErrorIs(err, ErrInvalidStakeholderType)

	acme, err := suite.stakeholders.CreateStakeholder(suite.ctx, StakeholderInput{Name: ptr("Acme"), Organization: ptr("Acme Corp")})
	suite.Require().NoError(err)
	suite.Equal(models.StakeholderExternal, acme.Type)

	mapping, err := suite.stakeholders.AddToThread(suite.ctx, thread.ID, acme.ID, "")
	suite.Require().NoError(err)
	suite.Equal("counterpart", mapping.RoleType)

	_, err = suite.stakeholders.AddToThread(suite.ctx, thread.ID, acme.ID, "partner")
	suite.Require().NoError(err)

	listed, err := suite.stakeholders.ListForThread(suite.ctx, thread.ID)
	suite.Require().NoError(err)
	suite.Require().Len(listed, 1)
	suite.Equal("partner", listed[0].RoleType)
	suite.Equal("Acme", listed[0].Name)

	_, err = suite.stakeholders.AddToThread(suite.ctx, 999, acme.ID, "")
	suite.ErrorIs(err, ErrThreadNotFound)
	_, err = suite.stakeholders.AddToThread(suite.ctx, thread.ID, 999, "")
	suite.ErrorIs(err, ErrStakeholderNotFound)

	suite.Require().NoError(suite.stakeholders.RemoveFromThread(suite.ctx, thread.ID, acme.ID))
	suite.ErrorIs(suite.stakeholders.RemoveFromThread(suite.ctx, thread.ID, acme.ID), ErrMappingNotFound)

	external := "external"
	filtered, err := suite.stakeholders.ListStakeholders(suite.ctx, &external)
	suite.Require().NoError(err)
	suite.Len(filtered, 1)
}

func (suite *ServiceTestSuite) TestTemplate_Upsert() {
	input := TemplateInput{
		Name:  ptr("Research sprint"),
		Tasks: []TemplateTaskInput{{Title: "Collect sources", DayOffset: -5}},
	}

	created, isNew, err := suite.templates.UpsertTemplate(suite.ctx, input)
	suite.Require().NoError(err)
	suite.True(isNew)
	suite.Equal(models.ThreadTypeOther, created.ThreadType)

	input.ThreadType = ptr("research")
	input.Tasks = []TemplateTaskInput{{Title: "Collect sources", DayOffset: -5}, {Title: "Write memo"}}
	updated, isNew, err := suite.templates.UpsertTemplate(suite.ctx, input)
	suite.Require().NoError(err)
	suite.False(isNew)
	suite.Equal(created.ID, updated.ID)
	suite.Equal(models.ThreadTypeResearch, updated.ThreadType)
	suite.Len(updated.Tasks, 2)

	tasks, err := suite.templates.ListTemplateTasks(suite.ctx, created.ID)
	suite.Require().NoError(err)
	suite.Equal("Write memo", tasks[1].Title)

	_, err = suite.templates.CreateTemplate(suite.ctx, TemplateInput{Name: ptr("Broken"), Tasks: []TemplateTaskInput{{Title: "x", Priority: "asap"}}})
	suite.ErrorIs(err, ErrInvalidPriority)

	suite.Require().NoError(suite.templates.DeleteTemplate(suite.ctx, created.ID))
	_, err = suite.templates.GetTemplate(suite.ctx, created.ID)
	suite.ErrorIs(err, ErrTemplateNotFound)
}

// Reports

func (suite *ServiceTestSuite) TestReport_SnapshotScopesToProject() {
	alpha := suite.createProject("Alpha")
	beta := suite.createProject("Beta")
	thread := suite.createThread(alpha.ID, "Vendor contract", "2024-01-01", "2024-01-11")
	other := suite.createThread(beta.ID, "Hiring", "2024-01-01", "2024-01-30")
	alice := suite.createMember("Alice", models.MemberRolePM)
	suite.grab(thread.ID, alice.ID, models.RoleLead)

	_, err := suite.tasks.CreateTask(suite.ctx, CreateTaskInput{ThreadID: thread.ID, Title: "Draft"})
	suite.Require().NoError(err)
	_, err = suite.tasks.CreateTask(suite.ctx, CreateTaskInput{ThreadID: other.ID, Title: "Interview"})
	suite.Require().NoError(err)

	data, err := suite.reports.Snapshot(suite.ctx, &alpha.ID)
	suite.Require().NoError(err)
	suite.Len(data.Threads, 1)
	suite.Require().Len(data.Tasks, 1)
	suite.Equal("Draft", data.Tasks[0].Title)
	suite.Len(data.Open[thread.ID], 1)
	suite.Equal(suite.clock.Now(), data.Today)

	all, err := suite.reports.Snapshot(suite.ctx, nil)
	suite.Require().NoError(err)
	suite.Len(all.Tasks, 2)
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}
