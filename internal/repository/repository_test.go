package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/pmo-timeline-api/internal/models"
	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps every query on the same in-memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

func date(s string) datatypes.Date {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return datatypes.Date(t)
}

func seedThread(t *testing.T, db *gorm.DB, projectID uint64, title, due string) *models.Thread {
	t.Helper()
	thread := &models.Thread{
		ProjectID:  projectID,
		Title:      title,
		ThreadType: models.ThreadTypeExecution,
		StartDate:  date("2024-01-01"),
		DueDate:    date(due),
		Status:     models.ThreadStatusActive,
	}
	require.NoError(t, NewThreadRepository(db).Create(context.Background(), thread))
	return thread
}

func seedMember(t *testing.T, db *gorm.DB, name string) *models.Member {
	t.Helper()
	member := &models.Member{Name: name, Role: models.MemberRoleMember}
	require.NoError(t, NewMemberRepository(db).Create(context.Background(), member))
	return member
}

func TestAssignmentRepository_ReleaseIsCompareAndSwap(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewAssignmentRepository(db)

	thread := seedThread(t, db, 1, "Vendor negotiation", "2024-01-31")
	member := seedMember(t, db, "Alice")

	record := &models.ThreadAssignment{
		ThreadID:  thread.ID,
		MemberID:  member.ID,
		Role:      models.RoleLead,
		GrabbedAt: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
		Note:      "kickoff",
	}
	require.NoError(t, repo.Create(ctx, record))

	note := "handed over"
	ok, err := repo.Release(ctx, record.ID, time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC), &note)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Release(ctx, record.ID, time.Date(2024, 1, 6, 9, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := repo.FindByID(ctx, record.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ReleasedAt)
	assert.Equal(t, 5, stored.ReleasedAt.Day())
	assert.Equal(t, "handed over", stored.Note)

	ok, err = repo.Release(ctx, 9999, time.Now(), nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAssignmentRepository_OpenQueries(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewAssignmentRepository(db)

	t1 := seedThread(t, db, 1, "A", "2024-01-31")
	t2 := seedThread(t, db, 1, "B", "2024-02-15")
	alice := seedMember(t, db, "Alice")
	bora := seedMember(t, db, "Bora")

	base := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	records := []*models.ThreadAssignment{
		{ThreadID: t1.ID, MemberID: alice.ID, Role: models.RoleLead, GrabbedAt: base.Add(2 * time.Hour)},
		{ThreadID: t1.ID, MemberID: bora.ID, Role: models.RoleSupport, GrabbedAt: base},
		{ThreadID: t2.ID, MemberID: bora.ID, Role: models.RoleLead, GrabbedAt: base},
	}
	for _, r := range records {
		require.NoError(t, repo.Create(ctx, r))
	}
	_, err := repo.Release(ctx, records[1].ID, base.Add(time.Hour), nil)
	require.NoError(t, err)

	all, err := repo.ListByThread(ctx, t1.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, records[1].ID, all[0].ID)

	open, err := repo.ListOpenByThread(ctx, t1.ID)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, records[0].ID, open[0].ID)

	batch, err := repo.ListOpenByThreads(ctx, []uint64{t1.ID, t2.ID})
	require.NoError(t, err)
	assert.Len(t, batch, 2)

	empty, err := repo.ListOpenByThreads(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestThreadRepository_DeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	thread := seedThread(t, db, 1, "Launch", "2024-01-31")
	other := seedThread(t, db, 1, "Other", "2024-01-31")
	member := seedMember(t, db, "Alice")

	require.NoError(t, NewTaskRepository(db).Create(ctx, &models.Task{ThreadID: thread.ID, Title: "Draft"}))
	require.NoError(t, NewTaskRepository(db).Create(ctx, &models.Task{ThreadID: other.ID, Title: "Keep"}))
	require.NoError(t, NewAssignmentRepository(db).Create(ctx, &models.ThreadAssignment{
		ThreadID: thread.ID, MemberID: member.ID, Role: models.RoleLead, GrabbedAt: time.Now(),
	}))
	stakeholder := &models.Stakeholder{Name: "ACME", Type: models.StakeholderExternal}
	require.NoError(t, NewStakeholderRepository(db).Create(ctx, stakeholder))
	require.NoError(t, NewStakeholderRepository(db).AddToThread(ctx, &models.ThreadStakeholder{
		ThreadID: thread.ID, StakeholderID: stakeholder.ID, RoleType: "counterpart",
	}))

	require.NoError(t, NewThreadRepository(db).Delete(ctx, thread.ID))

	_, err := NewThreadRepository(db).FindByID(ctx, thread.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var count int64
	db.Model(&models.Task{}).Where("thread_id = ?", thread.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.ThreadAssignment{}).Where("thread_id = ?", thread.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.ThreadStakeholder{}).Where("thread_id = ?", thread.ID).Count(&count)
	assert.Zero(t, count)

	db.Model(&models.Task{}).Where("thread_id = ?", other.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestProjectRepository_DeleteCascadesToThreads(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewProjectRepository(db)

	project := &models.Project{Name: "Expansion", Status: models.ThreadStatusActive}
	require.NoError(t, repo.Create(ctx, project))
	thread := seedThread(t, db, project.ID, "Scout", "2024-01-31")
	require.NoError(t, NewTaskRepository(db).Create(ctx, &models.Task{ThreadID: thread.ID, Title: "Survey"}))

	require.NoError(t, repo.Delete(ctx, project.ID))

	var count int64
	db.Model(&models.Thread{}).Where("project_id = ?", project.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.Task{}).Where("thread_id = ?", thread.ID).Count(&count)
	assert.Zero(t, count)
}

func TestThreadRepository_ListAndCreateWithTasks(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewThreadRepository(db)

	seedThread(t, db, 1, "Late", "2024-03-01")
	seedThread(t, db, 2, "Elsewhere", "2024-01-10")

	thread := &models.Thread{
		ProjectID: 1,
		Title:     "Early",
		StartDate: date("2024-01-01"),
		DueDate:   date("2024-01-20"),
		Status:    models.ThreadStatusActive,
	}
	tasks := []models.Task{{Title: "One"}, {Title: "Two"}}
	require.NoError(t, repo.CreateWithTasks(ctx, thread, tasks))
	assert.NotZero(t, thread.ID)
	require.Len(t, thread.Tasks, 2)
	assert.Equal(t, thread.ID, thread.Tasks[0].ThreadID)

	projectID := uint64(1)
	threads, total, err := repo.List(ctx, ThreadFilter{ProjectID: &projectID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, threads, 2)
	assert.Equal(t, "Early", threads[0].Title)

	threads, total, err = repo.List(ctx, ThreadFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, threads, 1)
}

func TestMemberRepository_DeactivateKeepsRow(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewMemberRepository(db)

	alice := seedMember(t, db, "Alice")
	seedMember(t, db, "Bora")

	require.NoError(t, repo.Deactivate(ctx, alice.ID))
	assert.ErrorIs(t, repo.Deactivate(ctx, 9999), gorm.ErrRecordNotFound)

	active, err := repo.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Bora", active[0].Name)

	all, err := repo.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := repo.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)
}

func TestStakeholderRepository_Mappings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewStakeholderRepository(db)

	thread := seedThread(t, db, 1, "Deal", "2024-01-31")
	acme := &models.Stakeholder{Name: "ACME", Type: models.StakeholderExternal}
	require.NoError(t, repo.Create(ctx, acme))

	require.NoError(t, repo.AddToThread(ctx, &models.ThreadStakeholder{ThreadID: thread.ID, StakeholderID: acme.ID, RoleType: "counterpart"}))
	require.NoError(t, repo.AddToThread(ctx, &models.ThreadStakeholder{ThreadID: thread.ID, StakeholderID: acme.ID, RoleType: "partner"}))

	mappings, err := repo.ListByThread(ctx, thread.ID)
	require.NoError(t, err)
	require.Len(t, mappings, 1)
	assert.Equal(t, "partner", mappings[0].RoleType)
	assert.Equal(t, "ACME", mappings[0].Stakeholder.Name)

	removed, err := repo.RemoveFromThread(ctx, thread.ID, acme.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.RemoveFromThread(ctx, thread.ID, acme.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestTemplateRepository_ReplaceTasks(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewTemplateRepository(db)

	tpl := &models.ThreadTemplate{
		Name:       "Contract",
		ThreadType: models.ThreadTypeNegotiation,
		Tasks: []models.TemplateTask{
			{Title: "Sign", DayOffset: 0, SortOrder: 2},
			{Title: "Draft", DayOffset: -10, SortOrder: 1},
		},
	}
	require.NoError(t, repo.Create(ctx, tpl))

	found, err := repo.FindByName(ctx, "Contract")
	require.NoError(t, err)
	require.Len(t, found.Tasks, 2)
	assert.Equal(t, "Draft", found.Tasks[0].Title)

	require.NoError(t, repo.ReplaceTasks(ctx, tpl.ID, []models.TemplateTask{{Title: "Review", DayOffset: -3}}))

	tasks, err := repo.ListTasks(ctx, tpl.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Review", tasks[0].Title)

	require.NoError(t, repo.Delete(ctx, tpl.ID))
	_, err = repo.FindByID(ctx, tpl.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAssignmentRepository_PropagatesDriverErrors(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	mock.ExpectQuery("SELECT").WillReturnError(assert.AnError)

	_, err = NewAssignmentRepository(db).ListOpenByThreads(context.Background(), []uint64{1, 2})
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
