package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/pmo-timeline-api/internal/app"
	"github.com/yukikurage/pmo-timeline-api/internal/middleware"
	"github.com/yukikurage/pmo-timeline-api/internal/models"
	"github.com/yukikurage/pmo-timeline-api/internal/services"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const seedYAML = `
templates:
  - name: Vendor negotiation
    thread_type: negotiation
    tasks:
      - title: Send RFP
        day_offset: -14
        priority: high
      - title: Sign contract
        day_offset: 0
  - name: Research spike
    thread_type: research
`

func TestLoadTemplates(t *testing.T) {
	inputs, err := loadTemplates(strings.NewReader(seedYAML))
	require.NoError(t, err)
	require.Len(t, inputs, 2)

	assert.Equal(t, "Vendor negotiation", *inputs[0].Name)
	assert.Equal(t, "negotiation", *inputs[0].ThreadType)
	require.Len(t, inputs[0].Tasks, 2)
	assert.Equal(t, -14, inputs[0].Tasks[0].DayOffset)
	assert.Equal(t, "high", inputs[0].Tasks[0].Priority)

	assert.NotNil(t, inputs[1].Tasks)
	assert.Empty(t, inputs[1].Tasks)
}

func TestLoadTemplates_Rejects(t *testing.T) {
	_, err := loadTemplates(strings.NewReader("templates:\n  - thread_type: research\n"))
	assert.ErrorContains(t, err, "name is required")

	_, err = loadTemplates(strings.NewReader("templates:\n  - name: X\n    owner: bob\n"))
	assert.Error(t, err)
}

func TestSeedTemplates_Upserts(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()

	svc := app.NewServices(db, app.Options{})
	inputs, err := loadTemplates(strings.NewReader(seedYAML))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, seedTemplates(context.Background(), &out, svc.Templates, inputs))
	assert.Contains(t, out.String(), `created template 1 "Vendor negotiation" (2 tasks)`)

	out.Reset()
	require.NoError(t, seedTemplates(context.Background(), &out, svc.Templates, inputs[:1]))
	assert.Contains(t, out.String(), `updated template 1 "Vendor negotiation"`)

	templates, err := svc.Templates.ListTemplates(context.Background())
	require.NoError(t, err)
	assert.Len(t, templates, 2)
}

func TestRenderTimeline(t *testing.T) {
	start := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	view := &services.TimelineView{
		WindowStart: start,
		WindowEnd:   start.AddDate(0, 0, 28).Add(-time.Millisecond),
		Threads: []services.ThreadRow{{
			ID:        3,
			Title:     "Launch",
			StartDate: datatypes.Date(start),
			DueDate:   datatypes.Date(start.AddDate(0, 0, 6)),
			Assignees: "Alice",
		}},
	}
	view.Threads[0].Position.LeftPercent = 0
	view.Threads[0].Position.WidthPercent = 25

	var out bytes.Buffer
	renderTimeline(&out, view)

	text := out.String()
	assert.Contains(t, text, "2024-01-08 - 2024-02-04")
	assert.Contains(t, text, "Launch")
	assert.Contains(t, text, "01/08~01/14")
	assert.Contains(t, text, "Alice")
	assert.Contains(t, text, "25.0")
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")

	cmd := tokenCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--subject", "ops", "--ttl", "1h"})
	require.NoError(t, cmd.Execute())

	subject, err := middleware.ParseToken(strings.TrimSpace(out.String()), "cli-secret")
	require.NoError(t, err)
	assert.Equal(t, "ops", subject)
}
