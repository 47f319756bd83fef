package database

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

// compositeIndexes backs the hot queries: open records per thread, the
// timeline's thread scan and per-thread task listings.
var compositeIndexes = []struct {
	table   string
	name    string
	columns string
}{
	{"thread_assignments", "idx_thread_assignments_thread_open", "thread_id, released_at"},
	{"thread_assignments", "idx_thread_assignments_member_open", "member_id, released_at"},
	{"threads", "idx_threads_project_due", "project_id, due_date"},
	{"tasks", "idx_tasks_thread_status", "thread_id, status"},
	{"template_tasks", "idx_template_tasks_template_order", "template_id, sort_order"},
}

// AddIndexes creates the composite indexes that struct tags do not declare.
// Existing indexes are skipped, so it is safe to run on every start.
func AddIndexes(db *gorm.DB) error {
	migrator := db.Migrator()

	for _, idx := range compositeIndexes {
		if migrator.HasIndex(idx.table, idx.name) {
			slog.Debug("index already exists, skipping", "index", idx.name)
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		slog.Info("created index", "index", idx.name, "table", idx.table, "columns", idx.columns)
	}

	return nil
}
