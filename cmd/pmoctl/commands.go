package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/yukikurage/pmo-timeline-api/internal/config"
	"github.com/yukikurage/pmo-timeline-api/internal/dto"
	"github.com/yukikurage/pmo-timeline-api/internal/handlers"
	"github.com/yukikurage/pmo-timeline-api/internal/middleware"
	"github.com/yukikurage/pmo-timeline-api/internal/report"
	"github.com/yukikurage/pmo-timeline-api/internal/services"
	"gorm.io/gorm"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update tables and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(_ context.Context, _ *gorm.DB, cfg *config.Config) error {
				fmt.Fprintf(cmd.OutOrStdout(), "migrated %s database\n", cfg.DBDriver)
				return nil
			})
		},
	}
}

func seedTemplatesCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed-templates",
		Short: "Create or replace thread templates from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			inputs, err := loadTemplates(f)
			if err != nil {
				return err
			}

			return withServices(cmd.Context(), func(ctx context.Context, svc handlers.Services) error {
				return seedTemplates(ctx, cmd.OutOrStdout(), svc.Templates, inputs)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "templates.yaml", "template definitions")
	return cmd
}

func seedTemplates(ctx context.Context, out io.Writer, templates *services.TemplateService, inputs []services.TemplateInput) error {
	for _, in := range inputs {
		tmpl, created, err := templates.UpsertTemplate(ctx, in)
		if err != nil {
			return fmt.Errorf("template %q: %w", *in.Name, err)
		}
		verb := "updated"
		if created {
			verb = "created"
		}
		fmt.Fprintf(out, "%s template %d %q (%d tasks)\n", verb, tmpl.ID, tmpl.Name, len(in.Tasks))
	}
	return nil
}

func timelineCmd() *cobra.Command {
	var (
		projectID uint64
		anchor    string
	)
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Print the four-week timeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := services.TimelineQuery{}
			if projectID != 0 {
				query.ProjectID = &projectID
			}
			if anchor != "" {
				t, err := dto.ParseDate(anchor)
				if err != nil {
					return err
				}
				query.Anchor = t
			}

			return withServices(cmd.Context(), func(ctx context.Context, svc handlers.Services) error {
				view, err := svc.Timeline.Build(ctx, query)
				if err != nil {
					return err
				}
				renderTimeline(cmd.OutOrStdout(), view)
				return nil
			})
		},
	}
	cmd.Flags().Uint64Var(&projectID, "project", 0, "project id")
	cmd.Flags().StringVar(&anchor, "anchor", "", "any day in the first week (YYYY-MM-DD)")
	return cmd
}

func renderTimeline(w io.Writer, view *services.TimelineView) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetTitle(fmt.Sprintf("%s - %s", view.WindowStart.Format("2006-01-02"), view.WindowEnd.Format("2006-01-02")))
	tw.AppendHeader(table.Row{"ID", "Thread", "Span", "D-day", "Assignees", "Left %", "Width %"})
	for _, row := range view.Threads {
		assignees := row.Assignees
		if assignees == "" {
			assignees = "-"
		}
		tw.AppendRow(table.Row{
			row.ID,
			row.Title,
			time.Time(row.StartDate).Format("01/02") + "~" + time.Time(row.DueDate).Format("01/02"),
			row.Urgency.Label,
			assignees,
			fmt.Sprintf("%.1f", row.Position.LeftPercent),
			fmt.Sprintf("%.1f", row.Position.WidthPercent),
		})
	}
	tw.SetStyle(table.StyleLight)
	tw.Render()
}

func exportCmd() *cobra.Command {
	var (
		sheet     string
		format    string
		projectID uint64
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a report sheet to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}

			return withServices(cmd.Context(), func(ctx context.Context, svc handlers.Services) error {
				var scope *uint64
				if projectID != 0 {
					scope = &projectID
				}
				data, err := svc.Reports.Snapshot(ctx, scope)
				if err != nil {
					return err
				}
				s, ok := report.SheetByName(sheet, data)
				if !ok {
					return fmt.Errorf("unknown sheet %q", sheet)
				}
				return s.Render(cmd.OutOrStdout(), f)
			})
		},
	}
	cmd.Flags().StringVar(&sheet, "sheet", "threads", "threads, tasks or people")
	cmd.Flags().StringVar(&format, "format", "text", "csv, markdown or text")
	cmd.Flags().Uint64Var(&projectID, "project", 0, "project id")
	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := loadConfig().JWTSecret
			token, err := middleware.NewToken(secret, subject, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "pmoctl", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	cmd.Flags().String("jwt-secret", "", "signing secret (defaults to JWT_SECRET)")
	_ = viper.BindPFlag("jwt-secret", cmd.Flags().Lookup("jwt-secret"))
	return cmd
}
