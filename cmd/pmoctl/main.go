package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/yukikurage/pmo-timeline-api/internal/app"
	"github.com/yukikurage/pmo-timeline-api/internal/config"
	"github.com/yukikurage/pmo-timeline-api/internal/database"
	"github.com/yukikurage/pmo-timeline-api/internal/handlers"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var rootCmd = &cobra.Command{
	Use:   "pmoctl",
	Short: "PMO timeline maintenance CLI",
	Long: `pmoctl operates on the PMO timeline database directly.
It reads the same settings as the API server; flags and PMO_* environment
variables override them.`,
	SilenceUsage: true,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("PMO")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().String("db-driver", "", "database driver: mysql, postgres or sqlite")
	rootCmd.PersistentFlags().String("sqlite-path", "", "sqlite database file")
	rootCmd.PersistentFlags().String("db-host", "", "database host")
	rootCmd.PersistentFlags().String("db-name", "", "database name")
	rootCmd.PersistentFlags().String("log-level", "", "log level")
	_ = viper.BindPFlag("db-driver", rootCmd.PersistentFlags().Lookup("db-driver"))
	_ = viper.BindPFlag("sqlite-path", rootCmd.PersistentFlags().Lookup("sqlite-path"))
	_ = viper.BindPFlag("db-host", rootCmd.PersistentFlags().Lookup("db-host"))
	_ = viper.BindPFlag("db-name", rootCmd.PersistentFlags().Lookup("db-name"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func registerCommands() {
	rootCmd.AddCommand(
		migrateCmd(),
		seedTemplatesCmd(),
		timelineCmd(),
		exportCmd(),
		tokenCmd(),
	)
}

// loadConfig starts from the server's environment and applies overrides.
func loadConfig() *config.Config {
	cfg := config.Load()
	override := func(key string, dst *string) {
		if v := viper.GetString(key); v != "" {
			*dst = v
		}
	}
	override("db-driver", &cfg.DBDriver)
	override("sqlite-path", &cfg.SQLitePath)
	override("db-host", &cfg.DBHost)
	override("db-name", &cfg.DBName)
	override("log-level", &cfg.LogLevel)
	override("jwt-secret", &cfg.JWTSecret)
	return cfg
}

// withDB connects and migrates before running fn.
func withDB(ctx context.Context, fn func(ctx context.Context, db *gorm.DB, cfg *config.Config) error) error {
	cfg := loadConfig()
	logger := app.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if err := database.Connect(cfg); err != nil {
		return err
	}
	// stdout carries command output
	db := database.GetDB().Session(&gorm.Session{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err := database.Migrate(db); err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	return fn(ctx, db, cfg)
}

// withServices is withDB plus the service graph.
func withServices(ctx context.Context, fn func(ctx context.Context, svc handlers.Services) error) error {
	return withDB(ctx, func(ctx context.Context, db *gorm.DB, _ *config.Config) error {
		return fn(ctx, app.NewServices(db, app.Options{}))
	})
}
