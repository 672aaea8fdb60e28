package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vintry/contentops-backend/internal/domain"
	"github.com/vintry/contentops-backend/internal/platform/envutil"
	"github.com/vintry/contentops-backend/internal/platform/logger"
)

type Config struct {
	Driver     string // "postgres" (default) or "sqlite"
	URL        string // full DSN; overrides the POSTGRES_* parts when set
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SQLitePath string
}

func ConfigFromEnv() Config {
	return Config{
		Driver:     envutil.Str("DB_DRIVER", "postgres"),
		URL:        envutil.Str("DATABASE_URL", ""),
		Host:       envutil.Str("POSTGRES_HOST", "localhost"),
		Port:       envutil.Str("POSTGRES_PORT", "5432"),
		User:       envutil.Str("POSTGRES_USER", "postgres"),
		Password:   envutil.Str("POSTGRES_PASSWORD", ""),
		Name:       envutil.Str("POSTGRES_NAME", "contentops"),
		SQLitePath: envutil.Str("SQLITE_PATH", "contentops.db"),
	}
}

func Open(cfg Config, log *logger.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{DisableForeignKeyConstraintWhenMigrating: true}
	switch cfg.Driver {
	case "sqlite":
		log.Info("connecting to sqlite", "path", cfg.SQLitePath)
		db, err := gorm.Open(sqlite.Open(cfg.SQLitePath), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return db, nil
	case "postgres", "":
		dsn := cfg.URL
		if dsn == "" {
			dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
				cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)
		}
		log.Info("connecting to postgres", "host", cfg.Host, "db", cfg.Name)
		db, err := gorm.Open(postgres.Open(dsn), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
			return nil, fmt.Errorf("enable uuid-ossp extension: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.Driver)
	}
}

func AutoMigrateAll(db *gorm.DB, log *logger.Logger) error {
	log.Info("running auto migration")
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.UserToken{},
		&domain.ContentCalendar{},
		&domain.CalendarEntry{},
		&domain.AnalysisSnapshot{},
		&domain.PromptTemplate{},
		&domain.PromptFolder{},
		&domain.SavedPrompt{},
		&domain.JobRun{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	for _, stmt := range []string{
		`ALTER TABLE "user_token" DROP CONSTRAINT IF EXISTS "fk_user_token_user_id";
		 ALTER TABLE "user_token" ADD CONSTRAINT "fk_user_token_user_id"
		 FOREIGN KEY ("user_id") REFERENCES "user"("id") ON DELETE CASCADE`,
		`ALTER TABLE "calendar_entry" DROP CONSTRAINT IF EXISTS "fk_calendar_entry_calendar_id";
		 ALTER TABLE "calendar_entry" ADD CONSTRAINT "fk_calendar_entry_calendar_id"
		 FOREIGN KEY ("calendar_id") REFERENCES "content_calendar"("id") ON DELETE CASCADE`,
		`ALTER TABLE "analysis_snapshot" DROP CONSTRAINT IF EXISTS "fk_analysis_snapshot_calendar_id";
		 ALTER TABLE "analysis_snapshot" ADD CONSTRAINT "fk_analysis_snapshot_calendar_id"
		 FOREIGN KEY ("calendar_id") REFERENCES "content_calendar"("id") ON DELETE CASCADE`,
	} {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("add foreign keys: %w", err)
		}
	}
	return nil
}
