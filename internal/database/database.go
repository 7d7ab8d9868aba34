package database

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yukikurage/growmap/internal/config"
	"github.com/yukikurage/growmap/internal/logging"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect opens the database selected by cfg.DBDriver and stores it in DB.
func Connect(cfg *config.Config) error {
	db, err := Open(cfg)
	if err != nil {
		return err
	}

	DB = db
	logging.Info().Str("driver", cfg.DBDriver).Msg("Database connection established")
	return nil
}

// Open returns a gorm handle for sqlite (DB_PATH), postgres or mysql (DB_DSN).
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DBPath)
	case "postgres":
		dialector = postgres.Open(cfg.DBDSN)
	case "mysql":
		dialector = mysql.Open(cfg.DBDSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, GormConfig(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// GormConfig is shared by the server and tests. Relationships are enforced
// in queries, so no foreign keys are created.
func GormConfig(logLevel string) *gorm.Config {
	return &gorm.Config{
		Logger:                                   newGormLogger(logLevel),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// newGormLogger routes gorm's SQL log through zerolog.
func newGormLogger(logLevel string) logger.Interface {
	zl := logging.With().Str("component", "gorm").Logger()

	level := logger.Warn
	switch logLevel {
	case "debug":
		level = logger.Info
	case "error":
		level = logger.Error
	case "disabled":
		level = logger.Silent
	}

	return logger.New(&gormWriter{log: zl}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

type gormWriter struct {
	log zerolog.Logger
}

func (w *gormWriter) Printf(format string, args ...interface{}) {
	w.log.Printf(format, args...)
}

func GetDB() *gorm.DB {
	return DB
}

// SetDB sets the database instance (used for testing)
func SetDB(db *gorm.DB) {
	DB = db
}
