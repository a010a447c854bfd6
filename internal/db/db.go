package db

import (
	"fmt"
	"strings"
	"time"

	"qcs/internal/config"
	"qcs/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var DB *gorm.DB

// GormConfig returns the settings shared by every connection.
func GormConfig(level logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(level),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: false,
		},
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Dialector picks the driver from the URL scheme.
func Dialector(url string) (gorm.Dialector, error) {
	trimmed := strings.TrimSpace(url)
	lower := strings.ToLower(trimmed)

	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return postgres.Open(trimmed), nil
	case strings.Contains(lower, "host=") || strings.Contains(lower, "dbname="):
		return postgres.Open(trimmed), nil
	case strings.HasPrefix(lower, "sqlite://"):
		return sqlite.Open(SQLiteDSN(trimmed[len("sqlite://"):])), nil
	case strings.HasPrefix(lower, "sqlite:"):
		return sqlite.Open(SQLiteDSN(trimmed[len("sqlite:"):])), nil
	case strings.HasPrefix(lower, "file:"), lower == ":memory:",
		strings.HasSuffix(lower, ".db"), strings.HasSuffix(lower, ".sqlite"), strings.HasSuffix(lower, ".sqlite3"):
		return sqlite.Open(SQLiteDSN(trimmed)), nil
	default:
		return nil, fmt.Errorf("unsupported database URL %q", url)
	}
}

// SQLiteDSN turns on foreign key enforcement for a sqlite DSN.
func SQLiteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("database URL must not be empty")
	}

	dialector, err := Dialector(cfg.URL)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, GormConfig(logger.Warn))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	return db, nil
}

// Models lists every table in dependency order.
func Models() []any {
	return []any{
		&models.User{},
		&models.Supplier{},
		&models.Package{},
		&models.Product{},
		&models.Batch{},
		&models.ColorData{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database handle is nil")
	}

	return db.AutoMigrate(Models()...)
}

func Configure(cfg config.DatabaseConfig) (*gorm.DB, error) {
	database, err := Initialize(cfg)
	if err != nil {
		return nil, err
	}

	if err := AutoMigrate(database); err != nil {
		return nil, err
	}

	DB = database

	return database, nil
}

func MustConfigure(cfg config.DatabaseConfig) *gorm.DB {
	database, err := Configure(cfg)
	if err != nil {
		panic(err)
	}

	return database
}

func Get() *gorm.DB {
	return DB
}
