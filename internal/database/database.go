package database

import (
	"time"

	"github.com/ggorockee/coffeemode/internal/config"
	"github.com/ggorockee/coffeemode/internal/logger"
	"github.com/ggorockee/coffeemode/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type DB struct {
	*gorm.DB
}

func Connect(cfg *config.Config) (*DB, error) {
	logLevel := gormlogger.Silent
	if cfg.IsDevelopment() {
		logLevel = gormlogger.Info
	}

	db, err := Open(postgres.Open(cfg.DatabaseURL), logLevel)
	if err != nil {
		return nil, err
	}

	// Configure connection pool
	log := logger.GetLogger("database")
	sqlDB, err := db.DB.DB()
	if err == nil {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
		log.Info("Database connection pool configured")
	}

	return db, nil
}

// Open wraps any gorm dialector with the settings every store relies on:
// unique violations surface as gorm.ErrDuplicatedKey and queries are measured.
func Open(dialector gorm.Dialector, logLevel gormlogger.LogLevel) (*DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(logLevel),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		return nil, err
	}

	// Register metrics plugin for Prometheus
	log := logger.GetLogger("database")
	if err := db.Use(&MetricsPlugin{}); err != nil {
		log.Warnw("Failed to register metrics plugin", "error", err)
	}

	return &DB{db}, nil
}

// Migrate runs AutoMigrate for all models
func Migrate(db *DB) error {
	return db.AutoMigrate(
		// Cafe domain
		&models.Cafe{},

		// Provider caches
		&models.PlaceDetail{},
		&models.SharedLink{},

		// User domain
		&models.User{},
	)
}

// Ping checks that the underlying connection is alive
func (db *DB) Ping() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
