package db

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/dbhealth-backend/internal/logger"
	"github.com/yungbote/dbhealth-backend/internal/types"
)

// SqliteService owns the embedded results store. Every repo shares the
// one *gorm.DB it opens.
type SqliteService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSqliteService(path string, log *logger.Logger) (*SqliteService, error) {
	serviceLog := log.With("service", "SqliteService")

	serviceLog.Info("Opening results store...", "path", path)
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		serviceLog.Error("Failed to open results store", "error", err)
		return nil, fmt.Errorf("failed to open results store: %w", err)
	}

	if err := gdb.Exec(`PRAGMA foreign_keys = ON`).Error; err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if err := gdb.Exec(`PRAGMA busy_timeout = 5000`).Error; err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// sqlite allows one writer at a time; a single pooled connection
	// makes concurrent refreshes queue instead of erroring.
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return &SqliteService{db: gdb, log: serviceLog}, nil
}

func (s *SqliteService) AutoMigrateAll() error {
	s.log.Info("Auto migrating results store tables...")
	err := s.db.AutoMigrate(
		&types.ProcedureType{},
		&types.DatabaseTarget{},
		&types.Run{},
		&types.FindingRecord{},
		&types.IndexFindingRecord{},
		&types.QueryCacheRecord{},
		&types.IndexDetail{},
		&types.FindingDetail{},
		&types.ChatTurn{},
		&types.Recommendation{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for results store tables", "error", err)
		return err
	}
	return s.seedProcedureTypes()
}

// seedProcedureTypes inserts the static procedure catalog rows. Safe to
// run on every start.
func (s *SqliteService) seedProcedureTypes() error {
	seed := types.SeedProcedureTypes()
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		s.log.Error("Failed to seed procedure types", "error", err)
		return fmt.Errorf("failed to seed procedure types: %w", err)
	}
	return nil
}

func (s *SqliteService) DB() *gorm.DB {
	return s.db
}
