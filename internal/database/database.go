package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"storefront/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Service owns the connection pool shared by the repositories
type Service interface {
	DB() *gorm.DB
	SQL() *sql.DB
	Health(ctx context.Context) map[string]string
	Close() error
}

type service struct {
	gormDB *gorm.DB
	sqlDB  *sql.DB
	logger *zap.Logger
}

// New opens a pgx-backed pool and wraps it in a gorm session
func New(cfg config.DatabaseConfig, logger *zap.Logger) (Service, error) {
	sqlDB, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	logger.Info("Database connection opened",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database),
	)

	return &service{gormDB: gormDB, sqlDB: sqlDB, logger: logger}, nil
}

// FromGorm wraps an already opened gorm session, such as an in-memory
// database in tests
func FromGorm(gormDB *gorm.DB, logger *zap.Logger) (Service, error) {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	return &service{gormDB: gormDB, sqlDB: sqlDB, logger: logger}, nil
}

func (s *service) DB() *gorm.DB {
	return s.gormDB
}

func (s *service) SQL() *sql.DB {
	return s.sqlDB
}

// Health pings the database and reports pool statistics
func (s *service) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	stats := make(map[string]string)

	if err := s.sqlDB.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = err.Error()
		s.logger.Error("Database ping failed", zap.Error(err))
		return stats
	}

	dbStats := s.sqlDB.Stats()
	stats["status"] = "up"
	stats["open_connections"] = fmt.Sprint(dbStats.OpenConnections)
	stats["in_use"] = fmt.Sprint(dbStats.InUse)
	stats["idle"] = fmt.Sprint(dbStats.Idle)

	return stats
}

func (s *service) Close() error {
	s.logger.Info("Closing database connection")
	return s.sqlDB.Close()
}
