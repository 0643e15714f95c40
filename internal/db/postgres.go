package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/viorelmirea/provocations-backend/internal/platform/logger"
	"github.com/viorelmirea/provocations-backend/internal/types"
	"github.com/viorelmirea/provocations-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "provocations", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	serviceLog.Info("Connecting to Postgres...")
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

// AutoMigrateAll migrates the per-kind completions tables and the provider
// call log. The completions tables share one model and differ only by name.
func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	for _, kind := range []types.ContentKind{types.KindDiscussions, types.KindProvocations} {
		if err := s.db.Table(kind.CompletionsTable()).AutoMigrate(&types.Completion{}); err != nil {
			s.log.Error("Auto migration failed", "table", kind.CompletionsTable(), "error", err)
			return fmt.Errorf("migrate %s: %w", kind.CompletionsTable(), err)
		}
	}
	if err := s.db.AutoMigrate(&types.RegenCallLog{}); err != nil {
		s.log.Error("Auto migration failed", "table", types.RegenCallLog{}.TableName(), "error", err)
		return fmt.Errorf("migrate regen_call_log: %w", err)
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
