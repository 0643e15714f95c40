package repos

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/viorelmirea/provocations-backend/internal/platform/logger"
	"github.com/viorelmirea/provocations-backend/internal/types"
)

type CompletionRepo interface {
	GetByConcernID(ctx context.Context, tx *gorm.DB, kind types.ContentKind, concernID string) ([]*types.Completion, error)
	CountByConcernID(ctx context.Context, tx *gorm.DB, kind types.ContentKind, concernID string) (int64, error)
	Create(ctx context.Context, tx *gorm.DB, kind types.ContentKind, concernID, completion string) (*types.Completion, error)
}

type completionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompletionRepo(db *gorm.DB, baseLog *logger.Logger) CompletionRepo {
	repoLog := baseLog.With("repo", "CompletionRepo")
	return &completionRepo{db: db, log: repoLog}
}

func (r *completionRepo) GetByConcernID(ctx context.Context, tx *gorm.DB, kind types.ContentKind, concernID string) ([]*types.Completion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Completion
	if concernID == "" {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Table(kind.CompletionsTable()).
		Where("concern_id = ?", concernID).
		Find(&results).Error; err != nil {
		return nil, storageErr("list completions", err)
	}
	return results, nil
}

func (r *completionRepo) CountByConcernID(ctx context.Context, tx *gorm.DB, kind types.ContentKind, concernID string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Table(kind.CompletionsTable()).
		Where("concern_id = ?", concernID).
		Count(&count).Error; err != nil {
		return 0, storageErr("count completions", err)
	}
	return count, nil
}

func (r *completionRepo) Create(ctx context.Context, tx *gorm.DB, kind types.ContentKind, concernID, completion string) (*types.Completion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	row := &types.Completion{
		ID:         uuid.NewString(),
		CreatedAt:  strconv.FormatInt(time.Now().UnixMilli(), 10),
		ConcernID:  concernID,
		Completion: completion,
	}

	if err := transaction.WithContext(ctx).
		Table(kind.CompletionsTable()).
		Create(row).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("insert completion for %s: %w", concernID, ErrConstraintViolation)
		}
		return nil, storageErr("insert completion", err)
	}
	return row, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, ErrStorageUnavailable)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
