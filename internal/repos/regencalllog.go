package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/viorelmirea/provocations-backend/internal/platform/logger"
	"github.com/viorelmirea/provocations-backend/internal/types"
)

type RegenCallLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, logs []*types.RegenCallLog) ([]*types.RegenCallLog, error)
}

type regenCallLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRegenCallLogRepo(db *gorm.DB, baseLog *logger.Logger) RegenCallLogRepo {
	repoLog := baseLog.With("repo", "RegenCallLogRepo")
	return &regenCallLogRepo{db: db, log: repoLog}
}

func (r *regenCallLogRepo) Create(ctx context.Context, tx *gorm.DB, logs []*types.RegenCallLog) ([]*types.RegenCallLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(logs) == 0 {
		return []*types.RegenCallLog{}, nil
	}
	for _, l := range logs {
		if l.ID == uuid.Nil {
			l.ID = uuid.New()
		}
	}
	if err := transaction.WithContext(ctx).Create(&logs).Error; err != nil {
		return nil, storageErr("insert call log", err)
	}
	return logs, nil
}
