package repos

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/deebajee2009/OnlineExamBackEnd/internal/domain"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/platform/logger"
)

type ImportRunRepo interface {
	Create(ctx context.Context, tx *gorm.DB, run *domain.ImportRun) (*domain.ImportRun, error)
	Finish(ctx context.Context, tx *gorm.DB, run *domain.ImportRun) error
	List(ctx context.Context, tx *gorm.DB, limit int) ([]*domain.ImportRun, error)
}

type importRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewImportRunRepo(db *gorm.DB, baseLog *logger.Logger) ImportRunRepo {
	repoLog := baseLog.With("repo", "ImportRunRepo")
	return &importRunRepo{db: db, log: repoLog}
}

func (r *importRunRepo) Create(ctx context.Context, tx *gorm.DB, run *domain.ImportRun) (*domain.ImportRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if err := transaction.WithContext(ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

func (r *importRunRepo) Finish(ctx context.Context, tx *gorm.DB, run *domain.ImportRun) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	now := time.Now().UTC()
	run.FinishedAt = &now
	return transaction.WithContext(ctx).
		Model(&domain.ImportRun{}).
		Where("id = ?", run.ID).
		Updates(map[string]interface{}{
			"status":      run.Status,
			"created":     run.Created,
			"skipped":     run.Skipped,
			"report":      run.Report,
			"finished_at": run.FinishedAt,
		}).Error
}

func (r *importRunRepo) List(ctx context.Context, tx *gorm.DB, limit int) ([]*domain.ImportRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := transaction.WithContext(ctx).Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var runs []*domain.ImportRun
	if err := query.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
