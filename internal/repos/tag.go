package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/deebajee2009/OnlineExamBackEnd/internal/domain"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/platform/logger"
)

type TagRepo interface {
	Create(ctx context.Context, tx *gorm.DB, tag *domain.Tag) (*domain.Tag, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*domain.Tag, error)
	List(ctx context.Context, tx *gorm.DB) ([]*domain.Tag, error)
	ListChildren(ctx context.Context, tx *gorm.DB, parentID uint) ([]*domain.Tag, error)
}

type tagRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTagRepo(db *gorm.DB, baseLog *logger.Logger) TagRepo {
	repoLog := baseLog.With("repo", "TagRepo")
	return &tagRepo{db: db, log: repoLog}
}

func (r *tagRepo) Create(ctx context.Context, tx *gorm.DB, tag *domain.Tag) (*domain.Tag, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(tag).Error; err != nil {
		return nil, err
	}
	return tag, nil
}

func (r *tagRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*domain.Tag, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var tag domain.Tag
	if err := transaction.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepo) List(ctx context.Context, tx *gorm.DB) ([]*domain.Tag, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var tags []*domain.Tag
	if err := transaction.WithContext(ctx).
		Order("name").
		Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *tagRepo) ListChildren(ctx context.Context, tx *gorm.DB, parentID uint) ([]*domain.Tag, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var tags []*domain.Tag
	if err := transaction.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("name").
		Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}
