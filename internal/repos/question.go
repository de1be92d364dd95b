package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/deebajee2009/OnlineExamBackEnd/internal/domain"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/platform/logger"
)

type QuestionFilter struct {
	TagID      *uint
	ActiveOnly bool
	Limit      int
	Offset     int
}

type QuestionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, question *domain.Question) (*domain.Question, error)
	Update(ctx context.Context, tx *gorm.DB, question *domain.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*domain.Question, error)
	List(ctx context.Context, tx *gorm.DB, filter QuestionFilter) ([]*domain.Question, int64, error)
	ListIDs(ctx context.Context, tx *gorm.DB) ([]uint, error)
	// PickRandomUnasked returns one active question not yet asked in the
	// journey, uniformly at random. gorm.ErrRecordNotFound signals exhaustion.
	PickRandomUnasked(ctx context.Context, tx *gorm.DB, journeyID uint) (*domain.Question, error)
	// PickRandomActive draws up to n active question ids uniformly at random
	// without replacement. Fewer than n come back when the pool is short.
	PickRandomActive(ctx context.Context, tx *gorm.DB, n int) ([]uint, error)
	UpdateHardness(ctx context.Context, tx *gorm.DB, questionID uint, hardness float64) error
}

type questionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	repoLog := baseLog.With("repo", "QuestionRepo")
	return &questionRepo{db: db, log: repoLog}
}

func (r *questionRepo) Create(ctx context.Context, tx *gorm.DB, question *domain.Question) (*domain.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(question).Error; err != nil {
		return nil, err
	}
	return question, nil
}

func (r *questionRepo) Update(ctx context.Context, tx *gorm.DB, question *domain.Question) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).Save(question).Error
}

func (r *questionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*domain.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var question domain.Question
	if err := transaction.WithContext(ctx).
		Preload("Tags").
		First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepo) List(ctx context.Context, tx *gorm.DB, filter QuestionFilter) ([]*domain.Question, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := transaction.WithContext(ctx).Model(&domain.Question{})
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.TagID != nil {
		query = query.
			Joins("JOIN question_tags ON question_tags.question_id = questions.id").
			Where("question_tags.tag_id = ?", *filter.TagID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	var questions []*domain.Question
	if err := query.
		Order("id DESC").
		Find(&questions).Error; err != nil {
		return nil, 0, err
	}
	return questions, total, nil
}

func (r *questionRepo) ListIDs(ctx context.Context, tx *gorm.DB) ([]uint, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var ids []uint
	if err := transaction.WithContext(ctx).
		Model(&domain.Question{}).
		Order("id").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *questionRepo) PickRandomUnasked(ctx context.Context, tx *gorm.DB, journeyID uint) (*domain.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	// random() works on both postgres and sqlite.
	var question domain.Question
	if err := transaction.WithContext(ctx).
		Where("is_active = ?", true).
		Where("id NOT IN (?)", transaction.
			Model(&domain.JourneyStep{}).
			Select("question_id").
			Where("journey_id = ? AND question_id IS NOT NULL", journeyID)).
		Order("random()").
		First(&question).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepo) PickRandomActive(ctx context.Context, tx *gorm.DB, n int) ([]uint, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var ids []uint
	if err := transaction.WithContext(ctx).
		Model(&domain.Question{}).
		Where("is_active = ?", true).
		Order("random()").
		Limit(n).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *questionRepo) UpdateHardness(ctx context.Context, tx *gorm.DB, questionID uint, hardness float64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&domain.Question{}).
		Where("id = ?", questionID).
		Update("hardness", hardness).Error
}
