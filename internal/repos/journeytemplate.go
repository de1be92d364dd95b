package repos

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/deebajee2009/OnlineExamBackEnd/internal/domain"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/platform/logger"
)

type JourneyTemplateRepo interface {
	Create(ctx context.Context, tx *gorm.DB, template *domain.JourneyTemplate) (*domain.JourneyTemplate, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*domain.JourneyTemplate, error)
	GetWithSteps(ctx context.Context, tx *gorm.DB, id uint) (*domain.JourneyTemplate, error)
	ListByType(ctx context.Context, tx *gorm.DB, journeyType domain.JourneyType) ([]*domain.JourneyTemplate, error)
	// ListOpenGroupExams returns group-exam templates whose deadline is still
	// ahead of now, newest first.
	ListOpenGroupExams(ctx context.Context, tx *gorm.DB, now time.Time) ([]*domain.JourneyTemplate, error)
	CountSteps(ctx context.Context, tx *gorm.DB, templateID uint) (int64, error)
	AddSteps(ctx context.Context, tx *gorm.DB, steps []*domain.JourneyStepTemplate) error
	ListSteps(ctx context.Context, tx *gorm.DB, templateID uint) ([]*domain.JourneyStepTemplate, error)
}

type journeyTemplateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJourneyTemplateRepo(db *gorm.DB, baseLog *logger.Logger) JourneyTemplateRepo {
	repoLog := baseLog.With("repo", "JourneyTemplateRepo")
	return &journeyTemplateRepo{db: db, log: repoLog}
}

func (r *journeyTemplateRepo) Create(ctx context.Context, tx *gorm.DB, template *domain.JourneyTemplate) (*domain.JourneyTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(template).Error; err != nil {
		return nil, err
	}
	return template, nil
}

func (r *journeyTemplateRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*domain.JourneyTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var template domain.JourneyTemplate
	if err := transaction.WithContext(ctx).First(&template, id).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *journeyTemplateRepo) GetWithSteps(ctx context.Context, tx *gorm.DB, id uint) (*domain.JourneyTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var template domain.JourneyTemplate
	if err := transaction.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("journey_step_templates.id")
		}).
		Preload("Steps.Question").
		First(&template, id).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *journeyTemplateRepo) ListByType(ctx context.Context, tx *gorm.DB, journeyType domain.JourneyType) ([]*domain.JourneyTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var templates []*domain.JourneyTemplate
	if err := transaction.WithContext(ctx).
		Where("journey_type = ?", journeyType).
		Order("id DESC").
		Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *journeyTemplateRepo) ListOpenGroupExams(ctx context.Context, tx *gorm.DB, now time.Time) ([]*domain.JourneyTemplate, error) {
	templates, err := r.ListByType(ctx, tx, domain.JourneyGroupExam)
	if err != nil {
		return nil, err
	}

	open := make([]*domain.JourneyTemplate, 0, len(templates))
	for _, tpl := range templates {
		if tpl.StartDatetime == nil {
			continue
		}
		if tpl.Deadline().After(now) {
			open = append(open, tpl)
		}
	}
	return open, nil
}

func (r *journeyTemplateRepo) CountSteps(ctx context.Context, tx *gorm.DB, templateID uint) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&domain.JourneyStepTemplate{}).
		Where("journey_template_id = ?", templateID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *journeyTemplateRepo) AddSteps(ctx context.Context, tx *gorm.DB, steps []*domain.JourneyStepTemplate) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(steps) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).Create(&steps).Error
}

func (r *journeyTemplateRepo) ListSteps(ctx context.Context, tx *gorm.DB, templateID uint) ([]*domain.JourneyStepTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var steps []*domain.JourneyStepTemplate
	if err := transaction.WithContext(ctx).
		Preload("Question").
		Where("journey_template_id = ?", templateID).
		Order("id").
		Find(&steps).Error; err != nil {
		return nil, err
	}
	return steps, nil
}
