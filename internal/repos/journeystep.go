package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/deebajee2009/OnlineExamBackEnd/internal/domain"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/platform/logger"
)

// StepCounts aggregates answer outcomes over a step range by comparing the
// stored answer against the question's winning key.
type StepCounts struct {
	Total      int64
	Correct    int64
	Wrong      int64
	Unanswered int64
}

// ResultCounts aggregates steps by their recorded answer_result column.
type ResultCounts struct {
	Correct     int64
	Wrong       int64
	NotSelected int64
}

func (c ResultCounts) Total() int64 { return c.Correct + c.Wrong + c.NotSelected }

type JourneyStepRepo interface {
	Create(ctx context.Context, tx *gorm.DB, step *domain.JourneyStep) (*domain.JourneyStep, error)
	CreateBatch(ctx context.Context, tx *gorm.DB, steps []*domain.JourneyStep) error
	GetByID(ctx context.Context, tx *gorm.DB, stepID uint) (*domain.JourneyStep, error)
	// GetForJourney loads a step with its question, journey and template, so
	// callers can derive activity without further queries.
	GetForJourney(ctx context.Context, tx *gorm.DB, journeyID, stepID uint) (*domain.JourneyStep, error)
	FirstAfter(ctx context.Context, tx *gorm.DB, journeyID uint, afterStepID *uint) (*domain.JourneyStep, error)
	ListByJourney(ctx context.Context, tx *gorm.DB, journeyID uint) ([]*domain.JourneyStep, error)
	CountByJourney(ctx context.Context, tx *gorm.DB, journeyID uint) (int64, error)
	SaveAnswer(ctx context.Context, tx *gorm.DB, step *domain.JourneyStep) error
	// CountsThrough aggregates steps with step_id at or below maxStepID.
	CountsThrough(ctx context.Context, tx *gorm.DB, journeyID, maxStepID uint) (StepCounts, error)
	ResultCountsByJourney(ctx context.Context, tx *gorm.DB, journeyID uint) (ResultCounts, error)
	ResultCountsByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) (ResultCounts, error)
}

type journeyStepRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJourneyStepRepo(db *gorm.DB, baseLog *logger.Logger) JourneyStepRepo {
	repoLog := baseLog.With("repo", "JourneyStepRepo")
	return &journeyStepRepo{db: db, log: repoLog}
}

func (r *journeyStepRepo) Create(ctx context.Context, tx *gorm.DB, step *domain.JourneyStep) (*domain.JourneyStep, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(step).Error; err != nil {
		return nil, err
	}
	return step, nil
}

func (r *journeyStepRepo) CreateBatch(ctx context.Context, tx *gorm.DB, steps []*domain.JourneyStep) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(steps) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).Create(&steps).Error
}

func (r *journeyStepRepo) GetByID(ctx context.Context, tx *gorm.DB, stepID uint) (*domain.JourneyStep, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var step domain.JourneyStep
	if err := transaction.WithContext(ctx).
		Preload("Question").
		Preload("Journey").
		Preload("Journey.Template").
		First(&step, stepID).Error; err != nil {
		return nil, err
	}
	return &step, nil
}

func (r *journeyStepRepo) GetForJourney(ctx context.Context, tx *gorm.DB, journeyID, stepID uint) (*domain.JourneyStep, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var step domain.JourneyStep
	if err := transaction.WithContext(ctx).
		Preload("Question").
		Preload("Journey").
		Preload("Journey.Template").
		Where("step_id = ? AND journey_id = ?", stepID, journeyID).
		First(&step).Error; err != nil {
		return nil, err
	}
	return &step, nil
}

func (r *journeyStepRepo) FirstAfter(ctx context.Context, tx *gorm.DB, journeyID uint, afterStepID *uint) (*domain.JourneyStep, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := transaction.WithContext(ctx).
		Preload("Question").
		Where("journey_id = ?", journeyID)
	if afterStepID != nil {
		query = query.Where("step_id > ?", *afterStepID)
	}

	var step domain.JourneyStep
	if err := query.Order("step_id").First(&step).Error; err != nil {
		return nil, err
	}
	return &step, nil
}

func (r *journeyStepRepo) ListByJourney(ctx context.Context, tx *gorm.DB, journeyID uint) ([]*domain.JourneyStep, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var steps []*domain.JourneyStep
	if err := transaction.WithContext(ctx).
		Preload("Question").
		Where("journey_id = ?", journeyID).
		Order("step_id").
		Find(&steps).Error; err != nil {
		return nil, err
	}
	return steps, nil
}

func (r *journeyStepRepo) CountByJourney(ctx context.Context, tx *gorm.DB, journeyID uint) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&domain.JourneyStep{}).
		Where("journey_id = ?", journeyID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *journeyStepRepo) SaveAnswer(ctx context.Context, tx *gorm.DB, step *domain.JourneyStep) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&domain.JourneyStep{}).
		Where("step_id = ?", step.ID).
		Updates(map[string]interface{}{
			"user_answer":   step.UserAnswer,
			"answer_result": step.AnswerResult,
		}).Error
}

func (r *journeyStepRepo) CountsThrough(ctx context.Context, tx *gorm.DB, journeyID, maxStepID uint) (StepCounts, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var counts StepCounts
	row := transaction.WithContext(ctx).
		Model(&domain.JourneyStep{}).
		Select(`COUNT(*) AS total,
			COUNT(CASE WHEN journey_steps.user_answer = questions.true_choice THEN 1 END) AS correct,
			COUNT(CASE WHEN journey_steps.user_answer IS NOT NULL AND journey_steps.user_answer <> ''
				AND journey_steps.user_answer <> questions.true_choice THEN 1 END) AS wrong,
			COUNT(CASE WHEN journey_steps.user_answer IS NULL OR journey_steps.user_answer = '' THEN 1 END) AS unanswered`).
		Joins("JOIN questions ON questions.id = journey_steps.question_id").
		Where("journey_steps.journey_id = ? AND journey_steps.step_id <= ?", journeyID, maxStepID).
		Row()
	if err := row.Scan(&counts.Total, &counts.Correct, &counts.Wrong, &counts.Unanswered); err != nil {
		return StepCounts{}, err
	}
	return counts, nil
}

func (r *journeyStepRepo) ResultCountsByJourney(ctx context.Context, tx *gorm.DB, journeyID uint) (ResultCounts, error) {
	return r.resultCounts(ctx, tx, "journey_id = ?", journeyID)
}

func (r *journeyStepRepo) ResultCountsByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) (ResultCounts, error) {
	return r.resultCounts(ctx, tx, "question_id = ?", questionID)
}

func (r *journeyStepRepo) resultCounts(ctx context.Context, tx *gorm.DB, cond string, arg uint) (ResultCounts, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var counts ResultCounts
	row := transaction.WithContext(ctx).
		Model(&domain.JourneyStep{}).
		Select(`COUNT(CASE WHEN answer_result = ? THEN 1 END) AS correct,
			COUNT(CASE WHEN answer_result = ? THEN 1 END) AS wrong,
			COUNT(CASE WHEN answer_result = ? THEN 1 END) AS not_selected`,
			domain.AnswerCorrect, domain.AnswerFalse, domain.AnswerNotSelected).
		Where(cond, arg).
		Row()
	if err := row.Scan(&counts.Correct, &counts.Wrong, &counts.NotSelected); err != nil {
		return ResultCounts{}, err
	}
	return counts, nil
}
