package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/deebajee2009/OnlineExamBackEnd/internal/domain"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/platform/logger"
)

type JourneyFilter struct {
	JourneyTypes []domain.JourneyType
	Limit        int
	Offset       int
}

// JourneyCounts carries the outcome columns written back after finalization
// or group scoring.
type JourneyCounts struct {
	Answered   uint
	Unanswered uint
	Correct    uint
	Wrong      uint
}

// JourneyScore extends JourneyCounts with the cohort fields only group
// scoring produces.
type JourneyScore struct {
	JourneyID uint
	JourneyCounts
	Score             float64
	Rank              uint
	TotalParticipants uint
}

type JourneyRepo interface {
	Create(ctx context.Context, tx *gorm.DB, journey *domain.Journey) (*domain.Journey, error)
	// GetByID loads the journey with its template so activity can be derived.
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*domain.Journey, error)
	GetByIDForUser(ctx context.Context, tx *gorm.DB, id, userID uint) (*domain.Journey, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uint, filter JourneyFilter) ([]*domain.Journey, int64, error)
	ListByTemplate(ctx context.Context, tx *gorm.DB, templateID uint, journeyType domain.JourneyType) ([]*domain.Journey, error)
	ExistsForTemplateUser(ctx context.Context, tx *gorm.DB, templateID, userID uint) (bool, error)
	SetLastSeenStep(ctx context.Context, tx *gorm.DB, journeyID, stepID uint) error
	SetFinishedAt(ctx context.Context, tx *gorm.DB, journey *domain.Journey) error
	// UpdateCounts persists finalization results only while answered_count is
	// still NULL, so concurrent finalizers write at most once. Reports whether
	// the row was claimed.
	UpdateCounts(ctx context.Context, tx *gorm.DB, journeyID uint, counts JourneyCounts) (bool, error)
	UpdateScores(ctx context.Context, tx *gorm.DB, scores []JourneyScore) error
}

type journeyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJourneyRepo(db *gorm.DB, baseLog *logger.Logger) JourneyRepo {
	repoLog := baseLog.With("repo", "JourneyRepo")
	return &journeyRepo{db: db, log: repoLog}
}

func (r *journeyRepo) Create(ctx context.Context, tx *gorm.DB, journey *domain.Journey) (*domain.Journey, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(journey).Error; err != nil {
		return nil, err
	}
	return journey, nil
}

func (r *journeyRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*domain.Journey, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var journey domain.Journey
	if err := transaction.WithContext(ctx).
		Preload("Template").
		First(&journey, id).Error; err != nil {
		return nil, err
	}
	return &journey, nil
}

func (r *journeyRepo) GetByIDForUser(ctx context.Context, tx *gorm.DB, id, userID uint) (*domain.Journey, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var journey domain.Journey
	if err := transaction.WithContext(ctx).
		Preload("Template").
		Where("journey_id = ? AND user_id = ?", id, userID).
		First(&journey).Error; err != nil {
		return nil, err
	}
	return &journey, nil
}

func (r *journeyRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uint, filter JourneyFilter) ([]*domain.Journey, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := transaction.WithContext(ctx).
		Model(&domain.Journey{}).
		Where("user_id = ?", userID)
	if len(filter.JourneyTypes) > 0 {
		query = query.Where("journey_type IN ?", filter.JourneyTypes)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	var journeys []*domain.Journey
	if err := query.
		Preload("Template").
		Order("created_at DESC").
		Find(&journeys).Error; err != nil {
		return nil, 0, err
	}
	return journeys, total, nil
}

func (r *journeyRepo) ListByTemplate(ctx context.Context, tx *gorm.DB, templateID uint, journeyType domain.JourneyType) ([]*domain.Journey, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var journeys []*domain.Journey
	if err := transaction.WithContext(ctx).
		Where("journey_template_id = ? AND journey_type = ?", templateID, journeyType).
		Find(&journeys).Error; err != nil {
		return nil, err
	}
	return journeys, nil
}

func (r *journeyRepo) ExistsForTemplateUser(ctx context.Context, tx *gorm.DB, templateID, userID uint) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&domain.Journey{}).
		Where("journey_template_id = ? AND user_id = ?", templateID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *journeyRepo) SetLastSeenStep(ctx context.Context, tx *gorm.DB, journeyID, stepID uint) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&domain.Journey{}).
		Where("journey_id = ?", journeyID).
		Update("last_seen_step_id", stepID).Error
}

func (r *journeyRepo) SetFinishedAt(ctx context.Context, tx *gorm.DB, journey *domain.Journey) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&domain.Journey{}).
		Where("journey_id = ?", journey.ID).
		Update("finished_at", journey.FinishedAt).Error
}

func (r *journeyRepo) UpdateCounts(ctx context.Context, tx *gorm.DB, journeyID uint, counts JourneyCounts) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	result := transaction.WithContext(ctx).
		Model(&domain.Journey{}).
		Where("journey_id = ? AND answered_count IS NULL", journeyID).
		Updates(map[string]interface{}{
			"answered_count":   counts.Answered,
			"unanswered_count": counts.Unanswered,
			"correct_count":    counts.Correct,
			"wrong_count":      counts.Wrong,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *journeyRepo) UpdateScores(ctx context.Context, tx *gorm.DB, scores []JourneyScore) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(scores) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).Transaction(func(innerTx *gorm.DB) error {
		for _, s := range scores {
			if err := innerTx.
				Model(&domain.Journey{}).
				Where("journey_id = ?", s.JourneyID).
				Updates(map[string]interface{}{
					"answered_count":     s.Answered,
					"unanswered_count":   s.Unanswered,
					"correct_count":      s.Correct,
					"wrong_count":        s.Wrong,
					"score":              s.Score,
					"rank":               s.Rank,
					"total_participants": s.TotalParticipants,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
