package services

import (
	"context"
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/deebajee2009/OnlineExamBackEnd/internal/domain"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/pkg/apperr"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/platform/logger"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/repos"
)

// JourneySummary is a journey list row with derived activity.
type JourneySummary struct {
	*domain.Journey
	IsActive bool `json:"is_active"`
}

// LastSeenQuestion is the last question shown in a journey, replayed in the
// detail view so clients can restore their position.
type LastSeenQuestion struct {
	StepID     uint   `json:"step_id"`
	QuestionID uint   `json:"question_id"`
	TextBody   string `json:"text_body"`
	Choice1    string `json:"choice_1"`
	Choice2    string `json:"choice_2"`
	Choice3    string `json:"choice_3"`
	Choice4    string `json:"choice_4"`
	Direction  string `json:"direction"`
	Answer     string `json:"answer"`
}

type JourneyDetail struct {
	JourneyID          uint               `json:"journey_id"`
	Subject            *domain.Subject    `json:"subject"`
	TimeMinutesLimit   uint               `json:"time_minutes_limit"`
	QuestionCountLimit uint               `json:"question_count_limit"`
	CreatedAt          time.Time          `json:"created_at"`
	FinishedAt         *time.Time         `json:"finished_at"`
	IsActive           bool               `json:"is_active"`
	StepIDs            []uint             `json:"journey_steps"`
	QuestionsCount     int                `json:"questions_count"`
	LastSeenStep       *LastSeenQuestion  `json:"last_seen_journey_step"`
	JourneyType        domain.JourneyType `json:"journey_type"`
}

type OverallReport struct {
	TotalQuestions int64   `json:"total_questions"`
	TrueAnswers    int64   `json:"true_answers"`
	FalseAnswers   int64   `json:"false_answers"`
	Unanswered     int64   `json:"unanswered"`
	TotalHours     float64 `json:"total_hours"`
}

type ReportService interface {
	// ListJourneys pages through the user's journeys, newest first. Finished
	// journeys that were never finalized get their counts computed on the way
	// out.
	ListJourneys(ctx context.Context, userID uint, filter repos.JourneyFilter) ([]*JourneySummary, int64, error)
	JourneyDetail(ctx context.Context, userID, journeyID uint) (*JourneyDetail, error)
	OverallReport(ctx context.Context, userID uint) (*OverallReport, error)
	ListExamTemplates(ctx context.Context) ([]*domain.JourneyTemplate, error)
	ListOpenGroupExamTemplates(ctx context.Context) ([]*domain.JourneyTemplate, error)
}

type reportService struct {
	journeyRepo  repos.JourneyRepo
	stepRepo     repos.JourneyStepRepo
	templateRepo repos.JourneyTemplateRepo
	scoring      ScoringService
	log          *logger.Logger
}

func NewReportService(
	journeyRepo repos.JourneyRepo,
	stepRepo repos.JourneyStepRepo,
	templateRepo repos.JourneyTemplateRepo,
	scoring ScoringService,
	baseLog *logger.Logger,
) ReportService {
	serviceLog := baseLog.With("service", "ReportService")
	return &reportService{
		journeyRepo:  journeyRepo,
		stepRepo:     stepRepo,
		templateRepo: templateRepo,
		scoring:      scoring,
		log:          serviceLog,
	}
}

func (s *reportService) ListJourneys(ctx context.Context, userID uint, filter repos.JourneyFilter) ([]*JourneySummary, int64, error) {
	journeys, total, err := s.journeyRepo.ListByUser(ctx, nil, userID, filter)
	if err != nil {
		return nil, 0, apperr.Internal("journey_list_failed", err)
	}

	now := time.Now().UTC()
	summaries := make([]*JourneySummary, len(journeys))
	for i, journey := range journeys {
		if s.needsLazyFinalize(journey, now) {
			if _, err := s.scoring.FinalizeJourney(ctx, journey); err != nil {
				s.log.Warn("Lazy finalization failed", "journey_id", journey.ID, "error", err)
			}
		}

		stepCount := int64(0)
		if journey.QuestionCountLimit > 0 {
			stepCount, err = s.stepRepo.CountByJourney(ctx, nil, journey.ID)
			if err != nil {
				return nil, 0, apperr.Internal("step_count_failed", err)
			}
		}
		summaries[i] = &JourneySummary{
			Journey:  journey,
			IsActive: journey.ActiveAt(now, stepCount),
		}
	}
	return summaries, total, nil
}

func (s *reportService) needsLazyFinalize(journey *domain.Journey, now time.Time) bool {
	if journey.JourneyType == domain.JourneyGroupExam && journey.TemplateID != nil {
		return false
	}
	return journey.FinishedAt != nil &&
		!journey.FinishedAt.After(now) &&
		journey.AnsweredCount == nil &&
		journey.LastSeenStepID != nil
}

func (s *reportService) JourneyDetail(ctx context.Context, userID, journeyID uint) (*JourneyDetail, error) {
	journey, err := s.journeyRepo.GetByIDForUser(ctx, nil, journeyID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("journey_not_found", "journey not found for this user")
		}
		return nil, apperr.Internal("journey_load_failed", err)
	}

	steps, err := s.stepRepo.ListByJourney(ctx, nil, journey.ID)
	if err != nil {
		return nil, apperr.Internal("step_list_failed", err)
	}

	detail := &JourneyDetail{
		JourneyID:          journey.ID,
		Subject:            journey.Subject,
		TimeMinutesLimit:   journey.TimeMinutesLimit,
		QuestionCountLimit: journey.QuestionCountLimit,
		CreatedAt:          journey.CreatedAt,
		FinishedAt:         journey.FinishedAt,
		IsActive:           journey.ActiveAt(time.Now().UTC(), int64(len(steps))),
		StepIDs:            make([]uint, len(steps)),
		QuestionsCount:     len(steps),
		JourneyType:        journey.JourneyType,
	}
	for i, step := range steps {
		detail.StepIDs[i] = step.ID
		if journey.LastSeenStepID != nil && step.ID == *journey.LastSeenStepID && step.Question != nil {
			detail.LastSeenStep = &LastSeenQuestion{
				StepID:     step.ID,
				QuestionID: step.Question.ID,
				TextBody:   step.Question.TextBody,
				Choice1:    step.Question.Choice1,
				Choice2:    step.Question.Choice2,
				Choice3:    step.Question.Choice3,
				Choice4:    step.Question.Choice4,
				Direction:  step.Question.Direction,
				Answer:     step.Question.Answer,
			}
		}
	}
	return detail, nil
}

func (s *reportService) OverallReport(ctx context.Context, userID uint) (*OverallReport, error) {
	journeys, _, err := s.journeyRepo.ListByUser(ctx, nil, userID, repos.JourneyFilter{})
	if err != nil {
		return nil, apperr.Internal("journey_list_failed", err)
	}

	report := &OverallReport{}
	var totalDuration time.Duration
	for _, journey := range journeys {
		steps, err := s.stepRepo.ListByJourney(ctx, nil, journey.ID)
		if err != nil {
			return nil, apperr.Internal("step_list_failed", err)
		}

		report.TotalQuestions += int64(len(steps))
		for _, step := range steps {
			switch {
			case step.UserAnswer == "":
				report.Unanswered++
			case step.Question != nil && step.UserAnswer == step.Question.TrueChoice:
				report.TrueAnswers++
			default:
				report.FalseAnswers++
			}
		}

		if journey.FinishedAt != nil {
			totalDuration += journey.FinishedAt.Sub(journey.CreatedAt)
		}
	}

	report.TotalHours = math.Round(totalDuration.Hours()*100) / 100
	return report, nil
}

func (s *reportService) ListExamTemplates(ctx context.Context) ([]*domain.JourneyTemplate, error) {
	templates, err := s.templateRepo.ListByType(ctx, nil, domain.JourneyExam)
	if err != nil {
		return nil, apperr.Internal("template_list_failed", err)
	}
	return templates, nil
}

func (s *reportService) ListOpenGroupExamTemplates(ctx context.Context) ([]*domain.JourneyTemplate, error) {
	templates, err := s.templateRepo.ListOpenGroupExams(ctx, nil, time.Now().UTC())
	if err != nil {
		return nil, apperr.Internal("template_list_failed", err)
	}
	return templates, nil
}
