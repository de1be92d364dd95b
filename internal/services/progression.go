package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/deebajee2009/OnlineExamBackEnd/internal/domain"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/pkg/apperr"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/platform/logger"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/repos"
)

type StartJourneyInput struct {
	Subject            *domain.Subject
	TimeMinutesLimit   uint
	QuestionCountLimit uint
	JourneyType        domain.JourneyType
}

// StartedJourney bundles a fresh journey with its first step.
type StartedJourney struct {
	Journey *domain.Journey
	Step    *domain.JourneyStep
}

type ProgressionService interface {
	// StartJourney opens an adaptive journey and hands out its first question.
	StartJourney(ctx context.Context, userID uint, input StartJourneyInput) (*StartedJourney, error)
	// InstantiateTemplate enrolls the user into a template: the journey is
	// created with every template question materialized as a step, in template
	// order.
	InstantiateTemplate(ctx context.Context, userID, templateID uint) (*StartedJourney, error)
	// NextStep advances the journey cursor. Template-backed journeys walk
	// their pre-created steps; adaptive journeys draw a random unseen active
	// question and create the step on the fly.
	NextStep(ctx context.Context, journeyID uint, afterStepID *uint) (*domain.JourneyStep, error)
	SubmitAnswer(ctx context.Context, journeyID, stepID uint, userAnswer string) (*domain.JourneyStep, error)
	// FinishJourney stamps finished_at and finalizes the outcome counts.
	// Group exams are finalized later by the cohort scorer.
	FinishJourney(ctx context.Context, userID, journeyID uint) (*JourneyResult, error)
	// GetStep re-fetches a step's question and moves the cursor onto it.
	GetStep(ctx context.Context, stepID uint) (*domain.JourneyStep, error)
}

type progressionService struct {
	db           *gorm.DB
	journeyRepo  repos.JourneyRepo
	stepRepo     repos.JourneyStepRepo
	questionRepo repos.QuestionRepo
	templateRepo repos.JourneyTemplateRepo
	scoring      ScoringService
	log          *logger.Logger
}

func NewProgressionService(
	db *gorm.DB,
	journeyRepo repos.JourneyRepo,
	stepRepo repos.JourneyStepRepo,
	questionRepo repos.QuestionRepo,
	templateRepo repos.JourneyTemplateRepo,
	scoring ScoringService,
	baseLog *logger.Logger,
) ProgressionService {
	serviceLog := baseLog.With("service", "ProgressionService")
	return &progressionService{
		db:           db,
		journeyRepo:  journeyRepo,
		stepRepo:     stepRepo,
		questionRepo: questionRepo,
		templateRepo: templateRepo,
		scoring:      scoring,
		log:          serviceLog,
	}
}

func (s *progressionService) StartJourney(ctx context.Context, userID uint, input StartJourneyInput) (*StartedJourney, error) {
	if input.TimeMinutesLimit == 0 && input.QuestionCountLimit == 0 {
		return nil, apperr.Validation("journey_limits_required",
			"at least one of time_minutes_limit or question_count_limit must be greater than zero")
	}

	journeyType := input.JourneyType
	if journeyType == "" {
		journeyType = domain.JourneyTraining
	}

	journey, err := s.journeyRepo.Create(ctx, nil, &domain.Journey{
		UserID:             userID,
		Subject:            input.Subject,
		TimeMinutesLimit:   input.TimeMinutesLimit,
		QuestionCountLimit: input.QuestionCountLimit,
		JourneyType:        journeyType,
	})
	if err != nil {
		return nil, apperr.Internal("journey_create_failed", err)
	}

	step, err := s.NextStep(ctx, journey.ID, nil)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNoContent {
			return nil, apperr.Validation("no_available_question", "no available question")
		}
		return nil, err
	}

	s.log.Info("Journey started", "journey_id", journey.ID, "user_id", userID, "journey_type", journeyType)
	return &StartedJourney{Journey: journey, Step: step}, nil
}

func (s *progressionService) InstantiateTemplate(ctx context.Context, userID, templateID uint) (*StartedJourney, error) {
	template, err := s.templateRepo.GetByID(ctx, nil, templateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("template_not_found", "journey template %d not found", templateID)
		}
		return nil, apperr.Internal("template_load_failed", err)
	}

	now := time.Now().UTC()
	var finishedAt *time.Time
	if template.JourneyType == domain.JourneyGroupExam {
		exists, err := s.journeyRepo.ExistsForTemplateUser(ctx, nil, templateID, userID)
		if err != nil {
			return nil, apperr.Internal("enrollment_check_failed", err)
		}
		if exists {
			return nil, apperr.Conflict("already_enrolled",
				"a journey from this template already exists for your account")
		}
		if template.StartDatetime == nil {
			return nil, apperr.Validation("template_not_scheduled", "no proper time to start journey")
		}
		deadline := template.Deadline()
		if !now.Before(deadline) || now.Before(*template.StartDatetime) {
			return nil, apperr.Validation("outside_exam_window", "no proper time to start journey")
		}
		finishedAt = &deadline
	}

	stepTemplates, err := s.templateRepo.ListSteps(ctx, nil, templateID)
	if err != nil {
		return nil, apperr.Internal("template_steps_load_failed", err)
	}

	var journey *domain.Journey
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		journey, err = s.journeyRepo.Create(ctx, tx, &domain.Journey{
			UserID:      userID,
			JourneyType: template.JourneyType,
			TemplateID:  &template.ID,
			FinishedAt:  finishedAt,
		})
		if err != nil {
			return err
		}

		steps := make([]*domain.JourneyStep, len(stepTemplates))
		for i, stepTemplate := range stepTemplates {
			steps[i] = &domain.JourneyStep{
				JourneyID:  journey.ID,
				QuestionID: stepTemplate.QuestionID,
			}
		}
		return s.stepRepo.CreateBatch(ctx, tx, steps)
	})
	if err != nil {
		return nil, apperr.Internal("journey_instantiate_failed", err)
	}

	step, err := s.NextStep(ctx, journey.ID, nil)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNoContent {
			return nil, apperr.Validation("no_available_step", "no available step")
		}
		return nil, err
	}

	s.log.Info("Journey instantiated from template",
		"journey_id", journey.ID,
		"journey_template_id", templateID,
		"user_id", userID,
		"steps", len(stepTemplates))
	return &StartedJourney{Journey: journey, Step: step}, nil
}

func (s *progressionService) NextStep(ctx context.Context, journeyID uint, afterStepID *uint) (*domain.JourneyStep, error) {
	journey, err := s.journeyRepo.GetByID(ctx, nil, journeyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("journey_not_found", "journey %d not found", journeyID)
		}
		return nil, apperr.Internal("journey_load_failed", err)
	}

	active, err := s.journeyActive(ctx, journey)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, apperr.NoContent("journey_not_active", "journey is not active or no questions")
	}

	var step *domain.JourneyStep
	if journey.TemplateID != nil {
		step, err = s.stepRepo.FirstAfter(ctx, nil, journey.ID, afterStepID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NoContent("no_more_steps", "journey is not active or no questions")
			}
			return nil, apperr.Internal("step_lookup_failed", err)
		}
	} else {
		step, err = s.createAdaptiveStep(ctx, journey)
		if err != nil {
			return nil, err
		}
	}

	if err := s.journeyRepo.SetLastSeenStep(ctx, nil, journey.ID, step.ID); err != nil {
		return nil, apperr.Internal("cursor_update_failed", err)
	}
	return step, nil
}

// createAdaptiveStep draws a random unseen active question and materializes
// the step. The unique (journey, question) index turns a concurrent double
// draw of the same question into an error instead of a duplicate.
func (s *progressionService) createAdaptiveStep(ctx context.Context, journey *domain.Journey) (*domain.JourneyStep, error) {
	var step *domain.JourneyStep
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		question, err := s.questionRepo.PickRandomUnasked(ctx, tx, journey.ID)
		if err != nil {
			return err
		}
		step, err = s.stepRepo.Create(ctx, tx, &domain.JourneyStep{
			JourneyID:  journey.ID,
			QuestionID: &question.ID,
		})
		if err != nil {
			return err
		}
		step.Question = question
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NoContent("questions_exhausted", "journey is not active or no questions")
		}
		return nil, apperr.Internal("step_create_failed", err)
	}
	return step, nil
}

func (s *progressionService) SubmitAnswer(ctx context.Context, journeyID, stepID uint, userAnswer string) (*domain.JourneyStep, error) {
	step, err := s.stepRepo.GetForJourney(ctx, nil, journeyID, stepID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("step_not_found", "journey step not found")
		}
		return nil, apperr.Internal("step_load_failed", err)
	}

	active, err := s.journeyActive(ctx, step.Journey)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, apperr.NotFound("journey_not_active", "journey is not active")
	}

	// The exam window is re-checked at submission time: the journey may have
	// been loaded moments before the deadline.
	template := step.Journey.Template
	if template != nil && template.StartDatetime != nil {
		if time.Now().UTC().After(template.Deadline()) {
			return nil, apperr.Validation("exam_window_closed", "the group exam has finished")
		}
	}

	step.UserAnswer = userAnswer
	step.RecomputeResult(step.Question)
	if err := s.stepRepo.SaveAnswer(ctx, nil, step); err != nil {
		return nil, apperr.Internal("answer_save_failed", err)
	}
	return step, nil
}

func (s *progressionService) FinishJourney(ctx context.Context, userID, journeyID uint) (*JourneyResult, error) {
	journey, err := s.journeyRepo.GetByIDForUser(ctx, nil, journeyID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("journey_not_found", "journey not found for this user")
		}
		return nil, apperr.Internal("journey_load_failed", err)
	}

	now := time.Now().UTC()
	journey.FinishedAt = &now
	if err := s.journeyRepo.SetFinishedAt(ctx, nil, journey); err != nil {
		return nil, apperr.Internal("journey_finish_failed", err)
	}

	if journey.TemplateID != nil && journey.JourneyType == domain.JourneyGroupExam {
		// Cohort scoring happens after the exam window closes.
		return nil, apperr.NoContent("group_exam_finished", "group exam finished successfully")
	}

	result, err := s.scoring.FinalizeJourney(ctx, journey)
	if err != nil {
		return nil, apperr.Internal("journey_finalize_failed", err)
	}
	return result, nil
}

func (s *progressionService) GetStep(ctx context.Context, stepID uint) (*domain.JourneyStep, error) {
	step, err := s.stepRepo.GetByID(ctx, nil, stepID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("step_not_found", "journey step not found")
		}
		return nil, apperr.Internal("step_load_failed", err)
	}

	active, err := s.journeyActive(ctx, step.Journey)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, apperr.NoContent("journey_not_active", "journey is not active")
	}

	if err := s.journeyRepo.SetLastSeenStep(ctx, nil, step.JourneyID, step.ID); err != nil {
		return nil, apperr.Internal("cursor_update_failed", err)
	}
	return step, nil
}

func (s *progressionService) journeyActive(ctx context.Context, journey *domain.Journey) (bool, error) {
	var stepCount int64
	if journey.QuestionCountLimit > 0 {
		var err error
		stepCount, err = s.stepRepo.CountByJourney(ctx, nil, journey.ID)
		if err != nil {
			return false, apperr.Internal("step_count_failed", err)
		}
	}
	return journey.ActiveAt(time.Now().UTC(), stepCount), nil
}
