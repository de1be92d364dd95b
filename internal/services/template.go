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

// scheduleGrace pads the scoring trigger past the exam deadline so last-second
// submissions land before the cohort is scored.
const scheduleGrace = 5 * time.Second

// GroupExamScheduler defers cohort scoring until an exam window closes.
// Scheduling the same template again replaces the previous trigger.
type GroupExamScheduler interface {
	ScheduleGroupExamScoring(ctx context.Context, templateID uint, runAt time.Time) error
}

// CreateTemplateInput carries either an explicit question list or a
// QuestionCount for uniform random draw from the active pool.
type CreateTemplateInput struct {
	Name             string
	JourneyType      domain.JourneyType
	TimeMinutesLimit uint
	StartDatetime    *time.Time
	QuestionIDs      []uint
	QuestionCount    uint
}

type UpdateTemplateScheduleInput struct {
	StartDatetime    *time.Time
	TimeMinutesLimit *uint
}

type TemplateService interface {
	CreateTemplate(ctx context.Context, input CreateTemplateInput) (*domain.JourneyTemplate, error)
	GetTemplate(ctx context.Context, templateID uint) (*domain.JourneyTemplate, error)
	// UpdateSchedule moves a template's exam window and replaces its pending
	// scoring trigger.
	UpdateSchedule(ctx context.Context, templateID uint, input UpdateTemplateScheduleInput) (*domain.JourneyTemplate, error)
}

type templateService struct {
	db           *gorm.DB
	templateRepo repos.JourneyTemplateRepo
	questionRepo repos.QuestionRepo
	scheduler    GroupExamScheduler
	log          *logger.Logger
}

func NewTemplateService(
	db *gorm.DB,
	templateRepo repos.JourneyTemplateRepo,
	questionRepo repos.QuestionRepo,
	scheduler GroupExamScheduler,
	baseLog *logger.Logger,
) TemplateService {
	serviceLog := baseLog.With("service", "TemplateService")
	return &templateService{
		db:           db,
		templateRepo: templateRepo,
		questionRepo: questionRepo,
		scheduler:    scheduler,
		log:          serviceLog,
	}
}

func (s *templateService) CreateTemplate(ctx context.Context, input CreateTemplateInput) (*domain.JourneyTemplate, error) {
	if input.Name == "" {
		return nil, apperr.Validation("template_name_required", "a template name is required")
	}
	switch input.JourneyType {
	case domain.JourneyTraining, domain.JourneyExam, domain.JourneyGroupExam:
	default:
		return nil, apperr.Validation("invalid_journey_type", "unknown journey type %q", input.JourneyType)
	}
	questionIDs, err := s.resolveQuestions(ctx, input)
	if err != nil {
		return nil, err
	}

	var template *domain.JourneyTemplate
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		template, err = s.templateRepo.Create(ctx, tx, &domain.JourneyTemplate{
			Name:             input.Name,
			JourneyType:      input.JourneyType,
			TimeMinutesLimit: input.TimeMinutesLimit,
			StartDatetime:    input.StartDatetime,
		})
		if err != nil {
			return err
		}

		steps := make([]*domain.JourneyStepTemplate, len(questionIDs))
		for i, id := range questionIDs {
			questionID := id
			steps[i] = &domain.JourneyStepTemplate{
				JourneyTemplateID: template.ID,
				QuestionID:        &questionID,
			}
		}
		return s.templateRepo.AddSteps(ctx, tx, steps)
	})
	if err != nil {
		return nil, apperr.Internal("template_create_failed", err)
	}

	s.maybeScheduleScoring(ctx, template)

	s.log.Info("Journey template created",
		"journey_template_id", template.ID,
		"journey_type", template.JourneyType,
		"questions", len(questionIDs))
	return template, nil
}

// resolveQuestions turns the input into the ordered question id list the
// template's steps are built from: either the caller's explicit list
// (validated for duplicates and existence) or a uniform random draw of
// QuestionCount questions from the active pool, in selection order.
func (s *templateService) resolveQuestions(ctx context.Context, input CreateTemplateInput) ([]uint, error) {
	if len(input.QuestionIDs) > 0 {
		if input.QuestionCount > 0 {
			return nil, apperr.Validation("ambiguous_question_source", "provide question ids or a question count, not both")
		}
		seen := make(map[uint]struct{}, len(input.QuestionIDs))
		for _, id := range input.QuestionIDs {
			if _, dup := seen[id]; dup {
				return nil, apperr.Validation("duplicate_question", "question %d appears more than once", id)
			}
			seen[id] = struct{}{}
			if _, err := s.questionRepo.GetByID(ctx, nil, id); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, apperr.NotFound("question_not_found", "question %d not found", id)
				}
				return nil, apperr.Internal("question_load_failed", err)
			}
		}
		return input.QuestionIDs, nil
	}

	if input.QuestionCount == 0 {
		return nil, apperr.Validation("questions_required", "a template needs at least one question")
	}
	ids, err := s.questionRepo.PickRandomActive(ctx, nil, int(input.QuestionCount))
	if err != nil {
		return nil, apperr.Internal("question_draw_failed", err)
	}
	if uint(len(ids)) < input.QuestionCount {
		return nil, apperr.Validation("insufficient_questions",
			"only %d active questions available, %d requested", len(ids), input.QuestionCount)
	}
	return ids, nil
}

func (s *templateService) GetTemplate(ctx context.Context, templateID uint) (*domain.JourneyTemplate, error) {
	template, err := s.templateRepo.GetWithSteps(ctx, nil, templateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("template_not_found", "journey template %d not found", templateID)
		}
		return nil, apperr.Internal("template_load_failed", err)
	}
	return template, nil
}

func (s *templateService) UpdateSchedule(ctx context.Context, templateID uint, input UpdateTemplateScheduleInput) (*domain.JourneyTemplate, error) {
	template, err := s.templateRepo.GetByID(ctx, nil, templateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("template_not_found", "journey template %d not found", templateID)
		}
		return nil, apperr.Internal("template_load_failed", err)
	}

	if input.StartDatetime != nil {
		template.StartDatetime = input.StartDatetime
	}
	if input.TimeMinutesLimit != nil {
		template.TimeMinutesLimit = *input.TimeMinutesLimit
	}
	if err := s.db.WithContext(ctx).Save(template).Error; err != nil {
		return nil, apperr.Internal("template_update_failed", err)
	}

	s.maybeScheduleScoring(ctx, template)
	return template, nil
}

// maybeScheduleScoring arms the deferred cohort scorer when the template has
// a future exam window. A nil scheduler downgrades to a warning so templates
// can still be managed while the workflow engine is down; the cohort is then
// scored manually.
func (s *templateService) maybeScheduleScoring(ctx context.Context, template *domain.JourneyTemplate) {
	if template.JourneyType != domain.JourneyGroupExam {
		return
	}
	if template.StartDatetime == nil || template.TimeMinutesLimit == 0 {
		return
	}

	runAt := template.Deadline().Add(scheduleGrace)
	if !runAt.After(time.Now().UTC()) {
		return
	}

	if s.scheduler == nil {
		s.log.Warn("No scheduler configured, skipping scoring trigger",
			"journey_template_id", template.ID, "run_at", runAt)
		return
	}
	if err := s.scheduler.ScheduleGroupExamScoring(ctx, template.ID, runAt); err != nil {
		s.log.Error("Failed to schedule group exam scoring",
			"journey_template_id", template.ID, "run_at", runAt, "error", err)
		return
	}
	s.log.Info("Group exam scoring scheduled",
		"journey_template_id", template.ID, "run_at", runAt)
}
