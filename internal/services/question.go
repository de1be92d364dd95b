package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/deebajee2009/OnlineExamBackEnd/internal/domain"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/pkg/apperr"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/platform/logger"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/repos"
)

type QuestionInput struct {
	TextBody       string `json:"text_body"`
	Choice1        string `json:"choice_1"`
	Choice2        string `json:"choice_2"`
	Choice3        string `json:"choice_3"`
	Choice4        string `json:"choice_4"`
	TrueChoice     string `json:"true_choice"`
	Answer         string `json:"answer"`
	Direction      string `json:"direction"`
	MinRequiredAge *uint  `json:"min_required_age"`
	TagIDs         []uint `json:"tag_ids"`
}

type importLine struct {
	Index int    `json:"index"`
	Error string `json:"error,omitempty"`
}

type QuestionService interface {
	CreateQuestion(ctx context.Context, input QuestionInput) (*domain.Question, error)
	UpdateQuestion(ctx context.Context, questionID uint, input QuestionInput) (*domain.Question, error)
	GetQuestion(ctx context.Context, questionID uint) (*domain.Question, error)
	ListQuestions(ctx context.Context, filter repos.QuestionFilter) ([]*domain.Question, int64, error)
	SetActive(ctx context.Context, questionID uint, active bool) error
	CreateTag(ctx context.Context, name string, parentID *uint) (*domain.Tag, error)
	ListTags(ctx context.Context) ([]*domain.Tag, error)
	// Import bulk-loads questions, recording a per-line report on the run.
	// Bad lines are skipped, not fatal.
	Import(ctx context.Context, source string, inputs []QuestionInput) (*domain.ImportRun, error)
}

type questionService struct {
	db            *gorm.DB
	questionRepo  repos.QuestionRepo
	tagRepo       repos.TagRepo
	importRunRepo repos.ImportRunRepo
	log           *logger.Logger
}

func NewQuestionService(
	db *gorm.DB,
	questionRepo repos.QuestionRepo,
	tagRepo repos.TagRepo,
	importRunRepo repos.ImportRunRepo,
	baseLog *logger.Logger,
) QuestionService {
	serviceLog := baseLog.With("service", "QuestionService")
	return &questionService{
		db:            db,
		questionRepo:  questionRepo,
		tagRepo:       tagRepo,
		importRunRepo: importRunRepo,
		log:           serviceLog,
	}
}

func (s *questionService) buildQuestion(ctx context.Context, input QuestionInput) (*domain.Question, error) {
	question := &domain.Question{
		TextBody:       input.TextBody,
		Choice1:        input.Choice1,
		Choice2:        input.Choice2,
		Choice3:        input.Choice3,
		Choice4:        input.Choice4,
		TrueChoice:     input.TrueChoice,
		Answer:         input.Answer,
		Direction:      input.Direction,
		MinRequiredAge: input.MinRequiredAge,
		IsActive:       true,
	}
	if question.TextBody == "" {
		return nil, apperr.Validation("text_body_required", "a question body is required")
	}
	if err := question.Validate(); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "invalid_true_choice", err)
	}

	for _, tagID := range input.TagIDs {
		tag, err := s.tagRepo.GetByID(ctx, nil, tagID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("tag_not_found", "tag %d not found", tagID)
			}
			return nil, apperr.Internal("tag_load_failed", err)
		}
		question.Tags = append(question.Tags, *tag)
	}
	return question, nil
}

func (s *questionService) CreateQuestion(ctx context.Context, input QuestionInput) (*domain.Question, error) {
	question, err := s.buildQuestion(ctx, input)
	if err != nil {
		return nil, err
	}
	if _, err := s.questionRepo.Create(ctx, nil, question); err != nil {
		return nil, apperr.Internal("question_create_failed", err)
	}
	return question, nil
}

func (s *questionService) UpdateQuestion(ctx context.Context, questionID uint, input QuestionInput) (*domain.Question, error) {
	existing, err := s.questionRepo.GetByID(ctx, nil, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("question_not_found", "question %d not found", questionID)
		}
		return nil, apperr.Internal("question_load_failed", err)
	}

	updated, err := s.buildQuestion(ctx, input)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.IsActive = existing.IsActive
	updated.Hardness = existing.Hardness
	updated.CreatedAt = existing.CreatedAt

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(existing).Association("Tags").Replace(updated.Tags); err != nil {
			return err
		}
		return s.questionRepo.Update(ctx, tx, updated)
	})
	if err != nil {
		return nil, apperr.Internal("question_update_failed", err)
	}
	return updated, nil
}

func (s *questionService) GetQuestion(ctx context.Context, questionID uint) (*domain.Question, error) {
	question, err := s.questionRepo.GetByID(ctx, nil, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("question_not_found", "question %d not found", questionID)
		}
		return nil, apperr.Internal("question_load_failed", err)
	}
	return question, nil
}

func (s *questionService) ListQuestions(ctx context.Context, filter repos.QuestionFilter) ([]*domain.Question, int64, error) {
	questions, total, err := s.questionRepo.List(ctx, nil, filter)
	if err != nil {
		return nil, 0, apperr.Internal("question_list_failed", err)
	}
	return questions, total, nil
}

func (s *questionService) SetActive(ctx context.Context, questionID uint, active bool) error {
	question, err := s.questionRepo.GetByID(ctx, nil, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("question_not_found", "question %d not found", questionID)
		}
		return apperr.Internal("question_load_failed", err)
	}

	question.IsActive = active
	if err := s.questionRepo.Update(ctx, nil, question); err != nil {
		return apperr.Internal("question_update_failed", err)
	}
	return nil
}

func (s *questionService) CreateTag(ctx context.Context, name string, parentID *uint) (*domain.Tag, error) {
	if name == "" {
		return nil, apperr.Validation("tag_name_required", "a tag name is required")
	}
	if parentID != nil {
		if _, err := s.tagRepo.GetByID(ctx, nil, *parentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("tag_not_found", "parent tag %d not found", *parentID)
			}
			return nil, apperr.Internal("tag_load_failed", err)
		}
	}

	tag, err := s.tagRepo.Create(ctx, nil, &domain.Tag{Name: name, ParentID: parentID})
	if err != nil {
		return nil, apperr.Internal("tag_create_failed", err)
	}
	return tag, nil
}

func (s *questionService) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	tags, err := s.tagRepo.List(ctx, nil)
	if err != nil {
		return nil, apperr.Internal("tag_list_failed", err)
	}
	return tags, nil
}

func (s *questionService) Import(ctx context.Context, source string, inputs []QuestionInput) (*domain.ImportRun, error) {
	run, err := s.importRunRepo.Create(ctx, nil, &domain.ImportRun{
		Source:    source,
		Status:    domain.ImportRunRunning,
		StartedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, apperr.Internal("import_run_create_failed", err)
	}

	report := make([]importLine, 0, len(inputs))
	for i, input := range inputs {
		if _, err := s.CreateQuestion(ctx, input); err != nil {
			run.Skipped++
			report = append(report, importLine{Index: i, Error: err.Error()})
			continue
		}
		run.Created++
	}

	run.Status = domain.ImportRunSucceeded
	if run.Created == 0 && run.Skipped > 0 {
		run.Status = domain.ImportRunFailed
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return nil, apperr.Internal("import_report_encode_failed", err)
	}
	run.Report = datatypes.JSON(raw)

	if err := s.importRunRepo.Finish(ctx, nil, run); err != nil {
		return nil, apperr.Internal("import_run_finish_failed", err)
	}

	s.log.Info("Question import finished",
		"source", source,
		"created", run.Created,
		"skipped", run.Skipped,
		"status", run.Status)
	return run, nil
}
