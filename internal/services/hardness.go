package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/deebajee2009/OnlineExamBackEnd/internal/domain"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/platform/logger"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/repos"
)

const hardnessWorkers = 8

type HardnessService interface {
	// RefreshQuestion recomputes one question's hardness from every recorded
	// answer.
	RefreshQuestion(ctx context.Context, questionID uint) error
	// RefreshAll walks every question; intended to run on a schedule.
	RefreshAll(ctx context.Context) error
}

type hardnessService struct {
	questionRepo repos.QuestionRepo
	stepRepo     repos.JourneyStepRepo
	log          *logger.Logger
}

func NewHardnessService(
	questionRepo repos.QuestionRepo,
	stepRepo repos.JourneyStepRepo,
	baseLog *logger.Logger,
) HardnessService {
	serviceLog := baseLog.With("service", "HardnessService")
	return &hardnessService{
		questionRepo: questionRepo,
		stepRepo:     stepRepo,
		log:          serviceLog,
	}
}

func (s *hardnessService) RefreshQuestion(ctx context.Context, questionID uint) error {
	counts, err := s.stepRepo.ResultCountsByQuestion(ctx, nil, questionID)
	if err != nil {
		return err
	}
	return s.questionRepo.UpdateHardness(ctx, nil, questionID, Hardness(counts))
}

func (s *hardnessService) RefreshAll(ctx context.Context) error {
	ids, err := s.questionRepo.ListIDs(ctx, nil)
	if err != nil {
		return err
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(hardnessWorkers)
	for _, id := range ids {
		questionID := id
		group.Go(func() error {
			return s.RefreshQuestion(groupCtx, questionID)
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	s.log.Info("Question hardness refreshed", "questions", len(ids))
	return nil
}

// Hardness averages the per-answer penalty: 1 for a correct answer, 5 for a
// skipped one, 10 for a wrong one. Zero when nobody has seen the question.
func Hardness(counts repos.ResultCounts) float64 {
	total := counts.Total()
	if total == 0 {
		return 0
	}
	points := counts.Correct*domain.HardnessCorrect +
		counts.NotSelected*domain.HardnessNotSelected +
		counts.Wrong*domain.HardnessWrong
	return float64(points) / float64(total)
}
