package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/deebajee2009/OnlineExamBackEnd/internal/domain"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/platform/logger"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/repos"
)

// JourneyResult is the outcome summary returned when a journey is finalized.
type JourneyResult struct {
	JourneyID      uint               `json:"journey_id"`
	TotalQuestions int64              `json:"total_questions"`
	TrueAnswers    int64              `json:"true_answers"`
	FalseAnswers   int64              `json:"false_answers"`
	Unanswered     int64              `json:"unanswered"`
	FinishedAt     *time.Time         `json:"finished_at"`
	CreatedAt      time.Time          `json:"created_at"`
	Subject        *domain.Subject    `json:"subject"`
	JourneyType    domain.JourneyType `json:"journey_type"`
}

type ScoringService interface {
	// FinalizeJourney computes and persists the outcome counts for a finished
	// non-group journey. It only writes once: concurrent finalizers race on
	// the answered_count NULL guard and the losers keep the stored values.
	FinalizeJourney(ctx context.Context, journey *domain.Journey) (*JourneyResult, error)
	// ScoreGroupExam scores and ranks every journey of a group-exam template.
	// It reports success and never propagates internal failures, so schedulers
	// can retry on false.
	ScoreGroupExam(ctx context.Context, templateID uint) bool
}

type scoringService struct {
	db           *gorm.DB
	journeyRepo  repos.JourneyRepo
	stepRepo     repos.JourneyStepRepo
	templateRepo repos.JourneyTemplateRepo
	log          *logger.Logger
}

func NewScoringService(
	db *gorm.DB,
	journeyRepo repos.JourneyRepo,
	stepRepo repos.JourneyStepRepo,
	templateRepo repos.JourneyTemplateRepo,
	baseLog *logger.Logger,
) ScoringService {
	serviceLog := baseLog.With("service", "ScoringService")
	return &scoringService{
		db:           db,
		journeyRepo:  journeyRepo,
		stepRepo:     stepRepo,
		templateRepo: templateRepo,
		log:          serviceLog,
	}
}

func (s *scoringService) FinalizeJourney(ctx context.Context, journey *domain.Journey) (*JourneyResult, error) {
	result := &JourneyResult{
		JourneyID:   journey.ID,
		FinishedAt:  journey.FinishedAt,
		CreatedAt:   journey.CreatedAt,
		Subject:     journey.Subject,
		JourneyType: journey.JourneyType,
	}

	if journey.AnsweredCount != nil {
		// Already finalized; report the stored outcome.
		result.TrueAnswers = int64(deref(journey.CorrectCount))
		result.FalseAnswers = int64(deref(journey.WrongCount))
		result.Unanswered = int64(deref(journey.UnansweredCount))
		result.TotalQuestions = result.TrueAnswers + result.FalseAnswers + result.Unanswered
		return result, nil
	}

	now := time.Now().UTC()
	if journey.FinishedAt == nil || journey.FinishedAt.After(now) {
		return result, nil
	}
	if journey.LastSeenStepID == nil {
		// Never saw a question, nothing to count.
		return result, nil
	}

	counts, err := s.stepRepo.CountsThrough(ctx, nil, journey.ID, *journey.LastSeenStepID)
	if err != nil {
		return nil, err
	}

	total := counts.Total
	unanswered := counts.Unanswered
	// Exams grade the whole paper: steps past the cursor count as unanswered.
	if journey.JourneyType == domain.JourneyExam {
		totalAvailable, err := s.stepRepo.CountByJourney(ctx, nil, journey.ID)
		if err != nil {
			return nil, err
		}
		unanswered = totalAvailable - total + unanswered
		total = totalAvailable
	}

	claimed, err := s.journeyRepo.UpdateCounts(ctx, nil, journey.ID, repos.JourneyCounts{
		Answered:   uint(counts.Correct + counts.Wrong),
		Unanswered: uint(unanswered),
		Correct:    uint(counts.Correct),
		Wrong:      uint(counts.Wrong),
	})
	if err != nil {
		return nil, err
	}
	if !claimed {
		s.log.Debug("Journey already finalized by a concurrent writer", "journey_id", journey.ID)
	}

	result.TotalQuestions = total
	result.TrueAnswers = counts.Correct
	result.FalseAnswers = counts.Wrong
	result.Unanswered = unanswered
	return result, nil
}

var errNothingToScore = errors.New("template has no questions")

func (s *scoringService) ScoreGroupExam(ctx context.Context, templateID uint) bool {
	log := s.log.With("journey_template_id", templateID)

	// The answer reads, score derivation and bulk write share one transaction
	// so a submission landing mid-scoring cannot split the cohort across two
	// snapshots.
	var journeysScored, totalParticipants int
	var totalQuestions int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		totalQuestions, err = s.templateRepo.CountSteps(ctx, tx, templateID)
		if err != nil {
			return fmt.Errorf("count template questions: %w", err)
		}
		if totalQuestions == 0 {
			return errNothingToScore
		}

		journeys, err := s.journeyRepo.ListByTemplate(ctx, tx, templateID, domain.JourneyGroupExam)
		if err != nil {
			return fmt.Errorf("list group exam journeys: %w", err)
		}

		participants := make(map[uint]struct{}, len(journeys))
		rows := make([]GroupExamRow, 0, len(journeys))
		for _, journey := range journeys {
			participants[journey.UserID] = struct{}{}

			counts, err := s.stepRepo.ResultCountsByJourney(ctx, tx, journey.ID)
			if err != nil {
				return fmt.Errorf("aggregate journey %d answers: %w", journey.ID, err)
			}
			rows = append(rows, GroupExamRow{
				JourneyID: journey.ID,
				Correct:   counts.Correct,
				Wrong:     counts.Wrong,
			})
		}

		RankGroupExam(rows, totalQuestions)

		scores := make([]repos.JourneyScore, len(rows))
		for i, row := range rows {
			answered := row.Correct + row.Wrong
			scores[i] = repos.JourneyScore{
				JourneyID: row.JourneyID,
				JourneyCounts: repos.JourneyCounts{
					Answered:   uint(answered),
					Unanswered: uint(totalQuestions - answered),
					Correct:    uint(row.Correct),
					Wrong:      uint(row.Wrong),
				},
				Score:             row.Score,
				Rank:              row.Rank,
				TotalParticipants: uint(len(participants)),
			}
		}

		if err := s.journeyRepo.UpdateScores(ctx, tx, scores); err != nil {
			return fmt.Errorf("persist scores: %w", err)
		}
		journeysScored = len(rows)
		totalParticipants = len(participants)
		return nil
	})
	if errors.Is(err, errNothingToScore) {
		log.Warn("Template has no questions, nothing to score")
		return false
	}
	if err != nil {
		log.Error("Group exam scoring failed", "error", err)
		return false
	}

	log.Info("Group exam scored",
		"journeys", journeysScored,
		"participants", totalParticipants,
		"total_questions", totalQuestions)
	return true
}

func deref(v *uint) uint {
	if v == nil {
		return 0
	}
	return *v
}

// GroupExamRow is one journey's scoring line. Score and Rank are filled in by
// RankGroupExam.
type GroupExamRow struct {
	JourneyID uint
	Correct   int64
	Wrong     int64
	Score     float64
	Rank      uint
}

// ComputeScore applies the negative-marking formula: a wrong answer costs a
// third of a correct one. The result is a 0..100 percentage rounded to two
// decimals; ranking ties are decided on the rounded value.
func ComputeScore(correct, wrong, totalQuestions int64) float64 {
	raw := (float64(correct) - float64(wrong)/3.0) / float64(totalQuestions) * 100.0
	return math.Round(raw*100) / 100
}

// RankGroupExam scores every row and assigns dense ranks, highest score
// first: equal scores share a rank and the next distinct score gets the next
// consecutive rank.
func RankGroupExam(rows []GroupExamRow, totalQuestions int64) {
	for i := range rows {
		rows[i].Score = ComputeScore(rows[i].Correct, rows[i].Wrong, totalQuestions)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Score > rows[j].Score
	})

	rank := uint(0)
	var prev float64
	for i := range rows {
		if i == 0 || rows[i].Score != prev {
			rank++
			prev = rows[i].Score
		}
		rows[i].Rank = rank
	}
}
