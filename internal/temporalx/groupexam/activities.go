package groupexam

import (
	"context"
	"fmt"

	"github.com/deebajee2009/OnlineExamBackEnd/internal/platform/logger"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/services"
)

type Activities struct {
	Log     *logger.Logger
	Scoring services.ScoringService
}

// Score runs the cohort scoring pass. Scoring swallows its own failures and
// reports a bool, so a false return surfaces here as an error to make
// Temporal retry the attempt.
func (a *Activities) Score(ctx context.Context, templateID uint) error {
	if a == nil || a.Scoring == nil {
		return fmt.Errorf("groupexam: activity not configured")
	}
	if !a.Scoring.ScoreGroupExam(ctx, templateID) {
		return fmt.Errorf("groupexam: scoring template %d did not complete", templateID)
	}
	if a.Log != nil {
		a.Log.Info("Group exam scored", "journey_template_id", templateID)
	}
	return nil
}
