package services

import (
	"context"
	"testing"

	"github.com/deebajee2009/OnlineExamBackEnd/internal/domain"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/repos"
)

func TestHardness(t *testing.T) {
	cases := []struct {
		name   string
		counts repos.ResultCounts
		want   float64
	}{
		{name: "no answers", counts: repos.ResultCounts{}, want: 0},
		{name: "all correct", counts: repos.ResultCounts{Correct: 4}, want: 1},
		{name: "all wrong", counts: repos.ResultCounts{Wrong: 3}, want: 10},
		{name: "all skipped", counts: repos.ResultCounts{NotSelected: 2}, want: 5},
		// (2*1 + 1*5 + 1*10) / 4
		{name: "mixed", counts: repos.ResultCounts{Correct: 2, NotSelected: 1, Wrong: 1}, want: 4.25},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Hardness(tc.counts); got != tc.want {
				t.Errorf("Hardness(%+v) = %v, want %v", tc.counts, got, tc.want)
			}
		})
	}
}

func TestRefreshQuestion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "09123330001")
	q := f.question(t, domain.Choice1)

	results := []domain.AnswerResult{domain.AnswerCorrect, domain.AnswerFalse, domain.AnswerNotSelected, domain.AnswerNotSelected}
	for _, result := range results {
		journey := &domain.Journey{UserID: user.ID, JourneyType: domain.JourneyTraining, QuestionCountLimit: 5}
		if err := f.db.Create(journey).Error; err != nil {
			t.Fatalf("seed journey: %v", err)
		}
		step := &domain.JourneyStep{JourneyID: journey.ID, QuestionID: &q.ID, AnswerResult: result}
		if err := f.db.Create(step).Error; err != nil {
			t.Fatalf("seed step: %v", err)
		}
	}

	if err := f.hardness.RefreshQuestion(ctx, q.ID); err != nil {
		t.Fatalf("RefreshQuestion: %v", err)
	}

	var reloaded domain.Question
	if err := f.db.First(&reloaded, q.ID).Error; err != nil {
		t.Fatalf("reload question: %v", err)
	}
	// (1 + 10 + 5 + 5) / 4
	if reloaded.Hardness != 5.25 {
		t.Errorf("hardness = %v, want 5.25", reloaded.Hardness)
	}
}

func TestRefreshAllCoversEveryQuestion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "09123330002")

	answered := f.question(t, domain.Choice1)
	untouched := f.question(t, domain.Choice2)

	journey := &domain.Journey{UserID: user.ID, JourneyType: domain.JourneyTraining, QuestionCountLimit: 5}
	if err := f.db.Create(journey).Error; err != nil {
		t.Fatalf("seed journey: %v", err)
	}
	step := &domain.JourneyStep{JourneyID: journey.ID, QuestionID: &answered.ID, AnswerResult: domain.AnswerFalse}
	if err := f.db.Create(step).Error; err != nil {
		t.Fatalf("seed step: %v", err)
	}

	if err := f.hardness.RefreshAll(ctx); err != nil {
		t.Fatalf("RefreshAll: %v", err)
	}

	var q1, q2 domain.Question
	if err := f.db.First(&q1, answered.ID).Error; err != nil {
		t.Fatalf("reload answered: %v", err)
	}
	if err := f.db.First(&q2, untouched.ID).Error; err != nil {
		t.Fatalf("reload untouched: %v", err)
	}
	if q1.Hardness != 10 {
		t.Errorf("answered hardness = %v, want 10", q1.Hardness)
	}
	if q2.Hardness != 0 {
		t.Errorf("untouched hardness = %v, want 0", q2.Hardness)
	}
}
