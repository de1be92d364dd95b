package services

import (
	"context"
	"testing"
	"time"

	"github.com/deebajee2009/OnlineExamBackEnd/internal/domain"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/pkg/apperr"
)

func TestStartJourneyRequiresALimit(t *testing.T) {
	f := newFixture(t)
	user := f.user(t, "09122220001")

	_, err := f.progression.StartJourney(context.Background(), user.ID, StartJourneyInput{})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("no limits: kind = %v, want validation", apperr.KindOf(err))
	}
}

func TestAdaptiveJourneyNeverRepeatsQuestions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "09122220002")
	f.seedQuestions(t, 5)

	started, err := f.progression.StartJourney(ctx, user.ID, StartJourneyInput{QuestionCountLimit: 100})
	if err != nil {
		t.Fatalf("StartJourney: %v", err)
	}
	if started.Step == nil || started.Step.Question == nil {
		t.Fatal("expected a first question")
	}

	seen := map[uint]bool{*started.Step.QuestionID: true}
	cursor := started.Step.ID
	for i := 0; i < 4; i++ {
		step, err := f.progression.NextStep(ctx, started.Journey.ID, &cursor)
		if err != nil {
			t.Fatalf("NextStep %d: %v", i, err)
		}
		if seen[*step.QuestionID] {
			t.Fatalf("question %d served twice", *step.QuestionID)
		}
		seen[*step.QuestionID] = true
		cursor = step.ID
	}

	// Pool exhausted after all five questions.
	_, err = f.progression.NextStep(ctx, started.Journey.ID, &cursor)
	if apperr.KindOf(err) != apperr.KindNoContent {
		t.Errorf("exhausted pool: kind = %v, want no-content", apperr.KindOf(err))
	}
}

func TestNextStepCursorUpdates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "09122220003")
	f.seedQuestions(t, 2)

	started, err := f.progression.StartJourney(ctx, user.ID, StartJourneyInput{QuestionCountLimit: 10})
	if err != nil {
		t.Fatalf("StartJourney: %v", err)
	}

	journey, err := f.journeyRepo.GetByID(ctx, nil, started.Journey.ID)
	if err != nil {
		t.Fatalf("reload journey: %v", err)
	}
	if journey.LastSeenStepID == nil || *journey.LastSeenStepID != started.Step.ID {
		t.Errorf("cursor = %v, want %d", journey.LastSeenStepID, started.Step.ID)
	}
}

func TestTemplateJourneyWalksStepsInOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "09122220004")

	questions := f.seedQuestions(t, 3)
	tpl := f.template(t, domain.JourneyExam, nil, 0, questions)

	started, err := f.progression.InstantiateTemplate(ctx, user.ID, tpl.ID)
	if err != nil {
		t.Fatalf("InstantiateTemplate: %v", err)
	}

	stepCount, err := f.stepRepo.CountByJourney(ctx, nil, started.Journey.ID)
	if err != nil {
		t.Fatalf("count steps: %v", err)
	}
	if stepCount != 3 {
		t.Fatalf("instantiation created %d steps, want 3", stepCount)
	}

	if *started.Step.QuestionID != questions[0].ID {
		t.Errorf("first question = %d, want %d", *started.Step.QuestionID, questions[0].ID)
	}

	cursor := started.Step.ID
	for i := 1; i < 3; i++ {
		step, err := f.progression.NextStep(ctx, started.Journey.ID, &cursor)
		if err != nil {
			t.Fatalf("NextStep %d: %v", i, err)
		}
		if *step.QuestionID != questions[i].ID {
			t.Errorf("step %d question = %d, want %d", i, *step.QuestionID, questions[i].ID)
		}
		cursor = step.ID
	}

	// Walking a template never creates steps, including past the end.
	_, err = f.progression.NextStep(ctx, started.Journey.ID, &cursor)
	if apperr.KindOf(err) != apperr.KindNoContent {
		t.Errorf("past the last step: kind = %v, want no-content", apperr.KindOf(err))
	}
	stepCount, err = f.stepRepo.CountByJourney(ctx, nil, started.Journey.ID)
	if err != nil {
		t.Fatalf("recount steps: %v", err)
	}
	if stepCount != 3 {
		t.Errorf("step count changed to %d after walking, want 3", stepCount)
	}
}

func TestInstantiateGroupExamValidations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "09122220005")
	questions := f.seedQuestions(t, 2)

	t.Run("outside the window", func(t *testing.T) {
		tpl := f.groupExamTemplate(t, time.Now().UTC().Add(time.Hour), 30, questions)
		_, err := f.progression.InstantiateTemplate(ctx, user.ID, tpl.ID)
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("before start: kind = %v, want validation", apperr.KindOf(err))
		}
	})

	t.Run("duplicate enrollment", func(t *testing.T) {
		tpl := f.groupExamTemplate(t, time.Now().UTC().Add(-time.Minute), 60, questions)
		if _, err := f.progression.InstantiateTemplate(ctx, user.ID, tpl.ID); err != nil {
			t.Fatalf("first enrollment: %v", err)
		}
		_, err := f.progression.InstantiateTemplate(ctx, user.ID, tpl.ID)
		if apperr.KindOf(err) != apperr.KindConflict {
			t.Errorf("second enrollment: kind = %v, want conflict", apperr.KindOf(err))
		}
	})
}

func TestSubmitAnswer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "09122220006")

	q := f.question(t, domain.Choice2)
	journey := &domain.Journey{UserID: user.ID, JourneyType: domain.JourneyTraining, QuestionCountLimit: 10}
	if err := f.db.Create(journey).Error; err != nil {
		t.Fatalf("seed journey: %v", err)
	}
	step := &domain.JourneyStep{JourneyID: journey.ID, QuestionID: &q.ID}
	if err := f.db.Create(step).Error; err != nil {
		t.Fatalf("seed step: %v", err)
	}

	submitted, err := f.progression.SubmitAnswer(ctx, journey.ID, step.ID, domain.Choice2)
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if submitted.AnswerResult != domain.AnswerCorrect {
		t.Errorf("result = %q, want %q", submitted.AnswerResult, domain.AnswerCorrect)
	}

	// Identical resubmission lands on the same stored state.
	submitted, err = f.progression.SubmitAnswer(ctx, journey.ID, step.ID, domain.Choice2)
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if submitted.AnswerResult != domain.AnswerCorrect {
		t.Errorf("resubmit result = %q, want %q", submitted.AnswerResult, domain.AnswerCorrect)
	}

	// Clearing the answer resets the result.
	submitted, err = f.progression.SubmitAnswer(ctx, journey.ID, step.ID, "")
	if err != nil {
		t.Fatalf("clear answer: %v", err)
	}
	if submitted.AnswerResult != domain.AnswerNotSelected {
		t.Errorf("cleared result = %q, want %q", submitted.AnswerResult, domain.AnswerNotSelected)
	}

	_, err = f.progression.SubmitAnswer(ctx, journey.ID, step.ID+999, domain.Choice1)
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("unknown step: kind = %v, want not-found", apperr.KindOf(err))
	}
}

func TestSubmitAnswerAfterExamWindowCloses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "09122220007")

	q := f.question(t, domain.Choice1)
	tpl := f.groupExamTemplate(t, time.Now().UTC().Add(-2*time.Hour), 60, []*domain.Question{q})

	journey := &domain.Journey{
		UserID:      user.ID,
		JourneyType: domain.JourneyGroupExam,
		TemplateID:  &tpl.ID,
	}
	if err := f.db.Create(journey).Error; err != nil {
		t.Fatalf("seed journey: %v", err)
	}
	step := &domain.JourneyStep{JourneyID: journey.ID, QuestionID: &q.ID}
	if err := f.db.Create(step).Error; err != nil {
		t.Fatalf("seed step: %v", err)
	}

	_, err := f.progression.SubmitAnswer(ctx, journey.ID, step.ID, domain.Choice1)
	if err == nil {
		t.Fatal("submission after the deadline must fail")
	}
}

func TestJourneyCountLimitBoundary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "09122220008")
	f.seedQuestions(t, 10)

	started, err := f.progression.StartJourney(ctx, user.ID, StartJourneyInput{QuestionCountLimit: 2})
	if err != nil {
		t.Fatalf("StartJourney: %v", err)
	}

	// The limit is checked against steps already created, strictly greater:
	// with limit 2 the journey hands out a third question and only then stops.
	cursor := started.Step.ID
	for i := 0; i < 2; i++ {
		step, err := f.progression.NextStep(ctx, started.Journey.ID, &cursor)
		if err != nil {
			t.Fatalf("NextStep %d: %v", i, err)
		}
		cursor = step.ID
	}

	_, err = f.progression.NextStep(ctx, started.Journey.ID, &cursor)
	if apperr.KindOf(err) != apperr.KindNoContent {
		t.Errorf("past the limit: kind = %v, want no-content", apperr.KindOf(err))
	}
}

func TestFinishJourney(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "09122220009")

	q := f.question(t, domain.Choice1)
	journey := &domain.Journey{UserID: user.ID, JourneyType: domain.JourneyTraining, QuestionCountLimit: 5}
	if err := f.db.Create(journey).Error; err != nil {
		t.Fatalf("seed journey: %v", err)
	}
	step := &domain.JourneyStep{JourneyID: journey.ID, QuestionID: &q.ID, UserAnswer: domain.Choice1}
	if err := f.db.Create(step).Error; err != nil {
		t.Fatalf("seed step: %v", err)
	}
	if err := f.db.Model(journey).Update("last_seen_step_id", step.ID).Error; err != nil {
		t.Fatalf("set cursor: %v", err)
	}

	result, err := f.progression.FinishJourney(ctx, user.ID, journey.ID)
	if err != nil {
		t.Fatalf("FinishJourney: %v", err)
	}
	if result.TrueAnswers != 1 || result.TotalQuestions != 1 {
		t.Errorf("result = %+v, want 1 correct of 1", result)
	}

	other := f.user(t, "09122220010")
	_, err = f.progression.FinishJourney(ctx, other.ID, journey.ID)
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("foreign journey: kind = %v, want not-found", apperr.KindOf(err))
	}
}

func TestFinishGroupExamReturnsNoContent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "09122220011")

	q := f.question(t, domain.Choice1)
	tpl := f.groupExamTemplate(t, time.Now().UTC().Add(-time.Minute), 60, []*domain.Question{q})

	started, err := f.progression.InstantiateTemplate(ctx, user.ID, tpl.ID)
	if err != nil {
		t.Fatalf("InstantiateTemplate: %v", err)
	}

	_, err = f.progression.FinishJourney(ctx, user.ID, started.Journey.ID)
	if apperr.KindOf(err) != apperr.KindNoContent {
		t.Errorf("group exam finish: kind = %v, want no-content", apperr.KindOf(err))
	}
}
