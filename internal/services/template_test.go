package services

import (
	"context"
	"testing"
	"time"

	"github.com/deebajee2009/OnlineExamBackEnd/internal/domain"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/pkg/apperr"
)

type fakeScheduler struct {
	calls []scheduledScoring
	err   error
}

type scheduledScoring struct {
	templateID uint
	runAt      time.Time
}

func (s *fakeScheduler) ScheduleGroupExamScoring(_ context.Context, templateID uint, runAt time.Time) error {
	s.calls = append(s.calls, scheduledScoring{templateID: templateID, runAt: runAt})
	return s.err
}

func newTemplateFixture(t *testing.T) (*fixture, *fakeScheduler, TemplateService) {
	t.Helper()
	f := newFixture(t)
	sched := &fakeScheduler{}
	svc := NewTemplateService(f.db, f.templateRepo, f.questionRepo, sched, f.log)
	return f, sched, svc
}

func TestCreateTemplateSchedulesScoring(t *testing.T) {
	f, sched, svc := newTemplateFixture(t)
	questions := f.seedQuestions(t, 2)

	start := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	tpl, err := svc.CreateTemplate(context.Background(), CreateTemplateInput{
		Name:             "midterm",
		JourneyType:      domain.JourneyGroupExam,
		TimeMinutesLimit: 30,
		StartDatetime:    &start,
		QuestionIDs:      []uint{questions[0].ID, questions[1].ID},
	})
	if err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}

	steps, err := f.templateRepo.ListSteps(context.Background(), nil, tpl.ID)
	if err != nil {
		t.Fatalf("ListSteps: %v", err)
	}
	if len(steps) != 2 {
		t.Fatalf("template has %d steps, want 2", len(steps))
	}

	if len(sched.calls) != 1 {
		t.Fatalf("scheduler called %d times, want 1", len(sched.calls))
	}
	call := sched.calls[0]
	if call.templateID != tpl.ID {
		t.Errorf("scheduled template %d, want %d", call.templateID, tpl.ID)
	}
	wantRunAt := start.Add(30*time.Minute + scheduleGrace)
	if !call.runAt.Equal(wantRunAt) {
		t.Errorf("runAt = %v, want deadline plus grace %v", call.runAt, wantRunAt)
	}
}

func TestCreateTemplateSkipsSchedulingWithoutWindow(t *testing.T) {
	f, sched, svc := newTemplateFixture(t)
	questions := f.seedQuestions(t, 1)
	ctx := context.Background()

	// No start datetime: nothing to arm.
	if _, err := svc.CreateTemplate(ctx, CreateTemplateInput{
		Name:             "open group exam",
		JourneyType:      domain.JourneyGroupExam,
		TimeMinutesLimit: 30,
		QuestionIDs:      []uint{questions[0].ID},
	}); err != nil {
		t.Fatalf("CreateTemplate without start: %v", err)
	}

	// Non-group templates are scored per journey, never as a cohort.
	start := time.Now().UTC().Add(time.Hour)
	if _, err := svc.CreateTemplate(ctx, CreateTemplateInput{
		Name:             "practice exam",
		JourneyType:      domain.JourneyExam,
		TimeMinutesLimit: 30,
		StartDatetime:    &start,
		QuestionIDs:      []uint{questions[0].ID},
	}); err != nil {
		t.Fatalf("CreateTemplate exam: %v", err)
	}

	// A window that already closed is not rescheduled.
	past := time.Now().UTC().Add(-2 * time.Hour)
	if _, err := svc.CreateTemplate(ctx, CreateTemplateInput{
		Name:             "finished group exam",
		JourneyType:      domain.JourneyGroupExam,
		TimeMinutesLimit: 30,
		StartDatetime:    &past,
		QuestionIDs:      []uint{questions[0].ID},
	}); err != nil {
		t.Fatalf("CreateTemplate past window: %v", err)
	}

	if len(sched.calls) != 0 {
		t.Errorf("scheduler called %d times, want 0", len(sched.calls))
	}
}

func TestCreateTemplateDrawsRandomQuestions(t *testing.T) {
	f, _, svc := newTemplateFixture(t)
	questions := f.seedQuestions(t, 6)
	ctx := context.Background()

	// Inactive questions never enter the draw.
	questions[5].IsActive = false
	if err := f.db.Save(questions[5]).Error; err != nil {
		t.Fatalf("deactivate question: %v", err)
	}

	tpl, err := svc.CreateTemplate(ctx, CreateTemplateInput{
		Name:          "random draw exam",
		JourneyType:   domain.JourneyExam,
		QuestionCount: 4,
	})
	if err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}

	steps, err := f.templateRepo.ListSteps(ctx, nil, tpl.ID)
	if err != nil {
		t.Fatalf("ListSteps: %v", err)
	}
	if len(steps) != 4 {
		t.Fatalf("template has %d steps, want 4", len(steps))
	}
	seen := make(map[uint]struct{}, len(steps))
	for _, step := range steps {
		if step.QuestionID == nil {
			t.Fatal("step without a question")
		}
		if *step.QuestionID == questions[5].ID {
			t.Errorf("inactive question %d drawn into template", questions[5].ID)
		}
		if _, dup := seen[*step.QuestionID]; dup {
			t.Errorf("question %d drawn twice", *step.QuestionID)
		}
		seen[*step.QuestionID] = struct{}{}
	}
}

func TestCreateTemplateInsufficientQuestions(t *testing.T) {
	f, _, svc := newTemplateFixture(t)
	f.seedQuestions(t, 2)
	ctx := context.Background()

	_, err := svc.CreateTemplate(ctx, CreateTemplateInput{
		Name:          "too ambitious",
		JourneyType:   domain.JourneyExam,
		QuestionCount: 3,
	})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("kind = %v, want validation", apperr.KindOf(err))
	}
	if got := apperr.CodeOf(err); got != "insufficient_questions" {
		t.Errorf("code = %q, want insufficient_questions", got)
	}
}

func TestCreateTemplateValidations(t *testing.T) {
	f, _, svc := newTemplateFixture(t)
	questions := f.seedQuestions(t, 1)
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateTemplateInput
		kind  apperr.Kind
	}{
		{
			name:  "missing name",
			input: CreateTemplateInput{JourneyType: domain.JourneyExam, QuestionIDs: []uint{questions[0].ID}},
			kind:  apperr.KindValidation,
		},
		{
			name:  "unknown journey type",
			input: CreateTemplateInput{Name: "x", JourneyType: "marathon", QuestionIDs: []uint{questions[0].ID}},
			kind:  apperr.KindValidation,
		},
		{
			name:  "no questions",
			input: CreateTemplateInput{Name: "x", JourneyType: domain.JourneyExam},
			kind:  apperr.KindValidation,
		},
		{
			name: "duplicate question",
			input: CreateTemplateInput{
				Name:        "x",
				JourneyType: domain.JourneyExam,
				QuestionIDs: []uint{questions[0].ID, questions[0].ID},
			},
			kind: apperr.KindValidation,
		},
		{
			name: "both ids and count",
			input: CreateTemplateInput{
				Name:          "x",
				JourneyType:   domain.JourneyExam,
				QuestionIDs:   []uint{questions[0].ID},
				QuestionCount: 1,
			},
			kind: apperr.KindValidation,
		},
		{
			name: "unknown question",
			input: CreateTemplateInput{
				Name:        "x",
				JourneyType: domain.JourneyExam,
				QuestionIDs: []uint{questions[0].ID + 999},
			},
			kind: apperr.KindNotFound,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateTemplate(ctx, tc.input)
			if apperr.KindOf(err) != tc.kind {
				t.Errorf("kind = %v, want %v", apperr.KindOf(err), tc.kind)
			}
		})
	}
}

func TestUpdateScheduleReplacesTrigger(t *testing.T) {
	f, sched, svc := newTemplateFixture(t)
	questions := f.seedQuestions(t, 1)
	ctx := context.Background()

	start := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	tpl, err := svc.CreateTemplate(ctx, CreateTemplateInput{
		Name:             "rescheduled exam",
		JourneyType:      domain.JourneyGroupExam,
		TimeMinutesLimit: 30,
		StartDatetime:    &start,
		QuestionIDs:      []uint{questions[0].ID},
	})
	if err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}

	newStart := start.Add(24 * time.Hour)
	newLimit := uint(45)
	updated, err := svc.UpdateSchedule(ctx, tpl.ID, UpdateTemplateScheduleInput{
		StartDatetime:    &newStart,
		TimeMinutesLimit: &newLimit,
	})
	if err != nil {
		t.Fatalf("UpdateSchedule: %v", err)
	}
	if updated.TimeMinutesLimit != newLimit {
		t.Errorf("limit = %d, want %d", updated.TimeMinutesLimit, newLimit)
	}

	if len(sched.calls) != 2 {
		t.Fatalf("scheduler called %d times, want 2", len(sched.calls))
	}
	wantRunAt := newStart.Add(45*time.Minute + scheduleGrace)
	if got := sched.calls[1].runAt; !got.Equal(wantRunAt) {
		t.Errorf("rescheduled runAt = %v, want %v", got, wantRunAt)
	}

	_, err = svc.UpdateSchedule(ctx, tpl.ID+999, UpdateTemplateScheduleInput{StartDatetime: &newStart})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("unknown template: kind = %v, want not-found", apperr.KindOf(err))
	}
}
