package domain

import (
	"testing"
	"time"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestJourneyActiveAt(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	groupTemplate := func(start time.Time, minutes uint) *JourneyTemplate {
		return &JourneyTemplate{
			JourneyType:      JourneyGroupExam,
			StartDatetime:    timePtr(start),
			TimeMinutesLimit: minutes,
		}
	}

	cases := []struct {
		name      string
		journey   Journey
		stepCount int64
		want      bool
	}{
		{
			name:    "fresh adaptive journey with no limits",
			journey: Journey{CreatedAt: now.Add(-time.Hour)},
			want:    true,
		},
		{
			name: "finished in the past",
			journey: Journey{
				CreatedAt:  now.Add(-time.Hour),
				FinishedAt: timePtr(now.Add(-time.Minute)),
			},
			want: false,
		},
		{
			name: "finished in the future still active",
			journey: Journey{
				CreatedAt:  now.Add(-time.Hour),
				FinishedAt: timePtr(now.Add(time.Minute)),
			},
			want: true,
		},
		{
			name:      "step count at the limit still active",
			journey:   Journey{CreatedAt: now.Add(-time.Minute), QuestionCountLimit: 5},
			stepCount: 5,
			want:      true,
		},
		{
			name:      "step count one past the limit ends the journey",
			journey:   Journey{CreatedAt: now.Add(-time.Minute), QuestionCountLimit: 5},
			stepCount: 6,
			want:      false,
		},
		{
			name:      "zero count limit never trips",
			journey:   Journey{CreatedAt: now.Add(-time.Minute)},
			stepCount: 500,
			want:      true,
		},
		{
			name:    "time limit reached exactly",
			journey: Journey{CreatedAt: now.Add(-30 * time.Minute), TimeMinutesLimit: 30},
			want:    false,
		},
		{
			name:    "time limit not yet reached",
			journey: Journey{CreatedAt: now.Add(-29 * time.Minute), TimeMinutesLimit: 30},
			want:    true,
		},
		{
			name: "group exam inside the window",
			journey: Journey{
				CreatedAt: now.Add(-time.Hour),
				Template:  groupTemplate(now.Add(-10*time.Minute), 60),
			},
			want: true,
		},
		{
			name: "group exam past the template deadline",
			journey: Journey{
				CreatedAt: now.Add(-2 * time.Hour),
				Template:  groupTemplate(now.Add(-2*time.Hour), 60),
			},
			want: false,
		},
		{
			name: "group exam individually finished inside the window",
			journey: Journey{
				CreatedAt:  now.Add(-time.Hour),
				FinishedAt: timePtr(now.Add(-time.Minute)),
				Template:   groupTemplate(now.Add(-10*time.Minute), 60),
			},
			want: false,
		},
		{
			name: "group exam ignores per-journey limits inside the window",
			journey: Journey{
				CreatedAt:          now.Add(-time.Hour),
				QuestionCountLimit: 1,
				TimeMinutesLimit:   1,
				Template:           groupTemplate(now.Add(-10*time.Minute), 60),
			},
			stepCount: 100,
			want:      true,
		},
		{
			name: "group exam active before its scheduled start",
			journey: Journey{
				CreatedAt: now,
				Template:  groupTemplate(now.Add(time.Hour), 60),
			},
			want: true,
		},
		{
			name: "non-group template journey uses the ordinary branches",
			journey: Journey{
				CreatedAt:          now.Add(-time.Minute),
				QuestionCountLimit: 3,
				Template:           &JourneyTemplate{JourneyType: JourneyExam},
			},
			stepCount: 4,
			want:      false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.journey.ActiveAt(now, tc.stepCount)
			if got != tc.want {
				t.Errorf("ActiveAt() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestJourneyStepRecomputeResult(t *testing.T) {
	q := &Question{TrueChoice: Choice2, Choice2: "42"}

	step := JourneyStep{UserAnswer: Choice2}
	step.RecomputeResult(q)
	if step.AnswerResult != AnswerCorrect {
		t.Errorf("matching choice key: got %q, want %q", step.AnswerResult, AnswerCorrect)
	}

	step = JourneyStep{UserAnswer: Choice3}
	step.RecomputeResult(q)
	if step.AnswerResult != AnswerFalse {
		t.Errorf("wrong choice key: got %q, want %q", step.AnswerResult, AnswerFalse)
	}

	// The winning text is not accepted; only the key is.
	step = JourneyStep{UserAnswer: "42"}
	step.RecomputeResult(q)
	if step.AnswerResult != AnswerFalse {
		t.Errorf("choice text instead of key: got %q, want %q", step.AnswerResult, AnswerFalse)
	}

	step = JourneyStep{UserAnswer: ""}
	step.RecomputeResult(q)
	if step.AnswerResult != AnswerNotSelected {
		t.Errorf("empty answer: got %q, want %q", step.AnswerResult, AnswerNotSelected)
	}
}

func TestQuestionValidate(t *testing.T) {
	q := Question{TrueChoice: Choice1, Choice1: "a"}
	if err := q.Validate(); err != nil {
		t.Errorf("valid question: unexpected error %v", err)
	}

	q = Question{TrueChoice: "choice_5", Choice1: "a"}
	if err := q.Validate(); err == nil {
		t.Error("unknown true_choice key: expected error")
	}

	q = Question{TrueChoice: Choice3}
	if err := q.Validate(); err == nil {
		t.Error("empty winning column: expected error")
	}
}

func TestTemplateDeadline(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	tpl := JourneyTemplate{StartDatetime: &start, TimeMinutesLimit: 90}
	want := start.Add(90 * time.Minute)
	if got := tpl.Deadline(); !got.Equal(want) {
		t.Errorf("Deadline() = %v, want %v", got, want)
	}

	tpl = JourneyTemplate{TimeMinutesLimit: 90}
	if got := tpl.Deadline(); !got.IsZero() {
		t.Errorf("Deadline() without start = %v, want zero", got)
	}
}
