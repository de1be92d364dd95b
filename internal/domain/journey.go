package domain

import (
	"time"
)

type JourneyType string

const (
	JourneyTraining  JourneyType = "training"
	JourneyExam      JourneyType = "exam"
	JourneyGroupExam JourneyType = "group_exam"
)

type Subject string

const (
	SubjectAnalytical Subject = "analytical"
	SubjectSpeedFocus Subject = "speed_focus"
)

type AnswerResult string

const (
	AnswerCorrect     AnswerResult = "C"
	AnswerFalse       AnswerResult = "F"
	AnswerNotSelected AnswerResult = "N"
)

// JourneyTemplate is a fixed question paper. Exam and group-exam journeys walk
// its step templates in order; adaptive training journeys have no template.
type JourneyTemplate struct {
	ID               uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	Name             string      `gorm:"not null;column:name" json:"name"`
	TimeMinutesLimit uint        `gorm:"not null;default:0;column:time_minutes_limit" json:"time_minutes_limit"`
	StartDatetime    *time.Time  `gorm:"column:start_datetime" json:"start_datetime,omitempty"`
	JourneyType      JourneyType `gorm:"not null;default:training;column:journey_type" json:"journey_type"`

	Steps []JourneyStepTemplate `gorm:"foreignKey:JourneyTemplateID" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (JourneyTemplate) TableName() string { return "journey_templates" }

// Deadline is the wall-clock instant past which a group exam no longer accepts
// activity. Zero when the template has no scheduled start.
func (t *JourneyTemplate) Deadline() time.Time {
	if t.StartDatetime == nil {
		return time.Time{}
	}
	return t.StartDatetime.Add(time.Duration(t.TimeMinutesLimit) * time.Minute)
}

type JourneyStepTemplate struct {
	ID                uint  `gorm:"primaryKey;autoIncrement" json:"id"`
	JourneyTemplateID uint  `gorm:"not null;uniqueIndex:idx_step_template_question;column:journey_template_id" json:"journey_template_id"`
	QuestionID        *uint `gorm:"uniqueIndex:idx_step_template_question;column:question_id" json:"question_id,omitempty"`

	Question *Question `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
}

func (JourneyStepTemplate) TableName() string { return "journey_step_templates" }

type Journey struct {
	ID      uint     `gorm:"primaryKey;autoIncrement;column:journey_id" json:"journey_id"`
	UserID  uint     `gorm:"not null;index;column:user_id" json:"user_id"`
	User    *User    `gorm:"foreignKey:UserID" json:"-"`
	Subject *Subject `gorm:"column:subject" json:"subject,omitempty"`

	TimeMinutesLimit   uint `gorm:"not null;default:0;column:time_minutes_limit" json:"time_minutes_limit"`
	QuestionCountLimit uint `gorm:"not null;default:0;column:question_count_limit" json:"question_count_limit"`

	JourneyType JourneyType      `gorm:"column:journey_type" json:"journey_type"`
	TemplateID  *uint            `gorm:"index;column:journey_template_id" json:"journey_template_id,omitempty"`
	Template    *JourneyTemplate `gorm:"foreignKey:TemplateID" json:"-"`

	// LastSeenStepID is the scoring cursor: finalization only counts steps at
	// or below it.
	LastSeenStepID *uint `gorm:"column:last_seen_step_id" json:"last_seen_step_id,omitempty"`

	AnsweredCount     *uint    `gorm:"column:answered_count" json:"answered_count,omitempty"`
	UnansweredCount   *uint    `gorm:"column:unanswered_count" json:"unanswered_count,omitempty"`
	CorrectCount      *uint    `gorm:"column:correct_count" json:"correct_count,omitempty"`
	WrongCount        *uint    `gorm:"column:wrong_count" json:"wrong_count,omitempty"`
	Score             *float64 `gorm:"column:score" json:"score,omitempty"`
	Rank              *uint    `gorm:"column:rank" json:"rank,omitempty"`
	TotalParticipants *uint    `gorm:"column:total_participants" json:"total_participants,omitempty"`

	CreatedAt  time.Time  `gorm:"not null;index" json:"created_at"`
	FinishedAt *time.Time `gorm:"column:finished_at" json:"finished_at,omitempty"`
}

func (Journey) TableName() string { return "journeys" }

// ActiveAt reports whether the journey still accepts steps and answers at the
// given instant. stepCount is the number of steps already created; it is
// passed in so callers decide when the count query is worth running.
//
// A journey has no status column. Activity is derived, in this order:
//
//  1. Group-exam template journeys live and die by the template window alone:
//     past the template deadline, or individually finished, they are done.
//     Per-journey limits below are never consulted for them.
//  2. An individually finished journey is done.
//  3. stepCount strictly above the question count limit ends the journey. The
//     strict comparison means a journey with limit N allows N+1 steps; kept
//     as-is because existing clients stop issuing questions on the boundary.
//  4. A time limit is enforced against the journey's creation time.
func (j *Journey) ActiveAt(now time.Time, stepCount int64) bool {
	if j.Template != nil && j.Template.JourneyType == JourneyGroupExam {
		deadline := j.Template.Deadline()
		if !deadline.IsZero() && now.After(deadline) {
			return false
		}
		if j.FinishedAt != nil && j.FinishedAt.Before(now) {
			return false
		}
		return true
	}
	if j.FinishedAt != nil && j.FinishedAt.Before(now) {
		return false
	}
	if j.QuestionCountLimit > 0 && stepCount > int64(j.QuestionCountLimit) {
		return false
	}
	if j.TimeMinutesLimit > 0 {
		elapsed := now.Sub(j.CreatedAt)
		if elapsed >= time.Duration(j.TimeMinutesLimit)*time.Minute {
			return false
		}
	}
	return true
}

type JourneyStep struct {
	ID         uint     `gorm:"primaryKey;autoIncrement;column:step_id" json:"step_id"`
	JourneyID  uint     `gorm:"not null;uniqueIndex:idx_step_journey_question;column:journey_id" json:"journey_id"`
	Journey    *Journey `gorm:"foreignKey:JourneyID" json:"-"`
	QuestionID *uint    `gorm:"uniqueIndex:idx_step_journey_question;column:question_id" json:"question_id,omitempty"`

	Question *Question `gorm:"foreignKey:QuestionID" json:"question,omitempty"`

	UserAnswer   string       `gorm:"column:user_answer" json:"user_answer,omitempty"`
	AnswerResult AnswerResult `gorm:"not null;default:N;column:answer_result" json:"answer_result"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (JourneyStep) TableName() string { return "journey_steps" }

// RecomputeResult derives AnswerResult from the current UserAnswer. Submitted
// answers carry the choice key (choice_1..choice_4), which is what the
// question's winning key is compared against.
func (s *JourneyStep) RecomputeResult(q *Question) {
	if s.UserAnswer == "" || q == nil {
		s.AnswerResult = AnswerNotSelected
		return
	}
	if s.UserAnswer == q.TrueChoice {
		s.AnswerResult = AnswerCorrect
	} else {
		s.AnswerResult = AnswerFalse
	}
}
