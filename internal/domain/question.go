package domain

import (
	"fmt"
	"time"
)

// TrueChoice values name the winning choice column, not its text. Submitted
// answers are compared against this key.
const (
	Choice1 = "choice_1"
	Choice2 = "choice_2"
	Choice3 = "choice_3"
	Choice4 = "choice_4"
)

// Hardness weights per answer outcome. A question nobody gets right trends
// toward 10, an easy one toward 1.
const (
	HardnessCorrect     = 1
	HardnessNotSelected = 5
	HardnessWrong       = 10
)

type Tag struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"not null;uniqueIndex:idx_tag_parent_name;column:name" json:"name"`
	ParentID *uint  `gorm:"uniqueIndex:idx_tag_parent_name;column:parent_id" json:"parent_id,omitempty"`
	Parent   *Tag   `gorm:"foreignKey:ParentID" json:"-"`

	Questions []Question `gorm:"many2many:question_tags;" json:"-"`
}

func (Tag) TableName() string { return "tags" }

type Question struct {
	ID             uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	TextBody       string  `gorm:"not null;column:text_body" json:"text_body"`
	Choice1        string  `gorm:"not null;column:choice_1" json:"choice_1"`
	Choice2        string  `gorm:"not null;column:choice_2" json:"choice_2"`
	Choice3        string  `gorm:"not null;column:choice_3" json:"choice_3"`
	Choice4        string  `gorm:"not null;column:choice_4" json:"choice_4"`
	IsActive       bool    `gorm:"not null;default:true;column:is_active" json:"is_active"`
	TrueChoice     string  `gorm:"not null;column:true_choice" json:"-"`
	Answer         string  `gorm:"column:answer" json:"-"`
	Hardness       float64 `gorm:"not null;default:0;column:hardness" json:"hardness"`
	Direction      string  `gorm:"column:direction" json:"direction,omitempty"`
	MinRequiredAge *uint   `gorm:"column:min_required_age" json:"min_required_age,omitempty"`

	Tags []Tag `gorm:"many2many:question_tags;" json:"tags,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Question) TableName() string { return "questions" }

// Validate mirrors the admin-side invariant: the winning key must name one of
// the four choice columns and that column must be non-empty.
func (q *Question) Validate() error {
	val, ok := q.choiceValue(q.TrueChoice)
	if !ok {
		return fmt.Errorf("true_choice must be one of %s, %s, %s or %s", Choice1, Choice2, Choice3, Choice4)
	}
	if val == "" {
		return fmt.Errorf("the field %s cannot be empty", q.TrueChoice)
	}
	return nil
}

// TrueChoiceValue returns the text of the winning choice.
func (q *Question) TrueChoiceValue() string {
	val, _ := q.choiceValue(q.TrueChoice)
	return val
}

func (q *Question) choiceValue(key string) (string, bool) {
	switch key {
	case Choice1:
		return q.Choice1, true
	case Choice2:
		return q.Choice2, true
	case Choice3:
		return q.Choice3, true
	case Choice4:
		return q.Choice4, true
	default:
		return "", false
	}
}
