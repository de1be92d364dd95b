package repos

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/deebajee2009/OnlineExamBackEnd/internal/domain"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/repos/testutil"
)

func seedUser(t *testing.T, db *gorm.DB, phone string) *domain.User {
	t.Helper()
	user := &domain.User{PhoneNumber: phone, Role: domain.RoleStudent}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedQuestion(t *testing.T, db *gorm.DB, trueChoice string) *domain.Question {
	t.Helper()
	q := &domain.Question{
		TextBody:   fmt.Sprintf("question %d", time.Now().UnixNano()),
		Choice1:    "a", Choice2: "b", Choice3: "c", Choice4: "d",
		IsActive:   true,
		TrueChoice: trueChoice,
	}
	if err := db.Create(q).Error; err != nil {
		t.Fatalf("seed question: %v", err)
	}
	return q
}

func seedJourney(t *testing.T, db *gorm.DB, userID uint, mutate func(*domain.Journey)) *domain.Journey {
	t.Helper()
	j := &domain.Journey{UserID: userID, JourneyType: domain.JourneyTraining}
	if mutate != nil {
		mutate(j)
	}
	if err := db.Create(j).Error; err != nil {
		t.Fatalf("seed journey: %v", err)
	}
	return j
}

func seedStep(t *testing.T, db *gorm.DB, journeyID uint, questionID uint, answer string, result domain.AnswerResult) *domain.JourneyStep {
	t.Helper()
	step := &domain.JourneyStep{
		JourneyID:    journeyID,
		QuestionID:   &questionID,
		UserAnswer:   answer,
		AnswerResult: result,
	}
	if err := db.Create(step).Error; err != nil {
		t.Fatalf("seed step: %v", err)
	}
	return step
}

func newStepRepo(t *testing.T) (JourneyStepRepo, *gorm.DB) {
	t.Helper()
	db := testutil.DB(t)
	return NewJourneyStepRepo(db, testutil.Logger(t)), db
}
