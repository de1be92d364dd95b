package services

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/deebajee2009/OnlineExamBackEnd/internal/domain"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/platform/logger"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/repos"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/repos/testutil"
)

type fixture struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	tagRepo      repos.TagRepo
	questionRepo repos.QuestionRepo
	templateRepo repos.JourneyTemplateRepo
	journeyRepo  repos.JourneyRepo
	stepRepo     repos.JourneyStepRepo
	importRepo   repos.ImportRunRepo

	scoring     ScoringService
	progression ProgressionService
	reports     ReportService
	hardness    HardnessService
	questions   QuestionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)

	f := &fixture{
		db:           db,
		log:          log,
		userRepo:     repos.NewUserRepo(db, log),
		tagRepo:      repos.NewTagRepo(db, log),
		questionRepo: repos.NewQuestionRepo(db, log),
		templateRepo: repos.NewJourneyTemplateRepo(db, log),
		journeyRepo:  repos.NewJourneyRepo(db, log),
		stepRepo:     repos.NewJourneyStepRepo(db, log),
		importRepo:   repos.NewImportRunRepo(db, log),
	}
	f.scoring = NewScoringService(db, f.journeyRepo, f.stepRepo, f.templateRepo, log)
	f.progression = NewProgressionService(db, f.journeyRepo, f.stepRepo, f.questionRepo, f.templateRepo, f.scoring, log)
	f.reports = NewReportService(f.journeyRepo, f.stepRepo, f.templateRepo, f.scoring, log)
	f.hardness = NewHardnessService(f.questionRepo, f.stepRepo, log)
	f.questions = NewQuestionService(db, f.questionRepo, f.tagRepo, f.importRepo, log)
	return f
}

func (f *fixture) user(t *testing.T, phone string) *domain.User {
	t.Helper()
	user := &domain.User{PhoneNumber: phone, Role: domain.RoleStudent}
	if err := f.db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func (f *fixture) question(t *testing.T, trueChoice string) *domain.Question {
	t.Helper()
	q := &domain.Question{
		TextBody:   fmt.Sprintf("question %d", time.Now().UnixNano()),
		Choice1:    "a",
		Choice2:    "b",
		Choice3:    "c",
		Choice4:    "d",
		IsActive:   true,
		TrueChoice: trueChoice,
	}
	if err := f.db.Create(q).Error; err != nil {
		t.Fatalf("seed question: %v", err)
	}
	return q
}

func (f *fixture) seedQuestions(t *testing.T, n int) []*domain.Question {
	t.Helper()
	out := make([]*domain.Question, n)
	for i := range out {
		out[i] = f.question(t, domain.Choice1)
	}
	return out
}

func (f *fixture) groupExamTemplate(t *testing.T, start time.Time, minutes uint, questions []*domain.Question) *domain.JourneyTemplate {
	t.Helper()
	return f.template(t, domain.JourneyGroupExam, &start, minutes, questions)
}

func (f *fixture) template(t *testing.T, journeyType domain.JourneyType, start *time.Time, minutes uint, questions []*domain.Question) *domain.JourneyTemplate {
	t.Helper()
	tpl := &domain.JourneyTemplate{
		Name:             fmt.Sprintf("template %d", time.Now().UnixNano()),
		JourneyType:      journeyType,
		StartDatetime:    start,
		TimeMinutesLimit: minutes,
	}
	if err := f.db.Create(tpl).Error; err != nil {
		t.Fatalf("seed template: %v", err)
	}
	for _, q := range questions {
		questionID := q.ID
		step := &domain.JourneyStepTemplate{JourneyTemplateID: tpl.ID, QuestionID: &questionID}
		if err := f.db.Create(step).Error; err != nil {
			t.Fatalf("seed step template: %v", err)
		}
	}
	return tpl
}

func timePtr(t time.Time) *time.Time { return &t }
