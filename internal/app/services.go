package app

import (
	"gorm.io/gorm"

	"github.com/deebajee2009/OnlineExamBackEnd/internal/platform/logger"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/services"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/temporalx"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/temporalx/temporalworker"
)

type Services struct {
	Auth        services.AuthService
	Scoring     services.ScoringService
	Progression services.ProgressionService
	Reports     services.ReportService
	Templates   services.TemplateService
	Questions   services.QuestionService
	Hardness    services.HardnessService

	TemporalWorker *temporalworker.Runner
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	scoring := services.NewScoringService(db, reposet.Journey, reposet.JourneyStep, reposet.JourneyTemplate, log)
	progression := services.NewProgressionService(db, reposet.Journey, reposet.JourneyStep, reposet.Question, reposet.JourneyTemplate, scoring, log)
	reports := services.NewReportService(reposet.Journey, reposet.JourneyStep, reposet.JourneyTemplate, scoring, log)
	hardness := services.NewHardnessService(reposet.Question, reposet.JourneyStep, log)
	questions := services.NewQuestionService(db, reposet.Question, reposet.Tag, reposet.ImportRun, log)

	// Without Temporal the template service still works; scoring triggers are
	// then fired manually through the operator endpoint.
	var scheduler services.GroupExamScheduler
	var worker *temporalworker.Runner
	if clients.Temporal != nil {
		sched, err := temporalx.NewScheduler(clients.Temporal, log)
		if err != nil {
			return Services{}, err
		}
		scheduler = sched

		w, err := temporalworker.NewRunner(log, clients.Temporal, scoring, hardness)
		if err != nil {
			return Services{}, err
		}
		worker = w
	}

	templates := services.NewTemplateService(db, reposet.JourneyTemplate, reposet.Question, scheduler, log)
	auth := services.NewAuthService(reposet.User, clients.OTPStore, services.NewLogSMSSender(log), cfg.Auth, log)

	return Services{
		Auth:           auth,
		Scoring:        scoring,
		Progression:    progression,
		Reports:        reports,
		Templates:      templates,
		Questions:      questions,
		Hardness:       hardness,
		TemporalWorker: worker,
	}, nil
}
