package app

import (
	httpH "github.com/deebajee2009/OnlineExamBackEnd/internal/http/handlers"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/platform/logger"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Auth     *httpH.AuthHandler
	Journey  *httpH.JourneyHandler
	Template *httpH.TemplateHandler
	Question *httpH.QuestionHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(),
		Auth:     httpH.NewAuthHandler(log, serviceset.Auth),
		Journey:  httpH.NewJourneyHandler(log, serviceset.Progression, serviceset.Reports),
		Template: httpH.NewTemplateHandler(log, serviceset.Templates, serviceset.Reports, serviceset.Scoring),
		Question: httpH.NewQuestionHandler(log, serviceset.Questions, serviceset.Hardness),
	}
}
