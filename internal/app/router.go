package app

import (
	"github.com/gin-gonic/gin"

	httpserver "github.com/deebajee2009/OnlineExamBackEnd/internal/http"
	httpMW "github.com/deebajee2009/OnlineExamBackEnd/internal/http/middleware"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/platform/logger"
)

func wireRouter(log *logger.Logger, handlerset Handlers, serviceset Services) *gin.Engine {
	log.Info("Wiring router...")
	return httpserver.NewRouter(httpserver.RouterConfig{
		Log:             log,
		AuthHandler:     handlerset.Auth,
		AuthMiddleware:  httpMW.NewAuthMiddleware(log, serviceset.Auth),
		JourneyHandler:  handlerset.Journey,
		TemplateHandler: handlerset.Template,
		QuestionHandler: handlerset.Question,
		HealthHandler:   handlerset.Health,
	})
}
