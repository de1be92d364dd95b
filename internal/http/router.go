package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/deebajee2009/OnlineExamBackEnd/internal/http/handlers"
	httpMW "github.com/deebajee2009/OnlineExamBackEnd/internal/http/middleware"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware

	JourneyHandler  *httpH.JourneyHandler
	TemplateHandler *httpH.TemplateHandler
	QuestionHandler *httpH.QuestionHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(otelgin.Middleware("onlineexam"))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/auth/otp", cfg.AuthHandler.RequestOTP)
			api.POST("/auth/verify", cfg.AuthHandler.VerifyOTP)
			api.POST("/auth/refresh", cfg.AuthHandler.Refresh)
		}
		if cfg.HealthHandler != nil {
			api.GET("/server-time", cfg.HealthHandler.ServerTime)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.GET("/me", cfg.AuthHandler.GetMe)
		}

		// Journeys
		if cfg.JourneyHandler != nil {
			protected.POST("/journeys", cfg.JourneyHandler.StartJourney)
			protected.GET("/journeys", cfg.JourneyHandler.ListJourneys)
			protected.GET("/journeys/:id", cfg.JourneyHandler.GetJourney)
			protected.GET("/journeys/:id/next", cfg.JourneyHandler.NextStep)
			protected.PUT("/journeys/:id/steps/:stepID/answer", cfg.JourneyHandler.SubmitAnswer)
			protected.POST("/journeys/:id/finish", cfg.JourneyHandler.FinishJourney)
			protected.GET("/journey-steps/:id", cfg.JourneyHandler.GetStep)
			protected.POST("/journey-templates/:id/journeys", cfg.JourneyHandler.InstantiateTemplate)
			protected.GET("/group-exams/open", cfg.JourneyHandler.ListOpenGroupExams)
			protected.GET("/report", cfg.JourneyHandler.OverallReport)
		}
	}

	// Operator surface: question bank and template management.
	operator := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			operator.Use(cfg.AuthMiddleware.RequireAuth())
			operator.Use(cfg.AuthMiddleware.RequireOperator())
		}

		if cfg.TemplateHandler != nil {
			operator.POST("/templates", cfg.TemplateHandler.CreateTemplate)
			operator.GET("/templates/:id", cfg.TemplateHandler.GetTemplate)
			operator.GET("/templates/exams", cfg.TemplateHandler.ListExamTemplates)
			operator.PATCH("/templates/:id/schedule", cfg.TemplateHandler.UpdateSchedule)
			operator.POST("/templates/:id/score", cfg.TemplateHandler.ScoreGroupExam)
		}

		if cfg.QuestionHandler != nil {
			operator.POST("/questions", cfg.QuestionHandler.CreateQuestion)
			operator.GET("/questions", cfg.QuestionHandler.ListQuestions)
			operator.GET("/questions/:id", cfg.QuestionHandler.GetQuestion)
			operator.PUT("/questions/:id", cfg.QuestionHandler.UpdateQuestion)
			operator.PATCH("/questions/:id/active", cfg.QuestionHandler.SetActive)
			operator.POST("/questions/import", cfg.QuestionHandler.Import)
			operator.POST("/questions/:id/hardness/refresh", cfg.QuestionHandler.RefreshHardness)
			operator.POST("/tags", cfg.QuestionHandler.CreateTag)
			operator.GET("/tags", cfg.QuestionHandler.ListTags)
		}
	}

	return r
}
