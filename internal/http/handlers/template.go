package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deebajee2009/OnlineExamBackEnd/internal/domain"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/http/response"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/platform/logger"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/services"
)

type TemplateHandler struct {
	log       *logger.Logger
	templates services.TemplateService
	reports   services.ReportService
	scoring   services.ScoringService
}

func NewTemplateHandler(
	log *logger.Logger,
	templates services.TemplateService,
	reports services.ReportService,
	scoring services.ScoringService,
) *TemplateHandler {
	return &TemplateHandler{
		log:       log.With("Handler", "TemplateHandler"),
		templates: templates,
		reports:   reports,
		scoring:   scoring,
	}
}

// POST /api/templates
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var body struct {
		Name             string             `json:"name" binding:"required"`
		JourneyType      domain.JourneyType `json:"journey_type" binding:"required"`
		TimeMinutesLimit uint               `json:"time_minutes_limit"`
		StartDatetime    *time.Time         `json:"start_datetime"`
		QuestionIDs      []uint             `json:"question_ids"`
		QuestionCount    uint               `json:"question_count"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	template, err := h.templates.CreateTemplate(c.Request.Context(), services.CreateTemplateInput{
		Name:             body.Name,
		JourneyType:      body.JourneyType,
		TimeMinutesLimit: body.TimeMinutesLimit,
		StartDatetime:    body.StartDatetime,
		QuestionIDs:      body.QuestionIDs,
		QuestionCount:    body.QuestionCount,
	})
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"template": template})
}

// GET /api/templates/:id
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	templateID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	template, err := h.templates.GetTemplate(c.Request.Context(), templateID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"template": template})
}

// GET /api/templates/exams
func (h *TemplateHandler) ListExamTemplates(c *gin.Context) {
	templates, err := h.reports.ListExamTemplates(c.Request.Context())
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"templates": templates})
}

// PATCH /api/templates/:id/schedule
func (h *TemplateHandler) UpdateSchedule(c *gin.Context) {
	templateID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var body struct {
		StartDatetime    *time.Time `json:"start_datetime"`
		TimeMinutesLimit *uint      `json:"time_minutes_limit"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	template, err := h.templates.UpdateSchedule(c.Request.Context(), templateID, services.UpdateTemplateScheduleInput{
		StartDatetime:    body.StartDatetime,
		TimeMinutesLimit: body.TimeMinutesLimit,
	})
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"template": template})
}

// POST /api/templates/:id/score
//
// Manual fallback for when the deferred trigger was never armed, for
// example while the workflow engine was down.
func (h *TemplateHandler) ScoreGroupExam(c *gin.Context) {
	templateID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if !h.scoring.ScoreGroupExam(c.Request.Context(), templateID) {
		response.RespondError(c, http.StatusInternalServerError, "scoring_failed", nil)
		return
	}
	response.RespondOK(c, gin.H{"scored": true})
}
