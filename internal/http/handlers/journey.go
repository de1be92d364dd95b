package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/deebajee2009/OnlineExamBackEnd/internal/domain"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/http/response"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/platform/ctxutil"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/platform/logger"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/repos"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/services"
)

type JourneyHandler struct {
	log         *logger.Logger
	progression services.ProgressionService
	reports     services.ReportService
}

func NewJourneyHandler(
	log *logger.Logger,
	progression services.ProgressionService,
	reports services.ReportService,
) *JourneyHandler {
	return &JourneyHandler{
		log:         log.With("Handler", "JourneyHandler"),
		progression: progression,
		reports:     reports,
	}
}

// POST /api/journeys
func (h *JourneyHandler) StartJourney(c *gin.Context) {
	var body struct {
		Subject            *domain.Subject    `json:"subject"`
		TimeMinutesLimit   uint               `json:"time_minutes_limit"`
		QuestionCountLimit uint               `json:"question_count_limit"`
		JourneyType        domain.JourneyType `json:"journey_type"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	started, err := h.progression.StartJourney(c.Request.Context(), ctxutil.UserID(c.Request.Context()), services.StartJourneyInput{
		Subject:            body.Subject,
		TimeMinutesLimit:   body.TimeMinutesLimit,
		QuestionCountLimit: body.QuestionCountLimit,
		JourneyType:        body.JourneyType,
	})
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"journey": started.Journey, "step": started.Step})
}

// POST /api/journey-templates/:id/journeys
func (h *JourneyHandler) InstantiateTemplate(c *gin.Context) {
	templateID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	started, err := h.progression.InstantiateTemplate(c.Request.Context(), ctxutil.UserID(c.Request.Context()), templateID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"journey": started.Journey, "step": started.Step})
}

// GET /api/journeys
func (h *JourneyHandler) ListJourneys(c *gin.Context) {
	filter := repos.JourneyFilter{
		Limit:  intQuery(c, "limit", 20),
		Offset: intQuery(c, "offset", 0),
	}
	if t := c.Query("journey_type"); t != "" {
		filter.JourneyTypes = []domain.JourneyType{domain.JourneyType(t)}
	}

	journeys, total, err := h.reports.ListJourneys(c.Request.Context(), ctxutil.UserID(c.Request.Context()), filter)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"journeys": journeys, "total": total})
}

// GET /api/journeys/:id
func (h *JourneyHandler) GetJourney(c *gin.Context) {
	journeyID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.reports.JourneyDetail(c.Request.Context(), ctxutil.UserID(c.Request.Context()), journeyID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, detail)
}

// GET /api/journeys/:id/next
func (h *JourneyHandler) NextStep(c *gin.Context) {
	journeyID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var after *uint
	if raw := c.Query("after_step_id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_step_id", err)
			return
		}
		id := uint(v)
		after = &id
	}

	step, err := h.progression.NextStep(c.Request.Context(), journeyID, after)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"step": step})
}

// GET /api/journey-steps/:id
func (h *JourneyHandler) GetStep(c *gin.Context) {
	stepID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	step, err := h.progression.GetStep(c.Request.Context(), stepID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"step": step})
}

// PUT /api/journeys/:id/steps/:stepID/answer
func (h *JourneyHandler) SubmitAnswer(c *gin.Context) {
	journeyID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	stepID, ok := uintParam(c, "stepID")
	if !ok {
		return
	}

	var body struct {
		UserAnswer string `json:"user_answer"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	step, err := h.progression.SubmitAnswer(c.Request.Context(), journeyID, stepID, body.UserAnswer)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"step": step})
}

// POST /api/journeys/:id/finish
func (h *JourneyHandler) FinishJourney(c *gin.Context) {
	journeyID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	result, err := h.progression.FinishJourney(c.Request.Context(), ctxutil.UserID(c.Request.Context()), journeyID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, result)
}

// GET /api/report
func (h *JourneyHandler) OverallReport(c *gin.Context) {
	report, err := h.reports.OverallReport(c.Request.Context(), ctxutil.UserID(c.Request.Context()))
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, report)
}

// GET /api/group-exams/open
func (h *JourneyHandler) ListOpenGroupExams(c *gin.Context) {
	templates, err := h.reports.ListOpenGroupExamTemplates(c.Request.Context())
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"templates": templates})
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_"+name, err)
		return 0, false
	}
	return uint(v), true
}

func uintQueryValue(c *gin.Context, name, raw string) (uint, bool) {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_"+name, err)
		return 0, false
	}
	return uint(v), true
}

func intQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}
