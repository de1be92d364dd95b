package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deebajee2009/OnlineExamBackEnd/internal/http/response"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/platform/logger"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/repos"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/services"
)

type QuestionHandler struct {
	log       *logger.Logger
	questions services.QuestionService
	hardness  services.HardnessService
}

func NewQuestionHandler(
	log *logger.Logger,
	questions services.QuestionService,
	hardness services.HardnessService,
) *QuestionHandler {
	return &QuestionHandler{
		log:       log.With("Handler", "QuestionHandler"),
		questions: questions,
		hardness:  hardness,
	}
}

// POST /api/questions
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var body services.QuestionInput
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	question, err := h.questions.CreateQuestion(c.Request.Context(), body)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"question": question})
}

// PUT /api/questions/:id
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	questionID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var body services.QuestionInput
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	question, err := h.questions.UpdateQuestion(c.Request.Context(), questionID, body)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"question": question})
}

// GET /api/questions/:id
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	questionID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	question, err := h.questions.GetQuestion(c.Request.Context(), questionID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"question": question})
}

// GET /api/questions
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	filter := repos.QuestionFilter{
		ActiveOnly: c.Query("active") == "true",
		Limit:      intQuery(c, "limit", 20),
		Offset:     intQuery(c, "offset", 0),
	}
	if raw := c.Query("tag_id"); raw != "" {
		tagID, ok := uintQueryValue(c, "tag_id", raw)
		if !ok {
			return
		}
		filter.TagID = &tagID
	}

	questions, total, err := h.questions.ListQuestions(c.Request.Context(), filter)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"questions": questions, "total": total})
}

// PATCH /api/questions/:id/active
func (h *QuestionHandler) SetActive(c *gin.Context) {
	questionID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var body struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	if err := h.questions.SetActive(c.Request.Context(), questionID, *body.IsActive); err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"is_active": *body.IsActive})
}

// POST /api/questions/import
func (h *QuestionHandler) Import(c *gin.Context) {
	var body struct {
		Source    string                   `json:"source"`
		Questions []services.QuestionInput `json:"questions" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if body.Source == "" {
		body.Source = "api"
	}

	run, err := h.questions.Import(c.Request.Context(), body.Source, body.Questions)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"import_run": run})
}

// POST /api/questions/:id/hardness/refresh
func (h *QuestionHandler) RefreshHardness(c *gin.Context) {
	questionID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := h.hardness.RefreshQuestion(c.Request.Context(), questionID); err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"refreshed": true})
}

// POST /api/tags
func (h *QuestionHandler) CreateTag(c *gin.Context) {
	var body struct {
		Name     string `json:"name" binding:"required"`
		ParentID *uint  `json:"parent_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	tag, err := h.questions.CreateTag(c.Request.Context(), body.Name, body.ParentID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"tag": tag})
}

// GET /api/tags
func (h *QuestionHandler) ListTags(c *gin.Context) {
	tags, err := h.questions.ListTags(c.Request.Context())
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"tags": tags})
}
