package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"docuquery/internal/app"
	"docuquery/internal/transport/http/response"
)

type QAHandler struct {
	qaService *app.QAService
}

func NewQAHandler(qaService *app.QAService) *QAHandler {
	return &QAHandler{qaService: qaService}
}

// Ask answers a form-encoded question against one of the principal's
// documents and records the exchange.
func (h *QAHandler) Ask(c *gin.Context) {
	email, ok := getEmailFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "invalid token payload")
		return
	}

	filename := strings.TrimSpace(c.PostForm("filename"))
	question := strings.TrimSpace(c.PostForm("question"))
	if filename == "" || question == "" {
		response.Error(c, http.StatusBadRequest, "filename and question are required")
		return
	}

	result, err := h.qaService.Ask(c.Request.Context(), email, filename, question)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrTextNotFound):
			response.Error(c, http.StatusNotFound, "Text file not found.")
		case errors.Is(err, app.ErrModelNotConfigured):
			response.Error(c, http.StatusInternalServerError, "TOGETHER_API_KEY not set.")
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "Ask failed: "+err.Error())
		}
		return
	}

	response.OK(c, result)
}

// History returns the Q&A records for one document, newest first.
func (h *QAHandler) History(c *gin.Context) {
	email, ok := getEmailFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "invalid token payload")
		return
	}

	filename := strings.TrimSpace(c.Query("filename"))
	if filename == "" {
		response.Error(c, http.StatusBadRequest, "filename query parameter is required")
		return
	}

	questions, err := h.qaService.History(c.Request.Context(), email, filename)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Q&A history fetch failed.")
		return
	}

	records := make([]gin.H, 0, len(questions))
	for _, q := range questions {
		records = append(records, gin.H{
			"question": q.Question,
			"answer":   q.Answer,
			"asked_at": q.AskedAt.Format(time.RFC3339),
		})
	}
	response.OK(c, records)
}
