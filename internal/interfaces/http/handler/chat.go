// Package handler provides the HTTP request handlers.
package handler

import (
	stderrors "errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"draft-scout-api/internal/application/scout"
	"draft-scout-api/internal/interfaces/http/dto"
	"draft-scout-api/pkg/errors"
	"draft-scout-api/pkg/logger"
)

// ChatHandler serves the prospect chat endpoints.
type ChatHandler struct {
	svc     *scout.Service
	version string
}

// NewChatHandler creates the handler.
func NewChatHandler(svc *scout.Service, version string) *ChatHandler {
	return &ChatHandler{svc: svc, version: version}
}

// Chat answers one query. An absent session ID starts a new session.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "query is required")
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		dto.BadRequest(c, "query is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	ctx := logger.WithContext(c.Request.Context(), logger.SessionIDKey, req.SessionID)

	answer, err := h.svc.AnswerQuery(ctx, req.SessionID, req.Query)
	if err != nil {
		appErr := mapPipelineError(err)
		logger.Warn(ctx, "chat query failed",
			"session_id", req.SessionID,
			"code", string(appErr.Code),
			"error", err,
		)
		dto.Error(c, appErr.HTTPStatus, appErr.Message)
		return
	}

	dto.Success(c, dto.ChatResponse{
		SessionID:    req.SessionID,
		ResponseText: answer.ResponseText,
		UsedRecords:  answer.UsedRecords,
		Diagnostics:  answer.Diagnostics,
	})
}

// Reset clears a session's conversation history.
func (h *ChatHandler) Reset(c *gin.Context) {
	var req dto.ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "session_id is required")
		return
	}

	if err := h.svc.ResetSession(c.Request.Context(), req.SessionID); err != nil {
		dto.InternalError(c, "failed to reset session")
		return
	}

	dto.NoContent(c)
}

// Status reports corpus sizes and the service version.
func (h *ChatHandler) Status(c *gin.Context) {
	prospects, teams := h.svc.CorpusCounts()
	dto.Success(c, dto.StatusResponse{
		Prospects: prospects,
		Teams:     teams,
		Version:   h.version,
	})
}

// mapPipelineError translates pipeline failures into user-safe errors.
// Internal detail never reaches the response body.
func mapPipelineError(err error) *errors.AppError {
	switch {
	case stderrors.Is(err, scout.ErrNoData):
		return errors.Wrap(err, errors.CodeNoData,
			"prospect data is not available right now, please try again later")
	case stderrors.Is(err, scout.ErrEmbedding):
		return errors.Wrap(err, errors.CodeEmbeddingFailed,
			"the scouting service is temporarily unavailable")
	case stderrors.Is(err, scout.ErrCompletion):
		return errors.Wrap(err, errors.CodeLLMCallFailed,
			"the scouting service is temporarily unavailable")
	default:
		return errors.Wrap(err, errors.CodeInternalError, "internal server error")
	}
}
