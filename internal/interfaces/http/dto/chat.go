package dto

import "draft-scout-api/internal/application/scout"

// ChatRequest is the POST /v1/chat body.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query" binding:"required"`
}

// ChatResponse is the chat answer payload.
type ChatResponse struct {
	SessionID    string            `json:"session_id"`
	ResponseText string            `json:"response_text"`
	UsedRecords  []string          `json:"used_records"`
	Diagnostics  scout.Diagnostics `json:"diagnostics"`
}

// ResetRequest is the POST /v1/chat/reset body.
type ResetRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// StatusResponse is the GET /v1/status payload.
type StatusResponse struct {
	Prospects int    `json:"prospects"`
	Teams     int    `json:"teams"`
	Version   string `json:"version,omitempty"`
}
