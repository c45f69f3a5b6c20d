package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/shipsy/feedback-assistant/internal/assistant"
	"github.com/shipsy/feedback-assistant/internal/httpserver/responses"
	"github.com/shipsy/feedback-assistant/internal/metrics"
)

type AssistantHandler struct {
	service *assistant.Service
}

func NewAssistantHandler(service *assistant.Service) *AssistantHandler {
	return &AssistantHandler{service: service}
}

// HandleMessage handles POST /v1/assistant
func (h *AssistantHandler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if logger == nil {
		logger = &log.Logger
	}

	start := time.Now()
	status := http.StatusOK
	defer func() {
		metrics.RecordRequest(r.Method, "/v1/assistant", strconv.Itoa(status), time.Since(start).Seconds())
	}()

	if r.Method != http.MethodPost {
		status = http.StatusMethodNotAllowed
		responses.Error(w, r, status, "method not allowed")
		return
	}

	var req assistant.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error().Err(err).Msg("Failed to decode assistant request")
		status = http.StatusBadRequest
		responses.Error(w, r, status, "invalid request body")
		return
	}

	// Required fields are rejected here, before the core.
	if req.Message == "" || req.UserID == "" || req.SessionID == "" {
		status = http.StatusBadRequest
		responses.Error(w, r, status, "missing required fields: message, userId, sessionId")
		return
	}

	if req.Type == "" {
		req.Type = assistant.TypeChat
	}

	logger.Info().
		Str("user_id", req.UserID).
		Str("session_id", req.SessionID).
		Str("type", req.Type).
		Msg("Assistant request received")

	reply := h.service.HandleMessage(r.Context(), req)

	responses.JSON(w, r, http.StatusOK, reply)
}

// HandleHealth handles GET /healthz
func (h *AssistantHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := h.service.HealthCheck(r.Context())

	status := http.StatusOK
	if health.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	responses.JSON(w, r, status, health)
}
