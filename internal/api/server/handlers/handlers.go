package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bz888/parley/internal/api/server/client"
	"github.com/bz888/parley/internal/logger"
)

const (
	msgMessageRequired   = "Message is required."
	msgNotConfigured     = "Server is not configured with an API key."
	msgFileUnsupported   = "File attachments are not supported with the Groq chat completions API."
	msgUpstreamFailed    = "Upstream API request failed."
	msgUpstreamContact   = "Failed to contact the Groq API."
	msgBodyTooLarge      = "Request body is too large."
	msgModelsUnavailable = "Failed to list models."
)

// ChatRequest is the body of POST /api/chat. File is kept raw so that any
// non-null value counts as an attachment.
type ChatRequest struct {
	Message string          `json:"message"`
	File    json.RawMessage `json:"file"`
}

func (r ChatRequest) hasFile() bool {
	trimmed := strings.TrimSpace(string(r.File))
	return trimmed != "" && trimmed != "null" && trimmed != "false" && trimmed != `""` && trimmed != "0"
}

// ErrorBody is the error envelope every failing endpoint answers with.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Message string `json:"message"`
}

type StatusResponse struct {
	PortWorking   bool `json:"port_working"`
	ServerWorking bool `json:"server_working"`
}

type Handler struct {
	upstream client.CompletionClient
	log      *logger.Logger
}

func NewHandler(upstream client.CompletionClient) *Handler {
	return &Handler{
		upstream: upstream,
		log:      logger.NewLogger("Handlers"),
	}
}

// AbortWithError writes the error envelope and stops the chain.
func AbortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{Error: ErrorDetail{Message: message}})
}

// ChatHandler forwards one user message upstream and relays the completion.
func (h *Handler) ChatHandler(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			AbortWithError(c, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return
		}
		h.log.Debug("unreadable chat body", "error", err.Error())
		req = ChatRequest{}
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		AbortWithError(c, http.StatusBadRequest, msgMessageRequired)
		return
	}

	if !h.upstream.Configured() {
		AbortWithError(c, http.StatusInternalServerError, msgNotConfigured)
		return
	}

	if req.hasFile() {
		AbortWithError(c, http.StatusBadRequest, msgFileUnsupported)
		return
	}

	body, err := h.upstream.Chat(c.Request.Context(), message)
	if err != nil {
		h.writeUpstreamError(c, err, msgUpstreamContact)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// ModelHandler lists the ids of the upstream models.
func (h *Handler) ModelHandler(c *gin.Context) {
	if !h.upstream.Configured() {
		AbortWithError(c, http.StatusInternalServerError, msgNotConfigured)
		return
	}

	models, err := h.upstream.Models(c.Request.Context())
	if err != nil {
		h.writeUpstreamError(c, err, msgModelsUnavailable)
		return
	}

	c.JSON(http.StatusOK, models)
}

func (h *Handler) StatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{PortWorking: true, ServerWorking: true})
}

func (h *Handler) writeUpstreamError(c *gin.Context, err error, fallback string) {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if message == "" {
			message = msgUpstreamFailed
		}
		AbortWithError(c, apiErr.Status, message)
		return
	}

	h.log.Error("error contacting upstream", "path", c.FullPath(), "error", err.Error())
	AbortWithError(c, http.StatusInternalServerError, fallback)
}
