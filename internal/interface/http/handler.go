package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tenkiguide/backend/internal/domain/chat"
	"github.com/tenkiguide/backend/internal/domain/speech"
	apperrors "github.com/tenkiguide/backend/pkg/errors"
)

// LocationNamer resolves coordinates to a human-readable place name.
type LocationNamer interface {
	ReverseName(ctx context.Context, lat, lon float64) string
}

// Handler wires the HTTP transport to domain services.
type Handler struct {
	chatSvc   chat.Service
	speechSvc speech.Service
	locations LocationNamer
	logger    *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(chatSvc chat.Service, speechSvc speech.Service, locations LocationNamer, logger *slog.Logger) *Handler {
	return &Handler{
		chatSvc:   chatSvc,
		speechSvc: speechSvc,
		locations: locations,
		logger:    logger.With("component", "http.handler"),
	}
}

// Health reports process liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "TenkiGuide backend is running"})
}

// Keepalive pings the model so hosting platforms with cold starts keep the
// generation path warm. Failures are reported in the body, not the status.
func (h *Handler) Keepalive(c *gin.Context) {
	if err := h.chatSvc.Ping(c.Request.Context()); err != nil {
		h.logger.Warn("keepalive ping failed", "error", err)
		c.JSON(http.StatusOK, gin.H{
			"status":            "degraded",
			"message":           "keepalive ping completed",
			"gemini_responsive": false,
			"error":             err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":            "ok",
		"message":           "keepalive ping completed",
		"gemini_responsive": true,
	})
}

// Chat runs one conversational turn.
func (h *Handler) Chat(c *gin.Context) {
	var turn chat.Turn
	if err := c.ShouldBindJSON(&turn); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	reply, err := h.chatSvc.Chat(c.Request.Context(), turn, c.ClientIP())
	if err != nil {
		status := http.StatusInternalServerError
		code := "chat_failed"
		switch {
		case apperrors.IsCode(err, "invalid_input"):
			status = http.StatusBadRequest
			code = "invalid_request"
		case apperrors.IsCode(err, "llm_error"):
			status = http.StatusBadGateway
			code = "llm_error"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, reply)
}

// Location reverse-geocodes coordinates into a display name.
func (h *Handler) Location(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "lat and lon query parameters are required", nil))
		return
	}

	name := h.locations.ReverseName(c.Request.Context(), lat, lon)
	c.JSON(http.StatusOK, gin.H{"location_name": name})
}

// Transcribe converts an uploaded audio file into text. Recognition failures
// degrade to an empty transcript rather than an error response.
func (h *Handler) Transcribe(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "audio file is required", err))
		return
	}

	reader, err := file.Open()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "could not read audio file", err))
		return
	}
	defer reader.Close()

	audio, err := io.ReadAll(reader)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "could not read audio file", err))
		return
	}

	transcript := h.speechSvc.Transcribe(c.Request.Context(), audio)
	c.JSON(http.StatusOK, gin.H{"transcript": transcript})
}

type synthesizeRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Synthesize renders text as MP3 audio.
func (h *Handler) Synthesize(c *gin.Context) {
	var req synthesizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	audio, err := h.speechSvc.Synthesize(c.Request.Context(), req.Text, req.Language)
	if err != nil {
		status := http.StatusInternalServerError
		code := "tts_failed"
		switch {
		case apperrors.IsCode(err, "invalid_input"):
			status = http.StatusBadRequest
			code = "invalid_request"
		case apperrors.IsCode(err, "speech_error"):
			status = http.StatusBadGateway
			code = "speech_error"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.Data(http.StatusOK, "audio/mpeg", audio)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
