package server

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/newschat-ai/newschat/internal/models"
	"github.com/newschat-ai/newschat/internal/session"
)

// Answerer is what the handler needs from the pipeline.
type Answerer interface {
	Answer(ctx context.Context, question, sessionID string) (string, error)
}

// ChatHandler serves the chat API: one answer per POST /chat, plus history
// retrieval and session teardown.
type ChatHandler struct {
	Sessions session.Store
	Pipeline Answerer

	logger *log.Logger
}

func (h *ChatHandler) Register(e *echo.Echo) {
	h.logger = log.New(log.Writer(), "[CHAT] ", log.LstdFlags)
	e.GET("/", h.home)
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.POST("/chat", h.chat)
	e.POST("/session", h.newSession)
	e.GET("/history/:session_id", h.history)
	e.DELETE("/session/:session_id", h.clearSession)
}

func (h *ChatHandler) home(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "active",
		"service": "news-chatbot-api",
	})
}

// chat persists the user message, generates an answer, persists it, and
// returns it. The user message stays persisted even when generation fails;
// the failure surfaces as an error response, never as a partial answer.
func (h *ChatHandler) chat(c echo.Context) error {
	var req models.ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Content) == "" || strings.TrimSpace(req.SessionID) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "content and session_id required")
	}

	chatRequests.Inc()
	ctx := c.Request().Context()

	userMsg := models.NewMessage(models.RoleUser, req.Content)
	if err := h.Sessions.Append(ctx, req.SessionID, userMsg); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	start := time.Now()
	answer, err := h.Pipeline.Answer(ctx, req.Content, req.SessionID)
	chatDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		chatFailures.Inc()
		h.logger.Printf("answer failed for session %s: %v", req.SessionID, err)
		return echo.NewHTTPError(http.StatusBadGateway, "failed to generate answer")
	}

	botMsg := models.NewMessage(models.RoleAssistant, answer)
	if err := h.Sessions.Append(ctx, req.SessionID, botMsg); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, models.ChatResponse{
		Content:   answer,
		SessionID: req.SessionID,
	})
}

func (h *ChatHandler) newSession(c echo.Context) error {
	return c.JSON(http.StatusCreated, map[string]string{"session_id": uuid.NewString()})
}

func (h *ChatHandler) history(c echo.Context) error {
	msgs, err := h.Sessions.List(c.Request().Context(), c.Param("session_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	return c.JSON(http.StatusOK, msgs)
}

func (h *ChatHandler) clearSession(c echo.Context) error {
	if err := h.Sessions.Clear(c.Request().Context(), c.Param("session_id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Session cleared successfully"})
}
