package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/newschat-ai/newschat/internal/models"
	"github.com/newschat-ai/newschat/internal/session/inmemory"
)

type stubAnswerer struct {
	answer string
	err    error
	asked  []string
}

func (s *stubAnswerer) Answer(_ context.Context, question, _ string) (string, error) {
	s.asked = append(s.asked, question)
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func newHandler(answerer *stubAnswerer) (*ChatHandler, *inmemory.Store, *echo.Echo) {
	e := echo.New()
	sessions := inmemory.NewStore()
	h := &ChatHandler{Sessions: sessions, Pipeline: answerer}
	h.Register(e)
	return h, sessions, e
}

func doJSON(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestChatPersistsBothSidesOfTheTurn(t *testing.T) {
	answerer := &stubAnswerer{answer: "Markets closed higher today."}
	_, sessions, e := newHandler(answerer)

	rec := doJSON(e, http.MethodPost, "/chat", `{"content":"How did markets do?","session_id":"s1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp models.ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Content != "Markets closed higher today." || resp.SessionID != "s1" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	msgs, err := sessions.List(context.Background(), "s1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected user + assistant messages persisted, got %d", len(msgs))
	}
	if msgs[0].Role != models.RoleUser || msgs[1].Role != models.RoleAssistant {
		t.Fatalf("unexpected roles: %s, %s", msgs[0].Role, msgs[1].Role)
	}
	if msgs[0].Content != "How did markets do?" || msgs[1].Content != "Markets closed higher today." {
		t.Fatalf("unexpected contents: %+v", msgs)
	}
}

func TestChatFailureKeepsUserMessage(t *testing.T) {
	answerer := &stubAnswerer{err: errors.New("generation failed after 2 retries")}
	_, sessions, e := newHandler(answerer)

	rec := doJSON(e, http.MethodPost, "/chat", `{"content":"q","session_id":"s1"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}

	msgs, err := sessions.List(context.Background(), "s1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Role != models.RoleUser {
		t.Fatalf("user message should remain persisted on failure, got %+v", msgs)
	}
}

func TestChatRejectsMissingFields(t *testing.T) {
	_, _, e := newHandler(&stubAnswerer{answer: "a"})
	for _, body := range []string{`{}`, `{"content":"x"}`, `{"session_id":"s"}`} {
		rec := doJSON(e, http.MethodPost, "/chat", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestHistoryEndpoint(t *testing.T) {
	_, sessions, e := newHandler(&stubAnswerer{answer: "a"})
	ctx := context.Background()
	_ = sessions.Append(ctx, "s1", models.NewMessage(models.RoleUser, "hello"))
	_ = sessions.Append(ctx, "s1", models.NewMessage(models.RoleAssistant, "hi"))

	rec := doJSON(e, http.MethodGet, "/history/s1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var msgs []models.Message
	if err := json.Unmarshal(rec.Body.Bytes(), &msgs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Content != "hello" {
		t.Fatalf("unexpected history: %+v", msgs)
	}
}

func TestHistoryEmptySessionReturnsEmptyList(t *testing.T) {
	_, _, e := newHandler(&stubAnswerer{answer: "a"})
	rec := doJSON(e, http.MethodGet, "/history/unknown", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Fatalf("expected empty JSON list, got %q", got)
	}
}

func TestClearSessionEndpoint(t *testing.T) {
	_, sessions, e := newHandler(&stubAnswerer{answer: "a"})
	ctx := context.Background()
	_ = sessions.Append(ctx, "s1", models.NewMessage(models.RoleUser, "hello"))

	rec := doJSON(e, http.MethodDelete, "/session/s1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	msgs, _ := sessions.List(ctx, "s1")
	if len(msgs) != 0 {
		t.Fatalf("expected empty history after clear, got %d", len(msgs))
	}
}

func TestNewSessionEndpoint(t *testing.T) {
	_, _, e := newHandler(&stubAnswerer{answer: "a"})
	rec := doJSON(e, http.MethodPost, "/session", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["session_id"] == "" {
		t.Fatal("expected a fresh session id")
	}
}
