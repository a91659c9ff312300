package models

import (
	"errors"
	"fmt"
	"time"
)

// Role is the sender of a chat message. Only the two values below are valid.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

var ErrSessionNotFound = errors.New("session not found")

// Valid reports whether r is one of the permitted roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Label returns the capitalized form used when rendering transcripts.
func (r Role) Label() string {
	switch r {
	case RoleUser:
		return "User"
	case RoleAssistant:
		return "Assistant"
	}
	return string(r)
}

// Message is a single chat message. Messages are immutable once created;
// they are only ever appended to a session and deleted with that session.
type Message struct {
	Content   string `json:"content"`
	Role      Role   `json:"role"`
	Timestamp string `json:"timestamp"` // ISO-8601
}

// NewMessage stamps a message with the current time in RFC 3339 format.
func NewMessage(role Role, content string) Message {
	return Message{
		Content:   content,
		Role:      role,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// Validate checks the closed role enumeration.
func (m Message) Validate() error {
	if !m.Role.Valid() {
		return fmt.Errorf("invalid role %q", m.Role)
	}
	return nil
}

// ChatRequest is the payload of POST /chat.
type ChatRequest struct {
	Content   string `json:"content"`
	SessionID string `json:"session_id"`
}

// ChatResponse echoes the session id back with the generated answer.
type ChatResponse struct {
	Content   string `json:"content"`
	SessionID string `json:"session_id"`
}
