package session

import (
	"context"

	"github.com/newschat-ai/newschat/internal/models"
)

// Store keeps per-session chat history. Sessions are created implicitly on
// first Append and live until Clear; message order is append order.
type Store interface {
	Append(ctx context.Context, sessionID string, msg models.Message) error
	List(ctx context.Context, sessionID string) ([]models.Message, error)
	Clear(ctx context.Context, sessionID string) error
}
