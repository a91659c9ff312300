package rag

import (
	"strings"

	"github.com/newschat-ai/newschat/internal/models"
)

// historyWindow bounds how many trailing messages enter the prompt.
// Unbounded history grows the prompt with every turn; three messages keep
// the immediate conversational context without the cost blowup.
const historyWindow = 3

// FormatHistory renders the last messages as a role-labeled transcript,
// oldest first, one message per line. Empty history yields an empty string.
func FormatHistory(msgs []models.Message) string {
	if len(msgs) > historyWindow {
		msgs = msgs[len(msgs)-historyWindow:]
	}
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, m.Role.Label()+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}
