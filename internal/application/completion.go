package application

import (
	"context"

	"interview-coach/internal/domain"
)

type Completer interface {
	Complete(ctx context.Context, history []domain.Turn) (string, error)
}

type DialogueStore interface {
	Append(sessionID string, role domain.Role, content string) []domain.Turn
	Seed(sessionID, systemPrompt string)
	Reset(sessionID string)
	History(sessionID string) ([]domain.Turn, bool)
	Len() int
	SystemPrompt() string
}
