package dialogue

import (
	"sync"

	"interview-coach/internal/domain"
)

// Store keeps one ordered transcript per session. Every transcript starts with
// a single system turn. Histories are never truncated.
type Store struct {
	systemPrompt string

	mu       sync.Mutex
	sessions map[string][]domain.Turn
}

func NewStore(systemPrompt string) *Store {
	if systemPrompt == "" {
		systemPrompt = domain.DefaultSystemPrompt
	}
	return &Store{
		systemPrompt: systemPrompt,
		sessions:     make(map[string][]domain.Turn),
	}
}

// Append records a turn, creating the session on first use, and returns a copy
// of the full history.
func (s *Store) Append(sessionID string, role domain.Role, content string) []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.sessions[sessionID]
	if !ok {
		history = []domain.Turn{{Role: domain.RoleSystem, Content: s.systemPrompt}}
	}
	history = append(history, domain.Turn{Role: role, Content: content})
	s.sessions[sessionID] = history

	return cloneTurns(history)
}

// Seed replaces the session with a fresh history holding only systemPrompt.
func (s *Store) Seed(sessionID, systemPrompt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = []domain.Turn{{Role: domain.RoleSystem, Content: systemPrompt}}
}

// Reset drops the session. Unknown ids are ignored.
func (s *Store) Reset(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

func (s *Store) History(sessionID string) ([]domain.Turn, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	history, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	return cloneTurns(history), true
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) SystemPrompt() string {
	return s.systemPrompt
}

func cloneTurns(turns []domain.Turn) []domain.Turn {
	out := make([]domain.Turn, len(turns))
	copy(out, turns)
	return out
}
