package dialogue_test

import (
	"fmt"
	"sync"
	"testing"

	"interview-coach/internal/dialogue"
	"interview-coach/internal/domain"
)

func TestStore_NewSessionStartsWithSystemTurn(t *testing.T) {
	store := dialogue.NewStore("be a coach")

	history := store.Append("s1", domain.RoleUser, "hello")

	if len(history) != 2 {
		t.Fatalf("history length: got %d, want 2", len(history))
	}
	if history[0].Role != domain.RoleSystem || history[0].Content != "be a coach" {
		t.Errorf("first turn: got %+v, want system prompt", history[0])
	}
	if history[1].Role != domain.RoleUser || history[1].Content != "hello" {
		t.Errorf("second turn: got %+v", history[1])
	}
}

func TestStore_DefaultSystemPrompt(t *testing.T) {
	store := dialogue.NewStore("")

	history := store.Append("s1", domain.RoleUser, "hi")

	if history[0].Content != domain.DefaultSystemPrompt {
		t.Errorf("system prompt: got %q, want default", history[0].Content)
	}
}

func TestStore_AcceptsConsecutiveUserTurns(t *testing.T) {
	store := dialogue.NewStore("")

	store.Append("s1", domain.RoleUser, "one")
	history := store.Append("s1", domain.RoleUser, "two")

	if len(history) != 3 {
		t.Fatalf("history length: got %d, want 3", len(history))
	}
	if history[2].Content != "two" {
		t.Errorf("last turn: got %q, want two", history[2].Content)
	}
}

func TestStore_AppendReturnsSnapshot(t *testing.T) {
	store := dialogue.NewStore("")

	history := store.Append("s1", domain.RoleUser, "one")
	history[1].Content = "mutated"

	stored, _ := store.History("s1")
	if stored[1].Content != "one" {
		t.Errorf("stored turn was mutated through the returned slice: %q", stored[1].Content)
	}
}

func TestStore_ResetIsIdempotent(t *testing.T) {
	store := dialogue.NewStore("")

	store.Reset("never-created")
	store.Append("s1", domain.RoleUser, "hi")
	store.Reset("s1")
	store.Reset("s1")

	if _, ok := store.History("s1"); ok {
		t.Error("session still present after reset")
	}
	if store.Len() != 0 {
		t.Errorf("Len: got %d, want 0", store.Len())
	}
}

func TestStore_SeedReplacesHistory(t *testing.T) {
	store := dialogue.NewStore("")

	store.Append("s1", domain.RoleUser, "old")
	store.Seed("s1", "custom prompt")

	history, ok := store.History("s1")
	if !ok {
		t.Fatal("session missing after seed")
	}
	if len(history) != 1 || history[0].Role != domain.RoleSystem || history[0].Content != "custom prompt" {
		t.Errorf("history after seed: got %+v", history)
	}
}

func TestStore_ConcurrentAppends(t *testing.T) {
	store := dialogue.NewStore("")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i%4)
			for j := 0; j < 25; j++ {
				store.Append(id, domain.RoleUser, "x")
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 4; i++ {
		history, _ := store.History(fmt.Sprintf("s%d", i))
		if len(history) != 1+5*25 {
			t.Errorf("session s%d length: got %d, want %d", i, len(history), 1+5*25)
		}
	}
}
