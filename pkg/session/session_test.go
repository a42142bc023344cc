package session

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestCreateGeneratesDistinctIDs(t *testing.T) {
	m := NewManager(Config{})

	a := m.Create()
	b := m.Create()

	if a.ID == "" || b.ID == "" {
		t.Fatal("Create() returned session with empty id")
	}
	if a.ID == b.ID {
		t.Errorf("two sessions share id %q", a.ID)
	}
	// uuid string form: 8-4-4-4-12
	if len(a.ID) != 36 || strings.Count(a.ID, "-") != 4 {
		t.Errorf("session id %q is not a uuid", a.ID)
	}
}

func TestSessionIDStableAcrossTurns(t *testing.T) {
	m := NewManager(Config{})

	s := m.Create()
	id := s.ID

	for i := 0; i < 5; i++ {
		got := m.GetOrCreate(id)
		if got.ID != id {
			t.Fatalf("turn %d: id changed to %q", i, got.ID)
		}
		if got != s {
			t.Fatalf("turn %d: GetOrCreate returned a different session", i)
		}
	}
}

func TestGetOrCreateUnknownID(t *testing.T) {
	m := NewManager(Config{})

	s := m.GetOrCreate("client-supplied-id")
	if s.ID != "client-supplied-id" {
		t.Errorf("id = %q, want client-supplied-id", s.ID)
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}

func TestAppendAndMessages(t *testing.T) {
	m := NewManager(Config{})
	s := m.Create()

	s.Append(Message{Role: "user", Content: "labas"})
	s.Append(Message{Role: "assistant", Content: "Sveiki!"})

	msgs := s.Messages()
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != "user" || msgs[0].Content != "labas" {
		t.Errorf("first message = %+v", msgs[0])
	}
	if msgs[1].Role != "assistant" {
		t.Errorf("second message = %+v", msgs[1])
	}
}

func TestAppendTrimsToMessageLimit(t *testing.T) {
	m := NewManager(Config{MaxMessages: 3})
	s := m.Create()

	for _, content := range []string{"one", "two", "three", "four"} {
		s.Append(Message{Role: "user", Content: content})
	}

	msgs := s.Messages()
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	if msgs[0].Content != "two" {
		t.Errorf("oldest retained message = %q, want two", msgs[0].Content)
	}
}

func TestAppendTrimsToCharacterLimit(t *testing.T) {
	m := NewManager(Config{MaxCharacters: 10})
	s := m.Create()

	s.Append(Message{Role: "user", Content: "aaaaa"})
	s.Append(Message{Role: "user", Content: "bbbbb"})
	s.Append(Message{Role: "user", Content: "ccccc"})

	msgs := s.Messages()
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Content != "bbbbb" {
		t.Errorf("oldest retained = %q, want bbbbb", msgs[0].Content)
	}
}

func TestClearKeepsID(t *testing.T) {
	m := NewManager(Config{})
	s := m.Create()
	id := s.ID

	s.Append(Message{Role: "user", Content: "x"})
	s.Clear()

	if len(s.Messages()) != 0 {
		t.Error("Clear() left messages behind")
	}
	if s.ID != id {
		t.Errorf("Clear() changed id from %q to %q", id, s.ID)
	}
}

func TestEndRemovesSession(t *testing.T) {
	m := NewManager(Config{})
	s := m.Create()

	m.End(s.ID)

	if _, ok := m.Get(s.ID); ok {
		t.Error("session still present after End")
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
}

func TestIdleSessionsPrunedOnCreate(t *testing.T) {
	m := NewManager(Config{IdleTTL: 10 * time.Millisecond})

	stale := m.Create()
	time.Sleep(20 * time.Millisecond)

	m.Create()

	if _, ok := m.Get(stale.ID); ok {
		t.Error("idle session survived prune")
	}
}

func TestConcurrentAppend(t *testing.T) {
	m := NewManager(Config{MaxMessages: -1, MaxCharacters: -1})
	s := m.Create()

	var wg sync.WaitGroup
	const n = 100
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			s.Append(Message{Role: "user", Content: "m"})
		}()
	}
	wg.Wait()

	if got := len(s.Messages()); got != n {
		t.Errorf("after concurrent appends got %d messages, want %d", got, n)
	}
}
