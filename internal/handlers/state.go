package handlers

import (
	"sync"
	"time"

	"tryon-studio/internal/form"
)

// chatState is the bot-side UI state of one chat. The form itself lives in
// the form.Store; this only tracks what the chat surface needs.
type chatState struct {
	// Target is the slot the next single photo goes to, set by /garment,
	// /photo or the panel buttons. Empty means "first empty slot".
	Target         form.Field
	PanelMessageID int
	LanguageCode   string
	UpdatedAt      time.Time
}

type chatStore struct {
	mu sync.Mutex
	m  map[int64]*chatState
}

func newChatStore() *chatStore {
	return &chatStore{m: make(map[int64]*chatState)}
}

func (s *chatStore) Get(chatID int64) chatState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.getOrCreateLocked(chatID)
}

func (s *chatStore) Update(chatID int64, fn func(*chatState)) chatState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.getOrCreateLocked(chatID)
	if fn != nil {
		fn(st)
	}
	st.UpdatedAt = time.Now()
	return *st
}

// Sweep drops chats idle since before cutoff.
func (s *chatStore) Sweep(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, st := range s.m {
		if st.UpdatedAt.Before(cutoff) {
			delete(s.m, id)
			removed++
		}
	}
	return removed
}

func (s *chatStore) getOrCreateLocked(chatID int64) *chatState {
	if st, ok := s.m[chatID]; ok {
		return st
	}
	st := &chatState{UpdatedAt: time.Now()}
	s.m[chatID] = st
	return st
}
