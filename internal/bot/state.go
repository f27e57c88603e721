package bot

import "sync"

// Mode is the single pending free-text input awaited from a user.
// There is at most one per user; top-level commands always reset it.
type Mode int

const (
	ModeNone Mode = iota
	ModeAwaitBirthDate
	ModeAwaitTargetDate
	ModeAwaitPastDate
	ModeAwaitDateRange
	ModeAwaitReminderSpec
)

type sessionStore struct {
	mu sync.Mutex
	m  map[int64]Mode
}

func newSessionStore() *sessionStore {
	return &sessionStore{m: make(map[int64]Mode)}
}

func (s *sessionStore) get(userID int64) Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[userID]
}

func (s *sessionStore) set(userID int64, mode Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mode == ModeNone {
		delete(s.m, userID)
		return
	}
	s.m[userID] = mode
}

func (s *sessionStore) reset(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, userID)
}
