package bot

import (
	"sync"

	"github.com/Skotchmaster/game_store/internal/models"
)

type Step int

const (
	StepIdle Step = iota
	StepQuantity
	StepName
	StepEmail
	StepPhone
	StepAddress
	StepConfirm
)

// Session is per-user dialog state. Stock and prices are never cached here.
type Session struct {
	Step      Step
	ProductID uint
	Buyer     models.BuyerSnapshot
}

func (s *Session) Reset() {
	*s = Session{}
}

type sessionEntry struct {
	mu sync.Mutex
	s  Session
}

// Sessions serializes the handling of one user's updates.
type Sessions struct {
	mu sync.Mutex
	m  map[int64]*sessionEntry
}

func NewSessions() *Sessions {
	return &Sessions{m: make(map[int64]*sessionEntry)}
}

// Acquire locks the user's session until release is called.
func (s *Sessions) Acquire(userID int64) (sess *Session, release func()) {
	s.mu.Lock()
	e, ok := s.m[userID]
	if !ok {
		e = &sessionEntry{}
		s.m[userID] = e
	}
	s.mu.Unlock()

	e.mu.Lock()
	return &e.s, e.mu.Unlock
}

// Peek returns a copy of the session for inspection.
func (s *Sessions) Peek(userID int64) Session {
	sess, release := s.Acquire(userID)
	defer release()
	return *sess
}
