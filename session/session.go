package session

import (
	"context"
	"sync"

	"github.com/looplab/fsm"
	"github.com/pkg/errors"
	"repairbot/model"
)

// Session is one chat's dialogue in progress.
type Session struct {
	ChatID int64
	Draft  *model.Application

	// TargetID is the request the operator is editing in StateSetStatus.
	TargetID int

	machine *fsm.FSM
}

func newSession(chatID int64) *Session {
	return &Session{
		ChatID:  chatID,
		machine: fsm.NewFSM(string(StateIdle), transitions(), fsm.Callbacks{}),
	}
}

func (s *Session) State() State {
	return State(s.machine.Current())
}

// Advance moves the form to its next step.
func (s *Session) Advance(ctx context.Context) error {
	return s.fire(ctx, EventNext)
}

func (s *Session) fire(ctx context.Context, event string) error {
	if err := s.machine.Event(ctx, event); err != nil {
		return errors.Wrapf(err, "cannot fire %q in state %q", event, s.State())
	}
	return nil
}

// Store owns every session, the request id to chat map and the per-chat
// locks. It is the only shared mutable state of the bot.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	owners   map[int]int64
	locks    map[int64]*sync.Mutex
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[int64]*Session),
		owners:   make(map[int]int64),
		locks:    make(map[int64]*sync.Mutex),
	}
}

// Lock serialises handling of one chat's updates. Call the returned func to
// release it.
func (s *Store) Lock(chatID int64) func() {
	s.mu.Lock()
	l, ok := s.locks[chatID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[chatID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Begin replaces any session of the chat with a new one entered through
// event.
func (s *Store) Begin(ctx context.Context, chatID int64, event string) (*Session, error) {
	sess := newSession(chatID)
	if err := sess.fire(ctx, event); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[chatID] = sess
	s.mu.Unlock()

	return sess, nil
}

func (s *Store) Get(chatID int64) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[chatID]
	return sess, ok
}

// State is StateIdle for chats without a session.
func (s *Store) State(chatID int64) State {
	if sess, ok := s.Get(chatID); ok {
		return sess.State()
	}
	return StateIdle
}

func (s *Store) End(chatID int64) {
	s.mu.Lock()
	delete(s.sessions, chatID)
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

// RememberOwner records which chat filed request id. The map lives only as
// long as the process.
func (s *Store) RememberOwner(id int, chatID int64) {
	s.mu.Lock()
	s.owners[id] = chatID
	s.mu.Unlock()
}

func (s *Store) Owner(id int) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chatID, ok := s.owners[id]
	return chatID, ok
}
