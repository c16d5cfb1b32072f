// Package chat implements the session state machine shared by every presenter.
//
// A session is Idle until a non-blank draft is submitted, Awaiting until the
// matching result is applied, and Idle again afterwards. Submissions while
// Awaiting are dropped, so at most one generation request is ever in flight
// per session and results are applied in submission order.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"recipe-chat/internal/generation"
)

// Generator performs one generation call. Failures are reported in the
// result, not as a separate error.
type Generator interface {
	Generate(ctx context.Context, req generation.Request) generation.Result
}

type Session struct {
	id        string
	profile   Profile
	generator Generator
	logger    *slog.Logger

	mu          sync.Mutex
	messages    []Message
	draft       string
	pending     bool
	subscribers map[int]chan struct{}
	nextSubID   int
}

type SessionOption func(*Session)

func WithID(id string) SessionOption {
	return func(s *Session) {
		s.id = id
	}
}

func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

func NewSession(profile Profile, generator Generator, opts ...SessionOption) *Session {
	s := &Session{
		profile:     profile,
		generator:   generator,
		logger:      slog.Default(),
		subscribers: make(map[int]chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session_id", s.id, "profile", profile.Name)
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Profile() Profile {
	return s.profile
}

func (s *Session) LoadingText() string {
	return s.profile.loadingText()
}

// SetDraft records the current input text. It does not notify subscribers.
func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = text
}

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	messages := make([]Message, len(s.messages))
	copy(messages, s.messages)
	return State{
		Messages: messages,
		Draft:    s.draft,
		Pending:  s.pending,
	}
}

func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// InUse reports whether a request is pending or a subscriber is attached.
func (s *Session) InUse() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending || len(s.subscribers) > 0
}

// Submit moves the session from Idle to Awaiting. It reports false, and leaves
// the session untouched, when draft is blank or a request is already pending.
// On success the returned request must be resolved with exactly one Apply.
func (s *Session) Submit(draft string) (generation.Request, bool) {
	text := strings.TrimSpace(draft)
	s.mu.Lock()
	if text == "" || s.pending {
		pending := s.pending
		s.mu.Unlock()
		s.logger.Debug("submission ignored", "blank", text == "", "pending", pending)
		return generation.Request{}, false
	}
	s.messages = append(s.messages, Message{Sender: SenderUser, Text: text})
	s.pending = true
	s.draft = ""
	s.mu.Unlock()

	s.notify()
	return s.profile.request(text), true
}

// Apply resolves the pending request: a successful result is rendered once
// into the AI message, a failed one becomes the profile's fallback text.
// Apply on an Idle session does nothing and reports false.
func (s *Session) Apply(result generation.Result) bool {
	text := s.profile.render(result)
	if result.Failed() {
		s.logger.Warn("generation failed, using fallback", "error", result.Err)
	}

	s.mu.Lock()
	if !s.pending {
		s.mu.Unlock()
		s.logger.Warn("result applied with no pending request")
		return false
	}
	s.messages = append(s.messages, Message{Sender: SenderAI, Text: text})
	s.pending = false
	s.mu.Unlock()

	s.notify()
	return true
}

// Send submits draft and, if accepted, runs the generation in the background.
// The returned channel is closed once the result has been applied. ok is false
// when the submission was a no-op.
func (s *Session) Send(ctx context.Context, draft string) (done <-chan struct{}, ok bool) {
	req, ok := s.Submit(draft)
	if !ok {
		return nil, false
	}
	ch := make(chan struct{})
	go func() {
		defer close(ch)
		s.Apply(s.generate(ctx, req))
	}()
	return ch, true
}

func (s *Session) generate(ctx context.Context, req generation.Request) (result generation.Result) {
	defer func() {
		if r := recover(); r != nil {
			result = generation.Failure(fmt.Errorf("generation panicked: %v", r))
		}
	}()
	if s.generator == nil {
		return generation.Failure(fmt.Errorf("no generator configured"))
	}
	return s.generator.Generate(ctx, req)
}

// Subscribe returns a channel that receives a signal after every change to
// the message list or pending flag. Signals coalesce: a slow reader sees at
// least one signal after the latest change, not one per change.
func (s *Session) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

func (s *Session) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
