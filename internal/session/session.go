// Package session owns the assistant conversation: an ordered, append-only
// turn log plus the classify-compose-respond loop behind it.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agrivaani/agrivaani/internal/composer"
	"github.com/agrivaani/agrivaani/internal/intent"
	"github.com/agrivaani/agrivaani/internal/lang"
	"github.com/agrivaani/agrivaani/internal/storage"
)

// defaultThinkingDelay separates a user turn from the assistant's reply. It
// stands in for a real inference round-trip; the only contract is that the
// user turn is visible first.
const defaultThinkingDelay = time.Second

// Turn is one message in the conversation.
type Turn struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	IsAssistant bool      `json:"is_assistant"`
	CreatedAt   time.Time `json:"created_at"`
}

// Speaker is the playback capability the session uses for voice output.
type Speaker interface {
	Speak(text string, l lang.Language)
	CanSpeak() bool
}

// Session is a single conversation. Turns are appended in submission order
// and never mutated, reordered, or removed.
type Session struct {
	id       string
	language lang.Language
	store    *storage.Store
	speaker  Speaker
	voiceOut bool
	delay    time.Duration
	now      func() time.Time

	mu    sync.Mutex
	turns []Turn
	seq   int
}

// Options tune session construction. The zero value is usable.
type Options struct {
	// Speaker enables spoken responses when non-nil and capable.
	Speaker Speaker
	// ThinkingDelay overrides the default reply delay. Zero keeps the
	// default; tests set it very small.
	ThinkingDelay time.Duration
	// Now overrides the clock used for turn timestamps.
	Now func() time.Time
}

// New creates a session in the given language and appends the localized
// welcome turn. The welcome is added at most once, gated on the log being
// empty.
func New(store *storage.Store, l lang.Language, opts Options) (*Session, error) {
	s := &Session{
		id:       uuid.NewString(),
		language: l,
		store:    store,
		speaker:  opts.Speaker,
		voiceOut: opts.Speaker != nil && opts.Speaker.CanSpeak(),
		delay:    opts.ThinkingDelay,
		now:      opts.Now,
	}
	if s.delay == 0 {
		s.delay = defaultThinkingDelay
	}
	if s.now == nil {
		s.now = time.Now
	}

	if err := store.CreateSession(storage.Session{
		ID:        s.id,
		Language:  string(l),
		CreatedAt: s.now(),
	}); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if len(s.turns) == 0 {
		s.appendLocked(composer.Welcome(l), true)
	}
	s.mu.Unlock()

	return s, nil
}

// Load rehydrates a persisted session and its turn log from storage. No
// welcome turn is appended; the loaded log already starts with one.
func Load(store *storage.Store, id string, opts Options) (*Session, error) {
	rec, err := store.GetSession(id)
	if err != nil {
		return nil, err
	}
	stored, err := store.Turns(id)
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:       rec.ID,
		language: lang.Parse(rec.Language),
		store:    store,
		speaker:  opts.Speaker,
		voiceOut: opts.Speaker != nil && opts.Speaker.CanSpeak(),
		delay:    opts.ThinkingDelay,
		now:      opts.Now,
	}
	if s.delay == 0 {
		s.delay = defaultThinkingDelay
	}
	if s.now == nil {
		s.now = time.Now
	}

	for _, t := range stored {
		s.turns = append(s.turns, Turn{
			ID:          t.ID,
			Text:        t.Text,
			IsAssistant: t.IsAssistant,
			CreatedAt:   t.CreatedAt,
		})
		s.seq = t.Seq + 1
	}
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Language returns the session's response language.
func (s *Session) Language() lang.Language { return s.language }

// Turns returns a copy of the turn log in append order.
func (s *Session) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Submit appends text as a user turn and schedules the assistant's reply
// after the thinking delay. The user turn is returned immediately; the
// channel yields the assistant turn once it has been appended, then closes.
// Blank submissions are ignored.
func (s *Session) Submit(text string) (Turn, <-chan Turn) {
	done := make(chan Turn, 1)

	if text == "" {
		close(done)
		return Turn{}, done
	}

	s.mu.Lock()
	userTurn := s.appendLocked(text, false)
	s.mu.Unlock()

	go func() {
		defer close(done)
		time.Sleep(s.delay)

		topic := intent.Classify(text)
		response := composer.Compose(topic, s.language, s.store)

		s.mu.Lock()
		assistantTurn := s.appendLocked(response, true)
		s.mu.Unlock()

		if s.voiceOut {
			s.speaker.Speak(response, s.language)
		}
		done <- assistantTurn
	}()

	return userTurn, done
}

// SubmitWait submits text and blocks until the assistant turn is available.
func (s *Session) SubmitWait(text string) (user, assistant Turn) {
	user, done := s.Submit(text)
	assistant = <-done
	return user, assistant
}

// appendLocked appends a turn to the in-memory log and writes it through to
// storage. Callers hold s.mu.
func (s *Session) appendLocked(text string, isAssistant bool) Turn {
	t := Turn{
		ID:          uuid.NewString(),
		Text:        text,
		IsAssistant: isAssistant,
		CreatedAt:   s.now(),
	}
	s.turns = append(s.turns, t)

	if err := s.store.AppendTurn(storage.Turn{
		ID:          t.ID,
		SessionID:   s.id,
		Seq:         s.seq,
		Text:        t.Text,
		IsAssistant: t.IsAssistant,
		CreatedAt:   t.CreatedAt,
	}); err != nil {
		slog.Warn("persisting turn failed", "session_id", s.id, "error", err)
	}
	s.seq++
	return t
}
