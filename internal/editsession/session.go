// Package editsession implements the view/edit/save workflow over a response map.
package editsession

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
)

// State is a workflow state.
type State string

const (
	Viewing State = "viewing"
	Editing State = "editing"
	Saving  State = "saving"
)

// Source selects which response map a caller reads.
type Source string

const (
	SourcePersisted Source = "persisted"
	SourceDraft     Source = "draft"
)

// ParseSource accepts "persisted", "draft" or empty (persisted).
func ParseSource(raw string) (Source, error) {
	switch Source(raw) {
	case "", SourcePersisted:
		return SourcePersisted, nil
	case SourceDraft:
		return SourceDraft, nil
	}
	return "", fmt.Errorf("unknown response source %q", raw)
}

// ErrInvalidTransition is returned when an operation is not allowed in the current state.
var ErrInvalidTransition = errors.New("invalid edit session transition")

// SaveFunc persists a full replacement map and returns the re-fetched persisted map.
type SaveFunc[V comparable] func(ctx context.Context, draft map[string]V) (map[string]V, error)

// Session tracks persisted responses and an optional edit buffer.
type Session[V comparable] struct {
	mu        sync.Mutex
	state     State
	persisted map[string]V
	buffer    map[string]V
}

// New starts a session in Viewing over a copy of persisted.
func New[V comparable](persisted map[string]V) *Session[V] {
	return &Session[V]{state: Viewing, persisted: clone(persisted)}
}

// State returns the current state.
func (s *Session[V]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Begin seeds the buffer from persisted. Viewing -> Editing.
func (s *Session[V]) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Viewing {
		return s.transitionErr("begin")
	}
	s.buffer = clone(s.persisted)
	s.state = Editing
	return nil
}

// Set updates one key of the buffer. Editing -> Editing.
func (s *Session[V]) Set(questionID string, value V) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Editing {
		return s.transitionErr("set")
	}
	s.buffer[questionID] = value
	return nil
}

// Cancel discards the buffer. Editing -> Viewing.
func (s *Session[V]) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Editing {
		return s.transitionErr("cancel")
	}
	s.buffer = nil
	s.state = Viewing
	return nil
}

// Save submits the buffer through fn. On success the persisted map is replaced with
// what fn returns and the session returns to Viewing. On failure the buffer is kept,
// the session returns to Editing and fn's error is returned.
func (s *Session[V]) Save(ctx context.Context, fn SaveFunc[V]) error {
	s.mu.Lock()
	if s.state != Editing {
		err := s.transitionErr("save")
		s.mu.Unlock()
		return err
	}
	s.state = Saving
	draft := clone(s.buffer)
	s.mu.Unlock()

	refreshed, err := fn(ctx, draft)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = Editing
		return err
	}
	s.persisted = clone(refreshed)
	s.buffer = nil
	s.state = Viewing
	return nil
}

// Responses returns a copy of the requested map. Asking for the draft while Viewing
// yields the persisted map since no buffer exists.
func (s *Session[V]) Responses(source Source) map[string]V {
	s.mu.Lock()
	defer s.mu.Unlock()
	if source == SourceDraft && s.buffer != nil {
		return clone(s.buffer)
	}
	return clone(s.persisted)
}

// Active returns the buffer while Editing or Saving, persisted while Viewing.
func (s *Session[V]) Active() map[string]V {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Viewing && s.buffer != nil {
		return clone(s.buffer)
	}
	return clone(s.persisted)
}

// Dirty reports whether the buffer differs from persisted.
func (s *Session[V]) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer != nil && !maps.Equal(s.buffer, s.persisted)
}

// Snapshot is the serialisable state of a session.
type Snapshot[V comparable] struct {
	State     State        `json:"state"`
	Persisted map[string]V `json:"persisted"`
	Buffer    map[string]V `json:"buffer,omitempty"`
}

// Snapshot captures the session. A session caught mid-save is recorded as Editing.
func (s *Session[V]) Snapshot() Snapshot[V] {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.state
	if state == Saving {
		state = Editing
	}
	return Snapshot[V]{State: state, Persisted: clone(s.persisted), Buffer: clone(s.buffer)}
}

// Restore rebuilds a session from a snapshot.
func Restore[V comparable](snap Snapshot[V]) (*Session[V], error) {
	switch snap.State {
	case Viewing:
		return New(snap.Persisted), nil
	case Editing, Saving:
		buffer := clone(snap.Buffer)
		if buffer == nil {
			buffer = map[string]V{}
		}
		return &Session[V]{state: Editing, persisted: clone(snap.Persisted), buffer: buffer}, nil
	}
	return nil, fmt.Errorf("restore edit session: unknown state %q", snap.State)
}

func (s *Session[V]) transitionErr(op string) error {
	return fmt.Errorf("%s while %s: %w", op, s.state, ErrInvalidTransition)
}

func clone[V comparable](m map[string]V) map[string]V {
	if m == nil {
		return nil
	}
	return maps.Clone(m)
}
