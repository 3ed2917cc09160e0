package model

import (
	"context"
	"errors"
	"sync"
	"time"

	"trackcore/pkg/domain"
)

// tagSchema is a minimal schema over domain.Tag used to exercise Model
// without the entities package.
type tagSchema struct{}

func (tagSchema) Entity() domain.EntityType { return domain.EntityTag }

func (tagSchema) Properties() []domain.Property {
	return []domain.Property{domain.PropertyID, domain.TagPropertyWorkspace, domain.TagPropertyName}
}

func (tagSchema) New() domain.Tag { return domain.Tag{} }

func (tagSchema) WithIdentity(rec domain.Tag, id domain.Identity) domain.Tag {
	rec.ID = id
	return rec
}

func (tagSchema) Duplicate(rec domain.Tag) domain.Tag { return rec.Clone() }

func (tagSchema) Equal(a, b domain.Tag) bool { return a.Equal(b) }

func (tagSchema) Diff(old, next domain.Tag) []domain.Property {
	var out []domain.Property
	if old.ID != next.ID {
		out = append(out, domain.PropertyID)
	}
	if old.WorkspaceID != next.WorkspaceID {
		out = append(out, domain.TagPropertyWorkspace)
	}
	if old.Name != next.Name {
		out = append(out, domain.TagPropertyName)
	}
	return out
}

func (tagSchema) Validate(rec domain.Tag) []domain.Failure {
	var out []domain.Failure
	if rec.WorkspaceID.IsZero() {
		out = append(out, domain.Failure{Field: domain.TagPropertyWorkspace, Reason: "must be set"})
	}
	if rec.Name == "" {
		out = append(out, domain.Failure{Field: domain.TagPropertyName, Reason: "is required"})
	}
	return out
}

// linkSchema covers the join record with two required relations.
type linkSchema struct{}

func (linkSchema) Entity() domain.EntityType { return domain.EntityTimeEntryTag }

func (linkSchema) Properties() []domain.Property {
	return []domain.Property{domain.PropertyID, domain.TimeEntryTagPropertyTimeEntry, domain.TimeEntryTagPropertyTag}
}

func (linkSchema) New() domain.TimeEntryTag { return domain.TimeEntryTag{} }

func (linkSchema) WithIdentity(rec domain.TimeEntryTag, id domain.Identity) domain.TimeEntryTag {
	rec.ID = id
	return rec
}

func (linkSchema) Duplicate(rec domain.TimeEntryTag) domain.TimeEntryTag { return rec.Clone() }

func (linkSchema) Equal(a, b domain.TimeEntryTag) bool { return a.Equal(b) }

func (linkSchema) Diff(old, next domain.TimeEntryTag) []domain.Property {
	var out []domain.Property
	if old.ID != next.ID {
		out = append(out, domain.PropertyID)
	}
	if old.TimeEntryID != next.TimeEntryID {
		out = append(out, domain.TimeEntryTagPropertyTimeEntry)
	}
	if old.TagID != next.TagID {
		out = append(out, domain.TimeEntryTagPropertyTag)
	}
	return out
}

func (linkSchema) Validate(rec domain.TimeEntryTag) []domain.Failure {
	var out []domain.Failure
	if rec.TimeEntryID.IsZero() {
		out = append(out, domain.Failure{Field: domain.TimeEntryTagPropertyTimeEntry, Reason: "must be set"})
	}
	if rec.TagID.IsZero() {
		out = append(out, domain.Failure{Field: domain.TimeEntryTagPropertyTag, Reason: "must be set"})
	}
	return out
}

// fakeStore is an instrumented in-memory Store.
type fakeStore[R domain.Cloner[R]] struct {
	mu      sync.Mutex
	records map[domain.Identity]R
	loads   int
	saves   int
	loadErr error
	saveErr error
}

func newFakeStore[R domain.Cloner[R]]() *fakeStore[R] {
	return &fakeStore[R]{records: make(map[domain.Identity]R)}
}

func (s *fakeStore[R]) Load(_ context.Context, id domain.Identity) (R, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	var zero R
	if s.loadErr != nil {
		return zero, s.loadErr
	}
	rec, ok := s.records[id]
	if !ok {
		return zero, domain.NotFoundError{Entity: zero.Entity(), ID: id}
	}
	return rec.Clone(), nil
}

func (s *fakeStore[R]) Save(_ context.Context, rec R) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.records[rec.RecordID()] = rec
	return nil
}

func (s *fakeStore[R]) put(rec R) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.RecordID()] = rec.Clone()
}

func (s *fakeStore[R]) get(id domain.Identity) (R, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	return rec, ok
}

func (s *fakeStore[R]) counts() (loads, saves int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads, s.saves
}

var errUnavailable = errors.New("store unavailable")

// eventLog collects delivered events.
type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) listener(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) properties() []domain.Property {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.Property, 0, len(l.events))
	for _, ev := range l.events {
		out = append(out, ev.Property)
	}
	return out
}

func (l *eventLog) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
}

// fakeEntity is the related-model handle used by relation tests.
type fakeEntity struct {
	id domain.Identity
}

func (e *fakeEntity) ID() domain.Identity { return e.id }

type observation struct {
	operation string
	success   bool
}

type recordingRecorder struct {
	mu  sync.Mutex
	obs []observation
}

func (r *recordingRecorder) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = append(r.obs, observation{operation: op, success: success})
}
