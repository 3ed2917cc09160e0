package model

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"trackcore/pkg/domain"
)

// State is the lifecycle position of a Model.
type State int

const (
	// StateUnbound models have no identity and have never been saved.
	StateUnbound State = iota
	// StateUnloaded models have an identity whose record has not been read.
	StateUnloaded
	// StateLoaded models hold the record last read from or written to the store.
	StateLoaded
	// StateDirty models hold unsaved changes.
	StateDirty
)

func (s State) String() string {
	switch s {
	case StateUnbound:
		return "unbound"
	case StateUnloaded:
		return "unloaded"
	case StateLoaded:
		return "loaded"
	case StateDirty:
		return "dirty"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Tracker is a relation attached to an owning model. The model consults
// trackers when computing change events and when validating references.
type Tracker interface {
	Property() domain.Property
	HasChanged() bool
	Checkpoint()
	Release()
	Exists(ctx context.Context, id domain.Identity) (bool, error)
}

type tracked[R domain.Record] struct {
	Tracker
	key func(R) domain.Identity
}

// Model wraps one immutable record of type R. Every mutation replaces the
// record with a modified copy; readers never observe a half-updated value.
// Mutation and save are meant to be driven by a single owner, while reads
// and change delivery are safe from any goroutine.
type Model[R domain.Record] struct {
	schema Schema[R]
	store  Store[R]
	opts   options
	notify notifier

	loadMu sync.Mutex

	mu           sync.Mutex
	data         R
	persisted    R
	hasPersisted bool
	state        State
	trackers     []tracked[R]
}

func newModel[R domain.Record](schema Schema[R], store Store[R], opts []Option) *Model[R] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Model[R]{schema: schema, store: store, opts: o, data: schema.New(), state: StateUnbound}
}

// New returns an unbound model holding the schema's default record.
func New[R domain.Record](schema Schema[R], store Store[R], opts ...Option) *Model[R] {
	return newModel(schema, store, opts)
}

// NewWithID returns a model bound to id whose record is loaded lazily. The
// empty identity yields an unbound model.
func NewWithID[R domain.Record](schema Schema[R], store Store[R], id domain.Identity, opts ...Option) *Model[R] {
	m := newModel(schema, store, opts)
	if !id.IsZero() {
		m.data = schema.WithIdentity(m.data, id)
		m.state = StateUnloaded
	}
	return m
}

// FromRecord returns a model holding a copy of rec. A record with an
// identity is treated as the last persisted state; one without is unbound.
func FromRecord[R domain.Record](schema Schema[R], store Store[R], rec R, opts ...Option) *Model[R] {
	m := newModel(schema, store, opts)
	m.data = schema.Duplicate(rec)
	if !rec.RecordID().IsZero() {
		m.persisted = schema.Duplicate(rec)
		m.hasPersisted = true
		m.state = StateLoaded
	}
	return m
}

// Entity returns the record type handled by the model.
func (m *Model[R]) Entity() domain.EntityType { return m.schema.Entity() }

// ID returns the identity of the record, empty while unbound.
func (m *Model[R]) ID() domain.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.RecordID()
}

// State returns the current lifecycle state.
func (m *Model[R]) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsDirty reports whether the live record differs from what the store holds.
// An unbound model is dirty once it differs from the default record.
func (m *Model[R]) IsDirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case StateDirty:
		return true
	case StateUnbound:
		return !m.schema.Equal(m.data, m.schema.New())
	default:
		return false
	}
}

// Subscribe registers l for change events and returns its unsubscribe func.
func (m *Model[R]) Subscribe(l Listener) func() {
	return m.notify.subscribe(l)
}

// Track attaches a relation whose foreign key is read from the record by
// key. Tracked relations take part in change detection and in reference
// validation before save.
func (m *Model[R]) Track(t Tracker, key func(R) domain.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trackers = append(m.trackers, tracked[R]{Tracker: t, key: key})
}

// Current returns a copy of the live record without loading it.
func (m *Model[R]) Current() R {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.schema.Duplicate(m.data)
}

// Data returns a copy of the record, loading it first when the load policy
// allows it.
func (m *Model[R]) Data(ctx context.Context) (R, error) {
	if err := m.ensureReadable(ctx, false); err != nil {
		var zero R
		return zero, err
	}
	return m.Current(), nil
}

// ToRecord converts the model into a standalone record value.
func (m *Model[R]) ToRecord(ctx context.Context) (R, error) {
	return m.Data(ctx)
}

// Duplicate returns a copy of the live record suitable for handing to an
// API that takes ownership of it. Later mutations of the model do not leak
// into the copy.
func (m *Model[R]) Duplicate() R {
	return m.Current()
}

// Persisted returns the record last read from or written to the store.
func (m *Model[R]) Persisted() (R, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasPersisted {
		var zero R
		return zero, false
	}
	return m.schema.Duplicate(m.persisted), true
}

// Release drops every cached related model. The record itself is kept.
func (m *Model[R]) Release() {
	m.mu.Lock()
	trackers := append([]tracked[R](nil), m.trackers...)
	m.mu.Unlock()
	for _, t := range trackers {
		t.Release()
	}
}

func (m *Model[R]) notLoaded() error {
	return fmt.Errorf("%s %s: %w", m.schema.Entity(), m.ID(), domain.ErrNotLoaded)
}

// ensureReadable applies the load policy to an unloaded model. Mutations
// never proceed on a default record standing in for unread data.
func (m *Model[R]) ensureReadable(ctx context.Context, mutating bool) error {
	if m.State() != StateUnloaded {
		return nil
	}
	switch m.opts.policy {
	case LoadOnAccess:
		return m.EnsureLoaded(ctx)
	case DefaultUntilLoaded:
		if !mutating {
			return nil
		}
		return m.notLoaded()
	default:
		return m.notLoaded()
	}
}

// EnsureLoaded loads the record if it has not been loaded yet. Unbound and
// already loaded models return nil without touching the store.
func (m *Model[R]) EnsureLoaded(ctx context.Context) error {
	return m.load(ctx, false)
}

// Load reads the record from the store, replacing the live record and any
// unsaved changes. A missing record yields domain.NotFoundError and leaves
// the model unloaded.
func (m *Model[R]) Load(ctx context.Context) error {
	return m.load(ctx, true)
}

func (m *Model[R]) load(ctx context.Context, force bool) error {
	m.loadMu.Lock()
	defer m.loadMu.Unlock()

	m.mu.Lock()
	state := m.state
	id := m.data.RecordID()
	m.mu.Unlock()

	entity := m.schema.Entity()
	if state == StateUnbound {
		if force {
			return domain.NotFoundError{Entity: entity}
		}
		return nil
	}
	if !force && state != StateUnloaded {
		return nil
	}

	log := m.opts.logger.With(zap.String("entity", string(entity)), zap.Stringer("id", id))
	start := m.opts.now()
	rec, err := m.store.Load(ctx, id)
	m.observe(ctx, domain.OpLoad, err == nil, start)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Debug("record not found")
			return domain.NotFoundError{Entity: entity, ID: id}
		}
		log.Warn("load failed", zap.Error(err))
		return domain.StoreError{Op: domain.OpLoad, Entity: entity, ID: id, Err: err}
	}

	m.mu.Lock()
	m.persisted = m.schema.Duplicate(rec)
	m.hasPersisted = true
	events := m.installLocked(rec)
	m.mu.Unlock()

	log.Debug("record loaded", zap.Int("changes", len(events)))
	m.notify.emit(events...)
	return nil
}

// Mutate applies fn to a copy of the record and installs the copy. fn must
// not call back into the model. The identity cannot be changed this way.
func (m *Model[R]) Mutate(ctx context.Context, fn func(*R)) error {
	if err := m.ensureReadable(ctx, true); err != nil {
		return err
	}
	m.mu.Lock()
	next := m.schema.Duplicate(m.data)
	fn(&next)
	next = m.schema.WithIdentity(next, m.data.RecordID())
	events := m.installLocked(next)
	m.mu.Unlock()

	m.notify.emit(events...)
	return nil
}

// installLocked swaps in next and returns one event per changed property
// in declaration order. Relation properties not listed by the schema follow
// in the order they were tracked.
func (m *Model[R]) installLocked(next R) []Event {
	old := m.data
	m.data = next

	changed := make(map[domain.Property]struct{})
	for _, p := range m.schema.Diff(old, next) {
		changed[p] = struct{}{}
	}
	for _, t := range m.trackers {
		if t.HasChanged() {
			changed[t.Property()] = struct{}{}
		}
		t.Checkpoint()
	}
	m.state = m.stateLocked()

	if len(changed) == 0 {
		return nil
	}
	id := next.RecordID()
	entity := m.schema.Entity()
	events := make([]Event, 0, len(changed))
	take := func(p domain.Property) {
		if _, ok := changed[p]; ok {
			events = append(events, Event{Entity: entity, ID: id, Property: p})
			delete(changed, p)
		}
	}
	for _, p := range m.schema.Properties() {
		take(p)
	}
	for _, t := range m.trackers {
		take(t.Property())
	}
	return events
}

func (m *Model[R]) stateLocked() State {
	switch {
	case m.data.RecordID().IsZero():
		return StateUnbound
	case m.hasPersisted && m.schema.Equal(m.data, m.persisted):
		return StateLoaded
	default:
		return StateDirty
	}
}

// Validate returns the schema failures of the live record followed by one
// failure per tracked relation whose non-empty key points at a record that
// does not exist. The error reports a failed load or existence check.
func (m *Model[R]) Validate(ctx context.Context) ([]domain.Failure, error) {
	if err := m.ensureReadable(ctx, true); err != nil {
		return nil, err
	}
	m.mu.Lock()
	rec := m.schema.Duplicate(m.data)
	trackers := append([]tracked[R](nil), m.trackers...)
	m.mu.Unlock()

	failures := m.schema.Validate(rec)
	failed := make(map[domain.Property]bool, len(failures))
	for _, f := range failures {
		failed[f.Field] = true
	}
	for _, t := range trackers {
		if t.key == nil || failed[t.Property()] {
			continue
		}
		key := t.key(rec)
		if key.IsZero() {
			continue
		}
		ok, err := t.Exists(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("check %s %s: %w", t.Property(), key, err)
		}
		if !ok {
			failures = append(failures, domain.Failure{Field: t.Property(), Reason: "references a missing record"})
		}
	}
	return failures, nil
}

// Save validates the record and hands a copy of it to the store. Validation
// failures abort the save with domain.ValidationError and leave the model
// untouched. An unbound model is assigned a fresh identity first. An
// unloaded model is loaded first and a failed load is returned as is. Store
// failures are returned as domain.StoreError and the model stays dirty.
func (m *Model[R]) Save(ctx context.Context) error {
	entity := m.schema.Entity()
	// Load failures keep their own operation and type.
	if err := m.ensureReadable(ctx, true); err != nil {
		return err
	}
	failures, err := m.Validate(ctx)
	if err != nil {
		return domain.StoreError{Op: domain.OpSave, Entity: entity, ID: m.ID(), Err: err}
	}
	if len(failures) > 0 {
		id := m.ID()
		m.opts.logger.Debug("validation failed",
			zap.String("entity", string(entity)),
			zap.Stringer("id", id),
			zap.Int("failures", len(failures)))
		return domain.ValidationError{Entity: entity, ID: id, Failures: failures}
	}

	m.mu.Lock()
	var events []Event
	if m.data.RecordID().IsZero() {
		events = m.installLocked(m.schema.WithIdentity(m.data, m.opts.newID()))
	}
	rec := m.schema.Duplicate(m.data)
	m.mu.Unlock()
	m.notify.emit(events...)

	id := rec.RecordID()
	log := m.opts.logger.With(zap.String("entity", string(entity)), zap.Stringer("id", id))
	start := m.opts.now()
	err = m.store.Save(ctx, m.schema.Duplicate(rec))
	m.observe(ctx, domain.OpSave, err == nil, start)
	if err != nil {
		log.Warn("save failed", zap.Error(err))
		return domain.StoreError{Op: domain.OpSave, Entity: entity, ID: id, Err: err}
	}

	m.mu.Lock()
	m.persisted = rec
	m.hasPersisted = true
	m.state = m.stateLocked()
	m.mu.Unlock()
	log.Debug("record saved")
	return nil
}

func (m *Model[R]) observe(ctx context.Context, op domain.Operation, success bool, start time.Time) {
	m.opts.metrics.Observe(ctx, string(m.schema.Entity())+"."+string(op), success, m.opts.now().Sub(start))
}
