package model

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"trackcore/pkg/domain"
)

// RelationConfig wires a Relation to its owner and to the code that builds
// related models.
type RelationConfig[M Entity] struct {
	// Property is the owner property that changes when the relation does.
	Property domain.Property
	// ShouldLoad decides whether an uncached key may be resolved at all. It
	// is asked on every access that misses the cache. Nil allows all loads.
	ShouldLoad func(ctx context.Context, key domain.Identity) bool
	// Factory builds the related model for key.
	Factory func(ctx context.Context, key domain.Identity) (M, error)
	// Changed writes the new key into the owner after Set.
	Changed func(ctx context.Context, key domain.Identity) error
	// Exists reports whether a record exists for key. Nil skips reference
	// validation for the relation.
	Exists func(ctx context.Context, key domain.Identity) (bool, error)
}

// Relation resolves a foreign key on an owning model into the related model,
// memoising the result per key. Concurrent resolutions of the same key share
// one Factory call, and a Set supersedes any resolution still in flight.
type Relation[M Entity] struct {
	cfg   RelationConfig[M]
	group singleflight.Group

	mu         sync.Mutex
	key        domain.Identity
	cached     M
	resolved   bool
	checkpoint M
	generation uint64
}

// NewRelation returns an empty relation.
func NewRelation[M Entity](cfg RelationConfig[M]) *Relation[M] {
	return &Relation[M]{cfg: cfg}
}

// Property returns the owner property this relation maps to.
func (r *Relation[M]) Property() domain.Property { return r.cfg.Property }

// Key returns the key of the cached related model, if any.
func (r *Relation[M]) Key() domain.Identity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.key
}

// Get returns the related model for key. An empty key, or a ShouldLoad
// refusal, yields (zero, false, nil). Factory errors are returned and
// nothing is cached.
func (r *Relation[M]) Get(ctx context.Context, key domain.Identity) (M, bool, error) {
	var zero M
	if key.IsZero() {
		return zero, false, nil
	}
	if m, ok := r.lookup(key); ok {
		return m, m != zero, nil
	}
	if r.cfg.ShouldLoad != nil && !r.cfg.ShouldLoad(ctx, key) {
		return zero, false, nil
	}

	r.mu.Lock()
	gen := r.generation
	r.mu.Unlock()

	// Callers arriving after a Set or Release start their own flight.
	v, err, _ := r.group.Do(fmt.Sprintf("%s/%d", key, gen), func() (any, error) {
		if m, ok := r.lookup(key); ok {
			return m, nil
		}
		m, err := r.cfg.Factory(ctx, key)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		// A Set or Release since the load started wins over its result.
		if r.generation == gen {
			r.key = key
			r.cached = m
			r.resolved = true
			r.checkpoint = m
		}
		r.mu.Unlock()
		return m, nil
	})
	if err != nil {
		return zero, false, err
	}
	if m, ok := r.lookup(key); ok {
		return m, m != zero, nil
	}
	m, _ := v.(M)
	return m, m != zero, nil
}

func (r *Relation[M]) lookup(key domain.Identity) (M, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resolved && r.key == key {
		return r.cached, true
	}
	var zero M
	return zero, false
}

// Set caches m as the related model and writes its identity into the owner
// through Changed. The zero M clears the relation. A model without an
// identity is rejected with domain.ErrUnsaved and nothing changes.
func (r *Relation[M]) Set(ctx context.Context, m M) error {
	var zero M
	var key domain.Identity
	if m != zero {
		key = m.ID()
		if key.IsZero() {
			return fmt.Errorf("set %s: %w", r.cfg.Property, domain.ErrUnsaved)
		}
	}
	r.mu.Lock()
	r.generation++
	prevKey, prevCached, prevResolved := r.key, r.cached, r.resolved
	r.key = key
	r.cached = m
	r.resolved = true
	r.mu.Unlock()

	if r.cfg.Changed == nil {
		return nil
	}
	if err := r.cfg.Changed(ctx, key); err != nil {
		// The owner kept its old key, so the cache must follow it.
		r.mu.Lock()
		r.key, r.cached, r.resolved = prevKey, prevCached, prevResolved
		r.mu.Unlock()
		return err
	}
	return nil
}

// HasChanged reports whether the cached model differs from the one recorded
// at the last Checkpoint.
func (r *Relation[M]) HasChanged() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cached != r.checkpoint
}

// Checkpoint records the cached model as unchanged.
func (r *Relation[M]) Checkpoint() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkpoint = r.cached
}

// Release drops the cached model. Resolutions still in flight are discarded.
func (r *Relation[M]) Release() {
	var zero M
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	r.key = domain.Identity{}
	r.cached = zero
	r.checkpoint = zero
	r.resolved = false
}

// Exists reports whether a related record exists for key.
func (r *Relation[M]) Exists(ctx context.Context, key domain.Identity) (bool, error) {
	if r.cfg.Exists == nil {
		return true, nil
	}
	return r.cfg.Exists(ctx, key)
}
