package entities

import (
	"context"
	"errors"

	"trackcore/pkg/domain"
	"trackcore/pkg/model"
)

// link attaches a relation to owner. The related object is resolved only if
// the owner itself could be loaded, and Set writes the new key into the
// owner's record.
func link[R domain.Record, M model.Entity](
	owner *model.Model[R],
	property domain.Property,
	factory func(context.Context, domain.Identity) (M, error),
	exists func(context.Context, domain.Identity) (bool, error),
	key func(R) domain.Identity,
	setKey func(*R, domain.Identity),
) *model.Relation[M] {
	rel := model.NewRelation(model.RelationConfig[M]{
		Property: property,
		ShouldLoad: func(ctx context.Context, _ domain.Identity) bool {
			return owner.EnsureLoaded(ctx) == nil
		},
		Factory: factory,
		Exists:  exists,
		Changed: func(ctx context.Context, id domain.Identity) error {
			return owner.Mutate(ctx, func(r *R) { setKey(r, id) })
		},
	})
	owner.Track(rel, key)
	return rel
}

// related resolves the relation for the key currently stored in owner.
func related[R domain.Record, M model.Entity](ctx context.Context, owner *model.Model[R], rel *model.Relation[M], key func(R) domain.Identity) (M, error) {
	rec, err := owner.Data(ctx)
	if err != nil {
		var zero M
		return zero, err
	}
	m, _, err := rel.Get(ctx, key(rec))
	return m, err
}

// field reads one value out of the owner's record.
func field[R domain.Record, T any](ctx context.Context, owner *model.Model[R], get func(R) T) (T, error) {
	rec, err := owner.Data(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return get(rec), nil
}

// exists reports whether store holds a record for id.
func exists[R domain.Record](ctx context.Context, store model.Store[R], id domain.Identity) (bool, error) {
	_, err := store.Load(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
