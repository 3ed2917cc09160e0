package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackcore/internal/infra/persistence/sqlstore"
	"trackcore/pkg/domain"
	"trackcore/pkg/model"
)

var _ model.Store[domain.Project] = (*sqlstore.Store[domain.Project])(nil)

func openTemp(t *testing.T) (*sqlstore.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "trackcore.db")
	db, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, path
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	db, _ := openTemp(t)
	store := sqlstore.For[domain.TimeEntry](db)

	stop := time.Date(2024, 3, 1, 17, 0, 0, 0, time.UTC)
	entry := domain.TimeEntry{
		Base:        domain.Base{ID: domain.NewIdentity()},
		WorkspaceID: domain.NewIdentity(),
		Description: "review",
		Start:       stop.Add(-time.Hour),
		Stop:        &stop,
		Billable:    true,
	}
	require.NoError(t, store.Save(ctx, entry))

	loaded, err := store.Load(ctx, entry.ID)
	require.NoError(t, err)
	assert.True(t, entry.Equal(loaded))
}

func TestUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	db, _ := openTemp(t)
	store := sqlstore.For[domain.Tag](db)

	tag := domain.Tag{Base: domain.Base{ID: domain.NewIdentity()}, WorkspaceID: domain.NewIdentity(), Name: "a"}
	require.NoError(t, store.Save(ctx, tag))
	tag.Name = "b"
	require.NoError(t, store.Save(ctx, tag))

	loaded, err := store.Load(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, "b", loaded.Name)

	n, err := db.Count(ctx, domain.EntityTag)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEntitiesShareTableWithoutCollisions(t *testing.T) {
	ctx := context.Background()
	db, _ := openTemp(t)
	id := domain.NewIdentity()
	require.NoError(t, sqlstore.For[domain.Tag](db).Save(ctx, domain.Tag{Base: domain.Base{ID: id}, Name: "tag"}))

	_, err := sqlstore.For[domain.Client](db).Load(ctx, id)
	var nf domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, domain.EntityClient, nf.Entity)
	assert.Equal(t, id, nf.ID)
}

func TestSaveRequiresIdentity(t *testing.T) {
	db, _ := openTemp(t)
	err := sqlstore.For[domain.Workspace](db).Save(context.Background(), domain.Workspace{Name: "w"})
	assert.Error(t, err)
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "trackcore.db")
	db, err := Open(ctx, path)
	require.NoError(t, err)
	ws := domain.Workspace{Base: domain.Base{ID: domain.NewIdentity()}, Name: "acme"}
	require.NoError(t, sqlstore.For[domain.Workspace](db).Save(ctx, ws))
	require.NoError(t, db.Close())

	again, err := Open(ctx, path)
	require.NoError(t, err)
	defer func() { _ = again.Close() }()
	loaded, err := sqlstore.For[domain.Workspace](again).Load(ctx, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, "acme", loaded.Name)
}
