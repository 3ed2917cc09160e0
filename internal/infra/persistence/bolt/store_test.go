package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackcore/pkg/domain"
	"trackcore/pkg/model"
)

var _ model.Store[domain.TimeEntryTag] = (*Store[domain.TimeEntryTag])(nil)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "trackcore.bolt"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t)
	store := For[domain.TimeEntryTag](db)
	link := domain.TimeEntryTag{
		Base:        domain.Base{ID: domain.NewIdentity()},
		TimeEntryID: domain.NewIdentity(),
		TagID:       domain.NewIdentity(),
	}
	require.NoError(t, store.Save(ctx, link))

	loaded, err := store.Load(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, link, loaded)

	n, err := db.Count(domain.EntityTimeEntryTag)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestBucketsAreSeparate(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t)
	id := domain.NewIdentity()
	require.NoError(t, For[domain.Tag](db).Save(ctx, domain.Tag{Base: domain.Base{ID: id}, Name: "x"}))

	_, err := For[domain.Workspace](db).Load(ctx, id)
	var nf domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, domain.EntityWorkspace, nf.Entity)
}

func TestCancelledContext(t *testing.T) {
	db := openTemp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := For[domain.Tag](db).Load(ctx, domain.NewIdentity())
	assert.ErrorIs(t, err, context.Canceled)
	err = For[domain.Tag](db).Save(ctx, domain.Tag{Base: domain.Base{ID: domain.NewIdentity()}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSaveRequiresIdentity(t *testing.T) {
	db := openTemp(t)
	assert.Error(t, For[domain.Tag](db).Save(context.Background(), domain.Tag{Name: "x"}))
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "trackcore.bolt")
	db, err := Open(path)
	require.NoError(t, err)
	ws := domain.Workspace{Base: domain.Base{ID: domain.NewIdentity()}, Name: "acme"}
	require.NoError(t, For[domain.Workspace](db).Save(ctx, ws))
	require.NoError(t, db.Close())

	again, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = again.Close() }()
	loaded, err := For[domain.Workspace](again).Load(ctx, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, "acme", loaded.Name)
}
