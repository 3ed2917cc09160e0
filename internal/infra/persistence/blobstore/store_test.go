package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackcore/internal/blob"
	"trackcore/pkg/domain"
	"trackcore/pkg/model"
)

var _ model.Store[domain.Client] = (*Store[domain.Client])(nil)

func backends(t *testing.T) map[string]blob.Store {
	fsStore, err := blob.Open(context.Background(), blob.Config{Driver: blob.DriverFilesystem, FSRoot: t.TempDir()})
	require.NoError(t, err)
	return map[string]blob.Store{"memory": blob.NewMemory(), "fs": fsStore}
}

func TestRoundTripAndReplace(t *testing.T) {
	for name, blobs := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := For[domain.Client](blobs)
			c := domain.Client{Base: domain.Base{ID: domain.NewIdentity()}, WorkspaceID: domain.NewIdentity(), Name: "acme"}
			require.NoError(t, store.Save(ctx, c))
			c.Name = "acme ltd"
			require.NoError(t, store.Save(ctx, c))

			loaded, err := store.Load(ctx, c.ID)
			require.NoError(t, err)
			assert.Equal(t, "acme ltd", loaded.Name)

			info, rc, err := blobs.Get(ctx, Key(domain.EntityClient, c.ID))
			require.NoError(t, err)
			_ = rc.Close()
			assert.Equal(t, "application/json", info.ContentType)

			ids, err := store.IDs(ctx)
			require.NoError(t, err)
			assert.Equal(t, []domain.Identity{c.ID}, ids)
		})
	}
}

func TestMissingIsNotFound(t *testing.T) {
	_, err := For[domain.Tag](blob.NewMemory()).Load(context.Background(), domain.NewIdentity())
	var nf domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, domain.EntityTag, nf.Entity)
}

func TestKeyLayout(t *testing.T) {
	id := domain.MustParseIdentity("0b8e3a57-1c0e-4d0e-8d5e-8e1f9b2b7a10")
	assert.Equal(t, "time_entry/0b8e3a57-1c0e-4d0e-8d5e-8e1f9b2b7a10.json", Key(domain.EntityTimeEntry, id))
}

func TestIDsSkipsForeignKeys(t *testing.T) {
	ctx := context.Background()
	blobs := blob.NewMemory()
	_, err := blobs.Put(ctx, "tag/readme.txt", bytes.NewReader(nil), blob.PutOptions{})
	require.NoError(t, err)
	tag := domain.Tag{Base: domain.Base{ID: domain.NewIdentity()}, Name: "t"}
	require.NoError(t, For[domain.Tag](blobs).Save(ctx, tag))

	ids, err := For[domain.Tag](blobs).IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Identity{tag.ID}, ids)
}

type failingBlobs struct {
	blob.Store
}

func (failingBlobs) Get(context.Context, string) (blob.Info, io.ReadCloser, error) {
	return blob.Info{}, nil, errors.New("bucket offline")
}

func (failingBlobs) Delete(context.Context, string) (bool, error) {
	return false, errors.New("bucket offline")
}

func TestBackendErrorsPassThrough(t *testing.T) {
	ctx := context.Background()
	store := For[domain.Tag](failingBlobs{Store: blob.NewMemory()})
	_, err := store.Load(ctx, domain.NewIdentity())
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)

	err = store.Save(ctx, domain.Tag{Base: domain.Base{ID: domain.NewIdentity()}})
	assert.ErrorContains(t, err, "bucket offline")
}
