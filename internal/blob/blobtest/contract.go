// Package blobtest holds the behavioural contract every blob backend must
// satisfy, shared by the backend test suites.
package blobtest

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackcore/internal/blob/core"
)

// Run exercises store against the core.Store contract. newStore must return
// an empty store each time it is called.
func Run(t *testing.T, newStore func(t *testing.T) core.Store) {
	t.Helper()

	t.Run("put then get", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		info, err := s.Put(ctx, "tag/a.json", bytes.NewReader([]byte(`{"name":"a"}`)), core.PutOptions{
			ContentType: "application/json",
			Metadata:    map[string]string{"entity": "tag"},
		})
		require.NoError(t, err)
		assert.Equal(t, "tag/a.json", info.Key)
		assert.EqualValues(t, 12, info.Size)

		got, rc, err := s.Get(ctx, "tag/a.json")
		require.NoError(t, err)
		defer func() { _ = rc.Close() }()
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"a"}`, string(body))
		assert.Equal(t, "application/json", got.ContentType)
		assert.Equal(t, "tag", got.Metadata["entity"])
	})

	t.Run("put is create only", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		_, err := s.Put(ctx, "k", bytes.NewReader([]byte("1")), core.PutOptions{})
		require.NoError(t, err)
		_, err = s.Put(ctx, "k", bytes.NewReader([]byte("2")), core.PutOptions{})
		assert.ErrorIs(t, err, core.ErrExists)
	})

	t.Run("missing key", func(t *testing.T) {
		_, _, err := newStore(t).Get(context.Background(), "nope/x.json")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("delete reports existence", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		_, err := s.Put(ctx, "d/1", bytes.NewReader([]byte("x")), core.PutOptions{})
		require.NoError(t, err)
		ok, err := s.Delete(ctx, "d/1")
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = s.Delete(ctx, "d/1")
		require.NoError(t, err)
		assert.False(t, ok)
		_, _, err = s.Get(ctx, "d/1")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("list by prefix in key order", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		for _, k := range []string{"tag/c", "client/a", "tag/a", "tag/b"} {
			_, err := s.Put(ctx, k, bytes.NewReader([]byte(k)), core.PutOptions{})
			require.NoError(t, err)
		}
		infos, err := s.List(ctx, "tag/")
		require.NoError(t, err)
		keys := make([]string, 0, len(infos))
		for _, info := range infos {
			keys = append(keys, info.Key)
		}
		assert.Equal(t, []string{"tag/a", "tag/b", "tag/c"}, keys)

		all, err := s.List(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 4)
	})
}
