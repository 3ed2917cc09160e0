package fs

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackcore/internal/blob/blobtest"
	"trackcore/internal/blob/core"
)

func TestContract(t *testing.T) {
	blobtest.Run(t, func(t *testing.T) core.Store {
		s, err := New(t.TempDir())
		require.NoError(t, err)
		return s
	})
}

func TestRejectsEscapingKeys(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	for _, key := range []string{"", "  ", "/etc/passwd", "../outside", "a/../../b", "x.meta"} {
		_, err := s.Put(ctx, key, bytes.NewReader(nil), core.PutOptions{})
		assert.Error(t, err, "key %q", key)
	}
}

func TestLayoutOnDisk(t *testing.T) {
	root := t.TempDir()
	s, err := New(root)
	require.NoError(t, err)
	info, err := s.Put(context.Background(), "tag/a.json", bytes.NewReader([]byte("{}")), core.PutOptions{})
	require.NoError(t, err)
	assert.Len(t, info.ETag, 64)

	_, err = os.Stat(filepath.Join(root, "tag", "a.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "tag", "a.json.meta"))
	assert.NoError(t, err)
}

func TestDefaultRoot(t *testing.T) {
	t.Chdir(t.TempDir())
	s, err := New("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRoot, s.root)
	_, err = os.Stat(DefaultRoot)
	assert.NoError(t, err)
}
