package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackcore/internal/blob/blobtest"
	"trackcore/internal/blob/core"
)

func TestContract(t *testing.T) {
	blobtest.Run(t, func(t *testing.T) core.Store {
		s, _, err := NewFake(context.Background())
		require.NoError(t, err)
		return s
	})
}

func TestBucketRequired(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.ErrorContains(t, err, "bucket required")
}

func TestListPaginates(t *testing.T) {
	ctx := context.Background()
	s, rt, err := NewFake(ctx)
	require.NoError(t, err)
	for i := range 5 {
		_, err := s.Put(ctx, fmt.Sprintf("p/%d", i), bytes.NewReader([]byte("x")), core.PutOptions{})
		require.NoError(t, err)
	}
	before := rt.Requests[http.MethodGet]
	infos, err := s.List(ctx, "p/")
	require.NoError(t, err)
	assert.Len(t, infos, 5)
	assert.Equal(t, 3, rt.Requests[http.MethodGet]-before)
	assert.Equal(t, 5, rt.Len())
}

func TestDecodeChunked(t *testing.T) {
	payload := []byte("3\r\nabc\r\n2;chunk-signature=x\r\nde\r\n0\r\nx-amz-checksum-crc32:AAAA\r\n\r\n")
	assert.Equal(t, "abcde", string(decodeChunked(payload)))
	assert.Empty(t, decodeChunked([]byte("zz\r\nabc")))
}

func TestUnsupportedMethod(t *testing.T) {
	req, err := http.NewRequest(http.MethodPatch, "https://fake.s3.local/bucket/key", nil)
	require.NoError(t, err)
	resp, err := NewFakeTransport().RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestLiveBucket(t *testing.T) {
	bucket := os.Getenv("TRACKCORE_TEST_S3_BUCKET")
	if bucket == "" {
		t.Skip("TRACKCORE_TEST_S3_BUCKET not set")
	}
	ctx := context.Background()
	s, err := New(ctx, Config{
		Bucket:    bucket,
		Region:    os.Getenv("TRACKCORE_TEST_S3_REGION"),
		Endpoint:  os.Getenv("TRACKCORE_TEST_S3_ENDPOINT"),
		PathStyle: os.Getenv("TRACKCORE_TEST_S3_ENDPOINT") != "",
	})
	require.NoError(t, err)
	key := "trackcore-test/" + t.Name()
	_, _ = s.Delete(ctx, key)
	_, err = s.Put(ctx, key, bytes.NewReader([]byte("live")), core.PutOptions{ContentType: "text/plain"})
	require.NoError(t, err)
	ok, err := s.Delete(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
}
