// Package blobstore keeps each record as a JSON object in a blob store under
// the key `<entity>/<id>.json`.
package blobstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"trackcore/internal/blob"
	"trackcore/pkg/domain"
)

const (
	contentType = "application/json"
	suffix      = ".json"
)

// Store reads and writes records of type R.
type Store[R domain.Record] struct {
	blobs  blob.Store
	entity domain.EntityType
}

// For returns the store of R records in blobs.
func For[R domain.Record](blobs blob.Store) *Store[R] {
	var zero R
	return &Store[R]{blobs: blobs, entity: zero.Entity()}
}

// Key returns the blob key of the record with id.
func Key(entity domain.EntityType, id domain.Identity) string {
	return string(entity) + "/" + id.String() + suffix
}

// Load reads the record stored under id.
func (s *Store[R]) Load(ctx context.Context, id domain.Identity) (R, error) {
	var rec R
	_, body, err := s.blobs.Get(ctx, Key(s.entity, id))
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return rec, domain.NotFoundError{Entity: s.entity, ID: id}
		}
		return rec, err
	}
	defer func() { _ = body.Close() }()
	raw, err := io.ReadAll(body)
	if err != nil {
		return rec, fmt.Errorf("read %s: %w", s.entity, err)
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return rec, fmt.Errorf("decode %s: %w", s.entity, err)
	}
	return rec, nil
}

// Save replaces the stored object. Blob writes are create-only, so the
// previous object is deleted first; a failed Put leaves no object behind.
func (s *Store[R]) Save(ctx context.Context, rec R) error {
	id := rec.RecordID()
	if id.IsZero() {
		return fmt.Errorf("save %s without identity", s.entity)
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.entity, err)
	}
	key := Key(s.entity, id)
	if _, err := s.blobs.Delete(ctx, key); err != nil {
		return err
	}
	_, err = s.blobs.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{
		ContentType: contentType,
		Metadata:    map[string]string{"entity": string(s.entity)},
	})
	return err
}

// IDs lists the identities of the stored records.
func (s *Store[R]) IDs(ctx context.Context) ([]domain.Identity, error) {
	infos, err := s.blobs.List(ctx, string(s.entity)+"/")
	if err != nil {
		return nil, err
	}
	ids := make([]domain.Identity, 0, len(infos))
	for _, info := range infos {
		name := strings.TrimSuffix(strings.TrimPrefix(info.Key, string(s.entity)+"/"), suffix)
		id, err := domain.ParseIdentity(name)
		if err != nil || id.IsZero() {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
