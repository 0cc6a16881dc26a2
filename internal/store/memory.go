package store

import (
	"context"
	"sync"

	"github.com/amishk599/jobfit/internal/model"
)

var _ model.CacheStore = (*MemoryStore)(nil)

// MemoryStore keeps the encoded document in memory. Nothing survives the
// process; it backs `storage.backend: memory` and tests. Reads decode a fresh
// copy so callers never share the stored value.
type MemoryStore struct {
	mu  sync.Mutex
	raw []byte
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) GetUserData(_ context.Context) (*model.UserRelevantData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := decodeDocument(s.raw, s.raw != nil)
	if err != nil {
		return nil, model.StorageError("reading user data", err)
	}
	return data, nil
}

func (s *MemoryStore) SaveUserData(_ context.Context, data *model.UserRelevantData) error {
	enc, err := model.EncodeUserData(data)
	if err != nil {
		return model.StorageError("saving user data", err)
	}
	s.mu.Lock()
	s.raw = enc
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) UpdateJobCache(_ context.Context, jobID string, mutate func(*model.JobPostingCacheRecord)) (*model.UserRelevantData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, enc, err := applyJobUpdate(s.raw, s.raw != nil, jobID, mutate)
	if err != nil {
		return nil, model.StorageError("updating job "+jobID, err)
	}
	s.raw = enc
	return data, nil
}

func (s *MemoryStore) ResetJobCache(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	enc, err := applyReset(s.raw, s.raw != nil)
	if err != nil {
		return model.StorageError("resetting job cache", err)
	}
	s.raw = enc
	return nil
}

func (s *MemoryStore) Close() error { return nil }
