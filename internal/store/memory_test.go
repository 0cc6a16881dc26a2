package store

import (
	"context"
	"testing"

	"github.com/amishk599/jobfit/internal/model"
)

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) model.CacheStore { return NewMemoryStore() })
}

func TestMemoryStore_ReadsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	data, err := s.GetUserData(ctx)
	if err != nil {
		t.Fatalf("GetUserData: %v", err)
	}
	data.GoogleAPIKey = "mutated-without-save"

	again, err := s.GetUserData(ctx)
	if err != nil {
		t.Fatalf("GetUserData: %v", err)
	}
	if again.GoogleAPIKey != "" {
		t.Errorf("unsaved mutation leaked into store: %q", again.GoogleAPIKey)
	}
}
