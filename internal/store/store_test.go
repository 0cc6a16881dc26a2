package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/amishk599/jobfit/internal/model"
)

// runStoreSuite checks the behaviour every CacheStore backend must share.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) model.CacheStore) {
	t.Run("EmptyStoreReturnsDefaults", func(t *testing.T) {
		s := newStore(t)
		data, err := s.GetUserData(context.Background())
		if err != nil {
			t.Fatalf("GetUserData: %v", err)
		}
		if data.ModelName != model.DefaultModelName || data.Theme != model.DefaultTheme {
			t.Errorf("defaults not applied: %+v", data)
		}
		if data.JobPostingCache.Len() != 0 {
			t.Errorf("expected empty job cache, got %d", data.JobPostingCache.Len())
		}
	})

	t.Run("SaveThenGet", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		d := model.DefaultUserData()
		d.GoogleAPIKey = "key-1"
		d.ResumeJSON = json.RawMessage(`{"name":"Ada"}`)
		if err := s.SaveUserData(ctx, d); err != nil {
			t.Fatalf("SaveUserData: %v", err)
		}
		got, err := s.GetUserData(ctx)
		if err != nil {
			t.Fatalf("GetUserData: %v", err)
		}
		if got.GoogleAPIKey != "key-1" || !got.HasResume() {
			t.Errorf("saved data not returned: %+v", got)
		}
	})

	t.Run("UpdateCreatesRecordLazily", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		data, err := s.UpdateJobCache(ctx, "Backend Engineer @ Acme", func(r *model.JobPostingCacheRecord) {
			r.JobPostingText = "We are hiring"
			r.Analysis = "fit"
		})
		if err != nil {
			t.Fatalf("UpdateJobCache: %v", err)
		}
		if rec := data.JobPostingCache.Get("Backend Engineer @ Acme"); rec == nil || rec.Analysis != "fit" {
			t.Fatalf("returned snapshot missing record: %+v", rec)
		}

		stored, err := s.GetUserData(ctx)
		if err != nil {
			t.Fatalf("GetUserData: %v", err)
		}
		rec := stored.JobPostingCache.Get("Backend Engineer @ Acme")
		if rec == nil || rec.JobPostingText != "We are hiring" {
			t.Errorf("stored record = %+v", rec)
		}
	})

	t.Run("UpdateKeepsOtherFields", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		id := "Backend Engineer @ Acme"
		if _, err := s.UpdateJobCache(ctx, id, func(r *model.JobPostingCacheRecord) { r.Analysis = "fit" }); err != nil {
			t.Fatalf("first update: %v", err)
		}
		if _, err := s.UpdateJobCache(ctx, id, func(r *model.JobPostingCacheRecord) {
			r.CoverLetter = &model.CoverLetter{Filename: "cl.txt", Content: "Dear"}
		}); err != nil {
			t.Fatalf("second update: %v", err)
		}
		data, _ := s.GetUserData(ctx)
		rec := data.JobPostingCache.Get(id)
		if rec.Analysis != "fit" || rec.CoverLetter == nil {
			t.Errorf("fields lost across updates: %+v", rec)
		}
	})

	t.Run("ConcurrentUpdatesAreNotLost", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		const n = 8

		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				id := fmt.Sprintf("Role %d @ Co", i)
				_, err := s.UpdateJobCache(ctx, id, func(r *model.JobPostingCacheRecord) {
					r.Analysis = id
				})
				errs <- err
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				t.Fatalf("UpdateJobCache: %v", err)
			}
		}

		data, err := s.GetUserData(ctx)
		if err != nil {
			t.Fatalf("GetUserData: %v", err)
		}
		if data.JobPostingCache.Len() != n {
			t.Errorf("got %d records, want %d", data.JobPostingCache.Len(), n)
		}
	})

	t.Run("ResetClearsOnlyJobCache", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		d := model.DefaultUserData()
		d.GoogleAPIKey = "keep-me"
		if err := s.SaveUserData(ctx, d); err != nil {
			t.Fatalf("SaveUserData: %v", err)
		}
		if _, err := s.UpdateJobCache(ctx, "x @ y", func(r *model.JobPostingCacheRecord) { r.Analysis = "a" }); err != nil {
			t.Fatalf("UpdateJobCache: %v", err)
		}
		if err := s.ResetJobCache(ctx); err != nil {
			t.Fatalf("ResetJobCache: %v", err)
		}
		data, _ := s.GetUserData(ctx)
		if data.JobPostingCache.Len() != 0 {
			t.Errorf("job cache not cleared: %d records", data.JobPostingCache.Len())
		}
		if data.GoogleAPIKey != "keep-me" {
			t.Errorf("reset touched other fields: key=%q", data.GoogleAPIKey)
		}
	})
}
