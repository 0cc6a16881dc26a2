package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestJobCache_EnsureKeepsInsertionOrder(t *testing.T) {
	c := NewJobCache()
	c.Ensure("Zeta @ Z")
	c.Ensure("Alpha @ A")
	c.Ensure("Zeta @ Z") // existing, must not move

	ids := c.IDs()
	if len(ids) != 2 || ids[0] != "Zeta @ Z" || ids[1] != "Alpha @ A" {
		t.Fatalf("IDs() = %v, want [Zeta @ Z, Alpha @ A]", ids)
	}
}

func TestJobCache_EnsureReturnsSameRecord(t *testing.T) {
	c := NewJobCache()
	r := c.Ensure("Backend Engineer @ Acme")
	r.Analysis = "good fit"

	if got := c.Get("Backend Engineer @ Acme"); got == nil || got.Analysis != "good fit" {
		t.Fatalf("Get returned %+v, want the mutated record", got)
	}
}

func TestJobCache_JSONRoundTripPreservesOrder(t *testing.T) {
	c := NewJobCache()
	for _, id := range []string{"c @ 3", "a @ 1", "b @ 2"} {
		c.Ensure(id).JobPostingText = "text for " + id
	}

	raw, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.HasPrefix(string(raw), `{"c @ 3":`) {
		t.Errorf("marshalled order wrong: %s", raw)
	}

	var back JobCache
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	ids := back.IDs()
	want := []string{"c @ 3", "a @ 1", "b @ 2"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("IDs() = %v, want %v", ids, want)
		}
	}
	if back.Get("a @ 1").JobPostingText != "text for a @ 1" {
		t.Errorf("record content lost: %+v", back.Get("a @ 1"))
	}
}

func TestJobCache_UnmarshalRejectsNonObject(t *testing.T) {
	var c JobCache
	if err := json.Unmarshal([]byte(`["x"]`), &c); err == nil {
		t.Fatal("expected error for array input")
	}
}

func TestJobCache_Clear(t *testing.T) {
	c := NewJobCache()
	c.Ensure("x @ y")
	c.Clear()
	if c.Len() != 0 || c.Get("x @ y") != nil {
		t.Fatalf("cache not empty after Clear: len=%d", c.Len())
	}
}

func TestSetFeedback(t *testing.T) {
	var r JobPostingCacheRecord
	r.SetFeedback(ViewCoverLetter, "shorter please")
	if r.RetryFeedback[ViewCoverLetter] != "shorter please" {
		t.Fatalf("feedback not stored: %v", r.RetryFeedback)
	}
	r.SetFeedback(ViewCoverLetter, "")
	if _, ok := r.RetryFeedback[ViewCoverLetter]; ok {
		t.Fatal("empty feedback should clear the entry")
	}
}

func TestDecodeUserData_FillsDefaults(t *testing.T) {
	d, err := DecodeUserData([]byte(`{"googleApiKey":"k"}`))
	if err != nil {
		t.Fatalf("DecodeUserData: %v", err)
	}
	if d.ModelName != DefaultModelName || d.FallbackModelName != DefaultFallbackModelName {
		t.Errorf("models = %q/%q, want defaults", d.ModelName, d.FallbackModelName)
	}
	if d.Theme != DefaultTheme {
		t.Errorf("Theme = %q, want %q", d.Theme, DefaultTheme)
	}
	if d.JobPostingCache == nil || d.JobPostingCache.Len() != 0 {
		t.Error("expected empty, non-nil job cache")
	}
}

func TestEncodeDecodeUserData(t *testing.T) {
	d := DefaultUserData()
	d.ResumeJSON = json.RawMessage(`{"name":"Ada"}`)
	d.JobPostingCache.Ensure("Senior Go Developer @ Initech").Analysis = "fit"

	raw, err := EncodeUserData(d)
	if err != nil {
		t.Fatalf("EncodeUserData: %v", err)
	}
	back, err := DecodeUserData(raw)
	if err != nil {
		t.Fatalf("DecodeUserData: %v", err)
	}
	if !back.HasResume() {
		t.Error("expected résumé to survive round trip")
	}
	if rec := back.JobPostingCache.Get("Senior Go Developer @ Initech"); rec == nil || rec.Analysis != "fit" {
		t.Errorf("record lost: %+v", rec)
	}
}

func TestIsKind(t *testing.T) {
	err := StorageError("write failed", errors.New("disk full"))
	wrapped := errors.Join(errors.New("context"), err)

	if !IsKind(wrapped, KindStorage) {
		t.Error("expected wrapped storage error to match KindStorage")
	}
	if IsKind(wrapped, KindNetwork) {
		t.Error("storage error must not match KindNetwork")
	}
	if len(err.Stack) == 0 {
		t.Error("expected captured stack")
	}
}

func TestUserMessage_RateLimit(t *testing.T) {
	err := RateLimitError(&HTTPError{StatusCode: 429})
	if got := UserMessage(err); got != RateLimitMessage {
		t.Errorf("UserMessage = %q, want rate limit message", got)
	}
}
