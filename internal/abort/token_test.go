package abort

import (
	"context"
	"errors"
	"testing"
)

func TestToken_AbortMarksAborted(t *testing.T) {
	tok := New(context.Background())
	if tok.Aborted() || tok.Err() != nil {
		t.Fatal("new token must be live")
	}

	tok.Abort()
	tok.Abort() // idempotent

	if !tok.Aborted() {
		t.Fatal("expected Aborted() after Abort()")
	}
	if !errors.Is(tok.Err(), ErrAborted) {
		t.Fatalf("Err() = %v, want ErrAborted", tok.Err())
	}
	select {
	case <-tok.Context().Done():
	default:
		t.Fatal("expected token context to be done")
	}
}

func TestToken_ParentCancellationAborts(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	tok := New(parent)
	cancel()

	if !tok.Aborted() {
		t.Fatal("cancelling the parent should abort the token")
	}
}

func TestToken_IDsAreUnique(t *testing.T) {
	a, b := New(context.Background()), New(context.Background())
	if a.ID() == "" || a.ID() == b.ID() {
		t.Fatalf("ids not unique: %q %q", a.ID(), b.ID())
	}
}
