// Package abort provides the cancellation token that represents one logical
// user operation (analyze, draft cover letter, tailor résumé).
package abort

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrAborted is returned by work that stopped because its token was aborted.
// It is not a failure: callers drop the result and do nothing else.
var ErrAborted = errors.New("operation aborted")

// Token is cooperative: code checks Aborted at every suspension point. The
// token's context is also handed to HTTP requests so an aborted request is
// torn down, but its result is discarded either way.
type Token struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
}

// New returns a live token derived from parent. Cancelling parent aborts it.
func New(parent context.Context) *Token {
	ctx, cancel := context.WithCancel(parent)
	return &Token{id: uuid.NewString(), ctx: ctx, cancel: cancel}
}

// ID identifies the operation in logs.
func (t *Token) ID() string { return t.id }

// Abort marks the token cancelled. Safe to call more than once.
func (t *Token) Abort() { t.cancel() }

// Aborted reports whether Abort was called or the parent context ended.
func (t *Token) Aborted() bool { return t.ctx.Err() != nil }

// Err returns ErrAborted once the token is aborted, nil before.
func (t *Token) Err() error {
	if t.Aborted() {
		return ErrAborted
	}
	return nil
}

// Context is cancelled when the token is aborted.
func (t *Token) Context() context.Context { return t.ctx }
