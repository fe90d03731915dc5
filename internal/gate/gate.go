package gate

import (
	"context"
	"fmt"
	"sync"

	"meal-planner/internal/document"
)

// DocumentStore is the persistence the gate arbitrates over.
type DocumentStore interface {
	Read(ctx context.Context) document.Document
	Write(ctx context.Context, doc document.Document) error
}

// Result is the outcome of a submission. On accept, Doc is the persisted
// document with its new version. On reject, Doc is the current authoritative
// document the caller must rebase onto.
type Result struct {
	Accepted bool
	Doc      document.Document
}

// Gate is the sole authority for accepting writes to the document. A write
// is accepted only when it is based on the currently stored version; the
// accepted document's version is the base version plus one, so versions
// increase strictly by 1 and no two accepted writes share a base.
//
// The mutex serializes the read-then-write, so two requests hitting the same
// server process cannot race each other. A multi-instance deployment would
// need the compare-and-swap pushed into the backend; at household scale one
// process is the deployment.
type Gate struct {
	mu    sync.Mutex
	store DocumentStore
}

// New creates a Gate over the given store.
func New(store DocumentStore) *Gate {
	return &Gate{store: store}
}

// Submit proposes a new document based on expectedVersion.
func (g *Gate) Submit(ctx context.Context, proposed document.Document, expectedVersion int64) (Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	current := g.store.Read(ctx)
	if current.Version != expectedVersion {
		return Result{Accepted: false, Doc: current}, nil
	}

	accepted := proposed.Clone()
	accepted.Version = expectedVersion + 1
	if err := g.store.Write(ctx, accepted); err != nil {
		return Result{}, fmt.Errorf("failed to persist accepted document: %w", err)
	}
	return Result{Accepted: true, Doc: accepted}, nil
}

// Current returns the authoritative document without proposing a write.
func (g *Gate) Current(ctx context.Context) document.Document {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.store.Read(ctx)
}
