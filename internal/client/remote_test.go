package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"meal-planner/internal/document"
	"meal-planner/internal/gate"
	"meal-planner/internal/server"
)

// memStore is an in-memory gate.DocumentStore for end-to-end client tests.
type memStore struct {
	mu     sync.Mutex
	doc    document.Document
	hasDoc bool
}

func (m *memStore) Read(ctx context.Context) document.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasDoc {
		return document.Default()
	}
	return m.doc.Clone()
}

func (m *memStore) Write(ctx context.Context, doc document.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc = doc.Clone()
	m.hasDoc = true
	return nil
}

func newTestRemote(t *testing.T) *Remote {
	t.Helper()
	srv := server.New(gate.New(&memStore{}), nil, "remote-test-secret")
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return NewRemote(ts.URL, "remote-test-secret")
}

func TestRemoteFetchAndPush(t *testing.T) {
	r := newTestRemote(t)
	ctx := context.Background()

	initial, err := r.Fetch(ctx)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if initial.Version != 0 {
		t.Errorf("Expected fresh document at version 0, got %d", initial.Version)
	}

	proposed := document.AddRecipes(document.Recipe{ID: "r1", Title: "Soup"})(initial)
	accepted, err := r.Push(ctx, proposed, initial.Version, 0)
	if err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if accepted.Version != 1 {
		t.Errorf("Expected accepted version 1, got %d", accepted.Version)
	}

	again, err := r.Fetch(ctx)
	if err != nil {
		t.Fatalf("Second fetch failed: %v", err)
	}
	if again.FindRecipe("r1") == nil {
		t.Error("Expected pushed recipe to be readable")
	}
}

func TestRemotePushConflict(t *testing.T) {
	r := newTestRemote(t)
	ctx := context.Background()

	base, err := r.Fetch(ctx)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	first := document.AddRecipes(document.Recipe{ID: "a"})(base)
	if _, err := r.Push(ctx, first, base.Version, 0); err != nil {
		t.Fatalf("First push failed: %v", err)
	}

	// Second push from the same stale base must surface ErrConflict with the
	// authoritative document as the rebase target.
	second := document.AddRecipes(document.Recipe{ID: "b"})(base)
	current, err := r.Push(ctx, second, base.Version, 0)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("Expected ErrConflict, got %v", err)
	}
	if current.Version != 1 {
		t.Errorf("Expected rebase target at version 1, got %d", current.Version)
	}
	if current.FindRecipe("a") == nil {
		t.Error("Expected rebase target to carry the first write")
	}
}

func TestPushSendsAttemptHeader(t *testing.T) {
	var gotAttempt string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAttempt = r.Header.Get("X-Sync-Attempt")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"state": document.Default(), "version": 1})
	}))
	t.Cleanup(ts.Close)

	r := NewRemote(ts.URL, "remote-test-secret")
	if _, err := r.Push(context.Background(), document.Default(), 0, 2); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if gotAttempt != "2" {
		t.Errorf("Expected X-Sync-Attempt header 2, got %q", gotAttempt)
	}
}

func TestQueueOverRemote(t *testing.T) {
	r := newTestRemote(t)
	ctx := context.Background()

	initial, err := r.Fetch(ctx)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	q := newTestQueue(r, initial)

	if err := waitErr(t, q.Enqueue(document.AssignRecipe("2024-02-05", "r1"))); err != nil {
		t.Fatalf("Enqueue over HTTP failed: %v", err)
	}
	day := q.Confirmed().FindDay("2024-02-05")
	if day == nil || day.RecipeID == nil || *day.RecipeID != "r1" {
		t.Error("Expected assignment to round-trip through the HTTP server")
	}
}
