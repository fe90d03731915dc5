package client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"meal-planner/internal/document"
)

// ErrRetriesExhausted reports that an operation could not be saved within
// the retry budget. Local state has been rolled forward to the last
// confirmed document; the user should refresh and retry.
var ErrRetriesExhausted = errors.New("save failed after retries")

const (
	defaultMaxRetries = 3
	defaultRetryDelay = 150 * time.Millisecond
)

type pendingOp struct {
	op   document.Op
	done chan error
}

// Queue serializes all document mutations from this client. Operations are
// applied optimistically to local state, submitted to the server, and
// rebased onto the authoritative document on version conflict. Operations
// enqueued while a submission is in flight are applied afterwards in FIFO
// order, never dropped.
//
// Queue owns the local copy of the document: UI code may read it via
// Current but must route every mutation through Enqueue.
type Queue struct {
	submitter  Submitter
	maxRetries int
	retryDelay time.Duration
	sleep      func(time.Duration)

	mu         sync.Mutex
	confirmed  document.Document
	optimistic *document.Document
	inFlight   bool
	pending    []pendingOp
}

// NewQueue creates a Queue seeded with the given confirmed document
// (typically a fresh Fetch from the server).
func NewQueue(sub Submitter, initial document.Document) *Queue {
	return &Queue{
		submitter:  sub,
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
		sleep:      time.Sleep,
		confirmed:  initial.Normalize(),
	}
}

// Enqueue registers an operation and returns a channel that receives the
// terminal result: nil once the operation has been accepted by the server,
// or the error after the retry budget is exhausted. The channel is buffered;
// callers who only care about fire-and-forget may drop it.
func (q *Queue) Enqueue(op document.Op) <-chan error {
	done := make(chan error, 1)

	q.mu.Lock()
	q.pending = append(q.pending, pendingOp{op: op, done: done})
	if q.inFlight {
		q.mu.Unlock()
		return done
	}
	q.inFlight = true
	q.mu.Unlock()

	go q.drain()
	return done
}

// Current returns the client's best view of the document: the optimistic
// candidate while a submission is unconfirmed, otherwise the last confirmed
// document.
func (q *Queue) Current() document.Document {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.optimistic != nil {
		return q.optimistic.Clone()
	}
	return q.confirmed.Clone()
}

// Confirmed returns the last server-confirmed document.
func (q *Queue) Confirmed() document.Document {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.confirmed.Clone()
}

// Refresh replaces the confirmed document with a fresh read from the
// server. In-flight operations are unaffected; they rebase on conflict
// anyway.
func (q *Queue) Refresh(ctx context.Context) error {
	doc, err := q.submitter.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh document: %w", err)
	}
	q.mu.Lock()
	q.confirmed = doc
	q.mu.Unlock()
	return nil
}

// drain processes pending operations one at a time until the queue is
// empty. The in-flight flag is released under the same lock that observes
// the empty queue, so an Enqueue can never slip in unprocessed; the defer
// covers the panic path so a failed operation can never wedge the queue.
func (q *Queue) drain() {
	defer func() {
		// Normal exits clear the flag under the lock below; this only fires
		// on a panic that escaped submitOne, so a later Enqueue is never
		// permanently blocked.
		if r := recover(); r != nil {
			q.mu.Lock()
			q.inFlight = false
			q.mu.Unlock()
			log.Printf("Warning: queue drain panicked: %v", r)
		}
	}()

	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.inFlight = false
			q.mu.Unlock()
			return
		}
		next := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()

		next.done <- q.submitOne(next.op)
	}
}

// submitOne runs the optimistic-apply / submit / rebase loop for a single
// operation.
func (q *Queue) submitOne(op document.Op) (err error) {
	defer func() {
		if r := recover(); r != nil {
			q.discardOptimistic()
			err = fmt.Errorf("operation panicked: %v", r)
		}
	}()

	ctx := context.Background()
	base := q.Confirmed()

	var lastErr error
	for attempt := 0; attempt < q.maxRetries; attempt++ {
		if attempt > 0 {
			q.sleep(q.retryDelay)
		}

		candidate := op(base)
		q.setOptimistic(candidate)

		result, pushErr := q.submitter.Push(ctx, candidate, base.Version, attempt)
		if pushErr == nil {
			q.adoptConfirmed(result)
			return nil
		}

		if errors.Is(pushErr, ErrConflict) {
			// Routine rebase: the rejection body is the authoritative
			// document, so adopt it and re-apply the operation on top.
			q.adoptConfirmedKeepingOptimistic(result)
			base = result
			lastErr = pushErr
			continue
		}

		// Transport failure: retry against the same base.
		lastErr = pushErr
	}

	// Roll forward to the last confirmed truth, not back to a stale
	// pre-operation state.
	q.discardOptimistic()
	return fmt.Errorf("%w (%d attempts, last error: %v)", ErrRetriesExhausted, q.maxRetries, lastErr)
}

func (q *Queue) setOptimistic(doc document.Document) {
	q.mu.Lock()
	q.optimistic = &doc
	q.mu.Unlock()
}

func (q *Queue) adoptConfirmed(doc document.Document) {
	q.mu.Lock()
	q.confirmed = doc
	q.optimistic = nil
	q.mu.Unlock()
}

// adoptConfirmedKeepingOptimistic updates the confirmed document after a
// conflict without dropping the optimistic candidate; a retry is about to
// replace it and readers should not flicker back to the pre-operation view.
func (q *Queue) adoptConfirmedKeepingOptimistic(doc document.Document) {
	q.mu.Lock()
	q.confirmed = doc
	q.mu.Unlock()
}

func (q *Queue) discardOptimistic() {
	q.mu.Lock()
	q.optimistic = nil
	q.mu.Unlock()
}
