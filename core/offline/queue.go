package offline

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

// TokenSource supplies the current bearer token, captured onto each action
// at enqueue time. May return "" when the user is anonymous.
type TokenSource func() string

// Queue is the durable FIFO of pending mutations. The persisted store is
// authoritative; the in-memory mirror exists for cheap pending-count
// inspection and is reconciled from the store on Load.
type Queue struct {
	store    Store
	validate *validator.Validate
	token    TokenSource
	logger   core.Logger

	mu     sync.Mutex
	mirror []QueuedAction
}

func NewQueue(store Store, validate *validator.Validate, token TokenSource, logger core.Logger) *Queue {
	if token == nil {
		token = func() string { return "" }
	}
	return &Queue{store: store, validate: validate, token: token, logger: logger}
}

// Load reconciles the in-memory mirror with the persisted queue. Called at
// context start, before the first Pending/List.
func (q *Queue) Load(ctx context.Context) error {
	actions, err := q.readAll(ctx)
	if err != nil {
		return err
	}
	q.mu.Lock()
	q.mirror = actions
	q.mu.Unlock()
	return nil
}

// Enqueue validates, stamps and durably persists the action. The action is
// on disk before Enqueue returns; only then is the mirror updated and the
// caller told success.
func (q *Queue) Enqueue(ctx context.Context, na NewAction) (QueuedAction, error) {
	if err := q.validate.Struct(na); err != nil {
		return QueuedAction{}, err
	}
	coll, err := na.Kind.Collection()
	if err != nil {
		return QueuedAction{}, err
	}

	now := nowFunc().UTC()
	action := QueuedAction{
		ID:         newIDFunc(now),
		Kind:       na.Kind,
		Endpoint:   na.Endpoint,
		Method:     na.Method,
		Payload:    na.Payload,
		EnqueuedAt: now,
		AuthToken:  q.token(),
	}

	rec, err := action.record()
	if err != nil {
		return QueuedAction{}, err
	}
	if err := q.store.Put(ctx, coll, rec); err != nil {
		return QueuedAction{}, err
	}

	q.mu.Lock()
	q.mirror = append(q.mirror, action)
	q.mu.Unlock()
	return action, nil
}

// List returns the persisted pending actions, oldest first, and refreshes
// the mirror.
func (q *Queue) List(ctx context.Context) ([]QueuedAction, error) {
	actions, err := q.readAll(ctx)
	if err != nil {
		return nil, err
	}
	q.mu.Lock()
	q.mirror = actions
	q.mu.Unlock()
	return actions, nil
}

// Pending returns the mirror's size. Fast but not authoritative.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.mirror)
}

// Remove deletes the action from its pending collection. Removing an id
// that is already gone is a no-op.
func (q *Queue) Remove(ctx context.Context, id string) error {
	for _, coll := range PendingCollections() {
		if err := q.store.Delete(ctx, coll, id); err != nil {
			return err
		}
	}

	q.mu.Lock()
	for i, a := range q.mirror {
		if a.ID == id {
			q.mirror = append(q.mirror[:i], q.mirror[i+1:]...)
			break
		}
	}
	q.mu.Unlock()
	return nil
}

func (q *Queue) readAll(ctx context.Context) ([]QueuedAction, error) {
	var actions []QueuedAction
	for _, coll := range PendingCollections() {
		recs, err := q.store.GetAll(ctx, coll)
		if err != nil {
			return nil, err
		}
		for _, rec := range recs {
			a, err := DecodeAction(rec)
			if err != nil {
				// an undecodable record must not block the healthy
				// actions; it stays put and is surfaced in the logs
				q.logger.Warn(fmt.Sprintf("queue: skipping undecodable record %q in %s: %v", rec.ID, coll, err), err)
				continue
			}
			actions = append(actions, a)
		}
	}
	// FIFO across collections; ids tie-break equal timestamps since they
	// are time-prefixed.
	sort.Slice(actions, func(i, j int) bool {
		if actions[i].EnqueuedAt.Equal(actions[j].EnqueuedAt) {
			return actions[i].ID < actions[j].ID
		}
		return actions[i].EnqueuedAt.Before(actions[j].EnqueuedAt)
	})
	return actions, nil
}
