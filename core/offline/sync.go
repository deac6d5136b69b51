package offline

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/connectivity"
)

// Dispatcher re-issues a queued action against the network. Implemented by
// the upstream API client; in tests by a fake.
type Dispatcher interface {
	Dispatch(ctx context.Context, action QueuedAction) error
}

type SyncState int32

const (
	SyncIdle SyncState = iota
	SyncSyncing
	SyncError
)

func (s SyncState) String() string {
	switch s {
	case SyncSyncing:
		return "syncing"
	case SyncError:
		return "error"
	default:
		return "idle"
	}
}

// Engine drains the queue against the network, strictly oldest first.
// At most one pass runs at a time; triggers arriving mid-pass are coalesced
// into one follow-up pass.
type Engine struct {
	queue    *Queue
	dispatch Dispatcher
	monitor  *connectivity.Monitor
	logger   core.Logger

	state int32 // SyncState
	rerun int32 // coalesced trigger flag
}

func NewEngine(queue *Queue, dispatch Dispatcher, monitor *connectivity.Monitor, logger core.Logger) *Engine {
	return &Engine{
		queue:    queue,
		dispatch: dispatch,
		monitor:  monitor,
		logger:   logger,
	}
}

func (e *Engine) State() SyncState {
	return SyncState(atomic.LoadInt32(&e.state))
}

// Start subscribes to connectivity transitions and runs the startup pass
// when the queue is non-empty and we are online.
func (e *Engine) Start(ctx context.Context) {
	e.monitor.OnChange(func(prev, curr connectivity.State) {
		if !prev.IsOnline && curr.IsOnline && e.queue.Pending() > 0 {
			go func() { _ = e.Sync(ctx) }()
		}
	})

	if e.monitor.Current().IsOnline && e.queue.Pending() > 0 {
		go func() { _ = e.Sync(ctx) }()
	}
}

// Sync runs one drain pass. A call arriving while a pass is running marks
// it for one re-run and returns immediately.
func (e *Engine) Sync(ctx context.Context) error {
	if !e.begin() {
		atomic.StoreInt32(&e.rerun, 1)
		return nil
	}

	for {
		if err := e.drain(ctx); err != nil {
			atomic.StoreInt32(&e.state, int32(SyncError))
			return err
		}
		if !atomic.CompareAndSwapInt32(&e.rerun, 1, 0) {
			break
		}
	}

	atomic.StoreInt32(&e.state, int32(SyncIdle))
	return nil
}

// begin claims the pass. Both Idle and Error admit a new pass: a failed
// drain leaves its entries queued, and the next trigger must retry them.
func (e *Engine) begin() bool {
	if atomic.CompareAndSwapInt32(&e.state, int32(SyncIdle), int32(SyncSyncing)) {
		return true
	}
	return atomic.CompareAndSwapInt32(&e.state, int32(SyncError), int32(SyncSyncing))
}

func (e *Engine) drain(ctx context.Context) error {
	actions, err := e.queue.List(ctx)
	if err != nil {
		return err
	}

	for _, action := range actions {
		if err := e.replay(ctx, action); err != nil {
			// A stuck action must not block the rest of the queue; it
			// stays put and is retried on the next trigger.
			e.logger.Warn(fmt.Sprintf("sync: action %s (%s) failed: %v", action.ID, action.Kind, err), err, action)
			continue
		}
		if err := e.queue.Remove(ctx, action.ID); err != nil {
			return err
		}
		e.logger.Info(fmt.Sprintf("sync: action %s (%s) replayed", action.ID, action.Kind))
	}
	return nil
}

func (e *Engine) replay(ctx context.Context, action QueuedAction) error {
	if tokenExpired(action.AuthToken) {
		return &core.AuthExpiredError{ActionID: action.ID}
	}

	if err := e.dispatch.Dispatch(ctx, action); err != nil {
		if nerr, ok := errors.Cause(err).(*core.NetworkError); ok && nerr.StatusCode == 401 {
			return &core.AuthExpiredError{ActionID: action.ID}
		}
		return err
	}
	return nil
}

// DispatchFunc adapts a function to the Dispatcher interface.
type DispatchFunc func(ctx context.Context, action QueuedAction) error

func (f DispatchFunc) Dispatch(ctx context.Context, action QueuedAction) error {
	return f(ctx, action)
}

// tokenExpired checks the exp claim of the captured token without
// verifying the signature: verification belongs to the server, replay only
// needs to classify a token that cannot possibly be accepted anymore.
// Opaque (non-JWT) or claim-less tokens pass through to the server.
func tokenExpired(token string) bool {
	if token == "" {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Time.Before(nowFunc())
}
