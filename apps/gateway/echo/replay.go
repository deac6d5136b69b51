package echogw

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/connectivity"
	"github.com/trezcool/darasa/core/offline"
)

// replayer drains the pending mutation collections once connectivity
// returns, dispatching each action and deleting it only on success.
type replayer struct {
	store    offline.Store
	dispatch offline.Dispatcher
	monitor  *connectivity.Monitor
	logger   core.Logger

	running int32
}

func newReplayer(store offline.Store, dispatch offline.Dispatcher, monitor *connectivity.Monitor, logger core.Logger) *replayer {
	return &replayer{store: store, dispatch: dispatch, monitor: monitor, logger: logger}
}

// bind subscribes to connectivity transitions so an offline-to-online
// edge kicks off a drain without waiting for an explicit sync request.
func (r *replayer) bind() {
	r.monitor.OnChange(func(prev, curr connectivity.State) {
		if !prev.IsOnline && curr.IsOnline {
			go r.Replay(context.Background())
		}
	})
}

// Replay walks the pending collections oldest-first. Per-action failures
// are logged and leave the action queued for a later pass; at most one
// drain runs at a time.
func (r *replayer) Replay(ctx context.Context) (replayed int, err error) {
	if !atomic.CompareAndSwapInt32(&r.running, 0, 1) {
		return 0, nil
	}
	defer atomic.StoreInt32(&r.running, 0)

	for _, coll := range offline.PendingCollections() {
		recs, gerr := r.store.GetAll(ctx, coll)
		if gerr != nil {
			return replayed, gerr
		}
		for _, rec := range recs {
			action, derr := offline.DecodeAction(rec)
			if derr != nil {
				r.logger.Warn(fmt.Sprintf("replay: dropping undecodable record %q in %s: %v", rec.ID, coll, derr), derr)
				_ = r.store.Delete(ctx, coll, rec.ID)
				continue
			}
			if derr = r.dispatch.Dispatch(ctx, action); derr != nil {
				r.logger.Warn(fmt.Sprintf("replay: action %s failed, left queued: %v", action.ID, derr), derr)
				continue
			}
			if derr = r.store.Delete(ctx, coll, rec.ID); derr != nil {
				return replayed, derr
			}
			replayed++
		}
	}
	return replayed, nil
}

// PendingCount reports how many actions still await replay.
func (r *replayer) PendingCount(ctx context.Context) (int, error) {
	var n int
	for _, coll := range offline.PendingCollections() {
		recs, err := r.store.GetAll(ctx, coll)
		if err != nil {
			return 0, err
		}
		n += len(recs)
	}
	return n, nil
}
