package offline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/connectivity"
)

type Priority int

const (
	PriorityHigh Priority = iota
	PriorityNormal
	PriorityLow
)

type preloadTask struct {
	name string
	run  func(ctx context.Context) error
}

// Preloader opportunistically warms the store with likely-needed data.
// Tasks run one at a time on a background goroutine during idle slices,
// high priority first, and never block foreground work. The preloader
// pauses itself while offline, on a poor connection, or while the page is
// hidden, and resumes on recovery. Task failures are logged and swallowed:
// preloading is best-effort.
type Preloader struct {
	monitor  *connectivity.Monitor
	logger   core.Logger
	interval time.Duration

	mu      sync.Mutex
	queues  [PriorityLow + 1][]preloadTask
	running int // tasks popped but not yet finished
	visible bool

	wake chan struct{}
	done chan struct{}
	once sync.Once
}

func NewPreloader(monitor *connectivity.Monitor, logger core.Logger, interval time.Duration) *Preloader {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	p := &Preloader{
		monitor:  monitor,
		logger:   logger,
		interval: interval,
		visible:  true,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	monitor.OnChange(func(_, _ connectivity.State) { p.nudge() })
	return p
}

// Schedule queues a task. Safe from any goroutine.
func (p *Preloader) Schedule(name string, pri Priority, run func(ctx context.Context) error) {
	if pri < PriorityHigh || pri > PriorityLow {
		pri = PriorityNormal
	}
	p.mu.Lock()
	p.queues[pri] = append(p.queues[pri], preloadTask{name: name, run: run})
	p.mu.Unlock()
	p.nudge()
}

// SetVisible forwards the page-visibility signal; a hidden page pauses
// preloading.
func (p *Preloader) SetVisible(visible bool) {
	p.mu.Lock()
	p.visible = visible
	p.mu.Unlock()
	if visible {
		p.nudge()
	}
}

// Start runs the idle loop until ctx is cancelled or Stop is called.
func (p *Preloader) Start(ctx context.Context) {
	go p.loop(ctx)
}

func (p *Preloader) Stop() {
	p.once.Do(func() { close(p.done) })
}

// Pending returns the number of queued tasks, including the one currently
// executing.
func (p *Preloader) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := p.running
	for _, q := range p.queues {
		n += len(q)
	}
	return n
}

func (p *Preloader) loop(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.done:
			return
		case <-ticker.C:
		case <-p.wake:
		}

		for p.runnable() {
			task, ok := p.next()
			if !ok {
				break
			}
			p.execute(ctx, task)
		}
	}
}

// runnable gates execution on connectivity and visibility.
func (p *Preloader) runnable() bool {
	p.mu.Lock()
	visible := p.visible
	p.mu.Unlock()
	if !visible {
		return false
	}
	q := p.monitor.Quality()
	return q != connectivity.QualityOffline && q != connectivity.QualityPoor
}

func (p *Preloader) next() (preloadTask, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for pri := range p.queues {
		if len(p.queues[pri]) > 0 {
			task := p.queues[pri][0]
			p.queues[pri] = p.queues[pri][1:]
			p.running++
			return task, true
		}
	}
	return preloadTask{}, false
}

// execute isolates one task: an error or panic inside it is logged and the
// queue continues.
func (p *Preloader) execute(ctx context.Context, task preloadTask) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error(fmt.Sprintf("preload: task %q panicked: %v", task.name, r))
		}
		p.mu.Lock()
		p.running--
		p.mu.Unlock()
	}()
	if err := task.run(ctx); err != nil {
		p.logger.Warn(fmt.Sprintf("preload: task %q failed: %v", task.name, err), err)
		return
	}
	p.logger.Debug(fmt.Sprintf("preload: task %q done", task.name))
}

func (p *Preloader) nudge() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}
