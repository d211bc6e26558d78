// Package mainloop provides a serial task executor that stands in for a
// host UI thread.
package mainloop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/petermattis/goid"
)

var ErrStopped = errors.New("mainloop: loop is stopped")

type Option func(*Loop)

func WithLogger(logger glog.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// Loop runs posted tasks one at a time, in post order, on a single
// goroutine.
type Loop struct {
	logger glog.Logger

	mu      sync.Mutex
	queue   []func()
	timers  map[*time.Timer]struct{}
	stopped bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
	// owner is the id of the goroutine that runs tasks.
	owner atomic.Int64
}

func New(opts ...Option) *Loop {
	l := &Loop{
		timers: map[*time.Timer]struct{}{},
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	if l.logger == nil {
		_, logger := glog.Resolve("payments.mainloop", nil, nil)
		l.logger = glog.Ensure(logger)
	}
	started := make(chan struct{})
	go l.run(started)
	<-started
	return l
}

// Post queues task. Tasks posted after Stop are dropped.
func (l *Loop) Post(task func()) {
	if task == nil {
		return
	}
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		l.logger.Debug("task dropped after loop stop")
		return
	}
	l.queue = append(l.queue, task)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) PostDelayed(task func(), delay time.Duration) {
	if task == nil {
		return
	}
	if delay <= 0 {
		l.Post(task)
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		l.mu.Lock()
		delete(l.timers, timer)
		l.mu.Unlock()
		l.Post(task)
	})
	l.timers[timer] = struct{}{}
}

// Executing reports whether the caller is running as a task on the loop
// goroutine. Other goroutines always get false, even while a task runs.
func (l *Loop) Executing() bool {
	return goid.Get() == l.owner.Load()
}

// Sync waits until every task posted before the call has run.
func (l *Loop) Sync(ctx context.Context) error {
	reached := make(chan struct{})
	l.mu.Lock()
	stopped := l.stopped
	l.mu.Unlock()
	if stopped {
		return ErrStopped
	}
	l.Post(func() { close(reached) })
	select {
	case <-reached:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop cancels pending delayed tasks, drops queued tasks and waits for the
// running task to return. It must not be called from a task.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		<-l.done
		return
	}
	l.stopped = true
	for timer := range l.timers {
		timer.Stop()
	}
	l.timers = map[*time.Timer]struct{}{}
	dropped := len(l.queue)
	l.queue = nil
	l.mu.Unlock()

	close(l.stop)
	<-l.done
	if dropped > 0 {
		l.logger.Debug("loop stopped with queued tasks", "dropped", dropped)
	}
}

func (l *Loop) run(started chan<- struct{}) {
	defer close(l.done)
	l.owner.Store(goid.Get())
	close(started)
	for {
		select {
		case <-l.stop:
			return
		case <-l.wake:
			l.drain()
		}
	}
}

func (l *Loop) drain() {
	for {
		select {
		case <-l.stop:
			return
		default:
		}
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}
		task := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()
		l.execute(task)
	}
}

func (l *Loop) execute(task func()) {
	defer func() {
		if recovered := recover(); recovered != nil {
			l.logger.Error("loop task panicked", "panic", fmt.Sprint(recovered))
		}
	}()
	task()
}
