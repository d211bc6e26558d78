package core

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// serialUI runs posted tasks on one goroutine and records whether a task is
// executing.
type serialUI struct {
	tasks     chan func()
	executing atomic.Bool
	delays    []time.Duration
	mu        sync.Mutex
}

func newSerialUI() *serialUI {
	ui := &serialUI{tasks: make(chan func(), 64)}
	go func() {
		for task := range ui.tasks {
			ui.executing.Store(true)
			task()
			ui.executing.Store(false)
		}
	}()
	return ui
}

func (u *serialUI) Post(task func()) { u.tasks <- task }

func (u *serialUI) PostDelayed(task func(), delay time.Duration) {
	u.mu.Lock()
	u.delays = append(u.delays, delay)
	u.mu.Unlock()
	u.tasks <- task
}

func (u *serialUI) Delays() []time.Duration {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]time.Duration(nil), u.delays...)
}

// sync waits for previously posted tasks.
func (u *serialUI) sync() {
	done := make(chan struct{})
	u.tasks <- func() { close(done) }
	<-done
}

type invocation struct {
	method string
	args   any
	onUI   bool
}

type recordingChannel struct {
	ui       *serialUI
	mu       sync.Mutex
	calls    []invocation
	notified chan invocation
}

func newRecordingChannel(ui *serialUI) *recordingChannel {
	return &recordingChannel{ui: ui, notified: make(chan invocation, 16)}
}

func (c *recordingChannel) InvokeMethod(method string, arguments any) {
	call := invocation{method: method, args: arguments}
	if c.ui != nil {
		call.onUI = c.ui.executing.Load()
	}
	c.mu.Lock()
	c.calls = append(c.calls, call)
	c.mu.Unlock()
	select {
	case c.notified <- call:
	default:
	}
}

func (c *recordingChannel) snapshot() []invocation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]invocation(nil), c.calls...)
}

func (c *recordingChannel) waitCall(timeout time.Duration) (invocation, bool) {
	select {
	case call := <-c.notified:
		return call, true
	case <-time.After(timeout):
		return invocation{}, false
	}
}

func testContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}
