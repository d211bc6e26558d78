package devkit

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-inapp-payments/core"
)

// Invocation is one outbound method call seen by ChannelRecorder.
type Invocation struct {
	Method     string
	Arguments  any
	OnUIThread bool
}

// ChannelRecorder is a core.MethodChannel that records invocations. When
// UIProbe is set, each invocation records whether it ran on the UI thread.
type ChannelRecorder struct {
	UIProbe func() bool

	mu          sync.Mutex
	invocations []Invocation
	changed     chan struct{}
}

func NewChannelRecorder(uiProbe func() bool) *ChannelRecorder {
	return &ChannelRecorder{UIProbe: uiProbe, changed: make(chan struct{})}
}

func (r *ChannelRecorder) InvokeMethod(method string, arguments any) {
	onUI := false
	if r.UIProbe != nil {
		onUI = r.UIProbe()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invocations = append(r.invocations, Invocation{Method: method, Arguments: arguments, OnUIThread: onUI})
	if r.changed != nil {
		close(r.changed)
	}
	r.changed = make(chan struct{})
}

func (r *ChannelRecorder) Invocations() []Invocation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Invocation(nil), r.invocations...)
}

// Calls returns the invocations of method in order.
func (r *ChannelRecorder) Calls(method string) []Invocation {
	out := []Invocation{}
	for _, invocation := range r.Invocations() {
		if invocation.Method == method {
			out = append(out, invocation)
		}
	}
	return out
}

// WaitFor blocks until method has been invoked count times.
func (r *ChannelRecorder) WaitFor(ctx context.Context, method string, count int) ([]Invocation, error) {
	for {
		r.mu.Lock()
		if r.changed == nil {
			r.changed = make(chan struct{})
		}
		changed := r.changed
		matches := []Invocation{}
		for _, invocation := range r.invocations {
			if invocation.Method == method {
				matches = append(matches, invocation)
			}
		}
		r.mu.Unlock()
		if len(matches) >= count {
			return matches, nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return matches, fmt.Errorf("devkit: waiting for %d %q invocation(s), saw %d: %w",
				count, strings.TrimSpace(method), len(matches), ctx.Err())
		}
	}
}

var (
	_ core.MethodChannel = (*ChannelRecorder)(nil)
	_ core.MethodResult  = (*MethodResultRecorder)(nil)
)

// MethodResultRecorder is a core.MethodResult that records the single
// answer given to a call.
type MethodResultRecorder struct {
	mu       sync.Mutex
	answered chan struct{}
	answers  int

	Value             any
	ErrorCode         string
	ErrorMessage      string
	ErrorDetails      any
	IsError           bool
	WasNotImplemented bool
}

func NewMethodResultRecorder() *MethodResultRecorder {
	return &MethodResultRecorder{answered: make(chan struct{})}
}

func (r *MethodResultRecorder) Success(value any) {
	r.answer(func() { r.Value = value })
}

func (r *MethodResultRecorder) Error(code string, message string, details any) {
	r.answer(func() {
		r.IsError = true
		r.ErrorCode = code
		r.ErrorMessage = message
		r.ErrorDetails = details
	})
}

func (r *MethodResultRecorder) NotImplemented() {
	r.answer(func() { r.WasNotImplemented = true })
}

func (r *MethodResultRecorder) answer(apply func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.answers++
	if r.answers > 1 {
		return
	}
	apply()
	close(r.answered)
}

// Answers reports how many times the call was answered.
func (r *MethodResultRecorder) Answers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.answers
}

// Wait blocks until the call has been answered.
func (r *MethodResultRecorder) Wait(ctx context.Context) error {
	select {
	case <-r.answered:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("devkit: method result was not answered: %w", ctx.Err())
	}
}
