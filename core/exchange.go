package core

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

const MethodCardEntryDidObtainCardDetails = "cardEntryDidObtainCardDetails"

const (
	cycleArmed int32 = iota
	cycleNotified
	cycleReleased
	cycleConsumed
	cycleAbandoned
)

// exchangeCycle is one round of "worker produced a result, remote side
// decides". released is closed exactly once, after command is stored.
type exchangeCycle struct {
	id        string
	state     atomic.Int32
	command   atomic.Pointer[CardEntryCommand]
	released  chan struct{}
	abandoned chan struct{}
}

func newExchangeCycle() *exchangeCycle {
	return &exchangeCycle{
		id:        uuid.NewString(),
		released:  make(chan struct{}),
		abandoned: make(chan struct{}),
	}
}

func (c *exchangeCycle) abandon() bool {
	for {
		state := c.state.Load()
		if state != cycleArmed && state != cycleNotified {
			return false
		}
		if c.state.CompareAndSwap(state, cycleAbandoned) {
			close(c.abandoned)
			return true
		}
	}
}

// Exchange is a two-sided rendezvous between a native SDK worker that blocks
// in AwaitCommand and a UI-thread callback that calls Publish.
//
// Ordering contract: BeginCycle, then NotifyRemote, then Publish from the
// remote decision. AwaitCommand may be entered any time after BeginCycle and
// returns only once Publish ran for the same cycle. There is no timeout: the
// wait mirrors modal UI waiting on a buyer.
type Exchange struct {
	ui      UIThread
	channel MethodChannel
	logger  Logger
	current atomic.Pointer[exchangeCycle]
	closed  atomic.Bool
}

func NewExchange(ui UIThread, channel MethodChannel, logger Logger) *Exchange {
	if logger == nil {
		logger = defaultLogger("payments.exchange")
	}
	return &Exchange{ui: ui, channel: channel, logger: logger}
}

// BeginCycle arms a fresh gate and drops whatever the previous cycle left
// behind. A worker still waiting on the previous cycle is woken with
// ErrCycleAbandoned.
func (e *Exchange) BeginCycle() string {
	next := newExchangeCycle()
	if e.closed.Load() {
		next.abandon()
		e.current.Store(next)
		return next.id
	}
	if previous := e.current.Swap(next); previous != nil && previous.abandon() {
		e.logger.Warn("exchange cycle abandoned before a decision arrived",
			"cycle_id", previous.id,
			"next_cycle_id", next.id,
		)
	}
	e.logger.Debug("exchange cycle started", "cycle_id", next.id)
	return next.id
}

// NotifyRemote hands payload to the remote decision maker on the UI thread.
func (e *Exchange) NotifyRemote(payload map[string]any) error {
	cycle := e.current.Load()
	if cycle == nil {
		return protocolViolation("notify", "no cycle has been started", "")
	}
	if !cycle.state.CompareAndSwap(cycleArmed, cycleNotified) {
		return protocolViolation("notify", "cycle already notified or finished", cycle.id)
	}
	if e.ui == nil || e.channel == nil {
		cycle.abandon()
		return protocolViolation("notify", "exchange is not bound to a channel", cycle.id)
	}
	channel := e.channel
	e.ui.Post(func() {
		channel.InvokeMethod(MethodCardEntryDidObtainCardDetails, payload)
	})
	return nil
}

// AwaitCommand blocks until the current cycle is released. Cancelling ctx is
// treated like interrupting the worker: the flow cannot continue and the
// error is fatal.
func (e *Exchange) AwaitCommand(ctx context.Context) (CardEntryCommand, error) {
	return e.await(ctx, e.current.Load())
}

func (e *Exchange) await(ctx context.Context, cycle *exchangeCycle) (CardEntryCommand, error) {
	if cycle == nil {
		return nil, protocolViolation("await", "no cycle has been started", "")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	select {
	case <-cycle.released:
	case <-cycle.abandoned:
		return nil, &ProtocolViolationError{
			Operation: "await",
			Reason:    "a newer cycle replaced this one",
			CycleID:   cycle.id,
			Cause:     ErrCycleAbandoned,
		}
	case <-ctx.Done():
		err := &ExchangeInterruptedError{CycleID: cycle.id, Cause: ctx.Err()}
		e.logger.Error("exchange wait interrupted", "cycle_id", cycle.id, "error", err)
		cycle.abandon()
		return nil, err
	}

	if !cycle.state.CompareAndSwap(cycleReleased, cycleConsumed) {
		return nil, protocolViolation("await", "command already consumed", cycle.id)
	}
	cmd := cycle.command.Load()
	if cmd == nil || *cmd == nil {
		return nil, protocolViolation("await", "released without a command", cycle.id)
	}
	e.logger.Debug("exchange command consumed", "cycle_id", cycle.id, "command", CommandName(*cmd))
	return *cmd, nil
}

// Publish stores cmd and releases the waiting worker. Only the first
// publish after NotifyRemote is accepted; anything else is reported as a
// protocol violation and leaves the cycle untouched.
func (e *Exchange) Publish(cmd CardEntryCommand) error {
	if cmd == nil {
		return protocolViolation("publish", "command is required", "")
	}
	cycle := e.current.Load()
	if cycle == nil {
		return protocolViolation("publish", "no cycle has been started", "")
	}
	if !cycle.state.CompareAndSwap(cycleNotified, cycleReleased) {
		switch cycle.state.Load() {
		case cycleArmed:
			return protocolViolation("publish", "remote side has not been notified", cycle.id)
		case cycleAbandoned:
			return &ProtocolViolationError{Operation: "publish", Reason: "cycle was abandoned", CycleID: cycle.id, Cause: ErrCycleAbandoned}
		default:
			return protocolViolation("publish", "cycle already released", cycle.id)
		}
	}
	cycle.command.Store(&cmd)
	close(cycle.released)
	e.logger.Debug("exchange command published", "cycle_id", cycle.id, "command", CommandName(cmd))
	return nil
}

// CurrentCycle returns the id of the latest cycle, or "" before the first.
func (e *Exchange) CurrentCycle() string {
	cycle := e.current.Load()
	if cycle == nil {
		return ""
	}
	return cycle.id
}

// Close abandons the current cycle and rejects future ones.
func (e *Exchange) Close() {
	if !e.closed.CompareAndSwap(false, true) {
		return
	}
	if cycle := e.current.Load(); cycle != nil && cycle.abandon() {
		e.logger.Warn("exchange closed with a pending cycle", "cycle_id", cycle.id)
	}
}
