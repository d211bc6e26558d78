package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-inapp-payments/core"
	"github.com/goliatone/go-inapp-payments/devkit"
	"github.com/goliatone/go-inapp-payments/mainloop"
	glog "github.com/goliatone/go-logger/glog"
)

type flowHarness struct {
	loop         *mainloop.Loop
	channel      *devkit.ChannelRecorder
	payments     *devkit.FakeInAppPayments
	cardEntry    *devkit.FakeCardEntry
	verification *devkit.FakeBuyerVerification
	googlePay    *devkit.FakeGooglePay
	binding      *devkit.FakeActivityBinding
	config       core.Config
	plugin       *core.Plugin
}

func newFlowHarness(t *testing.T, configure ...func(*flowHarness)) *flowHarness {
	t.Helper()
	loop := mainloop.New(mainloop.WithLogger(glog.Nop()))
	t.Cleanup(loop.Stop)

	sdk, payments, cardEntry, verification, googlePay := devkit.NewSDK()
	h := &flowHarness{
		loop:         loop,
		channel:      devkit.NewChannelRecorder(loop.Executing),
		payments:     payments,
		cardEntry:    cardEntry,
		verification: verification,
		googlePay:    googlePay,
		binding:      devkit.NewFakeActivityBinding("checkout-activity"),
		config:       core.DefaultConfig(),
	}
	for _, fn := range configure {
		fn(h)
	}

	plugin, err := core.NewPlugin(h.config,
		core.WithSDK(sdk),
		core.WithUIThread(loop),
		core.WithLogger(glog.Nop()),
	)
	if err != nil {
		t.Fatalf("new plugin: %v", err)
	}
	if err := plugin.AttachEngine(h.channel); err != nil {
		t.Fatalf("attach engine: %v", err)
	}
	if err := plugin.AttachActivity(h.binding); err != nil {
		t.Fatalf("attach activity: %v", err)
	}
	h.plugin = plugin
	return h
}

func flowContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func (h *flowHarness) deliver(t *testing.T, result core.ActivityResult) {
	t.Helper()
	h.binding.DeliverOn(h.loop, result)
	if err := h.loop.Sync(flowContext(t)); err != nil {
		t.Fatalf("sync ui thread: %v", err)
	}
}

func (h *flowHarness) deliverCardEntry(t *testing.T, result core.CardEntryResult) {
	t.Helper()
	h.deliver(t, core.ActivityResult{
		RequestCode: devkit.CardEntryRequestCode,
		ResultCode:  core.ResultOK,
		Data:        result,
	})
}

func (h *flowHarness) deliverVerification(t *testing.T, result core.BuyerVerificationResult) {
	t.Helper()
	h.deliver(t, core.ActivityResult{
		RequestCode: devkit.BuyerVerificationRequestCode,
		ResultCode:  core.ResultOK,
		Data:        result,
	})
}

func (h *flowHarness) waitFor(t *testing.T, method string, count int) []devkit.Invocation {
	t.Helper()
	calls, err := h.channel.WaitFor(flowContext(t), method, count)
	if err != nil {
		t.Fatalf("wait for %s: %v", method, err)
	}
	return calls
}

func receiveHandlerOutcome(t *testing.T, outcomes <-chan devkit.HandlerOutcome) devkit.HandlerOutcome {
	t.Helper()
	select {
	case outcome := <-outcomes:
		return outcome
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for the background handler")
		return devkit.HandlerOutcome{}
	}
}

func argumentsMap(t *testing.T, invocation devkit.Invocation) map[string]any {
	t.Helper()
	payload, ok := invocation.Arguments.(map[string]any)
	if !ok {
		t.Fatalf("expected map arguments for %s, got %T", invocation.Method, invocation.Arguments)
	}
	return payload
}
