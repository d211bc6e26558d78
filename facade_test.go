package payments

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-inapp-payments/adapters/gocommand"
	paymentscommand "github.com/goliatone/go-inapp-payments/command"
	"github.com/goliatone/go-inapp-payments/core"
	"github.com/goliatone/go-inapp-payments/devkit"
	"github.com/goliatone/go-inapp-payments/inbound"
	"github.com/goliatone/go-inapp-payments/mainloop"
	paymentsquery "github.com/goliatone/go-inapp-payments/query"
	glog "github.com/goliatone/go-logger/glog"
)

type bridgeHarness struct {
	loop      *mainloop.Loop
	channel   *devkit.ChannelRecorder
	payments  *devkit.FakeInAppPayments
	cardEntry *devkit.FakeCardEntry
	bridge    *Bridge
}

func newBridgeHarness(t *testing.T) *bridgeHarness {
	t.Helper()
	loop := mainloop.New(mainloop.WithLogger(glog.Nop()))
	t.Cleanup(loop.Stop)
	sdk, payments, cardEntry, _, _ := devkit.NewSDK()

	bridge, err := NewBridge(DefaultConfig(), WithSDK(sdk), WithUIThread(loop), WithLogger(glog.Nop()))
	if err != nil {
		t.Fatalf("new bridge: %v", err)
	}
	channel := devkit.NewChannelRecorder(loop.Executing)
	if err := bridge.AttachEngine(channel); err != nil {
		t.Fatalf("attach engine: %v", err)
	}
	if err := bridge.AttachActivity(devkit.NewFakeActivityBinding("activity")); err != nil {
		t.Fatalf("attach activity: %v", err)
	}
	return &bridgeHarness{loop: loop, channel: channel, payments: payments, cardEntry: cardEntry, bridge: bridge}
}

// call delivers a method call on the ui thread and waits for its answer.
func (h *bridgeHarness) call(t *testing.T, method string, arguments map[string]any) *devkit.MethodResultRecorder {
	t.Helper()
	result := devkit.NewMethodResultRecorder()
	h.loop.Post(func() {
		h.bridge.OnMethodCall(context.Background(), MethodCall{Method: method, Arguments: arguments}, result)
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := result.Wait(ctx); err != nil {
		t.Fatalf("%s: %v", method, err)
	}
	return result
}

func TestBridge_CardEntryRoundTrip(t *testing.T) {
	h := newBridgeHarness(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if result := h.call(t, inbound.MethodSetApplicationID, map[string]any{"applicationId": "sq0idp-app"}); result.IsError {
		t.Fatalf("set application id failed: %#v", result)
	}
	if h.payments.ApplicationID() != "sq0idp-app" {
		t.Fatalf("expected application id to reach the sdk")
	}
	if result := h.call(t, inbound.MethodStartCardEntryFlow, map[string]any{"collectPostalCode": true}); result.IsError {
		t.Fatalf("start card entry failed: %#v", result)
	}

	outcome := h.cardEntry.Submit(ctx, devkit.SampleCardDetails("cnon:bridge"))
	if _, err := h.channel.WaitFor(ctx, core.MethodCardEntryDidObtainCardDetails, 1); err != nil {
		t.Fatalf("wait for card details: %v", err)
	}
	if result := h.call(t, inbound.MethodShowCardNonceProcessingError, map[string]any{"errorMessage": "Declined"}); result.IsError {
		t.Fatalf("show error failed: %#v", result)
	}

	select {
	case got := <-outcome:
		if cmd, ok := got.Command.(ShowError); !ok || cmd.Message != "Declined" {
			t.Fatalf("expected ShowError(Declined), got %#v / %v", got.Command, got.Err)
		}
	case <-ctx.Done():
		t.Fatalf("background handler never returned")
	}

	late := h.call(t, inbound.MethodCompleteCardEntry, nil)
	if !late.IsError || late.ErrorCode != core.UsageError {
		t.Fatalf("expected a second decision to be answered with a usage error, got %#v", late)
	}
	details, _ := late.ErrorDetails.(map[string]any)
	if details["debugCode"] != "fl_protocol_violation" {
		t.Fatalf("expected protocol violation debug code, got %#v", details)
	}
}

func TestBridge_CanUseGooglePayRequiresInitialization(t *testing.T) {
	h := newBridgeHarness(t)

	result := h.call(t, inbound.MethodCanUseGooglePay, nil)
	if !result.IsError || result.ErrorCode != core.UsageError {
		t.Fatalf("expected usage error before initialization, got %#v", result)
	}
	if result := h.call(t, inbound.MethodInitializeGooglePay, map[string]any{"squareLocationId": "LOC", "environment": 3}); result.IsError {
		t.Fatalf("initialize failed: %#v", result)
	}
	if result := h.call(t, inbound.MethodCanUseGooglePay, nil); result.IsError || result.Value != true {
		t.Fatalf("expected true, got %#v", result)
	}
}

func TestFacade_RequiresService(t *testing.T) {
	if _, err := NewFacade(nil); err == nil {
		t.Fatalf("expected nil service to be rejected")
	}
}

func TestFacade_CommandsDriveThePlugin(t *testing.T) {
	h := newBridgeHarness(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	facade, err := NewFacade(h.bridge.Plugin())
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}
	if facade.Service() == nil {
		t.Fatalf("expected service to be exposed")
	}

	err = gocommand.Execute[paymentscommand.StartCardEntryFlowMessage](ctx, facade.Commands().StartCardEntryFlow, paymentscommand.StartCardEntryFlowMessage{CollectPostalCode: false})
	if err != nil {
		t.Fatalf("start card entry: %v", err)
	}
	outcome := h.cardEntry.Submit(ctx, devkit.SampleCardDetails("cnon:facade"))
	if _, err := h.channel.WaitFor(ctx, core.MethodCardEntryDidObtainCardDetails, 1); err != nil {
		t.Fatalf("wait for card details: %v", err)
	}
	if err := gocommand.Execute[paymentscommand.CompleteCardEntryMessage](ctx, facade.Commands().CompleteCardEntry, paymentscommand.CompleteCardEntryMessage{}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	got := <-outcome
	if _, ok := got.Command.(Finish); !ok {
		t.Fatalf("expected Finish, got %#v / %v", got.Command, got.Err)
	}

	_, err = gocommand.Query[paymentsquery.CanUseGooglePayMessage, bool](ctx, facade.Queries().CanUseGooglePay, paymentsquery.CanUseGooglePayMessage{})
	if mapped := core.MapError(err); mapped == nil || mapped.TextCode != core.PaymentsErrorGooglePayNotInitialized {
		t.Fatalf("expected not initialized, got %v", err)
	}
}
