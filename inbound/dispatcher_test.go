package inbound

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-inapp-payments/command"
	"github.com/goliatone/go-inapp-payments/core"
	"github.com/goliatone/go-inapp-payments/devkit"
	"github.com/goliatone/go-inapp-payments/mainloop"
	glog "github.com/goliatone/go-logger/glog"
)

func newTestLoop(t *testing.T) *mainloop.Loop {
	t.Helper()
	loop := mainloop.New(mainloop.WithLogger(glog.Nop()))
	t.Cleanup(loop.Stop)
	return loop
}

func waitAnswer(t *testing.T, result *devkit.MethodResultRecorder) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := result.Wait(ctx); err != nil {
		t.Fatalf("wait for answer: %v", err)
	}
}

func TestDispatcher_UnknownMethodIsNotImplemented(t *testing.T) {
	d := NewDispatcher(newTestLoop(t), glog.Nop())
	result := devkit.NewMethodResultRecorder()
	d.OnMethodCall(context.Background(), core.MethodCall{Method: "launchRockets"}, result)
	if !result.WasNotImplemented || result.Answers() != 1 {
		t.Fatalf("expected a single not-implemented answer, got %#v", result)
	}
}

func TestDispatcher_RegisterRejectsInvalidRoutes(t *testing.T) {
	d := NewDispatcher(nil, glog.Nop())
	handler := func(context.Context, map[string]any) (any, error) { return nil, nil }

	if err := d.Register(" ", handler); err == nil {
		t.Fatalf("expected empty method name to be rejected")
	}
	if err := d.Register("ping", nil); err == nil {
		t.Fatalf("expected nil handler to be rejected")
	}
	if err := d.Register("ping", handler); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := d.Register("ping", handler); err == nil {
		t.Fatalf("expected duplicate registration to be rejected")
	}
	if err := d.RegisterAsync("pong", handler); err == nil {
		t.Fatalf("expected async registration without a ui thread to fail")
	}
}

func TestDispatcher_ConcurrentRegistrationKeepsOneRoute(t *testing.T) {
	d := NewDispatcher(nil, glog.Nop())
	handler := func(context.Context, map[string]any) (any, error) { return nil, nil }

	const registrars = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < registrars; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := d.Register("ping", handler); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if accepted != 1 {
		t.Fatalf("expected exactly one registration to win, got %d", accepted)
	}
	if methods := d.Methods(); len(methods) != 1 || methods[0] != "ping" {
		t.Fatalf("expected a single ping route, got %#v", methods)
	}
}

func TestDispatcher_SyncSuccessAndError(t *testing.T) {
	d := NewDispatcher(newTestLoop(t), glog.Nop())
	_ = d.Register("ok", func(_ context.Context, args map[string]any) (any, error) {
		return args["echo"], nil
	})
	_ = d.Register("fail", func(context.Context, map[string]any) (any, error) {
		return nil, errors.New("currency code is required")
	})

	ok := devkit.NewMethodResultRecorder()
	d.OnMethodCall(context.Background(), core.MethodCall{Method: "ok", Arguments: map[string]any{"echo": "hi"}}, ok)
	if ok.IsError || ok.Value != "hi" {
		t.Fatalf("expected success answer, got %#v", ok)
	}

	fail := devkit.NewMethodResultRecorder()
	d.OnMethodCall(context.Background(), core.MethodCall{Method: "fail"}, fail)
	if !fail.IsError || fail.ErrorCode != core.UsageError {
		t.Fatalf("expected usage error, got %#v", fail)
	}
	if !strings.HasSuffix(fail.ErrorMessage, "fl_bad_input") {
		t.Fatalf("expected plugin error message with debug code, got %q", fail.ErrorMessage)
	}
	details, _ := fail.ErrorDetails.(map[string]any)
	if details["debugCode"] != "fl_bad_input" || details["debugMessage"] != "currency code is required" {
		t.Fatalf("unexpected details %#v", fail.ErrorDetails)
	}
}

func TestDispatcher_PanicAnswersInternalError(t *testing.T) {
	d := NewDispatcher(newTestLoop(t), glog.Nop())
	_ = d.Register("explode", func(context.Context, map[string]any) (any, error) {
		panic("boom")
	})
	result := devkit.NewMethodResultRecorder()
	d.OnMethodCall(context.Background(), core.MethodCall{Method: "explode"}, result)
	if !result.IsError || result.ErrorCode != core.InternalError || result.Answers() != 1 {
		t.Fatalf("expected one internal error answer, got %#v", result)
	}
}

type uiProbeResult struct {
	*devkit.MethodResultRecorder
	loop *mainloop.Loop

	mu   sync.Mutex
	onUI bool
}

func (r *uiProbeResult) Success(value any) {
	r.mu.Lock()
	r.onUI = r.loop.Executing()
	r.mu.Unlock()
	r.MethodResultRecorder.Success(value)
}

func TestDispatcher_AsyncAnswersOnUIThread(t *testing.T) {
	loop := newTestLoop(t)
	d := NewDispatcher(loop, glog.Nop())
	release := make(chan struct{})
	_ = d.RegisterAsync("slow", func(ctx context.Context, _ map[string]any) (any, error) {
		select {
		case <-release:
			return true, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})

	result := &uiProbeResult{MethodResultRecorder: devkit.NewMethodResultRecorder(), loop: loop}
	d.OnMethodCall(context.Background(), core.MethodCall{Method: "slow"}, result)
	if result.Answers() != 0 {
		t.Fatalf("async handler must not answer before it finishes")
	}
	close(release)
	waitAnswer(t, result.MethodResultRecorder)

	result.mu.Lock()
	onUI := result.onUI
	result.mu.Unlock()
	if !onUI || result.Value != true {
		t.Fatalf("expected success answered on the ui thread, got onUI=%v value=%#v", onUI, result.Value)
	}
}

func TestDecode_WeaklyTypedArguments(t *testing.T) {
	msg, err := Decode[command.StartBuyerVerificationFlowMessage]("startBuyerVerificationFlow", map[string]any{
		"squareLocationId": "LOC",
		"buyerAction":      "Charge",
		"money":            map[string]any{"amount": "150", "currencyCode": "USD"},
		"contact": map[string]any{
			"givenName":    "Ada",
			"addressLines": []any{"1 Main", "Apt 2"},
		},
		"paymentSourceId": "ccof:1",
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Money.Amount != 150 || msg.Money.CurrencyCode != "USD" {
		t.Fatalf("unexpected money %#v", msg.Money)
	}
	if msg.Contact.GivenName != "Ada" || len(msg.Contact.AddressLines) != 2 {
		t.Fatalf("unexpected contact %#v", msg.Contact)
	}

	_, err = Decode[command.StartCardEntryFlowMessage]("startCardEntryFlow", map[string]any{
		"collectPostalCode": map[string]any{"nested": true},
	})
	if mapped := core.MapError(err); mapped == nil || mapped.TextCode != core.PaymentsErrorBadInput {
		t.Fatalf("expected bad input for undecodable arguments, got %v", err)
	}
}

func TestRegisterPaymentMethods_RegistersEveryMethod(t *testing.T) {
	d := NewDispatcher(newTestLoop(t), glog.Nop())
	if err := RegisterPaymentMethods(d, &recordingService{}); err != nil {
		t.Fatalf("register: %v", err)
	}
	methods := d.Methods()
	sort.Strings(methods)
	want := []string{
		MethodCanUseGooglePay,
		MethodCompleteCardEntry,
		MethodInitializeGooglePay,
		MethodRequestGooglePayNonce,
		MethodSetApplicationID,
		MethodShowCardNonceProcessingError,
		MethodStartBuyerVerificationFlow,
		MethodStartCardEntryFlow,
		MethodStartCardEntryFlowWithBuyerVerification,
		MethodStartGiftCardEntryFlow,
		MethodStartSecureRemoteCommerce,
	}
	sort.Strings(want)
	if strings.Join(methods, ",") != strings.Join(want, ",") {
		t.Fatalf("expected methods %v, got %v", want, methods)
	}

	result := devkit.NewMethodResultRecorder()
	d.OnMethodCall(context.Background(), core.MethodCall{Method: MethodStartSecureRemoteCommerce}, result)
	if !result.WasNotImplemented {
		t.Fatalf("expected secure remote commerce to be not implemented")
	}
}

func TestRegisterPaymentMethods_ValidationErrorsReachCaller(t *testing.T) {
	svc := &recordingService{}
	d := NewDispatcher(newTestLoop(t), glog.Nop())
	if err := RegisterPaymentMethods(d, svc); err != nil {
		t.Fatalf("register: %v", err)
	}

	result := devkit.NewMethodResultRecorder()
	d.OnMethodCall(context.Background(), core.MethodCall{
		Method:    MethodInitializeGooglePay,
		Arguments: map[string]any{"squareLocationId": "LOC", "environment": 7},
	}, result)
	if !result.IsError || result.ErrorCode != core.UsageError {
		t.Fatalf("expected usage error, got %#v", result)
	}
	details, _ := result.ErrorDetails.(map[string]any)
	if msg, _ := details["debugMessage"].(string); !strings.HasPrefix(msg, "environment:") {
		t.Fatalf("expected field level debug message, got %#v", details)
	}
	if svc.calls() != 0 {
		t.Fatalf("invalid arguments must not reach the service")
	}
}

func TestRegisterPaymentMethods_ForwardsArguments(t *testing.T) {
	svc := &recordingService{ready: true}
	loop := newTestLoop(t)
	d := NewDispatcher(loop, glog.Nop())
	if err := RegisterPaymentMethods(d, svc); err != nil {
		t.Fatalf("register: %v", err)
	}

	result := devkit.NewMethodResultRecorder()
	d.OnMethodCall(context.Background(), core.MethodCall{
		Method:    MethodRequestGooglePayNonce,
		Arguments: map[string]any{"price": "1.00", "currencyCode": "usd", "priceStatus": 3},
	}, result)
	if result.IsError || result.Value != nil {
		t.Fatalf("expected nil success payload, got %#v", result)
	}
	if svc.nonceRequest.CurrencyCode != "USD" || svc.nonceRequest.PriceStatus != core.PriceStatusFinal {
		t.Fatalf("unexpected nonce request %#v", svc.nonceRequest)
	}

	canUse := devkit.NewMethodResultRecorder()
	d.OnMethodCall(context.Background(), core.MethodCall{Method: MethodCanUseGooglePay}, canUse)
	waitAnswer(t, canUse)
	if canUse.Value != true {
		t.Fatalf("expected true, got %#v", canUse.Value)
	}
}

type recordingService struct {
	mu           sync.Mutex
	count        int
	ready        bool
	nonceRequest core.GooglePayNonceRequest
}

func (s *recordingService) record() {
	s.mu.Lock()
	s.count++
	s.mu.Unlock()
}

func (s *recordingService) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func (s *recordingService) SetApplicationID(context.Context, string) error {
	s.record()
	return nil
}

func (s *recordingService) StartCardEntryFlow(context.Context, bool) error {
	s.record()
	return nil
}

func (s *recordingService) StartGiftCardEntryFlow(context.Context) error {
	s.record()
	return nil
}

func (s *recordingService) CompleteCardEntry(context.Context) error {
	s.record()
	return nil
}

func (s *recordingService) ShowCardNonceProcessingError(context.Context, string) error {
	s.record()
	return nil
}

func (s *recordingService) StartCardEntryFlowWithBuyerVerification(context.Context, core.VerificationRequest) error {
	s.record()
	return nil
}

func (s *recordingService) StartBuyerVerificationFlow(context.Context, core.VerificationRequest) error {
	s.record()
	return nil
}

func (s *recordingService) InitializeGooglePay(context.Context, string, core.GooglePayEnvironment) error {
	s.record()
	return nil
}

func (s *recordingService) RequestGooglePayNonce(_ context.Context, req core.GooglePayNonceRequest) error {
	s.record()
	s.mu.Lock()
	s.nonceRequest = req
	s.mu.Unlock()
	return nil
}

func (s *recordingService) CanUseGooglePay(context.Context) (bool, error) {
	s.record()
	return s.ready, nil
}
