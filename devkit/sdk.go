package devkit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-inapp-payments/core"
)

const (
	CardEntryRequestCode         = 51789
	BuyerVerificationRequestCode = 51790
)

// NewSDK returns a full set of fakes.
func NewSDK() (core.SDK, *FakeInAppPayments, *FakeCardEntry, *FakeBuyerVerification, *FakeGooglePay) {
	payments := &FakeInAppPayments{}
	cardEntry := NewFakeCardEntry()
	verification := NewFakeBuyerVerification()
	googlePay := NewFakeGooglePay(&FakePaymentsClient{Ready: true})
	return core.SDK{
		Payments:          payments,
		CardEntry:         cardEntry,
		BuyerVerification: verification,
		GooglePay:         googlePay,
	}, payments, cardEntry, verification, googlePay
}

type FakeInAppPayments struct {
	mu            sync.Mutex
	applicationID string
}

func (f *FakeInAppPayments) SetApplicationID(applicationID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applicationID = applicationID
}

func (f *FakeInAppPayments) ApplicationID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.applicationID
}

type CardEntryStart struct {
	Activity          core.Activity
	CollectPostalCode bool
	GiftCard          bool
}

// HandlerOutcome is what the background handler returned for one
// submission.
type HandlerOutcome struct {
	Command core.CardEntryCommand
	Err     error
}

// FakeCardEntry runs the background handler on its own worker goroutine,
// the way the native card entry screen does after tokenizing a card.
type FakeCardEntry struct {
	Code       int
	CloseDelay time.Duration
	StartErr   error

	mu      sync.Mutex
	handler core.CardNonceBackgroundHandler
	starts  []CardEntryStart
}

func NewFakeCardEntry() *FakeCardEntry {
	return &FakeCardEntry{Code: CardEntryRequestCode}
}

func (f *FakeCardEntry) RequestCode() int { return f.Code }

func (f *FakeCardEntry) SetBackgroundHandler(handler core.CardNonceBackgroundHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = handler
}

func (f *FakeCardEntry) HasBackgroundHandler() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handler != nil
}

func (f *FakeCardEntry) StartCardEntry(activity core.Activity, collectPostalCode bool) error {
	return f.start(CardEntryStart{Activity: activity, CollectPostalCode: collectPostalCode})
}

func (f *FakeCardEntry) StartGiftCardEntry(activity core.Activity) error {
	return f.start(CardEntryStart{Activity: activity, GiftCard: true})
}

func (f *FakeCardEntry) start(start CardEntryStart) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.StartErr != nil {
		return f.StartErr
	}
	f.starts = append(f.starts, start)
	return nil
}

func (f *FakeCardEntry) Starts() []CardEntryStart {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]CardEntryStart(nil), f.starts...)
}

// Submit hands details to the background handler on a new worker goroutine.
// The outcome channel receives exactly one value.
func (f *FakeCardEntry) Submit(ctx context.Context, details core.CardDetails) <-chan HandlerOutcome {
	return f.Session(ctx, details)
}

// Session plays a buyer who keeps the card entry screen open. The handler
// runs on one worker goroutine for each card in turn, and the next card is
// only submitted after the previous one got ShowError. The session ends on
// Finish, a handler error, or when the cards run out. The outcome channel
// is closed when it ends.
func (f *FakeCardEntry) Session(ctx context.Context, cards ...core.CardDetails) <-chan HandlerOutcome {
	out := make(chan HandlerOutcome, len(cards))
	f.mu.Lock()
	handler := f.handler
	f.mu.Unlock()
	go func() {
		defer close(out)
		if handler == nil {
			out <- HandlerOutcome{Err: fmt.Errorf("devkit: no background handler installed")}
			return
		}
		for _, details := range cards {
			cmd, err := handler(ctx, details)
			out <- HandlerOutcome{Command: cmd, Err: err}
			if _, retry := cmd.(core.ShowError); !retry || err != nil {
				return
			}
		}
	}()
	return out
}

// ResolveResult expects data to be a core.CardEntryResult.
func (f *FakeCardEntry) ResolveResult(data any) (core.CardEntryResult, error) {
	switch value := data.(type) {
	case core.CardEntryResult:
		return value, nil
	case *core.CardEntryResult:
		if value != nil {
			return *value, nil
		}
	}
	return core.CardEntryResult{}, fmt.Errorf("devkit: unexpected card entry result data %T", data)
}

func (f *FakeCardEntry) CloseAnimationDelay(core.Activity) time.Duration {
	return f.CloseDelay
}

type FakeBuyerVerification struct {
	Code      int
	VerifyErr error

	mu       sync.Mutex
	requests []core.VerificationParameters
}

func NewFakeBuyerVerification() *FakeBuyerVerification {
	return &FakeBuyerVerification{Code: BuyerVerificationRequestCode}
}

func (f *FakeBuyerVerification) RequestCode() int { return f.Code }

func (f *FakeBuyerVerification) Verify(_ core.Activity, params core.VerificationParameters) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.VerifyErr != nil {
		return f.VerifyErr
	}
	f.requests = append(f.requests, params)
	return nil
}

func (f *FakeBuyerVerification) Requests() []core.VerificationParameters {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.VerificationParameters(nil), f.requests...)
}

// ResolveResult expects data to be a core.BuyerVerificationResult.
func (f *FakeBuyerVerification) ResolveResult(data any) (core.BuyerVerificationResult, error) {
	if result, ok := data.(core.BuyerVerificationResult); ok {
		return result, nil
	}
	return core.BuyerVerificationResult{}, fmt.Errorf("devkit: unexpected verification result data %T", data)
}

type NonceScript struct {
	Details core.CardDetails
	Err     error
}

type FakeGooglePay struct {
	Client    *FakePaymentsClient
	ClientErr error
	// Nonces maps wallet tokens to scripted nonce exchanges.
	Nonces map[string]NonceScript

	mu           sync.Mutex
	environments []core.GooglePayEnvironment
}

func NewFakeGooglePay(client *FakePaymentsClient) *FakeGooglePay {
	return &FakeGooglePay{Client: client, Nonces: map[string]NonceScript{}}
}

func (f *FakeGooglePay) NewPaymentsClient(_ core.Activity, environment core.GooglePayEnvironment) (core.PaymentsClient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ClientErr != nil {
		return nil, f.ClientErr
	}
	f.environments = append(f.environments, environment)
	if f.Client == nil {
		f.Client = &FakePaymentsClient{Ready: true}
	}
	return f.Client, nil
}

func (f *FakeGooglePay) Environments() []core.GooglePayEnvironment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.GooglePayEnvironment(nil), f.environments...)
}

// PaymentToken expects data to be the wallet token string.
func (f *FakeGooglePay) PaymentToken(data any) (string, error) {
	token, ok := data.(string)
	if !ok {
		return "", fmt.Errorf("devkit: unexpected payment data %T", data)
	}
	return token, nil
}

func (f *FakeGooglePay) RequestNonce(ctx context.Context, token string) (core.CardDetails, error) {
	if err := ctx.Err(); err != nil {
		return core.CardDetails{}, err
	}
	f.mu.Lock()
	script, ok := f.Nonces[token]
	f.mu.Unlock()
	if !ok {
		return core.CardDetails{}, &core.SDKError{
			Code:         "USAGE_ERROR",
			Message:      "unknown google pay token",
			DebugCode:    "devkit_unknown_token",
			DebugMessage: token,
		}
	}
	return script.Details, script.Err
}

type FakePaymentsClient struct {
	Ready    bool
	ReadyErr error
	LoadErr  error
	// ReadyGate, when set, holds IsReadyToPay until it is closed.
	ReadyGate chan struct{}

	mu         sync.Mutex
	readyCalls int
	loads      []core.PaymentDataRequest
	loadCodes  []int
}

func (c *FakePaymentsClient) IsReadyToPay(ctx context.Context) (bool, error) {
	c.mu.Lock()
	c.readyCalls++
	gate := c.ReadyGate
	c.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
		}
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Ready, c.ReadyErr
}

// ReadyCalls counts IsReadyToPay calls.
func (c *FakePaymentsClient) ReadyCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readyCalls
}

func (c *FakePaymentsClient) LoadPaymentData(_ core.Activity, request core.PaymentDataRequest, requestCode int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.LoadErr != nil {
		return c.LoadErr
	}
	c.loads = append(c.loads, request)
	c.loadCodes = append(c.loadCodes, requestCode)
	return nil
}

func (c *FakePaymentsClient) Loads() ([]core.PaymentDataRequest, []int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]core.PaymentDataRequest(nil), c.loads...), append([]int(nil), c.loadCodes...)
}

var (
	_ core.InAppPaymentsSDK     = (*FakeInAppPayments)(nil)
	_ core.CardEntrySDK         = (*FakeCardEntry)(nil)
	_ core.BuyerVerificationSDK = (*FakeBuyerVerification)(nil)
	_ core.GooglePaySDK         = (*FakeGooglePay)(nil)
	_ core.PaymentsClient       = (*FakePaymentsClient)(nil)
)
