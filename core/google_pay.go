package core

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/singleflight"
)

const (
	MethodOnGooglePayNonceRequestSuccess = "onGooglePayNonceRequestSuccess"
	MethodOnGooglePayNonceRequestFailure = "onGooglePayNonceRequestFailure"
	MethodOnGooglePayCanceled            = "onGooglePayCanceled"
)

const (
	DebugGooglePayNotInitialized = "fl_google_pay_not_initialized"
	DebugGooglePayResultError    = "fl_google_pay_result_error"
	DebugGooglePayUnknownError   = "fl_google_pay_unknown_error"
	DebugGooglePayMissingToken   = "fl_google_pay_missing_payment_token"

	messageGooglePayNotInitialized = "Please initialize Google Pay before you can call other methods."
	messageGooglePayResultError    = "Failed to launch Google Pay, please make sure you configured it correctly."
	messageGooglePayUnknownError   = "Unknown Google Pay activity result status."
)

type GooglePayNonceRequest struct {
	Price        string
	CurrencyCode string
	PriceStatus  PriceStatus
}

// GooglePayModule drives the wallet sheet and exchanges wallet tokens for
// card nonces. Nonce exchanges go through a circuit breaker; concurrent
// readiness checks share one wallet call.
type GooglePayModule struct {
	sdk         GooglePaySDK
	activity    Activity
	ui          UIThread
	channel     MethodChannel
	requestCode int
	logger      Logger
	breaker     *gobreaker.CircuitBreaker
	readiness   singleflight.Group

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.RWMutex
	client     PaymentsClient
	generation uint64
	locationID string
}

func NewGooglePayModule(
	activity Activity,
	sdk GooglePaySDK,
	ui UIThread,
	channel MethodChannel,
	cfg GooglePayConfig,
	logger Logger,
) (*GooglePayModule, error) {
	if ui == nil {
		return nil, errors.New("core: ui thread is required")
	}
	if channel == nil {
		return nil, errors.New("core: method channel is required")
	}
	defaults := DefaultConfig().GooglePay
	if cfg.LoadPaymentDataRequestCode <= 0 {
		cfg.LoadPaymentDataRequestCode = defaults.LoadPaymentDataRequestCode
	}
	if cfg.NonceFailureThreshold <= 0 {
		cfg.NonceFailureThreshold = defaults.NonceFailureThreshold
	}
	if cfg.NonceBreakerTimeout <= 0 {
		cfg.NonceBreakerTimeout = defaults.NonceBreakerTimeout
	}
	logger = componentLogger(logger, "google_pay")
	ctx, cancel := context.WithCancel(context.Background())
	return &GooglePayModule{
		sdk:         sdk,
		activity:    activity,
		ui:          ui,
		channel:     channel,
		requestCode: cfg.LoadPaymentDataRequestCode,
		logger:      logger,
		breaker:     newNonceBreaker(cfg, logger),
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

func newNonceBreaker(cfg GooglePayConfig, logger Logger) *gobreaker.CircuitBreaker {
	threshold := uint32(cfg.NonceFailureThreshold)
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "google_pay_nonce",
		MaxRequests: 1,
		Timeout:     cfg.NonceBreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Declined tokens and cancelled requests are answers, not outages.
		IsSuccessful: func(err error) bool {
			var sdkErr *SDKError
			return err == nil || errors.As(err, &sdkErr) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("google pay nonce breaker changed state",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
}

func (m *GooglePayModule) RequestCode() int {
	return m.requestCode
}

// Close drops the payments client and cancels nonce requests in flight.
func (m *GooglePayModule) Close() {
	if m == nil {
		return
	}
	m.cancel()
	m.mu.Lock()
	m.client = nil
	m.mu.Unlock()
}

func (m *GooglePayModule) InitializeGooglePay(ctx context.Context, locationID string, environment GooglePayEnvironment) error {
	if m.sdk == nil {
		return sdkOperationError(errors.New("google pay sdk is not available"), "core: initialize google pay failed")
	}
	client, err := m.sdk.NewPaymentsClient(m.activity, environment)
	if err != nil {
		return sdkOperationError(err, "core: initialize google pay failed")
	}
	m.mu.Lock()
	m.client = client
	m.generation++
	m.locationID = strings.TrimSpace(locationID)
	m.mu.Unlock()
	return nil
}

func (m *GooglePayModule) Initialized() bool {
	_, _, ok := m.snapshot()
	return ok
}

func (m *GooglePayModule) snapshot() (PaymentsClient, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client, m.locationID, m.client != nil
}

func (m *GooglePayModule) readinessClient() (PaymentsClient, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client, "ready:" + strconv.FormatUint(m.generation, 10), m.client != nil
}

// CanUseGooglePay asks the wallet whether the buyer can pay. A failed
// readiness check answers false. Concurrent callers for the same client
// share one check, which runs on the module lifetime; a caller whose ctx
// ends stops waiting without affecting the others.
func (m *GooglePayModule) CanUseGooglePay(ctx context.Context) (bool, error) {
	client, key, ok := m.readinessClient()
	if !ok {
		return false, googlePayNotInitializedError()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	lifetime := m.ctx
	flight := m.readiness.DoChan(key, func() (any, error) {
		return client.IsReadyToPay(lifetime)
	})
	select {
	case res := <-flight:
		if res.Err != nil {
			m.logger.Warn("google pay readiness check failed", "error", res.Err, "shared", res.Shared)
			return false, nil
		}
		ready, _ := res.Val.(bool)
		return ready, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (m *GooglePayModule) RequestGooglePayNonce(ctx context.Context, req GooglePayNonceRequest) error {
	client, locationID, ok := m.snapshot()
	if !ok {
		return googlePayNotInitializedError()
	}
	request := PaymentDataRequest{
		LocationID:   locationID,
		TotalPrice:   req.Price,
		CurrencyCode: req.CurrencyCode,
		PriceStatus:  req.PriceStatus,
	}
	if err := client.LoadPaymentData(m.activity, request, m.requestCode); err != nil {
		return sdkOperationError(err, "core: launch google pay failed")
	}
	return nil
}

// OnActivityResult handles the wallet sheet result on the UI thread.
func (m *GooglePayModule) OnActivityResult(result ActivityResult) bool {
	switch result.ResultCode {
	case ResultOK:
		m.requestNonce(result.Data)
	case ResultCanceled:
		m.channel.InvokeMethod(MethodOnGooglePayCanceled, nil)
	case ResultWalletError:
		m.channel.InvokeMethod(MethodOnGooglePayNonceRequestFailure, CallbackErrorObject(
			UsageError, messageGooglePayResultError, DebugGooglePayResultError, messageGooglePayResultError,
		))
	default:
		m.channel.InvokeMethod(MethodOnGooglePayNonceRequestFailure, CallbackErrorObject(
			UsageError, messageGooglePayUnknownError, DebugGooglePayUnknownError, messageGooglePayUnknownError,
		))
	}
	return true
}

func (m *GooglePayModule) requestNonce(data any) {
	if m.sdk == nil {
		m.logger.Error("google pay result received without a google pay sdk")
		return
	}
	token, err := m.sdk.PaymentToken(data)
	if err != nil || strings.TrimSpace(token) == "" {
		m.logger.Error("google pay result carried no payment token", "error", err)
		m.channel.InvokeMethod(MethodOnGooglePayNonceRequestFailure, CallbackErrorObject(
			InternalError, PluginErrorMessage(DebugGooglePayMissingToken), DebugGooglePayMissingToken,
			"Google Pay payment data should never be empty.",
		))
		return
	}

	ctx := m.ctx
	sdk := m.sdk
	breaker := m.breaker
	channel := m.channel
	ui := m.ui
	logger := m.logger
	go func() {
		details, err := exchangeNonce(ctx, breaker, sdk, token)
		if err != nil {
			logger.Warn("google pay nonce request failed", "error", err)
			payload := CallbackErrorFor(err)
			ui.Post(func() {
				channel.InvokeMethod(MethodOnGooglePayNonceRequestFailure, payload)
			})
			return
		}
		payload := CardDetailsToMap(details)
		ui.Post(func() {
			channel.InvokeMethod(MethodOnGooglePayNonceRequestSuccess, payload)
		})
	}()
}

func exchangeNonce(ctx context.Context, breaker *gobreaker.CircuitBreaker, sdk GooglePaySDK, token string) (CardDetails, error) {
	value, err := breaker.Execute(func() (interface{}, error) {
		return sdk.RequestNonce(ctx, token)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return CardDetails{}, sdkOperationError(err, "core: google pay nonce exchange is unavailable")
	}
	if err != nil {
		return CardDetails{}, err
	}
	details, _ := value.(CardDetails)
	return details, nil
}
