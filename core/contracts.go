package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// MethodChannel is the outbound half of the host message channel. Calls are
// fire-and-forget and must be made on the UI thread.
type MethodChannel interface {
	InvokeMethod(method string, arguments any)
}

// MethodResult answers a single inbound method call. Exactly one of its
// methods is called per call.
type MethodResult interface {
	Success(value any)
	Error(code string, message string, details any)
	NotImplemented()
}

type MethodCall struct {
	Method    string
	Arguments map[string]any
}

// UIThread schedules work on the host's UI/event-loop thread.
type UIThread interface {
	Post(task func())
	PostDelayed(task func(), delay time.Duration)
}

// Activity is an opaque handle to the host UI context that native flows are
// presented from.
type Activity any

type ActivityResult struct {
	RequestCode int
	ResultCode  int
	Data        any
}

// ActivityResultListener reports whether it consumed the result. Results are
// delivered on the UI thread.
type ActivityResultListener interface {
	OnActivityResult(result ActivityResult) bool
}

type ActivityBinding interface {
	Activity() Activity
	AddActivityResultListener(listener ActivityResultListener)
	RemoveActivityResultListener(listener ActivityResultListener)
}

// CardNonceBackgroundHandler runs on a native SDK worker once card details
// have been tokenized. The returned command tells the SDK how to proceed.
// A non-nil error is unrecoverable for the running flow.
type CardNonceBackgroundHandler func(ctx context.Context, details CardDetails) (CardEntryCommand, error)

type InAppPaymentsSDK interface {
	SetApplicationID(applicationID string)
}

type CardEntrySDK interface {
	RequestCode() int
	SetBackgroundHandler(handler CardNonceBackgroundHandler)
	StartCardEntry(activity Activity, collectPostalCode bool) error
	StartGiftCardEntry(activity Activity) error
	ResolveResult(data any) (CardEntryResult, error)
	// CloseAnimationDelay is how long the card entry screen takes to
	// animate out once the flow finishes.
	CloseAnimationDelay(activity Activity) time.Duration
}

type BuyerVerificationSDK interface {
	RequestCode() int
	Verify(activity Activity, params VerificationParameters) error
	ResolveResult(data any) (BuyerVerificationResult, error)
}

type GooglePaySDK interface {
	NewPaymentsClient(activity Activity, environment GooglePayEnvironment) (PaymentsClient, error)
	PaymentToken(data any) (string, error)
	RequestNonce(ctx context.Context, googlePayToken string) (CardDetails, error)
}

type PaymentsClient interface {
	IsReadyToPay(ctx context.Context) (bool, error)
	LoadPaymentData(activity Activity, request PaymentDataRequest, requestCode int) error
}

// SDK groups the native collaborators a plugin drives.
type SDK struct {
	Payments          InAppPaymentsSDK
	CardEntry         CardEntrySDK
	BuyerVerification BuyerVerificationSDK
	GooglePay         GooglePaySDK
}
