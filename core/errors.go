package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	PaymentsErrorBadInput                = "PAYMENTS_BAD_INPUT"
	PaymentsErrorProtocolViolation       = "PAYMENTS_PROTOCOL_VIOLATION"
	PaymentsErrorExchangeInterrupted     = "PAYMENTS_EXCHANGE_INTERRUPTED"
	PaymentsErrorCycleAbandoned          = "PAYMENTS_CYCLE_ABANDONED"
	PaymentsErrorNotAttached             = "PAYMENTS_NOT_ATTACHED"
	PaymentsErrorGooglePayNotInitialized = "PAYMENTS_GOOGLE_PAY_NOT_INITIALIZED"
	PaymentsErrorSDKOperationFailed      = "PAYMENTS_SDK_OPERATION_FAILED"
	PaymentsErrorNotImplemented          = "PAYMENTS_NOT_IMPLEMENTED"
	PaymentsErrorInternal                = "PAYMENTS_INTERNAL_ERROR"
)

// Channel error codes understood by the application layer.
const (
	UsageError    = "USAGE_ERROR"
	InternalError = "INTERNAL_ERROR"
)

const pluginErrorMessagePrefix = "Something went wrong. Please contact the developer of this application and provide them with this error code: "

var (
	ErrProtocolViolation       = errors.New("core: exchange protocol violation")
	ErrExchangeInterrupted     = errors.New("core: exchange wait interrupted")
	ErrCycleAbandoned          = errors.New("core: exchange cycle abandoned")
	ErrNotAttached             = errors.New("core: plugin is not attached to an activity")
	ErrGooglePayNotInitialized = errors.New("core: google pay is not initialized")
)

// ProtocolViolationError reports a caller that broke the exchange ordering
// contract.
type ProtocolViolationError struct {
	Operation string
	Reason    string
	CycleID   string
	Cause     error
}

func (e *ProtocolViolationError) Error() string {
	if e == nil {
		return ErrProtocolViolation.Error()
	}
	msg := ErrProtocolViolation.Error() + ": " + e.Operation + ": " + e.Reason
	if e.CycleID != "" {
		msg += " (cycle " + e.CycleID + ")"
	}
	return msg
}

func (e *ProtocolViolationError) Unwrap() error {
	if e == nil || e.Cause == nil {
		return ErrProtocolViolation
	}
	return errors.Join(ErrProtocolViolation, e.Cause)
}

func (e *ProtocolViolationError) ToServiceError() *goerrors.Error {
	textCode := PaymentsErrorProtocolViolation
	if e != nil && errors.Is(e.Cause, ErrCycleAbandoned) {
		textCode = PaymentsErrorCycleAbandoned
	}
	err := goerrors.New(e.Error(), goerrors.CategoryConflict).
		WithCode(http.StatusConflict).
		WithTextCode(textCode)
	if e != nil {
		err.WithMetadata(map[string]any{
			"operation": e.Operation,
			"cycle_id":  e.CycleID,
		})
	}
	return err
}

func protocolViolation(operation string, reason string, cycleID string) error {
	return &ProtocolViolationError{Operation: operation, Reason: reason, CycleID: cycleID}
}

// ExchangeInterruptedError is fatal for the running card entry flow.
type ExchangeInterruptedError struct {
	CycleID string
	Cause   error
}

func (e *ExchangeInterruptedError) Error() string {
	if e == nil || e.Cause == nil {
		return ErrExchangeInterrupted.Error()
	}
	return ErrExchangeInterrupted.Error() + ": " + e.Cause.Error()
}

func (e *ExchangeInterruptedError) Unwrap() error {
	if e == nil {
		return nil
	}
	if e.Cause == nil {
		return ErrExchangeInterrupted
	}
	return errors.Join(ErrExchangeInterrupted, e.Cause)
}

func (e *ExchangeInterruptedError) ToServiceError() *goerrors.Error {
	return goerrors.New(e.Error(), goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(PaymentsErrorExchangeInterrupted).
		WithSeverity(goerrors.SeverityCritical)
}

func paymentsError(message string, category goerrors.Category, code int, textCode string) *goerrors.Error {
	return goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCode)
}

func badInputError(message string) *goerrors.Error {
	return paymentsError(message, goerrors.CategoryBadInput, http.StatusBadRequest, PaymentsErrorBadInput)
}

func notAttachedError(operation string) *goerrors.Error {
	return paymentsError(
		fmt.Sprintf("%s: %s", ErrNotAttached.Error(), operation),
		goerrors.CategoryOperation,
		http.StatusPreconditionFailed,
		PaymentsErrorNotAttached,
	)
}

func googlePayNotInitializedError() *goerrors.Error {
	return paymentsError(
		messageGooglePayNotInitialized,
		goerrors.CategoryOperation,
		http.StatusPreconditionFailed,
		PaymentsErrorGooglePayNotInitialized,
	)
}

func sdkOperationError(err error, message string) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryExternal, message).
		WithCode(http.StatusBadGateway).
		WithTextCode(PaymentsErrorSDKOperationFailed)
}

// ServiceErrorConverter is implemented by typed errors that know their
// rich representation.
type ServiceErrorConverter interface {
	ToServiceError() *goerrors.Error
}

// MapError converts any error into a go-errors envelope with a payments
// text code.
func MapError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	var converter ServiceErrorConverter
	if errors.As(err, &converter) {
		return ensureErrorEnvelope(converter.ToServiceError())
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureErrorEnvelope(richErr)
	}
	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "must not"):
		return badInputError(err.Error())
	}
	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureErrorEnvelope(mapped)
}

func ensureErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = http.StatusInternalServerError
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return PaymentsErrorBadInput
	case goerrors.CategoryConflict:
		return PaymentsErrorProtocolViolation
	case goerrors.CategoryExternal:
		return PaymentsErrorSDKOperationFailed
	default:
		return PaymentsErrorInternal
	}
}

// PluginErrorMessage is the buyer-safe message attached to usage errors.
func PluginErrorMessage(debugCode string) string {
	return pluginErrorMessagePrefix + debugCode
}

func DebugErrorObject(debugCode string, debugMessage string) map[string]any {
	return map[string]any{
		"debugCode":    debugCode,
		"debugMessage": debugMessage,
	}
}

// CallbackErrorObject is the error map delivered with failure notifications.
func CallbackErrorObject(code string, message string, debugCode string, debugMessage string) map[string]any {
	return map[string]any{
		"code":         code,
		"message":      message,
		"debugCode":    debugCode,
		"debugMessage": debugMessage,
	}
}

// SDKErrorObject passes a native SDK failure through unchanged.
func SDKErrorObject(err *SDKError) map[string]any {
	if err == nil {
		return CallbackErrorObject(InternalError, "", "", "")
	}
	return CallbackErrorObject(err.Code, err.Message, err.DebugCode, err.DebugMessage)
}

// ChannelError is the triple handed to MethodResult.Error.
type ChannelError struct {
	Code    string
	Message string
	Details map[string]any
}

// ToChannelError translates err for delivery across the channel.
func ToChannelError(err error) ChannelError {
	rich := MapError(err)
	if rich == nil {
		return ChannelError{}
	}
	debugCode := DebugCode(rich.TextCode)
	code := UsageError
	if rich.Category == goerrors.CategoryInternal {
		code = InternalError
	}
	debugMessage := rich.Message
	if fields := rich.AllValidationErrors(); len(fields) > 0 {
		parts := make([]string, 0, len(fields))
		for _, field := range fields {
			parts = append(parts, field.Field+": "+field.Message)
		}
		debugMessage = strings.Join(parts, "; ")
	}
	return ChannelError{
		Code:    code,
		Message: PluginErrorMessage(debugCode),
		Details: DebugErrorObject(debugCode, debugMessage),
	}
}

// DebugCode maps PAYMENTS_FOO_BAR to fl_foo_bar.
func DebugCode(textCode string) string {
	code := strings.TrimPrefix(strings.TrimSpace(textCode), "PAYMENTS_")
	if code == "" {
		code = "internal_error"
	}
	return "fl_" + strings.ToLower(code)
}

// CallbackErrorFor builds the failure notification payload for err. Native
// SDK errors pass through unchanged.
func CallbackErrorFor(err error) map[string]any {
	var sdkErr *SDKError
	if errors.As(err, &sdkErr) {
		return SDKErrorObject(sdkErr)
	}
	channelErr := ToChannelError(err)
	debugCode, _ := channelErr.Details["debugCode"].(string)
	debugMessage, _ := channelErr.Details["debugMessage"].(string)
	return CallbackErrorObject(channelErr.Code, channelErr.Message, debugCode, debugMessage)
}
