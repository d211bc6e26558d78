package payments

import "github.com/goliatone/go-inapp-payments/core"

type Config = core.Config

type GooglePayConfig = core.GooglePayConfig

type Option = core.Option

type Plugin = core.Plugin

type SDK = core.SDK

type MethodChannel = core.MethodChannel
type MethodResult = core.MethodResult
type MethodCall = core.MethodCall
type UIThread = core.UIThread
type ActivityBinding = core.ActivityBinding
type ActivityResult = core.ActivityResult

type CardEntryCommand = core.CardEntryCommand
type Finish = core.Finish
type ShowError = core.ShowError

type CardDetails = core.CardDetails
type Card = core.Card
type Money = core.Money
type Contact = core.Contact
type BuyerAction = core.BuyerAction
type Charge = core.Charge
type Store = core.Store
type VerificationRequest = core.VerificationRequest
type GooglePayNonceRequest = core.GooglePayNonceRequest

var (
	WithLogger          = core.WithLogger
	WithLoggerProvider  = core.WithLoggerProvider
	WithMetricsRecorder = core.WithMetricsRecorder
	WithErrorMapper     = core.WithErrorMapper
	WithConfigProvider  = core.WithConfigProvider
	WithOptionsResolver = core.WithOptionsResolver
	WithSDK             = core.WithSDK
	WithUIThread        = core.WithUIThread
)

var (
	ErrProtocolViolation   = core.ErrProtocolViolation
	ErrExchangeInterrupted = core.ErrExchangeInterrupted
	ErrCycleAbandoned      = core.ErrCycleAbandoned
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewPlugin(cfg Config, opts ...Option) (*Plugin, error) {
	return core.NewPlugin(cfg, opts...)
}
