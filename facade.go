package payments

import (
	"context"
	"fmt"

	paymentscommand "github.com/goliatone/go-inapp-payments/command"
	"github.com/goliatone/go-inapp-payments/core"
	"github.com/goliatone/go-inapp-payments/inbound"
	paymentsquery "github.com/goliatone/go-inapp-payments/query"
)

type CommandQueryService interface {
	paymentscommand.MutatingService
	paymentsquery.GooglePayReader
}

type Commands struct {
	SetApplicationID                        *paymentscommand.SetApplicationIDCommand
	StartCardEntryFlow                      *paymentscommand.StartCardEntryFlowCommand
	StartGiftCardEntryFlow                  *paymentscommand.StartGiftCardEntryFlowCommand
	CompleteCardEntry                       *paymentscommand.CompleteCardEntryCommand
	ShowCardNonceProcessingError            *paymentscommand.ShowCardNonceProcessingErrorCommand
	StartCardEntryFlowWithBuyerVerification *paymentscommand.StartCardEntryFlowWithBuyerVerificationCommand
	StartBuyerVerificationFlow              *paymentscommand.StartBuyerVerificationFlowCommand
	InitializeGooglePay                     *paymentscommand.InitializeGooglePayCommand
	RequestGooglePayNonce                   *paymentscommand.RequestGooglePayNonceCommand
}

type Queries struct {
	CanUseGooglePay *paymentsquery.CanUseGooglePayQuery
}

// Facade exposes the payment operations as go-command handlers for Go
// callers that do not go through the method channel.
type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

func NewFacade(service CommandQueryService) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("payments: command/query service is required")
	}
	facade := &Facade{service: service}
	facade.commands = Commands{
		SetApplicationID:                        paymentscommand.NewSetApplicationIDCommand(service),
		StartCardEntryFlow:                      paymentscommand.NewStartCardEntryFlowCommand(service),
		StartGiftCardEntryFlow:                  paymentscommand.NewStartGiftCardEntryFlowCommand(service),
		CompleteCardEntry:                       paymentscommand.NewCompleteCardEntryCommand(service),
		ShowCardNonceProcessingError:            paymentscommand.NewShowCardNonceProcessingErrorCommand(service),
		StartCardEntryFlowWithBuyerVerification: paymentscommand.NewStartCardEntryFlowWithBuyerVerificationCommand(service),
		StartBuyerVerificationFlow:              paymentscommand.NewStartBuyerVerificationFlowCommand(service),
		InitializeGooglePay:                     paymentscommand.NewInitializeGooglePayCommand(service),
		RequestGooglePayNonce:                   paymentscommand.NewRequestGooglePayNonceCommand(service),
	}
	facade.queries = Queries{
		CanUseGooglePay: paymentsquery.NewCanUseGooglePayQuery(service),
	}
	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

// Bridge is a ready-to-host plugin: the native SDK bindings plus the
// dispatcher that answers channel method calls.
type Bridge struct {
	plugin     *core.Plugin
	dispatcher *inbound.Dispatcher
}

func NewBridge(cfg Config, opts ...Option) (*Bridge, error) {
	plugin, err := core.NewPlugin(cfg, opts...)
	if err != nil {
		return nil, err
	}
	dispatcher, err := inbound.NewPluginDispatcher(plugin, nil)
	if err != nil {
		return nil, err
	}
	return &Bridge{plugin: plugin, dispatcher: dispatcher}, nil
}

func (b *Bridge) Plugin() *Plugin {
	return b.plugin
}

func (b *Bridge) Dispatcher() *inbound.Dispatcher {
	return b.dispatcher
}

func (b *Bridge) AttachEngine(channel MethodChannel) error {
	return b.plugin.AttachEngine(channel)
}

func (b *Bridge) DetachEngine() {
	b.plugin.DetachEngine()
}

func (b *Bridge) AttachActivity(binding ActivityBinding) error {
	return b.plugin.AttachActivity(binding)
}

func (b *Bridge) ReattachActivity(binding ActivityBinding) error {
	return b.plugin.ReattachActivity(binding)
}

func (b *Bridge) DetachActivity() {
	b.plugin.DetachActivity()
}

// OnMethodCall answers one inbound method call. Call it on the UI thread.
func (b *Bridge) OnMethodCall(ctx context.Context, call MethodCall, result MethodResult) {
	b.dispatcher.OnMethodCall(ctx, call, result)
}
