package inbound

import (
	"errors"

	"github.com/goliatone/go-inapp-payments/command"
	"github.com/goliatone/go-inapp-payments/core"
	"github.com/goliatone/go-inapp-payments/query"
)

// Inbound method names.
const (
	MethodSetApplicationID                        = "setApplicationId"
	MethodStartCardEntryFlow                      = "startCardEntryFlow"
	MethodStartGiftCardEntryFlow                  = "startGiftCardEntryFlow"
	MethodCompleteCardEntry                       = "completeCardEntry"
	MethodShowCardNonceProcessingError            = "showCardNonceProcessingError"
	MethodInitializeGooglePay                     = "initializeGooglePay"
	MethodCanUseGooglePay                         = "canUseGooglePay"
	MethodRequestGooglePayNonce                   = "requestGooglePayNonce"
	MethodStartCardEntryFlowWithBuyerVerification = "startCardEntryFlowWithBuyerVerification"
	MethodStartBuyerVerificationFlow              = "startBuyerVerificationFlow"
	MethodStartSecureRemoteCommerce               = "startSecureRemoteCommerce"
)

type PaymentsService interface {
	command.MutatingService
	query.GooglePayReader
}

// RegisterPaymentMethods wires every payment method on d.
func RegisterPaymentMethods(d *Dispatcher, service PaymentsService) error {
	if d == nil {
		return inboundBadInput("inbound: dispatcher is nil", nil)
	}
	if service == nil {
		return inboundBadInput("inbound: payments service is required", nil)
	}
	return errors.Join(
		d.Register(MethodSetApplicationID,
			CommandHandler[command.SetApplicationIDMessage](MethodSetApplicationID, command.NewSetApplicationIDCommand(service))),
		d.Register(MethodStartCardEntryFlow,
			CommandHandler[command.StartCardEntryFlowMessage](MethodStartCardEntryFlow, command.NewStartCardEntryFlowCommand(service))),
		d.Register(MethodStartGiftCardEntryFlow,
			CommandHandler[command.StartGiftCardEntryFlowMessage](MethodStartGiftCardEntryFlow, command.NewStartGiftCardEntryFlowCommand(service))),
		d.Register(MethodCompleteCardEntry,
			CommandHandler[command.CompleteCardEntryMessage](MethodCompleteCardEntry, command.NewCompleteCardEntryCommand(service))),
		d.Register(MethodShowCardNonceProcessingError,
			CommandHandler[command.ShowCardNonceProcessingErrorMessage](MethodShowCardNonceProcessingError, command.NewShowCardNonceProcessingErrorCommand(service))),
		d.Register(MethodInitializeGooglePay,
			CommandHandler[command.InitializeGooglePayMessage](MethodInitializeGooglePay, command.NewInitializeGooglePayCommand(service))),
		d.RegisterAsync(MethodCanUseGooglePay,
			QueryHandler[query.CanUseGooglePayMessage, bool](MethodCanUseGooglePay, query.NewCanUseGooglePayQuery(service))),
		d.Register(MethodRequestGooglePayNonce,
			CommandHandler[command.RequestGooglePayNonceMessage](MethodRequestGooglePayNonce, command.NewRequestGooglePayNonceCommand(service))),
		d.Register(MethodStartCardEntryFlowWithBuyerVerification,
			CommandHandler[command.StartCardEntryFlowWithBuyerVerificationMessage](
				MethodStartCardEntryFlowWithBuyerVerification,
				command.NewStartCardEntryFlowWithBuyerVerificationCommand(service),
			)),
		d.Register(MethodStartBuyerVerificationFlow,
			CommandHandler[command.StartBuyerVerificationFlowMessage](MethodStartBuyerVerificationFlow, command.NewStartBuyerVerificationFlowCommand(service))),
		d.RegisterNotImplemented(MethodStartSecureRemoteCommerce),
	)
}

// NewPluginDispatcher returns a dispatcher serving plugin on its UI thread.
func NewPluginDispatcher(plugin *core.Plugin, logger core.Logger) (*Dispatcher, error) {
	if plugin == nil {
		return nil, inboundBadInput("inbound: plugin is required", nil)
	}
	d := NewDispatcher(plugin.UIThread(), logger)
	if err := RegisterPaymentMethods(d, plugin); err != nil {
		return nil, err
	}
	return d, nil
}
