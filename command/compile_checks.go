package command

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-inapp-payments/core"
)

var (
	_ gocmd.Commander[SetApplicationIDMessage]                        = (*SetApplicationIDCommand)(nil)
	_ gocmd.Commander[StartCardEntryFlowMessage]                      = (*StartCardEntryFlowCommand)(nil)
	_ gocmd.Commander[StartGiftCardEntryFlowMessage]                  = (*StartGiftCardEntryFlowCommand)(nil)
	_ gocmd.Commander[CompleteCardEntryMessage]                       = (*CompleteCardEntryCommand)(nil)
	_ gocmd.Commander[ShowCardNonceProcessingErrorMessage]            = (*ShowCardNonceProcessingErrorCommand)(nil)
	_ gocmd.Commander[StartCardEntryFlowWithBuyerVerificationMessage] = (*StartCardEntryFlowWithBuyerVerificationCommand)(nil)
	_ gocmd.Commander[StartBuyerVerificationFlowMessage]              = (*StartBuyerVerificationFlowCommand)(nil)
	_ gocmd.Commander[InitializeGooglePayMessage]                     = (*InitializeGooglePayCommand)(nil)
	_ gocmd.Commander[RequestGooglePayNonceMessage]                   = (*RequestGooglePayNonceCommand)(nil)

	_ MutatingService = (*core.Plugin)(nil)
)
