package command

import (
	"context"

	"github.com/goliatone/go-inapp-payments/core"
)

type MutatingService interface {
	SetApplicationID(ctx context.Context, applicationID string) error
	StartCardEntryFlow(ctx context.Context, collectPostalCode bool) error
	StartGiftCardEntryFlow(ctx context.Context) error
	CompleteCardEntry(ctx context.Context) error
	ShowCardNonceProcessingError(ctx context.Context, message string) error
	StartCardEntryFlowWithBuyerVerification(ctx context.Context, req core.VerificationRequest) error
	StartBuyerVerificationFlow(ctx context.Context, req core.VerificationRequest) error
	InitializeGooglePay(ctx context.Context, locationID string, environment core.GooglePayEnvironment) error
	RequestGooglePayNonce(ctx context.Context, req core.GooglePayNonceRequest) error
}

type SetApplicationIDCommand struct {
	service MutatingService
}

func NewSetApplicationIDCommand(service MutatingService) *SetApplicationIDCommand {
	return &SetApplicationIDCommand{service: service}
}

func (c *SetApplicationIDCommand) Execute(ctx context.Context, msg SetApplicationIDMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: set application id service is required")
	}
	return c.service.SetApplicationID(ctx, msg.ApplicationID)
}

type StartCardEntryFlowCommand struct {
	service MutatingService
}

func NewStartCardEntryFlowCommand(service MutatingService) *StartCardEntryFlowCommand {
	return &StartCardEntryFlowCommand{service: service}
}

func (c *StartCardEntryFlowCommand) Execute(ctx context.Context, msg StartCardEntryFlowMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: card entry service is required")
	}
	return c.service.StartCardEntryFlow(ctx, msg.CollectPostalCode)
}

type StartGiftCardEntryFlowCommand struct {
	service MutatingService
}

func NewStartGiftCardEntryFlowCommand(service MutatingService) *StartGiftCardEntryFlowCommand {
	return &StartGiftCardEntryFlowCommand{service: service}
}

func (c *StartGiftCardEntryFlowCommand) Execute(ctx context.Context, _ StartGiftCardEntryFlowMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: card entry service is required")
	}
	return c.service.StartGiftCardEntryFlow(ctx)
}

type CompleteCardEntryCommand struct {
	service MutatingService
}

func NewCompleteCardEntryCommand(service MutatingService) *CompleteCardEntryCommand {
	return &CompleteCardEntryCommand{service: service}
}

func (c *CompleteCardEntryCommand) Execute(ctx context.Context, _ CompleteCardEntryMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: card entry service is required")
	}
	return c.service.CompleteCardEntry(ctx)
}

type ShowCardNonceProcessingErrorCommand struct {
	service MutatingService
}

func NewShowCardNonceProcessingErrorCommand(service MutatingService) *ShowCardNonceProcessingErrorCommand {
	return &ShowCardNonceProcessingErrorCommand{service: service}
}

func (c *ShowCardNonceProcessingErrorCommand) Execute(ctx context.Context, msg ShowCardNonceProcessingErrorMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: card entry service is required")
	}
	return c.service.ShowCardNonceProcessingError(ctx, msg.ErrorMessage)
}

type StartCardEntryFlowWithBuyerVerificationCommand struct {
	service MutatingService
}

func NewStartCardEntryFlowWithBuyerVerificationCommand(
	service MutatingService,
) *StartCardEntryFlowWithBuyerVerificationCommand {
	return &StartCardEntryFlowWithBuyerVerificationCommand{service: service}
}

func (c *StartCardEntryFlowWithBuyerVerificationCommand) Execute(
	ctx context.Context,
	msg StartCardEntryFlowWithBuyerVerificationMessage,
) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: card entry service is required")
	}
	return c.service.StartCardEntryFlowWithBuyerVerification(ctx, msg.Request())
}

type StartBuyerVerificationFlowCommand struct {
	service MutatingService
}

func NewStartBuyerVerificationFlowCommand(service MutatingService) *StartBuyerVerificationFlowCommand {
	return &StartBuyerVerificationFlowCommand{service: service}
}

func (c *StartBuyerVerificationFlowCommand) Execute(ctx context.Context, msg StartBuyerVerificationFlowMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: buyer verification service is required")
	}
	return c.service.StartBuyerVerificationFlow(ctx, msg.Request())
}

type InitializeGooglePayCommand struct {
	service MutatingService
}

func NewInitializeGooglePayCommand(service MutatingService) *InitializeGooglePayCommand {
	return &InitializeGooglePayCommand{service: service}
}

func (c *InitializeGooglePayCommand) Execute(ctx context.Context, msg InitializeGooglePayMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: google pay service is required")
	}
	return c.service.InitializeGooglePay(ctx, msg.SquareLocationID, core.GooglePayEnvironment(msg.Environment))
}

type RequestGooglePayNonceCommand struct {
	service MutatingService
}

func NewRequestGooglePayNonceCommand(service MutatingService) *RequestGooglePayNonceCommand {
	return &RequestGooglePayNonceCommand{service: service}
}

func (c *RequestGooglePayNonceCommand) Execute(ctx context.Context, msg RequestGooglePayNonceMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: google pay service is required")
	}
	return c.service.RequestGooglePayNonce(ctx, msg.Request())
}
