package core

import (
	"context"
	"errors"
	"strings"
)

const (
	MethodCardEntryCancel            = "cardEntryCancel"
	MethodCardEntryComplete          = "cardEntryComplete"
	MethodOnBuyerVerificationSuccess = "onBuyerVerificationSuccess"
	MethodOnBuyerVerificationError   = "onBuyerVerificationError"
)

// VerificationRequest starts a flow that ends with a buyer verification
// token. PaymentSourceID is only used by StartBuyerVerificationFlow.
type VerificationRequest struct {
	CollectPostalCode bool
	LocationID        string
	BuyerAction       BuyerAction
	Contact           Contact
	PaymentSourceID   string
}

func (r VerificationRequest) context(paymentSourceID string) VerificationContext {
	return VerificationContext{
		LocationID:      strings.TrimSpace(r.LocationID),
		BuyerAction:     r.BuyerAction,
		Contact:         r.Contact.Normalized(),
		PaymentSourceID: paymentSourceID,
	}
}

// CardEntryModule drives the card entry and buyer verification SDKs for one
// attached activity.
type CardEntryModule struct {
	cardEntry    CardEntrySDK
	verification BuyerVerificationSDK
	activity     Activity
	ui           UIThread
	channel      MethodChannel
	exchange     *Exchange
	slot         VerificationSlot
	logger       Logger
}

func NewCardEntryModule(
	activity Activity,
	sdk SDK,
	ui UIThread,
	channel MethodChannel,
	logger Logger,
) (*CardEntryModule, error) {
	if sdk.CardEntry == nil {
		return nil, errors.New("core: card entry sdk is required")
	}
	if sdk.BuyerVerification == nil {
		return nil, errors.New("core: buyer verification sdk is required")
	}
	if ui == nil {
		return nil, errors.New("core: ui thread is required")
	}
	if channel == nil {
		return nil, errors.New("core: method channel is required")
	}
	logger = componentLogger(logger, "card_entry")
	m := &CardEntryModule{
		cardEntry:    sdk.CardEntry,
		verification: sdk.BuyerVerification,
		activity:     activity,
		ui:           ui,
		channel:      channel,
		exchange:     NewExchange(ui, channel, componentLogger(logger, "exchange")),
		logger:       logger,
	}
	m.cardEntry.SetBackgroundHandler(m.handleEnteredCard)
	return m, nil
}

func (m *CardEntryModule) Exchange() *Exchange {
	if m == nil {
		return nil
	}
	return m.exchange
}

// Close releases the background handler and abandons a pending exchange
// cycle.
func (m *CardEntryModule) Close() {
	if m == nil {
		return
	}
	m.cardEntry.SetBackgroundHandler(nil)
	m.exchange.Close()
	m.slot.Clear()
}

// handleEnteredCard runs on the card entry SDK worker.
func (m *CardEntryModule) handleEnteredCard(ctx context.Context, details CardDetails) (CardEntryCommand, error) {
	if m.slot.Held() {
		m.logger.Debug("card entry finished for buyer verification")
		return Finish{}, nil
	}
	cycleID := m.exchange.BeginCycle()
	if err := m.exchange.NotifyRemote(CardDetailsToMap(details)); err != nil {
		m.logger.Error("card details notification failed", "cycle_id", cycleID, "error", err)
		return nil, err
	}
	return m.exchange.AwaitCommand(ctx)
}

func (m *CardEntryModule) StartCardEntryFlow(ctx context.Context, collectPostalCode bool) error {
	m.slot.Clear()
	if err := m.cardEntry.StartCardEntry(m.activity, collectPostalCode); err != nil {
		return sdkOperationError(err, "core: start card entry failed")
	}
	return nil
}

func (m *CardEntryModule) StartGiftCardEntryFlow(ctx context.Context) error {
	m.slot.Clear()
	if err := m.cardEntry.StartGiftCardEntry(m.activity); err != nil {
		return sdkOperationError(err, "core: start gift card entry failed")
	}
	return nil
}

// CompleteCardEntry accepts the card details delivered by the last
// cardEntryDidObtainCardDetails notification.
func (m *CardEntryModule) CompleteCardEntry(ctx context.Context) error {
	return m.exchange.Publish(Finish{})
}

// ShowCardNonceProcessingError rejects the last card details and keeps the
// card entry screen open with message.
func (m *CardEntryModule) ShowCardNonceProcessingError(ctx context.Context, message string) error {
	return m.exchange.Publish(ShowError{Message: message})
}

func (m *CardEntryModule) StartCardEntryFlowWithBuyerVerification(ctx context.Context, req VerificationRequest) error {
	if m.slot.Hold(req.context("")) {
		m.logger.Warn("buyer verification context replaced before delivery")
	}
	if err := m.cardEntry.StartCardEntry(m.activity, req.CollectPostalCode); err != nil {
		m.slot.Clear()
		return sdkOperationError(err, "core: start card entry failed")
	}
	return nil
}

// StartBuyerVerificationFlow verifies a stored payment source without
// collecting a card.
func (m *CardEntryModule) StartBuyerVerificationFlow(ctx context.Context, req VerificationRequest) error {
	paymentSourceID := strings.TrimSpace(req.PaymentSourceID)
	vctx := req.context(paymentSourceID)
	if m.slot.Hold(vctx) {
		m.logger.Warn("buyer verification context replaced before delivery")
	}
	if err := m.verification.Verify(m.activity, vctx.Parameters(paymentSourceID)); err != nil {
		m.slot.Clear()
		return sdkOperationError(err, "core: start buyer verification failed")
	}
	return nil
}

// OnCardEntryResult handles the card entry activity result on the UI thread.
func (m *CardEntryModule) OnCardEntryResult(result ActivityResult) bool {
	resolved, err := m.cardEntry.ResolveResult(result.Data)
	if err != nil {
		m.logger.Error("card entry result could not be resolved", "error", err)
		return true
	}

	if resolved.IsSuccess() {
		if vctx, ok := m.slot.Context(); ok {
			m.slot.RecordCard(resolved.Details)
			if err := m.verification.Verify(m.activity, vctx.Parameters(resolved.Details.Nonce)); err != nil {
				m.slot.Clear()
				m.logger.Error("buyer verification could not start", "error", err)
				m.channel.InvokeMethod(
					MethodOnBuyerVerificationError,
					CallbackErrorFor(sdkOperationError(err, "core: start buyer verification failed")),
				)
			}
			return true
		}
	}
	if resolved.IsCanceled() {
		m.slot.Clear()
	}

	delay := m.cardEntry.CloseAnimationDelay(m.activity)
	channel := m.channel
	m.ui.PostDelayed(func() {
		switch {
		case resolved.IsCanceled():
			channel.InvokeMethod(MethodCardEntryCancel, nil)
		case resolved.IsSuccess():
			channel.InvokeMethod(MethodCardEntryComplete, nil)
		}
	}, delay)
	return true
}

// OnBuyerVerificationResult delivers the verification outcome and clears the
// held verification context.
func (m *CardEntryModule) OnBuyerVerificationResult(result ActivityResult) bool {
	resolved, err := m.verification.ResolveResult(result.Data)
	vctx, card, held := m.slot.Deliver()
	if !held {
		m.logger.Warn("buyer verification result arrived without a verification context")
	}
	if err != nil {
		m.logger.Error("buyer verification result could not be resolved", "error", err)
		m.channel.InvokeMethod(
			MethodOnBuyerVerificationError,
			CallbackErrorFor(sdkOperationError(err, "core: resolve buyer verification result failed")),
		)
		return true
	}

	switch {
	case resolved.IsSuccess():
		var payload map[string]any
		if vctx.PaymentSourceID == "" {
			payload = map[string]any{}
			if card != nil {
				payload = CardDetailsToMap(*card)
			}
		} else {
			payload = map[string]any{"nonce": vctx.PaymentSourceID}
		}
		payload["token"] = resolved.VerificationToken
		m.channel.InvokeMethod(MethodOnBuyerVerificationSuccess, payload)
	case resolved.IsError():
		m.channel.InvokeMethod(MethodOnBuyerVerificationError, SDKErrorObject(resolved.Err))
	default:
		m.logger.Warn("buyer verification result carried neither a token nor an error")
	}
	return true
}
