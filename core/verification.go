package core

import "sync"

type verificationState int

const (
	verificationNone verificationState = iota
	verificationHeld
	verificationDelivered
)

// VerificationContext is the buyer verification input captured when a
// verification flow starts. An empty PaymentSourceID means the card
// collected by the card entry flow is the payment source.
type VerificationContext struct {
	LocationID      string
	BuyerAction     BuyerAction
	Contact         Contact
	PaymentSourceID string
}

// Parameters builds the SDK request for paymentSourceID.
func (c VerificationContext) Parameters(paymentSourceID string) VerificationParameters {
	return VerificationParameters{
		PaymentSourceID: paymentSourceID,
		BuyerAction:     c.BuyerAction,
		LocationID:      c.LocationID,
		Contact:         c.Contact.Normalized(),
	}
}

// VerificationSlot holds at most one verification context between the call
// that starts verification and delivery of its result.
type VerificationSlot struct {
	mu    sync.Mutex
	state verificationState
	ctx   VerificationContext
	card  *CardDetails
}

// Hold stores ctx and reports whether it replaced a context that was never
// delivered.
func (s *VerificationSlot) Hold(ctx VerificationContext) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	replaced := s.state == verificationHeld
	s.state = verificationHeld
	s.ctx = ctx
	s.card = nil
	return replaced
}

func (s *VerificationSlot) Held() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == verificationHeld
}

func (s *VerificationSlot) Context() (VerificationContext, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != verificationHeld {
		return VerificationContext{}, false
	}
	return s.ctx, true
}

// RecordCard keeps the card that is being verified so the success payload
// can carry its details.
func (s *VerificationSlot) RecordCard(details CardDetails) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != verificationHeld {
		return false
	}
	card := details
	s.card = &card
	return true
}

// Deliver hands out the held context and card, then clears the slot.
func (s *VerificationSlot) Deliver() (VerificationContext, *CardDetails, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != verificationHeld {
		return VerificationContext{}, nil, false
	}
	ctx, card := s.ctx, s.card
	s.state = verificationDelivered
	s.ctx = VerificationContext{}
	s.card = nil
	return ctx, card, true
}

func (s *VerificationSlot) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = verificationNone
	s.ctx = VerificationContext{}
	s.card = nil
}
