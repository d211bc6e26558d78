package command

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-inapp-payments/core"
)

const (
	TypeSetApplicationID                        = "payments.command.application_id.set"
	TypeStartCardEntryFlow                      = "payments.command.card_entry.start"
	TypeStartGiftCardEntryFlow                  = "payments.command.card_entry.start_gift_card"
	TypeCompleteCardEntry                       = "payments.command.card_entry.complete"
	TypeShowCardNonceProcessingError            = "payments.command.card_entry.show_error"
	TypeStartCardEntryFlowWithBuyerVerification = "payments.command.card_entry.start_with_verification"
	TypeStartBuyerVerificationFlow              = "payments.command.buyer_verification.start"
	TypeInitializeGooglePay                     = "payments.command.google_pay.initialize"
	TypeRequestGooglePayNonce                   = "payments.command.google_pay.request_nonce"
)

type SetApplicationIDMessage struct {
	ApplicationID string `mapstructure:"applicationId"`
}

func (SetApplicationIDMessage) Type() string { return TypeSetApplicationID }

func (m SetApplicationIDMessage) Validate() error {
	if strings.TrimSpace(m.ApplicationID) == "" {
		return commandValidationError("applicationId", "application id is required")
	}
	return nil
}

type StartCardEntryFlowMessage struct {
	CollectPostalCode bool `mapstructure:"collectPostalCode"`
}

func (StartCardEntryFlowMessage) Type() string { return TypeStartCardEntryFlow }

type StartGiftCardEntryFlowMessage struct{}

func (StartGiftCardEntryFlowMessage) Type() string { return TypeStartGiftCardEntryFlow }

type CompleteCardEntryMessage struct{}

func (CompleteCardEntryMessage) Type() string { return TypeCompleteCardEntry }

type ShowCardNonceProcessingErrorMessage struct {
	ErrorMessage string `mapstructure:"errorMessage"`
}

func (ShowCardNonceProcessingErrorMessage) Type() string { return TypeShowCardNonceProcessingError }

type Money struct {
	Amount       int64  `mapstructure:"amount"`
	CurrencyCode string `mapstructure:"currencyCode"`
}

func (m Money) toCore() core.Money {
	return core.Money{Amount: m.Amount, CurrencyCode: strings.ToUpper(strings.TrimSpace(m.CurrencyCode))}
}

type Contact struct {
	GivenName    string   `mapstructure:"givenName"`
	FamilyName   string   `mapstructure:"familyName"`
	AddressLines []string `mapstructure:"addressLines"`
	City         string   `mapstructure:"city"`
	CountryCode  string   `mapstructure:"countryCode"`
	Email        string   `mapstructure:"email"`
	Phone        string   `mapstructure:"phone"`
	PostalCode   string   `mapstructure:"postalCode"`
	Region       string   `mapstructure:"region"`
}

func (c Contact) toCore() core.Contact {
	return core.Contact{
		GivenName:    c.GivenName,
		FamilyName:   c.FamilyName,
		AddressLines: append([]string(nil), c.AddressLines...),
		City:         c.City,
		CountryCode:  c.CountryCode,
		Email:        c.Email,
		Phone:        c.Phone,
		PostalCode:   c.PostalCode,
		Region:       c.Region,
	}.Normalized()
}

type StartCardEntryFlowWithBuyerVerificationMessage struct {
	CollectPostalCode bool    `mapstructure:"collectPostalCode"`
	SquareLocationID  string  `mapstructure:"squareLocationId"`
	BuyerAction       string  `mapstructure:"buyerAction"`
	Money             Money   `mapstructure:"money"`
	Contact           Contact `mapstructure:"contact"`
}

func (StartCardEntryFlowWithBuyerVerificationMessage) Type() string {
	return TypeStartCardEntryFlowWithBuyerVerification
}

func (m StartCardEntryFlowWithBuyerVerificationMessage) Validate() error {
	return validateVerification(m.SquareLocationID, m.BuyerAction, m.Money)
}

func (m StartCardEntryFlowWithBuyerVerificationMessage) Request() core.VerificationRequest {
	return core.VerificationRequest{
		CollectPostalCode: m.CollectPostalCode,
		LocationID:        strings.TrimSpace(m.SquareLocationID),
		BuyerAction:       core.ParseBuyerAction(m.BuyerAction, m.Money.toCore()),
		Contact:           m.Contact.toCore(),
	}
}

type StartBuyerVerificationFlowMessage struct {
	SquareLocationID string  `mapstructure:"squareLocationId"`
	BuyerAction      string  `mapstructure:"buyerAction"`
	Money            Money   `mapstructure:"money"`
	Contact          Contact `mapstructure:"contact"`
	PaymentSourceID  string  `mapstructure:"paymentSourceId"`
}

func (StartBuyerVerificationFlowMessage) Type() string { return TypeStartBuyerVerificationFlow }

func (m StartBuyerVerificationFlowMessage) Validate() error {
	if strings.TrimSpace(m.PaymentSourceID) == "" {
		return commandValidationError("paymentSourceId", "payment source id is required")
	}
	return validateVerification(m.SquareLocationID, m.BuyerAction, m.Money)
}

func (m StartBuyerVerificationFlowMessage) Request() core.VerificationRequest {
	return core.VerificationRequest{
		LocationID:      strings.TrimSpace(m.SquareLocationID),
		BuyerAction:     core.ParseBuyerAction(m.BuyerAction, m.Money.toCore()),
		Contact:         m.Contact.toCore(),
		PaymentSourceID: strings.TrimSpace(m.PaymentSourceID),
	}
}

type InitializeGooglePayMessage struct {
	SquareLocationID string `mapstructure:"squareLocationId"`
	Environment      int    `mapstructure:"environment"`
}

func (InitializeGooglePayMessage) Type() string { return TypeInitializeGooglePay }

func (m InitializeGooglePayMessage) Validate() error {
	if strings.TrimSpace(m.SquareLocationID) == "" {
		return commandValidationError("squareLocationId", "square location id is required")
	}
	switch core.GooglePayEnvironment(m.Environment) {
	case core.GooglePayEnvironmentProduction, core.GooglePayEnvironmentTest:
		return nil
	default:
		return commandValidationError("environment", fmt.Sprintf("invalid google pay environment %d", m.Environment))
	}
}

type RequestGooglePayNonceMessage struct {
	Price        string `mapstructure:"price"`
	CurrencyCode string `mapstructure:"currencyCode"`
	PriceStatus  int    `mapstructure:"priceStatus"`
}

func (RequestGooglePayNonceMessage) Type() string { return TypeRequestGooglePayNonce }

func (m RequestGooglePayNonceMessage) Validate() error {
	if strings.TrimSpace(m.Price) == "" {
		return commandValidationError("price", "price is required")
	}
	if strings.TrimSpace(m.CurrencyCode) == "" {
		return commandValidationError("currencyCode", "currency code is required")
	}
	switch core.PriceStatus(m.PriceStatus) {
	case core.PriceStatusNotCurrentlyKnown, core.PriceStatusEstimated, core.PriceStatusFinal:
		return nil
	default:
		return commandValidationError("priceStatus", fmt.Sprintf("invalid price status %d", m.PriceStatus))
	}
}

func (m RequestGooglePayNonceMessage) Request() core.GooglePayNonceRequest {
	return core.GooglePayNonceRequest{
		Price:        strings.TrimSpace(m.Price),
		CurrencyCode: strings.ToUpper(strings.TrimSpace(m.CurrencyCode)),
		PriceStatus:  core.PriceStatus(m.PriceStatus),
	}
}

func validateVerification(locationID string, buyerAction string, money Money) error {
	if strings.TrimSpace(locationID) == "" {
		return commandValidationError("squareLocationId", "square location id is required")
	}
	if _, ok := core.ParseBuyerAction(buyerAction, money.toCore()).(core.Charge); ok {
		if err := money.toCore().Validate(); err != nil {
			return commandWrapValidation(err, "command: invalid money")
		}
	}
	return nil
}
