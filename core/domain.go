package core

import (
	"fmt"
	"strings"
)

// Activity result codes. ResultWalletError is reported by the wallet sheet
// when it could not be launched.
const (
	ResultOK          = -1
	ResultCanceled    = 0
	ResultWalletError = 1
)

type CardBrand string

const (
	CardBrandOther             CardBrand = "OTHER_BRAND"
	CardBrandVisa              CardBrand = "VISA"
	CardBrandMastercard        CardBrand = "MASTERCARD"
	CardBrandAmericanExpress   CardBrand = "AMERICAN_EXPRESS"
	CardBrandDiscover          CardBrand = "DISCOVER"
	CardBrandDiscoverDiners    CardBrand = "DISCOVER_DINERS"
	CardBrandJCB               CardBrand = "JCB"
	CardBrandChinaUnionPay     CardBrand = "CHINA_UNION_PAY"
	CardBrandSquareGiftCard    CardBrand = "SQUARE_GIFT_CARD"
	CardBrandSquareCapitalCard CardBrand = "SQUARE_CAPITAL_CARD"
)

type CardType string

const (
	CardTypeDebit   CardType = "DEBIT"
	CardTypeCredit  CardType = "CREDIT"
	CardTypeUnknown CardType = "UNKNOWN"
)

type CardPrepaidType string

const (
	CardPrepaidTypePrepaid    CardPrepaidType = "PREPAID"
	CardPrepaidTypeNotPrepaid CardPrepaidType = "NOT_PREPAID"
	CardPrepaidTypeUnknown    CardPrepaidType = "UNKNOWN"
)

type Card struct {
	Brand           CardBrand
	LastFourDigits  string
	ExpirationMonth int
	ExpirationYear  int
	// PostalCode is empty when postal code collection was disabled.
	PostalCode  string
	Type        CardType
	PrepaidType CardPrepaidType
}

type CardDetails struct {
	Nonce string
	Card  Card
}

type CardEntryResultStatus string

const (
	CardEntryResultSuccess  CardEntryResultStatus = "success"
	CardEntryResultCanceled CardEntryResultStatus = "canceled"
)

type CardEntryResult struct {
	Status  CardEntryResultStatus
	Details CardDetails
}

func (r CardEntryResult) IsSuccess() bool  { return r.Status == CardEntryResultSuccess }
func (r CardEntryResult) IsCanceled() bool { return r.Status == CardEntryResultCanceled }

type Money struct {
	Amount       int64
	CurrencyCode string
}

func (m Money) Validate() error {
	if strings.TrimSpace(m.CurrencyCode) == "" {
		return fmt.Errorf("core: money currency code is required")
	}
	if m.Amount < 0 {
		return fmt.Errorf("core: money amount must not be negative")
	}
	return nil
}

// BuyerAction is either Charge or Store.
type BuyerAction interface {
	isBuyerAction()
	Name() string
}

type Charge struct {
	Money Money
}

func (Charge) isBuyerAction() {}
func (Charge) Name() string   { return "Charge" }

type Store struct{}

func (Store) isBuyerAction() {}
func (Store) Name() string   { return "Store" }

// ParseBuyerAction maps the channel's action name to a BuyerAction. Any name
// other than "Store" charges money.
func ParseBuyerAction(name string, money Money) BuyerAction {
	if strings.TrimSpace(name) == "Store" {
		return Store{}
	}
	return Charge{Money: money}
}

const DefaultCountryCode = "US"

type Contact struct {
	GivenName    string
	FamilyName   string
	AddressLines []string
	City         string
	CountryCode  string
	Email        string
	Phone        string
	PostalCode   string
	Region       string
}

// Normalized fills the defaults the verification SDK expects.
func (c Contact) Normalized() Contact {
	out := c
	out.AddressLines = append([]string{}, c.AddressLines...)
	out.CountryCode = strings.ToUpper(strings.TrimSpace(c.CountryCode))
	if out.CountryCode == "" {
		out.CountryCode = DefaultCountryCode
	}
	return out
}

type VerificationParameters struct {
	PaymentSourceID string
	BuyerAction     BuyerAction
	LocationID      string
	Contact         Contact
}

// SDKError is the structured failure reported by the native SDKs. It is
// passed through to the channel unchanged.
type SDKError struct {
	Code         string
	Message      string
	DebugCode    string
	DebugMessage string
}

func (e *SDKError) Error() string {
	if e == nil {
		return ""
	}
	if e.DebugMessage != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.DebugMessage)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type BuyerVerificationResult struct {
	VerificationToken string
	Err               *SDKError
}

func (r BuyerVerificationResult) IsSuccess() bool { return r.Err == nil && r.VerificationToken != "" }
func (r BuyerVerificationResult) IsError() bool   { return r.Err != nil }

type GooglePayEnvironment int

const (
	GooglePayEnvironmentProduction GooglePayEnvironment = 1
	GooglePayEnvironmentTest       GooglePayEnvironment = 3
)

type PriceStatus int

const (
	PriceStatusNotCurrentlyKnown PriceStatus = 1
	PriceStatusEstimated         PriceStatus = 2
	PriceStatusFinal             PriceStatus = 3
)

type PaymentDataRequest struct {
	LocationID   string
	TotalPrice   string
	CurrencyCode string
	PriceStatus  PriceStatus
}
