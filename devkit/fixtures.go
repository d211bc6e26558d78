package devkit

import "github.com/goliatone/go-inapp-payments/core"

// SampleCardDetails returns tokenized details for a Visa card.
func SampleCardDetails(nonce string) core.CardDetails {
	return core.CardDetails{
		Nonce: nonce,
		Card: core.Card{
			Brand:           core.CardBrandVisa,
			LastFourDigits:  "1111",
			ExpirationMonth: 12,
			ExpirationYear:  2030,
			PostalCode:      "94103",
			Type:            core.CardTypeCredit,
			PrepaidType:     core.CardPrepaidTypeNotPrepaid,
		},
	}
}

func SampleContact() core.Contact {
	return core.Contact{
		GivenName:    "Ada",
		FamilyName:   "Lovelace",
		AddressLines: []string{"500 Electric Ave", "Suite 600"},
		City:         "New York",
		CountryCode:  "us",
		Email:        "ada@example.com",
		Phone:        "8001234567",
		PostalCode:   "10003",
		Region:       "NY",
	}
}
