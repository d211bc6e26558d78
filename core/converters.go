package core

// CardToMap renders a card the way the application layer expects it.
// postalCode is nil when no postal code was collected.
func CardToMap(card Card) map[string]any {
	var postalCode any
	if card.PostalCode != "" {
		postalCode = card.PostalCode
	}
	return map[string]any{
		"brand":           string(card.Brand),
		"lastFourDigits":  card.LastFourDigits,
		"expirationMonth": card.ExpirationMonth,
		"expirationYear":  card.ExpirationYear,
		"postalCode":      postalCode,
		"type":            string(card.Type),
		"prepaidType":     string(card.PrepaidType),
	}
}

func CardDetailsToMap(details CardDetails) map[string]any {
	return map[string]any{
		"nonce": details.Nonce,
		"card":  CardToMap(details.Card),
	}
}
