package query

const TypeCanUseGooglePay = "payments.query.google_pay.can_use"

type CanUseGooglePayMessage struct{}

func (CanUseGooglePayMessage) Type() string { return TypeCanUseGooglePay }
