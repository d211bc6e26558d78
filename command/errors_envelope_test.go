package command

import (
	"context"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-inapp-payments/core"
)

func TestMessages_ValidateReturnsRichError(t *testing.T) {
	cases := []struct {
		name  string
		msg   interface{ Validate() error }
		field string
	}{
		{name: "application id", msg: SetApplicationIDMessage{}, field: "applicationId"},
		{name: "verification location", msg: StartCardEntryFlowWithBuyerVerificationMessage{BuyerAction: "Store"}, field: "squareLocationId"},
		{name: "payment source", msg: StartBuyerVerificationFlowMessage{SquareLocationID: "LOC", BuyerAction: "Store"}, field: "paymentSourceId"},
		{name: "google pay environment", msg: InitializeGooglePayMessage{SquareLocationID: "LOC", Environment: 2}, field: "environment"},
		{name: "price", msg: RequestGooglePayNonceMessage{CurrencyCode: "USD", PriceStatus: 3}, field: "price"},
		{name: "price status", msg: RequestGooglePayNonceMessage{Price: "1.00", CurrencyCode: "USD", PriceStatus: 9}, field: "priceStatus"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.msg.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			var rich *goerrors.Error
			if !goerrors.As(err, &rich) {
				t.Fatalf("expected go-errors envelope, got %T", err)
			}
			if rich.Category != goerrors.CategoryValidation {
				t.Fatalf("expected validation category, got %q", rich.Category)
			}
			if rich.TextCode != core.PaymentsErrorBadInput {
				t.Fatalf("expected %q text code, got %q", core.PaymentsErrorBadInput, rich.TextCode)
			}
			if rich.Code != http.StatusBadRequest {
				t.Fatalf("expected %d code, got %d", http.StatusBadRequest, rich.Code)
			}
			validation := rich.AllValidationErrors()
			if len(validation) == 0 || validation[0].Field != tc.field {
				t.Fatalf("expected %s validation field, got %#v", tc.field, validation)
			}
		})
	}
}

func TestVerificationMessage_ChargeRequiresMoney(t *testing.T) {
	err := (StartCardEntryFlowWithBuyerVerificationMessage{SquareLocationID: "LOC", BuyerAction: "Charge"}).Validate()
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.Category != goerrors.CategoryValidation {
		t.Fatalf("expected validation envelope for missing money, got %v", err)
	}

	store := StartCardEntryFlowWithBuyerVerificationMessage{SquareLocationID: "LOC", BuyerAction: "Store"}
	if err := store.Validate(); err != nil {
		t.Fatalf("expected store without money to be valid: %v", err)
	}
}

func TestCommands_NilServiceReturnsRichError(t *testing.T) {
	var cmd *CompleteCardEntryCommand
	err := cmd.Execute(context.Background(), CompleteCardEntryMessage{})
	if err == nil {
		t.Fatalf("expected command dependency error")
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryInternal || rich.TextCode != core.PaymentsErrorInternal {
		t.Fatalf("unexpected envelope %q %q", rich.Category, rich.TextCode)
	}
	if rich.Code != http.StatusInternalServerError {
		t.Fatalf("expected %d code, got %d", http.StatusInternalServerError, rich.Code)
	}
}
