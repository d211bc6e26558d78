package inbound

import (
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-inapp-payments/core"
)

func inboundError(
	message string,
	category goerrors.Category,
	code int,
	textCode string,
	metadata map[string]any,
) error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func inboundWrapError(
	source error,
	category goerrors.Category,
	message string,
	code int,
	textCode string,
	metadata map[string]any,
) error {
	if source == nil {
		return inboundError(message, category, code, textCode, metadata)
	}
	err := goerrors.Wrap(source, category, message).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func inboundBadInput(message string, metadata map[string]any) error {
	return inboundError(
		message,
		goerrors.CategoryBadInput,
		http.StatusBadRequest,
		core.PaymentsErrorBadInput,
		metadata,
	)
}

func inboundDecodeError(source error, method string) error {
	return inboundWrapError(
		source,
		goerrors.CategoryBadInput,
		"inbound: invalid arguments",
		http.StatusBadRequest,
		core.PaymentsErrorBadInput,
		map[string]any{"method": method},
	)
}

func inboundPanicError(method string, recovered any) error {
	return inboundError(
		fmt.Sprintf("inbound: %s handler panicked: %v", method, recovered),
		goerrors.CategoryInternal,
		http.StatusInternalServerError,
		core.PaymentsErrorInternal,
		map[string]any{"method": method},
	)
}
