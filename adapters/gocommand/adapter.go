package gocommand

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-command"
)

// ValidateMessageContract enforces Type() plus optional Validate() contract.
// Errors returned by Validate() are passed through unwrapped.
func ValidateMessageContract(msg any) error {
	m, ok := msg.(command.Message)
	if !ok {
		return fmt.Errorf("gocommand: message must implement Type() string")
	}
	if strings.TrimSpace(m.Type()) == "" {
		return fmt.Errorf("gocommand: message type is required")
	}
	if validator, ok := msg.(interface{ Validate() error }); ok {
		return validator.Validate()
	}
	return command.ValidateMessage(msg)
}

// Execute validates msg and runs cmd with it.
func Execute[T any](ctx context.Context, cmd command.Commander[T], msg T) error {
	if cmd == nil {
		return fmt.Errorf("gocommand: command is required")
	}
	if err := ValidateMessageContract(msg); err != nil {
		return err
	}
	return cmd.Execute(ctx, msg)
}

// Query validates msg and runs qry with it.
func Query[T any, R any](ctx context.Context, qry command.Querier[T, R], msg T) (R, error) {
	var zero R
	if qry == nil {
		return zero, fmt.Errorf("gocommand: query is required")
	}
	if err := ValidateMessageContract(msg); err != nil {
		return zero, err
	}
	return qry.Query(ctx, msg)
}
