package gocommand

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-command"
)

type okMessage struct{}

func (okMessage) Type() string { return "payments.command.ok" }

type invalidMessage struct{}

func (invalidMessage) Type() string { return "" }

type failingMessage struct{}

func (failingMessage) Type() string { return "payments.command.fail" }

func (failingMessage) Validate() error { return errors.New("invalid payload") }

func TestValidateMessageContract(t *testing.T) {
	if err := ValidateMessageContract(okMessage{}); err != nil {
		t.Fatalf("expected valid message, got %v", err)
	}
	if err := ValidateMessageContract(invalidMessage{}); err == nil {
		t.Fatalf("expected empty type to fail contract validation")
	}
	if err := ValidateMessageContract(failingMessage{}); err == nil {
		t.Fatalf("expected Validate() failure to bubble")
	}
}

func TestExecuteValidatesBeforeRunning(t *testing.T) {
	executed := 0
	cmd := command.CommandFunc[failingMessage](func(context.Context, failingMessage) error {
		executed++
		return nil
	})
	if err := Execute[failingMessage](context.Background(), cmd, failingMessage{}); err == nil {
		t.Fatalf("expected validation error")
	}
	if executed != 0 {
		t.Fatalf("expected command not to run on invalid message, ran %d times", executed)
	}

	okCmd := command.CommandFunc[okMessage](func(context.Context, okMessage) error {
		executed++
		return nil
	})
	if err := Execute[okMessage](context.Background(), okCmd, okMessage{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if executed != 1 {
		t.Fatalf("expected one execution, got %d", executed)
	}
}

func TestQueryReturnsResult(t *testing.T) {
	qry := command.QueryFunc[okMessage, bool](func(context.Context, okMessage) (bool, error) {
		return true, nil
	})
	ready, err := Query[okMessage, bool](context.Background(), qry, okMessage{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if !ready {
		t.Fatalf("expected query result to pass through")
	}
	if _, err := Query[invalidMessage, bool](context.Background(), nil, invalidMessage{}); err == nil {
		t.Fatalf("expected nil query to fail")
	}
}
