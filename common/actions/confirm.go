package actions

import (
	"context"
	"errors"
	"fmt"
)

// ErrCancelled is returned when the user declines a confirmation.
var ErrCancelled = errors.New("action cancelled")

// Prompt describes what the user is being asked to confirm.
type Prompt struct {
	Title   string
	Message string
	Confirm string
}

// ConfirmFunc asks the user to approve a prompt. It is supplied by whatever
// surface owns the dialog: a terminal question, an HTTP confirmation flag.
type ConfirmFunc func(ctx context.Context, p Prompt) (bool, error)

// AlwaysConfirm approves every prompt, for --force style invocations.
func AlwaysConfirm(context.Context, Prompt) (bool, error) { return true, nil }

// Confirmed runs do only after confirm approves p. A nil confirm is treated
// as a refusal so that destructive calls cannot be made by accident.
func Confirmed(ctx context.Context, confirm ConfirmFunc, p Prompt, do func(context.Context) error) error {
	if confirm == nil {
		return ErrCancelled
	}
	ok, err := confirm(ctx, p)
	if err != nil {
		return fmt.Errorf("confirmation failed: %w", err)
	}
	if !ok {
		return ErrCancelled
	}
	return do(ctx)
}
