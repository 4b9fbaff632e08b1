package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// Account errors
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountInactive     = errors.New("account is not active")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")

	// Request errors
	ErrRequestNotFound   = errors.New("money request not found")
	ErrInvalidTransition = errors.New("invalid request state transition")
	ErrRequestConflict   = errors.New("request was modified concurrently")
	ErrSelfFulfillment   = errors.New("requester cannot fulfill own request")
	ErrForbidden         = errors.New("actor is not allowed to perform this operation")

	// Validation errors
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrAmountBelowMin   = errors.New("amount below minimum request amount")
	ErrUnknownProvider  = errors.New("unsupported mobile money provider")
	ErrUnknownStatus    = errors.New("unknown request status")
	ErrMissingRecipient = errors.New("recipient number is required")
	ErrMissingEvidence  = errors.New("fulfillment evidence requires transaction id and sender number")
	ErrInvalidEmail     = errors.New("a valid email address is required")
	ErrMissingName      = errors.New("full name is required")

	// Transfer errors
	ErrSameAccount      = errors.New("cannot transfer to same account")
	ErrCurrencyMismatch = errors.New("cannot transfer between different currencies")

	// Configuration errors
	ErrNoActiveFeeSettings = errors.New("no active fee settings configured")

	// Auth errors
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")

	// Ledger errors
	ErrLedgerInconsistent = errors.New("ledger replay does not reproduce balance")
)

// InsufficientBalanceError carries the computed shortfall so callers can
// surface it without re-deriving context.
type InsufficientBalanceError struct {
	AccountID string
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient wallet balance: need %s, have %s (short %s)",
		e.Required, e.Available, e.Required.Sub(e.Available))
}

// Is makes errors.Is(err, ErrInsufficientBalance) match.
func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// TransitionError reports a state machine guard failure with the states involved.
type TransitionError struct {
	RequestID string
	From      RequestStatus
	Event     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s request %s in status %s", e.Event, e.RequestID, e.From)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
