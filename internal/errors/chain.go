package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is the stable classification of a market interaction failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindUnauthorized
	KindAlreadyBet
	KindMarketClosed
	KindNotYetClosed
	KindInsufficientFunds
	KindUserRejected
	KindReverted
	KindNotFound
	KindTransientRead
)

var kindNames = map[Kind]string{
	KindUnknown:           "Unknown",
	KindValidation:        "ValidationError",
	KindUnauthorized:      "Unauthorized",
	KindAlreadyBet:        "AlreadyBet",
	KindMarketClosed:      "MarketClosed",
	KindNotYetClosed:      "NotYetClosed",
	KindInsufficientFunds: "InsufficientFunds",
	KindUserRejected:      "UserRejected",
	KindReverted:          "ChainReverted",
	KindNotFound:          "NotFound",
	KindTransientRead:     "TransientReadFailure",
}

// kindMessages holds the only user-facing text a chain failure may carry.
var kindMessages = map[Kind]string{
	KindUnknown:           "Something went wrong while talking to the contract. Please try again.",
	KindValidation:        "The request is invalid.",
	KindUnauthorized:      "Only the contract organizer can perform this action.",
	KindAlreadyBet:        "You have already placed a bet on this market.",
	KindMarketClosed:      "Betting is closed for this market.",
	KindNotYetClosed:      "The betting window for this market has not ended yet.",
	KindInsufficientFunds: "Insufficient funds to cover the bet and gas.",
	KindUserRejected:      "The transaction was rejected in the wallet.",
	KindReverted:          "Transaction reverted by contract.",
	KindNotFound:          "Market not found.",
	KindTransientRead:     "Could not read from the chain. Please retry.",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// DefaultMessage returns the fixed user-facing message for the kind.
func (k Kind) DefaultMessage() string {
	if msg, ok := kindMessages[k]; ok {
		return msg
	}
	return kindMessages[KindUnknown]
}

// ChainError is a classified failure of a contract read or write. Message is
// safe to show to users; Err keeps the underlying cause for logs.
type ChainError struct {
	Kind      Kind
	Operation string
	Message   string
	Reason    string
	Err       error
}

func (e *ChainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s during %s: %s: %v", e.Kind, e.Operation, e.UserMessage(), e.Err)
	}
	return fmt.Sprintf("%s during %s: %s", e.Kind, e.Operation, e.UserMessage())
}

func (e *ChainError) Unwrap() error { return e.Err }

// UserMessage returns the human-readable message for display.
func (e *ChainError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.DefaultMessage()
}

// NewChainError builds a ChainError with the kind's default message.
func NewChainError(kind Kind, operation string, err error) *ChainError {
	return &ChainError{Kind: kind, Operation: operation, Err: err}
}

// NewValidationError reports a local rejection made before any network call.
func NewValidationError(operation, message string) *ChainError {
	return &ChainError{Kind: KindValidation, Operation: operation, Message: message}
}

// KindOf extracts the Kind of err, or KindUnknown if err is not a ChainError.
func KindOf(err error) Kind {
	var ce *ChainError
	if stderrors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

// IsKind reports whether err is a ChainError of the given kind.
func IsKind(err error, kind Kind) bool {
	var ce *ChainError
	return stderrors.As(err, &ce) && ce.Kind == kind
}
