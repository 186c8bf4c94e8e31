package utils

import (
	"fmt"
	"net/http"
)

// ErrorKind classifies a failure so handlers can pick the right HTTP status
// and the terminal can decide whether to retry, re-prompt, or give up.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindInvalidState
	KindUnauthorized
	KindValidation
	KindConflict
	KindInternal
)

type AppError struct {
	Kind    ErrorKind
	Message string
	Detail  interface{}
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidState:
		return http.StatusUnprocessableEntity
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Kind == kind
}

func ErrSessionNotFound(sessionID uint) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf("session %d not found", sessionID)}
}

func ErrTableNotFound(tableID uint) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf("table %d not found", tableID)}
}

func ErrTransactionNotFound(transactionID uint) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf("transaction %d not found", transactionID)}
}

func ErrDiscountNotFound(discountID uint) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf("discount %d not found", discountID)}
}

// ErrSessionNotOpen means the session left 'occupied' before the request;
// cart mutations and settlement are only legal while occupied.
func ErrSessionNotOpen(sessionID uint, status string) *AppError {
	return &AppError{
		Kind:    KindInvalidState,
		Message: fmt.Sprintf("session %d is %s, not occupied", sessionID, status),
	}
}

// ErrSessionAlreadyClosed means a concurrent transition won the race.
func ErrSessionAlreadyClosed(sessionID uint) *AppError {
	return &AppError{
		Kind:    KindConflict,
		Message: fmt.Sprintf("session %d was already settled or cancelled", sessionID),
	}
}

func ErrTableOccupied(tableID uint) *AppError {
	return &AppError{
		Kind:    KindConflict,
		Message: fmt.Sprintf("table %d already has an active session", tableID),
	}
}

func ErrInvalidStaffPIN() *AppError {
	return &AppError{Kind: KindUnauthorized, Message: "PIN invalid"}
}

// ErrPaymentAmountMismatch carries the computed total so staff can correct
// the split without a second round trip.
func ErrPaymentAmountMismatch(owed, received float64) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Message: fmt.Sprintf("amounts don't match: owe %s, received %s", FormatAmount(owed), FormatAmount(received)),
		Detail: map[string]float64{
			"owed":     owed,
			"received": received,
		},
	}
}

func ErrDiscountUnavailable(discountID uint) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Message: fmt.Sprintf("discount %d is inactive or outside its validity window", discountID),
	}
}

func ErrValidation(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

func ErrInternal(err error) *AppError {
	return &AppError{Kind: KindInternal, Message: err.Error()}
}
