/**
 * @description
 * This file defines the domain error type shared by the account aggregate and
 * the application service. Each failure carries a machine-readable code so the
 * API layer can map it to an HTTP status without the domain knowing anything
 * about transport concerns.
 */
package domain

// ErrorCode identifies the kind of a domain failure.
type ErrorCode string

const (
	CodeAccountNotFound     ErrorCode = "ACCOUNT_NOT_FOUND"
	CodeHolderNotFound      ErrorCode = "HOLDER_NOT_FOUND"
	CodeDuplicateAccount    ErrorCode = "DUPLICATE_ACCOUNT"
	CodeAccountClosed       ErrorCode = "ACCOUNT_ALREADY_CLOSED"
	CodeInactiveAccount     ErrorCode = "INACTIVE_ACCOUNT"
	CodeBlockedAccount      ErrorCode = "BLOCKED_ACCOUNT"
	CodeInsufficientBalance ErrorCode = "INSUFFICIENT_BALANCE"
	CodeDailyLimitExceeded  ErrorCode = "DAILY_LIMIT_EXCEEDED"
	CodePositiveBalance     ErrorCode = "POSITIVE_BALANCE"
	CodeInvalidAmount       ErrorCode = "INVALID_AMOUNT"
	CodeInvalidDateRange    ErrorCode = "INVALID_DATE_RANGE"
	CodeConcurrentUpdate    ErrorCode = "CONCURRENT_UPDATE"
)

// DomainError is a business-rule violation raised by the account aggregate or
// the application service.
type DomainError struct {
	Code    ErrorCode
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is lets errors.Is match two domain errors by code, ignoring the message.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

var (
	ErrAccountAlreadyClosed = &DomainError{Code: CodeAccountClosed, Message: "account is already closed"}
	ErrInactiveAccount      = &DomainError{Code: CodeInactiveAccount, Message: "account is not active"}
	ErrBlockedAccount       = &DomainError{Code: CodeBlockedAccount, Message: "account is blocked"}
	ErrInsufficientBalance  = &DomainError{Code: CodeInsufficientBalance, Message: "insufficient balance for this withdrawal"}
	ErrDailyLimitExceeded   = &DomainError{Code: CodeDailyLimitExceeded, Message: "withdrawal exceeds the daily limit"}
	ErrPositiveBalance      = &DomainError{Code: CodePositiveBalance, Message: "account with a positive balance cannot be closed"}
	ErrInvalidAmount        = &DomainError{Code: CodeInvalidAmount, Message: "amount must be greater than zero"}
	ErrHolderNotFound       = &DomainError{Code: CodeHolderNotFound, Message: "holder not found"}
	ErrDuplicateAccount     = &DomainError{Code: CodeDuplicateAccount, Message: "holder already has an account"}
	ErrAccountNotFound      = &DomainError{Code: CodeAccountNotFound, Message: "account not found"}
	ErrInvalidDateRange     = &DomainError{Code: CodeInvalidDateRange, Message: "start date cannot be after end date"}
	ErrConcurrentUpdate     = &DomainError{Code: CodeConcurrentUpdate, Message: "account was modified concurrently, retry the operation"}
)
