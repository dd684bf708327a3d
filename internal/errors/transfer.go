package errors

var (
	ErrSameAccount = &DomainError{
		Code:    "SAME_ACCOUNT",
		Message: "source and destination accounts are the same",
	}
	ErrAmountLimitExceeded = &DomainError{
		Code:    "AMOUNT_LIMIT_EXCEEDED",
		Message: "amount exceeds the per-transfer limit",
	}
	ErrInvalidAccountFormat = &DomainError{
		Code:    "INVALID_ACCOUNT_FORMAT",
		Message: "account number must be exactly 18 digits",
	}
	ErrEmptySourceAccount = &DomainError{
		Code:    "EMPTY_SOURCE_ACCOUNT",
		Message: "source account has no funds",
	}
	ErrDestinationCancelled = &DomainError{
		Code:    "DESTINATION_CANCELLED",
		Message: "destination account is cancelled",
	}
)
