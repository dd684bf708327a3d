package errors

var (
	ErrAccountNotFound = &DomainError{
		Code:    "ACCOUNT_NOT_FOUND",
		Message: "account not found",
	}
	ErrCustomerNotFound = &DomainError{
		Code:    "CUSTOMER_NOT_FOUND",
		Message: "customer not found",
	}
	ErrInvalidAmount = &DomainError{
		Code:    "INVALID_AMOUNT",
		Message: "amount must be greater than zero",
	}
	ErrInsufficientFunds = &DomainError{
		Code:    "INSUFFICIENT_FUNDS",
		Message: "insufficient funds",
	}
	ErrAccountCancelled = &DomainError{
		Code:    "ACCOUNT_CANCELLED",
		Message: "account is cancelled",
	}
	ErrNotOwner = &DomainError{
		Code:    "NOT_OWNER",
		Message: "account does not belong to the requesting customer",
	}
	ErrAlreadyCancelled = &DomainError{
		Code:    "ALREADY_CANCELLED",
		Message: "account is already cancelled",
	}
	ErrNonZeroBalance = &DomainError{
		Code:    "NON_ZERO_BALANCE",
		Message: "account balance must be zero to cancel",
	}
)
