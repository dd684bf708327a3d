package errors

var (
	ErrInvalidCredentials = &DomainError{
		Code:    "INVALID_CREDENTIALS",
		Message: "folio or password is incorrect",
	}
	ErrTicketExpired = &DomainError{
		Code:    "TICKET_EXPIRED",
		Message: "withdrawal ticket has expired",
	}
	ErrAlreadyRedeemed = &DomainError{
		Code:    "ALREADY_REDEEMED",
		Message: "withdrawal ticket was already redeemed",
	}
)
