package handlers

import (
	stderrors "errors"

	"cajero/internal/errors"
	"cajero/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// statusByCode maps domain error codes to HTTP statuses: not-found
// kinds to 404, validation kinds to 400, state conflicts to 409.
var statusByCode = map[string]int{
	"ACCOUNT_NOT_FOUND":      fiber.StatusNotFound,
	"CUSTOMER_NOT_FOUND":     fiber.StatusNotFound,
	"INVALID_CREDENTIALS":    fiber.StatusNotFound,
	"INVALID_AMOUNT":         fiber.StatusBadRequest,
	"AMOUNT_LIMIT_EXCEEDED":  fiber.StatusBadRequest,
	"INVALID_ACCOUNT_FORMAT": fiber.StatusBadRequest,
	"SAME_ACCOUNT":           fiber.StatusBadRequest,
	"NOT_OWNER":              fiber.StatusForbidden,
	"TICKET_EXPIRED":         fiber.StatusGone,
	"INSUFFICIENT_FUNDS":     fiber.StatusConflict,
	"EMPTY_SOURCE_ACCOUNT":   fiber.StatusConflict,
	"DESTINATION_CANCELLED":  fiber.StatusConflict,
	"ACCOUNT_CANCELLED":      fiber.StatusConflict,
	"ALREADY_CANCELLED":      fiber.StatusConflict,
	"NON_ZERO_BALANCE":       fiber.StatusConflict,
	"ALREADY_REDEEMED":       fiber.StatusConflict,
}

// domainError writes a domain failure with its mapped status, or a
// generic 500 for persistence failures.
func domainError(c *fiber.Ctx, err error) error {
	var de *errors.DomainError
	if stderrors.As(err, &de) {
		status, ok := statusByCode[de.Code]
		if !ok {
			status = fiber.StatusBadRequest
		}
		return response.Error(c, status, de.Code, de.Message)
	}
	return response.ServerError(c, "operation failed")
}
