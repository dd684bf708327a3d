package handlers

import (
	"time"

	"cajero/internal/services/transfer"
	"cajero/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// TransferHandler exposes account-to-account transfer endpoints.
type TransferHandler struct {
	service transfer.Service
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(s transfer.Service) *TransferHandler { return &TransferHandler{service: s} }

// Transfer handles POST /transfers requests.
func (h *TransferHandler) Transfer(c *fiber.Ctx) error {
	var req struct {
		SourceNumber      string          `json:"source_number"`
		DestinationNumber string          `json:"destination_number"`
		Amount            decimal.Decimal `json:"amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request")
	}

	record, err := h.service.Transfer(c.Context(), req.SourceNumber, req.DestinationNumber, req.Amount, time.Now())
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "transfer completed", record)
}

// History handles GET /accounts/:number/transfers requests.
func (h *TransferHandler) History(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	transfers, err := h.service.History(c.Context(), c.Params("number"), limit, offset)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "transfers", transfers)
}
