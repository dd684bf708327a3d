package handlers

import (
	"cajero/internal/services/ledger"
	"cajero/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// AccountHandler exposes account lifecycle endpoints.
type AccountHandler struct {
	ledger ledger.Service
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(s ledger.Service) *AccountHandler { return &AccountHandler{ledger: s} }

// Open handles POST /accounts requests.
func (h *AccountHandler) Open(c *fiber.Ctx) error {
	var req struct {
		CustomerID uint `json:"customer_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request")
	}
	if req.CustomerID == 0 {
		return response.BadRequest(c, "customer_id is required")
	}

	account, err := h.ledger.Open(c.Context(), req.CustomerID)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "account opened", account)
}

// Get handles GET /accounts/:number requests.
func (h *AccountHandler) Get(c *fiber.Ctx) error {
	account, err := h.ledger.GetByNumber(c.Context(), c.Params("number"))
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "account", account)
}

// Cancel handles POST /accounts/:number/cancel requests. The
// requesting customer is passed explicitly; the core reads no
// session state.
func (h *AccountHandler) Cancel(c *fiber.Ctx) error {
	var req struct {
		CustomerID uint `json:"customer_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request")
	}
	if req.CustomerID == 0 {
		return response.BadRequest(c, "customer_id is required")
	}

	account, err := h.ledger.Cancel(c.Context(), c.Params("number"), req.CustomerID)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "account cancelled", account)
}

// ListActive handles GET /customers/:id/accounts requests.
func (h *AccountHandler) ListActive(c *fiber.Ctx) error {
	customerID, err := c.ParamsInt("id")
	if err != nil || customerID <= 0 {
		return response.BadRequest(c, "invalid customer id")
	}

	accounts, err := h.ledger.ListActive(c.Context(), uint(customerID))
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "active accounts", accounts)
}
