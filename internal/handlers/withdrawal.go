package handlers

import (
	"time"

	"cajero/internal/models"
	"cajero/internal/services/withdrawal"
	"cajero/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// WithdrawalHandler exposes cardless withdrawal endpoints.
type WithdrawalHandler struct {
	service withdrawal.Service
}

// NewWithdrawalHandler creates a new WithdrawalHandler.
func NewWithdrawalHandler(s withdrawal.Service) *WithdrawalHandler {
	return &WithdrawalHandler{service: s}
}

// ticketView is the API shape of a ticket; the stored PENDING status
// of an expired ticket is replaced by the derived EXPIRED state.
type ticketView struct {
	Folio         string          `json:"folio"`
	AccountNumber string          `json:"account_number"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	IssuedAt      time.Time       `json:"issued_at"`
	ExpiresAt     time.Time       `json:"expires_at"`
	RedeemedAt    *time.Time      `json:"redeemed_at,omitempty"`
}

func viewOf(t *models.CardlessWithdrawal, now time.Time) ticketView {
	return ticketView{
		Folio:         t.Folio,
		AccountNumber: t.AccountNumber,
		Amount:        t.Amount,
		Status:        t.EffectiveStatus(now),
		IssuedAt:      t.IssuedAt,
		ExpiresAt:     t.ExpiresAt,
		RedeemedAt:    t.RedeemedAt,
	}
}

// Issue handles POST /withdrawals requests.
func (h *WithdrawalHandler) Issue(c *fiber.Ctx) error {
	var req struct {
		SourceNumber string          `json:"source_number"`
		Amount       decimal.Decimal `json:"amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request")
	}

	issued, err := h.service.Issue(c.Context(), req.SourceNumber, req.Amount)
	if err != nil {
		return domainError(c, err)
	}
	// The plaintext password appears in this response and nowhere
	// else; only its hash is stored.
	return response.Success(c, "withdrawal issued", fiber.Map{
		"ticket":   viewOf(issued.Ticket, time.Now()),
		"password": issued.Password,
	})
}

// Lookup handles POST /withdrawals/lookup requests. Credentials ride
// in the body so folio and password stay out of URLs and access logs.
func (h *WithdrawalHandler) Lookup(c *fiber.Ctx) error {
	var req struct {
		Folio    string `json:"folio"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request")
	}

	ticket, err := h.service.Lookup(c.Context(), req.Folio, req.Password)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "withdrawal ticket", viewOf(ticket, time.Now()))
}

// Redeem handles POST /withdrawals/redeem requests.
func (h *WithdrawalHandler) Redeem(c *fiber.Ctx) error {
	var req struct {
		Folio    string `json:"folio"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request")
	}

	ticket, err := h.service.Redeem(c.Context(), req.Folio, req.Password)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "withdrawal redeemed", viewOf(ticket, time.Now()))
}
