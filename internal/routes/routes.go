// Package routes defines the API routing configuration. The HTTP
// surface is a thin adapter over the core services; every request
// carries the customer id explicitly.
package routes

import (
	"time"

	"cajero/internal/handlers"
	"cajero/internal/repositories"
	"cajero/internal/repositories/cache"
	"cajero/internal/services/ledger"
	"cajero/internal/services/transfer"
	"cajero/internal/services/withdrawal"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

// SetupRoutes wires repositories, services and handlers onto the app.
func SetupRoutes(app *fiber.App, db *gorm.DB, cacheSvc *cache.CacheService) {
	store := repositories.NewStore(db)

	var accountCache ledger.AccountCache
	if cacheSvc != nil {
		accountCache = cacheSvc
	}
	ledgerService := ledger.NewService(store, accountCache)
	transferService := transfer.NewService(store, ledgerService)
	withdrawalService := withdrawal.NewService(store, ledgerService, nil)

	accountHandler := handlers.NewAccountHandler(ledgerService)
	transferHandler := handlers.NewTransferHandler(transferService)
	withdrawalHandler := handlers.NewWithdrawalHandler(withdrawalService)
	healthHandler := handlers.NewHealthHandler(db, cacheSvc)

	app.Get("/health", healthHandler.Check)

	api := app.Group("/api")

	accounts := api.Group("/accounts")
	accounts.Post("/", accountHandler.Open)
	accounts.Get("/:number", accountHandler.Get)
	accounts.Post("/:number/cancel", accountHandler.Cancel)
	accounts.Get("/:number/transfers", transferHandler.History)

	api.Get("/customers/:id/accounts", accountHandler.ListActive)

	api.Post("/transfers", transferHandler.Transfer)

	// Lookup and redeem take folio/password guesses from kiosks, so
	// they sit behind a per-IP rate limit.
	guard := limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "too many requests, try again later",
			})
		},
	})

	withdrawals := api.Group("/withdrawals")
	withdrawals.Post("/", withdrawalHandler.Issue)
	withdrawals.Post("/lookup", guard, withdrawalHandler.Lookup)
	withdrawals.Post("/redeem", guard, withdrawalHandler.Redeem)
}
