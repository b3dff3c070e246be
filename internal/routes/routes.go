// Package routes defines the API routing configuration.
// It wires repositories, services and handlers and groups routes by
// functionality with the appropriate middleware.
package routes

import (
	"camillo/internal/handlers"
	"camillo/internal/middleware"
	"camillo/internal/repositories"
	"camillo/internal/services/admin"
	"camillo/internal/services/auth"
	"camillo/internal/services/deposit"
	"camillo/internal/services/investment"
	"camillo/internal/services/ledger"
	"camillo/internal/services/scheduler"
	"camillo/internal/services/trade"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Build wires the full dependency graph on top of db and registers
// every route on app. The returned scheduler is not started; main owns
// its lifecycle.
func Build(app *fiber.App, db *gorm.DB) *scheduler.Scheduler {
	userRepo := repositories.NewUserRepository(db)
	investmentRepo := repositories.NewInvestmentRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)
	depositRepo := repositories.NewDepositRepository(db)
	tradeRepo := repositories.NewTradeRepository(db)

	ledgerService := ledger.NewService(transactionRepo, investmentRepo, userRepo)
	investmentService := investment.NewService(investmentRepo, userRepo, ledgerService)
	depositService := deposit.NewService(depositRepo, userRepo, ledgerService)
	adminService := admin.NewService(userRepo, investmentService, ledgerService, repositories.CacheService)
	tradeService := trade.NewService(tradeRepo)
	authService := auth.NewService(userRepo)
	sched := scheduler.New(investmentRepo, ledgerService, scheduler.DefaultInterval)

	authHandler := handlers.NewAuthHandler(authService)
	investmentHandler := handlers.NewInvestmentHandler(investmentService, ledgerService, sched)
	transactionHandler := handlers.NewTransactionHandler(ledgerService)
	depositHandler := handlers.NewDepositHandler(depositService)
	adminHandler := handlers.NewAdminHandler(adminService)
	tradeHandler := handlers.NewTradeHandler(tradeService)

	app.Get("/health", handlers.HealthCheck)

	api := app.Group("/api")

	// Public endpoints
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.Refresh)

	// Authenticated endpoints
	authed := api.Group("", middleware.Auth)
	authed.Get("/me", adminHandler.Me)

	investments := authed.Group("/investments")
	investments.Post("/", investmentHandler.Create)
	investments.Get("/", investmentHandler.ListMine)
	investments.Get("/notifications", adminHandler.Notifications)

	transactions := authed.Group("/transactions")
	transactions.Get("/", transactionHandler.ListMine)
	transactions.Post("/withdrawals", transactionHandler.RequestWithdrawal)
	transactions.Get("/:id", transactionHandler.Get)

	deposits := authed.Group("/manual-deposits")
	deposits.Post("/", depositHandler.Create)
	deposits.Get("/", depositHandler.List)

	// Admin endpoints
	adm := authed.Group("", middleware.AdminOnly)

	adm.Get("/investments/all", investmentHandler.ListAll)
	adm.Get("/investments/stats", investmentHandler.Stats)
	adm.Get("/investments/pending-payments", investmentHandler.ListPendingPayments)
	adm.Get("/investments/pending-withdrawals", investmentHandler.ListPendingWithdrawals)
	adm.Get("/investments/completed", investmentHandler.ListCompleted)
	adm.Get("/investments/expired", investmentHandler.ListExpired)
	adm.Get("/investments/phone/:phone", investmentHandler.ListByPhone)
	adm.Post("/investments/complete-expired", investmentHandler.CompleteExpired)
	adm.Put("/investments/:id/approve-payment", investmentHandler.ApprovePayment)
	adm.Put("/investments/:id/approve-withdrawal", investmentHandler.ApproveWithdrawal)
	adm.Put("/investments/:id/status", investmentHandler.ForceStatus)
	adm.Get("/investments/:id", investmentHandler.Get)

	adm.Get("/transactions/all", transactionHandler.ListAll)
	adm.Post("/transactions/profit", transactionHandler.CreateProfit)
	adm.Get("/transactions/pending-withdrawals", transactionHandler.ListPendingWithdrawals)
	adm.Put("/transactions/:id/settle", transactionHandler.Settle)
	adm.Get("/transactions/totals", transactionHandler.Totals)

	adm.Put("/manual-deposits/:id/approve", depositHandler.Approve)
	adm.Put("/manual-deposits/:id/reject", depositHandler.Reject)

	adm.Get("/users", adminHandler.ListUsers)
	adm.Get("/users/search", adminHandler.SearchUsers)
	adm.Get("/users/:id", adminHandler.GetUser)
	adm.Put("/users/:id/balance", adminHandler.AdjustBalance)
	adm.Get("/users/:id/ledger", investmentHandler.VerifyLedger)
	adm.Get("/notifications", adminHandler.Digest)
	adm.Get("/stats", adminHandler.Stats)

	trades := adm.Group("/trades")
	trades.Post("/", tradeHandler.Create)
	trades.Get("/", tradeHandler.List)
	trades.Put("/:id/complete", tradeHandler.Complete)

	return sched
}
