package routes

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/brisapay/brisapay/internal/auth"
	"github.com/brisapay/brisapay/internal/config"
	"github.com/brisapay/brisapay/internal/deposit"
	"github.com/brisapay/brisapay/internal/gateway"
	"github.com/brisapay/brisapay/internal/ledger"
	"github.com/brisapay/brisapay/internal/middleware"
	"github.com/brisapay/brisapay/internal/notification"
	"github.com/brisapay/brisapay/internal/owner"
	"github.com/brisapay/brisapay/internal/payout"
	"github.com/brisapay/brisapay/internal/refund"
	"github.com/brisapay/brisapay/internal/wallet"
	wallethandler "github.com/brisapay/brisapay/internal/wallet/handler"
	"github.com/brisapay/brisapay/internal/withdraw"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. It returns the
// notification sweeper so main can run the delivery loop alongside the
// server.
func Setup(app *fiber.App, d Deps) (*notification.Sweeper, error) {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return nil, fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return nil, fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	// Repositories; dev mode without Postgres falls back to memory.
	var (
		walletRepo   wallet.Repository
		ledgerRepo   ledger.Repository
		ownerRepo    owner.Repository
		depositRepo  deposit.Repository
		withdrawRepo withdraw.Repository
		refundRepo   refund.Repository
		payoutRepo   payout.Repository
		notifRepo    notification.Repository
	)
	if d.DB != nil {
		walletRepo = wallet.NewPostgresRepository(d.DB)
		ledgerRepo = ledger.NewPostgresRepository(d.DB)
		ownerRepo = owner.NewPostgresRepository(d.DB)
		depositRepo = deposit.NewPostgresRepository(d.DB)
		withdrawRepo = withdraw.NewPostgresRepository(d.DB)
		refundRepo = refund.NewPostgresRepository(d.DB)
		payoutRepo = payout.NewPostgresRepository(d.DB)
		notifRepo = notification.NewPostgresRepository(d.DB)
	} else {
		walletRepo = wallet.NewMemoryRepository()
		ledgerRepo = ledger.NewMemoryRepository()
		ownerRepo = owner.NewMemoryRepository()
		depositRepo = deposit.NewMemoryRepository()
		withdrawRepo = withdraw.NewMemoryRepository()
		refundRepo = refund.NewMemoryRepository()
		payoutRepo = payout.NewMemoryRepository()
		notifRepo = notification.NewMemoryRepository()
	}

	var tokenCache gateway.TokenCache
	if d.Cache != nil {
		tokenCache = gateway.NewRedisTokenCache(d.Cache)
	} else {
		tokenCache = gateway.NewMemoryTokenCache()
	}
	tokens := gateway.NewTokenSource(tokenCache, d.Cfg.TokenTTLMargin)
	router, err := gateway.BuildRouter(d.Cfg, tokens)
	if err != nil {
		return nil, err
	}

	walletSvc := wallet.NewService(walletRepo)
	ledgerSvc := ledger.NewService(walletRepo, ledgerRepo)
	ownerSvc := owner.NewService(ownerRepo)
	authSvc := auth.NewService(d.Cfg)
	outbox := notification.NewOutbox(notifRepo, ownerRepo, d.Logger)
	depositSvc := deposit.NewService(depositRepo, walletSvc, ledgerSvc, router, outbox, d.Logger)
	withdrawSvc := withdraw.NewService(withdrawRepo, walletSvc, ledgerSvc, outbox, d.Logger)
	refundSvc := refund.NewService(refundRepo, depositSvc, walletSvc, ledgerSvc, outbox, d.Logger)
	payoutSvc := payout.NewService(payoutRepo, walletSvc, ledgerSvc, router, outbox, d.Logger)

	ownerHandler := owner.NewHandler(ownerSvc)
	authHandler := auth.NewHandler(ownerSvc, authSvc)
	walletHandler := wallethandler.NewHandler(walletSvc, ledgerSvc)
	depositHandler := deposit.NewHandler(depositSvc)
	withdrawHandler := withdraw.NewHandler(withdrawSvc)
	refundHandler := refund.NewHandler(refundSvc)
	payoutHandler := payout.NewHandler(payoutSvc)

	api := app.Group("/api/v1")

	// Public routes.
	api.Post("/owners", ownerHandler.Register)
	api.Post("/login", middleware.LoginRateLimit(d.Cache, 5), authHandler.Login)
	api.Post("/webhooks/deposits", depositHandler.Confirm)

	// Authenticated routes.
	protected := api.Group("", middleware.JWTAuth(authSvc))
	if d.Cache != nil {
		protected.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	protected.Get("/me", ownerHandler.Me)
	protected.Put("/me/callback-url", ownerHandler.SetCallbackURL)

	RegisterWalletRoutes(protected, walletHandler)
	RegisterDepositRoutes(protected, depositHandler)
	RegisterWithdrawalRoutes(protected, withdrawHandler)
	RegisterRefundRoutes(protected, refundHandler)
	RegisterPayoutRoutes(protected, payoutHandler)

	// Admin routes drive the manual halves of the state machines.
	admin := protected.Group("/admin", middleware.RequireAdmin())
	admin.Post("/withdrawals/:id/process", withdrawHandler.Process)
	admin.Post("/withdrawals/:id/reject", withdrawHandler.Reject)
	admin.Post("/refunds/:id/approve", refundHandler.Approve)
	admin.Post("/refunds/:id/complete", refundHandler.Complete)
	admin.Post("/refunds/:id/reject", refundHandler.Reject)
	admin.Post("/payouts/:id/process", payoutHandler.Process)
	admin.Post("/payouts/:id/reject", payoutHandler.Reject)
	admin.Post("/wallets/:id/recompute", walletHandler.Recompute)

	sweeper := notification.NewSweeper(notifRepo, notification.SweeperConfig{
		Interval:    d.Cfg.SweepInterval,
		BackoffBase: d.Cfg.RetryBackoffBase,
		BackoffCap:  d.Cfg.RetryBackoffCap,
		MaxAttempts: d.Cfg.RetryMaxAttempts,
		HTTPTimeout: 10 * time.Second,
	}, d.Logger)

	return sweeper, nil
}
