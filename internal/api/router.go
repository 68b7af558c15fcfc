// Package api wires the HTTP surface: repositories, services, handlers and
// the middleware chain.
package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/coindaily/entitlements/internal/api/handlers"
	"github.com/coindaily/entitlements/internal/auth"
	"github.com/coindaily/entitlements/internal/cache"
	"github.com/coindaily/entitlements/internal/clock"
	"github.com/coindaily/entitlements/internal/config"
	"github.com/coindaily/entitlements/internal/database"
	"github.com/coindaily/entitlements/internal/ledger"
	"github.com/coindaily/entitlements/internal/lifecycle"
	"github.com/coindaily/entitlements/internal/middleware"
	"github.com/coindaily/entitlements/internal/ratelimit"
	"github.com/coindaily/entitlements/internal/repository"
	"github.com/coindaily/entitlements/internal/service"
)

// NewRouter creates and configures the main router
func NewRouter(cfg *config.Config, db *database.DB, redisCache *cache.Redis) *chi.Mux {
	r := chi.NewRouter()

	clk := clock.System()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	overrideRepo := repository.NewOverrideRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	airdropRepo := repository.NewAirdropRepository(db)
	stakeRepo := repository.NewStakeRepository(db)

	// Initialize auth (needed before the rate limiter so it can key on tier)
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiration)
	authMiddleware := auth.NewMiddleware(jwtService)

	tierRateLimiter := ratelimit.NewRateLimiter(redisCache)

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Timing)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORSWithOrigins(cfg.CORSOrigins))
	r.Use(authMiddleware.OptionalAuth)
	if cfg.RateLimitEnabled {
		r.Use(middleware.TierRateLimit(tierRateLimiter))
	}

	// Initialize domain services
	joyLedger := ledger.New(walletRepo, clk)
	campaignLC := lifecycle.NewCampaignLifecycle(joyLedger, campaignRepo, clk)
	airdropLC := lifecycle.NewAirdropLifecycle(clk)

	entitlementService := service.NewEntitlementService(userRepo, overrideRepo, redisCache, cfg.EntitlementCacheTTL, clk)
	boostService := service.NewBoostService(campaignRepo, entitlementService, campaignLC)
	airdropService := service.NewAirdropService(airdropRepo, entitlementService, airdropLC)
	stakingService := service.NewStakingService(stakeRepo, joyLedger, entitlementService, clk, cfg.StakingAPY)
	walletService := service.NewWalletService(userRepo, joyLedger, cfg.MaxLedgerPageSize)

	// Initialize handlers
	healthHandler := handlers.NewHealthChecker(db, redisCache)
	entitlementHandler := handlers.NewEntitlementHandler(entitlementService)
	boostHandler := handlers.NewBoostHandler(boostService)
	airdropHandler := handlers.NewAirdropHandler(airdropService)
	stakingHandler := handlers.NewStakingHandler(stakingService)
	walletHandler := handlers.NewWalletHandler(walletService)
	adminHandler := handlers.NewAdminHandler(entitlementService, boostService, walletService)

	// Health endpoints
	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", handlers.LivenessProbe)
	r.Get("/health/ready", healthHandler.ReadinessProbe)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Public catalog endpoints
		r.Get("/tiers", entitlementHandler.ListTiers)
		r.Get("/boosts/price", boostHandler.GetPrice)

		// Protected user endpoints (require authentication)
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/user/entitlement", entitlementHandler.GetMyEntitlement)

			r.Get("/wallet", walletHandler.GetWallet)
			r.Get("/wallet/history", walletHandler.GetHistory)

			r.Post("/boosts", boostHandler.Submit)
			r.Get("/boosts", boostHandler.List)
			r.Get("/boosts/{id}", boostHandler.Get)
			r.Post("/boosts/{id}/activate", boostHandler.Activate)

			r.Post("/airdrops", airdropHandler.Create)
			r.Get("/airdrops", airdropHandler.List)
			r.Get("/airdrops/{id}", airdropHandler.Get)
			r.Post("/airdrops/{id}/activate", airdropHandler.Activate)
			r.Post("/airdrops/{id}/complete", airdropHandler.Complete)

			r.Get("/staking", stakingHandler.GetPosition)
			r.Post("/staking/stake", stakingHandler.Stake)
			r.Post("/staking/unstake", stakingHandler.Unstake)
			r.Post("/staking/claim", stakingHandler.Claim)
		})

		// Admin endpoints
		r.Route("/admin", func(r chi.Router) {
			r.Use(authMiddleware.RequireAdmin)

			r.Get("/users/{id}/entitlement", adminHandler.GetUserEntitlement)
			r.Get("/users/{id}/override", adminHandler.GetOverride)
			r.Put("/users/{id}/override", adminHandler.SetOverride)
			r.Delete("/users/{id}/override", adminHandler.ClearOverride)

			r.Get("/boosts/pending", adminHandler.ListPendingBoosts)
			r.Post("/boosts/{id}/approve", adminHandler.ApproveBoost)
			r.Post("/boosts/{id}/reject", adminHandler.RejectBoost)

			r.Post("/users/{id}/wallet/topup", adminHandler.TopUpWallet)
			r.Post("/users/{id}/wallet/adjust", adminHandler.AdjustWallet)
		})
	})

	return r
}
