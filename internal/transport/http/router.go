package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-pots-api/internal/application/pot"
	"github.com/go-pots-api/internal/application/rewards"
	"github.com/go-pots-api/internal/application/ticket"
	"github.com/go-pots-api/internal/application/transfer"
	"github.com/go-pots-api/internal/application/user"
	"github.com/go-pots-api/internal/config"
	"github.com/go-pots-api/internal/domain"
	"github.com/go-pots-api/internal/pkg/clock"
	"github.com/go-pots-api/internal/pkg/random"
	"github.com/go-pots-api/internal/transport/http/handler"
	appmiddleware "github.com/go-pots-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)

	// 5 requests/second, burst of 10, applied to register and login.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	clk := clock.System{}
	rewardsSvc := rewards.NewService(deps.UserRepo, clk, random.New())
	userSvc := user.NewService(user.ServiceDeps{
		UserRepo:      deps.UserRepo,
		DocumentStore: deps.S3Store,
		JWTProvider:   deps.JWTProvider,
		Mailer:        deps.Mailer,
		Clock:         clk,
	})
	potSvc := pot.NewService(deps.PotRepo, deps.UserRepo, deps.Store, rewardsSvc, clk)
	transferSvc := transfer.NewService(deps.UserRepo, deps.TransactionRepo, deps.Store, deps.SMSSender, clk)
	ticketSvc := ticket.NewService(deps.TicketRepo, clk)

	healthH := handler.NewHealthHandler()
	userH := handler.NewUserHandler(userSvc)
	rewardsH := handler.NewRewardsHandler(rewardsSvc)
	notifH := handler.NewNotificationHandler(rewardsSvc)
	potH := handler.NewPotHandler(potSvc)
	transferH := handler.NewTransferHandler(transferSvc)
	ticketH := handler.NewTicketHandler(ticketSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/users", userH.Register)
		r.With(sensitiveRL.Limit).Post("/sessions/login", userH.Login)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/users/profile", userH.Profile)
			r.Post("/users/linked-accounts", userH.LinkedAccounts)
			r.Post("/users/verify-otp", userH.VerifyOTP)
			r.Post("/users/extract-pan-details", userH.ExtractPANDetails)

			r.Get("/rewards", rewardsH.Get)
			r.Post("/rewards/login-streak", rewardsH.LoginStreak)
			r.Post("/rewards/scratch-card/{id}", rewardsH.RevealScratchCard)
			r.Post("/rewards/game-score", rewardsH.SaveGameScore)
			r.Post("/rewards/offers/{id}/claim", rewardsH.ClaimOffer)

			r.Get("/notifications", notifH.List)
			r.Post("/notifications/read", notifH.MarkRead)

			r.Get("/pots", potH.List)
			r.Post("/pots", potH.Create)
			r.Post("/pots/{id}/deposit", potH.Deposit)
			r.Post("/pots/{id}/withdraw", potH.Withdraw)
			r.Put("/pots/{id}/goal", potH.SetGoal)
			r.Delete("/pots/{id}", potH.Delete)

			r.Post("/transfers", transferH.Transfer)
			r.Get("/transactions", transferH.Recent)

			r.Post("/tickets", ticketH.Create)
			r.Get("/tickets/user/{userId}", ticketH.ListByUser)
			r.Get("/tickets/{id}", ticketH.Get)
			r.Post("/tickets/{id}/messages", ticketH.AddMessage)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/tickets", ticketH.ListAll)
				r.Put("/tickets/{id}/status", ticketH.UpdateStatus)
			})
		})
	})

	return r
}
