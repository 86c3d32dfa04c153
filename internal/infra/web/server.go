package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"genesis-admin/internal/usecase"
)

// Server wires the admin dashboard API. All /api/v1 routes except login and
// the payment webhook sit behind the JWT session middleware.
type Server struct {
	auth       *AuthManager
	apiKey     string
	rates      usecase.RateUseCase
	plans      *usecase.PlanUseCase
	ledger     usecase.LedgerUseCase
	activation usecase.ActivationUseCase
	settings   *usecase.SettingsUseCase
	checkout   *usecase.CheckoutUseCase
	stats      *usecase.StatsUseCase
	log        *zerolog.Logger
}

func NewServer(
	auth *AuthManager,
	apiKey string,
	rates usecase.RateUseCase,
	plans *usecase.PlanUseCase,
	ledger usecase.LedgerUseCase,
	activation usecase.ActivationUseCase,
	settings *usecase.SettingsUseCase,
	checkout *usecase.CheckoutUseCase,
	stats *usecase.StatsUseCase,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "WebServer").Logger()
	return &Server{
		auth:       auth,
		apiKey:     apiKey,
		rates:      rates,
		plans:      plans,
		ledger:     ledger,
		activation: activation,
		settings:   settings,
		checkout:   checkout,
		stats:      stats,
		log:        &l,
	}
}

func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)
		r.Post("/webhooks/asaas", s.handleAsaasWebhook)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)

			r.Get("/stats", s.handleStats)
			r.Get("/rates/current", s.handleCurrentRate)

			r.Route("/plans", func(r chi.Router) {
				r.Get("/", s.handlePlanList)
				r.Post("/", s.handlePlanCreate)
				r.Get("/{id}", s.handlePlanGet)
				r.Put("/{id}", s.handlePlanUpdate)
				r.Delete("/{id}", s.handlePlanDelete)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", s.handleUserList)
				r.Get("/{id}", s.handleUserGet)
				r.Post("/{id}/activation", s.handleGrantManual)
				r.Delete("/{id}/activation", s.handleRevertActivation)
				r.Post("/{id}/credits", s.handleAddCredits)
				r.Post("/{id}/status", s.handleToggleStatus)
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", s.handleTransactionList)
				r.Post("/", s.handleTransactionCreate)
				r.Get("/{id}", s.handleTransactionGet)
				r.Patch("/{id}/status", s.handleTransactionStatus)
			})

			r.Route("/settings", func(r chi.Router) {
				r.Get("/checkout", s.handleCheckoutConfigGet)
				r.Put("/checkout", s.handleCheckoutConfigUpdate)
				r.Get("/asaas", s.handleAsaasConfigGet)
				r.Put("/asaas", s.handleAsaasConfigUpdate)
				r.Post("/asaas/test", s.handleAsaasTest)
			})

			r.Post("/checkout/preview", s.handleCheckoutPreview)
			r.Post("/checkout/fee", s.handleFeeQuote)
			r.Post("/lastlink/sync", s.handleLastlinkSync)
		})
	})

	return r
}

// requireAdmin rejects requests without a valid admin session.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
