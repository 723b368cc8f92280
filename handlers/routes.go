package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"scoredAPI/internal/auth"
	"scoredAPI/middleware"
	"scoredAPI/services"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterDeps struct {
	UserService         *services.UserService
	FriendService       *services.FriendService
	ScoreService        *services.ScoreService
	NotificationService *services.NotificationService

	Verifier      auth.Verifier
	DB            Pinger
	WebhookSecret string

	MetricsUser    string
	MetricsPass    string
	RateLimitRPS   float64
	RateLimitBurst int
}

func NewRouter(deps RouterDeps) (*mux.Router, error) {
	userHandler := NewUserHandler(deps.UserService)
	friendsHandler := NewFriendsHandler(deps.UserService, deps.FriendService, deps.ScoreService)
	scoresHandler := NewScoresHandler(deps.UserService, deps.ScoreService)
	notificationHandler := NewNotificationHandler(deps.UserService, deps.NotificationService)
	webhookHandler, err := NewWebhookHandler(deps.UserService, deps.WebhookSecret)
	if err != nil {
		return nil, err
	}

	r := mux.NewRouter()

	standardRouter := r.PathPrefix("/").Subrouter()
	standardRouter.Use(middleware.RequestLogger)
	standardRouter.Use(middleware.NewRateLimiter(deps.RateLimitRPS, deps.RateLimitBurst).Middleware)
	standardRouter.Use(middleware.MonitorMiddleware)

	standardRouter.Handle("/metrics", middleware.BasicAuthMiddleware(deps.MetricsUser, deps.MetricsPass)(promhttp.Handler())).Methods("GET")
	standardRouter.HandleFunc("/health", healthHandler(deps.DB)).Methods("GET")
	standardRouter.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")

	api := standardRouter.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/email-by-username", userHandler.EmailByUsername).Methods("POST")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.SessionMiddleware(deps.Verifier))

	protected.HandleFunc("/auth/update-username", userHandler.UpdateUsername).Methods("POST")
	protected.HandleFunc("/auth/user-profile", userHandler.GetProfile).Methods("GET")

	protected.HandleFunc("/friends", friendsHandler.Get).Methods("GET")
	protected.HandleFunc("/friends", friendsHandler.Post).Methods("POST")

	protected.HandleFunc("/scores/export", scoresHandler.Export).Methods("GET")
	protected.HandleFunc("/scores", scoresHandler.List).Methods("GET")
	protected.HandleFunc("/scores", scoresHandler.Upsert).Methods("POST")
	protected.HandleFunc("/scores", scoresHandler.Delete).Methods("DELETE")

	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")

	return r, nil
}

func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": "scored-api",
		})
	}
}
