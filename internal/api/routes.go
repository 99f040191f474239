package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(handler.logRequests, noCache, handler.loadSession)

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// Account routes
	r.HandleFunc("/register", handler.RegisterForm).Methods("GET")
	r.HandleFunc("/register", handler.Register).Methods("POST")
	r.HandleFunc("/login", handler.LoginForm).Methods("GET")
	r.HandleFunc("/login", handler.Login).Methods("POST")
	r.HandleFunc("/logout", handler.Logout).Methods("GET", "POST")

	// Portfolio routes
	r.HandleFunc("/", handler.requireAuth(handler.Index)).Methods("GET")
	r.HandleFunc("/history", handler.requireAuth(handler.History)).Methods("GET")
	r.HandleFunc("/quote", handler.requireAuth(handler.Quote)).Methods("GET", "POST")
	r.HandleFunc("/buy", handler.requireAuth(handler.Buy)).Methods("POST")
	r.HandleFunc("/sell", handler.requireAuth(handler.SellForm)).Methods("GET")
	r.HandleFunc("/sell", handler.requireAuth(handler.Sell)).Methods("POST")

	return r
}
