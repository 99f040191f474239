package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/trogers1052/paper-trader/internal/apperror"
	"github.com/trogers1052/paper-trader/internal/models"
	"github.com/trogers1052/paper-trader/internal/portfolio"
	"github.com/trogers1052/paper-trader/internal/session"
	"go.uber.org/zap"
)

// Accounts registers and authenticates users
type Accounts interface {
	Register(ctx context.Context, username, password string) (int64, error)
	Verify(ctx context.Context, username, password string) (int64, error)
}

// Trader runs portfolio operations for an authenticated user
type Trader interface {
	Quote(ctx context.Context, symbol string) (*models.Quote, error)
	ExecuteBuy(ctx context.Context, userID int64, symbol string, shares int64) error
	ExecuteSell(ctx context.Context, userID int64, symbol string, shares int64) error
	Summary(ctx context.Context, userID int64) (*models.PortfolioSummary, error)
	History(ctx context.Context, userID int64) ([]*models.Transaction, error)
	SellableSymbols(ctx context.Context, userID int64) ([]string, error)
}

// CookieConfig controls the session cookie
type CookieConfig struct {
	Name string
	TTL  time.Duration
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	accounts Accounts
	trader   Trader
	sessions session.Store
	cookie   CookieConfig
	logger   *zap.Logger
}

// NewHandler creates a new Handler
func NewHandler(accounts Accounts, trader Trader, sessions session.Store, cookie CookieConfig, logger *zap.Logger) *Handler {
	if cookie.Name == "" {
		cookie.Name = "session"
	}
	return &Handler{
		accounts: accounts,
		trader:   trader,
		sessions: sessions,
		cookie:   cookie,
		logger:   logger,
	}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// LoginForm handles GET /login
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	respondForm(w, "/login", "username", "password")
}

// RegisterForm handles GET /register
func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	respondForm(w, "/register", "username", "password", "confirmation")
}

// Register handles POST /register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")
	confirmation := r.FormValue("confirmation")

	if username == "" || password == "" {
		h.respondError(w, r, apperror.ErrInvalidInput)
		return
	}
	if confirmation != password {
		h.respondError(w, r, apperror.ErrPasswordMismatch)
		return
	}

	userID, err := h.accounts.Register(r.Context(), username, password)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.startSession(w, r, userID); err != nil {
		h.respondError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Login handles POST /login. Any existing session is ended first.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	h.endSession(w, r)

	username := r.FormValue("username")
	password := r.FormValue("password")
	if username == "" || password == "" {
		h.respondError(w, r, apperror.ErrInvalidInput)
		return
	}

	userID, err := h.accounts.Verify(r.Context(), username, password)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindAuth {
			err = apperror.ErrBadCredentials
		}
		h.respondError(w, r, err)
		return
	}

	if err := h.startSession(w, r, userID); err != nil {
		h.respondError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout handles /logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.endSession(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type quoteResponse struct {
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	Price        string `json:"price"`
	PriceDisplay string `json:"price_display"`
}

// Quote handles GET and POST /quote
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	q, err := h.trader.Quote(r.Context(), r.FormValue("symbol"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, quoteResponse{
		Symbol:       q.Symbol,
		Name:         q.Name,
		Price:        q.Price.StringFixed(2),
		PriceDisplay: portfolio.USD(q.Price),
	})
}

// Buy handles POST /buy
func (h *Handler) Buy(w http.ResponseWriter, r *http.Request) {
	shares, err := portfolio.ParseShares(r.FormValue("shares"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	state := session.FromContext(r.Context())
	if err := h.trader.ExecuteBuy(r.Context(), state.UserID, r.FormValue("symbol"), shares); err != nil {
		h.respondError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// SellForm handles GET /sell with the symbols the user can sell
func (h *Handler) SellForm(w http.ResponseWriter, r *http.Request) {
	state := session.FromContext(r.Context())
	symbols, err := h.trader.SellableSymbols(r.Context(), state.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string][]string{"symbols": symbols})
}

// Sell handles POST /sell
func (h *Handler) Sell(w http.ResponseWriter, r *http.Request) {
	shares, err := portfolio.ParseShares(r.FormValue("shares"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	state := session.FromContext(r.Context())
	if err := h.trader.ExecuteSell(r.Context(), state.UserID, r.FormValue("symbol"), shares); err != nil {
		h.respondError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Index handles GET / with the portfolio summary
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	state := session.FromContext(r.Context())
	summary, err := h.trader.Summary(r.Context(), state.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

type historyEntry struct {
	Symbol       string `json:"symbol"`
	Side         string `json:"side"`
	Shares       int64  `json:"shares"`
	Price        string `json:"price"`
	PriceDisplay string `json:"price_display"`
	ExecutedAt   string `json:"executed_at"`
}

// History handles GET /history
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	state := session.FromContext(r.Context())
	ledger, err := h.trader.History(r.Context(), state.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	entries := make([]historyEntry, 0, len(ledger))
	for _, t := range ledger {
		entries = append(entries, historyEntry{
			Symbol:       t.Symbol,
			Side:         t.TradeType(),
			Shares:       t.Shares,
			Price:        t.Price.StringFixed(2),
			PriceDisplay: portfolio.USD(t.Price),
			ExecutedAt:   t.ExecutedAt.UTC().Format(time.DateTime),
		})
	}
	respondJSON(w, http.StatusOK, map[string][]historyEntry{"transactions": entries})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	// every classified error is a 400 rejection; unclassified ones are bugs
	status := http.StatusBadRequest
	switch apperror.KindOf(err) {
	case apperror.KindUnknown:
		status = http.StatusInternalServerError
		fallthrough
	case apperror.KindPersistence:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	default:
		h.logger.Debug("request rejected", zap.String("path", r.URL.Path), zap.Error(err))
	}

	respondJSON(w, status, errorResponse{
		Error: apperror.MessageOf(err),
		Code:  apperror.CodeOf(err),
	})
}

func respondForm(w http.ResponseWriter, action string, fields ...string) {
	respondJSON(w, http.StatusOK, map[string]any{
		"action": action,
		"method": http.MethodPost,
		"fields": fields,
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
