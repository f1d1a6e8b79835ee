// Package handler exposes the HTTP surface: the checkout and order JSON API,
// the confirmation-email endpoint, and the server-rendered order lookup page.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/charlz/audiophile-api/internal/domain/checkout"
	"github.com/charlz/audiophile-api/internal/domain/order"
	"github.com/charlz/audiophile-api/internal/mail"
)

// Dispatcher renders and sends one confirmation email. A non-empty warning
// with a nil error is the provider's sandbox-mode downgrade.
type Dispatcher interface {
	Dispatch(ctx context.Context, to string, conf mail.Confirmation) (id, warning string, err error)
}

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// AppBaseURL is the storefront origin used in email view-order links.
	AppBaseURL string
	// SupportEmail is shown in the confirmation email support block.
	SupportEmail string
}

// Handler delegates to the checkout service, the order repository and the
// email dispatcher.
type Handler struct {
	cfg      Config
	checkout *checkout.Service
	orders   order.Repository
	mailer   Dispatcher
	now      func() time.Time
}

// NewHandler constructs a Handler with the required dependencies.
func NewHandler(cfg Config, svc *checkout.Service, orders order.Repository, mailer Dispatcher) *Handler {
	return &Handler{
		cfg:      cfg,
		checkout: svc,
		orders:   orders,
		mailer:   mailer,
		now:      time.Now,
	}
}

// Routes builds the router: JSON API under /api, the lookup page at /order.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/checkout", h.Checkout)
		r.Get("/orders", h.ListOrdersByEmail)
		r.Get("/orders/{code}", h.GetOrder)
		r.Patch("/orders/{code}/status", h.UpdateOrderStatus)
		// Method handling is inside the handler: the endpoint answers 405
		// with a JSON body instead of the router default.
		r.HandleFunc("/send-confirmation", h.SendConfirmation)
	})
	r.Get("/order/{code}", h.OrderPage)
	return r
}

// --- response helpers ---

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// decodeJSON reads a request body capped at 1 MiB.
func decodeJSON(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zctx.From(r.Context()).Error("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorBody{Code: status, Message: msg})
}
