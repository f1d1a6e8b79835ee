package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/charlz/audiophile-api/internal/domain/checkout"
	"github.com/charlz/audiophile-api/internal/domain/order"
)

// --- wire types ---
//
// Field names mirror the storefront's persisted document: camelCase keys,
// money as plain JSON numbers.

type checkoutItem struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Image    string  `json:"image"`
}

type checkoutRequest struct {
	Billing struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"billing"`
	Shipping struct {
		Address string `json:"address"`
		ZipCode string `json:"zipCode"`
		City    string `json:"city"`
		Country string `json:"country"`
	} `json:"shipping"`
	Payment struct {
		Method       string `json:"method"`
		EMoneyNumber string `json:"eMoneyNumber"`
	} `json:"payment"`
	Items []checkoutItem `json:"items"`
}

type emailStatus struct {
	Sent    bool   `json:"sent"`
	Warning string `json:"warning,omitempty"`
}

type checkoutResponse struct {
	OrderID    string      `json:"orderId"`
	Ref        string      `json:"ref"`
	Status     string      `json:"status"`
	Subtotal   float64     `json:"subtotal"`
	Shipping   float64     `json:"shipping"`
	VAT        float64     `json:"vat"`
	GrandTotal float64     `json:"grandTotal"`
	CreatedAt  int64       `json:"createdAt"`
	Email      emailStatus `json:"email"`
}

type orderResponse struct {
	OrderID         string         `json:"orderId"`
	Ref             string         `json:"ref"`
	Status          string         `json:"status"`
	CustomerName    string         `json:"customerName"`
	CustomerEmail   string         `json:"customerEmail"`
	CustomerPhone   string         `json:"customerPhone"`
	ShippingAddress string         `json:"shippingAddress"`
	ShippingZipCode string         `json:"shippingZipCode"`
	ShippingCity    string         `json:"shippingCity"`
	ShippingCountry string         `json:"shippingCountry"`
	PaymentMethod   string         `json:"paymentMethod"`
	EMoneyNumber    string         `json:"eMoneyNumber,omitempty"`
	Items           []checkoutItem `json:"items"`
	Subtotal        float64        `json:"subtotal"`
	Shipping        float64        `json:"shipping"`
	VAT             float64        `json:"vat"`
	GrandTotal      float64        `json:"grandTotal"`
	CreatedAt       int64          `json:"createdAt"`
}

func toOrderResponse(o *order.Order) orderResponse {
	items := make([]checkoutItem, len(o.Items))
	for i, it := range o.Items {
		items[i] = checkoutItem{
			ID:       it.ID,
			Name:     it.Name,
			Price:    it.Price.InexactFloat64(),
			Quantity: it.Quantity,
			Image:    it.Image,
		}
	}
	return orderResponse{
		OrderID:         o.Code,
		Ref:             o.Ref.String(),
		Status:          string(o.Status),
		CustomerName:    o.Customer.Name,
		CustomerEmail:   o.Customer.Email,
		CustomerPhone:   o.Customer.Phone,
		ShippingAddress: o.Shipping.Address,
		ShippingZipCode: o.Shipping.ZipCode,
		ShippingCity:    o.Shipping.City,
		ShippingCountry: o.Shipping.Country,
		PaymentMethod:   o.Payment.Method,
		EMoneyNumber:    o.Payment.EMoneyNumber,
		Items:           items,
		Subtotal:        o.Totals.Subtotal.InexactFloat64(),
		Shipping:        o.Totals.Shipping.InexactFloat64(),
		VAT:             o.Totals.VAT.InexactFloat64(),
		GrandTotal:      o.Totals.GrandTotal.InexactFloat64(),
		CreatedAt:       o.CreatedAt,
	}
}

// --- handlers ---

// Checkout runs the order submission workflow. Persistence failure is the
// only fatal outcome; email trouble is reported inside the success body.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if missing := req.missingFields(); len(missing) > 0 {
		writeError(w, r, http.StatusBadRequest,
			fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")))
		return
	}

	items := make([]order.Item, len(req.Items))
	for i, it := range req.Items {
		items[i] = order.Item{
			ID:       it.ID,
			Name:     it.Name,
			Price:    decimal.NewFromFloat(it.Price),
			Quantity: it.Quantity,
			Image:    it.Image,
		}
	}

	res, err := h.checkout.Submit(r.Context(), checkout.SubmitRequest{
		SessionKey: r.Header.Get("Idempotency-Key"),
		Customer: order.Customer{
			Name:  req.Billing.Name,
			Email: req.Billing.Email,
			Phone: req.Billing.Phone,
		},
		Shipping: order.ShippingAddress{
			Address: req.Shipping.Address,
			ZipCode: req.Shipping.ZipCode,
			City:    req.Shipping.City,
			Country: req.Shipping.Country,
		},
		Payment: order.Payment{
			Method:       req.Payment.Method,
			EMoneyNumber: req.Payment.EMoneyNumber,
		},
		Cart: items,
	})
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			writeError(w, r, http.StatusBadRequest, "cart is empty")
		case errors.Is(err, checkout.ErrSubmissionInFlight):
			writeError(w, r, http.StatusConflict, "submission already in flight")
		default:
			zctx.From(r.Context()).Error("checkout failed", zap.Error(err))
			writeError(w, r, http.StatusInternalServerError,
				"Failed to complete your order. Please try again or contact support.")
		}
		return
	}

	o := res.Order
	writeJSON(w, r, http.StatusCreated, checkoutResponse{
		OrderID:    o.Code,
		Ref:        o.Ref.String(),
		Status:     string(o.Status),
		Subtotal:   o.Totals.Subtotal.InexactFloat64(),
		Shipping:   o.Totals.Shipping.InexactFloat64(),
		VAT:        o.Totals.VAT.InexactFloat64(),
		GrandTotal: o.Totals.GrandTotal.InexactFloat64(),
		CreatedAt:  o.CreatedAt,
		Email:      emailStatus{Sent: res.EmailSent, Warning: res.EmailWarning},
	})
}

// GetOrder returns one order by its code.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	o, err := h.orders.FindByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "order not found")
			return
		}
		zctx.From(r.Context()).Error("get order", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, r, http.StatusOK, toOrderResponse(o))
}

// ListOrdersByEmail returns every order for ?email=, oldest first.
func (h *Handler) ListOrdersByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, r, http.StatusBadRequest, "email query parameter is required")
		return
	}

	found, err := h.orders.FindByEmail(r.Context(), email)
	if err != nil {
		zctx.From(r.Context()).Error("list orders", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]orderResponse, len(found))
	for i := range found {
		out[i] = toOrderResponse(&found[i])
	}
	writeJSON(w, r, http.StatusOK, out)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus patches the status of the first order matching the code.
// The status value is passed through as-is; the boundary does not constrain
// it to the lifecycle enum.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil || req.Status == "" {
		writeError(w, r, http.StatusBadRequest, "status is required")
		return
	}

	code := chi.URLParam(r, "code")
	ref, err := h.orders.UpdateStatus(r.Context(), code, order.Status(req.Status))
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "order not found")
			return
		}
		zctx.From(r.Context()).Error("update status", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"ref": ref.String()})
}

func (r *checkoutRequest) missingFields() []string {
	var missing []string
	add := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	add("billing.name", r.Billing.Name)
	add("billing.email", r.Billing.Email)
	add("billing.phone", r.Billing.Phone)
	add("shipping.address", r.Shipping.Address)
	add("shipping.zipCode", r.Shipping.ZipCode)
	add("shipping.city", r.Shipping.City)
	add("shipping.country", r.Shipping.Country)
	add("payment.method", r.Payment.Method)
	return missing
}
