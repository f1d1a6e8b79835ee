package handler

import (
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/charlz/audiophile-api/internal/domain/order"
	"github.com/charlz/audiophile-api/internal/mail"
)

// confirmationRequest is the send-confirmation payload. It carries the full
// order data rather than a code so the endpoint stays stateless: it renders
// and dispatches without touching the store.
type confirmationRequest struct {
	CustomerName    string         `json:"customerName"`
	CustomerEmail   string         `json:"customerEmail"`
	OrderID         string         `json:"orderId"`
	Items           []checkoutItem `json:"items"`
	Subtotal        float64        `json:"subtotal"`
	Shipping        float64        `json:"shipping"`
	VAT             float64        `json:"vat"`
	GrandTotal      float64        `json:"grandTotal"`
	ShippingAddress string         `json:"shippingAddress"`
	ShippingCity    string         `json:"shippingCity"`
	ShippingZipCode string         `json:"shippingZipCode"`
	ShippingCountry string         `json:"shippingCountry"`
}

// SendConfirmation renders the confirmation email for the posted order data
// and dispatches it to the customer.
//
// Responses: 405 on a non-POST method, 400 when required fields are missing,
// 200 {success,data} on send, 200 {success,warning,message} when the provider
// is sandbox-restricted, 500 {error,details} on any other provider failure.
func (h *Handler) SendConfirmation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, r, http.StatusMethodNotAllowed, map[string]string{
			"error": "Method not allowed",
		})
		return
	}

	var req confirmationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, r, http.StatusBadRequest, map[string]string{
			"error": "Missing required fields",
		})
		return
	}
	if req.CustomerName == "" || req.CustomerEmail == "" || req.OrderID == "" || len(req.Items) == 0 {
		writeJSON(w, r, http.StatusBadRequest, map[string]string{
			"error": "Missing required fields",
		})
		return
	}

	items := make([]mail.ConfirmationItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = mail.ConfirmationItem{
			Name:     it.Name,
			Price:    decimal.NewFromFloat(it.Price),
			Quantity: it.Quantity,
		}
	}
	conf := mail.Confirmation{
		CustomerName: req.CustomerName,
		OrderCode:    req.OrderID,
		Items:        items,
		Totals: order.Totals{
			Subtotal:   decimal.NewFromFloat(req.Subtotal),
			Shipping:   decimal.NewFromFloat(req.Shipping),
			VAT:        decimal.NewFromFloat(req.VAT),
			GrandTotal: decimal.NewFromFloat(req.GrandTotal),
		},
		Shipping: order.ShippingAddress{
			Address: req.ShippingAddress,
			ZipCode: req.ShippingZipCode,
			City:    req.ShippingCity,
			Country: req.ShippingCountry,
		},
		ViewOrderURL: h.cfg.AppBaseURL + "/order/" + req.OrderID,
		SupportEmail: h.cfg.SupportEmail,
		Date:         h.now(),
	}

	id, warning, err := h.mailer.Dispatch(r.Context(), req.CustomerEmail, conf)
	if err != nil {
		zctx.From(r.Context()).Error("send confirmation email",
			zap.String("order_code", req.OrderID),
			zap.Error(err))
		writeJSON(w, r, http.StatusInternalServerError, map[string]any{
			"error":   "Failed to send email",
			"details": err.Error(),
		})
		return
	}
	if warning != "" {
		zctx.From(r.Context()).Warn("email provider in testing mode",
			zap.String("order_code", req.OrderID),
			zap.String("recipient", req.CustomerEmail))
		writeJSON(w, r, http.StatusOK, map[string]any{
			"success": true,
			"warning": warning,
			"message": mail.SandboxMessage,
		})
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"success": true,
		"data":    map[string]string{"id": id},
	})
}
