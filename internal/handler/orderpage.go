package handler

import (
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/charlz/audiophile-api/internal/domain/order"
	"github.com/charlz/audiophile-api/internal/mail"
)

// OrderPage renders the customer-facing order lookup view. Three outcomes:
// a malformed code short-circuits without touching the store, an unknown
// code renders a not-found page, and a known code renders the full order.
func (h *Handler) OrderPage(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	if !order.ValidCode(code) {
		writeHTML(w, http.StatusBadRequest, renderMessagePage(
			"Invalid order number",
			fmt.Sprintf("%q does not look like an order number. Order numbers have the form AUD-DDMMYY-XXXX.", code),
			h.cfg.AppBaseURL,
		))
		return
	}

	o, err := h.orders.FindByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeHTML(w, http.StatusNotFound, renderMessagePage(
				"Order not found",
				fmt.Sprintf("We couldn't find an order with the number %s. Check the number in your confirmation email.", code),
				h.cfg.AppBaseURL,
			))
			return
		}
		zctx.From(r.Context()).Error("order page lookup", zap.Error(err))
		writeHTML(w, http.StatusInternalServerError, renderMessagePage(
			"Something went wrong",
			"We couldn't load your order right now. Please try again in a moment.",
			h.cfg.AppBaseURL,
		))
		return
	}

	writeHTML(w, http.StatusOK, renderOrderPage(o))
}

func writeHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// statusBadgeColor maps an order status to its badge background.
func statusBadgeColor(s order.Status) string {
	switch s {
	case order.StatusCompleted:
		return "#2e7d32"
	case order.StatusCancelled:
		return "#c62828"
	case order.StatusProcessing:
		return "#ef6c00"
	default:
		return "#616161"
	}
}

func renderPageShell(title, body string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString(`<html lang="en"><head><meta charset="utf-8">`)
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	fmt.Fprintf(&b, "<title>%s - Audiophile</title>", html.EscapeString(title))
	b.WriteString(`<style>body{font-family:Helvetica,Arial,sans-serif;background:#f5f5f5;margin:0;padding:24px;color:#101010}` +
		`.card{max-width:640px;margin:0 auto;background:#ffffff;border-radius:8px;padding:32px}` +
		`.badge{display:inline-block;color:#ffffff;border-radius:12px;padding:4px 12px;font-size:13px;text-transform:uppercase}` +
		`.row{display:flex;justify-content:space-between;padding:8px 0;border-bottom:1px solid #eeeeee}` +
		`.total{font-weight:bold}` +
		`a{color:#d87d4a}</style>`)
	b.WriteString("</head><body>")
	b.WriteString(body)
	b.WriteString("</body></html>")
	return b.String()
}

func renderMessagePage(title, message, homeURL string) string {
	var b strings.Builder
	b.WriteString(`<div class="card">`)
	fmt.Fprintf(&b, "<h1>%s</h1>", html.EscapeString(title))
	fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(message))
	fmt.Fprintf(&b, `<p><a href="%s">Return to the store</a></p>`, html.EscapeString(homeURL))
	b.WriteString("</div>")
	return renderPageShell(title, b.String())
}

func renderOrderPage(o *order.Order) string {
	var b strings.Builder
	b.WriteString(`<div class="card">`)

	fmt.Fprintf(&b, "<h1>Order %s</h1>", html.EscapeString(o.Code))
	fmt.Fprintf(&b, `<p><span class="badge" style="background:%s">%s</span></p>`,
		statusBadgeColor(o.Status), html.EscapeString(string(o.Status)))
	placed := time.UnixMilli(o.CreatedAt).UTC().Format("January 2, 2006")
	fmt.Fprintf(&b, "<p>Placed on %s for %s</p>",
		html.EscapeString(placed), html.EscapeString(o.Customer.Name))

	b.WriteString("<h2>Items</h2>")
	for _, it := range o.Items {
		fmt.Fprintf(&b, `<div class="row"><span>%s &times; %d</span><span>$ %s</span></div>`,
			html.EscapeString(it.Name), it.Quantity, mail.FormatPrice(it.Price))
	}

	b.WriteString("<h2>Summary</h2>")
	fmt.Fprintf(&b, `<div class="row"><span>Subtotal</span><span>$ %s</span></div>`,
		mail.FormatPrice(o.Totals.Subtotal))
	fmt.Fprintf(&b, `<div class="row"><span>Shipping</span><span>$ %s</span></div>`,
		mail.FormatPrice(o.Totals.Shipping))
	fmt.Fprintf(&b, `<div class="row"><span>VAT (included)</span><span>$ %s</span></div>`,
		mail.FormatPrice(o.Totals.VAT))
	fmt.Fprintf(&b, `<div class="row total"><span>Grand total</span><span>$ %s</span></div>`,
		mail.FormatPrice(o.Totals.GrandTotal))

	b.WriteString("<h2>Delivery</h2>")
	fmt.Fprintf(&b, "<p>%s<br>%s %s<br>%s</p>",
		html.EscapeString(o.Shipping.Address),
		html.EscapeString(o.Shipping.ZipCode),
		html.EscapeString(o.Shipping.City),
		html.EscapeString(o.Shipping.Country))

	b.WriteString("</div>")
	return renderPageShell("Order "+o.Code, b.String())
}
