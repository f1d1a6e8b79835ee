// Package mail renders the order confirmation email and dispatches it through
// the Resend transactional email API.
package mail

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/charlz/audiophile-api/internal/domain/order"
)

// Confirmation is the input for the confirmation email renderer. Everything
// user-provided is escaped on the way into the document.
type Confirmation struct {
	CustomerName string
	OrderCode    string
	Items        []ConfirmationItem
	Totals       order.Totals
	Shipping     order.ShippingAddress

	// ViewOrderURL is the absolute link for the "view order" button.
	ViewOrderURL string
	// SupportEmail is shown in the footer support block.
	SupportEmail string
	// Date stamps the order-date row; the renderer is deterministic apart
	// from this input.
	Date time.Time
}

// ConfirmationItem is one row of the email items table.
type ConfirmationItem struct {
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// ConfirmationFromOrder builds the renderer input from a persisted order.
func ConfirmationFromOrder(o *order.Order, appBaseURL, supportEmail string, date time.Time) Confirmation {
	items := make([]ConfirmationItem, len(o.Items))
	for i, it := range o.Items {
		items[i] = ConfirmationItem{Name: it.Name, Price: it.Price, Quantity: it.Quantity}
	}
	return Confirmation{
		CustomerName: o.Customer.Name,
		OrderCode:    o.Code,
		Items:        items,
		Totals:       o.Totals,
		Shipping:     o.Shipping,
		ViewOrderURL: strings.TrimRight(appBaseURL, "/") + "/order/" + o.Code,
		SupportEmail: supportEmail,
		Date:         date,
	}
}

// productKindSuffix strips the product category word from item names so the
// email shows the short marketing name ("XX99 Mark II" instead of
// "XX99 Mark II Headphones").
var productKindSuffix = regexp.MustCompile(`(?i)headphones|speaker|earphones`)

func shortName(name string) string {
	return strings.TrimSpace(productKindSuffix.ReplaceAllString(name, ""))
}

// FormatPrice renders a monetary value as "#,##0.00" (en-US grouping).
func FormatPrice(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// RenderConfirmation produces a standalone HTML document for the order
// confirmation email: success header, order details, items table, totals
// block, shipping address, view-order button, support and footer sections.
// Styles are inlined; no external assets beyond the CTA link.
func RenderConfirmation(c Confirmation) string {
	var b strings.Builder
	b.Grow(8 << 10)

	b.WriteString(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Order Confirmation - Audiophile</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #F1F1F1; color: #000000;">
  <table cellpadding="0" cellspacing="0" border="0" width="100%" style="padding: 40px 20px; background-color: #F1F1F1;">
    <tr>
      <td align="center">
        <table cellpadding="0" cellspacing="0" border="0" width="640" style="max-width: 640px; background: #FAFAFA; border-radius: 8px; overflow: hidden; box-shadow: 0 2px 8px rgba(0,0,0,0.08);">
`)

	// Success header.
	b.WriteString(`          <tr>
            <td style="padding: 48px 48px 32px 48px; background: #FFFFFF; border-radius: 8px;">
              <div style="width: 64px; height: 64px; margin-bottom: 32px;">
                <svg width="64" height="64" viewBox="0 0 64 64" fill="none" xmlns="http://www.w3.org/2000/svg">
                  <circle cx="32" cy="32" r="32" fill="#D87D4A"/>
                  <path d="M20.5 32.5L28.5 40.5L44.5 24.5" stroke="white" stroke-width="4" stroke-linecap="round" stroke-linejoin="round"/>
                </svg>
              </div>
              <h1 style="margin: 0 0 16px 0; font-size: 32px; line-height: 1.2; font-weight: 700; color: #000000; text-transform: uppercase;">Thank you<br/>for your order</h1>
              <p style="margin: 0; font-size: 15px; line-height: 25px; color: rgba(0,0,0,0.5);">You will receive an email confirmation shortly.</p>
            </td>
          </tr>
`)

	// Order details: date, code, status badge.
	fmt.Fprintf(&b, `          <tr>
            <td style="padding: 0 48px 24px 48px; background: #FFFFFF;">
              <table width="100%%" cellpadding="0" cellspacing="0" style="background: #F1F1F1; border-radius: 8px; overflow: hidden;">
                <tr>
                  <td style="padding: 24px; border-bottom: 1px solid rgba(0,0,0,0.08);">
                    <p style="margin: 0; font-size: 12px; text-transform: uppercase; color: rgba(0,0,0,0.5);">Order Date</p>
                    <p style="margin: 8px 0 0 0; font-size: 15px; color: #000000;">%s</p>
                  </td>
                </tr>
                <tr>
                  <td style="padding: 24px; border-bottom: 1px solid rgba(0,0,0,0.08);">
                    <p style="margin: 0; font-size: 12px; text-transform: uppercase; color: rgba(0,0,0,0.5);">Order ID</p>
                    <p style="margin: 8px 0 0 0; font-size: 15px; font-weight: 700; letter-spacing: 1px; color: #000000; font-family: 'SFMono-Regular', 'Menlo', 'Consolas', 'Liberation Mono', monospace;">%s</p>
                  </td>
                </tr>
                <tr>
                  <td style="padding: 24px;">
                    <p style="margin: 0; font-size: 12px; text-transform: uppercase; color: rgba(0,0,0,0.5);">Status</p>
                    <p style="display: inline-block; margin: 8px 0 0 0; padding: 4px 16px; border-radius: 999px; font-size: 12px; font-weight: 700; text-transform: uppercase; color: #FFFFFF; background: #D87D4A;">CONFIRMED</p>
                  </td>
                </tr>
              </table>
            </td>
          </tr>
`, c.Date.Format("January 2, 2006, 03:04 PM"), html.EscapeString(c.OrderCode))

	// Items.
	b.WriteString(`          <tr>
            <td style="padding: 0 48px 24px 48px; background: #FFFFFF;">
              <h2 style="margin: 0 0 16px 0; font-size: 18px; font-weight: 700; text-transform: uppercase; color: #000000;">Order Items</h2>
              <table width="100%" cellpadding="0" cellspacing="0" style="background: #F1F1F1; border-radius: 8px; padding: 24px;">
`)
	if len(c.Items) == 0 {
		b.WriteString(`                <tr><td style="padding: 20px; text-align: center; color: rgba(0,0,0,0.5);">Your cart was empty.</td></tr>
`)
	}
	for i, it := range c.Items {
		pad, border := "16px", "1px solid rgba(0,0,0,0.08)"
		if i == len(c.Items)-1 {
			pad, border = "0", "none"
		}
		fmt.Fprintf(&b, `                <tr>
                  <td style="padding: 0 0 %s 0;">
                    <table cellpadding="0" cellspacing="0" border="0" width="100%%" style="border-bottom: %s; padding-bottom: %s;">
                      <tr>
                        <td style="width: 64px; vertical-align: top; padding-right: 16px;">
                          <div style="width: 64px; height: 64px; background: #F1F1F1; border-radius: 8px;"></div>
                        </td>
                        <td style="vertical-align: top;">
                          <p style="margin: 0; font-weight: 700; font-size: 15px; color: #000000;">%s</p>
                          <p style="margin: 4px 0 0 0; font-size: 14px; font-weight: 700; color: rgba(0,0,0,0.5);">$ %s</p>
                        </td>
                        <td style="vertical-align: top; text-align: right; padding-left: 16px;">
                          <p style="margin: 0; font-size: 15px; color: rgba(0,0,0,0.5);">x%d</p>
                        </td>
                      </tr>
                    </table>
                  </td>
                </tr>
`, pad, border, pad, html.EscapeString(shortName(it.Name)), FormatPrice(it.Price), it.Quantity)
	}
	b.WriteString(`              </table>
            </td>
          </tr>
`)

	// Totals.
	fmt.Fprintf(&b, `          <tr>
            <td style="padding: 0 48px 24px 48px; background: #FFFFFF;">
              <h2 style="margin: 0 0 16px 0; font-size: 18px; font-weight: 700; text-transform: uppercase; color: #000000;">Order Summary</h2>
              <table width="100%%" cellpadding="0" cellspacing="0" style="background: #F1F1F1; border-radius: 8px; padding: 24px;">
                <tr>
                  <td style="padding-bottom: 8px; font-size: 15px; text-transform: uppercase; color: rgba(0,0,0,0.5);">Subtotal</td>
                  <td style="padding-bottom: 8px; font-size: 18px; text-align: right; color: #000000;">$ %s</td>
                </tr>
                <tr>
                  <td style="padding-bottom: 8px; font-size: 15px; text-transform: uppercase; color: rgba(0,0,0,0.5);">Shipping</td>
                  <td style="padding-bottom: 8px; font-size: 18px; text-align: right; color: #000000;">$ %s</td>
                </tr>
                <tr>
                  <td style="padding-bottom: 16px; font-size: 15px; text-transform: uppercase; color: rgba(0,0,0,0.5);">VAT (included)</td>
                  <td style="padding-bottom: 16px; font-size: 18px; text-align: right; color: #000000;">$ %s</td>
                </tr>
                <tr>
                  <td style="padding-top: 16px; border-top: 1px solid rgba(0,0,0,0.08); font-size: 15px; text-transform: uppercase; color: rgba(0,0,0,0.5);">Grand Total</td>
                  <td style="padding-top: 16px; border-top: 1px solid rgba(0,0,0,0.08); font-size: 18px; font-weight: 700; text-align: right; color: #D87D4A;">$ %s</td>
                </tr>
              </table>
            </td>
          </tr>
`, FormatPrice(c.Totals.Subtotal), FormatPrice(c.Totals.Shipping), FormatPrice(c.Totals.VAT), FormatPrice(c.Totals.GrandTotal))

	// Shipping address.
	fmt.Fprintf(&b, `          <tr>
            <td style="padding: 0 48px 24px 48px; background: #FFFFFF;">
              <h2 style="margin: 0 0 16px 0; font-size: 18px; font-weight: 700; text-transform: uppercase; color: #000000;">Shipping Address</h2>
              <table width="100%%" cellpadding="0" cellspacing="0" style="background: #F1F1F1; border-radius: 8px; padding: 24px;">
                <tr>
                  <td>
                    <p style="margin: 0; font-weight: 700; color: #000000;">%s</p>
                    <p style="margin: 4px 0 0 0; color: rgba(0,0,0,0.75); line-height: 1.6;">%s<br/>%s, %s<br/>%s</p>
                  </td>
                </tr>
              </table>
            </td>
          </tr>
`, html.EscapeString(c.CustomerName),
		html.EscapeString(c.Shipping.Address),
		html.EscapeString(c.Shipping.City),
		html.EscapeString(c.Shipping.ZipCode),
		html.EscapeString(c.Shipping.Country))

	// CTA button.
	fmt.Fprintf(&b, `          <tr>
            <td style="padding: 0 48px 32px 48px; background: #FFFFFF;">
              <a href="%s" style="display: block; padding: 15px 32px; background: #D87D4A; color: #FFFFFF; font-size: 13px; font-weight: 700; letter-spacing: 1px; text-transform: uppercase; text-decoration: none; text-align: center; border-radius: 2px;">View Order Details</a>
            </td>
          </tr>
`, html.EscapeString(c.ViewOrderURL))

	// Support block and footer.
	fmt.Fprintf(&b, `          <tr>
            <td style="padding: 32px 48px; background: #FFFFFF; border-top: 1px solid rgba(0,0,0,0.08); text-align: center;">
              <p style="margin: 0; font-size: 14px; color: rgba(0,0,0,0.5);">Need help? Contact our support team</p>
              <p style="margin: 8px 0 0 0; font-size: 14px; font-weight: 600;">
                <a href="mailto:%s" style="color: #D87D4A; text-decoration: none;">%s</a>
              </p>
            </td>
          </tr>
          <tr>
            <td style="padding: 24px 48px; background: #F1F1F1; text-align: center; border-top: 1px solid rgba(0,0,0,0.08);">
              <p style="margin: 0; font-size: 12px; text-transform: uppercase; color: rgba(0,0,0,0.4);">&copy; %d Audiophile. All rights reserved.</p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>
`, html.EscapeString(c.SupportEmail), html.EscapeString(c.SupportEmail), c.Date.Year())

	return b.String()
}
