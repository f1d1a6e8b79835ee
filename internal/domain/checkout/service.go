// Package checkout implements the order submission workflow: build an order
// from the cart snapshot and form fields, persist it, then attempt a
// best-effort confirmation email.
package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/charlz/audiophile-api/internal/domain/order"
)

// Sentinel errors for submission validation.
var (
	// ErrEmptyCart rejects a submission with no items; an order never reaches
	// persistence with an empty items array.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrSubmissionInFlight rejects a duplicate submission while one with the
	// same session key is still being processed. Callers treat it as a no-op.
	ErrSubmissionInFlight = errors.New("submission already in flight")
)

// Pricing constants. VAT is applied as vatRate/100 of the subtotal and the
// grand total omits VAT entirely; both match the storefront's historical
// behaviour and are kept as-is so stored orders stay consistent with it.
var (
	shippingCost = decimal.NewFromInt(50)
	vatRate      = decimal.RequireFromString("0.2")
	oneHundred   = decimal.NewFromInt(100)
)

// ComputeTotals derives the monetary breakdown from the cart snapshot:
// subtotal is the sum of price*quantity, shipping is a fixed constant,
// VAT is subtotal*vatRate/100, grand total is subtotal+shipping.
func ComputeTotals(items []order.Item) order.Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return order.Totals{
		Subtotal:   subtotal,
		Shipping:   shippingCost,
		VAT:        subtotal.Mul(vatRate).Div(oneHundred),
		GrandTotal: subtotal.Add(shippingCost),
	}
}

// Mailer dispatches the order confirmation email. A non-empty warning means
// the provider accepted the request but could not deliver (sandbox mode).
type Mailer interface {
	SendConfirmation(ctx context.Context, o *order.Order) (warning string, err error)
}

// SubmitRequest holds the checkout form fields and the cart snapshot.
type SubmitRequest struct {
	// SessionKey identifies the checkout session for duplicate-submission
	// protection. Empty means no protection (trusted caller).
	SessionKey string

	Customer order.Customer
	Shipping order.ShippingAddress
	Payment  order.Payment
	Cart     []order.Item
}

// Result is the outcome of a successful submission.
type Result struct {
	Order *order.Order

	// EmailSent is false when dispatch failed outright; EmailWarning carries
	// the provider's sandbox-mode message when delivery was skipped.
	EmailSent    bool
	EmailWarning string
}

// Service runs the submission workflow. Only order persistence is fatal;
// everything after the insert is advisory.
type Service struct {
	orders order.Repository
	mailer Mailer
	lg     *zap.Logger

	now     func() time.Time
	newCode func(time.Time) string

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewService creates a checkout Service.
func NewService(orders order.Repository, mailer Mailer, lg *zap.Logger) *Service {
	return &Service{
		orders:   orders,
		mailer:   mailer,
		lg:       lg,
		now:      time.Now,
		newCode:  order.NewCode,
		inflight: make(map[string]struct{}),
	}
}

// Submit runs the workflow: guard against duplicate submission, generate the
// order code, assemble the record, persist it, and attempt the confirmation
// email. Email failure never rolls back the order and never fails the call.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Result, error) {
	if req.SessionKey != "" {
		if !s.acquire(req.SessionKey) {
			return nil, ErrSubmissionInFlight
		}
		defer s.release(req.SessionKey)
	}

	if len(req.Cart) == 0 {
		return nil, ErrEmptyCart
	}

	// The e-money account number only makes sense for e-Money payments.
	payment := req.Payment
	if payment.Method != order.PaymentEMoney {
		payment.EMoneyNumber = ""
	}

	// Snapshot the cart so later caller mutations cannot leak into the order.
	items := make([]order.Item, len(req.Cart))
	copy(items, req.Cart)

	o := &order.Order{
		Code:     s.newCode(s.now()),
		Customer: req.Customer,
		Shipping: req.Shipping,
		Payment:  payment,
		Items:    items,
		Totals:   ComputeTotals(items),
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	res := &Result{Order: o, EmailSent: true}
	warning, err := s.mailer.SendConfirmation(ctx, o)
	switch {
	case err != nil:
		res.EmailSent = false
		s.lg.Error("confirmation email failed",
			zap.String("order_code", o.Code),
			zap.Error(err))
	case warning != "":
		res.EmailWarning = warning
		s.lg.Warn("confirmation email skipped",
			zap.String("order_code", o.Code),
			zap.String("warning", warning))
	}

	return res, nil
}

func (s *Service) acquire(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[key]; busy {
		return false
	}
	s.inflight[key] = struct{}{}
	return true
}

func (s *Service) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, key)
}
