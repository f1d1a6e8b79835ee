package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the order lifecycle state. It is assigned StatusPending at
// creation and changes only through Repository.UpdateStatus.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Payment method labels. No payment gateway is integrated; the method is
// captured as a label on the order.
const (
	PaymentEMoney         = "e-Money"
	PaymentCashOnDelivery = "Cash on Delivery"
)

// ErrNotFound indicates no order matches the given order code.
var ErrNotFound = errors.New("order not found")

// Item is a line item copied from the cart at submission time. Orders keep
// their own snapshot of name, price and image: there is no foreign key back
// to a product catalog, so later catalog changes never affect past orders.
type Item struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Image    string          `json:"image"`
}

// Customer holds the buyer's contact details.
type Customer struct {
	Name  string
	Email string
	Phone string
}

// ShippingAddress holds the delivery destination.
type ShippingAddress struct {
	Address string
	ZipCode string
	City    string
	Country string
}

// Payment holds the chosen payment method. EMoneyNumber is set only when the
// method is e-Money.
type Payment struct {
	Method       string
	EMoneyNumber string
}

// Totals holds the monetary breakdown computed at submission time.
type Totals struct {
	Subtotal   decimal.Decimal
	Shipping   decimal.Decimal
	VAT        decimal.Decimal
	GrandTotal decimal.Decimal
}

// Order is the persisted order record.
//
// Ref is the store-internal reference assigned on insert. Code is the
// human-readable order code (AUD-DDMMYY-XXXX) used as the external lookup
// key; it is set once and never changes, but uniqueness is not enforced at
// the store layer, so two records may share a code.
type Order struct {
	Ref       uuid.UUID
	Code      string
	Status    Status
	Customer  Customer
	Shipping  ShippingAddress
	Payment   Payment
	Items     []Item
	Totals    Totals
	CreatedAt int64 // epoch milliseconds, immutable
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create inserts the order with status pending and the current timestamp,
	// assigning Ref. Duplicate codes are not rejected: a second Create with
	// the same code produces a second record.
	Create(ctx context.Context, o *Order) error

	// FindByCode returns the first record matching the code, in creation
	// order, or ErrNotFound.
	FindByCode(ctx context.Context, code string) (*Order, error)

	// FindByEmail returns every record whose customer email matches.
	FindByEmail(ctx context.Context, email string) ([]Order, error)

	// UpdateStatus resolves the first record matching the code and patches
	// its status field only, returning the record's Ref. The status string is
	// stored as given; it is not constrained to the Status constants.
	// Returns ErrNotFound when no record matches.
	UpdateStatus(ctx context.Context, code string, status Status) (uuid.UUID, error)
}
