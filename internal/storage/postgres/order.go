package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/charlz/audiophile-api/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

const orderColumns = `ref, order_code, status,
	customer_name, customer_email, customer_phone,
	shipping_address, shipping_zip, shipping_city, shipping_country,
	payment_method, e_money_number, items,
	subtotal, shipping, shipping_cost, vat, vat_amount, grand_total, created_at`

const createOrderSQL = `INSERT INTO orders (ref, order_code, status,
	customer_name, customer_email, customer_phone,
	shipping_address, shipping_zip, shipping_city, shipping_country,
	payment_method, e_money_number, items,
	subtotal, shipping, vat, grand_total, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

const findByCodeSQL = `SELECT ` + orderColumns + `
	FROM orders WHERE order_code = $1 ORDER BY created_at ASC LIMIT 1`

const findByEmailSQL = `SELECT ` + orderColumns + `
	FROM orders WHERE customer_email = $1 ORDER BY created_at ASC`

const resolveRefSQL = `SELECT ref FROM orders
	WHERE order_code = $1 ORDER BY created_at ASC LIMIT 1`

const updateStatusSQL = `UPDATE orders SET status = $2 WHERE ref = $1`

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order, assigning the store reference, pending status
// and the current epoch-millisecond timestamp. The items snapshot is
// serialized to JSON for the JSONB column. order_code carries no uniqueness
// constraint: inserting the same code twice yields two records.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(itemRecords(o.Items))
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}

	o.Ref = uuid.New()
	o.Status = order.StatusPending
	o.CreatedAt = time.Now().UnixMilli()

	_, err = r.pool.Exec(ctx, createOrderSQL,
		o.Ref, o.Code, string(o.Status),
		o.Customer.Name, o.Customer.Email, o.Customer.Phone,
		o.Shipping.Address, o.Shipping.ZipCode, o.Shipping.City, o.Shipping.Country,
		o.Payment.Method, nullIfEmpty(o.Payment.EMoneyNumber), itemsJSON,
		o.Totals.Subtotal, o.Totals.Shipping, o.Totals.VAT, o.Totals.GrandTotal,
		o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.Code, err)
	}

	return nil
}

// FindByCode returns the earliest record carrying the code, or
// order.ErrNotFound.
func (r *OrderRepository) FindByCode(ctx context.Context, code string) (*order.Order, error) {
	row := r.pool.QueryRow(ctx, findByCodeSQL, code)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("finding order by code %q: %w", code, err)
	}
	return o, nil
}

// FindByEmail returns every record whose customer email matches, oldest
// first. An unknown email yields an empty slice, not an error.
func (r *OrderRepository) FindByEmail(ctx context.Context, email string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, findByEmailSQL, email)
	if err != nil {
		return nil, fmt.Errorf("finding orders by email: %w", err)
	}
	defer rows.Close()

	var out []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order rows: %w", err)
	}
	return out, nil
}

// UpdateStatus resolves the earliest record carrying the code and patches its
// status only, mirroring a lookup-then-patch sequence. Returns the patched
// record's reference, or order.ErrNotFound.
func (r *OrderRepository) UpdateStatus(ctx context.Context, code string, status order.Status) (uuid.UUID, error) {
	var ref uuid.UUID
	err := r.pool.QueryRow(ctx, resolveRefSQL, code).Scan(&ref)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, order.ErrNotFound
		}
		return uuid.Nil, fmt.Errorf("resolving order %q: %w", code, err)
	}

	if _, err := r.pool.Exec(ctx, updateStatusSQL, ref, string(status)); err != nil {
		return uuid.Nil, fmt.Errorf("updating status of order %q: %w", code, err)
	}
	return ref, nil
}

// --- row mapping ---

// itemRecord is the JSONB document shape for one line item; prices are plain
// JSON numbers to stay readable next to historical records.
type itemRecord struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Image    string  `json:"image"`
}

func itemRecords(items []order.Item) []itemRecord {
	recs := make([]itemRecord, len(items))
	for i, it := range items {
		recs[i] = itemRecord{
			ID:       it.ID,
			Name:     it.Name,
			Price:    it.Price.InexactFloat64(),
			Quantity: it.Quantity,
			Image:    it.Image,
		}
	}
	return recs
}

func domainItems(recs []itemRecord) []order.Item {
	items := make([]order.Item, len(recs))
	for i, rec := range recs {
		items[i] = order.Item{
			ID:       rec.ID,
			Name:     rec.Name,
			Price:    decimal.NewFromFloat(rec.Price),
			Quantity: rec.Quantity,
			Image:    rec.Image,
		}
	}
	return items
}

// coalesceMoney prefers the current column value over its legacy alias, so
// records written before the shipping/vat rename stay readable.
func coalesceMoney(current, legacy *decimal.Decimal) decimal.Decimal {
	if current != nil {
		return *current
	}
	if legacy != nil {
		return *legacy
	}
	return decimal.Zero
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var (
		o            order.Order
		status       string
		eMoneyNumber *string
		itemsJSON    []byte

		shipping, shippingCost *decimal.Decimal
		vat, vatAmount         *decimal.Decimal
	)

	err := row.Scan(
		&o.Ref, &o.Code, &status,
		&o.Customer.Name, &o.Customer.Email, &o.Customer.Phone,
		&o.Shipping.Address, &o.Shipping.ZipCode, &o.Shipping.City, &o.Shipping.Country,
		&o.Payment.Method, &eMoneyNumber, &itemsJSON,
		&o.Totals.Subtotal, &shipping, &shippingCost, &vat, &vatAmount, &o.Totals.GrandTotal,
		&o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.Status = order.Status(status)
	if eMoneyNumber != nil {
		o.Payment.EMoneyNumber = *eMoneyNumber
	}
	o.Totals.Shipping = coalesceMoney(shipping, shippingCost)
	o.Totals.VAT = coalesceMoney(vat, vatAmount)

	var recs []itemRecord
	if err := json.Unmarshal(itemsJSON, &recs); err != nil {
		return nil, fmt.Errorf("unmarshaling order items: %w", err)
	}
	o.Items = domainItems(recs)

	return &o, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
