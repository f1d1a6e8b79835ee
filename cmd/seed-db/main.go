// Command seed-db connects to PostgreSQL, runs migrations, and inserts a few
// demo orders for local development of the storefront lookup flows.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/charlz/audiophile-api/internal/domain/checkout"
	"github.com/charlz/audiophile-api/internal/domain/order"
	"github.com/charlz/audiophile-api/internal/storage/postgres"
)

func main() {
	var databaseURL string

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	repo := postgres.NewOrderRepository(pool)
	for _, o := range demoOrders() {
		o := o
		if err := repo.Create(ctx, &o); err != nil {
			return errors.Wrap(err, "insert order")
		}
		slog.Info("inserted order",
			slog.String("code", o.Code),
			slog.String("ref", o.Ref.String()),
			slog.String("email", o.Customer.Email))
	}

	return nil
}

func demoOrders() []order.Order {
	carts := []struct {
		customer order.Customer
		shipping order.ShippingAddress
		payment  order.Payment
		items    []order.Item
	}{
		{
			customer: order.Customer{Name: "Alexei Ward", Email: "alexei@mail.com", Phone: "+1 202-555-0136"},
			shipping: order.ShippingAddress{Address: "1137 Williams Avenue", ZipCode: "10001", City: "New York", Country: "United States"},
			payment:  order.Payment{Method: order.PaymentEMoney, EMoneyNumber: "238521993"},
			items: []order.Item{
				{ID: 1, Name: "XX99 Mark II Headphones", Price: decimal.NewFromInt(2999), Quantity: 1, Image: "/cart/xx99-mark-two.jpg"},
				{ID: 5, Name: "ZX9 Speaker", Price: decimal.NewFromInt(4500), Quantity: 1, Image: "/cart/zx9.jpg"},
			},
		},
		{
			customer: order.Customer{Name: "Maria Santos", Email: "maria@mail.com", Phone: "+44 20 7946 0857"},
			shipping: order.ShippingAddress{Address: "14 Cranbrook Road", ZipCode: "IG1 4DJ", City: "London", Country: "United Kingdom"},
			payment:  order.Payment{Method: order.PaymentCashOnDelivery},
			items: []order.Item{
				{ID: 3, Name: "YX1 Wireless Earphones", Price: decimal.NewFromInt(599), Quantity: 2, Image: "/cart/yx1.jpg"},
			},
		},
	}

	orders := make([]order.Order, len(carts))
	for i, c := range carts {
		orders[i] = order.Order{
			Code:     order.NewCode(time.Now()),
			Customer: c.customer,
			Shipping: c.shipping,
			Payment:  c.payment,
			Items:    c.items,
			Totals:   checkout.ComputeTotals(c.items),
		}
	}
	return orders
}
