package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/charlz/audiophile-api/internal/domain/checkout"
	"github.com/charlz/audiophile-api/internal/domain/order"
	"github.com/charlz/audiophile-api/internal/mail"
)

// stubOrders is an in-memory order.Repository keyed by order code.
type stubOrders struct {
	byCode    map[string]*order.Order
	createErr error
	lastSaved *order.Order
}

func newStubOrders() *stubOrders {
	return &stubOrders{byCode: make(map[string]*order.Order)}
}

func (s *stubOrders) Create(_ context.Context, o *order.Order) error {
	if s.createErr != nil {
		return s.createErr
	}
	o.Ref = uuid.New()
	o.Status = order.StatusPending
	o.CreatedAt = time.Now().UnixMilli()
	s.byCode[o.Code] = o
	s.lastSaved = o
	return nil
}

func (s *stubOrders) FindByCode(_ context.Context, code string) (*order.Order, error) {
	o, ok := s.byCode[code]
	if !ok {
		return nil, order.ErrNotFound
	}
	return o, nil
}

func (s *stubOrders) FindByEmail(_ context.Context, email string) ([]order.Order, error) {
	var out []order.Order
	for _, o := range s.byCode {
		if o.Customer.Email == email {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *stubOrders) UpdateStatus(_ context.Context, code string, status order.Status) (uuid.UUID, error) {
	o, ok := s.byCode[code]
	if !ok {
		return uuid.Nil, order.ErrNotFound
	}
	o.Status = status
	return o.Ref, nil
}

// stubMailer satisfies both checkout.Mailer and the Dispatcher interface.
type stubMailer struct {
	id      string
	warning string
	err     error

	lastTo   string
	lastConf mail.Confirmation
}

func (m *stubMailer) SendConfirmation(context.Context, *order.Order) (string, error) {
	return m.warning, m.err
}

func (m *stubMailer) Dispatch(_ context.Context, to string, conf mail.Confirmation) (string, string, error) {
	m.lastTo = to
	m.lastConf = conf
	return m.id, m.warning, m.err
}

func newTestHandler(t *testing.T, orders *stubOrders, mailer *stubMailer) *Handler {
	t.Helper()
	svc := checkout.NewService(orders, mailer, zaptest.NewLogger(t))
	h := NewHandler(Config{
		AppBaseURL:   "https://audiophile.example.com",
		SupportEmail: "support@audiophile.example.com",
	}, svc, orders, mailer)
	h.now = func() time.Time { return time.Date(2026, time.March, 7, 14, 30, 0, 0, time.UTC) }
	return h
}

func doRequest(t *testing.T, h *Handler, method, target, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
