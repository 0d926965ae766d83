package orders

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patchwork_back_end/internal/audit"
	"patchwork_back_end/internal/logger"
	"patchwork_back_end/internal/models"
	"patchwork_back_end/internal/pricing"
	"patchwork_back_end/internal/repository/repotest"
)

const reason = "Broderie décousue à la réception"

func approved(t *testing.T, f *fixture) *models.Order {
	t.Helper()
	o := f.submit(t, 1)
	o, err := f.svc.Review(context.Background(), o.ID, "admin", Decision{Action: "approve"})
	require.NoError(t, err)
	return o
}

func TestRequestRefund(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := approved(t, f)

	r, err := f.svc.RequestRefund(ctx, "u1", o.ID, RefundInput{Reason: reason})
	require.NoError(t, err)
	assert.Equal(t, models.RefundPending, r.Status)
	assert.Equal(t, o.TotalCents, r.AmountCents)

	_, err = f.svc.RequestRefund(ctx, "u1", o.ID, RefundInput{Reason: reason})
	assert.ErrorIs(t, err, ErrRefundExists)

	mine, err := f.svc.ListMyRefunds(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestRequestRefundValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := approved(t, f)

	amount := func(v int64) *int64 { return &v }

	cases := map[string]struct {
		user string
		in   RefundInput
		want error
	}{
		"short reason":   {"u1", RefundInput{Reason: "  abîmé  "}, ErrInvalidReason},
		"long reason":    {"u1", RefundInput{Reason: strings.Repeat("é", 501)}, ErrInvalidReason},
		"zero amount":    {"u1", RefundInput{Reason: reason, AmountCents: amount(0)}, ErrInvalidAmount},
		"too much":       {"u1", RefundInput{Reason: reason, AmountCents: amount(o.TotalCents + 1)}, ErrInvalidAmount},
		"other customer": {"u2", RefundInput{Reason: reason}, ErrOrderNotFound},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.RequestRefund(ctx, tc.user, o.ID, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	r, err := f.svc.RequestRefund(ctx, "u1", o.ID, RefundInput{Reason: reason, AmountCents: amount(500)})
	require.NoError(t, err)
	assert.Equal(t, int64(500), r.AmountCents)
}

func TestRequestRefundNeedsApprovedOrder(t *testing.T) {
	f := newFixture(t)
	o := f.submit(t, 1)

	_, err := f.svc.RequestRefund(context.Background(), "u1", o.ID, RefundInput{Reason: reason})
	assert.ErrorIs(t, err, ErrNotRefundable)
}

func TestProcessRefundApprove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := approved(t, f)
	r, err := f.svc.RequestRefund(ctx, "u1", o.ID, RefundInput{Reason: reason})
	require.NoError(t, err)

	_, err = f.svc.ProcessRefund(ctx, r.ID, "admin", Decision{Action: "later"})
	assert.ErrorIs(t, err, ErrInvalidAction)
	_, err = f.svc.ProcessRefund(ctx, gocql.TimeUUID(), "admin", Decision{Action: "approve"})
	assert.ErrorIs(t, err, ErrRefundNotFound)

	processed, err := f.svc.ProcessRefund(ctx, r.ID, "admin", Decision{Action: "approve", Note: "Geste commercial"})
	require.NoError(t, err)
	assert.Equal(t, models.RefundApproved, processed.Status)
	assert.Equal(t, "admin", processed.ProcessedBy)
	require.NotNil(t, processed.UpdatedAt)

	order, err := f.svc.Get(ctx, "u1", o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderRefunded, order.Status)

	_, err = f.svc.ProcessRefund(ctx, r.ID, "admin", Decision{Action: "reject"})
	assert.ErrorIs(t, err, ErrRefundProcessed)

	assert.Contains(t, f.store.AuditActions(), models.ActionRefundProcess)
	assert.Contains(t, f.notifier.events, "refund:approved")
}

func TestProcessRefundRejectAllowsNewRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := approved(t, f)
	r, err := f.svc.RequestRefund(ctx, "u1", o.ID, RefundInput{Reason: reason})
	require.NoError(t, err)

	processed, err := f.svc.ProcessRefund(ctx, r.ID, "admin", Decision{Action: "reject", Note: "Hors délai"})
	require.NoError(t, err)
	assert.Equal(t, models.RefundRejected, processed.Status)

	order, err := f.svc.Get(ctx, "u1", o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderApproved, order.Status)

	_, err = f.svc.RequestRefund(ctx, "u1", o.ID, RefundInput{Reason: reason})
	assert.NoError(t, err)

	pending, err := f.svc.ListRefunds(ctx, models.RefundPending, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = f.svc.ListRefunds(ctx, "lost", 0)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

// flakyRefunds fait échouer la première mise à jour de remboursement
type flakyRefunds struct {
	*repotest.Store
	failures int
}

func (f *flakyRefunds) UpdateRefund(ctx context.Context, r *models.Refund, previousStatus string) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("scylla: timeout")
	}
	return f.Store.UpdateRefund(ctx, r, previousStatus)
}

func TestProcessRefundResumesInterruptedApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := approved(t, f)
	r, err := f.svc.RequestRefund(ctx, "u1", o.ID, RefundInput{Reason: reason})
	require.NoError(t, err)

	catalog, err := pricing.DefaultCatalog()
	require.NoError(t, err)
	log := logger.Nop()
	svc := NewService(f.store, &flakyRefunds{Store: f.store, failures: 1}, f.cart, catalog, f.notifier,
		audit.NewRecorder(f.store, log), log)

	_, err = svc.ProcessRefund(ctx, r.ID, "admin", Decision{Action: "approve"})
	require.Error(t, err)
	assert.Equal(t, models.OrderRefunded, f.store.Orders[o.ID].Status)
	assert.Equal(t, models.RefundPending, f.store.Refunds[r.ID].Status)

	_, err = svc.ProcessRefund(ctx, r.ID, "admin", Decision{Action: "reject", Note: "Finalement non"})
	assert.ErrorIs(t, err, ErrRefundApplied)

	processed, err := svc.ProcessRefund(ctx, r.ID, "admin", Decision{Action: "approve"})
	require.NoError(t, err)
	assert.Equal(t, models.RefundApproved, processed.Status)
	assert.Equal(t, models.RefundApproved, f.store.Refunds[r.ID].Status)
	assert.Equal(t, models.OrderRefunded, f.store.Orders[o.ID].Status)
}

// staleReads renvoie des lectures figées, comme un second admin qui a chargé la page avant
type staleReads struct {
	*repotest.Store
	order *models.Order
}

func (s *staleReads) GetOrder(_ context.Context, _ gocql.UUID) (*models.Order, error) {
	o := *s.order
	return &o, nil
}

func (s *staleReads) ListRefundsByOrder(context.Context, gocql.UUID) ([]models.Refund, error) {
	return nil, nil
}

func TestConcurrentDecisionsAreRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.submit(t, 1)
	snapshot := f.store.Orders[o.ID]

	_, err := f.svc.Review(ctx, o.ID, "admin", Decision{Action: "approve"})
	require.NoError(t, err)

	catalog, err := pricing.DefaultCatalog()
	require.NoError(t, err)
	log := logger.Nop()
	stale := &staleReads{Store: f.store, order: &snapshot}
	svc := NewService(stale, stale, f.cart, catalog, nil, audit.NewRecorder(f.store, log), log)

	_, err = svc.Review(ctx, o.ID, "admin2", Decision{Action: "reject", Note: "Design flou"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, models.OrderApproved, f.store.Orders[o.ID].Status)

	_, err = f.svc.RequestRefund(ctx, "u1", o.ID, RefundInput{Reason: reason})
	require.NoError(t, err)

	stale.order = ptr(f.store.Orders[o.ID])
	_, err = svc.RequestRefund(ctx, "u1", o.ID, RefundInput{Reason: reason})
	assert.ErrorIs(t, err, ErrRefundExists)
	assert.Len(t, f.store.Refunds, 1)
}

func ptr[T any](v T) *T { return &v }
