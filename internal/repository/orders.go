package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gocql/gocql"

	"patchwork_back_end/internal/models"
)

// ScyllaOrders stocke commandes, remboursements et journal d'audit dans le keyspace commandes.
// Les lignes de commande sont sérialisées en JSON dans la colonne items.
type ScyllaOrders struct {
	session *gocql.Session
}

func NewScyllaOrders(session *gocql.Session) *ScyllaOrders {
	return &ScyllaOrders{session: session}
}

const orderColumns = `order_id, user_id, customer_email, items, subtotal_cents, shipping_cents, total_cents, shipping_option, status, customer_note, review_note, reviewed_by, reviewed_at, created_at, updated_at`

func (r *ScyllaOrders) CreateOrder(ctx context.Context, o *models.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("sérialisation lignes commande: %w", err)
	}

	b := r.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	b.Query(`INSERT INTO orders (`+orderColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.UserID, o.CustomerEmail, string(items), o.SubtotalCents, o.ShippingCents, o.TotalCents,
		o.ShippingOption, o.Status, o.CustomerNote, o.ReviewNote, o.ReviewedBy, o.ReviewedAt, o.CreatedAt, o.UpdatedAt)
	b.Query(`INSERT INTO orders_by_user (user_id, created_at, order_id, status, total_cents) VALUES (?, ?, ?, ?, ?)`,
		o.UserID, o.CreatedAt, o.ID, o.Status, o.TotalCents)
	b.Query(`INSERT INTO orders_by_status (status, created_at, order_id) VALUES (?, ?, ?)`,
		o.Status, o.CreatedAt, o.ID)

	if err := r.session.ExecuteBatch(b); err != nil {
		return fmt.Errorf("création commande %s: %w", o.ID, err)
	}
	return nil
}

func (r *ScyllaOrders) GetOrder(ctx context.Context, id gocql.UUID) (*models.Order, error) {
	var (
		o     models.Order
		items string
	)
	err := r.session.Query(`SELECT `+orderColumns+` FROM orders WHERE order_id = ?`, id).
		WithContext(ctx).
		Scan(&o.ID, &o.UserID, &o.CustomerEmail, &items, &o.SubtotalCents, &o.ShippingCents, &o.TotalCents,
			&o.ShippingOption, &o.Status, &o.CustomerNote, &o.ReviewNote, &o.ReviewedBy, &o.ReviewedAt,
			&o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lecture commande %s: %w", id, err)
	}
	if items != "" {
		if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
			return nil, fmt.Errorf("décodage lignes commande %s: %w", id, err)
		}
	}
	return &o, nil
}

func (r *ScyllaOrders) UpdateOrder(ctx context.Context, o *models.Order, previousStatus string) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("sérialisation lignes commande: %w", err)
	}

	// LWT : deux décisions concurrentes ne peuvent pas partir du même statut
	applied, err := r.session.Query(`UPDATE orders SET items = ?, status = ?, review_note = ?, reviewed_by = ?, reviewed_at = ?, updated_at = ? WHERE order_id = ? IF status = ?`,
		string(items), o.Status, o.ReviewNote, o.ReviewedBy, o.ReviewedAt, o.UpdatedAt, o.ID, previousStatus).
		WithContext(ctx).MapScanCAS(map[string]any{})
	if err != nil {
		return fmt.Errorf("mise à jour commande %s: %w", o.ID, err)
	}
	if !applied {
		return ErrConflict
	}

	b := r.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	b.Query(`UPDATE orders_by_user SET status = ? WHERE user_id = ? AND created_at = ? AND order_id = ?`,
		o.Status, o.UserID, o.CreatedAt, o.ID)
	if previousStatus != o.Status {
		b.Query(`DELETE FROM orders_by_status WHERE status = ? AND created_at = ? AND order_id = ?`,
			previousStatus, o.CreatedAt, o.ID)
		b.Query(`INSERT INTO orders_by_status (status, created_at, order_id) VALUES (?, ?, ?)`,
			o.Status, o.CreatedAt, o.ID)
	}

	if err := r.session.ExecuteBatch(b); err != nil {
		return fmt.Errorf("mise à jour index commande %s: %w", o.ID, err)
	}
	return nil
}

func (r *ScyllaOrders) ListOrdersByUser(ctx context.Context, userID string, limit int) ([]models.Order, error) {
	iter := r.session.Query(`SELECT order_id FROM orders_by_user WHERE user_id = ? LIMIT ?`, userID, limit).
		WithContext(ctx).Iter()
	return r.collect(ctx, iter)
}

func (r *ScyllaOrders) ListOrdersByStatus(ctx context.Context, status string, limit int) ([]models.Order, error) {
	iter := r.session.Query(`SELECT order_id FROM orders_by_status WHERE status = ? LIMIT ?`, status, limit).
		WithContext(ctx).Iter()
	return r.collect(ctx, iter)
}

func (r *ScyllaOrders) collect(ctx context.Context, iter *gocql.Iter) ([]models.Order, error) {
	var ids []gocql.UUID
	var id gocql.UUID
	for iter.Scan(&id) {
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture index commandes: %w", err)
	}

	orders := make([]models.Order, 0, len(ids))
	for _, id := range ids {
		o, err := r.GetOrder(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue // index en avance sur la table principale
		}
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, nil
}

// =============================================
// REMBOURSEMENTS
// =============================================

const refundColumns = `refund_id, order_id, user_id, reason, status, amount_cents, admin_note, processed_by, created_at, updated_at`

func (r *ScyllaOrders) CreateRefund(ctx context.Context, rf *models.Refund) error {
	if err := r.claimActive(ctx, rf); err != nil {
		return err
	}

	b := r.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	b.Query(`INSERT INTO refunds (`+refundColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rf.ID, rf.OrderID, rf.UserID, rf.Reason, rf.Status, rf.AmountCents, rf.AdminNote, rf.ProcessedBy,
		rf.CreatedAt, rf.UpdatedAt)
	b.Query(`INSERT INTO refunds_by_order (order_id, refund_id) VALUES (?, ?)`, rf.OrderID, rf.ID)
	b.Query(`INSERT INTO refunds_by_user (user_id, created_at, refund_id) VALUES (?, ?, ?)`,
		rf.UserID, rf.CreatedAt, rf.ID)

	if err := r.session.ExecuteBatch(b); err != nil {
		r.releaseActive(ctx, rf)
		return fmt.Errorf("création remboursement %s: %w", rf.ID, err)
	}
	return nil
}

// claimActive réserve la commande pour ce remboursement. Une réservation laissée par
// un remboursement refusé (ou jamais écrit) est reprise.
func (r *ScyllaOrders) claimActive(ctx context.Context, rf *models.Refund) error {
	existing := map[string]any{}
	applied, err := r.session.Query(`INSERT INTO active_refunds (order_id, refund_id) VALUES (?, ?) IF NOT EXISTS`,
		rf.OrderID, rf.ID).WithContext(ctx).MapScanCAS(existing)
	if err != nil {
		return fmt.Errorf("réservation remboursement %s: %w", rf.OrderID, err)
	}
	if applied {
		return nil
	}

	holder, _ := existing["refund_id"].(gocql.UUID)
	current, err := r.GetRefund(ctx, holder)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return err
	case current.Status != models.RefundRejected:
		return ErrConflict
	}

	applied, err = r.session.Query(`UPDATE active_refunds SET refund_id = ? WHERE order_id = ? IF refund_id = ?`,
		rf.ID, rf.OrderID, holder).WithContext(ctx).MapScanCAS(map[string]any{})
	if err != nil {
		return fmt.Errorf("réservation remboursement %s: %w", rf.OrderID, err)
	}
	if !applied {
		return ErrConflict
	}
	return nil
}

// releaseActive libère la commande ; en cas d'échec claimActive reprendra la réservation
func (r *ScyllaOrders) releaseActive(ctx context.Context, rf *models.Refund) {
	_, _ = r.session.Query(`DELETE FROM active_refunds WHERE order_id = ? IF refund_id = ?`, rf.OrderID, rf.ID).
		WithContext(ctx).MapScanCAS(map[string]any{})
}

func (r *ScyllaOrders) GetRefund(ctx context.Context, id gocql.UUID) (*models.Refund, error) {
	var rf models.Refund
	err := r.session.Query(`SELECT `+refundColumns+` FROM refunds WHERE refund_id = ?`, id).
		WithContext(ctx).
		Scan(&rf.ID, &rf.OrderID, &rf.UserID, &rf.Reason, &rf.Status, &rf.AmountCents, &rf.AdminNote,
			&rf.ProcessedBy, &rf.CreatedAt, &rf.UpdatedAt)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lecture remboursement %s: %w", id, err)
	}
	return &rf, nil
}

func (r *ScyllaOrders) UpdateRefund(ctx context.Context, rf *models.Refund, previousStatus string) error {
	applied, err := r.session.Query(`UPDATE refunds SET status = ?, admin_note = ?, processed_by = ?, updated_at = ? WHERE refund_id = ? IF status = ?`,
		rf.Status, rf.AdminNote, rf.ProcessedBy, rf.UpdatedAt, rf.ID, previousStatus).
		WithContext(ctx).MapScanCAS(map[string]any{})
	if err != nil {
		return fmt.Errorf("mise à jour remboursement %s: %w", rf.ID, err)
	}
	if !applied {
		return ErrConflict
	}
	if rf.Status == models.RefundRejected {
		r.releaseActive(ctx, rf)
	}
	return nil
}

func (r *ScyllaOrders) ListRefundsByOrder(ctx context.Context, orderID gocql.UUID) ([]models.Refund, error) {
	iter := r.session.Query(`SELECT refund_id FROM refunds_by_order WHERE order_id = ?`, orderID).
		WithContext(ctx).Iter()
	return r.collectRefunds(ctx, iter)
}

func (r *ScyllaOrders) ListRefundsByUser(ctx context.Context, userID string) ([]models.Refund, error) {
	iter := r.session.Query(`SELECT refund_id FROM refunds_by_user WHERE user_id = ?`, userID).
		WithContext(ctx).Iter()
	return r.collectRefunds(ctx, iter)
}

func (r *ScyllaOrders) ListRefunds(ctx context.Context, status string, limit int) ([]models.Refund, error) {
	var q *gocql.Query
	if status == "" {
		q = r.session.Query(`SELECT `+refundColumns+` FROM refunds LIMIT ?`, limit)
	} else {
		q = r.session.Query(`SELECT `+refundColumns+` FROM refunds WHERE status = ? LIMIT ? ALLOW FILTERING`, status, limit)
	}
	iter := q.WithContext(ctx).Iter()

	refunds := []models.Refund{}
	var rf models.Refund
	for iter.Scan(&rf.ID, &rf.OrderID, &rf.UserID, &rf.Reason, &rf.Status, &rf.AmountCents, &rf.AdminNote,
		&rf.ProcessedBy, &rf.CreatedAt, &rf.UpdatedAt) {
		refunds = append(refunds, rf)
		rf = models.Refund{}
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture remboursements: %w", err)
	}
	return refunds, nil
}

func (r *ScyllaOrders) collectRefunds(ctx context.Context, iter *gocql.Iter) ([]models.Refund, error) {
	var ids []gocql.UUID
	var id gocql.UUID
	for iter.Scan(&id) {
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture index remboursements: %w", err)
	}

	refunds := make([]models.Refund, 0, len(ids))
	for _, id := range ids {
		rf, err := r.GetRefund(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		refunds = append(refunds, *rf)
	}
	return refunds, nil
}

// =============================================
// AUDIT
// =============================================

func (r *ScyllaOrders) InsertAudit(ctx context.Context, e models.AuditLog) error {
	return r.session.Query(`INSERT INTO audit_logs (id, user_id, action, resource, resource_id, old_value, new_value, success, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Action, e.Resource, e.ResourceID, e.OldValue, e.NewValue, e.Success, e.Timestamp).
		WithContext(ctx).Exec()
}
