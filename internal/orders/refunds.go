package orders

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/gocql/gocql"

	"patchwork_back_end/internal/models"
	"patchwork_back_end/internal/repository"
)

const (
	minReasonLength = 10
	maxReasonLength = 500
)

type RefundInput struct {
	Reason      string `json:"reason" binding:"required"`
	AmountCents *int64 `json:"amount_cents"` // total de la commande si absent
}

// RequestRefund crée une demande de remboursement sur une commande du client
func (s *Service) RequestRefund(ctx context.Context, userID string, orderID gocql.UUID, in RefundInput) (*models.Refund, error) {
	reason := strings.TrimSpace(in.Reason)
	if n := utf8.RuneCountInString(reason); n < minReasonLength || n > maxReasonLength {
		return nil, ErrInvalidReason
	}

	o, err := s.Get(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if !Refundable(o.Status) {
		s.audit.RecordFailure(ctx, userID, models.ActionRefundRequest, models.ResourceRefund, o.ID.String(), "statut "+o.Status)
		return nil, ErrNotRefundable
	}

	amount := o.TotalCents
	if in.AmountCents != nil {
		amount = *in.AmountCents
	}
	if amount <= 0 || amount > o.TotalCents {
		return nil, ErrInvalidAmount
	}

	existing, err := s.refunds.ListRefundsByOrder(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	for _, r := range existing {
		if r.Status != models.RefundRejected {
			return nil, ErrRefundExists
		}
	}

	r := &models.Refund{
		ID:          gocql.TimeUUID(),
		OrderID:     o.ID,
		UserID:      userID,
		Reason:      reason,
		Status:      models.RefundPending,
		AmountCents: amount,
		CreatedAt:   s.now(),
	}
	if err := s.refunds.CreateRefund(ctx, r); err != nil {
		return nil, conflictAs(err, ErrRefundExists)
	}

	s.audit.Record(ctx, userID, models.ActionRefundRequest, models.ResourceRefund, r.ID.String(), nil, r)
	s.notifier.RefundUpdated(*r, *o)
	s.log.Infof("💰 Demande de remboursement créée: %s pour commande %s", r.ID, o.ID)
	return r, nil
}

// ProcessRefund approuve ou refuse une demande en attente. Une approbation passe la
// commande au statut refunded.
func (s *Service) ProcessRefund(ctx context.Context, refundID gocql.UUID, adminID string, d Decision) (*models.Refund, error) {
	if d.Action != "approve" && d.Action != "reject" {
		return nil, ErrInvalidAction
	}
	note := strings.TrimSpace(d.Note)
	if utf8.RuneCountInString(note) > maxNoteLength {
		return nil, ErrNoteTooLong
	}

	r, err := s.refunds.GetRefund(ctx, refundID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRefundNotFound
	}
	if err != nil {
		return nil, err
	}
	if r.Status != models.RefundPending {
		return nil, ErrRefundProcessed
	}

	o, err := s.load(ctx, r.OrderID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	r.AdminNote = note
	r.ProcessedBy = adminID
	r.UpdatedAt = &now

	if d.Action == "approve" {
		switch {
		case o.Status == models.OrderRefunded:
			// approbation interrompue après la mise à jour de la commande : on la termine
		case Refundable(o.Status):
			previous := o.Status
			o.Status = models.OrderRefunded
			o.UpdatedAt = now
			if err := s.orders.UpdateOrder(ctx, o, previous); err != nil {
				return nil, conflictAs(err, ErrNotRefundable)
			}
		default:
			return nil, ErrNotRefundable
		}
		r.Status = models.RefundApproved
	} else {
		if o.Status == models.OrderRefunded {
			return nil, ErrRefundApplied
		}
		r.Status = models.RefundRejected
	}

	if err := s.refunds.UpdateRefund(ctx, r, models.RefundPending); err != nil {
		return nil, conflictAs(err, ErrRefundProcessed)
	}

	s.audit.Record(ctx, adminID, models.ActionRefundProcess, models.ResourceRefund, r.ID.String(), models.RefundPending, d)
	s.notifier.RefundUpdated(*r, *o)
	s.log.Infof("💰 Remboursement %s: %s par %s", r.ID, r.Status, adminID)
	return r, nil
}

func (s *Service) ListMyRefunds(ctx context.Context, userID string) ([]models.Refund, error) {
	return s.refunds.ListRefundsByUser(ctx, userID)
}

// ListRefunds liste les demandes, filtrées par statut si status n'est pas vide
func (s *Service) ListRefunds(ctx context.Context, status string, limit int) ([]models.Refund, error) {
	switch status {
	case "", models.RefundPending, models.RefundApproved, models.RefundRejected:
	default:
		return nil, ErrInvalidStatus
	}
	return s.refunds.ListRefunds(ctx, status, clampLimit(limit))
}
