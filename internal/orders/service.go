// Package orders transforme un panier en commande soumise à validation, puis suit la
// commande (revue admin, production, expédition) et ses remboursements.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gocql/gocql"
	"go.uber.org/zap"

	"patchwork_back_end/internal/audit"
	"patchwork_back_end/internal/models"
	"patchwork_back_end/internal/pricing"
	"patchwork_back_end/internal/repository"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
	maxNoteLength    = 1000
)

// Cart est implémenté par cart.Service
type Cart interface {
	Get(ctx context.Context, userID string) (*models.Cart, error)
	Reprice(ctx context.Context, userID string, item models.CartItem) (*models.Product, pricing.ItemPrice, error)
	RemoveSubmitted(ctx context.Context, userID string, submitted []models.CartItem) error
}

// Notifier prévient le client des étapes de sa commande
type Notifier interface {
	OrderSubmitted(o models.Order)
	OrderReviewed(o models.Order)
	OrderStatusChanged(o models.Order)
	RefundUpdated(r models.Refund, o models.Order)
}

type NopNotifier struct{}

func (NopNotifier) OrderSubmitted(models.Order)               {}
func (NopNotifier) OrderReviewed(models.Order)                {}
func (NopNotifier) OrderStatusChanged(models.Order)           {}
func (NopNotifier) RefundUpdated(models.Refund, models.Order) {}

type Service struct {
	orders   repository.OrderRepository
	refunds  repository.RefundRepository
	cart     Cart
	catalog  *pricing.Catalog
	notifier Notifier
	audit    *audit.Recorder
	log      *zap.SugaredLogger
	now      func() time.Time
}

func NewService(
	orders repository.OrderRepository,
	refunds repository.RefundRepository,
	cart Cart,
	catalog *pricing.Catalog,
	notifier Notifier,
	recorder *audit.Recorder,
	log *zap.SugaredLogger,
) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Service{
		orders:   orders,
		refunds:  refunds,
		cart:     cart,
		catalog:  catalog,
		notifier: notifier,
		audit:    recorder,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type SubmitInput struct {
	ShippingOption string `json:"shipping_option"`
	CustomerNote   string `json:"customer_note"`
}

// Submit soumet le panier à validation. Chaque ligne est recalculée contre le produit
// et la grille actuels ; les lignes commandées quittent le panier une fois la commande enregistrée.
func (s *Service) Submit(ctx context.Context, userID, email string, in SubmitInput) (*models.Order, error) {
	note := strings.TrimSpace(in.CustomerNote)
	if utf8.RuneCountInString(note) > maxNoteLength {
		return nil, ErrNoteTooLong
	}

	c, err := s.cart.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(c.Items) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]models.OrderItem, 0, len(c.Items))
	var subtotal int64
	for _, line := range c.Items {
		product, price, err := s.cart.Reprice(ctx, userID, line)
		if err != nil {
			return nil, fmt.Errorf("article %q: %w", line.Name, err)
		}
		items = append(items, models.OrderItem{
			ProductID:      line.ProductID,
			Name:           product.Name,
			Quantity:       line.Quantity,
			UnitPriceCents: price.UnitCents,
			LineTotalCents: price.TotalCents,
			Customization:  line.Customization,
			Breakdown:      price.Breakdown,
			ReviewStatus:   models.ReviewPending,
		})
		subtotal += price.TotalCents
	}

	shipping, err := s.catalog.QuoteShipping(in.ShippingOption, subtotal)
	if err != nil {
		return nil, err
	}

	now := s.now()
	o := &models.Order{
		ID:             gocql.TimeUUID(),
		UserID:         userID,
		CustomerEmail:  email,
		Items:          items,
		SubtotalCents:  subtotal,
		ShippingCents:  shipping.PriceCents,
		TotalCents:     subtotal + shipping.PriceCents,
		ShippingOption: shipping.ID,
		Status:         models.OrderPendingReview,
		CustomerNote:   note,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.orders.CreateOrder(ctx, o); err != nil {
		return nil, err
	}

	if err := s.cart.RemoveSubmitted(ctx, userID, c.Items); err != nil {
		s.log.Warnf("⚠️ Commande %s créée mais panier non vidé: %v", o.ID, err)
	}

	s.audit.Record(ctx, userID, models.ActionOrderSubmit, models.ResourceOrder, o.ID.String(), nil, o)
	s.notifier.OrderSubmitted(*o)
	s.log.Infof("📦 Commande %s soumise à validation (%d articles, %d cts)", o.ID, len(items), o.TotalCents)
	return o, nil
}

type Decision struct {
	Action string `json:"action" binding:"required"` // approve, reject
	Note   string `json:"note"`
}

// Review applique la décision d'un admin sur une commande en attente de validation
func (s *Service) Review(ctx context.Context, orderID gocql.UUID, adminID string, d Decision) (*models.Order, error) {
	note := strings.TrimSpace(d.Note)
	var status, itemStatus string
	switch d.Action {
	case "approve":
		status, itemStatus = models.OrderApproved, models.ReviewApproved
	case "reject":
		if note == "" {
			return nil, ErrNoteRequired
		}
		status, itemStatus = models.OrderRejected, models.ReviewRejected
	default:
		return nil, ErrInvalidAction
	}
	if utf8.RuneCountInString(note) > maxNoteLength {
		return nil, ErrNoteTooLong
	}

	o, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != models.OrderPendingReview {
		s.audit.RecordFailure(ctx, adminID, models.ActionOrderReview, models.ResourceOrder, o.ID.String(), "statut "+o.Status)
		return nil, ErrInvalidTransition
	}

	previous := o.Status
	now := s.now()
	o.Status = status
	o.ReviewNote = note
	o.ReviewedBy = adminID
	o.ReviewedAt = &now
	o.UpdatedAt = now
	for i := range o.Items {
		o.Items[i].ReviewStatus = itemStatus
	}

	if err := s.orders.UpdateOrder(ctx, o, previous); err != nil {
		return nil, conflictAs(err, ErrInvalidTransition)
	}

	s.audit.Record(ctx, adminID, models.ActionOrderReview, models.ResourceOrder, o.ID.String(), previous, d)
	s.notifier.OrderReviewed(*o)
	s.log.Infof("✅ Commande %s: %s par %s", o.ID, status, adminID)
	return o, nil
}

// UpdateStatus fait avancer une commande validée (production, expédition, livraison)
// ou l'annule. La validation passe par Review et le remboursement par ProcessRefund.
func (s *Service) UpdateStatus(ctx context.Context, orderID gocql.UUID, adminID, status string) (*models.Order, error) {
	if !IsKnownStatus(status) {
		return nil, ErrInvalidStatus
	}
	switch status {
	case models.OrderApproved, models.OrderRejected, models.OrderRefunded:
		return nil, ErrInvalidTransition
	}

	o, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, status) {
		s.audit.RecordFailure(ctx, adminID, models.ActionOrderStatus, models.ResourceOrder, o.ID.String(),
			o.Status+" → "+status)
		return nil, ErrInvalidTransition
	}

	previous := o.Status
	o.Status = status
	o.UpdatedAt = s.now()
	if err := s.orders.UpdateOrder(ctx, o, previous); err != nil {
		return nil, conflictAs(err, ErrInvalidTransition)
	}

	s.audit.Record(ctx, adminID, models.ActionOrderStatus, models.ResourceOrder, o.ID.String(), previous, status)
	s.notifier.OrderStatusChanged(*o)
	s.log.Infof("📦 Commande %s: %s → %s", o.ID, previous, status)
	return o, nil
}

// Cancel annule une commande du client tant qu'elle n'a pas été validée
func (s *Service) Cancel(ctx context.Context, userID string, orderID gocql.UUID) (*models.Order, error) {
	o, err := s.Get(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != models.OrderPendingReview {
		return nil, ErrInvalidTransition
	}

	previous := o.Status
	o.Status = models.OrderCancelled
	o.UpdatedAt = s.now()
	if err := s.orders.UpdateOrder(ctx, o, previous); err != nil {
		return nil, conflictAs(err, ErrInvalidTransition)
	}

	s.audit.Record(ctx, userID, models.ActionOrderCancel, models.ResourceOrder, o.ID.String(), previous, o.Status)
	s.notifier.OrderStatusChanged(*o)
	return o, nil
}

// Get retourne une commande du client ; la commande d'un autre client est introuvable
func (s *Service) Get(ctx context.Context, userID string, orderID gocql.UUID) (*models.Order, error) {
	o, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *Service) ListMine(ctx context.Context, userID string, limit int) ([]models.Order, error) {
	return s.orders.ListOrdersByUser(ctx, userID, clampLimit(limit))
}

// ListByStatus sert la file de validation admin (plus anciennes d'abord)
func (s *Service) ListByStatus(ctx context.Context, status string, limit int) ([]models.Order, error) {
	if status == "" {
		status = models.OrderPendingReview
	}
	if !IsKnownStatus(status) {
		return nil, ErrInvalidStatus
	}
	return s.orders.ListOrdersByStatus(ctx, status, clampLimit(limit))
}

func (s *Service) load(ctx context.Context, orderID gocql.UUID) (*models.Order, error) {
	o, err := s.orders.GetOrder(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

// conflictAs traduit une écriture conditionnelle refusée en erreur métier
func conflictAs(err, target error) error {
	if errors.Is(err, repository.ErrConflict) {
		return target
	}
	return err
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return min(limit, MaxListLimit)
}
