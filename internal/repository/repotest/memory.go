// Package repotest fournit des implémentations en mémoire des dépôts, pour les tests.
package repotest

import (
	"context"
	"sort"
	"sync"

	"github.com/gocql/gocql"

	"patchwork_back_end/internal/models"
	"patchwork_back_end/internal/repository"
)

type Store struct {
	mu       sync.Mutex
	Products map[gocql.UUID]models.Product
	Orders   map[gocql.UUID]models.Order
	Refunds  map[gocql.UUID]models.Refund
	Audit    []models.AuditLog

	// Err, si non nil, est renvoyée par toutes les opérations
	Err error
}

var (
	_ repository.ProductRepository = (*Store)(nil)
	_ repository.OrderRepository   = (*Store)(nil)
	_ repository.RefundRepository  = (*Store)(nil)
	_ repository.AuditRepository   = (*Store)(nil)
)

func New() *Store {
	return &Store{
		Products: make(map[gocql.UUID]models.Product),
		Orders:   make(map[gocql.UUID]models.Order),
		Refunds:  make(map[gocql.UUID]models.Refund),
	}
}

// AddProduct enregistre un produit actif et retourne son identifiant
func (s *Store) AddProduct(p models.Product) gocql.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == (gocql.UUID{}) {
		p.ID = gocql.TimeUUID()
	}
	s.Products[p.ID] = p
	return p.ID
}

func (s *Store) GetProduct(_ context.Context, id gocql.UUID) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.Products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (s *Store) ListProducts(_ context.Context, limit int) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]models.Product, 0, len(s.Products))
	for _, p := range s.Products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) UpsertProduct(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Products[p.ID] = *p
	return nil
}

func (s *Store) CreateOrder(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Orders[o.ID] = cloneOrder(*o)
	return nil
}

func (s *Store) GetOrder(_ context.Context, id gocql.UUID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	o, ok := s.Orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	o = cloneOrder(o)
	return &o, nil
}

func (s *Store) UpdateOrder(_ context.Context, o *models.Order, previousStatus string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	current, ok := s.Orders[o.ID]
	if !ok || current.Status != previousStatus {
		return repository.ErrConflict
	}
	s.Orders[o.ID] = cloneOrder(*o)
	return nil
}

func (s *Store) ListOrdersByUser(_ context.Context, userID string, limit int) ([]models.Order, error) {
	return s.listOrders(limit, func(o models.Order) bool { return o.UserID == userID }, true)
}

func (s *Store) ListOrdersByStatus(_ context.Context, status string, limit int) ([]models.Order, error) {
	return s.listOrders(limit, func(o models.Order) bool { return o.Status == status }, false)
}

func (s *Store) listOrders(limit int, keep func(models.Order) bool, newestFirst bool) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []models.Order{}
	for _, o := range s.Orders {
		if keep(o) {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) CreateRefund(_ context.Context, r *models.Refund) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, existing := range s.Refunds {
		if existing.OrderID == r.OrderID && existing.Status != models.RefundRejected {
			return repository.ErrConflict
		}
	}
	s.Refunds[r.ID] = *r
	return nil
}

func (s *Store) GetRefund(_ context.Context, id gocql.UUID) (*models.Refund, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	r, ok := s.Refunds[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (s *Store) UpdateRefund(_ context.Context, r *models.Refund, previousStatus string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	current, ok := s.Refunds[r.ID]
	if !ok || current.Status != previousStatus {
		return repository.ErrConflict
	}
	s.Refunds[r.ID] = *r
	return nil
}

func (s *Store) ListRefundsByOrder(_ context.Context, orderID gocql.UUID) ([]models.Refund, error) {
	return s.listRefunds(0, func(r models.Refund) bool { return r.OrderID == orderID })
}

func (s *Store) ListRefundsByUser(_ context.Context, userID string) ([]models.Refund, error) {
	return s.listRefunds(0, func(r models.Refund) bool { return r.UserID == userID })
}

func (s *Store) ListRefunds(_ context.Context, status string, limit int) ([]models.Refund, error) {
	return s.listRefunds(limit, func(r models.Refund) bool { return status == "" || r.Status == status })
}

func (s *Store) listRefunds(limit int, keep func(models.Refund) bool) ([]models.Refund, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []models.Refund{}
	for _, r := range s.Refunds {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) InsertAudit(_ context.Context, e models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Audit = append(s.Audit, e)
	return nil
}

// AuditActions retourne les actions enregistrées, dans l'ordre
func (s *Store) AuditActions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.Audit))
	for _, e := range s.Audit {
		out = append(out, e.Action)
	}
	return out
}

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return o
}
