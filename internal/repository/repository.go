package repository

import (
	"context"
	"errors"

	"github.com/gocql/gocql"

	"patchwork_back_end/internal/models"
)

var (
	ErrNotFound = errors.New("introuvable")
	// ErrConflict : la ligne a changé depuis sa lecture (condition LWT non appliquée)
	ErrConflict = errors.New("modification concurrente")
)

type ProductRepository interface {
	GetProduct(ctx context.Context, id gocql.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, limit int) ([]models.Product, error)
	UpsertProduct(ctx context.Context, p *models.Product) error
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, o *models.Order) error
	GetOrder(ctx context.Context, id gocql.UUID) (*models.Order, error)
	// UpdateOrder réécrit la commande si son statut est toujours previousStatus,
	// sinon ErrConflict. previousStatus sert aussi à maintenir l'index par statut.
	UpdateOrder(ctx context.Context, o *models.Order, previousStatus string) error
	ListOrdersByUser(ctx context.Context, userID string, limit int) ([]models.Order, error)
	ListOrdersByStatus(ctx context.Context, status string, limit int) ([]models.Order, error)
}

type RefundRepository interface {
	// CreateRefund renvoie ErrConflict si la commande a déjà un remboursement actif
	CreateRefund(ctx context.Context, r *models.Refund) error
	GetRefund(ctx context.Context, id gocql.UUID) (*models.Refund, error)
	// UpdateRefund applique la décision si le statut est toujours previousStatus, sinon
	// ErrConflict. Un refus libère la commande pour une nouvelle demande.
	UpdateRefund(ctx context.Context, r *models.Refund, previousStatus string) error
	ListRefundsByOrder(ctx context.Context, orderID gocql.UUID) ([]models.Refund, error)
	ListRefundsByUser(ctx context.Context, userID string) ([]models.Refund, error)
	// ListRefunds filtre par statut si status n'est pas vide
	ListRefunds(ctx context.Context, status string, limit int) ([]models.Refund, error)
}

type AuditRepository interface {
	InsertAudit(ctx context.Context, entry models.AuditLog) error
}
