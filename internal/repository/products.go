package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/gocql/gocql"

	"patchwork_back_end/internal/models"
)

// ScyllaProducts lit et écrit le keyspace produits
type ScyllaProducts struct {
	session *gocql.Session
}

func NewScyllaProducts(session *gocql.Session) *ScyllaProducts {
	return &ScyllaProducts{session: session}
}

const productColumns = `product_id, name, description, price_cents, category, image_urls, tags, customizable, is_active, created_at, updated_at`

func (r *ScyllaProducts) GetProduct(ctx context.Context, id gocql.UUID) (*models.Product, error) {
	var p models.Product
	err := r.session.Query(`SELECT `+productColumns+` FROM products WHERE product_id = ?`, id).
		WithContext(ctx).
		Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Category, &p.ImageURLs, &p.Tags,
			&p.Customizable, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lecture produit %s: %w", id, err)
	}
	return &p, nil
}

func (r *ScyllaProducts) ListProducts(ctx context.Context, limit int) ([]models.Product, error) {
	iter := r.session.Query(`SELECT `+productColumns+` FROM products LIMIT ?`, limit).WithContext(ctx).Iter()

	products := []models.Product{}
	var p models.Product
	for iter.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Category, &p.ImageURLs, &p.Tags,
		&p.Customizable, &p.IsActive, &p.CreatedAt, &p.UpdatedAt) {
		products = append(products, p)
		p = models.Product{} // Reset pour la prochaine itération
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture produits: %w", err)
	}
	return products, nil
}

func (r *ScyllaProducts) UpsertProduct(ctx context.Context, p *models.Product) error {
	err := r.session.Query(`INSERT INTO products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.PriceCents, p.Category, p.ImageURLs, p.Tags,
		p.Customizable, p.IsActive, p.CreatedAt, p.UpdatedAt).
		WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("écriture produit %s: %w", p.ID, err)
	}
	return nil
}
