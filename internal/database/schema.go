package database

import (
	"context"
	"fmt"
)

// Tables du keyspace produits
var productsSchema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		product_id uuid PRIMARY KEY,
		name text,
		description text,
		price_cents bigint,
		category text,
		image_urls list<text>,
		tags list<text>,
		customizable boolean,
		is_active boolean,
		created_at timestamp,
		updated_at timestamp
	)`,
}

// Tables du keyspace commandes
var ordersSchema = []string{
	`CREATE TABLE IF NOT EXISTS orders (
		order_id uuid PRIMARY KEY,
		user_id text,
		customer_email text,
		items text,
		subtotal_cents bigint,
		shipping_cents bigint,
		total_cents bigint,
		shipping_option text,
		status text,
		customer_note text,
		review_note text,
		reviewed_by text,
		reviewed_at timestamp,
		created_at timestamp,
		updated_at timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS orders_by_user (
		user_id text,
		created_at timestamp,
		order_id uuid,
		status text,
		total_cents bigint,
		PRIMARY KEY ((user_id), created_at, order_id)
	) WITH CLUSTERING ORDER BY (created_at DESC, order_id ASC)`,
	`CREATE TABLE IF NOT EXISTS orders_by_status (
		status text,
		created_at timestamp,
		order_id uuid,
		PRIMARY KEY ((status), created_at, order_id)
	) WITH CLUSTERING ORDER BY (created_at ASC, order_id ASC)`,
	`CREATE TABLE IF NOT EXISTS refunds (
		refund_id uuid PRIMARY KEY,
		order_id uuid,
		user_id text,
		reason text,
		status text,
		amount_cents bigint,
		admin_note text,
		processed_by text,
		created_at timestamp,
		updated_at timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS refunds_by_order (
		order_id uuid,
		refund_id uuid,
		PRIMARY KEY ((order_id), refund_id)
	)`,
	// une ligne par commande ayant un remboursement en attente ou approuvé (INSERT IF NOT EXISTS)
	`CREATE TABLE IF NOT EXISTS active_refunds (
		order_id uuid PRIMARY KEY,
		refund_id uuid
	)`,
	`CREATE TABLE IF NOT EXISTS refunds_by_user (
		user_id text,
		created_at timestamp,
		refund_id uuid,
		PRIMARY KEY ((user_id), created_at, refund_id)
	) WITH CLUSTERING ORDER BY (created_at DESC, refund_id ASC)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id timeuuid PRIMARY KEY,
		user_id text,
		action text,
		resource text,
		resource_id text,
		old_value text,
		new_value text,
		success boolean,
		timestamp timestamp
	)`,
}

// EnsureSchema crée les tables manquantes. Le rôle utilisé doit avoir le droit CREATE ;
// en production les tables sont créées à l'avance et SCYLLA_AUTO_MIGRATE reste à false.
func (sm *ScyllaManager) EnsureSchema(ctx context.Context) error {
	products, err := sm.ProductsSession()
	if err != nil {
		return err
	}
	for _, stmt := range productsSchema {
		if err := products.Query(stmt).WithContext(ctx).Exec(); err != nil {
			return fmt.Errorf("schéma produits: %w", err)
		}
	}

	orders, err := sm.OrdersSession()
	if err != nil {
		return err
	}
	for _, stmt := range ordersSchema {
		if err := orders.Query(stmt).WithContext(ctx).Exec(); err != nil {
			return fmt.Errorf("schéma commandes: %w", err)
		}
	}

	sm.log.Info("✅ Schéma ScyllaDB vérifié")
	return nil
}
