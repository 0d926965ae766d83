package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Statuts de commande
const (
	OrderPendingReview = "pending_review"
	OrderApproved      = "approved"
	OrderRejected      = "rejected"
	OrderInProduction  = "in_production"
	OrderShipped       = "shipped"
	OrderDelivered     = "delivered"
	OrderCancelled     = "cancelled"
	OrderRefunded      = "refunded"
)

type Order struct {
	ID             gocql.UUID  `json:"id" db:"order_id"`
	UserID         string      `json:"user_id" db:"user_id"`
	CustomerEmail  string      `json:"customer_email,omitempty" db:"customer_email"`
	Items          []OrderItem `json:"items" db:"items"`
	SubtotalCents  int64       `json:"subtotal_cents" db:"subtotal_cents"`
	ShippingCents  int64       `json:"shipping_cents" db:"shipping_cents"`
	TotalCents     int64       `json:"total_cents" db:"total_cents"`
	ShippingOption string      `json:"shipping_option" db:"shipping_option"`
	Status         string      `json:"status" db:"status"`
	CustomerNote   string      `json:"customer_note,omitempty" db:"customer_note"`
	ReviewNote     string      `json:"review_note,omitempty" db:"review_note"`
	ReviewedBy     string      `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt     *time.Time  `json:"reviewed_at,omitempty" db:"reviewed_at"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
}

type OrderItem struct {
	ProductID      string           `json:"product_id"`
	Name           string           `json:"name"`
	Quantity       int              `json:"quantity"`
	UnitPriceCents int64            `json:"unit_price_cents"`
	LineTotalCents int64            `json:"line_total_cents"`
	Customization  *Customization   `json:"customization,omitempty"`
	Breakdown      []PriceComponent `json:"breakdown,omitempty"`
	ReviewStatus   string           `json:"review_status"`
}
