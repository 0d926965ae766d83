package models

import (
	"time"

	"github.com/gocql/gocql"
)

// AuditLog trace une action sensible (soumission, décision admin)
type AuditLog struct {
	ID         gocql.UUID `json:"id"`
	UserID     string     `json:"user_id"`
	Action     string     `json:"action"`
	Resource   string     `json:"resource"`
	ResourceID string     `json:"resource_id,omitempty"`
	OldValue   string     `json:"old_value,omitempty"`
	NewValue   string     `json:"new_value,omitempty"`
	Success    bool       `json:"success"`
	Timestamp  time.Time  `json:"timestamp"`
}

// Actions d'audit
const (
	ActionOrderSubmit   = "order.submit"
	ActionOrderReview   = "order.review"
	ActionOrderStatus   = "order.status"
	ActionOrderCancel   = "order.cancel"
	ActionRefundRequest = "refund.request"
	ActionRefundProcess = "refund.process"
	ActionProductUpsert = "product.upsert"
)

// Ressources d'audit
const (
	ResourceOrder   = "order"
	ResourceRefund  = "refund"
	ResourceProduct = "product"
)
