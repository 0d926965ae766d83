package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Statuts de remboursement
const (
	RefundPending  = "pending"
	RefundApproved = "approved"
	RefundRejected = "rejected"
)

type Refund struct {
	ID          gocql.UUID `json:"id" db:"refund_id"`
	OrderID     gocql.UUID `json:"order_id" db:"order_id"`
	UserID      string     `json:"user_id" db:"user_id"`
	Reason      string     `json:"reason" db:"reason"`
	Status      string     `json:"status" db:"status"`
	AmountCents int64      `json:"amount_cents" db:"amount_cents"`
	AdminNote   string     `json:"admin_note,omitempty" db:"admin_note"`
	ProcessedBy string     `json:"processed_by,omitempty" db:"processed_by"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}
