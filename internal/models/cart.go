package models

import "time"

// Statuts de revue d'une ligne
const (
	ReviewDraft    = "draft"
	ReviewPending  = "pending"
	ReviewApproved = "approved"
	ReviewRejected = "rejected"
)

type Cart struct {
	UserID        string     `json:"user_id"`
	Items         []CartItem `json:"items"`
	Count         int        `json:"count"`
	SubtotalCents int64      `json:"subtotal_cents"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type CartItem struct {
	LineID         string         `json:"line_id"`
	ProductID      string         `json:"product_id"`
	Name           string         `json:"name"`
	ImageURL       string         `json:"image_url,omitempty"`
	Quantity       int            `json:"quantity"`
	UnitPriceCents int64          `json:"unit_price_cents"`
	Customization  *Customization `json:"customization,omitempty"`
	Fingerprint    string         `json:"fingerprint"`
	ReviewStatus   string         `json:"review_status"`
	AddedAt        time.Time      `json:"added_at"`
}

// PriceComponent est une ligne de la décomposition d'un prix unitaire.
type PriceComponent struct {
	Category string `json:"category"`
	Option   string `json:"option,omitempty"`
	Label    string `json:"label,omitempty"`
	Cents    int64  `json:"cents"`
}
