package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Product struct {
	ID           gocql.UUID `json:"id" db:"product_id"`
	Name         string     `json:"name" db:"name"`
	Description  string     `json:"description" db:"description"`
	PriceCents   int64      `json:"price_cents" db:"price_cents"`
	Category     string     `json:"category" db:"category"`
	ImageURLs    []string   `json:"image_urls" db:"image_urls"`
	Tags         []string   `json:"tags" db:"tags"`
	Customizable bool       `json:"customizable" db:"customizable"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// FirstImage retourne l'image d'aperçu utilisée dans le panier
func (p Product) FirstImage() string {
	if len(p.ImageURLs) == 0 {
		return ""
	}
	return p.ImageURLs[0]
}
