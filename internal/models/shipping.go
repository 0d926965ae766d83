package models

type ShippingOption struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	PriceCents    int64  `json:"price_cents"`
	EstimatedDays int    `json:"estimated_days"`
}

type ShippingCalculation struct {
	Options            []ShippingOption `json:"options"`
	FreeThresholdCents int64            `json:"free_threshold_cents"`
	SubtotalCents      int64            `json:"subtotal_cents"`
	IsFree             bool             `json:"is_free"`
}
