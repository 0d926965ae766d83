package pricing

import (
	"errors"

	"patchwork_back_end/internal/models"
)

var ErrUnknownShipping = errors.New("option de livraison inconnue")

// ShippingOptions retourne les options de livraison pour un sous-total donné.
// Au-delà du seuil, l'option gratuite passe à 0.
func (c *Catalog) ShippingOptions(subtotalCents int64) models.ShippingCalculation {
	isFree := c.Shipping.FreeOption != "" && subtotalCents >= c.Shipping.FreeThresholdCents

	options := make([]models.ShippingOption, 0, len(c.Shipping.Rates))
	for _, r := range c.Shipping.Rates {
		opt := models.ShippingOption{
			ID:            r.ID,
			Name:          r.Name,
			Description:   r.Description,
			PriceCents:    r.PriceCents,
			EstimatedDays: r.EstimatedDays,
		}
		if isFree && r.ID == c.Shipping.FreeOption {
			opt.PriceCents = 0
			opt.Name = r.Name + " Gratuite"
		}
		options = append(options, opt)
	}

	return models.ShippingCalculation{
		Options:            options,
		FreeThresholdCents: c.Shipping.FreeThresholdCents,
		SubtotalCents:      subtotalCents,
		IsFree:             isFree,
	}
}

// QuoteShipping retourne l'option choisie avec son prix effectif
func (c *Catalog) QuoteShipping(id string, subtotalCents int64) (models.ShippingOption, error) {
	if id == "" {
		id = c.Shipping.FreeOption
	}
	for _, opt := range c.ShippingOptions(subtotalCents).Options {
		if opt.ID == id {
			return opt, nil
		}
	}
	return models.ShippingOption{}, ErrUnknownShipping
}
