package pricing

import (
	"errors"
	"fmt"
	"strings"

	"patchwork_back_end/internal/models"
)

var (
	ErrInvalidQuantity = errors.New("quantité invalide")
	ErrNegativePrice   = errors.New("prix négatif")
)

// UnknownOptionError signale une option absente de la grille tarifaire
type UnknownOptionError struct {
	Category string
	Option   string
}

func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("option %q inconnue pour la catégorie %s", e.Option, e.Category)
}

// ItemPrice est le résultat détaillé du calcul d'une ligne
type ItemPrice struct {
	BaseCents  int64                   `json:"base_cents"`
	AddOnCents int64                   `json:"add_on_cents"`
	UnitCents  int64                   `json:"unit_cents"`
	Quantity   int                     `json:"quantity"`
	TotalCents int64                   `json:"total_cents"`
	Breakdown  []models.PriceComponent `json:"breakdown"`
}

// CalculateItemPrice additionne le prix de base et chaque option de style choisie.
// Une catégorie absente contribue zéro ; une option inconnue est une erreur.
func (c *Catalog) CalculateItemPrice(baseCents int64, cust *models.Customization, quantity int) (ItemPrice, error) {
	if quantity < 1 {
		return ItemPrice{}, ErrInvalidQuantity
	}
	if baseCents < 0 {
		return ItemPrice{}, ErrNegativePrice
	}

	p := ItemPrice{
		BaseCents: baseCents,
		Quantity:  quantity,
		Breakdown: []models.PriceComponent{{Category: CategoryBase, Cents: baseCents}},
	}

	if cust != nil {
		n := Normalize(*cust)

		if n.Placement != "" && !c.hasPlacement(n.Placement) {
			return ItemPrice{}, &UnknownOptionError{Category: CategoryPlacement, Option: n.Placement}
		}

		singles := []struct {
			category string
			table    map[string]Option
			id       string
		}{
			{CategorySize, c.Sizes, n.Size},
			{CategoryCoverage, c.Coverage, n.Styles.Coverage},
			{CategoryMaterial, c.Material, n.Styles.Material},
			{CategoryBorder, c.Border, n.Styles.Border},
			{CategoryBacking, c.Backing, n.Styles.Backing},
			{CategoryCutting, c.Cutting, n.Styles.Cutting},
		}
		for _, s := range singles {
			if s.id == "" {
				continue
			}
			if err := p.add(s.category, s.table, s.id); err != nil {
				return ItemPrice{}, err
			}
		}

		for _, id := range n.Styles.Threads {
			if err := p.add(CategoryThreads, c.Threads, id); err != nil {
				return ItemPrice{}, err
			}
		}
		for _, id := range n.Styles.Upgrades {
			if err := p.add(CategoryUpgrades, c.Upgrades, id); err != nil {
				return ItemPrice{}, err
			}
		}
	}

	p.UnitCents = p.BaseCents + p.AddOnCents
	p.TotalCents = p.UnitCents * int64(quantity)
	return p, nil
}

func (p *ItemPrice) add(category string, table map[string]Option, id string) error {
	opt, ok := table[id]
	if !ok {
		return &UnknownOptionError{Category: category, Option: id}
	}
	p.AddOnCents += opt.PriceCents
	p.Breakdown = append(p.Breakdown, models.PriceComponent{
		Category: category,
		Option:   id,
		Label:    opt.Label,
		Cents:    opt.PriceCents,
	})
	return nil
}

// Normalize nettoie une personnalisation : espaces supprimés, doublons et entrées vides
// retirés des listes de fils et d'options (l'ordre de première apparition est conservé).
func Normalize(cust models.Customization) models.Customization {
	out := cust
	out.Placement = strings.TrimSpace(cust.Placement)
	out.Size = strings.TrimSpace(cust.Size)
	out.Color = strings.TrimSpace(cust.Color)
	out.DesignRef = strings.TrimSpace(cust.DesignRef)
	out.Notes = strings.TrimSpace(cust.Notes)
	out.Styles.Coverage = strings.TrimSpace(cust.Styles.Coverage)
	out.Styles.Material = strings.TrimSpace(cust.Styles.Material)
	out.Styles.Border = strings.TrimSpace(cust.Styles.Border)
	out.Styles.Backing = strings.TrimSpace(cust.Styles.Backing)
	out.Styles.Cutting = strings.TrimSpace(cust.Styles.Cutting)
	out.Styles.Threads = dedupe(cust.Styles.Threads)
	out.Styles.Upgrades = dedupe(cust.Styles.Upgrades)
	return out
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Summarize retourne le nombre d'articles et le sous-total d'une liste de lignes
func Summarize(items []models.CartItem) (count int, subtotalCents int64) {
	for _, item := range items {
		count += item.Quantity
		subtotalCents += item.UnitPriceCents * int64(item.Quantity)
	}
	return count, subtotalCents
}
