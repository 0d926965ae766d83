// Package cart gère le panier côté serveur : stockage Redis, fusion des lignes identiques
// et calcul du prix de chaque ligne à partir de la grille de personnalisation.
package cart

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"patchwork_back_end/internal/models"
	"patchwork_back_end/internal/pricing"
	"patchwork_back_end/internal/repository"
)

var (
	ErrInvalidQuantity = errors.New("quantité invalide")
	ErrQuantityLimit   = errors.New("quantité maximale dépassée")
	ErrProductNotFound = errors.New("produit introuvable")
	ErrNotCustomizable = errors.New("produit non personnalisable")
	ErrLineNotFound    = errors.New("ligne de panier introuvable")
	ErrTooManyLines    = errors.New("trop de lignes dans le panier")
	ErrDesignNotOwned  = errors.New("design introuvable")
	ErrConflict        = errors.New("panier modifié simultanément, réessayez")
)

// ProductReader est implémenté par cache.ProductCache
type ProductReader interface {
	GetProduct(ctx context.Context, id gocql.UUID) (*models.Product, error)
}

// DesignChecker vérifie qu'une référence désigne un design envoyé par l'utilisateur
type DesignChecker interface {
	OwnsDesign(ctx context.Context, ref, userID string) bool
}

type Limits struct {
	MaxQuantity int
	MaxLines    int
}

type Service struct {
	store    *Store
	products ProductReader
	catalog  *pricing.Catalog
	designs  DesignChecker
	limits   Limits
	log      *zap.SugaredLogger
	now      func() time.Time
}

func NewService(store *Store, products ProductReader, catalog *pricing.Catalog, designs DesignChecker, limits Limits, log *zap.SugaredLogger) *Service {
	return &Service{
		store:    store,
		products: products,
		catalog:  catalog,
		designs:  designs,
		limits:   limits,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type AddInput struct {
	ProductID     string                `json:"product_id" binding:"required"`
	Quantity      int                   `json:"quantity"`
	Customization *models.Customization `json:"customization"`
}

// Get retourne le panier avec son total
func (s *Service) Get(ctx context.Context, userID string) (*models.Cart, error) {
	items, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.build(userID, items), nil
}

// Add ajoute un produit au panier. Le prix unitaire est calculé ici ; une ligne portant
// le même produit et la même personnalisation voit sa quantité augmenter.
func (s *Service) Add(ctx context.Context, userID string, in AddInput) (*models.Cart, error) {
	if in.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if in.Quantity > s.limits.MaxQuantity {
		return nil, ErrQuantityLimit
	}

	product, cust, err := s.resolve(ctx, userID, in.ProductID, in.Customization)
	if err != nil {
		return nil, err
	}
	price, err := s.catalog.CalculateItemPrice(product.PriceCents, cust, in.Quantity)
	if err != nil {
		return nil, err
	}

	fp := Fingerprint(product.ID.String(), cust)
	now := s.now()

	items, err := s.store.Update(ctx, userID, func(items []models.CartItem) ([]models.CartItem, error) {
		for i := range items {
			if items[i].Fingerprint != fp {
				continue
			}
			qty := items[i].Quantity + in.Quantity
			if qty > s.limits.MaxQuantity {
				return nil, ErrQuantityLimit
			}
			items[i].Quantity = qty
			items[i].UnitPriceCents = price.UnitCents
			items[i].Name = product.Name
			return items, nil
		}

		if len(items) >= s.limits.MaxLines {
			return nil, ErrTooManyLines
		}
		return append(items, models.CartItem{
			LineID:         uuid.NewString(),
			ProductID:      product.ID.String(),
			Name:           product.Name,
			ImageURL:       product.FirstImage(),
			Quantity:       in.Quantity,
			UnitPriceCents: price.UnitCents,
			Customization:  cust,
			Fingerprint:    fp,
			ReviewStatus:   models.ReviewDraft,
			AddedAt:        now,
		}), nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debugf("🛒 Panier %s: +%d × %s", userID, in.Quantity, product.ID)
	return s.build(userID, items), nil
}

// UpdateQuantity fixe la quantité d'une ligne ; 0 supprime la ligne
func (s *Service) UpdateQuantity(ctx context.Context, userID, lineID string, quantity int) (*models.Cart, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	if quantity > s.limits.MaxQuantity {
		return nil, ErrQuantityLimit
	}
	if quantity == 0 {
		return s.Remove(ctx, userID, lineID)
	}

	items, err := s.store.Update(ctx, userID, func(items []models.CartItem) ([]models.CartItem, error) {
		for i := range items {
			if items[i].LineID == lineID {
				items[i].Quantity = quantity
				return items, nil
			}
		}
		return nil, ErrLineNotFound
	})
	if err != nil {
		return nil, err
	}
	return s.build(userID, items), nil
}

func (s *Service) Remove(ctx context.Context, userID, lineID string) (*models.Cart, error) {
	items, err := s.store.Update(ctx, userID, func(items []models.CartItem) ([]models.CartItem, error) {
		for i := range items {
			if items[i].LineID == lineID {
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, ErrLineNotFound
	})
	if err != nil {
		return nil, err
	}
	return s.build(userID, items), nil
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.store.Clear(ctx, userID)
}

// RemoveSubmitted retire du panier les quantités passées en commande. Les lignes
// ajoutées ou augmentées entre-temps restent dans le panier.
func (s *Service) RemoveSubmitted(ctx context.Context, userID string, submitted []models.CartItem) error {
	ordered := make(map[string]int, len(submitted))
	for _, it := range submitted {
		ordered[it.LineID] += it.Quantity
	}

	_, err := s.store.Update(ctx, userID, func(items []models.CartItem) ([]models.CartItem, error) {
		kept := items[:0]
		for _, it := range items {
			if qty, ok := ordered[it.LineID]; ok {
				it.Quantity -= qty
				if it.Quantity <= 0 {
					continue
				}
			}
			kept = append(kept, it)
		}
		return kept, nil
	})
	return err
}

// Quote calcule le prix d'une personnalisation sans toucher au panier
func (s *Service) Quote(ctx context.Context, productID string, cust *models.Customization, quantity int) (pricing.ItemPrice, error) {
	if quantity < 1 {
		return pricing.ItemPrice{}, ErrInvalidQuantity
	}
	product, cust, err := s.resolve(ctx, "", productID, cust)
	if err != nil {
		return pricing.ItemPrice{}, err
	}
	return s.catalog.CalculateItemPrice(product.PriceCents, cust, quantity)
}

// Reprice recalcule une ligne contre le produit et la grille actuels
func (s *Service) Reprice(ctx context.Context, userID string, item models.CartItem) (*models.Product, pricing.ItemPrice, error) {
	product, cust, err := s.resolve(ctx, userID, item.ProductID, item.Customization)
	if err != nil {
		return nil, pricing.ItemPrice{}, err
	}
	price, err := s.catalog.CalculateItemPrice(product.PriceCents, cust, item.Quantity)
	if err != nil {
		return nil, pricing.ItemPrice{}, err
	}
	return product, price, nil
}

// resolve charge le produit actif et normalise la personnalisation. Un userID vide
// désactive le contrôle de propriété du design (devis anonyme).
func (s *Service) resolve(ctx context.Context, userID, productID string, cust *models.Customization) (*models.Product, *models.Customization, error) {
	id, err := gocql.ParseUUID(productID)
	if err != nil {
		return nil, nil, ErrProductNotFound
	}
	product, err := s.products.GetProduct(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, ErrProductNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("lecture produit: %w", err)
	}
	if !product.IsActive {
		return nil, nil, ErrProductNotFound
	}

	if cust == nil {
		return product, nil, nil
	}
	n := pricing.Normalize(*cust)
	if reflect.DeepEqual(n, models.Customization{}) {
		return product, nil, nil
	}
	if !product.Customizable {
		return nil, nil, ErrNotCustomizable
	}
	if n.DesignRef != "" && userID != "" && (s.designs == nil || !s.designs.OwnsDesign(ctx, n.DesignRef, userID)) {
		return nil, nil, ErrDesignNotOwned
	}
	return product, &n, nil
}

func (s *Service) build(userID string, items []models.CartItem) *models.Cart {
	count, subtotal := pricing.Summarize(items)
	return &models.Cart{
		UserID:        userID,
		Items:         items,
		Count:         count,
		SubtotalCents: subtotal,
		UpdatedAt:     s.now(),
	}
}

// Fingerprint identifie une ligne par son produit et sa personnalisation normalisée.
// L'ordre des fils et des options n'entre pas en compte.
func Fingerprint(productID string, cust *models.Customization) string {
	h := sha256.New()
	h.Write([]byte(productID))
	if cust != nil {
		n := pricing.Normalize(*cust)
		n.Styles.Threads = sortedCopy(n.Styles.Threads)
		n.Styles.Upgrades = sortedCopy(n.Styles.Upgrades)
		data, _ := json.Marshal(n)
		h.Write([]byte{0})
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}

func sortedCopy(in []string) []string {
	if in == nil {
		return nil
	}
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
