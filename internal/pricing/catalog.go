package pricing

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed styles.yaml
var defaultCatalogYAML []byte

// Catégories de style, dans l'ordre d'accumulation du prix
const (
	CategoryBase      = "base"
	CategoryPlacement = "placement"
	CategorySize      = "size"
	CategoryCoverage  = "coverage"
	CategoryMaterial  = "material"
	CategoryBorder    = "border"
	CategoryBacking   = "backing"
	CategoryCutting   = "cutting"
	CategoryThreads   = "threads"
	CategoryUpgrades  = "upgrades"
)

type Option struct {
	Label      string `yaml:"label" json:"label"`
	PriceCents int64  `yaml:"price_cents" json:"price_cents"`
}

type ShippingRate struct {
	ID            string `yaml:"id" json:"id"`
	Name          string `yaml:"name" json:"name"`
	Description   string `yaml:"description" json:"description"`
	PriceCents    int64  `yaml:"price_cents" json:"price_cents"`
	EstimatedDays int    `yaml:"estimated_days" json:"estimated_days"`
}

type ShippingTable struct {
	FreeThresholdCents int64          `yaml:"free_threshold_cents" json:"free_threshold_cents"`
	FreeOption         string         `yaml:"free_option" json:"free_option"`
	Rates              []ShippingRate `yaml:"rates" json:"rates"`
}

// Catalog est la grille tarifaire des options de personnalisation.
type Catalog struct {
	Currency   string            `yaml:"currency" json:"currency"`
	Placements []string          `yaml:"placements" json:"placements"`
	Sizes      map[string]Option `yaml:"sizes" json:"sizes"`
	Coverage   map[string]Option `yaml:"coverage" json:"coverage"`
	Material   map[string]Option `yaml:"material" json:"material"`
	Border     map[string]Option `yaml:"border" json:"border"`
	Backing    map[string]Option `yaml:"backing" json:"backing"`
	Cutting    map[string]Option `yaml:"cutting" json:"cutting"`
	Threads    map[string]Option `yaml:"threads" json:"threads"`
	Upgrades   map[string]Option `yaml:"upgrades" json:"upgrades"`
	Shipping   ShippingTable     `yaml:"shipping" json:"shipping"`
}

// DefaultCatalog retourne la grille embarquée dans le binaire
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalogYAML)
}

// LoadCatalog charge une grille depuis un fichier YAML, ou la grille par défaut si path est vide
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lecture grille tarifaire %s: %w", path, err)
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("décodage grille tarifaire: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate vérifie qu'aucun prix n'est négatif et que la livraison est cohérente
func (c *Catalog) Validate() error {
	if c.Currency == "" {
		return errors.New("grille tarifaire: devise manquante")
	}
	for category, table := range c.tables() {
		for id, opt := range table {
			if opt.PriceCents < 0 {
				return fmt.Errorf("grille tarifaire: prix négatif pour %s/%s", category, id)
			}
		}
	}
	if len(c.Shipping.Rates) == 0 {
		return errors.New("grille tarifaire: aucun tarif de livraison")
	}
	seen := make(map[string]bool, len(c.Shipping.Rates))
	for _, r := range c.Shipping.Rates {
		if r.ID == "" || seen[r.ID] {
			return fmt.Errorf("grille tarifaire: tarif de livraison invalide ou dupliqué %q", r.ID)
		}
		if r.PriceCents < 0 {
			return fmt.Errorf("grille tarifaire: prix de livraison négatif pour %s", r.ID)
		}
		seen[r.ID] = true
	}
	if c.Shipping.FreeOption != "" && !seen[c.Shipping.FreeOption] {
		return fmt.Errorf("grille tarifaire: option gratuite inconnue %q", c.Shipping.FreeOption)
	}
	return nil
}

func (c *Catalog) tables() map[string]map[string]Option {
	return map[string]map[string]Option{
		CategorySize:     c.Sizes,
		CategoryCoverage: c.Coverage,
		CategoryMaterial: c.Material,
		CategoryBorder:   c.Border,
		CategoryBacking:  c.Backing,
		CategoryCutting:  c.Cutting,
		CategoryThreads:  c.Threads,
		CategoryUpgrades: c.Upgrades,
	}
}

func (c *Catalog) hasPlacement(p string) bool {
	for _, allowed := range c.Placements {
		if allowed == p {
			return true
		}
	}
	return false
}

// OptionIDs retourne les identifiants triés d'une catégorie (pour les messages d'erreur et l'API)
func (c *Catalog) OptionIDs(category string) []string {
	if category == CategoryPlacement {
		return append([]string(nil), c.Placements...)
	}
	table := c.tables()[category]
	ids := make([]string, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
