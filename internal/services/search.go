package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/gocql/gocql"
	"go.uber.org/zap"

	"patchwork_back_end/internal/models"
)

var ErrSearchUnavailable = errors.New("recherche indisponible")

// Search indexe et recherche les produits dans Elasticsearch
type Search struct {
	client *elasticsearch.Client
	index  string
	log    *zap.SugaredLogger
}

// NewSearch accepte un client nil : la recherche renvoie alors ErrSearchUnavailable
func NewSearch(client *elasticsearch.Client, index string, log *zap.SugaredLogger) *Search {
	return &Search{client: client, index: index, log: log}
}

func (s *Search) Enabled() bool { return s != nil && s.client != nil }

type productDoc struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Tags         []string  `json:"tags"`
	PriceCents   int64     `json:"price_cents"`
	ImageURLs    []string  `json:"image_urls"`
	Customizable bool      `json:"customizable"`
	IsActive     bool      `json:"is_active"`
	UpdatedAt    time.Time `json:"updated_at"`
}

//
// --- INDEXATION DANS ELASTICSEARCH ---
//

// IndexProduct indexe (ou réindexe) un produit
func (s *Search) IndexProduct(ctx context.Context, p models.Product) error {
	if !s.Enabled() {
		return ErrSearchUnavailable
	}

	data, err := json.Marshal(productDoc{
		ID:           p.ID.String(),
		Name:         p.Name,
		Description:  p.Description,
		Category:     p.Category,
		Tags:         p.Tags,
		PriceCents:   p.PriceCents,
		ImageURLs:    p.ImageURLs,
		Customizable: p.Customizable,
		IsActive:     p.IsActive,
		UpdatedAt:    p.UpdatedAt,
	})
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: p.ID.String(),
		Body:       bytes.NewReader(data),
		Refresh:    "true", // rend la donnée immédiatement visible
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("erreur envoi Elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elastic a refusé %s: %s", p.ID, res.Status())
	}
	s.log.Infof("✅ Produit indexé dans Elasticsearch: %s", p.Name)
	return nil
}

//
// --- RECHERCHE DANS ELASTICSEARCH ---
//

// SearchProducts cherche les produits actifs par nom, description, tags ou catégorie
func (s *Search) SearchProducts(ctx context.Context, query string, limit int) ([]models.Product, error) {
	if !s.Enabled() {
		return nil, ErrSearchUnavailable
	}

	var buf bytes.Buffer
	q := map[string]any{
		"size": limit,
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     query,
						"fields":    []string{"name^3", "tags^2", "description", "category"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"is_active": true},
				},
			},
		},
	}
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, fmt.Errorf("erreur encodage requête: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  &buf,
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("erreur requête Elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		s.log.Warnf("❌ Elasticsearch erreur: %s", res.Status())
		return nil, fmt.Errorf("%w: %s", ErrSearchUnavailable, res.Status())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source productDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("erreur décodage JSON: %w", err)
	}

	products := make([]models.Product, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		p, err := hit.Source.toProduct()
		if err != nil {
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

func (d productDoc) toProduct() (models.Product, error) {
	id, err := gocql.ParseUUID(d.ID)
	if err != nil {
		return models.Product{}, err
	}
	return models.Product{
		ID:           id,
		Name:         d.Name,
		Description:  d.Description,
		Category:     d.Category,
		Tags:         d.Tags,
		PriceCents:   d.PriceCents,
		ImageURLs:    d.ImageURLs,
		Customizable: d.Customizable,
		IsActive:     d.IsActive,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}
