package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"patchwork_back_end/internal/models"
	"patchwork_back_end/internal/repository"
)

const (
	defaultProductLimit = 50
	maxProductLimit     = 200
)

// ListProducts retourne les produits actifs
func (h *Handler) ListProducts(c *gin.Context) {
	limit := queryLimit(c)
	if limit <= 0 || limit > maxProductLimit {
		limit = defaultProductLimit
	}

	all, err := h.Products.ListProducts(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	category := c.Query("category")
	products := make([]models.Product, 0, len(all))
	for _, p := range all {
		if !p.IsActive || (category != "" && p.Category != category) {
			continue
		}
		products = append(products, p)
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := paramUUID(c, "id", "ID produit invalide")
	if !ok {
		return
	}

	p, err := h.Products.GetProduct(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !p.IsActive) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// SearchProducts recherche dans Elasticsearch
func (h *Handler) SearchProducts(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre q requis"})
		return
	}
	limit := queryLimit(c)
	if limit <= 0 || limit > maxProductLimit {
		limit = defaultProductLimit
	}

	products, err := h.Search.SearchProducts(c.Request.Context(), q, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

type productInput struct {
	ID           string   `json:"id"`
	Name         string   `json:"name" binding:"required"`
	Description  string   `json:"description"`
	PriceCents   int64    `json:"price_cents" binding:"min=0"`
	Category     string   `json:"category"`
	ImageURLs    []string `json:"image_urls"`
	Tags         []string `json:"tags"`
	Customizable bool     `json:"customizable"`
	IsActive     *bool    `json:"is_active"`
}

// UpsertProduct crée ou met à jour un produit (admin)
func (h *Handler) UpsertProduct(c *gin.Context) {
	var in productInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	ctx := c.Request.Context()
	now := time.Now().UTC()
	p := &models.Product{ID: gocql.TimeUUID(), CreatedAt: now, IsActive: true}
	status := http.StatusCreated

	if in.ID != "" {
		id, err := gocql.ParseUUID(in.ID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
			return
		}
		existing, err := h.Products.GetProduct(ctx, id)
		switch {
		case err == nil:
			p, status = existing, http.StatusOK
		case errors.Is(err, repository.ErrNotFound):
			p.ID = id
		default:
			h.respondError(c, err)
			return
		}
	}
	previous := *p

	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.PriceCents = in.PriceCents
	p.Category = in.Category
	p.ImageURLs = in.ImageURLs
	p.Tags = in.Tags
	p.Customizable = in.Customizable
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	p.UpdatedAt = now

	if err := h.Products.UpsertProduct(ctx, p); err != nil {
		h.respondError(c, err)
		return
	}

	if h.Search.Enabled() {
		if err := h.Search.IndexProduct(ctx, *p); err != nil {
			h.Log.Warnf("⚠️ Indexation produit %s échouée: %v", p.ID, err)
		}
	}

	var old any
	if status == http.StatusOK {
		old = previous
	}
	h.Audit.Record(ctx, userID(c), models.ActionProductUpsert, models.ResourceProduct, p.ID.String(), old, p)

	c.JSON(status, gin.H{"message": "Produit enregistré", "product": p})
}
