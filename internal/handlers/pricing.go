package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"patchwork_back_end/internal/models"
)

// GetCatalog retourne la grille des options de personnalisation
func (h *Handler) GetCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, h.Catalog)
}

type quoteInput struct {
	ProductID     string                `json:"product_id" binding:"required"`
	Quantity      int                   `json:"quantity"`
	Customization *models.Customization `json:"customization"`
}

// QuotePrice calcule le prix d'une personnalisation sans modifier le panier
func (h *Handler) QuotePrice(c *gin.Context) {
	var in quoteInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}

	price, err := h.Cart.Quote(c.Request.Context(), in.ProductID, in.Customization, in.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, price)
}

// GetShippingOptions retourne les options de livraison pour un sous-total donné
func (h *Handler) GetShippingOptions(c *gin.Context) {
	subtotal, err := strconv.ParseInt(c.DefaultQuery("subtotal", "0"), 10, 64)
	if err != nil || subtotal < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Sous-total invalide"})
		return
	}
	c.JSON(http.StatusOK, h.Catalog.ShippingOptions(subtotal))
}
