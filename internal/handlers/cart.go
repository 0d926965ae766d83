package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"patchwork_back_end/internal/cart"
)

// GetCart récupère le panier de l'utilisateur connecté
func (h *Handler) GetCart(c *gin.Context) {
	ct, err := h.Cart.Get(c.Request.Context(), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ct)
}

// AddToCart ajoute un produit, personnalisé ou non
func (h *Handler) AddToCart(c *gin.Context) {
	var in cart.AddInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	ct, err := h.Cart.Add(c.Request.Context(), userID(c), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Produit ajouté au panier", "cart": ct})
}

// UpdateCartQuantity change la quantité d'une ligne (0 = supprimer)
func (h *Handler) UpdateCartQuantity(c *gin.Context) {
	var in struct {
		Quantity *int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantité invalide"})
		return
	}

	ct, err := h.Cart.UpdateQuantity(c.Request.Context(), userID(c), c.Param("lineId"), *in.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Panier mis à jour", "cart": ct})
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	ct, err := h.Cart.Remove(c.Request.Context(), userID(c), c.Param("lineId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Article retiré du panier", "cart": ct})
}

func (h *Handler) ClearCart(c *gin.Context) {
	if err := h.Cart.Clear(c.Request.Context(), userID(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Panier vidé"})
}
