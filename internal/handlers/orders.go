package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"patchwork_back_end/internal/middleware"
	"patchwork_back_end/internal/orders"
)

// SubmitOrder transforme le panier en commande soumise à validation
func (h *Handler) SubmitOrder(c *gin.Context) {
	var in orders.SubmitInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
			return
		}
	}

	o, err := h.Orders.Submit(c.Request.Context(), userID(c), c.GetString(middleware.ContextEmail), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Commande envoyée pour validation", "order": o})
}

// GetMyOrders liste les commandes de l'utilisateur connecté, plus récentes d'abord
func (h *Handler) GetMyOrders(c *gin.Context) {
	list, err := h.Orders.ListMine(c.Request.Context(), userID(c), queryLimit(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := paramUUID(c, "id", "ID commande invalide")
	if !ok {
		return
	}
	o, err := h.Orders.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// CancelOrder annule une commande encore en attente de validation
func (h *Handler) CancelOrder(c *gin.Context) {
	id, ok := paramUUID(c, "id", "ID commande invalide")
	if !ok {
		return
	}
	o, err := h.Orders.Cancel(c.Request.Context(), userID(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Commande annulée", "order": o})
}

// RequestRefund crée une demande de remboursement
func (h *Handler) RequestRefund(c *gin.Context) {
	id, ok := paramUUID(c, "id", "ID commande invalide")
	if !ok {
		return
	}
	var in orders.RefundInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	r, err := h.Orders.RequestRefund(c.Request.Context(), userID(c), id, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Demande de remboursement créée", "refund": r})
}

func (h *Handler) GetMyRefunds(c *gin.Context) {
	list, err := h.Orders.ListMyRefunds(c.Request.Context(), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"refunds": list})
}
