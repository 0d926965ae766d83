package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"patchwork_back_end/internal/orders"
)

// ListOrdersByStatus sert la file de validation (status=pending_review par défaut)
func (h *Handler) ListOrdersByStatus(c *gin.Context) {
	list, err := h.Orders.ListByStatus(c.Request.Context(), c.Query("status"), queryLimit(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}

// ReviewOrder approuve ou refuse une commande en attente de validation
func (h *Handler) ReviewOrder(c *gin.Context) {
	id, ok := paramUUID(c, "id", "ID commande invalide")
	if !ok {
		return
	}
	var d orders.Decision
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	o, err := h.Orders.Review(c.Request.Context(), id, userID(c), d)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Décision enregistrée", "order": o})
}

// UpdateOrderStatus fait avancer une commande validée
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := paramUUID(c, "id", "ID commande invalide")
	if !ok {
		return
	}
	var in struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statut requis"})
		return
	}

	o, err := h.Orders.UpdateStatus(c.Request.Context(), id, userID(c), in.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Statut mis à jour", "order": o})
}

func (h *Handler) ListRefunds(c *gin.Context) {
	list, err := h.Orders.ListRefunds(c.Request.Context(), c.Query("status"), queryLimit(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"refunds": list})
}

// ProcessRefund approuve ou refuse une demande de remboursement
func (h *Handler) ProcessRefund(c *gin.Context) {
	id, ok := paramUUID(c, "id", "ID remboursement invalide")
	if !ok {
		return
	}
	var d orders.Decision
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	r, err := h.Orders.ProcessRefund(c.Request.Context(), id, userID(c), d)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Remboursement traité", "refund": r})
}
