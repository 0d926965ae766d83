// Package handlers expose l'API HTTP de la boutique (gin).
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"go.uber.org/zap"

	"patchwork_back_end/internal/audit"
	"patchwork_back_end/internal/cart"
	"patchwork_back_end/internal/middleware"
	"patchwork_back_end/internal/orders"
	"patchwork_back_end/internal/pricing"
	"patchwork_back_end/internal/repository"
	"patchwork_back_end/internal/services"
)

// Handler regroupe les dépendances des routes
type Handler struct {
	Products repository.ProductRepository
	Search   *services.Search
	Catalog  *pricing.Catalog
	Cart     *cart.Service
	Designs  *services.Designs
	Orders   *orders.Service
	Audit    *audit.Recorder
	Log      *zap.SugaredLogger
}

// respondError traduit une erreur métier en réponse HTTP
func (h *Handler) respondError(c *gin.Context, err error) {
	status, message := http.StatusInternalServerError, "Erreur interne"

	var unknown *pricing.UnknownOptionError
	switch {
	case errors.As(err, &unknown):
		status, message = http.StatusBadRequest, unknown.Error()

	case errors.Is(err, cart.ErrInvalidQuantity), errors.Is(err, pricing.ErrInvalidQuantity):
		status, message = http.StatusBadRequest, "Quantité invalide"
	case errors.Is(err, cart.ErrQuantityLimit):
		status, message = http.StatusBadRequest, "Quantité maximale dépassée"
	case errors.Is(err, cart.ErrTooManyLines):
		status, message = http.StatusBadRequest, "Trop d'articles différents dans le panier"
	case errors.Is(err, cart.ErrNotCustomizable):
		status, message = http.StatusBadRequest, "Ce produit ne peut pas être personnalisé"
	case errors.Is(err, cart.ErrDesignNotOwned):
		status, message = http.StatusBadRequest, "Design introuvable"
	case errors.Is(err, cart.ErrProductNotFound):
		status, message = http.StatusNotFound, "Produit introuvable"
	case errors.Is(err, cart.ErrLineNotFound):
		status, message = http.StatusNotFound, "Article introuvable dans le panier"
	case errors.Is(err, cart.ErrConflict):
		status, message = http.StatusConflict, "Panier modifié simultanément, réessayez"

	case errors.Is(err, pricing.ErrUnknownShipping):
		status, message = http.StatusBadRequest, "Option de livraison inconnue"
	case errors.Is(err, pricing.ErrNegativePrice):
		status, message = http.StatusBadRequest, "Prix invalide"

	case errors.Is(err, orders.ErrEmptyCart):
		status, message = http.StatusBadRequest, "Panier vide"
	case errors.Is(err, orders.ErrOrderNotFound), errors.Is(err, repository.ErrNotFound):
		status, message = http.StatusNotFound, "Commande introuvable"
	case errors.Is(err, orders.ErrInvalidTransition):
		status, message = http.StatusConflict, "Changement de statut impossible"
	case errors.Is(err, orders.ErrInvalidStatus),
		errors.Is(err, orders.ErrInvalidAction),
		errors.Is(err, orders.ErrNoteRequired),
		errors.Is(err, orders.ErrNoteTooLong),
		errors.Is(err, orders.ErrInvalidReason),
		errors.Is(err, orders.ErrInvalidAmount):
		status, message = http.StatusBadRequest, capitalize(err.Error())
	case errors.Is(err, orders.ErrNotRefundable), errors.Is(err, orders.ErrRefundExists),
		errors.Is(err, orders.ErrRefundProcessed), errors.Is(err, orders.ErrRefundApplied):
		status, message = http.StatusConflict, capitalize(err.Error())
	case errors.Is(err, orders.ErrRefundNotFound):
		status, message = http.StatusNotFound, "Remboursement introuvable"

	case errors.Is(err, services.ErrDesignTooLarge):
		status, message = http.StatusRequestEntityTooLarge, capitalize(err.Error())
	case errors.Is(err, services.ErrDesignType), errors.Is(err, services.ErrDesignEmpty):
		status, message = http.StatusUnsupportedMediaType, capitalize(err.Error())
	case errors.Is(err, services.ErrStorageUnavailable), errors.Is(err, services.ErrSearchUnavailable):
		status, message = http.StatusServiceUnavailable, capitalize(err.Error())
	}

	if status >= http.StatusInternalServerError {
		h.Log.Errorw("❌ Erreur requête", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": message})
}

// capitalize met la première lettre en majuscule (les erreurs Go sont en minuscules)
func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

func userID(c *gin.Context) string {
	return c.GetString(middleware.ContextUserID)
}

// paramUUID lit un identifiant dans l'URL ; répond 400 s'il est invalide
func paramUUID(c *gin.Context, name, message string) (gocql.UUID, bool) {
	id, err := gocql.ParseUUID(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": message})
		return gocql.UUID{}, false
	}
	return id, true
}

func queryLimit(c *gin.Context) int {
	limit, _ := strconv.Atoi(c.Query("limit"))
	return limit
}
