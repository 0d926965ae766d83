package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"patchwork_back_end/internal/middleware"
	"patchwork_back_end/internal/services"
)

// UploadDesign reçoit le fichier de design (champ multipart "file")
func (h *Handler) UploadDesign(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxDesignSize+1<<20)

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier manquant ou trop volumineux"})
		return
	}
	if file.Size > services.MaxDesignSize {
		h.respondError(c, services.ErrDesignTooLarge)
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier illisible"})
		return
	}
	defer f.Close()

	design, err := h.Designs.Upload(c.Request.Context(), userID(c), f)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, design)
}

// GetDesignURL génère une URL de lecture temporaire (propriétaire ou admin)
func (h *Handler) GetDesignURL(c *gin.Context) {
	ref := c.Query("ref")
	if ref == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre ref requis"})
		return
	}
	if !h.Designs.OwnedBy(ref, userID(c)) && c.GetString(middleware.ContextRole) != middleware.RoleAdmin {
		c.JSON(http.StatusNotFound, gin.H{"error": "Design introuvable"})
		return
	}

	link, err := h.Designs.PresignedURL(c.Request.Context(), ref)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": link, "expires_in": int(services.DesignURLLifetime.Seconds())})
}
