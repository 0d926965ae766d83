package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"patchwork_back_end/internal/handlers"
	"patchwork_back_end/internal/middleware"
)

// Options regroupe ce dont les routes ont besoin en plus des handlers
type Options struct {
	JWTSecret   []byte
	RateLimiter *middleware.RateLimiter // nil : pas de limitation
	Log         *zap.SugaredLogger
}

func RegisterRoutes(r *gin.Engine, h *handlers.Handler, opts Options) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	if opts.RateLimiter != nil {
		api.Use(opts.RateLimiter.APIRateLimit())
	}

	// --- Public ---
	search := []gin.HandlerFunc{h.SearchProducts}
	if opts.RateLimiter != nil {
		search = append([]gin.HandlerFunc{opts.RateLimiter.SearchRateLimit()}, search...)
	}
	api.GET("/products", h.ListProducts)
	api.GET("/products/search", search...)
	api.GET("/products/:id", h.GetProduct)
	api.GET("/pricing/catalog", h.GetCatalog)
	api.POST("/pricing/quote", h.QuotePrice)
	api.GET("/shipping/options", h.GetShippingOptions)

	// --- Utilisateur connecté ---
	auth := api.Group("")
	auth.Use(middleware.AuthRequired(opts.JWTSecret, opts.Log))

	cart := auth.Group("/cart")
	cart.GET("", h.GetCart)
	writes := cart.Group("")
	if opts.RateLimiter != nil {
		writes.Use(opts.RateLimiter.CartRateLimit())
	}
	writes.POST("/items", h.AddToCart)
	writes.PATCH("/items/:lineId", h.UpdateCartQuantity)
	writes.DELETE("/items/:lineId", h.RemoveFromCart)
	writes.DELETE("", h.ClearCart)

	auth.POST("/designs", h.UploadDesign)
	auth.GET("/designs/url", h.GetDesignURL)

	auth.POST("/orders", h.SubmitOrder)
	auth.GET("/orders", h.GetMyOrders)
	auth.GET("/orders/:id", h.GetOrder)
	auth.POST("/orders/:id/cancel", h.CancelOrder)
	auth.POST("/orders/:id/refunds", h.RequestRefund)
	auth.GET("/refunds", h.GetMyRefunds)

	// --- Admin ---
	admin := auth.Group("/admin")
	admin.Use(middleware.RequireAdmin)
	admin.POST("/products", h.UpsertProduct)
	admin.GET("/orders", h.ListOrdersByStatus)
	admin.POST("/orders/:id/review", h.ReviewOrder)
	admin.PATCH("/orders/:id/status", h.UpdateOrderStatus)
	admin.GET("/refunds", h.ListRefunds)
	admin.POST("/refunds/:id/process", h.ProcessRefund)
}
