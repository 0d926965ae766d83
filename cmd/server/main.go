package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"patchwork_back_end/internal/audit"
	"patchwork_back_end/internal/cache"
	"patchwork_back_end/internal/cart"
	"patchwork_back_end/internal/config"
	"patchwork_back_end/internal/database"
	"patchwork_back_end/internal/handlers"
	"patchwork_back_end/internal/logger"
	"patchwork_back_end/internal/middleware"
	"patchwork_back_end/internal/orders"
	"patchwork_back_end/internal/pricing"
	"patchwork_back_end/internal/repository"
	"patchwork_back_end/internal/routes"
	"patchwork_back_end/internal/services"
)

func main() {
	bootLog := logger.NewOrFallback(os.Getenv("LOG_LEVEL"), os.Getenv("APP_ENV") == "development")

	cfg, err := config.Load(bootLog)
	if err != nil {
		bootLog.Fatalf("❌ Configuration invalide: %v", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.IsDevelopment())
	if err != nil {
		bootLog.Fatalf("❌ Niveau de log invalide: %v", err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func run(cfg *config.Config, log *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := pricing.LoadCatalog(cfg.Pricing.CatalogPath)
	if err != nil {
		return err
	}
	log.Infof("✅ Grille tarifaire chargée (%s)", catalog.Currency)

	dbs, err := database.Connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer dbs.Close()

	productsSession, err := dbs.Scylla.ProductsSession()
	if err != nil {
		return err
	}
	ordersSession, err := dbs.Scylla.OrdersSession()
	if err != nil {
		return err
	}
	productRepo := repository.NewScyllaProducts(productsSession)
	orderRepo := repository.NewScyllaOrders(ordersSession)

	products := cache.NewProductCache(dbs.Redis, productRepo, log.Named("cache"))
	designs := services.NewDesigns(dbs.MinIO, cfg.MinIO.Bucket, log.Named("designs"))
	recorder := audit.NewRecorder(orderRepo, log.Named("audit"))

	cartSvc := cart.NewService(
		cart.NewStore(dbs.Redis, cfg.Cart.TTL),
		products,
		catalog,
		designs,
		cart.Limits{MaxQuantity: cfg.Cart.MaxQuantity, MaxLines: cfg.Cart.MaxLines},
		log.Named("cart"),
	)

	var notifier orders.Notifier = orders.NopNotifier{}
	mailer := services.NewMailer(cfg.SMTP, log.Named("mail"))
	var mailNotifier *services.MailNotifier
	if mailer.Enabled() {
		mailNotifier = services.NewMailNotifier(mailer, cfg.PublicBaseURL, log.Named("mail"))
		notifier = mailNotifier
	} else {
		log.Warn("⚠️ SMTP non configuré, aucun e-mail ne sera envoyé")
	}

	orderSvc := orders.NewService(orderRepo, orderRepo, cartSvc, catalog, notifier, recorder, log.Named("orders"))

	h := &handlers.Handler{
		Products: products,
		Search:   services.NewSearch(dbs.Elastic, cfg.Elastic.Index, log.Named("search")),
		Catalog:  catalog,
		Cart:     cartSvc,
		Designs:  designs,
		Orders:   orderSvc,
		Audit:    recorder,
		Log:      log.Named("http"),
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log.Named("http")))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	routes.RegisterRoutes(r, h, routes.Options{
		JWTSecret:   []byte(cfg.JWTSecret),
		RateLimiter: middleware.NewRateLimiter(dbs.Redis, log.Named("ratelimit")),
		Log:         log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("🚀 Serveur Patchwork lancé sur le port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("🛑 Arrêt du serveur...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if mailNotifier != nil {
		mailNotifier.Wait()
	}
	log.Info("✅ Serveur arrêté proprement")
	return nil
}
