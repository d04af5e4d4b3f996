package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pcshop-storefront/internal/apiclient"
	"pcshop-storefront/internal/cart"
	"pcshop-storefront/internal/catalog"
	"pcshop-storefront/internal/checkout"
	"pcshop-storefront/internal/config"
	"pcshop-storefront/internal/events"
	"pcshop-storefront/internal/logger"
	"pcshop-storefront/internal/metrics"
	"pcshop-storefront/internal/middleware"
	"pcshop-storefront/internal/orders"
)

const serviceName = "pcshop-storefront"

// Deps is everything the storefront router needs.
type Deps struct {
	Client   *apiclient.Client
	Bus      events.Bus
	Config   *config.Config
	Metrics  *metrics.Registry
	Logger   *zap.Logger
	Sessions sessions.Store // defaults to a cookie store keyed by Config.SessionSecret
}

// NewRouter builds the storefront's gin engine.
func NewRouter(d Deps) *gin.Engine {
	log := logger.OrNop(d.Logger)
	cfg := d.Config
	store := d.Sessions
	if store == nil {
		store = middleware.NewSessionStore(cfg.SessionSecret, cfg.SecureCookies)
	}

	r := gin.New()
	r.Use(middleware.HealthCheck("/healthz", serviceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.TrustedProxyHeaders())
	r.Use(logger.GinMiddleware(log))
	r.Use(logger.Recovery(log))
	r.Use(middleware.SecurityHeaders())

	// CORS middleware, only when pages are served from another origin
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", middleware.RequestIDHeader},
			ExposeHeaders:    []string{middleware.RequestIDHeader},
			AllowCredentials: true,
		}))
	}

	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	// Initialize views and handlers
	cat := catalog.New(d.Client, d.Bus, log)
	cartView := cart.NewView(d.Client, log)
	lister := orders.NewLister(d.Client, cfg.OrdersPageSize, log)

	authHandler := NewAuthHandler()
	publicHandler := NewPublicHandler(cat)
	cartHandler := NewCartHandler(cartView, cat, d.Bus)
	checkoutHandler := NewCheckoutHandler(d.Client, cartView, cat, checkout.Options{
		ShippingFee:      decimal.NewNullDecimal(cfg.ShippingFee),
		RevalidatePrices: cfg.RevalidatePrices,
		Metrics:          d.Metrics,
		Logger:           log,
	})
	orderHandler := NewOrderHandler(lister)
	profileHandler := NewProfileHandler(d.Client)
	adminHandler := NewAdminHandler(d.Client)

	api := r.Group("/api")
	api.Use(middleware.SessionMiddleware(store, d.Client, log))

	// Auth routes
	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/register", authHandler.Register)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/session", authHandler.Session)
	}

	// Public routes
	api.GET("/products", publicHandler.GetProducts)
	api.GET("/products/search", publicHandler.SearchProducts)
	api.GET("/products/:id", publicHandler.GetProduct)

	// Cart routes. Reads show an empty cart to visitors.
	cartGroup := api.Group("/cart")
	{
		cartGroup.GET("", cartHandler.GetCart)
		cartGroup.GET("/count", cartHandler.GetCartCount)
		cartGroup.POST("/add", middleware.RequireSession(), cartHandler.AddToCart)
		if d.Bus != nil {
			cartGroup.GET("/events", middleware.RequireSession(), cartHandler.Events)
		}
	}

	checkoutGroup := api.Group("/checkout")
	checkoutGroup.Use(middleware.RequireSession())
	{
		checkoutGroup.POST("", checkoutHandler.Submit)
		checkoutGroup.POST("/preview", checkoutHandler.Preview)
		checkoutGroup.POST("/buy-now", checkoutHandler.BuyNow)
	}

	api.GET("/orders", orderHandler.GetUserOrders)
	api.GET("/profile", profileHandler.GetProfile)

	// Admin routes
	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/products", adminHandler.ListProducts)
		admin.PUT("/products/:id/toggle", adminHandler.ToggleProductActive)
		admin.GET("/users", adminHandler.ListUsers)
		admin.PUT("/users/:id/toggle-admin", adminHandler.ToggleUserAdmin)
	}

	return r
}
