package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/autoparts/internal/server/http/handlers"
	"github.com/polkiloo/autoparts/internal/server/http/middleware"
)

// maxRequestBody caps inflated gzip request bodies.
const maxRequestBody = 1 << 20

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.StorefrontFacade, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest(maxRequestBody))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	authHandler := handlers.NewAuthHandler(facade)
	profileHandler := handlers.NewProfileHandler(facade)
	catalogHandler := handlers.NewCatalogHandler(facade)
	checkoutHandler := handlers.NewCheckoutHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	adminHandler := handlers.NewAdminHandler(facade)

	api := engine.Group("/api")

	catalog := api.Group("/catalog")
	catalog.GET("/products", catalogHandler.Products)
	catalog.GET("/products/:id", catalogHandler.Product)
	catalog.GET("/rate", catalogHandler.Rate)
	api.POST("/cart/quote", catalogHandler.Quote)

	user := api.Group("/user")
	user.POST("/register", authHandler.Register)
	user.POST("/login", authHandler.Login)

	userAuth := user.Group("")
	userAuth.Use(middleware.AuthRequired(facade))
	userAuth.GET("/profile", profileHandler.Get)
	userAuth.PUT("/profile", profileHandler.Update)
	userAuth.GET("/orders", orderHandler.List)
	userAuth.GET("/orders/:id", orderHandler.Get)
	userAuth.POST("/orders/:id/cancel", orderHandler.Cancel)
	userAuth.GET("/orders/:id/invoice", orderHandler.Invoice)

	api.POST("/checkout", middleware.AuthRequired(facade), checkoutHandler.Checkout)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(facade), middleware.AdminRequired())
	admin.GET("/orders", adminHandler.List)
	admin.GET("/orders/:id", adminHandler.Get)
	admin.POST("/orders/:id/advance", adminHandler.Advance)
	admin.POST("/orders/:id/cancel", adminHandler.Cancel)
	admin.PUT("/orders/:id/items", adminHandler.Amend)
	admin.POST("/orders/:id/invoice", adminHandler.IssueInvoice)

	return engine
}
