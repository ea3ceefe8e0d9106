// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/jsephandrade/technomart-mobile-app/internal/config"
	"github.com/jsephandrade/technomart-mobile-app/internal/interfaces/http/handlers"
	"github.com/jsephandrade/technomart-mobile-app/internal/interfaces/http/middleware"
)

// Handlers groups the API handlers mounted under /api/v1
type Handlers struct {
	Menu   *handlers.MenuHandler
	Cart   *handlers.CartHandler
	Orders *handlers.OrderHandler
}

// SetupMenuRoutes sets up menu catalog routes
func SetupMenuRoutes(rg *gin.RouterGroup, h *handlers.MenuHandler) {
	menu := rg.Group("/menu")
	{
		menu.GET("/items", h.GetItems)
		menu.GET("/items/:id", h.GetItem)
		menu.GET("/search", h.Search)
		menu.GET("/extras", h.GetExtras)
		menu.GET("/addons", h.GetAddOns)
	}
}

// SetupCartRoutes sets up cart routes. Guests are identified by their session,
// signed-in users by their token subject.
func SetupCartRoutes(rg *gin.RouterGroup, h *handlers.CartHandler, cfg *config.Config) {
	cart := rg.Group("/cart")
	cart.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		cart.GET("", h.GetCart)
		cart.GET("/count", h.GetCartCount)
		cart.POST("/items", h.AddToCart)
		cart.PUT("/items", h.UpdateCartItem)
		cart.DELETE("/items", h.RemoveFromCart)
		cart.POST("/items/edit", h.EditCartItem)
		cart.DELETE("", h.ClearCart)
		cart.GET("/pickup-slots", h.GetPickupSlots)
		cart.POST("/checkout", h.Checkout)
	}

	// Merging needs an account to merge into
	protected := cart.Group("")
	protected.Use(middleware.AuthMiddleware(cfg))
	{
		protected.POST("/merge", h.MergeCart)
	}
}

// SetupOrderRoutes sets up order tracking routes
func SetupOrderRoutes(rg *gin.RouterGroup, h *handlers.OrderHandler) {
	orders := rg.Group("/orders")
	{
		orders.GET("", h.GetOrders)
		orders.GET("/current", h.GetCurrentOrder)
		orders.GET("/history", h.GetOrderHistory)
		orders.POST("/refresh", h.RefreshOrders)
		orders.POST("/support", h.ContactSupport)
	}
}

// SetupRoutes mounts every API route group
func SetupRoutes(rg *gin.RouterGroup, h Handlers, cfg *config.Config) {
	SetupMenuRoutes(rg, h.Menu)
	SetupCartRoutes(rg, h.Cart, cfg)
	SetupOrderRoutes(rg, h.Orders)
}
