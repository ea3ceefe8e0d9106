// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jsephandrade/technomart-mobile-app/internal/config"
	"github.com/jsephandrade/technomart-mobile-app/internal/domain/cart"
	"github.com/jsephandrade/technomart-mobile-app/internal/domain/menu"
	"github.com/jsephandrade/technomart-mobile-app/internal/interfaces/http/middleware"
	"github.com/jsephandrade/technomart-mobile-app/internal/pkg/currency"
)

// SessionHeader carries the guest cart session for clients without cookies
const SessionHeader = "X-Cart-Session"

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService  *cart.Service
	catalog      *menu.Catalog
	cookieName   string
	sessionTTL   time.Duration
	secureCookie bool
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service, catalog *menu.Catalog, cfg *config.Config) *CartHandler {
	return &CartHandler{
		cartService:  cartService,
		catalog:      catalog,
		cookieName:   cfg.Cart.SessionCookie,
		sessionTTL:   cfg.Cart.SessionTTL,
		secureCookie: cfg.IsProduction(),
	}
}

// AddToCartRequest represents add to cart request.
// Prices come from the catalog, never from the client.
type AddToCartRequest struct {
	ItemID   string   `json:"item_id" binding:"required"`
	Extras   []string `json:"extras"`
	Notes    string   `json:"notes" binding:"max=500"`
	Quantity int      `json:"quantity"`
}

// LineRequest identifies a cart line
type LineRequest struct {
	VariantKey string `json:"variant_key" binding:"required"`
}

type cartView struct {
	*cart.CartResponse
	SubtotalDisplay string `json:"subtotal_display"`
}

func newCartView(resp *cart.CartResponse) cartView {
	return cartView{
		CartResponse:    resp,
		SubtotalDisplay: currency.FormatPeso(resp.Totals.Subtotal),
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	cartResponse, err := h.cartService.GetCart(c.Request.Context(), h.owner(c))
	if err != nil {
		respondError(c, err, "Failed to retrieve cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    newCartView(cartResponse),
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidRequest(c, err)
		return
	}

	item, err := h.catalog.Find(req.ItemID)
	if err != nil {
		respondError(c, err, "Failed to add item to cart")
		return
	}
	extras, err := h.catalog.ResolveExtras(req.Extras)
	if err != nil {
		respondError(c, err, "Failed to add item to cart")
		return
	}

	cartResponse, err := h.cartService.AddItem(c.Request.Context(), h.owner(c), cart.AddItemRequest{
		Item:     item.CartItem(),
		Extras:   extras,
		Notes:    req.Notes,
		Quantity: req.Quantity,
	})
	if err != nil {
		respondError(c, err, "Failed to add item to cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    newCartView(cartResponse),
	})
}

// UpdateCartItem handles PUT /cart/items
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	var req cart.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidRequest(c, err)
		return
	}

	cartResponse, err := h.cartService.UpdateItemQuantity(c.Request.Context(), h.owner(c), req.VariantKey, req.Quantity)
	if err != nil {
		respondError(c, err, "Failed to update cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    newCartView(cartResponse),
	})
}

// RemoveFromCart handles DELETE /cart/items?key=
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Query parameter 'key' is required",
		})
		return
	}

	cartResponse, err := h.cartService.RemoveItem(c.Request.Context(), h.owner(c), key)
	if err != nil {
		respondError(c, err, "Failed to remove cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    newCartView(cartResponse),
	})
}

// EditCartItem handles POST /cart/items/edit.
// The line leaves the cart and its configuration is returned for re-customisation.
func (h *CartHandler) EditCartItem(c *gin.Context) {
	var req LineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidRequest(c, err)
		return
	}

	edit, cartResponse, err := h.cartService.EditItem(c.Request.Context(), h.owner(c), req.VariantKey)
	if err != nil {
		respondError(c, err, "Failed to edit cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item ready for editing",
		"data": gin.H{
			"item": edit,
			"cart": newCartView(cartResponse),
		},
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.cartService.ClearCart(c.Request.Context(), h.owner(c)); err != nil {
		respondError(c, err, "Failed to clear cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}

// GetCartCount handles GET /cart/count
func (h *CartHandler) GetCartCount(c *gin.Context) {
	count, err := h.cartService.GetCartItemCount(c.Request.Context(), h.owner(c))
	if err != nil {
		respondError(c, err, "Failed to get cart count")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart count retrieved successfully",
		"data": gin.H{
			"count": count,
		},
	})
}

// GetPickupSlots handles GET /cart/pickup-slots
func (h *CartHandler) GetPickupSlots(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Pickup slots retrieved successfully",
		"data":    h.cartService.PickupSlots(),
	})
}

// Checkout handles POST /cart/checkout. An empty body means pickup now.
func (h *CartHandler) Checkout(c *gin.Context) {
	var req cart.CheckoutRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondInvalidRequest(c, err)
		return
	}

	result, err := h.cartService.Checkout(c.Request.Context(), h.owner(c), req)
	if err != nil {
		respondError(c, err, "Failed to check out cart")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Cart checked out successfully",
		"data": gin.H{
			"checkout":         result,
			"subtotal_display": currency.FormatPeso(result.Totals.Subtotal),
		},
	})
}

// MergeCart handles POST /cart/merge. It requires authentication and folds the
// caller's guest session cart into their account cart.
func (h *CartHandler) MergeCart(c *gin.Context) {
	subject, ok := middleware.GetSubjectFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	guest := ""
	if sessionID, ok := h.existingSessionID(c); ok {
		guest = sessionOwner(sessionID)
	}

	cartResponse, err := h.cartService.MergeCarts(c.Request.Context(), guest, userOwner(subject))
	if err != nil {
		respondError(c, err, "Failed to merge carts")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Carts merged successfully",
		"data":    newCartView(cartResponse),
	})
}

// owner resolves whose cart the request addresses: the signed-in user or the guest session
func (h *CartHandler) owner(c *gin.Context) string {
	if subject, ok := middleware.GetSubjectFromContext(c); ok {
		return userOwner(subject)
	}
	return sessionOwner(h.getOrCreateSessionID(c))
}

func userOwner(subject string) string {
	return "user:" + subject
}

func sessionOwner(sessionID string) string {
	return "session:" + sessionID
}

// existingSessionID reads the guest session from the header or the cookie.
// Only UUIDs are accepted.
func (h *CartHandler) existingSessionID(c *gin.Context) (string, bool) {
	candidates := []string{c.GetHeader(SessionHeader)}
	if cookie, err := c.Cookie(h.cookieName); err == nil {
		candidates = append(candidates, cookie)
	}

	for _, candidate := range candidates {
		if id, err := uuid.Parse(candidate); err == nil {
			return id.String(), true
		}
	}
	return "", false
}

// getOrCreateSessionID gets existing session ID or creates a new one
func (h *CartHandler) getOrCreateSessionID(c *gin.Context) string {
	sessionID, ok := h.existingSessionID(c)
	if !ok {
		sessionID = uuid.NewString()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(h.cookieName, sessionID, int(h.sessionTTL/time.Second), "/", "", h.secureCookie, true)
	}

	c.Header(SessionHeader, sessionID)
	return sessionID
}
