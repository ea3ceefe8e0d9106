// internal/interfaces/http/handlers/menu.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jsephandrade/technomart-mobile-app/internal/domain/menu"
)

// categoryAll is the filter chip that shows every category
const categoryAll = "all"

// MenuHandler handles menu catalog endpoints
type MenuHandler struct {
	catalog *menu.Catalog
}

// NewMenuHandler creates a new menu handler
func NewMenuHandler(catalog *menu.Catalog) *MenuHandler {
	return &MenuHandler{catalog: catalog}
}

// GetItems handles GET /menu/items?segment=&category=
func (h *MenuHandler) GetItems(c *gin.Context) {
	segment := menu.Segment(c.Query("segment"))
	category := c.Query("category")
	if category == categoryAll {
		category = ""
	}

	items, err := h.catalog.FilterByCategory(segment, category)
	if err != nil {
		respondError(c, err, "Failed to list menu items")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Menu items retrieved successfully",
		"data":    items,
	})
}

// GetItem handles GET /menu/items/:id
func (h *MenuHandler) GetItem(c *gin.Context) {
	item, err := h.catalog.Find(c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve menu item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Menu item retrieved successfully",
		"data":    item,
	})
}

// Search handles GET /menu/search?q=
func (h *MenuHandler) Search(c *gin.Context) {
	query := c.Query("q")
	items := h.catalog.Search(query)

	c.JSON(http.StatusOK, gin.H{
		"message": "Search completed successfully",
		"data": gin.H{
			"query": query,
			"items": items,
			"count": len(items),
		},
	})
}

// GetExtras handles GET /menu/extras
func (h *MenuHandler) GetExtras(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Extra options retrieved successfully",
		"data":    h.catalog.ExtraOptions(),
	})
}

// GetAddOns handles GET /menu/addons
func (h *MenuHandler) GetAddOns(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Add-ons retrieved successfully",
		"data":    h.catalog.AddOns(),
	})
}
