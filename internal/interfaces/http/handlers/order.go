// internal/interfaces/http/handlers/order.go
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jsephandrade/technomart-mobile-app/internal/domain/order"
	"github.com/jsephandrade/technomart-mobile-app/internal/pkg/currency"
)

// OrderHandler handles the order tracking endpoints
type OrderHandler struct {
	viewmodel *order.Viewmodel
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(viewmodel *order.Viewmodel) *OrderHandler {
	return &OrderHandler{viewmodel: viewmodel}
}

// SupportRequest represents contact support request
type SupportRequest struct {
	OrderID string `json:"order_id"`
}

type orderStateView struct {
	order.State
	CurrentStep              *order.StatusStep `json:"currentStep,omitempty"`
	CurrentOrderTotalDisplay string            `json:"currentOrderTotalDisplay"`
}

func newOrderStateView(state order.State) orderStateView {
	view := orderStateView{
		State:                    state,
		CurrentOrderTotalDisplay: currency.FormatPeso(state.CurrentOrderTotal),
	}
	if step, ok := state.CurrentOrder.CurrentStep(); ok {
		view.CurrentStep = &step
	}
	return view
}

// GetOrders handles GET /orders
func (h *OrderHandler) GetOrders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    newOrderStateView(h.viewmodel.State()),
	})
}

// GetCurrentOrder handles GET /orders/current
func (h *OrderHandler) GetCurrentOrder(c *gin.Context) {
	view := newOrderStateView(h.viewmodel.State())

	c.JSON(http.StatusOK, gin.H{
		"message": "Current order retrieved successfully",
		"data": gin.H{
			"currentOrder":             view.CurrentOrder,
			"currentStep":              view.CurrentStep,
			"currentOrderTotal":        view.CurrentOrderTotal,
			"currentOrderTotalDisplay": view.CurrentOrderTotalDisplay,
			"loading":                  view.LoadingCurrent,
			"error":                    view.CurrentError,
		},
	})
}

// GetOrderHistory handles GET /orders/history
func (h *OrderHandler) GetOrderHistory(c *gin.Context) {
	state := h.viewmodel.State()

	c.JSON(http.StatusOK, gin.H{
		"message": "Order history retrieved successfully",
		"data": gin.H{
			"pastOrders": state.PastOrders,
			"loading":    state.LoadingHistory,
			"error":      state.HistoryError,
		},
	})
}

// RefreshOrders handles POST /orders/refresh. When the request deadline passes
// first, the refresh keeps running and the state so far is returned with 202.
func (h *OrderHandler) RefreshOrders(c *gin.Context) {
	state, err := h.viewmodel.Refresh(c.Request.Context())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"message": "Orders refreshed successfully",
			"data":    newOrderStateView(state),
		})
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		c.JSON(http.StatusAccepted, gin.H{
			"message": "Order refresh still in progress",
			"data":    newOrderStateView(state),
		})
	default:
		respondError(c, err, "Failed to refresh orders")
	}
}

// ContactSupport handles POST /orders/support.
// Without an order_id the ticket is opened for the current order.
func (h *OrderHandler) ContactSupport(c *gin.Context) {
	var req SupportRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondInvalidRequest(c, err)
		return
	}

	orderID := req.OrderID
	if orderID == "" {
		if current := h.viewmodel.State().CurrentOrder; current != nil {
			orderID = current.ID
		}
	}

	ticket, err := h.viewmodel.ContactSupport(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err, "Failed to contact support")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Support ticket created successfully",
		"data":    ticket,
	})
}
