package handlers

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/jsephandrade/technomart-mobile-app/internal/domain/cart"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cartBody struct {
	cart.CartResponse
	SubtotalDisplay string `json:"subtotal_display"`
}

func addGinaling(t *testing.T, env *testEnv, quantity int, opts ...requestOption) (*cartBody, string) {
	t.Helper()
	w, body := env.do(t, http.MethodPost, "/api/v1/cart/items", AddToCartRequest{
		ItemID:   "menu-1",
		Extras:   []string{"egg"},
		Notes:    "less oil",
		Quantity: quantity,
	}, opts...)
	require.Equal(t, http.StatusOK, w.Code, body.Error)

	var resp cartBody
	decodeData(t, body, &resp)
	return &resp, w.Header().Get(SessionHeader)
}

func TestAddToCartCreatesSession(t *testing.T) {
	env := newTestEnv(t)

	resp, session := addGinaling(t, env, 2)
	_, err := uuid.Parse(session)
	require.NoError(t, err)

	require.Len(t, resp.Items, 1)
	assert.Equal(t, 2, resp.Items[0].Quantity)
	assert.True(t, resp.Totals.Subtotal.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, "₱150", resp.SubtotalDisplay)

	// Same configuration merges into the existing line
	resp, again := addGinaling(t, env, 1, withSession(session))
	assert.Equal(t, session, again)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 3, resp.Items[0].Quantity)
	assert.True(t, resp.Totals.Subtotal.Equal(decimal.NewFromInt(225)))

	w, body := env.do(t, http.MethodGet, "/api/v1/cart/count", nil, withSession(session))
	require.Equal(t, http.StatusOK, w.Code)
	var count struct {
		Count int `json:"count"`
	}
	decodeData(t, body, &count)
	assert.Equal(t, 3, count.Count)
}

func TestAddToCartSetsCookie(t *testing.T) {
	env := newTestEnv(t)

	w, _ := env.do(t, http.MethodPost, "/api/v1/cart/items", AddToCartRequest{ItemID: "menu-2"})
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, env.cfg.Cart.SessionCookie, cookies[0].Name)
	assert.Equal(t, w.Header().Get(SessionHeader), cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestSessionsAreIsolated(t *testing.T) {
	env := newTestEnv(t)

	_, first := addGinaling(t, env, 1)
	_, second := addGinaling(t, env, 4)
	require.NotEqual(t, first, second)

	w, body := env.do(t, http.MethodGet, "/api/v1/cart", nil, withSession(first))
	require.Equal(t, http.StatusOK, w.Code)
	var resp cartBody
	decodeData(t, body, &resp)
	assert.Equal(t, 1, resp.Totals.TotalItems)
}

func TestAddToCartErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		body   interface{}
		status int
	}{
		{"missing item id", map[string]interface{}{"quantity": 1}, http.StatusBadRequest},
		{"unknown item", AddToCartRequest{ItemID: "nope"}, http.StatusNotFound},
		{"unknown extra", AddToCartRequest{ItemID: "menu-1", Extras: []string{"gold"}}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := env.do(t, http.MethodPost, "/api/v1/cart/items", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestUpdateAndRemoveCartItem(t *testing.T) {
	env := newTestEnv(t)
	resp, session := addGinaling(t, env, 2)
	key := resp.Items[0].VariantKey

	w, body := env.do(t, http.MethodPut, "/api/v1/cart/items", cart.UpdateQuantityRequest{VariantKey: key, Quantity: 5}, withSession(session))
	require.Equal(t, http.StatusOK, w.Code)
	var updated cartBody
	decodeData(t, body, &updated)
	assert.Equal(t, 5, updated.Totals.TotalItems)

	w, _ = env.do(t, http.MethodPut, "/api/v1/cart/items", map[string]int{"quantity": 1}, withSession(session))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do(t, http.MethodDelete, "/api/v1/cart/items", nil, withSession(session))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = env.do(t, http.MethodDelete, "/api/v1/cart/items?key="+url.QueryEscape(key), nil, withSession(session))
	require.Equal(t, http.StatusOK, w.Code)
	var removed cartBody
	decodeData(t, body, &removed)
	assert.Empty(t, removed.Items)
	assert.True(t, removed.Totals.Subtotal.IsZero())
}

func TestUpdateQuantityToZeroRemovesLine(t *testing.T) {
	env := newTestEnv(t)
	resp, session := addGinaling(t, env, 2)

	w, body := env.do(t, http.MethodPut, "/api/v1/cart/items", cart.UpdateQuantityRequest{VariantKey: resp.Items[0].VariantKey}, withSession(session))
	require.Equal(t, http.StatusOK, w.Code)
	var updated cartBody
	decodeData(t, body, &updated)
	assert.Empty(t, updated.Items)
}

func TestEditCartItem(t *testing.T) {
	env := newTestEnv(t)
	resp, session := addGinaling(t, env, 3)

	w, _ := env.do(t, http.MethodPost, "/api/v1/cart/items/edit", LineRequest{VariantKey: "missing"}, withSession(session))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body := env.do(t, http.MethodPost, "/api/v1/cart/items/edit", LineRequest{VariantKey: resp.Items[0].VariantKey}, withSession(session))
	require.Equal(t, http.StatusOK, w.Code)

	var edit struct {
		Item cart.AddItemRequest `json:"item"`
		Cart cartBody            `json:"cart"`
	}
	decodeData(t, body, &edit)
	assert.Equal(t, "menu-1", edit.Item.Item.ID)
	assert.Equal(t, 1, edit.Item.Quantity)
	assert.Equal(t, "less oil", edit.Item.Notes)
	require.Len(t, edit.Item.Extras, 1)
	assert.Equal(t, "egg", edit.Item.Extras[0].Key)
	assert.Empty(t, edit.Cart.Items)
}

func TestClearCart(t *testing.T) {
	env := newTestEnv(t)
	_, session := addGinaling(t, env, 2)

	w, body := env.do(t, http.MethodDelete, "/api/v1/cart", nil, withSession(session))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Cart cleared successfully", body.Message)

	w, body = env.do(t, http.MethodGet, "/api/v1/cart", nil, withSession(session))
	require.Equal(t, http.StatusOK, w.Code)
	var resp cartBody
	decodeData(t, body, &resp)
	assert.Empty(t, resp.Items)
}

func TestGetPickupSlots(t *testing.T) {
	env := newTestEnv(t)

	w, body := env.do(t, http.MethodGet, "/api/v1/cart/pickup-slots", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var slots []cart.SlotAvailability
	decodeData(t, body, &slots)
	require.Len(t, slots, 9)
	assert.Equal(t, "10-0", slots[0].Key)
	assert.Equal(t, "10:00 AM", slots[0].Label)
	assert.Equal(t, "2:00 PM", slots[8].Label)
}

func TestCheckout(t *testing.T) {
	env := newTestEnv(t)

	// An empty body on an empty cart
	w, body := env.do(t, http.MethodPost, "/api/v1/cart/checkout", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, cart.ErrEmptyCart.Error(), body.Error)

	_, session := addGinaling(t, env, 2)

	w, _ = env.do(t, http.MethodPost, "/api/v1/cart/checkout", cart.CheckoutRequest{PickupOption: "tomorrow"}, withSession(session))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = env.do(t, http.MethodPost, "/api/v1/cart/checkout", cart.CheckoutRequest{PickupOption: cart.PickupNow}, withSession(session))
	require.Equal(t, http.StatusCreated, w.Code, body.Error)

	var result struct {
		Checkout        cart.CheckoutResult `json:"checkout"`
		SubtotalDisplay string              `json:"subtotal_display"`
	}
	decodeData(t, body, &result)
	assert.NotEmpty(t, result.Checkout.CheckoutID)
	assert.Equal(t, cart.PickupNow, result.Checkout.Pickup.Option)
	assert.Equal(t, "₱150", result.SubtotalDisplay)
	assert.Equal(t, 1, env.publisher.count())

	w, body = env.do(t, http.MethodGet, "/api/v1/cart/count", nil, withSession(session))
	require.Equal(t, http.StatusOK, w.Code)
	var count struct {
		Count int `json:"count"`
	}
	decodeData(t, body, &count)
	assert.Zero(t, count.Count)
}

func TestMergeCart(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "student-42")

	w, _ := env.do(t, http.MethodPost, "/api/v1/cart/merge", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Account cart already holds the same configuration
	addGinaling(t, env, 1, withToken(token))
	_, session := addGinaling(t, env, 2)

	w, body := env.do(t, http.MethodPost, "/api/v1/cart/merge", nil, withToken(token), withSession(session))
	require.Equal(t, http.StatusOK, w.Code, body.Error)
	var merged cartBody
	decodeData(t, body, &merged)
	require.Len(t, merged.Items, 1)
	assert.Equal(t, 3, merged.Items[0].Quantity)
	assert.Equal(t, "user:student-42", merged.Owner)

	w, body = env.do(t, http.MethodGet, "/api/v1/cart", nil, withSession(session))
	require.Equal(t, http.StatusOK, w.Code)
	var guest cartBody
	decodeData(t, body, &guest)
	assert.Empty(t, guest.Items)
}
