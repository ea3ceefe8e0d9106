package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jsephandrade/technomart-mobile-app/internal/config"
	"github.com/jsephandrade/technomart-mobile-app/internal/domain/cart"
	"github.com/jsephandrade/technomart-mobile-app/internal/domain/menu"
	"github.com/jsephandrade/technomart-mobile-app/internal/domain/order"
	"github.com/jsephandrade/technomart-mobile-app/internal/infrastructure/provider/mock"
	"github.com/jsephandrade/technomart-mobile-app/internal/interfaces/http/middleware"
	"github.com/jsephandrade/technomart-mobile-app/internal/pkg/auth"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Details string          `json:"details"`
	Data    json.RawMessage `json:"data"`
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []cart.CheckedOutEvent
}

func (p *recordingPublisher) PublishCartCheckedOut(_ context.Context, event cart.CheckedOutEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type testEnv struct {
	router    *gin.Engine
	cfg       *config.Config
	publisher *recordingPublisher
	viewmodel *order.Viewmodel
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.FromEnv()
	cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
	cfg.JWT.Issuer = "technomart"

	catalog, err := menu.DefaultCatalog()
	require.NoError(t, err)

	schedule, err := cart.NewPickupSchedule(time.UTC, 10*time.Hour, 14*time.Hour, 30*time.Minute)
	require.NoError(t, err)

	publisher := &recordingPublisher{}
	cartService := cart.NewService(cart.NewMemoryStore(time.Hour), schedule, publisher, quietLogger())

	provider, err := mock.NewOrderProvider(mock.Delays{})
	require.NoError(t, err)
	viewmodel := order.NewViewmodel(provider, quietLogger())
	t.Cleanup(viewmodel.Close)

	menuHandler := NewMenuHandler(catalog)
	cartHandler := NewCartHandler(cartService, catalog, cfg)
	orderHandler := NewOrderHandler(viewmodel)

	r := gin.New()
	api := r.Group("/api/v1")

	m := api.Group("/menu")
	m.GET("/items", menuHandler.GetItems)
	m.GET("/items/:id", menuHandler.GetItem)
	m.GET("/search", menuHandler.Search)
	m.GET("/extras", menuHandler.GetExtras)
	m.GET("/addons", menuHandler.GetAddOns)

	c := api.Group("/cart")
	c.Use(middleware.OptionalAuthMiddleware(cfg))
	c.GET("", cartHandler.GetCart)
	c.GET("/count", cartHandler.GetCartCount)
	c.POST("/items", cartHandler.AddToCart)
	c.PUT("/items", cartHandler.UpdateCartItem)
	c.DELETE("/items", cartHandler.RemoveFromCart)
	c.POST("/items/edit", cartHandler.EditCartItem)
	c.DELETE("", cartHandler.ClearCart)
	c.GET("/pickup-slots", cartHandler.GetPickupSlots)
	c.POST("/checkout", cartHandler.Checkout)
	c.POST("/merge", middleware.AuthMiddleware(cfg), cartHandler.MergeCart)

	o := api.Group("/orders")
	o.GET("", orderHandler.GetOrders)
	o.GET("/current", orderHandler.GetCurrentOrder)
	o.GET("/history", orderHandler.GetOrderHistory)
	o.POST("/refresh", orderHandler.RefreshOrders)
	o.POST("/support", orderHandler.ContactSupport)

	return &testEnv{router: r, cfg: cfg, publisher: publisher, viewmodel: viewmodel}
}

type requestOption func(*http.Request)

func withSession(id string) requestOption {
	return func(r *http.Request) { r.Header.Set(SessionHeader, id) }
}

func withToken(token string) requestOption {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, opts ...requestOption) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (e *testEnv) token(t *testing.T, subject string) string {
	t.Helper()
	token, err := auth.NewJWTManager(e.cfg.JWT).GenerateToken(subject, time.Hour)
	require.NoError(t, err)
	return token
}

func decodeData(t *testing.T, env envelope, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dest), string(env.Data))
}
