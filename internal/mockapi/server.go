// Package mockapi is an in-memory stand-in for the PC SHOP store service.
// It speaks the same REST contract, so the storefront can be run and tested
// without the real backend.
package mockapi

import (
	"bytes"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pcshop-storefront/internal/logger"
	"pcshop-storefront/internal/models"
)

// Config holds the fake service settings.
type Config struct {
	JWTSecret   string
	TokenTTL    time.Duration
	ShippingFee decimal.NullDecimal
	Logger      *zap.Logger
}

// RecordedRequest is one request as received by the fake service.
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   []byte
	Authed bool
}

type account struct {
	models.User
	passwordHash []byte
}

type cartEntry struct {
	productID string
	quantity  int
}

type failure struct {
	status  int
	message string
}

// Server holds all state in memory behind one mutex.
type Server struct {
	cfg    Config
	engine *gin.Engine
	now    func() time.Time

	mu           sync.Mutex
	products     map[string]*models.Product
	productOrder []string
	accounts     map[string]*account
	byEmail      map[string]string
	carts        map[string][]cartEntry
	orders       map[string][]models.Order
	failures     map[string]failure
	requests     []RecordedRequest
}

// New builds a fake service with no data.
func New(cfg Config) *Server {
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "mockapi-secret"
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	if !cfg.ShippingFee.Valid {
		cfg.ShippingFee = decimal.NewNullDecimal(decimal.NewFromInt(40))
	}
	cfg.Logger = logger.OrNop(cfg.Logger)

	s := &Server{
		cfg:      cfg,
		now:      time.Now,
		products: make(map[string]*models.Product),
		accounts: make(map[string]*account),
		byEmail:  make(map[string]string),
		carts:    make(map[string][]cartEntry),
		orders:   make(map[string][]models.Order),
		failures: make(map[string]failure),
	}
	s.engine = s.routes()
	return s
}

// Handler returns the gin engine serving the REST contract.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(logger.Recovery(s.cfg.Logger))
	r.Use(s.record())
	r.Use(s.injectFailures())

	r.POST("/login", s.login)
	r.POST("/register", s.register)

	r.GET("/products", s.listProducts)
	r.GET("/products/:id", s.getProduct)

	protected := r.Group("")
	protected.Use(s.requireAuth())
	{
		protected.GET("/carts", s.getCart)
		protected.POST("/carts/add", s.addToCart)

		protected.POST("/orders/create-from-cart", s.createFromCart)
		protected.POST("/orders/create-immediate", s.createImmediate)
		protected.GET("/orders", s.listOrders)

		protected.GET("/details", s.details)

		admin := protected.Group("")
		admin.Use(s.requireAdmin())
		{
			admin.GET("/products/admin", s.adminListProducts)
			admin.PUT("/products/:id/archive", s.archiveProduct)
			admin.GET("/users/list", s.listUsers)
			admin.PUT("/:id/setAsAdmin", s.setAdmin)
		}
	}

	return r
}

// record keeps a copy of every request for assertions.
func (s *Server) record() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}
		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method: c.Request.Method,
			Path:   c.Request.URL.Path,
			Query:  c.Request.URL.RawQuery,
			Body:   body,
			Authed: c.GetHeader("Authorization") != "",
		})
		s.mu.Unlock()
		c.Next()
	}
}

func (s *Server) injectFailures() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Request.Method + " " + c.Request.URL.Path
		s.mu.Lock()
		f, ok := s.failures[key]
		if ok {
			delete(s.failures, key)
		}
		s.mu.Unlock()
		if ok {
			c.AbortWithStatusJSON(f.status, gin.H{"message": f.message})
			return
		}
		c.Next()
	}
}

// FailNext makes the next request matching method and path answer with
// status and {"message": message}.
func (s *Server) FailNext(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, message: message}
}

// Requests returns every request received so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestsTo returns the requests received for method and path.
func (s *Server) RequestsTo(method, path string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// ResetRequests forgets recorded requests.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// AddProduct stores p, replacing any product with the same ID.
func (s *Server) AddProduct(p models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.products[p.ID]; !exists {
		s.productOrder = append(s.productOrder, p.ID)
	}
	cp := p
	s.products[p.ID] = &cp
}

// SetPrice changes a product's price, as an admin would on the real service.
func (s *Server) SetPrice(id string, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[id]; ok {
		p.Price = price
	}
}

// Product returns the stored product.
func (s *Server) Product(id string) (models.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return models.Product{}, false
	}
	return *p, true
}

// User returns the stored account without its password hash.
func (s *Server) User(id string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return models.User{}, false
	}
	return a.User, true
}

// Orders returns the orders placed by a user, oldest first.
func (s *Server) Orders(userID string) []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Order, len(s.orders[userID]))
	copy(out, s.orders[userID])
	return out
}

// CompleteOrder marks an order completed.
func (s *Server) CompleteOrder(userID, orderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders[userID] {
		if s.orders[userID][i].ID == orderID {
			s.orders[userID][i].Status = models.OrderStatusCompleted
			return true
		}
	}
	return false
}

// SetCart replaces a user's cart.
func (s *Server) SetCart(userID string, lines map[string]int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(lines))
	for id := range lines {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	entries := make([]cartEntry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, cartEntry{productID: id, quantity: lines[id]})
	}
	s.carts[userID] = entries
}
