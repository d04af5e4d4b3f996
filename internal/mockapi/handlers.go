package mockapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pcshop-storefront/internal/models"
)

func (s *Server) listProducts(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	products := make([]models.Product, 0, len(s.productOrder))
	for _, id := range s.productOrder {
		if p := s.products[id]; p.IsActive {
			products = append(products, *p)
		}
	}
	c.JSON(http.StatusOK, products)
}

func (s *Server) getProduct(c *gin.Context) {
	s.mu.Lock()
	p, ok := s.products[c.Param("id")]
	var product models.Product
	if ok {
		product = *p
	}
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (s *Server) getCart(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.carts[c.GetString(userIDKey)]
	cart := models.Cart{Items: make([]models.CartLine, 0, len(entries))}
	for _, e := range entries {
		p, ok := s.products[e.productID]
		if !ok {
			continue
		}
		cart.Items = append(cart.Items, models.CartLine{Product: *p, Quantity: e.quantity})
	}
	c.JSON(http.StatusOK, cart)
}

func (s *Server) addToCart(c *gin.Context) {
	var req models.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Product ID and a positive quantity are required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[req.ProductID]
	if !ok || !p.IsActive {
		c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
		return
	}

	userID := c.GetString(userIDKey)
	entries := s.carts[userID]
	for i := range entries {
		if entries[i].productID == req.ProductID {
			entries[i].quantity += req.Quantity
			c.JSON(http.StatusOK, gin.H{"message": "Product added to cart"})
			return
		}
	}
	s.carts[userID] = append(entries, cartEntry{productID: req.ProductID, quantity: req.Quantity})
	c.JSON(http.StatusOK, gin.H{"message": "Product added to cart"})
}

func (s *Server) createFromCart(c *gin.Context) {
	var req models.CreateFromCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid order request"})
		return
	}
	userID := c.GetString(userIDKey)

	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.placeOrderLocked(c, userID, req.SelectedItems, req.ShippingInfo, req.InvoiceMethod)
	if !ok {
		return
	}

	// Ordered lines leave the cart.
	ordered := make(map[string]bool, len(req.SelectedItems))
	for _, l := range req.SelectedItems {
		ordered[l.ProductID] = true
	}
	remaining := s.carts[userID][:0]
	for _, e := range s.carts[userID] {
		if !ordered[e.productID] {
			remaining = append(remaining, e)
		}
	}
	s.carts[userID] = remaining

	c.JSON(http.StatusCreated, models.CreateOrderResponse{OrderID: id})
}

func (s *Server) createImmediate(c *gin.Context) {
	var req models.CreateImmediateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid order request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.placeOrderLocked(c, c.GetString(userIDKey), req.OrderItems, req.ShippingInfo, req.InvoiceMethod)
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, models.CreateOrderResponse{OrderID: id})
}

// placeOrderLocked prices the lines from the stored catalog and records the
// order. It writes the error response itself and reports false on failure.
func (s *Server) placeOrderLocked(c *gin.Context, userID string, lines []models.OrderLine, shipping models.ShippingInfo, method models.InvoiceMethod) (string, bool) {
	if len(lines) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No items to order"})
		return "", false
	}
	if method == "" {
		method = models.InvoiceCreditCard
	}
	if !method.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid invoice method"})
		return "", false
	}

	total := s.cfg.ShippingFee.Decimal
	items := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		p, ok := s.products[l.ProductID]
		if !ok || !p.IsActive {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Product " + l.ProductID + " is not available"})
			return "", false
		}
		if l.Quantity < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Quantity must be at least 1"})
			return "", false
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		items = append(items, models.OrderItem{Product: *p, Quantity: l.Quantity})
	}

	order := models.Order{
		ID:            uuid.NewString(),
		Items:         items,
		ShippingInfo:  shipping,
		InvoiceMethod: method,
		TotalAmount:   total,
		Status:        models.OrderStatusPending,
		OrderDate:     s.now().UTC(),
	}
	s.orders[userID] = append(s.orders[userID], order)
	return order.ID, true
}

func (s *Server) listOrders(c *gin.Context) {
	status, err := models.ParseOrderStatus(c.Query("status"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status"})
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 5
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Newest first.
	all := s.orders[c.GetString(userIDKey)]
	var matching []models.Order
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].Status == status {
			matching = append(matching, all[i])
		}
	}

	totalPages := (len(matching) + limit - 1) / limit
	if totalPages == 0 {
		totalPages = 1
	}
	start := (page - 1) * limit
	if start > len(matching) {
		start = len(matching)
	}
	end := start + limit
	if end > len(matching) {
		end = len(matching)
	}

	c.JSON(http.StatusOK, models.OrderListResponse{
		Orders:     append([]models.Order{}, matching[start:end]...),
		TotalPages: totalPages,
	})
}

func (s *Server) details(c *gin.Context) {
	s.mu.Lock()
	a := s.accounts[c.GetString(userIDKey)]
	profile := models.Profile{Name: a.Name, Address: a.Address, Email: a.Email}
	s.mu.Unlock()
	c.JSON(http.StatusOK, profile)
}

func (s *Server) adminListProducts(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	products := make([]models.Product, 0, len(s.productOrder))
	for _, id := range s.productOrder {
		products = append(products, *s.products[id])
	}
	c.JSON(http.StatusOK, products)
}

func (s *Server) archiveProduct(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
		return
	}
	p.IsActive = !p.IsActive
	c.JSON(http.StatusOK, gin.H{"message": "Product status updated", "isActive": p.IsActive})
}

func (s *Server) listUsers(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]models.User, 0, len(s.accounts))
	for _, a := range s.accounts {
		users = append(users, a.User)
	}
	sortUsers(users)
	c.JSON(http.StatusOK, users)
}

func (s *Server) setAdmin(c *gin.Context) {
	var req models.SetAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "isAdmin is required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	a.IsAdmin = req.IsAdmin
	c.JSON(http.StatusOK, gin.H{"message": "User role updated"})
}
