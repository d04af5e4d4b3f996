package mockapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcshop-storefront/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func seeded(t *testing.T) *Server {
	t.Helper()
	s := New(Config{})
	require.NoError(t, s.Seed())
	return s
}

func loginToken(t *testing.T, s *Server, email string) string {
	t.Helper()
	w := doJSON(t, s.Handler(), http.MethodPost, "/login", "", models.LoginRequest{Email: email, Password: DemoPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func TestLogin(t *testing.T) {
	s := seeded(t)

	assert.NotEmpty(t, loginToken(t, s, DemoCustomerEmail))

	w := doJSON(t, s.Handler(), http.MethodPost, "/login", "", models.LoginRequest{Email: DemoCustomerEmail, Password: "wrong"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	s := seeded(t)
	req := models.RegisterRequest{Name: "A", Email: DemoCustomerEmail, Password: "x"}
	w := doJSON(t, s.Handler(), http.MethodPost, "/register", "", req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "User already exists")
}

func TestPublicProductsHideInactive(t *testing.T) {
	s := seeded(t)
	w := doJSON(t, s.Handler(), http.MethodGet, "/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var products []models.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
	assert.Len(t, products, 4)
	for _, p := range products {
		assert.True(t, p.IsActive)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := seeded(t)
	for _, path := range []string{"/carts", "/details", "/orders"} {
		w := doJSON(t, s.Handler(), http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	s := seeded(t)
	id := s.byEmail[DemoCustomerEmail]
	token, err := s.IssueToken(id, -time.Minute)
	require.NoError(t, err)

	w := doJSON(t, s.Handler(), http.MethodGet, "/carts", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := seeded(t)
	customer := loginToken(t, s, DemoCustomerEmail)
	admin := loginToken(t, s, DemoAdminEmail)

	w := doJSON(t, s.Handler(), http.MethodGet, "/products/admin", customer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, s.Handler(), http.MethodGet, "/products/admin", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var products []models.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
	assert.Len(t, products, 5)
}

func TestCartToOrder(t *testing.T) {
	s := seeded(t)
	token := loginToken(t, s, DemoCustomerEmail)
	h := s.Handler()

	w := doJSON(t, h, http.MethodPost, "/carts/add", token, models.AddToCartRequest{ProductID: "ram-32", Quantity: 2})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, h, http.MethodPost, "/carts/add", token, models.AddToCartRequest{ProductID: "ram-32", Quantity: 1})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, h, http.MethodGet, "/carts", token, nil)
	var cart models.Cart
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)

	w = doJSON(t, h, http.MethodPost, "/orders/create-from-cart", token, models.CreateFromCartRequest{
		SelectedItems: []models.OrderLine{{ProductID: "ram-32", Quantity: 3}},
		InvoiceMethod: models.InvoiceCashOnDelivery,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.CreateOrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.OrderID)

	userID := s.byEmail[DemoCustomerEmail]
	orders := s.Orders(userID)
	require.Len(t, orders, 1)
	assert.True(t, orders[0].TotalAmount.Equal(decimal.RequireFromString("368.50")))

	w = doJSON(t, h, http.MethodGet, "/carts", token, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
	assert.Empty(t, cart.Items)
}

func TestListOrdersPaginates(t *testing.T) {
	s := seeded(t)
	token := loginToken(t, s, DemoCustomerEmail)
	h := s.Handler()

	for i := 0; i < 7; i++ {
		w := doJSON(t, h, http.MethodPost, "/orders/create-immediate", token, models.CreateImmediateRequest{
			OrderItems: []models.OrderLine{{ProductID: "cpu-r7", Quantity: 1}},
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, h, http.MethodGet, "/orders?status=Pending&page=2&limit=5", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp models.OrderListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.TotalPages)
	assert.Len(t, resp.Orders, 2)

	w = doJSON(t, h, http.MethodGet, "/orders?status=Completed&page=1&limit=5", token, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.TotalPages)
	assert.Empty(t, resp.Orders)
}

func TestToggles(t *testing.T) {
	s := seeded(t)
	admin := loginToken(t, s, DemoAdminEmail)
	h := s.Handler()

	w := doJSON(t, h, http.MethodPut, "/products/cpu-r7/archive", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	p, _ := s.Product("cpu-r7")
	assert.False(t, p.IsActive)

	customerID := s.byEmail[DemoCustomerEmail]
	w = doJSON(t, h, http.MethodPut, "/"+customerID+"/setAsAdmin", admin, models.SetAdminRequest{IsAdmin: true})
	require.Equal(t, http.StatusOK, w.Code)
	u, _ := s.User(customerID)
	assert.True(t, u.IsAdmin)
}

func TestFailNextAndRecording(t *testing.T) {
	s := seeded(t)
	s.FailNext(http.MethodGet, "/products", http.StatusServiceUnavailable, "Maintenance")

	w := doJSON(t, s.Handler(), http.MethodGet, "/products", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "Maintenance")

	w = doJSON(t, s.Handler(), http.MethodGet, "/products", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, s.RequestsTo(http.MethodGet, "/products"), 2)
}

func TestZeroShippingFeeChargesSubtotalOnly(t *testing.T) {
	s := New(Config{ShippingFee: decimal.NewNullDecimal(decimal.Zero)})
	require.NoError(t, s.Seed())
	token := loginToken(t, s, DemoCustomerEmail)
	h := s.Handler()

	w := doJSON(t, h, http.MethodPost, "/orders/create-immediate", token, models.CreateImmediateRequest{
		OrderItems: []models.OrderLine{{ProductID: "cpu-r7", Quantity: 1}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, h, http.MethodGet, "/orders?status=Pending&page=1&limit=5", token, nil)
	var resp models.OrderListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Orders, 1)
	assert.Equal(t, "299.99", resp.Orders[0].TotalAmount.StringFixed(2))
}
