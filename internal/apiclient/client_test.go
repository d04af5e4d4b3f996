package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcshop-storefront/internal/apperr"
	"pcshop-storefront/internal/metrics"
	"pcshop-storefront/internal/mockapi"
	"pcshop-storefront/internal/models"
)

func newFixture(t *testing.T) (*mockapi.Server, *Client) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	api, srv := mockapi.NewHTTPTest(mockapi.Config{})
	t.Cleanup(srv.Close)
	require.NoError(t, api.Seed())
	return api, New(srv.URL)
}

func login(t *testing.T, c *Client, email string) string {
	t.Helper()
	token, err := c.Login(context.Background(), email, mockapi.DemoPassword)
	require.NoError(t, err)
	return token
}

func TestLoginAndRejectedCredentials(t *testing.T) {
	_, c := newFixture(t)
	ctx := context.Background()

	token, err := c.Login(ctx, mockapi.DemoCustomerEmail, mockapi.DemoPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = c.Login(ctx, mockapi.DemoCustomerEmail, "nope")
	require.Error(t, err)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.ServiceRejected, e.Kind)
	assert.Equal(t, http.StatusBadRequest, e.Status)
	assert.Equal(t, "Invalid credentials", e.Message)
}

func TestProtectedCallWithoutTokenMakesNoRequest(t *testing.T) {
	api, c := newFixture(t)

	_, err := c.GetCart(context.Background(), "")
	assert.True(t, apperr.Is(err, apperr.AuthRequired))
	assert.Empty(t, api.RequestsTo(http.MethodGet, "/carts"))
}

func TestUnauthorizedMapsToAuthRequired(t *testing.T) {
	_, c := newFixture(t)
	_, err := c.GetCart(context.Background(), "garbage")
	assert.True(t, apperr.Is(err, apperr.AuthRequired))
}

func TestCreateOrderFromCartBody(t *testing.T) {
	api, c := newFixture(t)
	ctx := context.Background()
	token := login(t, c, mockapi.DemoCustomerEmail)

	require.NoError(t, c.AddToCart(ctx, token, "cpu-r7", 1))

	id, err := c.CreateOrder(ctx, token, models.OrderRequest{
		Source:        models.OrderSourceCart,
		Lines:         []models.OrderLine{{ProductID: "cpu-r7", Quantity: 1}},
		ShippingInfo:  models.ShippingInfo{Name: "A", Address: "B", Email: "c@d", DeliveryLocation: "B"},
		InvoiceMethod: models.InvoiceCreditCard,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	reqs := api.RequestsTo(http.MethodPost, "/orders/create-from-cart")
	require.Len(t, reqs, 1)
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(reqs[0].Body, &body))
	assert.Contains(t, body, "selectedItems")
	assert.NotContains(t, body, "orderItems")
	assert.JSONEq(t, `[{"productId":"cpu-r7","quantity":1}]`, string(body["selectedItems"]))
	assert.JSONEq(t, `"Credit Card"`, string(body["invoiceMethod"]))
}

func TestCreateOrderImmediateBody(t *testing.T) {
	api, c := newFixture(t)
	token := login(t, c, mockapi.DemoCustomerEmail)

	_, err := c.CreateOrder(context.Background(), token, models.OrderRequest{
		Source: models.OrderSourceImmediate,
		Lines:  []models.OrderLine{{ProductID: "gpu-4070", Quantity: 2}},
	})
	require.NoError(t, err)

	reqs := api.RequestsTo(http.MethodPost, "/orders/create-immediate")
	require.Len(t, reqs, 1)
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(reqs[0].Body, &body))
	assert.JSONEq(t, `[{"productId":"gpu-4070","quantity":2}]`, string(body["orderItems"]))
	assert.NotContains(t, body, "selectedItems")
}

func TestCreateOrderUnknownSource(t *testing.T) {
	_, c := newFixture(t)
	_, err := c.CreateOrder(context.Background(), "token", models.OrderRequest{Source: "wishlist"})
	assert.True(t, apperr.Is(err, apperr.Invalid))
}

func TestServiceMessageSurfacedVerbatim(t *testing.T) {
	api, c := newFixture(t)
	token := login(t, c, mockapi.DemoCustomerEmail)
	api.FailNext(http.MethodPost, "/orders/create-immediate", http.StatusConflict, "Out of stock")

	_, err := c.CreateOrder(context.Background(), token, models.OrderRequest{
		Source: models.OrderSourceImmediate,
		Lines:  []models.OrderLine{{ProductID: "cpu-r7", Quantity: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, "Out of stock", apperr.Notice(err))
	assert.Equal(t, http.StatusConflict, apperr.HTTPStatus(err))
}

func TestListOrdersQuery(t *testing.T) {
	api, c := newFixture(t)
	token := login(t, c, mockapi.DemoCustomerEmail)

	resp, err := c.ListOrders(context.Background(), token, models.OrderStatusCompleted, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.TotalPages)

	reqs := api.RequestsTo(http.MethodGet, "/orders")
	require.Len(t, reqs, 1)
	assert.Equal(t, "limit=5&page=2&status=Completed", reqs[0].Query)
}

func TestAdminCalls(t *testing.T) {
	api, c := newFixture(t)
	ctx := context.Background()
	admin := login(t, c, mockapi.DemoAdminEmail)

	products, err := c.AdminListProducts(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, products, 5)

	require.NoError(t, c.ArchiveProduct(ctx, admin, "ssd-2tb"))
	p, _ := api.Product("ssd-2tb")
	assert.False(t, p.IsActive)

	users, err := c.ListUsers(ctx, admin)
	require.NoError(t, err)
	require.Len(t, users, 2)

	var customer models.User
	for _, u := range users {
		if u.Email == mockapi.DemoCustomerEmail {
			customer = u
		}
	}
	require.NoError(t, c.SetAdmin(ctx, admin, customer.ID, true))
	u, _ := api.User(customer.ID)
	assert.True(t, u.IsAdmin)

	customerToken := login(t, c, mockapi.DemoCustomerEmail)
	require.NoError(t, c.SetAdmin(ctx, admin, customer.ID, false))
	_, err = c.ListUsers(ctx, customerToken)
	assert.Equal(t, http.StatusForbidden, apperr.HTTPStatus(err))
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).ListProducts(context.Background())
	assert.True(t, apperr.Is(err, apperr.NetworkFailure))
	assert.Equal(t, "Something went wrong. Please try again later.", apperr.Notice(err))
}

func TestWithTimeoutBoundsSlowService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	c := New(srv.URL, WithTimeout(50*time.Millisecond))
	assert.Equal(t, 50*time.Millisecond, c.Timeout())

	start := time.Now()
	_, err := c.ListProducts(context.Background())
	assert.True(t, apperr.Is(err, apperr.NetworkFailure))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestWithTimeoutIgnoresNonPositive(t *testing.T) {
	assert.Equal(t, 15*time.Second, New("http://localhost", WithTimeout(0)).Timeout())
	assert.Equal(t, 15*time.Second, New("http://localhost", WithTimeout(-time.Second)).Timeout())
}

func TestDecodeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	_, err := New(srv.URL).ListProducts(context.Background())
	assert.True(t, apperr.Is(err, apperr.DecodeFailure))
}

func TestCancelledContext(t *testing.T) {
	_, c := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListProducts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestErrorFieldFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad product id"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).GetProduct(context.Background(), "x")
	assert.Equal(t, "bad product id", apperr.Notice(err))
}

func TestPriceAcceptsNumberOrString(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"_id":"a","price":12.5},{"_id":"b","price":"7.25"}]`))
	}))
	defer srv.Close()

	products, err := New(srv.URL).ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("12.5")))
	assert.True(t, products[1].Price.Equal(decimal.RequireFromString("7.25")))
}

func TestWithMetricsCountsRequests(t *testing.T) {
	api, srv := mockapi.NewHTTPTest(mockapi.Config{})
	defer srv.Close()
	require.NoError(t, api.Seed())

	reg := metrics.New()
	c := New(srv.URL, WithMetrics(reg, 0))
	_, err := c.ListProducts(context.Background())
	require.NoError(t, err)

	families, err := reg.Gatherer().Gather()
	require.NoError(t, err)
	var found bool
	for _, f := range families {
		if f.GetName() == "pcshop_upstream_requests_total" {
			found = true
		}
	}
	assert.True(t, found)
}
