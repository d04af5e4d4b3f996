package catalog

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcshop-storefront/internal/apiclient"
	"pcshop-storefront/internal/apperr"
	"pcshop-storefront/internal/events"
	"pcshop-storefront/internal/mockapi"
	"pcshop-storefront/internal/models"
	"pcshop-storefront/internal/session"
)

func newCatalog(t *testing.T) (*mockapi.Server, *Catalog, *events.LocalBus, session.Source) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	api, srv := mockapi.NewHTTPTest(mockapi.Config{})
	t.Cleanup(srv.Close)
	require.NoError(t, api.Seed())

	client := apiclient.New(srv.URL)
	token, err := client.Login(context.Background(), mockapi.DemoCustomerEmail, mockapi.DemoPassword)
	require.NoError(t, err)
	s, err := session.Decode(token, time.Now())
	require.NoError(t, err)

	bus := events.NewLocalBus(nil)
	t.Cleanup(func() { _ = bus.Close() })
	return api, New(client, bus, nil), bus, session.Static{Session: s, OK: true}
}

func TestListAndGet(t *testing.T) {
	_, c, _, _ := newCatalog(t)
	ctx := context.Background()

	products, err := c.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 4)

	p, err := c.GetProduct(ctx, "gpu-4070")
	require.NoError(t, err)
	assert.Equal(t, "GeForce RTX 4070", p.Name)

	_, err = c.GetProduct(ctx, "missing")
	assert.Equal(t, http.StatusNotFound, apperr.HTTPStatus(err))
}

func TestSearch(t *testing.T) {
	_, c, _, _ := newCatalog(t)
	ctx := context.Background()

	got, err := c.Search(ctx, "  ddr5 ")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ram-32", got[0].ID)

	got, err = c.Search(ctx, "gpu")
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = c.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, got, 4)

	got, err = c.Search(ctx, "no such thing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNormalizeQuery(t *testing.T) {
	long := strings.Repeat("é", MaxSearchLength+5)
	assert.Equal(t, MaxSearchLength, len([]rune(NormalizeQuery(long))))
	assert.Equal(t, "ssd", NormalizeQuery(" ssd "))
}

func TestAddToCartPublishes(t *testing.T) {
	api, c, bus, src := newCatalog(t)
	ctx := context.Background()

	ch, cancel, err := bus.Subscribe(ctx)
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, c.AddToCart(ctx, src, "ssd-2tb", 2))

	select {
	case ev := <-ch:
		s, _ := src.Current()
		assert.Equal(t, s.UserID, ev.UserID)
	case <-time.After(time.Second):
		t.Fatal("no cart event")
	}
	assert.Len(t, api.RequestsTo(http.MethodPost, "/carts/add"), 1)
}

func TestAddToCartRequiresSession(t *testing.T) {
	api, c, _, _ := newCatalog(t)
	err := c.AddToCart(context.Background(), session.Static{}, "ssd-2tb", 1)
	assert.True(t, apperr.Is(err, apperr.AuthRequired))
	assert.Empty(t, api.RequestsTo(http.MethodPost, "/carts/add"))
}

func TestAddToCartFailureDoesNotPublish(t *testing.T) {
	api, c, bus, src := newCatalog(t)
	ch, cancel, err := bus.Subscribe(context.Background())
	require.NoError(t, err)
	defer cancel()

	api.FailNext(http.MethodPost, "/carts/add", http.StatusBadRequest, "Product is out of stock")
	err = c.AddToCart(context.Background(), src, "ssd-2tb", 1)
	assert.Equal(t, "Product is out of stock", apperr.Notice(err))

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBuyNow(t *testing.T) {
	_, c, _, src := newCatalog(t)
	p := models.Product{ID: "cpu-r7", Name: "Ryzen 7 7700X"}

	_, err := c.BuyNow(session.Static{}, p, 1)
	assert.True(t, apperr.Is(err, apperr.AuthRequired))

	draft, err := c.BuyNow(src, p, 3)
	require.NoError(t, err)
	assert.Equal(t, models.OrderSourceImmediate, draft.Source)
	require.Len(t, draft.Lines, 1)
	assert.Equal(t, 3, draft.Lines[0].Quantity)
}

func TestQuantitySelectorNeverBelowOne(t *testing.T) {
	q := NewQuantitySelector()
	for i := 0; i < 10; i++ {
		q.Decrement()
	}
	assert.Equal(t, 1, q.Value())

	q.Increment()
	q.Increment()
	assert.Equal(t, 3, q.Value())

	assert.False(t, q.SetText("abc"))
	assert.Equal(t, 3, q.Value())

	assert.True(t, q.SetText("-7"))
	assert.Equal(t, 1, q.Value())

	assert.True(t, q.SetText("12"))
	assert.Equal(t, 12, q.Value())

	assert.True(t, q.SetText(""))
	assert.Equal(t, 1, q.Value())

	q.Set(0)
	assert.Equal(t, 1, q.Value())

	var zero QuantitySelector
	assert.Equal(t, 1, zero.Value())
}
