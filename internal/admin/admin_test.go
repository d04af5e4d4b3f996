package admin

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcshop-storefront/internal/apiclient"
	"pcshop-storefront/internal/apperr"
	"pcshop-storefront/internal/mockapi"
	"pcshop-storefront/internal/models"
	"pcshop-storefront/internal/session"
)

func sessionFor(t *testing.T, client *apiclient.Client, email string) session.Static {
	t.Helper()
	token, err := client.Login(context.Background(), email, mockapi.DemoPassword)
	require.NoError(t, err)
	s, err := session.Decode(token, time.Now())
	require.NoError(t, err)
	return session.Static{Session: s, OK: true}
}

func newConsole(t *testing.T) (*mockapi.Server, *apiclient.Client, *Console) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	api, srv := mockapi.NewHTTPTest(mockapi.Config{})
	t.Cleanup(srv.Close)
	require.NoError(t, api.Seed())
	client := apiclient.New(srv.URL)
	return api, client, NewConsole(client, sessionFor(t, client, mockapi.DemoAdminEmail), nil)
}

func findProduct(products []models.Product, id string) models.Product {
	for _, p := range products {
		if p.ID == id {
			return p
		}
	}
	return models.Product{}
}

func TestToggleProductTwiceRestoresState(t *testing.T) {
	api, _, c := newConsole(t)
	ctx := context.Background()

	_, err := c.LoadProducts(ctx)
	require.NoError(t, err)
	original := findProduct(c.Products(), "cpu-r7").IsActive

	p, err := c.ToggleProductActive(ctx, "cpu-r7")
	require.NoError(t, err)
	assert.Equal(t, !original, p.IsActive)
	assert.Equal(t, !original, findProduct(c.Products(), "cpu-r7").IsActive)

	_, err = c.ToggleProductActive(ctx, "cpu-r7")
	require.NoError(t, err)
	assert.Equal(t, original, findProduct(c.Products(), "cpu-r7").IsActive)

	stored, _ := api.Product("cpu-r7")
	assert.Equal(t, original, stored.IsActive)
}

func TestToggleProductFailureRollsBack(t *testing.T) {
	api, _, c := newConsole(t)
	ctx := context.Background()
	_, err := c.LoadProducts(ctx)
	require.NoError(t, err)

	api.FailNext(http.MethodPut, "/products/ram-32/archive", http.StatusInternalServerError, "write failed")
	_, err = c.ToggleProductActive(ctx, "ram-32")
	require.Error(t, err)
	assert.True(t, findProduct(c.Products(), "ram-32").IsActive)

	stored, _ := api.Product("ram-32")
	assert.True(t, stored.IsActive)
}

func TestToggleUserAdmin(t *testing.T) {
	api, _, c := newConsole(t)
	ctx := context.Background()
	users, err := c.LoadUsers(ctx)
	require.NoError(t, err)

	var customer models.User
	for _, u := range users {
		if u.Email == mockapi.DemoCustomerEmail {
			customer = u
		}
	}
	require.NotEmpty(t, customer.ID)

	u, err := c.ToggleUserAdmin(ctx, customer.ID)
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)
	stored, _ := api.User(customer.ID)
	assert.True(t, stored.IsAdmin)

	api.FailNext(http.MethodPut, "/"+customer.ID+"/setAsAdmin", http.StatusBadRequest, "Cannot change role")
	_, err = c.ToggleUserAdmin(ctx, customer.ID)
	assert.Equal(t, "Cannot change role", apperr.Notice(err))
	for _, u := range c.Users() {
		if u.ID == customer.ID {
			assert.True(t, u.IsAdmin)
		}
	}
}

func TestUnknownIDs(t *testing.T) {
	_, _, c := newConsole(t)
	_, err := c.ToggleProductActive(context.Background(), "nope")
	assert.True(t, apperr.Is(err, apperr.Invalid))
	_, err = c.ToggleUserAdmin(context.Background(), "nope")
	assert.True(t, apperr.Is(err, apperr.Invalid))
}

func TestGate(t *testing.T) {
	api, client, _ := newConsole(t)
	api.ResetRequests()

	_, err := NewConsole(client, session.Static{}, nil).LoadProducts(context.Background())
	assert.True(t, apperr.Is(err, apperr.AuthRequired))

	customer := NewConsole(client, sessionFor(t, client, mockapi.DemoCustomerEmail), nil)
	api.ResetRequests()
	_, err = customer.LoadUsers(context.Background())
	assert.True(t, apperr.Is(err, apperr.Forbidden))
	assert.Equal(t, "/", apperr.Redirect(err))
	assert.Empty(t, api.Requests())
}
