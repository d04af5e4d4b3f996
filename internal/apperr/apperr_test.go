package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"auth required", AuthRequiredErr(""), http.StatusUnauthorized},
		{"forbidden", ForbiddenErr("Admin access required"), http.StatusForbidden},
		{"invalid", InvalidErr("Please select items to proceed."), http.StatusBadRequest},
		{"price changed", PriceChangedErr("prices changed"), http.StatusConflict},
		{"rejected 4xx passes through", RejectedErr(http.StatusNotFound, "Product not found"), http.StatusNotFound},
		{"rejected 5xx becomes bad gateway", RejectedErr(http.StatusInternalServerError, "boom"), http.StatusBadGateway},
		{"network", NetworkErr(errors.New("dial tcp: refused")), http.StatusBadGateway},
		{"decode", DecodeErr("bad body", errors.New("eof")), http.StatusBadGateway},
		{"wrapped", fmt.Errorf("loading cart: %w", AuthRequiredErr("")), http.StatusUnauthorized},
		{"foreign", errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestNotice(t *testing.T) {
	assert.Equal(t, "Insufficient stock", Notice(RejectedErr(400, "Insufficient stock")))
	assert.Equal(t, genericNotice, Notice(NetworkErr(errors.New("timeout"))))
	assert.Equal(t, loginNotice, Notice(AuthRequiredErr("")))
	assert.Equal(t, "Invalid email or password", Notice(AuthRequiredErr("Invalid email or password")))
	assert.Equal(t, genericNotice, Notice(errors.New("plain")))
}

func TestIsAndKindOf(t *testing.T) {
	err := fmt.Errorf("submit: %w", InvalidErr("No items to checkout"))

	assert.True(t, Is(err, Invalid))
	assert.False(t, Is(err, AuthRequired))
	assert.Equal(t, Invalid, KindOf(err))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}

func TestRedirect(t *testing.T) {
	assert.Equal(t, "/login", Redirect(AuthRequiredErr("")))
	assert.Equal(t, "/", Redirect(ForbiddenErr("")))
	assert.Empty(t, Redirect(InvalidErr("x")))
}

func TestErrorString(t *testing.T) {
	inner := errors.New("connection reset")
	err := NetworkErr(inner)

	assert.Contains(t, err.Error(), "network_failure")
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "service_rejected: Out of stock", RejectedErr(400, "Out of stock").Error())
}
