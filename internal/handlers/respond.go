package handlers

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"pcshop-storefront/internal/apperr"
)

// respondError writes err as {"error", "redirect"?} with the status its
// kind maps to. A request abandoned by the browser gets no body.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	if errors.Is(err, context.Canceled) {
		c.Abort()
		return
	}
	body := gin.H{"error": apperr.Notice(err)}
	if redirect := apperr.Redirect(err); redirect != "" {
		body["redirect"] = redirect
	}
	c.JSON(apperr.HTTPStatus(err), body)
}

func badRequest(c *gin.Context, msg string) {
	respondError(c, apperr.InvalidErr(msg))
}
