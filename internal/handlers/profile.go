package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pcshop-storefront/internal/apperr"
	"pcshop-storefront/internal/logger"
	"pcshop-storefront/internal/middleware"
	"pcshop-storefront/internal/models"
)

// ProfileStore fetches the signed-in user's account details.
type ProfileStore interface {
	GetProfile(ctx context.Context, token string) (models.Profile, error)
}

type ProfileHandler struct {
	store ProfileStore
}

func NewProfileHandler(store ProfileStore) *ProfileHandler {
	return &ProfileHandler{store: store}
}

// GetProfile returns the account details. It fails open like the other
// reads: anonymous visitors and failed fetches get 200 with an empty
// profile and a notice.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	s, ok := middleware.GetManager(c).Current()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"profile": models.Profile{}, "notice": apperr.Notice(apperr.AuthRequiredErr(""))})
		return
	}

	profile, err := h.store.GetProfile(c.Request.Context(), s.Token)
	if err != nil {
		logger.FromGin(c).Warn("Failed to fetch profile", zap.String("user_id", s.UserID), zap.Error(err))
		_ = c.Error(err)
		c.JSON(http.StatusOK, gin.H{"profile": models.Profile{}, "notice": apperr.Notice(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}
