package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pcshop-storefront/internal/middleware"
	"pcshop-storefront/internal/models"
	"pcshop-storefront/internal/session"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

type sessionResponse struct {
	Authenticated bool             `json:"authenticated"`
	Capability    string           `json:"capability"`
	User          *session.Session `json:"user,omitempty"`
}

func newSessionResponse(s session.Session, ok bool) sessionResponse {
	if !ok {
		return sessionResponse{Capability: session.AnonymousView.String()}
	}
	return sessionResponse{Authenticated: true, Capability: s.Capability().String(), User: &s}
}

// Login exchanges credentials for a token kept in the session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Email and password are required")
		return
	}

	s, err := middleware.GetManager(c).Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(s, true))
}

// Register creates an account. The visitor logs in separately.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Email and password are required")
		return
	}

	if err := middleware.GetManager(c).Register(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Registration successful. Please log in.", "redirect": "/login"})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := middleware.GetManager(c).Logout(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Session reports who is signed in, if anyone.
func (h *AuthHandler) Session(c *gin.Context) {
	s, ok := middleware.GetManager(c).Current()
	c.JSON(http.StatusOK, newSessionResponse(s, ok))
}
