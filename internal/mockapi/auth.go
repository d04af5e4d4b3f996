package mockapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"pcshop-storefront/internal/models"
)

const userIDKey = "user_id"

type tokenClaims struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// AddUser creates an account and returns its ID.
func (s *Server) AddUser(name, address, email, password string, isAdmin bool) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(email)
	if _, exists := s.byEmail[key]; exists {
		return "", errors.New("User already exists")
	}
	id := uuid.NewString()
	s.accounts[id] = &account{
		User:         models.User{ID: id, Name: name, Email: email, Address: address, IsAdmin: isAdmin},
		passwordHash: hash,
	}
	s.byEmail[key] = id
	return id, nil
}

// IssueToken signs a token for an existing user, expiring after ttl.
func (s *Server) IssueToken(userID string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	a, ok := s.accounts[userID]
	s.mu.Unlock()
	if !ok {
		return "", errors.New("user not found")
	}
	now := s.now()
	claims := tokenClaims{
		ID:      a.ID,
		Email:   a.Email,
		IsAdmin: a.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
}

func (s *Server) parseToken(raw string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No token, authorization denied"})
			return
		}
		claims, err := s.parseToken(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token is not valid"})
			return
		}
		s.mu.Lock()
		_, exists := s.accounts[claims.ID]
		s.mu.Unlock()
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token is not valid"})
			return
		}
		c.Set(userIDKey, claims.ID)
		c.Next()
	}
}

// requireAdmin reads the admin flag from the stored account rather than the
// token, so a revoked admin is refused at once.
func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		a, ok := s.accounts[c.GetString(userIDKey)]
		isAdmin := ok && a.IsAdmin
		s.mu.Unlock()
		if !isAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Admin access required"})
			return
		}
		c.Next()
	}
}

func (s *Server) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return
	}

	s.mu.Lock()
	id, ok := s.byEmail[strings.ToLower(req.Email)]
	var hash []byte
	if ok {
		hash = s.accounts[id].passwordHash
	}
	s.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(hash, []byte(req.Password)) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid credentials"})
		return
	}

	token, err := s.IssueToken(id, s.cfg.TokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, models.LoginResponse{Token: token})
}

func (s *Server) register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return
	}
	if _, err := s.AddUser(req.Name, req.Address, req.Email, req.Password, false); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}
