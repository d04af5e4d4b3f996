package models

// User is an account as listed by the admin user screen
type User struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	IsAdmin bool   `json:"isAdmin"`
}

// Profile is the subset of the account used to pre-fill shipping
type Profile struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Email   string `json:"email"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SetAdminRequest struct {
	IsAdmin bool `json:"isAdmin"`
}
