package types

import "github.com/golang-jwt/jwt/v5"

// LoginRequest represents the expected JSON body for user login.
type LoginRequest struct {
	Nickname string `json:"nickname" example:"johndoe"`
	Password string `json:"password" example:"password123"`
}

// LoginResponse represents the successful JSON response after login.
type LoginResponse struct {
	Token string `json:"token" example:"eyJhbGciOiJI..."`
}

// Claims represents the custom claims included in the JWT access token.
type Claims struct {
	UserID   string `json:"userId"`
	Nickname string `json:"nickname"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}
