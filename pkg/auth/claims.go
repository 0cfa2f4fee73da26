package auth

import (
	"github.com/clubwash/clubwash-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	StaffID uuid.UUID
	Email   string
	Role    enums.StaffRole
	JTI     string
}

// AccessTokenClaims represents the typed JWT issued to staff clients.
type AccessTokenClaims struct {
	StaffID uuid.UUID       `json:"staff_id"`
	Email   string          `json:"email"`
	Role    enums.StaffRole `json:"role"`
	jwt.RegisteredClaims
}
