package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the claims carried by an education platform session token.
// Tokens are self-contained: validity is decided by signature and expiry alone.
type Payload struct {
	// StandardClaims carries exp, iat, iss and sub (the user id in decimal).
	jwt.StandardClaims

	// UserID is the numeric identifier of the account.
	UserID int64 `json:"uid"`

	// Role is the account role at issuance time ("admin" or "user").
	Role string `json:"role"`

	Username string `json:"username"`
	Email    string `json:"email"`
}
