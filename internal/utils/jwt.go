package utils // token creation helpers shared by the auth handlers

import (
    "time" // expiry computation

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AccessToken is a signed HS256 JWT plus its expiry.  The token string
// travels in the Authorization header on protected endpoints; Exp lets
// the login response tell the client when to re-authenticate.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for a user.  The claims
// are the standard minimum: subject (sub) carries the user id, role the
// authorization role, exp and iat the validity window.  ttlMin is the
// token lifetime in minutes.
func NewAccessToken(secret string, userID uint64, role string, ttlMin int) (AccessToken, error) {
    now := time.Now().UTC()
    exp := now.Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub":  userID,
        "role": role,
        "exp":  exp.Unix(),
        "iat":  now.Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}
