package utils // package utils provides helper functions for minting identity tokens

import (
    "errors"
    "time" // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens

    "github.com/iliyamo/auditorium-seat-reservation/internal/model"
)

// AccessToken represents a signed identity JWT along with its expiry.
// Tokens are sent in the Authorization header when calling protected
// endpoints.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 identity JWT for a caller, in the
// shape the API's JWTAuth middleware expects: sub is the caller ID, role and
// gender are custom claims, exp and iat are standard.  Production tokens come
// from the identity provider; this is used by development tooling and tests.
func NewAccessToken(secret string, caller model.Caller, ttl time.Duration) (AccessToken, error) {
    if caller.ID == "" {
        return AccessToken{}, errors.New("caller id is required")
    }
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := jwt.MapClaims{
        "sub":  caller.ID,
        "role": string(caller.Role),
        "exp":  exp.Unix(),
        "iat":  now.Unix(),
    }
    // gender is only meaningful for students
    if caller.Gender != "" {
        claims["gender"] = string(caller.Gender)
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}
