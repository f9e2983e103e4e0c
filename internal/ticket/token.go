// Package ticket mints and verifies the signed tokens carried by tickets
// and renders them as scannable QR codes.  Verification needs no storage.
package ticket

import (
    "errors"
    "fmt"
    "time"

    "github.com/golang-jwt/jwt/v5"
)

var (
    ErrInvalidToken = errors.New("invalid ticket token")
    ErrExpiredToken = errors.New("ticket token expired")
)

// Payload is the content bound into a ticket token.  Times carry
// millisecond precision.
type Payload struct {
    TicketID  string
    ShowID    string
    StudentID string
    BookingID string
    IssuedAt  time.Time
    ExpiresAt time.Time
}

// Claims is the JWT claim set of a ticket token.  The registered exp/iat
// claims are second-granular and informational; expiry is decided on
// ExpiresAtMs.
type Claims struct {
    TicketID    string `json:"tid"`
    ShowID      string `json:"show"`
    StudentID   string `json:"stu"`
    BookingID   string `json:"bkg"`
    IssuedAtMs  int64  `json:"iat_ms"`
    ExpiresAtMs int64  `json:"exp_ms"`
    jwt.RegisteredClaims
}

const issuer = "auditorium-tickets"

// Signer signs and verifies ticket tokens with HS256.
type Signer struct {
    keys KeyProvider
}

func NewSigner(keys KeyProvider) *Signer {
    return &Signer{keys: keys}
}

// Sign returns the compact JWT for p.  It fails with ErrNoSigningKey when
// the key provider has no key.
func (s *Signer) Sign(p Payload) (string, error) {
    key, err := s.keys.SigningKey()
    if err != nil {
        return "", err
    }
    claims := Claims{
        TicketID:    p.TicketID,
        ShowID:      p.ShowID,
        StudentID:   p.StudentID,
        BookingID:   p.BookingID,
        IssuedAtMs:  p.IssuedAt.UnixMilli(),
        ExpiresAtMs: p.ExpiresAt.UnixMilli(),
        RegisteredClaims: jwt.RegisteredClaims{
            Issuer:    issuer,
            ID:        p.TicketID,
            IssuedAt:  jwt.NewNumericDate(p.IssuedAt),
            ExpiresAt: jwt.NewNumericDate(p.ExpiresAt),
        },
    }
    token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := token.SignedString(key)
    if err != nil {
        return "", fmt.Errorf("sign ticket token: %w", err)
    }
    return signed, nil
}

// Verify checks the signature of raw and its expiry against now.  A token
// checked at exactly its expiry instant is still valid.  Tampered, foreign
// or malformed tokens yield ErrInvalidToken.
func (s *Signer) Verify(raw string, now time.Time) (Payload, error) {
    key, err := s.keys.SigningKey()
    if err != nil {
        return Payload{}, err
    }
    parser := jwt.NewParser(
        jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
        jwt.WithoutClaimsValidation(),
    )
    var claims Claims
    token, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return key, nil
    })
    if err != nil || !token.Valid {
        return Payload{}, ErrInvalidToken
    }
    if claims.TicketID == "" || claims.BookingID == "" || claims.ExpiresAtMs == 0 {
        return Payload{}, ErrInvalidToken
    }
    if now.UnixMilli() > claims.ExpiresAtMs {
        return Payload{}, ErrExpiredToken
    }
    return Payload{
        TicketID:  claims.TicketID,
        ShowID:    claims.ShowID,
        StudentID: claims.StudentID,
        BookingID: claims.BookingID,
        IssuedAt:  time.UnixMilli(claims.IssuedAtMs).UTC(),
        ExpiresAt: time.UnixMilli(claims.ExpiresAtMs).UTC(),
    }, nil
}
