package middleware // middleware provides shared request processing for handlers

import (
    "net/http"
    "strings"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/auditorium-seat-reservation/internal/model"
)

// IdentityClaims is the claim set issued by the identity provider.  The
// subject is the caller ID.
type IdentityClaims struct {
    Role   string `json:"role"`
    Gender string `json:"gender,omitempty"`
    jwt.RegisteredClaims
}

// JWTAuth returns an Echo middleware that validates an HS256 bearer token
// from the identity provider and stores the caller under the context keys
// "user_id", "role" and "gender".  Tokens without a subject or with an
// unknown role are rejected with 401.
func JWTAuth(secret string) echo.MiddlewareFunc {
    parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            var claims IdentityClaims
            tok, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            })
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            role := model.Role(strings.ToUpper(claims.Role))
            switch role {
            case model.RoleStudent, model.RoleStaff, model.RoleAdmin:
            default:
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }
            if claims.Subject == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }
            gender, _ := model.ParseGender(claims.Gender)

            setCaller(c, model.Caller{ID: claims.Subject, Role: role, Gender: gender})
            return next(c)
        }
    }
}
