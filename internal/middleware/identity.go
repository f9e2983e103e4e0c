package middleware

// identity.go holds the context keys written by JWTAuth and the helpers
// that read them back.

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/auditorium-seat-reservation/internal/model"
)

const (
    keyUserID = "user_id"
    keyRole   = "role"
    keyGender = "gender"
)

// CallerFrom returns the authenticated caller stored by JWTAuth.  ok is
// false when the request is unauthenticated.
func CallerFrom(c echo.Context) (model.Caller, bool) {
    id, _ := c.Get(keyUserID).(string)
    role, _ := c.Get(keyRole).(string)
    if id == "" || role == "" {
        return model.Caller{}, false
    }
    gender, _ := c.Get(keyGender).(string)
    return model.Caller{ID: id, Role: model.Role(role), Gender: model.Gender(gender)}, true
}

// setCaller stores caller under the identity keys read by CallerFrom.
func setCaller(c echo.Context, caller model.Caller) {
    c.Set(keyUserID, caller.ID)
    c.Set(keyRole, string(caller.Role))
    c.Set(keyGender, string(caller.Gender))
}

// userID identifies the caller for rate limiting; unauthenticated callers
// share the "anon" bucket key.
func userID(c echo.Context) string {
    if caller, ok := CallerFrom(c); ok {
        return caller.ID
    }
    return "anon"
}
