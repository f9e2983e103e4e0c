package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/auditorium-seat-reservation/internal/config"
    "github.com/iliyamo/auditorium-seat-reservation/internal/model"
    "github.com/iliyamo/auditorium-seat-reservation/internal/utils"
)

const secret = "identity-secret"

func newEcho() *echo.Echo {
    e := echo.New()
    e.GET("/who", func(c echo.Context) error {
        caller, ok := CallerFrom(c)
        if !ok {
            return c.NoContent(http.StatusTeapot)
        }
        return c.JSON(http.StatusOK, echo.Map{"id": caller.ID, "role": caller.Role, "gender": caller.Gender})
    }, JWTAuth(secret))
    e.GET("/staff", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) },
        JWTAuth(secret), RequireRole(model.RoleStaff, model.RoleAdmin))
    return e
}

func call(e *echo.Echo, path, bearer string) *httptest.ResponseRecorder {
    req := httptest.NewRequest(http.MethodGet, path, nil)
    if bearer != "" {
        req.Header.Set("Authorization", "Bearer "+bearer)
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func mint(t *testing.T, caller model.Caller, ttl time.Duration) string {
    t.Helper()
    tok, err := utils.NewAccessToken(secret, caller, ttl)
    require.NoError(t, err)
    return tok.Token
}

func TestJWTAuthStoresCaller(t *testing.T) {
    e := newEcho()
    tok := mint(t, model.Caller{ID: "stu-1", Role: model.RoleStudent, Gender: model.GenderFemale}, time.Hour)

    rec := call(e, "/who", tok)
    require.Equal(t, http.StatusOK, rec.Code)
    assert.JSONEq(t, `{"id":"stu-1","role":"STUDENT","gender":"FEMALE"}`, rec.Body.String())
}

func TestJWTAuthRejects(t *testing.T) {
    e := newEcho()

    foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x", "role": "ADMIN", "exp": time.Now().Add(time.Hour).Unix()})
    foreignTok, err := foreign.SignedString([]byte("someone-else"))
    require.NoError(t, err)

    noRole := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x", "role": "JANITOR", "exp": time.Now().Add(time.Hour).Unix()})
    noRoleTok, err := noRole.SignedString([]byte(secret))
    require.NoError(t, err)

    noSub := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "ADMIN", "exp": time.Now().Add(time.Hour).Unix()})
    noSubTok, err := noSub.SignedString([]byte(secret))
    require.NoError(t, err)

    cases := map[string]string{
        "missing":      "",
        "garbage":      "not-a-jwt",
        "wrong secret": foreignTok,
        "expired":      mint(t, model.Caller{ID: "stu-1", Role: model.RoleStudent}, -time.Minute),
        "unknown role": noRoleTok,
        "no subject":   noSubTok,
    }
    for name, tok := range cases {
        t.Run(name, func(t *testing.T) {
            assert.Equal(t, http.StatusUnauthorized, call(e, "/who", tok).Code)
        })
    }
}

func TestRequireRole(t *testing.T) {
    e := newEcho()
    assert.Equal(t, http.StatusForbidden, call(e, "/staff", mint(t, model.Caller{ID: "s", Role: model.RoleStudent}, time.Hour)).Code)
    assert.Equal(t, http.StatusNoContent, call(e, "/staff", mint(t, model.Caller{ID: "d", Role: model.RoleStaff}, time.Hour)).Code)
    assert.Equal(t, http.StatusNoContent, call(e, "/staff", mint(t, model.Caller{ID: "a", Role: model.RoleAdmin}, time.Hour)).Code)
}

func TestUserIDFallsBackToAnon(t *testing.T) {
    e := echo.New()
    c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
    assert.Equal(t, "anon", userID(c))

    setCaller(c, model.Caller{ID: "stu-9", Role: model.RoleStudent})
    assert.Equal(t, "stu-9", userID(c))
}

func TestCacheKeySeparatesPaths(t *testing.T) {
    e := echo.New()
    cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}
    key := func(target string) string {
        return cacheKey(cfg, e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder()))
    }

    assert.NotEqual(t, key("/v1/shows/a"), key("/v1/shows/b"))
    assert.NotEqual(t, key("/v1/shows/a?x=1"), key("/v1/shows/a?x=2"))
    assert.Equal(t, key("/v1/shows/a"), key("/v1/shows/a"))
    assert.Regexp(t, `^cache:[0-9a-f]{40}$`, key("/v1/shows/a"))

    cfg.KeyStrategy = "route"
    assert.Equal(t, key("/v1/shows/a?x=1"), key("/v1/shows/a?x=2"))
}

func TestRateKeyStrategies(t *testing.T) {
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/v1/shows/s1/seats/a-1/reserve", nil)
    req.RemoteAddr = "10.0.0.7:5555"
    c := e.NewContext(req, httptest.NewRecorder())
    c.SetPath("/v1/shows/:id/seats/:code/reserve")
    c.SetParamNames("id", "code")
    c.SetParamValues("s1", "a-1")
    setCaller(c, model.Caller{ID: "stu-1", Role: model.RoleStudent})

    cases := map[string]string{
        "":           "rl:ip:10.0.0.7:user:stu-1:route:POST /v1/shows/:id/seats/:code/reserve",
        "ip":         "rl:ip:10.0.0.7",
        "user_route": "rl:user:stu-1:route:POST /v1/shows/:id/seats/:code/reserve",
        "seat":       "rl:seat:s1/A-1",
        "user_seat":  "rl:user:stu-1:seat:s1/A-1",
        "bogus_user": "rl:user:stu-1",
    }
    for strategy, want := range cases {
        got := rateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: strategy}, c)
        assert.Equal(t, want, got, strategy)
    }
}
