package config

import (
    "os"
    "path/filepath"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

// unset clears keys for the duration of the test and restores them after.
func unset(t *testing.T, keys ...string) {
    t.Helper()
    for _, k := range keys {
        t.Setenv(k, "")
        require.NoError(t, os.Unsetenv(k))
    }
}

// chdir changes the working directory for the duration of the test and
// restores it after (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
    t.Helper()
    prev, err := os.Getwd()
    require.NoError(t, err)
    require.NoError(t, os.Chdir(dir))
    t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadDefaults(t *testing.T) {
    chdir(t, t.TempDir())
    unset(t, "HOLD_TIMEOUT", "TICKET_TTL", "STORE_DRIVER", "CACHE_METHODS", "RATE_LIMIT_BURST")
    t.Setenv("APP_PORT", "8080")
    t.Setenv("JWT_SECRET", "s3cret")

    cfg, err := Load("")
    require.NoError(t, err)
    assert.Equal(t, "8080", cfg.App.Port)
    assert.Equal(t, "mysql", cfg.App.StoreDriver)
    assert.Equal(t, 2*time.Minute, cfg.Booking.HoldTimeout)
    assert.Equal(t, 720*time.Hour, cfg.Ticket.TTL)
    assert.Equal(t, "ticket.lifecycle", cfg.Rabbit.Queue)
    assert.Equal(t, map[string]bool{"GET": true}, cfg.Cache.Methods)
    assert.Equal(t, 60, cfg.RateLimit.Capacity)
}

func TestLoadRequiresIdentitySecret(t *testing.T) {
    chdir(t, t.TempDir())
    unset(t, "JWT_SECRET")
    t.Setenv("APP_PORT", "8080")

    _, err := Load("")
    require.Error(t, err)
}

func TestLoadRejectsNonPositiveHoldTimeout(t *testing.T) {
    chdir(t, t.TempDir())
    t.Setenv("APP_PORT", "8080")
    t.Setenv("JWT_SECRET", "s3cret")
    t.Setenv("HOLD_TIMEOUT", "0s")

    _, err := Load("")
    require.ErrorContains(t, err, "HOLD_TIMEOUT")
}

func TestLoadEnvFile(t *testing.T) {
    unset(t, "APP_PORT", "JWT_SECRET", "HOLD_TIMEOUT", "CACHE_METHODS")
    path := filepath.Join(t.TempDir(), "test.env")
    require.NoError(t, os.WriteFile(path, []byte("APP_PORT=9090\nJWT_SECRET=from-file\nHOLD_TIMEOUT=90s\nCACHE_METHODS=get, head\n"), 0o600))

    cfg, err := Load(path)
    require.NoError(t, err)
    assert.Equal(t, "9090", cfg.App.Port)
    assert.Equal(t, "from-file", cfg.JWT.Secret)
    assert.Equal(t, 90*time.Second, cfg.Booking.HoldTimeout)
    assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cfg.Cache.Methods)

    _, err = Load(filepath.Join(t.TempDir(), "missing.env"))
    require.Error(t, err)
}

func TestRateLimitNormalize(t *testing.T) {
    c := RateLimitConfig{Burst: 5, RefillEvery: 2 * time.Second, TTL: time.Second}
    c.normalize()
    assert.Equal(t, 5, c.Capacity)
    assert.Equal(t, 1, c.RefillTokens)
    assert.Equal(t, 2*time.Second, c.RefillInterval)
    assert.Equal(t, 10*time.Second, c.TTL)

    var zero RateLimitConfig
    zero.normalize()
    assert.Equal(t, 1, zero.Capacity)
    assert.Equal(t, time.Second, zero.RefillInterval)
}

func TestDSN(t *testing.T) {
    c := DBConfig{User: "app", Pass: "pw", Host: "db", Port: "3306", Name: "auditorium"}
    assert.Equal(t, "app:pw@tcp(db:3306)/auditorium?charset=utf8mb4&parseTime=true&loc=UTC", c.DSN())

    c.Pass = ""
    assert.Equal(t, "app@tcp(db:3306)/auditorium?charset=utf8mb4&parseTime=true&loc=UTC", c.DSN())
}
