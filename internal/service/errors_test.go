package service

import (
    "errors"
    "fmt"
    "testing"

    "github.com/stretchr/testify/assert"

    "github.com/iliyamo/auditorium-seat-reservation/internal/repository"
)

func TestErrorKinds(t *testing.T) {
    err := fmt.Errorf("reserve: %w", seatUnavailable(ReasonSeatDamaged))
    assert.True(t, IsKind(err, KindSeatUnavailable))
    assert.Equal(t, KindSeatUnavailable, KindOf(err))
    assert.Equal(t, ReasonSeatDamaged, ReasonOf(err))

    wrapped := newError(KindForbidden, "not yours", repository.ErrForbidden)
    assert.ErrorIs(t, wrapped, repository.ErrForbidden)
    assert.Contains(t, wrapped.Error(), "forbidden: not yours")

    assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
    assert.Empty(t, ReasonOf(errors.New("boom")))
}
