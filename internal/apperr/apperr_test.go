package apperr

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_SurvivesWrapping(t *testing.T) {
	base := New(KindQuotaExceeded, "tennis quota exhausted: 50/50")
	wrapped := fmt.Errorf("import atp matches: %w", base)

	assert.Equal(t, KindQuotaExceeded, KindOf(base))
	assert.Equal(t, KindQuotaExceeded, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindQuotaExceeded))
	assert.False(t, Is(wrapped, KindTransport))
}

func TestKindOf_Untagged(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(fmt.Errorf("boom")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, Wrap(nil, KindTransport, "fetch"))
}

func TestWrap_TagsCause(t *testing.T) {
	err := Wrap(fmt.Errorf("connection refused"), KindTransport, "GET /matches")

	assert.Equal(t, KindTransport, KindOf(err))
	assert.Contains(t, err.Error(), "GET /matches")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestHints(t *testing.T) {
	t.Run("explicit hint wins", func(t *testing.T) {
		err := WithHint(New(KindSchema, "invalid input value for enum sport_type"), "ALTER TYPE sport_type ADD VALUE 'TENNIS'")
		assert.Equal(t, []string{"ALTER TYPE sport_type ADD VALUE 'TENNIS'"}, Hints(err))
	})

	t.Run("default hint per kind", func(t *testing.T) {
		hints := Hints(New(KindAuth, "provider returned 401"))
		assert.Len(t, hints, 1)
		assert.Contains(t, hints[0], "TENNIS_API_KEY")
	})

	t.Run("unknown has no hint", func(t *testing.T) {
		assert.Empty(t, Hints(fmt.Errorf("boom")))
	})
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusTooManyRequests, HTTPStatus(KindQuotaExceeded))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(KindInvalidInput))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(KindTransport))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(KindUnknown))
}
