package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	kind, err := ParseKind("exclusive")
	require.NoError(t, err)
	assert.Equal(t, KindExclusive, kind)

	kind, err = ParseKind("shared")
	require.NoError(t, err)
	assert.Equal(t, KindShared, kind)

	_, err = ParseKind("write")
	assert.ErrorIs(t, err, ErrInvalidKind)
	_, err = ParseKind("")
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "exclusive", KindExclusive.String())
	assert.Equal(t, "shared", KindShared.String())
	assert.Equal(t, "unlocked", KindNone.String())
	assert.Contains(t, LockKind(9).String(), "unknown")
}

func TestHolderIsExpired(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	h := Holder{Token: "t", Kind: KindShared, ExpiresAt: now.Add(time.Second)}

	assert.False(t, h.IsExpired(now))
	// expiry boundary is inclusive: expires_at <= now means lapsed
	assert.True(t, h.IsExpired(now.Add(time.Second)))
	assert.True(t, h.IsExpired(now.Add(2*time.Second)))
}
