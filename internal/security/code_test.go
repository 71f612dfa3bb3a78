package security

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		assert.True(t, WellFormedCode(code), "code %q is not 6 digits", code)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
		seen[code] = true
	}
	// 200 draws out of 900000 values should practically never collapse.
	assert.Greater(t, len(seen), 150)
}

func TestExpiryFromNow(t *testing.T) {
	t.Run("Default", func(t *testing.T) {
		before := time.Now()
		expiry := ExpiryFromNow(0)
		assert.WithinDuration(t, before.Add(48*time.Hour), expiry, time.Second)
	})

	t.Run("Custom", func(t *testing.T) {
		expiry := ExpiryFromNow(2 * time.Hour)
		assert.WithinDuration(t, time.Now().Add(2*time.Hour), expiry, time.Second)
	})
}

func TestExpiryFrom(t *testing.T) {
	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, at.Add(48*time.Hour), ExpiryFrom(at, 0))
	assert.Equal(t, at.Add(time.Hour), ExpiryFrom(at, time.Hour))
	assert.Equal(t, at.Add(48*time.Hour), ExpiryFrom(at, -time.Minute))
}

func TestExpiredAt(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Minute)
	assert.True(t, ExpiredAt(nil, now))
	assert.True(t, ExpiredAt(&now, now))
	assert.False(t, ExpiredAt(&future, now))
}

func TestIsValid(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	t.Run("UnusedAndFuture", func(t *testing.T) {
		assert.True(t, IsValidAt(strPtr("123456"), false, &future, now))
	})

	t.Run("Used", func(t *testing.T) {
		assert.False(t, IsValidAt(strPtr("123456"), true, &future, now))
		assert.False(t, IsValidAt(strPtr("123456"), true, &past, now))
	})

	t.Run("ExpiredOrMissingExpiry", func(t *testing.T) {
		assert.False(t, IsValidAt(strPtr("123456"), false, &past, now))
		assert.False(t, IsValidAt(strPtr("123456"), false, nil, now))
	})

	t.Run("ExpiryEqualToNow", func(t *testing.T) {
		assert.False(t, IsValidAt(strPtr("123456"), false, &now, now))
	})

	t.Run("MissingCode", func(t *testing.T) {
		assert.False(t, IsValidAt(nil, false, &future, now))
		assert.False(t, IsValidAt(strPtr(""), false, &future, now))
	})

	t.Run("WallClock", func(t *testing.T) {
		assert.True(t, IsValid(strPtr("654321"), false, &future))
	})
}

func TestFormatCode(t *testing.T) {
	assert.Equal(t, "12-34-56", FormatCode("123456"))
	assert.Equal(t, "12345", FormatCode("12345"))
	assert.Equal(t, "1234567", FormatCode("1234567"))
	assert.Equal(t, "12a456", FormatCode("12a456"))
	assert.Equal(t, "", FormatCode(""))

	// Formatting a non-6-digit string is idempotent.
	once := FormatCode("12-34-56")
	assert.Equal(t, once, FormatCode(once))
}

func TestWellFormedCode(t *testing.T) {
	assert.True(t, WellFormedCode("000000"))
	assert.False(t, WellFormedCode("00000"))
	assert.False(t, WellFormedCode("12 456"))
	assert.False(t, WellFormedCode("１２３４５６"))
}
