package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeAt_Format(t *testing.T) {
	date := time.Date(2026, time.March, 7, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "AUD-070326-1234", CodeAt(date, 1234))
}

func TestCodeAt_ZeroPadding(t *testing.T) {
	date := time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "AUD-010130-9999", CodeAt(date, 9999))
}

func TestNewCode_MatchesPattern(t *testing.T) {
	for range 50 {
		code := NewCode(time.Now())
		require.True(t, ValidCode(code), "generated code %q does not match pattern", code)
	}
}

func TestValidCode(t *testing.T) {
	assert.True(t, ValidCode("AUD-070326-1234"))
	assert.False(t, ValidCode("AUD-70326-1234"))
	assert.False(t, ValidCode("ORD-070326-1234"))
	assert.False(t, ValidCode("AUD-070326-123"))
	assert.False(t, ValidCode("aud-070326-1234"))
	assert.False(t, ValidCode(""))
	assert.False(t, ValidCode("AUD-070326-1234x"))
}
