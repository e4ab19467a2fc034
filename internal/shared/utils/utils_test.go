package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Тестовое место", "testovoe-mesto"},
		{"  Hotel   Kazan!! ", "hotel-kazan"},
		{"Щучье озеро — 2025", "schuche-ozero-2025"},
		{"---", ""},
		{"Юрта у моря", "yurta-u-morya"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateSlug(tt.in))
		})
	}
}

func TestRandomHex(t *testing.T) {
	a, err := RandomHex(16)
	require.NoError(t, err)
	b, err := RandomHex(16)
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^[0-9a-f]{32}$`, a)
}

func TestParseNumericID(t *testing.T) {
	id, ok := ParseNumericID("444")
	assert.True(t, ok)
	assert.Equal(t, int64(444), id)

	for _, s := range []string{"", "abc", "12a", "-1", "99999999999999999999"} {
		_, ok := ParseNumericID(s)
		assert.False(t, ok, s)
	}
}
