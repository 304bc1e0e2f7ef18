package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessCodeRoundTrip(t *testing.T) {
	hash, err := HashAccessCode("secret-code")
	require.NoError(t, err)
	assert.NotEqual(t, "secret-code", hash)

	assert.True(t, CheckAccessCode("secret-code", hash))
	assert.False(t, CheckAccessCode("wrong-code", hash))
	assert.False(t, CheckAccessCode("secret-code", "not-a-hash"))
}

func TestExtensionFromContentType(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
		wantErr     bool
	}{
		{"image/jpeg", ".jpg", false},
		{"image/png", ".png", false},
		{"image/webp", ".webp", false},
		{"image/svg+xml", ".svg", false},
		{"image/avif", ".avif", false},
		{"text/html", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ExtensionFromContentType(tt.contentType)
		if tt.wantErr {
			assert.Error(t, err, tt.contentType)
			continue
		}
		require.NoError(t, err, tt.contentType)
		assert.Equal(t, tt.want, got, tt.contentType)
	}
}
