package instagram

import (
	"encoding/json"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProfileURL(t *testing.T) {
	tests := []struct {
		name     string
		username string
		expected string
	}{
		{
			name:     "simple username",
			username: "testuser",
			expected: fmt.Sprintf("%s%s?username=testuser", BaseURL, ProfileEndpoint),
		},
		{
			name:     "username with dots",
			username: "ar.guto",
			expected: fmt.Sprintf("%s%s?username=ar.guto", BaseURL, ProfileEndpoint),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetProfileURL(tt.username))
		})
	}
}

func TestMediaURLVariables(t *testing.T) {
	tests := []struct {
		name      string
		after     string
		limit     int
		wantFirst int
	}{
		{name: "first page", after: "", limit: 0, wantFirst: DefaultMediaLimit},
		{name: "with cursor", after: "QVFE", limit: 24, wantFirst: 24},
		{name: "limit capped", after: "", limit: 500, wantFirst: MaxMediaLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := mediaURL(BaseURL, "123456", tt.after, tt.limit)
			u, err := url.Parse(raw)
			require.NoError(t, err)

			assert.Equal(t, MediaEndpoint, u.Path)
			assert.Equal(t, MediaQueryHash, u.Query().Get("query_hash"))

			var vars map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(u.Query().Get("variables")), &vars))
			assert.Equal(t, "123456", vars["id"])
			assert.Equal(t, float64(tt.wantFirst), vars["first"])
			if tt.after == "" {
				assert.NotContains(t, vars, "after")
			} else {
				assert.Equal(t, tt.after, vars["after"])
			}
		})
	}
}

func TestGetPostURL(t *testing.T) {
	assert.Equal(t, "https://www.instagram.com/p/Cabc123/", GetPostURL("Cabc123"))
	assert.Equal(t, "", GetPostURL(""))
}

func TestIsValidUsername(t *testing.T) {
	tests := []struct {
		username string
		want     bool
	}{
		{"ar.guto", true},
		{"user_name123", true},
		{"UPPER", true},
		{"", false},
		{"with space", false},
		{"dash-name", false},
		{"emoji😀", false},
		{"abcdefghijklmnopqrstuvwxyz12345", false},
		{"abcdefghijklmnopqrstuvwxyz1234", true},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidUsername(tt.username))
		})
	}
}

func TestSanitizeUsername(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"@ar.guto", "ar.guto"},
		{"ar.guto/", "ar.guto"},
		{"  @user_name// ", "user_name"},
		{"plain", "plain"},
		{"", ""},
		{"@", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeUsername(tt.input))
		})
	}
}
