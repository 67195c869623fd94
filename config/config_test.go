package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmbeddedDefaults(t *testing.T) {
	cfg, err := Load(embeddedConfig)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Mode)
	assert.Equal(t, "8000", cfg.Server.HTTPPort)
	assert.Equal(t, 60*time.Second, cfg.Server.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TokenTTL)
	assert.Equal(t, "user-rating-api", cfg.JWT.Issuer)
	assert.Equal(t, 10, cfg.Pagination.DefaultPageSize)
	assert.Equal(t, 100, cfg.Pagination.MaxPageSize)
	assert.Equal(t, "localhost", cfg.Repositories.Postgres.Host)
	assert.Equal(t, "9090", cfg.Handlers.Prometheus.Port)
}

func TestLoad_FillsDefaults(t *testing.T) {
	cfg, err := Load([]byte(`
jwt:
  secretKey: s3cret
pagination:
  maxPageSize: 50
`))
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, cfg.JWT.TokenTTL)
	assert.Equal(t, 10, cfg.Pagination.DefaultPageSize)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yml  string
	}{
		{"missing secret", "jwt:\n  tokenTTL: 1h\npagination:\n  maxPageSize: 10\n"},
		{"max below default", "jwt:\n  secretKey: x\npagination:\n  defaultPageSize: 20\n  maxPageSize: 5\n"},
		{"bad yaml", "jwt: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.yml))
			assert.Error(t, err)
		})
	}
}
