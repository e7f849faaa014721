package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ALLOWED_ORIGINS", "https://shop.example.com, https://admin.example.com")

	cfg, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "secret", cfg.JWTSecret)
	assert.Equal(t, []string{"https://shop.example.com", "https://admin.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.Equal(t, 30*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, "http://product-service:8082", cfg.Services["product"])
	assert.Len(t, cfg.Routes, len(DefaultRoutes()))
}

func TestLoad_EnvOverridesService(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("GATEWAY_SERVICES_PRODUCT", "http://localhost:9082")
	t.Setenv("GATEWAY_RATE_LIMIT_PER_MINUTE", "10")

	cfg, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9082", cfg.Services["product"])
	assert.Equal(t, 10, cfg.RateLimitPerMinute)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load(New())
	require.Error(t, err)
}

func TestLoad_FileRoutes(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	dir := t.TempDir()
	file := filepath.Join(dir, "gateway.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
upstream_timeout: 5s
services:
  reports: http://reports:9000
routes:
  - prefix: /reports/
    service: reports
    auth: required
    roles: [systemAdmin]
    methods: [get]
`), 0o600))

	v := New()
	v.SetConfigFile(file)
	cfg, err := Load(v)
	require.NoError(t, err)
	require.Len(t, cfg.Routes, 1)
	r := cfg.Routes[0]
	assert.Equal(t, "/reports", r.Prefix)
	assert.Equal(t, []string{"system_admin"}, r.Roles)
	assert.Equal(t, []string{"GET"}, r.Methods)
	assert.Equal(t, "http://reports:9000", cfg.Services["reports"])
	assert.Equal(t, 5*time.Second, cfg.UpstreamTimeout)
}

func TestValidate_Rejects(t *testing.T) {
	base := func() *Config {
		return &Config{
			JWTSecret:          "s",
			AllowedOrigins:     []string{"http://localhost:3000"},
			RateLimitPerMinute: 1,
			RateLimitBurst:     1,
			UpstreamTimeout:    time.Second,
			Services:           map[string]string{"shop": "http://shop:8088"},
		}
	}
	cases := map[string]Rule{
		"unknown service": {Prefix: "/x", Service: "nope"},
		"bad auth mode":   {Prefix: "/shops", Service: "shop", Auth: "sometimes"},
		"roles need auth": {Prefix: "/shops", Service: "shop", Auth: AuthOptional, Roles: []string{"shop_admin"}},
		"unknown role":    {Prefix: "/shops", Service: "shop", Auth: AuthRequired, Roles: []string{"owner"}},
		"root prefix":     {Prefix: "/", Service: "shop"},
	}
	for name, rule := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base()
			cfg.Routes = []Rule{rule}
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := base()
	cfg.Routes = []Rule{{Prefix: "/internal", Internal: true}}
	assert.NoError(t, cfg.Validate(), "internal rules need no service")
}
