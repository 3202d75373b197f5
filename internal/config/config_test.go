package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("DB_PASSWORD", "pw")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, StoragePostgres, cfg.App.Storage)
	assert.Equal(t, "Asia/Jakarta", cfg.Piket.Timezone)
	assert.Equal(t, "18:00:00", cfg.Piket.Cutoff)
	assert.Equal(t, time.Hour, cfg.Piket.MinimumDuration)
	assert.Equal(t, "1 18 * * *", cfg.Piket.ReconcileSpec)
	assert.Equal(t, 2*time.Minute, cfg.App.OnlineWindow)
	assert.Equal(t, "postgres://postgres:pw@localhost:5432/reslab_attendance?sslmode=disable", cfg.DatabaseURL())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("APP_STORAGE", "MEMORY")
	t.Setenv("PIKET_CUTOFF", "17:30")
	t.Setenv("PIKET_MIN_DURATION", "45m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.App.Storage)
	assert.Equal(t, 45*time.Minute, cfg.Piket.MinimumDuration)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.App.AllowedOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret":   {"DB_PASSWORD": "pw", "JWT_SECRET_KEY": ""},
		"missing password": {"JWT_SECRET_KEY": "s", "DB_PASSWORD": "", "APP_STORAGE": ""},
		"bad cutoff":       {"JWT_SECRET_KEY": "s", "DB_PASSWORD": "pw", "PIKET_CUTOFF": "6pm"},
		"bad storage":      {"JWT_SECRET_KEY": "s", "APP_STORAGE": "sqlite"},
		"bad port":         {"JWT_SECRET_KEY": "s", "DB_PASSWORD": "pw", "APP_PORT": "http"},
		"weak admin":       {"JWT_SECRET_KEY": "s", "DB_PASSWORD": "pw", "ADMIN_USERNAME": "admin", "ADMIN_PASSWORD": "123"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
