package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable the tests touch; t.Setenv restores them afterwards
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SIGNAGE_APP_NAME",
		"SIGNAGE_APP_ENV",
		"SIGNAGE_APP_PORT",
		"SIGNAGE_DATABASE_HOST",
		"SIGNAGE_DATABASE_PORT",
		"SIGNAGE_DATABASE_PASSWORD",
		"SIGNAGE_DATABASE_SSLMODE",
		"SIGNAGE_DATABASE_MAX_OPEN_CONNS",
		"SIGNAGE_DATABASE_MAX_IDLE_CONNS",
		"SIGNAGE_RESOLVER_MAX_PARENT_DEPTH",
		"SIGNAGE_RESOLVER_SELF_RESOLVING_FIELDS",
		"SIGNAGE_CACHE_BACKEND",
		"SIGNAGE_CACHE_KEY_PREFIX",
		"SIGNAGE_CACHE_TTL",
		"SIGNAGE_TELEMETRY_SAMPLING_RATIO",
		"SIGNAGE_TELEMETRY_DB_LOG_FULL_SQL",
		"SIGNAGE_SWAGGER_ENABLED",
		"SIGNAGE_SWAGGER_ALLOWED_IPS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "signage-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "signage", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, 8, cfg.Resolver.MaxParentDepth)
		assert.Equal(t, []string{"options"}, cfg.Resolver.SelfResolvingFields)
		assert.Equal(t, CacheBackendMemory, cfg.Cache.Backend)
		assert.Equal(t, "signage:records:", cfg.Cache.KeyPrefix)
		assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	})

	t.Run("loads values from environment variables with SIGNAGE prefix", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SIGNAGE_APP_NAME", "test-app")
		t.Setenv("SIGNAGE_APP_PORT", "9000")
		t.Setenv("SIGNAGE_DATABASE_HOST", "testdb.local")
		t.Setenv("SIGNAGE_DATABASE_PORT", "5433")
		t.Setenv("SIGNAGE_RESOLVER_MAX_PARENT_DEPTH", "3")
		t.Setenv("SIGNAGE_RESOLVER_SELF_RESOLVING_FIELDS", "options gallery")
		t.Setenv("SIGNAGE_CACHE_BACKEND", "redis")
		t.Setenv("SIGNAGE_CACHE_TTL", "5m")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, 3, cfg.Resolver.MaxParentDepth)
		assert.Equal(t, []string{"options", "gallery"}, cfg.Resolver.SelfResolvingFields)
		assert.Equal(t, CacheBackendRedis, cfg.Cache.Backend)
		assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SIGNAGE_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("SIGNAGE_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects unknown cache backend", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SIGNAGE_CACHE_BACKEND", "memcached")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cache.backend")
	})

	t.Run("rejects negative parent depth", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SIGNAGE_RESOLVER_MAX_PARENT_DEPTH", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_parent_depth")
	})

	t.Run("rejects sampling ratio out of range", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SIGNAGE_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "requires database.password",
			env:     map[string]string{"SIGNAGE_DATABASE_SSLMODE": "require"},
			wantErr: "database.password is required in production",
		},
		{
			name:    "requires SSL",
			env:     map[string]string{"SIGNAGE_DATABASE_PASSWORD": "secret", "SIGNAGE_DATABASE_SSLMODE": "disable"},
			wantErr: "database.sslmode cannot be 'disable'",
		},
		{
			name: "forbids full SQL logging",
			env: map[string]string{
				"SIGNAGE_DATABASE_PASSWORD":         "secret",
				"SIGNAGE_DATABASE_SSLMODE":          "require",
				"SIGNAGE_TELEMETRY_DB_LOG_FULL_SQL": "true",
			},
			wantErr: "db_log_full_sql",
		},
		{
			name: "forbids open swagger",
			env: map[string]string{
				"SIGNAGE_DATABASE_PASSWORD": "secret",
				"SIGNAGE_DATABASE_SSLMODE":  "require",
				"SIGNAGE_SWAGGER_ENABLED":   "true",
			},
			wantErr: "swagger.allowed_ips",
		},
		{
			name: "allows restricted swagger",
			env: map[string]string{
				"SIGNAGE_DATABASE_PASSWORD":   "secret",
				"SIGNAGE_DATABASE_SSLMODE":    "require",
				"SIGNAGE_SWAGGER_ENABLED":     "true",
				"SIGNAGE_SWAGGER_ALLOWED_IPS": "10.0.0.0/8",
			},
		},
		{
			name: "valid production config",
			env:  map[string]string{"SIGNAGE_DATABASE_PASSWORD": "secret", "SIGNAGE_DATABASE_SSLMODE": "require"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("SIGNAGE_APP_ENV", "production")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "production", cfg.App.Env)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})
}
