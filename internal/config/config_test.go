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
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "50051", cfg.Server.GRPCPort)
	assert.Equal(t, "8080", cfg.Server.HTTPPort)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenDuration)
	assert.Equal(t, 10, cfg.App.TodosPerPage)
	assert.Equal(t, 20, cfg.App.TagsPerPage)
	assert.Equal(t, "admin@example.com", cfg.Email.ContactRecipient)
	assert.True(t, cfg.IsDevelopment())
	assert.NoError(t, cfg.ValidateConfig())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_PATH", "/tmp/todo.db")
	t.Setenv("TODOS_PER_PAGE", "25")
	t.Setenv("JWT_ACCESS_TOKEN_DURATION", "1h")
	t.Setenv("TIME_ZONE", "Europe/Istanbul")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/todo.db", cfg.Database.Path)
	assert.Equal(t, 25, cfg.App.TodosPerPage)
	assert.Equal(t, time.Hour, cfg.JWT.AccessTokenDuration)
	assert.Equal(t, "Europe/Istanbul", cfg.Location().String())
}

func TestLoad_SharedSecretFallback(t *testing.T) {
	t.Setenv("JWT_SECRET", "shared")
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "shared", cfg.JWT.AccessSecret)
	assert.Equal(t, "shared", cfg.JWT.RefreshSecret)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http_port: \"9090\"\ntags_per_page: 50\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.HTTPPort)
	assert.Equal(t, 50, cfg.App.TagsPerPage)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}, wantErr: false},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: true},
		{name: "bad time zone", mutate: func(c *Config) { c.App.TimeZone = "Mars/Olympus" }, wantErr: true},
		{name: "zero page size", mutate: func(c *Config) { c.App.TodosPerPage = 0 }, wantErr: true},
		{
			name:    "production with default secrets",
			mutate:  func(c *Config) { c.Server.Environment = "production" },
			wantErr: true,
		},
		{
			name: "production with real secrets",
			mutate: func(c *Config) {
				c.Server.Environment = "production"
				c.JWT.AccessSecret = "a-secret"
				c.JWT.RefreshSecret = "r-secret"
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.ValidateConfig()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestToDatabaseConfig(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "/tmp/todo.db")
	t.Setenv("DB_MAX_OPEN_CONNS", "3")

	cfg, err := Load()
	require.NoError(t, err)

	db := cfg.ToDatabaseConfig()
	assert.Equal(t, "sqlite", db.Driver)
	assert.Equal(t, "/tmp/todo.db", db.Path)
	assert.Equal(t, 3, db.MaxOpenConns)
	assert.Equal(t, 5, db.MaxIdleConns)
}
