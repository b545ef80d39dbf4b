package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig 写临时配置文件
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 8080
  max_connections: 500
redis:
  addr: "redis:6379"
  password: "secret"
  db: 2
game:
  turn_timeout: 45
  reveal_delay: 5
  default_target_score: 25
security:
  allowed_origins:
    - "https://game.example"
  rate_limit:
    max_per_second: 3
    max_per_minute: 30
    ban_duration: 120
  message_limit:
    max_per_second: 15
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 500, cfg.Server.MaxConnections)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "secret", cfg.Redis.Password)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 45, cfg.Game.TurnTimeout)
	assert.Equal(t, 25, cfg.Game.DefaultTargetScore)
	assert.Equal(t, []string{"https://game.example"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, 3, cfg.Security.RateLimit.MaxPerSecond)
	assert.Equal(t, 15, cfg.Security.MessageLimit.MaxPerSecond)

	// Omitted fields still get defaults
	assert.Equal(t, 5, cfg.Game.RematchCountdown)
	assert.Equal(t, 10, cfg.Game.RoomTimeout)
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()

	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [not: valid")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 1000, cfg.Server.MaxConnections)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 30, cfg.Game.TurnTimeout)
	assert.Equal(t, 9, cfg.Game.RevealDelay)
	assert.Equal(t, 5, cfg.Game.RematchCountdown)
	assert.Equal(t, 10, cfg.Game.DefaultTargetScore)
	assert.Equal(t, []string{"*"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, 10, cfg.Security.RateLimit.MaxPerSecond)
	assert.Equal(t, 60, cfg.Security.RateLimit.MaxPerMinute)
	assert.Equal(t, 20, cfg.Security.MessageLimit.MaxPerSecond)
}

func TestDurationHelpers(t *testing.T) {
	t.Parallel()

	game := GameConfig{
		TurnTimeout:           30,
		RevealDelay:           9,
		RematchCountdown:      5,
		RoomTimeout:           10,
		ShutdownTimeout:       60,
		ShutdownCheckInterval: 5,
		RoomCleanupDelay:      20,
	}

	assert.Equal(t, 30*time.Second, game.TurnTimeoutDuration())
	assert.Equal(t, 9*time.Second, game.RevealDelayDuration())
	assert.Equal(t, 5*time.Second, game.RematchCountdownDuration())
	assert.Equal(t, 10*time.Minute, game.RoomTimeoutDuration())
	assert.Equal(t, time.Hour, game.ShutdownTimeoutDuration())
	assert.Equal(t, 5*time.Second, game.ShutdownCheckIntervalDuration())
	assert.Equal(t, 20*time.Second, game.RoomCleanupDelayDuration())

	rl := RateLimitConfig{BanDuration: 90}
	assert.Equal(t, 90*time.Second, rl.BanDurationTime())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_HOST", "10.1.1.1")
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("REDIS_ADDR", "env-redis:6379")
	t.Setenv("GAME_TURN_TIMEOUT", "15")
	t.Setenv("GAME_TARGET_SCORE", "50")
	t.Setenv("SECURITY_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg := Default()

	assert.Equal(t, "10.1.1.1", cfg.Server.Host)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "env-redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 15, cfg.Game.TurnTimeout)
	assert.Equal(t, 50, cfg.Game.DefaultTargetScore)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.AllowedOrigins)
}

func TestEnvOverrides_InvalidNumberIgnored(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")

	cfg := Default()
	assert.Equal(t, 3000, cfg.Server.Port)
}
