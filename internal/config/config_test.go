package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// clearEnv blanks the variables Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	for _, k := range []string{"API_Key", "Main_Channel_ID", "Alternate_Channel_ID", "CONFIG_PATH",
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "REDIS_ADDR", "SQLITE_PATH", "HTTP_ADDR",
		"LOG_FILE", "TICKERS_FILE", "CACHE_TTL", "HTTPS_PROXY", "CRYPTOCOMPARE_API_KEY"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
discord:
  api_key: file-key
  main_channel_id: "111"
  alternate_channel_id: "999"
cache:
  ttl: 5m
`)
	t.Setenv("API_Key", "env-key")
	t.Setenv("Main_Channel_ID", "222")

	cfg, err := Load([]string{"-c", path, "-m", "333"})
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Discord.APIKey, "env beats file")
	assert.Equal(t, "333", cfg.Discord.MainChannelID, "flag beats env")
	assert.Equal(t, "999", cfg.Discord.AlternateChannelID, "file beats default")
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "-k", "key", "-m", "123", "-d"})
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, "123", cfg.Discord.AlternateChannelID, "alternate channel defaults to main")
	assert.Equal(t, "America/New_York", cfg.Schedule.Timezone)
	assert.Equal(t, 60*time.Second, cfg.CommandTimeout)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.True(t, cfg.CatchUp())
	assert.Equal(t, DefaultSQLitePath, cfg.Database.SQLitePath, "catch-up needs persisted state")
	assert.Equal(t, "0 * * * * *", cfg.Schedule.AnnounceCron)
	require.NoError(t, cfg.Validate())
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "schedule:\n  catch_up: false\nhttp:\n  addr: \":9000\"\n")
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.False(t, cfg.CatchUp())
	assert.Equal(t, ":9000", cfg.HTTP.Addr)

	cfg, err = Load([]string{"--http_addr", ":8081"})
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.HTTP.Addr)
}

func TestLoad_BadInput(t *testing.T) {
	clearEnv(t)
	_, err := Load([]string{"-c", writeConfig(t, "discord: [not, a, map")})
	assert.Error(t, err)

	t.Setenv("TELEGRAM_CHAT_ID", "abc")
	_, err = Load([]string{"-c", filepath.Join(t.TempDir(), "none.yaml")})
	assert.Error(t, err)

	_, err = Load([]string{"--no-such-flag"})
	assert.Error(t, err)
}

func TestValidate_Messages(t *testing.T) {
	clearEnv(t)
	none := filepath.Join(t.TempDir(), "none.yaml")

	cfg, err := Load([]string{"-c", none})
	require.NoError(t, err)
	assert.Equal(t, `Please provide a valid Discord API key via the "-k" flag or the "API_Key" environment variable!`, cfg.Validate().Error())

	cfg, err = Load([]string{"-c", none, "-k", "key"})
	require.NoError(t, err)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingMainChannel)

	cfg, err = Load([]string{"-c", none, "-k", "key", "-m", "general"})
	require.NoError(t, err)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingMainChannel)

	cfg, err = Load([]string{"-c", none, "-k", "key", "-m", "1"})
	require.NoError(t, err)
	cfg.Telegram.BotToken = "tg"
	assert.Error(t, cfg.Validate())
}

func TestParseClock(t *testing.T) {
	d, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9*time.Hour+30*time.Minute, d)

	_, err = ParseClock("25:00")
	assert.Error(t, err)
}
