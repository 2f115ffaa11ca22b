package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

// DefaultSQLitePath stores announcement state and the command log.
const DefaultSQLitePath = "stonkbot.db"

var (
	ErrMissingAPIKey      = errors.New(`Please provide a valid Discord API key via the "-k" flag or the "API_Key" environment variable!`)
	ErrMissingMainChannel = errors.New(`Please provide a valid Discord channel ID via the "-m" flag or the "Main_Channel_ID" environment variable!`)
)

// Config holds all application configuration.
type Config struct {
	Discord struct {
		APIKey             string `yaml:"api_key"`
		MainChannelID      string `yaml:"main_channel_id"`
		AlternateChannelID string `yaml:"alternate_channel_id"`
	} `yaml:"discord"`

	Debug bool `yaml:"debug"`

	Providers struct {
		YahooBaseURL         string        `yaml:"yahoo_base_url"`
		CryptoCompareBaseURL string        `yaml:"cryptocompare_base_url"`
		CryptoCompareAPIKey  string        `yaml:"cryptocompare_api_key"`
		FXBaseURL            string        `yaml:"fx_base_url"`
		NewsBaseURL          string        `yaml:"news_base_url"`
		Timeout              time.Duration `yaml:"timeout"`
	} `yaml:"providers"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	Cache struct {
		RedisAddr string        `yaml:"redis_addr"`
		TTL       time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Log struct {
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
	} `yaml:"log"`
	Schedule struct {
		Timezone     string `yaml:"timezone"`
		Open         string `yaml:"open"`
		Close        string `yaml:"close"`
		CatchUp      *bool  `yaml:"catch_up"`
		AnnounceCron string `yaml:"announce_cron"`
		PresenceCron string `yaml:"presence_cron"`
	} `yaml:"schedule"`
	TickersFile    string        `yaml:"tickers_file"`
	CommandTimeout time.Duration `yaml:"command_timeout"`
	Proxy          string        `yaml:"proxy"`
}

// Load builds the configuration from, in rising precedence: defaults, the
// YAML file, environment variables and command-line flags in args.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("stonkbot", pflag.ContinueOnError)
	apiKey := fs.StringP("api_key", "k", "", "The Discord API key Stonk Bot should use")
	mainID := fs.StringP("main_channel_id", "m", "", "The channel ID of the main channel Stonk Bot should use to post normal messages")
	altID := fs.StringP("alternate_channel_id", "a", "", "The channel ID of the alternate channel Stonk Bot should use to post development messages")
	debug := fs.BoolP("debug", "d", false, "Enable debug level logging")
	path := fs.StringP("config", "c", "", "Path to an optional YAML config file")
	httpAddr := fs.String("http_addr", "", "Listen address of the health endpoint")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfgPath := *path
	if cfgPath == "" {
		cfgPath = os.Getenv("CONFIG_PATH")
	}
	if cfgPath == "" {
		cfgPath = DefaultPath
	}

	cfg := &Config{}
	data, err := os.ReadFile(cfgPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	// Flags override only when given.
	if fs.Changed("api_key") {
		cfg.Discord.APIKey = *apiKey
	}
	if fs.Changed("main_channel_id") {
		cfg.Discord.MainChannelID = *mainID
	}
	if fs.Changed("alternate_channel_id") {
		cfg.Discord.AlternateChannelID = *altID
	}
	if fs.Changed("debug") {
		cfg.Debug = *debug
	}
	if fs.Changed("http_addr") {
		cfg.HTTP.Addr = *httpAddr
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"API_Key":                &c.Discord.APIKey,
		"Main_Channel_ID":        &c.Discord.MainChannelID,
		"Alternate_Channel_ID":   &c.Discord.AlternateChannelID,
		"CRYPTOCOMPARE_API_KEY":  &c.Providers.CryptoCompareAPIKey,
		"TELEGRAM_BOT_TOKEN":     &c.Telegram.BotToken,
		"REDIS_ADDR":             &c.Cache.RedisAddr,
		"SQLITE_PATH":            &c.Database.SQLitePath,
		"HTTP_ADDR":              &c.HTTP.Addr,
		"LOG_FILE":               &c.Log.File,
		"TICKERS_FILE":           &c.TickersFile,
		"HTTPS_PROXY":            &c.Proxy,
		"STONKBOT_TIMEZONE":      &c.Schedule.Timezone,
		"YAHOO_BASE_URL":         &c.Providers.YahooBaseURL,
		"CRYPTOCOMPARE_BASE_URL": &c.Providers.CryptoCompareBaseURL,
	}
	for name, dst := range str {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TELEGRAM_CHAT_ID: %w", err)
		}
		c.Telegram.ChatID = id
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CACHE_TTL: %w", err)
		}
		c.Cache.TTL = d
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Discord.AlternateChannelID == "" {
		c.Discord.AlternateChannelID = c.Discord.MainChannelID
	}
	if c.Providers.Timeout == 0 {
		c.Providers.Timeout = 30 * time.Second
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = time.Minute
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 10
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
	if c.Schedule.Timezone == "" {
		c.Schedule.Timezone = "America/New_York"
	}
	if c.Schedule.Open == "" {
		c.Schedule.Open = "09:30"
	}
	if c.Schedule.Close == "" {
		c.Schedule.Close = "16:00"
	}
	if c.Schedule.CatchUp == nil {
		on := true
		c.Schedule.CatchUp = &on
	}
	if c.Schedule.AnnounceCron == "" {
		c.Schedule.AnnounceCron = "0 * * * * *"
	}
	if c.Schedule.PresenceCron == "" {
		c.Schedule.PresenceCron = "@every 5m"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = DefaultSQLitePath
	}
	if c.CommandTimeout == 0 {
		c.CommandTimeout = 60 * time.Second
	}
}

// Validate checks that all required fields are set. The two Discord errors
// carry the exact text printed before exiting.
func (c *Config) Validate() error {
	if c.Discord.APIKey == "" {
		return ErrMissingAPIKey
	}
	if !isSnowflake(c.Discord.MainChannelID) {
		return ErrMissingMainChannel
	}
	if !isSnowflake(c.Discord.AlternateChannelID) {
		return fmt.Errorf("alternate channel id %q is not a numeric Discord id", c.Discord.AlternateChannelID)
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == 0 {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	if _, err := ParseClock(c.Schedule.Open); err != nil {
		return fmt.Errorf("schedule.open: %w", err)
	}
	if _, err := ParseClock(c.Schedule.Close); err != nil {
		return fmt.Errorf("schedule.close: %w", err)
	}
	if c.CommandTimeout < 0 {
		return fmt.Errorf("command_timeout must not be negative")
	}
	return nil
}

// CatchUp reports whether missed announcements are delivered late.
func (c *Config) CatchUp() bool {
	return c.Schedule.CatchUp == nil || *c.Schedule.CatchUp
}

// ParseClock parses an HH:MM time of day into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func isSnowflake(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}
