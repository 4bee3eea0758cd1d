package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "PROBLEM_RADAR_CONFIG"
	envFileEnv      = "PROBLEM_RADAR_ENV_FILE"
	httpAddrEnv     = "HTTP_ADDR"
	logLevelEnv     = "LOG_LEVEL"
	databaseURLEnv  = "DATABASE_URL"
	redisAddrEnv    = "REDIS_ADDR"
	llmProviderEnv  = "LLM_PROVIDER"
	llmAPIKeyEnv    = "LLM_API_KEY"
	llmModelEnv     = "LLM_MODEL"
	geminiAPIKeyEnv = "GEMINI_API_KEY"
	vectorURLEnv    = "VECTOR_ENDPOINT"
	vectorKeyEnv    = "VECTOR_API_KEY"
	telegramToken   = "TELEGRAM_BOT_TOKEN"
	telegramChatID  = "TELEGRAM_CHAT_ID"
	slackTokenEnv   = "SLACK_BOT_TOKEN"
	slackChannelEnv = "SLACK_CHANNEL"
	apiTokensEnv    = "API_TOKENS"
)

// Config holds high-level settings required across the application.
type Config struct {
	Server        ServerConfig       `yaml:"server"`
	Logging       LoggingConfig      `yaml:"logging"`
	Database      DatabaseConfig     `yaml:"database"`
	Redis         RedisConfig        `yaml:"redis"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Aggregation   AggregationConfig  `yaml:"aggregation"`
	LLM           LLMConfig          `yaml:"llm"`
	Embedding     EmbeddingConfig    `yaml:"embedding"`
	Vector        VectorConfig       `yaml:"vector"`
	Storage       StorageConfig      `yaml:"storage"`
	Notifications NotificationConfig `yaml:"notifications"`
	Auth          AuthConfig         `yaml:"auth"`
	Sites         []SiteConfig       `yaml:"sites"`
}

// Duration decodes Go duration strings ("10s", "1m30s") from YAML.
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(node.Value))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", node.Value, err)
	}
	d.Duration = parsed
	return nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	RequestTimeout Duration `yaml:"requestTimeout"`
	CORSOrigins    []string `yaml:"corsOrigins"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes Postgres connection details. Empty DSN keeps records in memory.
type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
}

// RedisConfig locates the conversion counter store. Empty Addr keeps counters in memory.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// SchedulerConfig defines when the refresh pipeline should run.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// AggregationConfig bounds the adapter fan-out.
type AggregationConfig struct {
	AdapterTimeout Duration `yaml:"adapterTimeout"`
	OverallTimeout Duration `yaml:"overallTimeout"`
	DefaultLimit   int      `yaml:"defaultLimit"`
	SeedFile       string   `yaml:"seedFile"`
}

// LLMConfig selects the content-generation provider: openai, anthropic, gemini or none.
type LLMConfig struct {
	Provider     string   `yaml:"provider"`
	Endpoint     string   `yaml:"endpoint"`
	Model        string   `yaml:"model"`
	APIKey       string   `yaml:"apiKey"`
	SystemPrompt string   `yaml:"systemPrompt"`
	Timeout      Duration `yaml:"timeout"`
}

// EmbeddingConfig selects the embedder: hash (local) or gemini.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	APIKey     string `yaml:"apiKey"`
	Dimensions int    `yaml:"dimensions"`
}

// VectorConfig points at a remote vector index. Empty Endpoint keeps vectors in memory.
type VectorConfig struct {
	Endpoint  string `yaml:"endpoint"`
	APIKey    string `yaml:"apiKey"`
	Namespace string `yaml:"namespace"`
}

// StorageConfig describes where published landing pages land.
type StorageConfig struct {
	Dir     string `yaml:"dir"`
	BaseURL string `yaml:"baseUrl"`
}

// NotificationConfig encapsulates outbound channels (Telegram, Slack).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Slack    SlackConfig    `yaml:"slack"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// SlackConfig wires the bot token and target channel.
type SlackConfig struct {
	BotToken string `yaml:"botToken"`
	Channel  string `yaml:"channel"`
}

// AuthConfig lists accepted bearer tokens. Empty disables authentication.
type AuthConfig struct {
	Tokens []string `yaml:"tokens"`
}

// SiteConfig describes a single source with its scanner strategy.
type SiteConfig struct {
	Name       string            `yaml:"name"`
	Scanner    string            `yaml:"scanner"`
	Categories []CategoryConfig  `yaml:"categories"`
	Options    map[string]string `yaml:"options"`
}

// CategoryConfig holds a concrete endpoint to crawl (e.g., a subreddit listing URL).
type CategoryConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Load reads .env and YAML configuration (if present) and applies environment overrides.
func Load() Config {
	envFile := os.Getenv(envFileEnv)
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		log.Printf("config: cannot load %s: %v", envFile, err)
	}

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if fileCfg, err := Parse(raw); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
		} else {
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Sites) == 0 {
		cfg.Sites = defaultConfig().Sites
	}

	return cfg
}

// Parse decodes a YAML document without applying defaults.
func Parse(raw []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(httpAddrEnv); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(databaseURLEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(redisAddrEnv); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv(llmProviderEnv); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv(llmAPIKeyEnv); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv(llmModelEnv); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv(geminiAPIKeyEnv); v != "" {
		c.Embedding.APIKey = v
		if c.LLM.Provider == "gemini" && c.LLM.APIKey == "" {
			c.LLM.APIKey = v
		}
	}
	if v := os.Getenv(vectorURLEnv); v != "" {
		c.Vector.Endpoint = v
	}
	if v := os.Getenv(vectorKeyEnv); v != "" {
		c.Vector.APIKey = v
	}
	if v := os.Getenv(telegramToken); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatID); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
	if v := os.Getenv(slackTokenEnv); v != "" {
		c.Notifications.Slack.BotToken = v
	}
	if v := os.Getenv(slackChannelEnv); v != "" {
		c.Notifications.Slack.Channel = v
	}
	if v := os.Getenv(apiTokensEnv); v != "" {
		c.Auth.Tokens = splitList(v)
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.Redis.DB = db
		}
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func mergeConfig(base, override Config) Config {
	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}
	if override.Server.RequestTimeout.Duration > 0 {
		base.Server.RequestTimeout = override.Server.RequestTimeout
	}
	if len(override.Server.CORSOrigins) > 0 {
		base.Server.CORSOrigins = override.Server.CORSOrigins
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}
	if override.Database.MaxConns > 0 {
		base.Database.MaxConns = override.Database.MaxConns
	}

	if override.Redis.Addr != "" {
		base.Redis = override.Redis
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Aggregation.AdapterTimeout.Duration > 0 {
		base.Aggregation.AdapterTimeout = override.Aggregation.AdapterTimeout
	}
	if override.Aggregation.OverallTimeout.Duration > 0 {
		base.Aggregation.OverallTimeout = override.Aggregation.OverallTimeout
	}
	if override.Aggregation.DefaultLimit > 0 {
		base.Aggregation.DefaultLimit = override.Aggregation.DefaultLimit
	}
	if override.Aggregation.SeedFile != "" {
		base.Aggregation.SeedFile = override.Aggregation.SeedFile
	}

	if override.LLM.Provider != "" {
		base.LLM.Provider = override.LLM.Provider
	}
	if override.LLM.Endpoint != "" {
		base.LLM.Endpoint = override.LLM.Endpoint
	}
	if override.LLM.Model != "" {
		base.LLM.Model = override.LLM.Model
	}
	if override.LLM.APIKey != "" {
		base.LLM.APIKey = override.LLM.APIKey
	}
	if override.LLM.SystemPrompt != "" {
		base.LLM.SystemPrompt = override.LLM.SystemPrompt
	}
	if override.LLM.Timeout.Duration > 0 {
		base.LLM.Timeout = override.LLM.Timeout
	}

	if override.Embedding.Provider != "" {
		base.Embedding.Provider = override.Embedding.Provider
	}
	if override.Embedding.Model != "" {
		base.Embedding.Model = override.Embedding.Model
	}
	if override.Embedding.APIKey != "" {
		base.Embedding.APIKey = override.Embedding.APIKey
	}
	if override.Embedding.Dimensions > 0 {
		base.Embedding.Dimensions = override.Embedding.Dimensions
	}

	if override.Vector.Endpoint != "" {
		base.Vector = override.Vector
	}

	if override.Storage.Dir != "" {
		base.Storage.Dir = override.Storage.Dir
	}
	if override.Storage.BaseURL != "" {
		base.Storage.BaseURL = override.Storage.BaseURL
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}
	if override.Notifications.Slack.BotToken != "" {
		base.Notifications.Slack.BotToken = override.Notifications.Slack.BotToken
	}
	if override.Notifications.Slack.Channel != "" {
		base.Notifications.Slack.Channel = override.Notifications.Slack.Channel
	}

	if len(override.Auth.Tokens) > 0 {
		base.Auth.Tokens = override.Auth.Tokens
	}

	if len(override.Sites) > 0 {
		base.Sites = override.Sites
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Server: ServerConfig{
			Addr:           ":8000",
			RequestTimeout: Duration{30 * time.Second},
			CORSOrigins:    []string{"http://localhost:3000"},
		},
		Logging:   LoggingConfig{Level: "info"},
		Database:  DatabaseConfig{DSN: "", MaxConns: 10},
		Scheduler: SchedulerConfig{CronExpression: "@hourly", Timezone: defaultTimezone, location: tz},
		Aggregation: AggregationConfig{
			AdapterTimeout: Duration{10 * time.Second},
			OverallTimeout: Duration{15 * time.Second},
			DefaultLimit:   20,
		},
		LLM: LLMConfig{
			Provider:     "none",
			Endpoint:     "https://api.openai.com/v1/chat/completions",
			Model:        "gpt-4o-mini",
			SystemPrompt: "You are a SaaS product strategist. Answer with the exact format requested.",
			Timeout:      Duration{20 * time.Second},
		},
		Embedding: EmbeddingConfig{Provider: "hash", Model: "gemini-embedding-001", Dimensions: 256},
		Storage:   StorageConfig{Dir: "./published", BaseURL: "http://localhost:8000/pages"},
		Sites: []SiteConfig{
			{
				Name:    "reddit",
				Scanner: "reddit",
				Categories: []CategoryConfig{
					{Name: "SaaS", URL: "https://www.reddit.com/r/SaaS/hot.json?limit=25"},
					{Name: "Entrepreneur", URL: "https://www.reddit.com/r/Entrepreneur/hot.json?limit=25"},
					{Name: "startups", URL: "https://www.reddit.com/r/startups/hot.json?limit=25"},
					{Name: "webdev", URL: "https://www.reddit.com/r/webdev/hot.json?limit=25"},
					{Name: "programming", URL: "https://www.reddit.com/r/programming/hot.json?limit=25"},
				},
			},
			{
				Name:    "hackernews",
				Scanner: "hackernews",
				Categories: []CategoryConfig{
					{Name: "topstories", URL: "https://hacker-news.firebaseio.com/v0"},
				},
				Options: map[string]string{"maxItems": "30"},
			},
			{
				Name:    "g2",
				Scanner: "g2",
				Categories: []CategoryConfig{
					{Name: "project-management", URL: "https://www.g2.com/categories/project-management"},
					{Name: "crm", URL: "https://www.g2.com/categories/crm"},
					{Name: "marketing-automation", URL: "https://www.g2.com/categories/marketing-automation"},
					{Name: "analytics", URL: "https://www.g2.com/categories/analytics"},
				},
			},
			{
				Name:    "research",
				Scanner: "research",
				Categories: []CategoryConfig{
					{Name: "small business operations"},
					{Name: "remote team collaboration"},
				},
				Options: map[string]string{"perTopic": "3"},
			},
		},
	}
}
