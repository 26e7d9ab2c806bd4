package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"TrackDigest/internal/domain"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "TRACK_DIGEST_CONFIG"
	databasePathEnv   = "TRACK_DIGEST_DB"
	judgeAPIKeyEnv    = "JUDGE_API_KEY"
	judgeModelEnv     = "JUDGE_MODEL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Database      DatabaseConfig     `yaml:"database"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Selection     SelectionConfig    `yaml:"selection"`
	Notifications NotificationConfig `yaml:"notifications"`
	Judge         JudgeConfig        `yaml:"judge"`
	Sites         []SiteConfig       `yaml:"sites"`
	Tracks        []TrackConfig      `yaml:"tracks"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig points at the SQLite database file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// SchedulerConfig defines when the daily pipeline should run.
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

// SelectionConfig bounds daily and weekly selection passes.
type SelectionConfig struct {
	MaxItemsPerDigest int `yaml:"maxItemsPerDigest"`
	MaxPerTrack       int `yaml:"maxPerTrack"`
	DedupDays         int `yaml:"dedupDays"`
	WeeklyTopN        int `yaml:"weeklyTopN"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// JudgeConfig defines how to contact the external relevance oracle.
type JudgeConfig struct {
	Endpoint     string `yaml:"endpoint"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"apiKey"`
	SystemPrompt string `yaml:"systemPrompt"`
}

// SiteConfig describes a single site with its scanner strategy.
type SiteConfig struct {
	Name       string            `yaml:"name"`
	Scanner    string            `yaml:"scanner"`
	Categories []CategoryConfig  `yaml:"categories"`
	Options    map[string]string `yaml:"options"`
}

// CategoryConfig holds the concrete endpoints to crawl (e.g., Arxiv category URLs).
type CategoryConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// TrackConfig declares one interest track. Tracks are configuration only;
// the engine never mutates them.
type TrackConfig struct {
	Name       string   `yaml:"name"`
	Enabled    *bool    `yaml:"enabled"`
	Phrases    []string `yaml:"phrases"`
	Keywords   []string `yaml:"keywords"`
	Exclusions []string `yaml:"exclusions"`
	MinScore   int      `yaml:"minScore"`
	MaxPerDay  int      `yaml:"maxPerDay"`
}

// DomainTracks converts track configuration into domain entities.
// Enabled defaults to true when omitted.
func (c Config) DomainTracks() []domain.Track {
	tracks := make([]domain.Track, 0, len(c.Tracks))
	for _, tc := range c.Tracks {
		enabled := true
		if tc.Enabled != nil {
			enabled = *tc.Enabled
		}
		tracks = append(tracks, domain.Track{
			Name:       tc.Name,
			Enabled:    enabled,
			Phrases:    tc.Phrases,
			Keywords:   tc.Keywords,
			Exclusions: tc.Exclusions,
			MinScore:   tc.MinScore,
			MaxPerDay:  tc.MaxPerDay,
		})
	}
	return tracks
}

// TrackCaps returns per-track daily caps keyed by track name.
func (c Config) TrackCaps() map[string]int {
	caps := map[string]int{}
	for _, tc := range c.Tracks {
		if tc.MaxPerDay > 0 {
			caps[tc.Name] = tc.MaxPerDay
		}
	}
	return caps
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Sites) == 0 {
		cfg.Sites = defaultConfig().Sites
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(judgeAPIKeyEnv); v != "" {
		c.Judge.APIKey = v
	}

	if v := os.Getenv(judgeModelEnv); v != "" {
		c.Judge.Model = v
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

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Database.Path != "" {
		base.Database = override.Database
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Selection.MaxItemsPerDigest > 0 {
		base.Selection.MaxItemsPerDigest = override.Selection.MaxItemsPerDigest
	}
	if override.Selection.MaxPerTrack > 0 {
		base.Selection.MaxPerTrack = override.Selection.MaxPerTrack
	}
	if override.Selection.DedupDays > 0 {
		base.Selection.DedupDays = override.Selection.DedupDays
	}
	if override.Selection.WeeklyTopN > 0 {
		base.Selection.WeeklyTopN = override.Selection.WeeklyTopN
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Judge.Endpoint != "" {
		base.Judge.Endpoint = override.Judge.Endpoint
	}
	if override.Judge.Model != "" {
		base.Judge.Model = override.Judge.Model
	}
	if override.Judge.APIKey != "" {
		base.Judge.APIKey = override.Judge.APIKey
	}
	if override.Judge.SystemPrompt != "" {
		base.Judge.SystemPrompt = override.Judge.SystemPrompt
	}

	if len(override.Sites) > 0 {
		base.Sites = override.Sites
	}

	if len(override.Tracks) > 0 {
		base.Tracks = override.Tracks
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:   LoggingConfig{Level: "info"},
		Database:  DatabaseConfig{Path: ""},
		Scheduler: SchedulerConfig{CronExpression: "0 6 * * *", Timezone: defaultTimezone, location: tz},
		Selection: SelectionConfig{
			MaxItemsPerDigest: 10,
			MaxPerTrack:       3,
			DedupDays:         7,
			WeeklyTopN:        5,
		},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{BotToken: "", ChatID: ""},
		},
		Judge: JudgeConfig{
			Endpoint:     "https://api.openai.com/v1/chat/completions",
			Model:        "gpt-4o-mini",
			APIKey:       "",
			SystemPrompt: "You judge the relevance of academic papers to research interests on a 1-5 scale.",
		},
		Sites: []SiteConfig{
			{
				Name:    "arxiv-default",
				Scanner: "arxiv",
				Categories: []CategoryConfig{
					{Name: "cs.AI", URL: "https://export.arxiv.org/list/cs.AI/pastweek"},
				},
			},
		},
	}
}
