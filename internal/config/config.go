package config

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

// HTTPConfig holds shared HTTP client settings for all collectors.
type HTTPConfig struct {
	ConnectTimeout string `mapstructure:"connect_timeout"` // duration string, e.g., "30s"
	ReadTimeout    string `mapstructure:"read_timeout"`
	MaxRetries     int    `mapstructure:"max_retries"`
	RetryDelay     string `mapstructure:"retry_delay"`
}

// GitHubConfig controls the GitHub releases + trending collector.
type GitHubConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	APIURL   string   `mapstructure:"api_url"`
	Repos    []string `mapstructure:"repos"` // owner/name, release watch list
	MinStars int      `mapstructure:"min_stars"`
}

// RedditConfig controls the Reddit collector.
type RedditConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	APIURL     string   `mapstructure:"api_url"`
	Subreddits []string `mapstructure:"subreddits"`
	MinUpvotes int      `mapstructure:"min_upvotes"`
	TimeFilter string   `mapstructure:"time_filter"` // hour/day/week
}

// HackerNewsConfig controls the Hacker News collector.
type HackerNewsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	APIURL     string `mapstructure:"api_url"`
	MinScore   int    `mapstructure:"min_score"`
	MaxStories int    `mapstructure:"max_stories"`
}

// DevToConfig controls the Dev.to collector.
type DevToConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	APIURL       string   `mapstructure:"api_url"`
	Tags         []string `mapstructure:"tags"`
	MinReactions int      `mapstructure:"min_reactions"`
}

// RSSConfig controls the RSS feed collector.
type RSSConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Feeds   []string `mapstructure:"feeds"`
}

// NpmConfig controls the npm registry collector.
type NpmConfig struct {
	Enabled     bool     `mapstructure:"enabled"`
	RegistryURL string   `mapstructure:"registry_url"`
	Packages    []string `mapstructure:"packages"`
}

// SourcesConfig groups the collector configurations.
type SourcesConfig struct {
	CollectionHours int              `mapstructure:"collection_hours"` // lookback window shared by collectors
	TaskTimeout     string           `mapstructure:"task_timeout"`     // per-collector deadline
	ShutdownGrace   string           `mapstructure:"shutdown_grace"`   // drain grace on close
	GitHub          GitHubConfig     `mapstructure:"github"`
	Reddit          RedditConfig     `mapstructure:"reddit"`
	HackerNews      HackerNewsConfig `mapstructure:"hackernews"`
	DevTo           DevToConfig      `mapstructure:"devto"`
	RSS             RSSConfig        `mapstructure:"rss"`
	Npm             NpmConfig        `mapstructure:"npm"`
}

// AIConfig holds settings for the ranking model call.
type AIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"` // optional, for OpenAI-compatible gateways
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}

// SlackConfig holds the delivery webhook settings.
type SlackConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	Timeout    string `mapstructure:"timeout"`
}

// RedisConfig holds redis connection settings for the digest archive.
// Leaving Addr empty disables the archive entirely.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ScheduleConfig controls serve mode.
type ScheduleConfig struct {
	Cron       string `mapstructure:"cron"`
	ListenAddr string `mapstructure:"listen_addr"`
}

// Config is the top-level configuration structure.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Sources  SourcesConfig  `mapstructure:"sources"`
	AI       AIConfig       `mapstructure:"ai"`
	Slack    SlackConfig    `mapstructure:"slack"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.HTTP.ConnectTimeout == "" {
		c.HTTP.ConnectTimeout = "30s"
	}
	if c.HTTP.ReadTimeout == "" {
		c.HTTP.ReadTimeout = "60s"
	}
	if c.HTTP.MaxRetries == 0 {
		c.HTTP.MaxRetries = 3
	}
	if c.HTTP.RetryDelay == "" {
		c.HTTP.RetryDelay = "2s"
	}
	if c.Sources.CollectionHours == 0 {
		c.Sources.CollectionHours = 24
	}
	if c.Sources.TaskTimeout == "" {
		c.Sources.TaskTimeout = "60s"
	}
	if c.Sources.ShutdownGrace == "" {
		c.Sources.ShutdownGrace = "30s"
	}
	if c.Sources.GitHub.APIURL == "" {
		c.Sources.GitHub.APIURL = "https://api.github.com"
	}
	if c.Sources.GitHub.MinStars == 0 {
		c.Sources.GitHub.MinStars = 100
	}
	if c.Sources.Reddit.APIURL == "" {
		c.Sources.Reddit.APIURL = "https://www.reddit.com"
	}
	if c.Sources.Reddit.MinUpvotes == 0 {
		c.Sources.Reddit.MinUpvotes = 50
	}
	if c.Sources.Reddit.TimeFilter == "" {
		c.Sources.Reddit.TimeFilter = "day"
	}
	if c.Sources.HackerNews.APIURL == "" {
		c.Sources.HackerNews.APIURL = "https://hacker-news.firebaseio.com/v0"
	}
	if c.Sources.HackerNews.MinScore == 0 {
		c.Sources.HackerNews.MinScore = 100
	}
	if c.Sources.HackerNews.MaxStories == 0 {
		c.Sources.HackerNews.MaxStories = 30
	}
	if c.Sources.DevTo.APIURL == "" {
		c.Sources.DevTo.APIURL = "https://dev.to/api"
	}
	if c.Sources.DevTo.MinReactions == 0 {
		c.Sources.DevTo.MinReactions = 10
	}
	if c.Sources.Npm.RegistryURL == "" {
		c.Sources.Npm.RegistryURL = "https://registry.npmjs.org"
	}
	if c.AI.MaxTokens == 0 {
		c.AI.MaxTokens = 2048
	}
	if c.AI.Temperature == 0 {
		c.AI.Temperature = 0.7
	}
	if c.Slack.Timeout == "" {
		c.Slack.Timeout = "20s"
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = "0 8 * * *"
	}
	if c.Schedule.ListenAddr == "" {
		c.Schedule.ListenAddr = ":8080"
	}
}
