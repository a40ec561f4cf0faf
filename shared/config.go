package shared

import (
	"encoding/json"
	"fmt"
	"github.com/tailscale/hujson"
	"log"
	"os"
)

const (
	configVarName    = "CONFIG"              // If set, will load config.jsonc from this path and not from devConfigPath
	secretsVarName   = "SECRETS"             // If set, will load secrets.jsonc from this path and not from devSecretsPath
	devConfigPath    = "./config.dev.jsonc"  // Path to config.jsonc in development environment
	devSecretsPath   = "./secrets.dev.jsonc" // Path to secrets.jsonc in development environment
	warmupStageCount = 6
)

type Config struct {
	Secrets         Secrets       `json:"-"`
	LogFile         string        `json:"log_file"`
	LogLevel        string        `json:"log_level"`
	ServicePort     uint          `json:"service_port"`
	DbFile          string        `json:"db_file"`
	UserAgent       string        `json:"user_agent"`
	Reddit          RedditLimits  `json:"reddit"`
	Warmup          WarmupConfig  `json:"warmup"`
	Monitor         MonitorConfig `json:"monitor"`
	Content         ContentConfig `json:"content"`
	Jobs            JobSchedules  `json:"jobs"`
	ProfileDir      string        `json:"profile_dir"`
	ProfileKeepDays int           `json:"profile_keep_days"`
}

// RedditLimits is the outbound call discipline: the per-minute budget feeds the
// rate limiter; cooldown and daily caps feed the account registry.
type RedditLimits struct {
	CallsPerMinute     int `json:"calls_per_minute"`
	MinCooldownMinutes int `json:"min_cooldown_minutes"`
	MaxDailyPosts      int `json:"max_daily_posts"`
	MaxDailyReplies    int `json:"max_daily_replies"`
	MetricsSinceDays   int `json:"metrics_since_days"`
}

type WarmupConfig struct {
	SafeSubreddits []string      `json:"safe_subreddits"`
	Stages         []WarmupStage `json:"stages"`
}

// WarmupStage is one rung of the account growth ladder. Thresholds must be
// non-decreasing from one stage to the next; LoadConfig enforces this.
type WarmupStage struct {
	Name     string   `json:"name"`
	MinDays  int      `json:"min_days"`
	MinKarma int      `json:"min_karma"`
	Actions  []string `json:"actions"`
}

type MonitorConfig struct {
	LimitPerKeyword int    `json:"limit_per_keyword"`
	TimeFilter      string `json:"time_filter"`
	IncludeComments bool   `json:"include_comments"`
	SearchDelayMsec int    `json:"search_delay_msec"`
}

type ContentConfig struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
}

// JobSchedules holds cron expressions for the periodic batch jobs. An empty
// expression disables the job; it can still be triggered over the API.
type JobSchedules struct {
	PendingPosts string `json:"pending_posts"`
	MentionScan  string `json:"mention_scan"`
	Replies      string `json:"replies"`
	Warmup       string `json:"warmup"`
	MetricsSync  string `json:"metrics_sync"`
}

type Secrets struct {
	EncryptionKey   string   `json:"encryption_key"`
	AnthropicApiKey string   `json:"anthropic_api_key"`
	ApiKeys         []string `json:"api_keys"`
	MetricsAuth     string   `json:"metrics_auth"`
}

func LoadConfig() *Config {

	// Where are our config and secrets files?
	cfgPath := os.Getenv(configVarName)
	if len(cfgPath) == 0 {
		cfgPath = devConfigPath
	}
	secretsPath := os.Getenv(secretsVarName)
	if len(secretsPath) == 0 {
		secretsPath = devSecretsPath
	}

	// Read config file
	var config Config
	mustDeserializeFile(cfgPath, &config)
	// Read secrets member from secrets file
	mustDeserializeFile(secretsPath, &config.Secrets)

	if err := config.Warmup.Validate(); err != nil {
		log.Fatalf("Invalid warmup configuration: %v", err)
	}

	return &config
}

// Validate checks the stage ladder: exactly six stages, thresholds
// non-decreasing, stage 0 free of any requirement.
func (wc *WarmupConfig) Validate() error {
	if len(wc.Stages) != warmupStageCount {
		return fmt.Errorf("expected %d warmup stages, got %d", warmupStageCount, len(wc.Stages))
	}
	if wc.Stages[0].MinDays != 0 || wc.Stages[0].MinKarma != 0 {
		return fmt.Errorf("stage 0 must have zero thresholds")
	}
	for i := 1; i < len(wc.Stages); i++ {
		prev, curr := wc.Stages[i-1], wc.Stages[i]
		if curr.MinDays < prev.MinDays || curr.MinKarma < prev.MinKarma {
			return fmt.Errorf("stage %d thresholds regress below stage %d", i, i-1)
		}
	}
	if len(wc.SafeSubreddits) == 0 {
		return fmt.Errorf("safe subreddit allowlist is empty")
	}
	return nil
}

func mustDeserializeFile[T any](fileName string, obj *T) {
	var err error
	var cfgJson []byte
	cfgJson, err = os.ReadFile(fileName)
	if err != nil {
		log.Fatal(err)
	}
	// JSONC => JSON
	cfgJson, err = standardizeJSON(cfgJson)
	if err != nil {
		log.Fatal(err)
	}
	// Parse
	if err := json.Unmarshal(cfgJson, obj); err != nil {
		log.Fatal(err)
	}
}

func standardizeJSON(b []byte) ([]byte, error) {
	ast, err := hujson.Parse(b)
	if err != nil {
		return b, err
	}
	ast.Standardize()
	return ast.Pack(), nil
}
