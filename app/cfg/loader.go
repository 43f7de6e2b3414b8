package cfg

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage
	DBPath    string `long:"db-path" env:"DB_PATH" default:"./data/devmatrix.db" description:"SQLite database file"`
	FeedsDir  string `long:"feeds-dir" env:"FEEDS_DIR" default:"./feeds" description:"Directory containing feed source files (built-in list is used when empty)"`
	DealsFile string `long:"deals-file" env:"DEALS_FILE" description:"YAML file with the deal catalog (built-in catalog when unset)"`

	// HTTP server
	Port       string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl    string `long:"base-url" env:"BASE_URL" description:"Public base URL of the site (e.g., https://developersmatrix.com)"`
	CronSecret string `long:"cron-secret" env:"CRON_SECRET" description:"Bearer token required by the scrape endpoints (optional)"`

	// Ingestion
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"0" description:"Interval in seconds between scheduled scrape runs (0 disables the scheduler)"`
	UserAgent         string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36" description:"User agent string for outgoing requests"`
	FetchTimeout      int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"15" description:"Timeout in seconds for a single feed or page fetch"`
	EntryDelay        int    `long:"entry-delay" env:"ENTRY_DELAY_MS" default:"500" description:"Delay in milliseconds between feed entries"`
	MaxItems          int    `long:"max-items" env:"MAX_ITEMS" default:"3" description:"Default number of entries taken from each feed"`

	// Summarization backend
	AIURL     string `long:"ai-url" env:"AI_URL" description:"Ollama base URL used for summaries (fallback excerpts when unset)"`
	AIModel   string `long:"ai-model" env:"AI_MODEL" default:"llama3.2" description:"Model used for summaries"`
	AITimeout int    `long:"ai-timeout" env:"AI_TIMEOUT" default:"60" description:"Timeout in seconds for a single summary request"`

	// Slug cache
	RedisAddr     string `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address for the slug cache (optional)"`
	RedisPassword string `long:"redis-password" env:"REDIS_PASSWORD" description:"Redis password"`
	RedisTTL      int    `long:"redis-ttl" env:"REDIS_TTL" default:"604800" description:"Slug cache TTL in seconds"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

func LoadArgs(args []string) (*Cfg, error) {
	// A missing .env file is not an error
	_ = godotenv.Load()

	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:            raw.DBPath,
		FeedsDir:          raw.FeedsDir,
		DealsFile:         raw.DealsFile,
		Port:              raw.Port,
		BaseUrl:           raw.BaseUrl,
		CronSecret:        raw.CronSecret,
		SchedulerInterval: raw.SchedulerInterval,
		UserAgent:         cmp.Or(raw.UserAgent, DefaultUserAgent),
		FetchTimeout:      raw.FetchTimeout,
		EntryDelay:        raw.EntryDelay,
		MaxItems:          raw.MaxItems,
		AIURL:             raw.AIURL,
		AIModel:           raw.AIModel,
		AITimeout:         raw.AITimeout,
		RedisAddr:         raw.RedisAddr,
		RedisPassword:     raw.RedisPassword,
		RedisTTL:          raw.RedisTTL,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

func validate(cfg *Cfg) error {
	nonNegativeFields := map[string]int{
		"scheduler interval": cfg.SchedulerInterval,
		"entry delay":        cfg.EntryDelay,
		"redis ttl":          cfg.RedisTTL,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	positiveFields := map[string]int{
		"fetch timeout": cfg.FetchTimeout,
		"max items":     cfg.MaxItems,
		"ai timeout":    cfg.AITimeout,
	}

	for fieldName, fieldValue := range positiveFields {
		if fieldValue <= 0 {
			return fmt.Errorf("%s must be positive", fieldName)
		}
	}

	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
