package feed

import (
	"cmp"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultSources is used when the feeds directory holds no configuration.
var DefaultSources = []Config{
	{Key: "techcrunch", Name: "TechCrunch", URL: "https://techcrunch.com/feed/", Priority: 1},
	{Key: "the-verge", Name: "The Verge", URL: "https://www.theverge.com/rss/index.xml", Priority: 2},
	{Key: "ars-technica", Name: "Ars Technica", URL: "https://arstechnica.com/feed/", Priority: 3},
	{Key: "wired", Name: "Wired", URL: "https://www.wired.com/feed/rss", Priority: 4},
	{Key: "engadget", Name: "Engadget", URL: "https://www.engadget.com/rss.xml", Priority: 5},
	{Key: "gizmodo", Name: "Gizmodo", URL: "https://gizmodo.com/rss", Priority: 6},
	{Key: "cnet", Name: "CNET", URL: "https://www.cnet.com/rss/news/", Priority: 7},
	{Key: "mashable", Name: "Mashable", URL: "https://mashable.com/feed", Priority: 8},
}

type ConfigCache struct {
	feedsDir string
	cache    map[string]*Config
	mu       sync.RWMutex
}

func NewConfigCache(feedsDir string) *ConfigCache {
	return &ConfigCache{
		feedsDir: feedsDir,
		cache:    make(map[string]*Config),
	}
}

// Run loads every *.yml file from the feeds directory. When none exist the
// built-in source list is loaded instead.
func (cc *ConfigCache) Run() error {
	files, err := cc.configFiles()
	if err != nil {
		return err
	}

	if len(files) == 0 {
		slog.Info("No feed configuration files found, using built-in sources", "feeds_dir", cc.feedsDir)
		cc.loadDefaults()
		return nil
	}

	for _, file := range files {
		key := strings.TrimSuffix(filepath.Base(file), ".yml")

		config, err := cc.LoadConfig(key)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Configuration loaded", "feed", config.Name, "enabled", config.IsEnabled(), "max_items", config.Settings.MaxItems)
	}

	return nil
}

func (cc *ConfigCache) configFiles() ([]string, error) {
	if cc.feedsDir == "" {
		return nil, nil
	}
	if _, err := os.Stat(cc.feedsDir); os.IsNotExist(err) {
		return nil, nil
	}

	files, err := filepath.Glob(filepath.Join(cc.feedsDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YML files: %w", err)
	}
	return files, nil
}

func (cc *ConfigCache) loadDefaults() {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	for _, source := range DefaultSources {
		config := source
		cc.cache[config.Key] = &config
	}
}

func (cc *ConfigCache) LoadConfig(key string) (*Config, error) {
	configFile := filepath.Join(cc.feedsDir, key+".yml")
	feedConfig, err := cc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	feedConfig.Key = key
	feedConfig.Name = cmp.Or(feedConfig.Name, key)

	if err := cc.validateConfig(feedConfig); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[feedConfig.Key] = feedConfig

	return feedConfig, nil
}

func (cc *ConfigCache) GetConfig(key string) (*Config, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	feedConfig, ok := cc.cache[key]
	if !ok {
		return nil, fmt.Errorf("feed config with key '%s' not found", key)
	}
	return feedConfig, nil
}

// GetEnabledConfigs returns the enabled sources ordered by priority, then key.
func (cc *ConfigCache) GetEnabledConfigs() []*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	enabled := make([]*Config, 0, len(cc.cache))
	for _, v := range cc.cache {
		if v.IsEnabled() {
			enabled = append(enabled, v)
		}
	}

	slices.SortFunc(enabled, func(a, b *Config) int {
		return cmp.Or(cmp.Compare(a.Priority, b.Priority), strings.Compare(a.Key, b.Key))
	})

	return enabled
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) parseConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var feedConfig Config
	if err := yaml.Unmarshal(data, &feedConfig); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &feedConfig, nil
}

func (cc *ConfigCache) validateConfig(feedConfig *Config) error {
	if feedConfig == nil {
		return fmt.Errorf("feedConfig is nil")
	}

	if feedConfig.URL == "" {
		return fmt.Errorf("feed URL is required")
	}

	if !strings.HasPrefix(feedConfig.URL, "http://") && !strings.HasPrefix(feedConfig.URL, "https://") {
		return fmt.Errorf("feed URL must be an http(s) URL: %s", feedConfig.URL)
	}

	nonNegativeFields := map[string]int{
		"max items": feedConfig.Settings.MaxItems,
		"timeout":   feedConfig.Settings.Timeout,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	return nil
}
