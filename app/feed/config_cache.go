package feed

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// ConfigCache loads per-source YAML configurations from a directory and
// keeps them in memory. One file per feed; the feed name is the
// filename without the .yml extension.
type ConfigCache struct {
	configsDir string
	cache      map[string]*Config
	mu         sync.RWMutex
}

func NewConfigCache(configsDir string) *ConfigCache {
	return &ConfigCache{
		configsDir: configsDir,
		cache:      make(map[string]*Config),
	}
}

func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.configsDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.configsDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		fileName := filepath.Base(file)
		feedName := fileName[:len(fileName)-len(".yml")]

		config, err := cc.LoadConfig(feedName)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Configuration loaded", "feed", feedName, "enabled", config.Settings.Enabled, "folder", config.IsFolder())
	}

	return nil
}

func (cc *ConfigCache) LoadConfig(feedName string) (*Config, error) {
	configFile := filepath.Join(cc.configsDir, feedName+".yml")

	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var feedConfig Config
	if err := yaml.Unmarshal(data, &feedConfig); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	feedConfig.Name = feedName
	cc.setDefaults(&feedConfig)

	if err := cc.validate(&feedConfig); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[feedConfig.Name] = &feedConfig

	return &feedConfig, nil
}

func (cc *ConfigCache) GetConfig(feedName string) (*Config, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	feedConfig, ok := cc.cache[feedName]
	if !ok {
		return nil, fmt.Errorf("feed config with name '%s' not found", feedName)
	}

	return feedConfig, nil
}

func (cc *ConfigCache) GetConfigs() []*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	configs := make([]*Config, 0, len(cc.cache))
	for _, feedConfig := range cc.cache {
		configs = append(configs, feedConfig)
	}

	return configs
}

func (cc *ConfigCache) GetEnabledConfigs() []*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	configs := make([]*Config, 0, len(cc.cache))
	for _, feedConfig := range cc.cache {
		if feedConfig.Settings.Enabled {
			configs = append(configs, feedConfig)
		}
	}

	return configs
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	return len(cc.cache)
}

func (cc *ConfigCache) setDefaults(feedConfig *Config) {
	if feedConfig.Settings.RefreshInterval == 0 {
		feedConfig.Settings.RefreshInterval = 3600 // seconds
	}
	if feedConfig.Settings.MaxItems == 0 {
		feedConfig.Settings.MaxItems = defaultMaxItems
	}
	if feedConfig.Settings.Timeout == 0 {
		feedConfig.Settings.Timeout = 30 // seconds
	}
}

func (cc *ConfigCache) validate(feedConfig *Config) error {
	if feedConfig.IsFolder() {
		for i, source := range feedConfig.Sources {
			if source == "" {
				return fmt.Errorf("folder source at index %d is empty", i)
			}
		}
		return cc.validateFilters(feedConfig)
	}

	if feedConfig.URL == "" {
		return fmt.Errorf("feed URL is required")
	}

	switch feedConfig.Mode {
	case ModeHTML:
		if feedConfig.Selectors.Container == "" {
			return fmt.Errorf("html mode requires a container selector")
		}
		if feedConfig.Selectors.Title == "" && feedConfig.Selectors.Link == "" {
			return fmt.Errorf("html mode requires at least one of title or link selector")
		}
	case ModeJSON, ModeXML:
		if feedConfig.Paths.Items == "" {
			return fmt.Errorf("%s mode requires an items path", feedConfig.Mode)
		}
	case ModeFeed, "":
		// Standard feeds need no selectors; mode inference handles "".
	default:
		return fmt.Errorf("unknown mode: %q", feedConfig.Mode)
	}

	if feedConfig.Settings.MaxItems < 0 {
		return fmt.Errorf("max items must be non-negative")
	}
	if feedConfig.Settings.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}

	return cc.validateFilters(feedConfig)
}

func (cc *ConfigCache) validateFilters(feedConfig *Config) error {
	for i, rule := range feedConfig.Filters {
		if rule.Field == "" {
			return fmt.Errorf("filter at index %d is missing a field", i)
		}
		if rule.Value == "" {
			return fmt.Errorf("filter at index %d is missing a value", i)
		}
		switch rule.Mode {
		case "include", "exclude":
		default:
			return fmt.Errorf("filter at index %d has unknown mode: %q", i, rule.Mode)
		}
		switch rule.Type {
		case "substring", "regex", "":
		default:
			return fmt.Errorf("filter at index %d has unknown type: %q", i, rule.Type)
		}
	}

	return nil
}
