package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"wiltd/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "WILTD_LOG_LEVEL")
	viper.BindEnv("api.baseUrl", "WILTD_API_BASE_URL")
	viper.BindEnv("api.tokenPath", "WILTD_TOKEN_PATH")
	viper.BindEnv("store.path", "WILTD_STORE_PATH")
	viper.BindEnv("feed.pageSize", "WILTD_FEED_PAGE_SIZE")
	viper.BindEnv("cache.enabled", "WILTD_CACHE_ENABLED")
	viper.BindEnv("cache.size", "WILTD_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	applyDefaults(&conf)

	conf.AppName = "WiltSyncDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

// applyDefaults fills in the durations that have sane fixed values and
// are almost never overridden in practice.
func applyDefaults(conf *structures.Config) {
	if conf.Feed.ProfileTTL <= 0 {
		conf.Feed.ProfileTTL = 24 * time.Hour
	}
	if conf.Activity.TTL <= 0 {
		conf.Activity.TTL = 10 * 24 * time.Hour
	}
	if conf.Activity.SweepInterval <= 0 {
		conf.Activity.SweepInterval = 6 * time.Hour
	}
	if conf.Search.DebounceDelay <= 0 {
		conf.Search.DebounceDelay = 200 * time.Millisecond
	}
}
