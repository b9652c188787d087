package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type APIConfig struct {
	BaseURL   string        `yaml:"baseUrl" validate:"required"`
	Timeout   time.Duration `yaml:"timeout" validate:"required|min:1"`
	TokenPath string        `yaml:"tokenPath" validate:"required|unixPath"`
}

type StoreConfig struct {
	Path string `yaml:"path" validate:"required|unixPath"`
}

type FeedConfig struct {
	PageSize   int           `yaml:"pageSize" validate:"required|uint|min:1"`
	ProfileTTL time.Duration `yaml:"profileTTL"`
}

type ActivityConfig struct {
	Dir           string        `yaml:"dir" validate:"required|unixPath"`
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweepInterval"`
}

type SearchConfig struct {
	DebounceDelay time.Duration `yaml:"debounceDelay"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	WebServer Server         `yaml:"webServer"`
	API       APIConfig      `yaml:"api"`
	Store     StoreConfig    `yaml:"store"`
	Feed      FeedConfig     `yaml:"feed"`
	Activity  ActivityConfig `yaml:"activity"`
	Search    SearchConfig   `yaml:"search"`
	Logger    LoggerConfig   `yaml:"logger"`
	Cache     CacheConfig    `yaml:"cache"`
	Metrics   MetricsConfig  `yaml:"metrics"`
}
