package structures

import (
	"net/http"
	"time"
)

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
	LaunchURL  string
}

type Route struct {
	Url     string
	Handler http.Handler
}

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type StorageConfig struct {
	Backend    string `yaml:"backend" validate:"required|in:file,sqlite,memory"`
	FilePath   string `yaml:"filePath" validate:"unixPath"`
	SqlitePath string `yaml:"sqlitePath"`
	QuotaBytes int    `yaml:"quotaBytes" validate:"min:0"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type AnalyticsConfig struct {
	MaxEvents   int `yaml:"maxEvents" validate:"required|min:1"`
	MaxAdminLog int `yaml:"maxAdminLog" validate:"required|min:1"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type SchedulerConfig struct {
	PointsResetInterval time.Duration `yaml:"pointsResetInterval"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	LaunchURL string
	WebServer Server          `yaml:"webServer"`
	Storage   StorageConfig   `yaml:"storage"`
	Logger    LoggerConfig    `yaml:"logger"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Cache     CacheConfig     `yaml:"cache"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}
