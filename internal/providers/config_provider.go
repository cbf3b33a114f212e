package providers

import (
	"citystate/internal/structures"
	"fmt"
	"github.com/spf13/viper"
	"path/filepath"
	"strings"
	"time"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	v.SetDefault("webServer.host", "127.0.0.1")
	v.SetDefault("webServer.port", 7420)
	v.SetDefault("storage.backend", "file")
	v.SetDefault("analytics.maxEvents", 200)
	v.SetDefault("analytics.maxAdminLog", 200)
	v.SetDefault("cache.ttl", 30*time.Second)
	v.SetDefault("scheduler.pointsResetInterval", 7*24*time.Hour)

	v.BindEnv("logger.level", "CITY_LOG_LEVEL")
	v.BindEnv("storage.backend", "CITY_STORAGE_BACKEND")
	v.BindEnv("storage.filePath", "CITY_STORAGE_FILE")
	v.BindEnv("storage.sqlitePath", "CITY_STORAGE_SQLITE")
	v.BindEnv("storage.quotaBytes", "CITY_STORAGE_QUOTA")
	v.BindEnv("cache.enabled", "CITY_CACHE_ENABLED")
	v.BindEnv("cache.size", "CITY_CACHE_SIZE")
	v.BindEnv("webServer.port", "CITY_PORT")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "CityState"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode
	conf.LaunchURL = flags.LaunchURL

	return &conf, nil
}
