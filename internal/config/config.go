// internal/config/config.go
package config

import (
	"log/slog"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type AppConfig struct {
	SessionSize    int    `mapstructure:"session_size"`
	DailyXPTarget  int    `mapstructure:"daily_xp_target"`
	XPPerReview    int    `mapstructure:"xp_per_review"`
	HistoryLimit   int    `mapstructure:"history_limit"`
	VocabularyPath string `mapstructure:"vocabulary_path"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	CORS     CORSConfig     `mapstructure:"cors"`
	App      AppConfig      `mapstructure:"app"`
}

var Cfg Config

// LoadConfig reads configs/config.yaml (or the given path), with APP_*
// environment variables overriding file values, and applies defaults.
func LoadConfig(path string) error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(path)
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("APP")
	viper.AutomaticEnv()
	viper.BindEnv("server.port", "APP_SERVER_PORT")
	viper.BindEnv("database.path", "APP_DATABASE_PATH")
	viper.BindEnv("app.vocabulary_path", "APP_VOCABULARY_PATH")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Warn("Config file not found, using defaults and environment variables")
		} else {
			slog.Error("Error reading config file", slog.Any("error", err))
			return err
		}
	}

	if err := viper.Unmarshal(&Cfg); err != nil {
		slog.Error("Error unmarshalling config", slog.Any("error", err))
		return err
	}

	if Cfg.Server.Port == "" {
		Cfg.Server.Port = DefaultServerPort
	}
	if Cfg.Database.Path == "" {
		Cfg.Database.Path = DefaultDatabasePath
	}
	if Cfg.Log.Level == "" {
		Cfg.Log.Level = DefaultLogLevel
	}
	if Cfg.Log.Format == "" {
		Cfg.Log.Format = DefaultLogFormat
	}
	if Cfg.App.SessionSize <= 0 {
		Cfg.App.SessionSize = DefaultSessionSize
	}
	if Cfg.App.DailyXPTarget <= 0 {
		Cfg.App.DailyXPTarget = DefaultDailyXPTarget
	}
	if Cfg.App.XPPerReview <= 0 {
		Cfg.App.XPPerReview = DefaultXPPerReview
	}
	if Cfg.App.HistoryLimit <= 0 {
		Cfg.App.HistoryLimit = DefaultHistoryLimit
	}
	if Cfg.App.VocabularyPath == "" {
		Cfg.App.VocabularyPath = DefaultVocabularyPath
	}
	if len(Cfg.CORS.AllowedOrigins) == 0 {
		Cfg.CORS.AllowedOrigins = []string{"*"}
	}
	if len(Cfg.CORS.AllowedMethods) == 0 {
		Cfg.CORS.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}

	slog.Info("Config loaded",
		slog.String("port", Cfg.Server.Port),
		slog.String("db_path", Cfg.Database.Path),
		slog.Int("session_size", Cfg.App.SessionSize),
	)
	return nil
}
