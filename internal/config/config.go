// internal/config/config.go
package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // sqlite | postgres | memory
	URL    string `mapstructure:"url"`    // postgres接続文字列 または sqliteファイルパス
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type AppConfig struct {
	QuizQuestionCount  int           `mapstructure:"quiz_question_count"`
	QuizAdvanceDelay   time.Duration `mapstructure:"quiz_advance_delay"`
	SessionLimit       int           `mapstructure:"session_limit"` // 同時に保持するセッション数の上限
	ValidateContentIDs bool          `mapstructure:"validate_content_ids"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	App      AppConfig      `mapstructure:"app"`
	Log      LogConfig      `mapstructure:"log"`
	CORS     CORSConfig     `mapstructure:"cors"`
}

var Cfg Config

func LoadConfig(path string) error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(path)
	viper.AddConfigPath(".")

	// 環境変数による上書き (例: APP_DATABASE_URL)
	viper.SetEnvPrefix("APP")
	viper.AutomaticEnv()
	viper.BindEnv("database.driver", "APP_DATABASE_DRIVER")
	viper.BindEnv("database.url", "APP_DATABASE_URL")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Warning: Config file not found. Using default settings or environment variables if available.")
		} else {
			log.Printf("Error reading config file: %s\n", err)
			return err
		}
	}

	if err := viper.Unmarshal(&Cfg); err != nil {
		log.Printf("Error unmarshalling config: %s\n", err)
		return err
	}

	// --- デフォルト値の設定 ---
	if Cfg.Server.Port == "" {
		Cfg.Server.Port = DefaultServerPort
	}
	if Cfg.Database.Driver == "" {
		Cfg.Database.Driver = DefaultDatabaseDriver
	}
	if Cfg.Database.URL == "" && Cfg.Database.Driver == "sqlite" {
		Cfg.Database.URL = DefaultSQLitePath
	}
	if Cfg.App.QuizQuestionCount <= 0 {
		Cfg.App.QuizQuestionCount = DefaultQuizQuestionCount
	}
	// "0s" は自動進行オフの明示指定なので、未設定の場合のみデフォルトを適用する
	if !viper.IsSet("app.quiz_advance_delay") {
		Cfg.App.QuizAdvanceDelay = DefaultQuizAdvanceDelay
	} else if Cfg.App.QuizAdvanceDelay < 0 {
		Cfg.App.QuizAdvanceDelay = DefaultQuizAdvanceDelay
	}
	if Cfg.App.SessionLimit <= 0 {
		Cfg.App.SessionLimit = DefaultSessionLimit
	}
	if !viper.IsSet("app.validate_content_ids") {
		Cfg.App.ValidateContentIDs = true
	}
	if Cfg.Log.Level == "" {
		Cfg.Log.Level = DefaultLogLevel
	}

	log.Println("Config loaded successfully")
	log.Printf("Server Port: %s", Cfg.Server.Port)
	log.Printf("Database Driver: %s", Cfg.Database.Driver)
	log.Printf("Quiz Question Count: %d", Cfg.App.QuizQuestionCount)

	return nil
}
