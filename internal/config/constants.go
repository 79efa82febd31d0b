// internal/config/constants.go
package config

import "time"

// アプリケーション情報
const (
	AppName    = "MalayalamTrainer"
	AppVersion = "1.0.0"
)

// デフォルト設定値
const (
	DefaultServerPort        = ":8080"
	DefaultLogLevel          = "info"
	DefaultDatabaseDriver    = "sqlite"
	DefaultSQLitePath        = "malayalam_trainer.db"
	DefaultQuizQuestionCount = 5
	DefaultQuizAdvanceDelay  = 1 * time.Second
	DefaultSessionLimit      = 100
)

// 永続化レコードのキー。SettingsKey は将来のアプリ設定用に予約。
const (
	UserProgressKey = "malayalam_trainer:user_progress"
	SettingsKey     = "malayalam_trainer:settings"
)
