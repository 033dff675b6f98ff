package config

import (
	"log"
	"os"
)

type Config struct {
	APIBaseURL    string
	WSURL         string
	SessionPath   string
	SessionSecret string
	LogMode       string
	LogFileEnable bool
	LogFilename   string
}

func Load() *Config {
	cfg := &Config{
		APIBaseURL:    getEnv("POS_API_URL", "http://localhost:8081"),
		WSURL:         getEnv("POS_WS_URL", "ws://localhost:8081/ws"),
		SessionPath:   getEnv("POS_SESSION_PATH", "terminal.db"),
		SessionSecret: getEnv("POS_SESSION_SECRET", ""),
		LogMode:       getEnv("POS_LOG_MODE", "development"),
		LogFileEnable: getEnv("POS_LOG_FILE", "") != "",
		LogFilename:   getEnv("POS_LOG_FILE", "terminal.log"),
	}

	if cfg.SessionSecret == "" {
		log.Println("[WARN] POS_SESSION_SECRET not set, using an insecure default; set it for real deployments")
		cfg.SessionSecret = "terminal-local-secret"
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
