package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server Server
	Local  Local
	Remote Remote
	Sync   Sync
}

type Server struct {
	Port string
	Env  string
}

// Local configures the embedded SQLite store.
type Local struct {
	Path string
}

// Remote configures the system of record. Kind selects the driver:
// "rest" talks to a row-oriented HTTP API, "postgres" connects directly
// with a SQL driver.
type Remote struct {
	Kind    string
	BaseURL string
	Token   string
	DSN     string
	Timeout time.Duration
}

type Sync struct {
	MaxRetries   int
	PollInterval time.Duration
	ProbeTimeout time.Duration
}

func Load() *Config {
	// .env is optional; environment variables win either way.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("LOCAL_DB_PATH", "./shop_manager.db")
	viper.SetDefault("REMOTE_KIND", "rest")
	viper.SetDefault("REMOTE_BASE_URL", "http://localhost:9090")
	viper.SetDefault("REMOTE_TIMEOUT_SECONDS", 15)
	viper.SetDefault("SYNC_MAX_RETRIES", 10)
	viper.SetDefault("CONNECTIVITY_POLL_SECONDS", 30)
	viper.SetDefault("CONNECTIVITY_PROBE_TIMEOUT_SECONDS", 5)

	return &Config{
		Server: Server{
			Port: viper.GetString("SERVER_PORT"),
			Env:  viper.GetString("SERVER_ENV"),
		},
		Local: Local{
			Path: viper.GetString("LOCAL_DB_PATH"),
		},
		Remote: Remote{
			Kind:    viper.GetString("REMOTE_KIND"),
			BaseURL: viper.GetString("REMOTE_BASE_URL"),
			Token:   viper.GetString("REMOTE_TOKEN"),
			DSN:     viper.GetString("REMOTE_DSN"),
			Timeout: time.Duration(viper.GetInt("REMOTE_TIMEOUT_SECONDS")) * time.Second,
		},
		Sync: Sync{
			MaxRetries:   viper.GetInt("SYNC_MAX_RETRIES"),
			PollInterval: time.Duration(viper.GetInt("CONNECTIVITY_POLL_SECONDS")) * time.Second,
			ProbeTimeout: time.Duration(viper.GetInt("CONNECTIVITY_PROBE_TIMEOUT_SECONDS")) * time.Second,
		},
	}
}
