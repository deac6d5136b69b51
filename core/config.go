package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName  string
		Env      string // DEV (default), TEST, QA, PROD
		Debug    bool
		TestMode bool
		Build    string
		WorkDir  string

		RollbarToken string

		Server   ServerConfig
		Upstream UpstreamConfig
		Store    StoreConfig
		Offline  OfflineConfig
	}

	// ServerConfig configures the local sync gateway.
	ServerConfig struct {
		Addr            string
		DebugHost       string
		ShutdownTimeout time.Duration
	}

	// UpstreamConfig points at the e-learning REST API and the web app
	// origin serving its static assets.
	UpstreamConfig struct {
		BaseURL    string // REST API, e.g. http://host/api
		AppBaseURL string // static assets + app shell
		Timeout    time.Duration
	}

	StoreConfig struct {
		Path        string // SQLite file path; ":memory:" for tests
		BusyTimeout time.Duration
	}

	OfflineConfig struct {
		// CacheMaxAge bounds the age of cached API responses served while
		// offline. Zero serves cached data indefinitely.
		CacheMaxAge time.Duration

		// PreloadIdleInterval is the pause between background preload slices.
		PreloadIdleInterval time.Duration
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Darasa")
	v.SetDefault("build", "dev")
	v.SetDefault("serverAddr", ":8090")
	v.SetDefault("serverDebugHost", "localhost:6060")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("upstreamBaseURL", "http://localhost:8080/api")
	v.SetDefault("upstreamAppBaseURL", "http://localhost:8080")
	v.SetDefault("upstreamTimeout", 10*time.Second)
	v.SetDefault("storePath", filepath.Join("data", "darasa.db"))
	v.SetDefault("storeBusyTimeout", 5*time.Second)
	v.SetDefault("cacheMaxAge", time.Duration(0))
	v.SetDefault("preloadIdleInterval", 500*time.Millisecond)

	env := os.Getenv("ENV")
	var testMode bool
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		testMode = true
	}
	v.SetEnvPrefix(env)

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		AppName:      v.GetString("appName"),
		Env:          env,
		Debug:        v.GetBool("debug"),
		TestMode:     testMode,
		Build:        v.GetString("build"),
		WorkDir:      wd,
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Addr:            v.GetString("serverAddr"),
			DebugHost:       v.GetString("serverDebugHost"),
			ShutdownTimeout: v.GetDuration("serverShutdownTimeout"),
		},
		Upstream: UpstreamConfig{
			BaseURL:    v.GetString("upstreamBaseURL"),
			AppBaseURL: v.GetString("upstreamAppBaseURL"),
			Timeout:    v.GetDuration("upstreamTimeout"),
		},
		Store: StoreConfig{
			Path:        v.GetString("storePath"),
			BusyTimeout: v.GetDuration("storeBusyTimeout"),
		},
		Offline: OfflineConfig{
			CacheMaxAge:         v.GetDuration("cacheMaxAge"),
			PreloadIdleInterval: v.GetDuration("preloadIdleInterval"),
		},
	}
}
