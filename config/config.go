package config

import (
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	APIBaseURL  string        `envconfig:"API_BASE_URL"  default:"http://localhost:3000/api"`
	ListenAddr  string        `envconfig:"LISTEN_ADDR"   default:":8090"`
	LogLevel    string        `envconfig:"LOG_LEVEL"     default:"info"`
	SessionFile string        `envconfig:"SESSION_FILE"  default:".sweetstock/session.json"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT"  default:"10s"`
}

var (
	config Config
	once   sync.Once
)

// LoadConfig reads .env if present, then the environment. Safe to call more
// than once; only the first call does the work.
func LoadConfig(logger *logrus.Logger) *Config {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			logger.Warnf("Error loading .env file (but continuing): %v", err)
		} else if err == nil {
			logger.Info("Loaded configuration from .env file")
		}

		if err := envconfig.Process("", &config); err != nil {
			logger.Fatalf("Failed to process configuration from environment variables: %v", err)
		}

		logger.Infof("Configuration loaded: API=%s, Listen=%s, LogLevel=%s", config.APIBaseURL, config.ListenAddr, config.LogLevel)
	})
	return &config
}
