// internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port      int    `envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn warning error fatal panic"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text" validate:"oneof=text json"`

	DatabaseURL string `envconfig:"DATABASE_URL"`
	RedisAddr   string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB     int    `envconfig:"REDIS_DB" default:"0" validate:"gte=0"`
	ActionQueue string `envconfig:"ACTION_QUEUE" default:"trivia_actions" validate:"required"`

	RPCURL        string `envconfig:"RPC_URL" validate:"omitempty,url"`
	TxStatusURL   string `envconfig:"TX_STATUS_URL" validate:"omitempty,url"`
	BlockURL      string `envconfig:"BLOCK_URL" default:"https://rpc-mocha.pops.one/block" validate:"omitempty,url"`
	APIKey        string `envconfig:"API_KEY"`
	WalletAddress string `envconfig:"WALLET_ADDRESS"`
	BlobNamespace string `envconfig:"BLOB_NAMESPACE" default:"trivia"`

	QuestionAPIURL  string        `envconfig:"QUESTION_API_URL" validate:"omitempty,url"`
	QuestionAPIKey  string        `envconfig:"QUESTION_API_KEY"`
	QuestionModel   string        `envconfig:"QUESTION_MODEL"`
	QuestionTimeout time.Duration `envconfig:"QUESTION_TIMEOUT" default:"20s" validate:"gt=0"`
	QuestionRetries int           `envconfig:"QUESTION_RETRIES" default:"2" validate:"gte=0,lte=10"`

	RoundDuration time.Duration `envconfig:"ROUND_DURATION" default:"15s" validate:"gt=0"`
	BreakDuration time.Duration `envconfig:"BREAK_DURATION" default:"5s" validate:"gt=0"`
	LobbyTTL      time.Duration `envconfig:"LOBBY_TTL" default:"30m" validate:"gt=0"`

	JWTSecret       string        `envconfig:"JWT_SECRET_KEY"`
	TokenExpireTime time.Duration `envconfig:"TOKEN_EXPIRE_TIME" default:"1h" validate:"gte=0"`

	HistorianBatchSize     int           `envconfig:"HISTORIAN_BATCH_SIZE" default:"20" validate:"gt=0"`
	HistorianFlushInterval time.Duration `envconfig:"HISTORIAN_FLUSH_INTERVAL" default:"500ms" validate:"gt=0"`
	MatchInactivityTimeout time.Duration `envconfig:"MATCH_INACTIVITY_TIMEOUT" default:"10m" validate:"gt=0"`
}

var validate = validator.New()

// Load reads the environment (and .env, if present) into a validated Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LedgerEnabled reports whether settlement and match recording can run.
func (c Config) LedgerEnabled() bool {
	return c.RPCURL != "" && c.WalletAddress != ""
}

// Logger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c Config) Logger() *logrus.Logger {
	logger := logrus.New()
	if level, err := logrus.ParseLevel(c.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if c.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
