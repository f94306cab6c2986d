package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// SessionTokenTTL is the fixed lifetime of an issued session token.
const SessionTokenTTL = 24 * time.Hour

// Supported credential store backends.
const (
	StoreDynamoDB = "dynamodb"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Store    StoreConfig
	Postgres PostgresConfig
	AWS      AWSConfig
	Agent    AgentConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level                string
	CloudWatchGroup      string
	FlushIntervalSeconds int
}

// AuthConfig defines token and password hashing parameters.
type AuthConfig struct {
	JWTSecret    string
	JWTAlgorithm string
	TokenTTL     time.Duration
	BcryptCost   int
}

// StoreConfig selects the credential store backend.
type StoreConfig struct {
	Kind             string
	DynamoDBTable    string
	DynamoDBEndpoint string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// AWSConfig holds shared SDK settings.
type AWSConfig struct {
	Region string
}

// AgentConfig identifies the Bedrock agent used by the chat endpoint.
type AgentConfig struct {
	AgentID        string
	AgentAliasID   string
	RefusalMessage string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "research-chat"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Logger: LoggerConfig{
			Level:                getEnv("LOG_LEVEL", "info"),
			CloudWatchGroup:      os.Getenv("LOG_CLOUDWATCH_GROUP"),
			FlushIntervalSeconds: getEnvAsInt("LOG_FLUSH_INTERVAL_SECONDS", 5),
		},
		Auth: AuthConfig{
			JWTSecret:    os.Getenv("JWT_SECRET"),
			JWTAlgorithm: getEnv("JWT_ALGORITHM", "HS256"),
			TokenTTL:     SessionTokenTTL,
			BcryptCost:   getEnvAsInt("AUTH_BCRYPT_COST", 10),
		},
		Store: StoreConfig{
			Kind:             strings.ToLower(getEnv("CREDENTIAL_STORE", StoreDynamoDB)),
			DynamoDBTable:    os.Getenv("DYNAMODB_TABLE"),
			DynamoDBEndpoint: os.Getenv("DYNAMODB_ENDPOINT"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		AWS: AWSConfig{
			Region: os.Getenv("AWS_REGION"),
		},
		Agent: AgentConfig{
			AgentID:        getEnv("BEDROCK_AGENT_ID", "your-agent-id"),
			AgentAliasID:   getEnv("BEDROCK_AGENT_ALIAS_ID", "your-alias-id"),
			RefusalMessage: os.Getenv("BEDROCK_REFUSAL_MESSAGE"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations the service cannot start with.
func (c *Config) Validate() error {
	switch c.Auth.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("unsupported JWT_ALGORITHM %q", c.Auth.JWTAlgorithm)
	}

	switch c.Store.Kind {
	case StoreDynamoDB:
		if c.Store.DynamoDBTable == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required for the %s store", StoreDynamoDB)
		}
	case StorePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for the %s store", StorePostgres)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown CREDENTIAL_STORE %q", c.Store.Kind)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// FlushInterval returns how often buffered remote log output is shipped.
func (l LoggerConfig) FlushInterval() time.Duration {
	if l.FlushIntervalSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(l.FlushIntervalSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
