package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string

	DBDriver  string
	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string
	// PostgresDSN and SQLitePath are used when DBDriver selects them.
	PostgresDSN string
	SQLitePath  string
	AutoMigrate bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	IdempTTLSecs int

	GatewayMode         string
	GatewayURL          string
	GatewayAPIKey       string
	GatewayTimeout      time.Duration
	GatewayMaxAttempts  int
	GatewayRetryBackoff time.Duration
	GatewaySimDelay     time.Duration

	EventSink      string
	KafkaBrokers   []string
	KafkaTopic     string
	EventQueueSize int

	SweepBatch int

	PolicyFile string
	Policy     Policy
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getenvDuration(k string, d time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if n, err := time.ParseDuration(v); err == nil {
			return n
		}
	}
	return d
}

// Load reads .env when present, then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	c := &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		DBDriver:  getenv("DB_DRIVER", "mysql"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "marketplace"),
		MySQLUser: getenv("MYSQL_USER", "marketplace"),
		MySQLPass: getenv("MYSQL_PASS", "marketplace"),

		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		SQLitePath:  getenv("SQLITE_PATH", "marketplace.db"),
		AutoMigrate: getenv("DB_AUTO_MIGRATE", "false") == "true",

		RedisAddr: getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:   getenvInt("REDIS_DB", 0),
		// empty for an unauthenticated redis
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		IdempTTLSecs:  getenvInt("IDEMPOTENCY_TTL_SECONDS", 300),

		GatewayMode:         getenv("GATEWAY_MODE", "simulated"),
		GatewayURL:          os.Getenv("GATEWAY_URL"),
		GatewayAPIKey:       os.Getenv("GATEWAY_API_KEY"),
		GatewayTimeout:      getenvDuration("GATEWAY_TIMEOUT", 10*time.Second),
		GatewayMaxAttempts:  getenvInt("GATEWAY_MAX_ATTEMPTS", 3),
		GatewayRetryBackoff: getenvDuration("GATEWAY_RETRY_BACKOFF", 500*time.Millisecond),
		GatewaySimDelay:     getenvDuration("GATEWAY_SIM_DELAY", 0),

		EventSink:      getenv("EVENT_SINK", "log"),
		KafkaTopic:     getenv("KAFKA_TOPIC", "marketplace.events"),
		EventQueueSize: getenvInt("EVENT_QUEUE_SIZE", 1024),

		SweepBatch: getenvInt("SWEEP_BATCH", 500),

		PolicyFile: os.Getenv("POLICY_FILE"),
		Policy:     DefaultPolicy(),
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				c.KafkaBrokers = append(c.KafkaBrokers, b)
			}
		}
	}
	return c
}

// LoadPolicy overlays POLICY_FILE onto the default policy, if one is set.
func (c *Config) LoadPolicy() error {
	if c.PolicyFile == "" {
		return nil
	}
	p, err := LoadPolicyFile(c.PolicyFile, c.Policy)
	if err != nil {
		return err
	}
	c.Policy = p
	return nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return errors.New("missing POSTGRES_DSN")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.GatewayMode {
	case "simulated":
	case "http":
		if c.GatewayURL == "" {
			return errors.New("GATEWAY_MODE=http needs GATEWAY_URL")
		}
	default:
		return fmt.Errorf("unsupported GATEWAY_MODE %q", c.GatewayMode)
	}
	if c.GatewayTimeout <= 0 || c.GatewayMaxAttempts < 1 {
		return errors.New("GATEWAY_TIMEOUT and GATEWAY_MAX_ATTEMPTS must be positive")
	}
	switch c.EventSink {
	case "log", "none":
	case "kafka":
		if len(c.KafkaBrokers) == 0 || c.KafkaTopic == "" {
			return errors.New("EVENT_SINK=kafka needs KAFKA_BROKERS and KAFKA_TOPIC")
		}
	default:
		return fmt.Errorf("unsupported EVENT_SINK %q", c.EventSink)
	}
	return c.Policy.Validate()
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

// DSN is the connection string for the configured driver.
func (c *Config) DSN() string {
	switch c.DBDriver {
	case "postgres":
		return c.PostgresDSN
	case "sqlite":
		return c.SQLitePath
	default:
		return c.MySQLDSN()
	}
}
