package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries every externally tunable knob. Values come from the
// environment with sensible defaults; nothing is hardcoded at call sites.
type Config struct {
	DBDriver string
	DBSource string
	Port     string

	// Half-order coordinator knobs.
	SessionTTL           time.Duration
	CustomerCancelWindow time.Duration
	ExpirySweepInterval  time.Duration
	LockWaitTimeout      time.Duration
}

// Load reads the configuration from the environment.
func Load() *Config {
	return &Config{
		DBDriver: getEnv("DB_DRIVER", "mysql"),
		DBSource: getEnv("DB_DSN", "root:root@tcp(127.0.0.1:3306)/splite_eat?charset=utf8mb4&parseTime=True&loc=UTC"),
		Port:     getEnv("PORT", "8080"),

		SessionTTL:           minutesEnv("HALF_ORDER_TTL_MINUTES", 30),
		CustomerCancelWindow: minutesEnv("CUSTOMER_CANCEL_WINDOW_MINUTES", 5),
		ExpirySweepInterval:  secondsEnv("EXPIRY_JOB_INTERVAL_SECONDS", 60),
		LockWaitTimeout:      secondsEnv("LOCK_WAIT_TIMEOUT_SECONDS", 3),
	}
}

// Default returns the configuration used by tests: production defaults
// without touching the environment.
func Default() *Config {
	return &Config{
		SessionTTL:           30 * time.Minute,
		CustomerCancelWindow: 5 * time.Minute,
		ExpirySweepInterval:  60 * time.Second,
		LockWaitTimeout:      3 * time.Second,
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func minutesEnv(key string, fallback int) time.Duration {
	return time.Duration(intEnv(key, fallback)) * time.Minute
}

func secondsEnv(key string, fallback int) time.Duration {
	return time.Duration(intEnv(key, fallback)) * time.Second
}
