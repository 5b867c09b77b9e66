package confs

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Rolling-window defaults, expressed in one-second samples: trim to the
// last week's worth once a month's worth has accumulated.
const (
	defaultMonthSamples  = 2592000
	defaultWeekSamples   = 604800
	defaultFlushInterval = 30 * time.Second
	defaultListenAddr    = "0.0.0.0:3536"
)

// LoadConfig loads environment variables from a .env file if present
// and validates essential settings when needed.
func LoadConfig() error {
	// Load .env if it exists; ignore error if file not found
	if err := godotenv.Load(); err != nil {
		// Only log when the file truly doesn't exist; not an error for runtime
		if !os.IsNotExist(err) {
			log.Printf("warning: could not load .env: %v", err)
		}
	}
	return nil
}

// ListenAddr returns the HTTP/websocket listen address.
func ListenAddr() string {
	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		return addr
	}
	return defaultListenAddr
}

// FlushInterval returns how often pending readings are flushed to the
// durable store.
func FlushInterval() time.Duration {
	raw := os.Getenv("FLUSH_INTERVAL")
	if raw == "" {
		return defaultFlushInterval
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("warning: invalid FLUSH_INTERVAL %q, using default", raw)
		return defaultFlushInterval
	}
	return d
}

// MonthSamples returns the retained-window size that triggers the rolling
// trim.
func MonthSamples() int {
	return intEnv("HISTORY_MONTH_SAMPLES", defaultMonthSamples)
}

// WeekSamples returns how many samples survive a rolling trim.
func WeekSamples() int {
	return intEnv("HISTORY_WEEK_SAMPLES", defaultWeekSamples)
}

func intEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("warning: invalid %s %q, using default", key, raw)
		return fallback
	}
	return n
}
