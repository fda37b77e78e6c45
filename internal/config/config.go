package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Credential names resolved from the automation platform's credential store.
// All five must exist before any queue work begins.
const (
	CredentialNexusAPI  = "KMD Nexus - produktion"
	CredentialNexusDB   = "KMD Nexus - database"
	CredentialXflow     = "Xflow - produktion"
	CredentialTracking  = "Odense SQL Server"
	CredentialReporting = "RoboA"
)

// Config holds all runtime configuration loaded from environment variables.
// ATS_URL, ATS_TOKEN and WORKQUEUE_DATABASE_URL are required; everything
// else has a default.
type Config struct {
	// Automation platform (credential store + queue ownership)
	ATSURL   string
	ATSToken string

	// Work queue database
	WorkqueueDatabaseURL string
	DBMaxConns           int32
	DBMinConns           int32

	// Remote call behaviour
	HTTPTimeout    time.Duration
	NexusRateLimit int // case-management API calls per second

	// Populator window
	DaysBack int

	// Civil timestamps on queue items are interpreted in this zone.
	Timezone string

	// Optional Pushgateway for end-of-run metrics. Empty disables the push.
	PushgatewayURL string
}

func Load() (*Config, error) {
	atsURL := os.Getenv("ATS_URL")
	if atsURL == "" {
		return nil, fmt.Errorf("ATS_URL is required")
	}
	atsToken := os.Getenv("ATS_TOKEN")
	if atsToken == "" {
		return nil, fmt.Errorf("ATS_TOKEN is required")
	}
	queueURL := os.Getenv("WORKQUEUE_DATABASE_URL")
	if queueURL == "" {
		return nil, fmt.Errorf("WORKQUEUE_DATABASE_URL is required")
	}

	return &Config{
		ATSURL:   atsURL,
		ATSToken: atsToken,

		WorkqueueDatabaseURL: queueURL,
		DBMaxConns:           int32(getInt("DB_MAX_CONNS", 10)),
		DBMinConns:           int32(getInt("DB_MIN_CONNS", 2)),

		HTTPTimeout:    getDuration("HTTP_TIMEOUT", 30*time.Second),
		NexusRateLimit: getInt("NEXUS_RATE_LIMIT", 5),

		DaysBack: getInt("DAYS_BACK", 4),

		Timezone: getEnv("TIMEZONE", "Europe/Copenhagen"),

		PushgatewayURL: os.Getenv("PUSHGATEWAY_URL"),
	}, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
