// internal/infrastructure/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Message sources
const (
	SourceMbox  = "mbox"
	SourceGmail = "gmail"
	SourceIMAP  = "imap"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion     string
	LogLevel       string
	LogDevelopment bool

	// Input
	Source      string
	MboxPath    string
	ProfilePath string

	// Output
	CSVPath         string
	ChartPath       string
	ReportPDFPath   string
	MetricsTextfile string

	// Watch mode
	WatchInterval time.Duration
	Port          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration

	// Gmail
	GmailClientID     string
	GmailClientSecret string
	GmailRefreshToken string
	GmailQuery        string
	GmailRateLimit    int

	// IMAP
	IMAPAddr           string
	IMAPUsername       string
	IMAPPassword       string
	IMAPKeyringAccount string
	IMAPMailbox        string
	IMAPFromFilter     string
	IMAPSinceDays      int

	// MongoDB message log
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// Observation store
	ObservationDSN string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	// Set defaults and override with env vars
	config := &Config{
		AppVersion:     getEnv("APP_VERSION", "1.0.0"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogDevelopment: getEnvAsBool("LOG_DEVELOPMENT", false),

		Source:      strings.ToLower(getEnv("SOURCE", SourceMbox)),
		MboxPath:    getEnv("MBOX_PATH", filepath.Join("Skyscanner.mbox", "mbox")),
		ProfilePath: getEnv("PROFILE_PATH", ""),

		CSVPath:         getEnv("CSV_PATH", "prices.csv"),
		ChartPath:       getEnv("CHART_PATH", ""),
		ReportPDFPath:   getEnv("REPORT_PDF_PATH", ""),
		MetricsTextfile: getEnv("METRICS_TEXTFILE", ""),

		WatchInterval: time.Duration(getEnvAsInt("WATCH_INTERVAL", 0)) * time.Second,
		Port:          getEnv("PORT", "9090"),
		ReadTimeout:   time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout:  time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),
		GmailQuery:        getEnv("GMAIL_QUERY", "from:skyscanner"),
		GmailRateLimit:    getEnvAsInt("GMAIL_RATE_LIMIT", 5),

		IMAPAddr:           getEnv("IMAP_ADDR", "imap.gmail.com:993"),
		IMAPUsername:       getEnv("IMAP_USERNAME", ""),
		IMAPPassword:       getEnv("IMAP_PASSWORD", ""),
		IMAPKeyringAccount: getEnv("IMAP_KEYRING_ACCOUNT", ""),
		IMAPMailbox:        getEnv("IMAP_MAILBOX", "INBOX"),
		IMAPFromFilter:     getEnv("IMAP_FROM_FILTER", "skyscanner"),
		IMAPSinceDays:      getEnvAsInt("IMAP_SINCE_DAYS", 365),

		MongoURI:      getEnv("MONGODB_DSN", ""),
		MongoDB:       getEnv("MONGO_DB", "flight_tracker"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		ObservationDSN: getEnv("OBSERVATION_DSN", ""),
	}

	return config, nil
}

// ResolvedChartPath is CHART_PATH, or flight_prices_plot.png next to the CSV
func (c *Config) ResolvedChartPath() string {
	if c.ChartPath != "" {
		return c.ChartPath
	}
	return filepath.Join(filepath.Dir(c.CSVPath), "flight_prices_plot.png")
}

// Normalize lower-cases values that may also come from command-line flags
func (c *Config) Normalize() {
	c.Source = strings.ToLower(strings.TrimSpace(c.Source))
}

// Validate reports configuration that cannot work
func (c *Config) Validate() error {
	var errs []error

	switch c.Source {
	case SourceMbox:
		if c.MboxPath == "" {
			errs = append(errs, errors.New("MBOX_PATH is required for the mbox source"))
		}
	case SourceGmail:
		if c.GmailClientID == "" || c.GmailClientSecret == "" || c.GmailRefreshToken == "" {
			errs = append(errs, errors.New("gmail source needs GMAIL_CLIENT_ID, GMAIL_CLIENT_SECRET and GMAIL_REFRESH_TOKEN"))
		}
		if c.GmailRateLimit <= 0 {
			errs = append(errs, errors.New("GMAIL_RATE_LIMIT must be positive"))
		}
	case SourceIMAP:
		if c.IMAPAddr == "" || c.IMAPUsername == "" {
			errs = append(errs, errors.New("imap source needs IMAP_ADDR and IMAP_USERNAME"))
		}
		if c.IMAPPassword == "" && c.IMAPKeyringAccount == "" {
			errs = append(errs, errors.New("imap source needs IMAP_PASSWORD or IMAP_KEYRING_ACCOUNT"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown SOURCE %q (want %s, %s or %s)", c.Source, SourceMbox, SourceGmail, SourceIMAP))
	}

	if c.CSVPath == "" {
		errs = append(errs, errors.New("CSV_PATH is required"))
	}
	if c.WatchInterval < 0 {
		errs = append(errs, errors.New("WATCH_INTERVAL must not be negative"))
	}

	return errors.Join(errs...)
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
