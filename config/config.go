package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Default listing pages of the built-in sources
const (
	DefaultNoFluffJobsURL = "https://nofluffjobs.com/pl/backend?criteria=seniority%3Djunior,mid"
	DefaultJustJoinITURL  = "https://justjoin.it/job-offers/all-locations/go"
)

// Config represents the application configuration
type Config struct {
	// Storage
	DataDir      string
	DatabasePath string
	SourcesFile  string

	// Crawler configuration
	RequestLimit       int
	RequestDelay       time.Duration
	FetchTimeout       time.Duration
	CrawlInterval      time.Duration
	RunOnce            bool
	MaxParallelSources int
	BlockTime          time.Duration

	// Memcache configuration, empty address disables the block cache
	MemcacheAddr string

	// Redis configuration, empty address disables publishing
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Summarizer
	Summarizer       string
	SummarizerURL    string
	SummarizerModel  string
	SummarizerAPIKey string

	// URLs for the built-in sources, empty disables a source
	NoFluffJobsURL string
	JustJoinITURL  string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	dataDir := getEnv("DATA_DIR", "./data")

	return &Config{
		DataDir:      dataDir,
		DatabasePath: getEnv("DATABASE_PATH", filepath.Join(dataDir, "jobs.db")),
		SourcesFile:  os.Getenv("SOURCES_FILE"),

		RequestLimit:       getEnvInt("REQUEST_LIMIT", 20),
		RequestDelay:       time.Duration(getEnvInt("REQUEST_DELAY_MS", 1000)) * time.Millisecond,
		FetchTimeout:       time.Duration(getEnvInt("FETCH_TIMEOUT_SECONDS", 30)) * time.Second,
		CrawlInterval:      time.Duration(getEnvInt("CRAWL_INTERVAL_SECONDS", 3600)) * time.Second,
		RunOnce:            getEnvBool("RUN_ONCE", false),
		MaxParallelSources: getEnvInt("MAX_PARALLEL_SOURCES", 2),
		BlockTime:          time.Duration(getEnvInt("BLOCK_TIME_SECONDS", 500)) * time.Second,

		MemcacheAddr: os.Getenv("MEMCACHE_ADDR"),

		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		RedisStream:          getEnv("REDIS_STREAM", "jobs"),
		RedisStreamCount:     getEnvInt("REDIS_STREAM_COUNT", 1),
		RedisStreamMaxLength: getEnvInt("REDIS_STREAM_MAX_LENGTH", 1000),

		Summarizer:       getEnv("SUMMARIZER", "extractive"),
		SummarizerURL:    os.Getenv("SUMMARIZER_URL"),
		SummarizerModel:  os.Getenv("SUMMARIZER_MODEL"),
		SummarizerAPIKey: os.Getenv("SUMMARIZER_API_KEY"),

		NoFluffJobsURL: getEnvAllowEmpty("NOFLUFFJOBS_URL", DefaultNoFluffJobsURL),
		JustJoinITURL:  getEnvAllowEmpty("JUSTJOINIT_URL", DefaultJustJoinITURL),

		Environment: getEnv("JOBCRAWLER_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the worker cannot run with
func (c *Config) Validate() error {
	var problems []string

	if c.DatabasePath == "" {
		problems = append(problems, "DATABASE_PATH must not be empty")
	}
	if c.RequestLimit < 0 {
		problems = append(problems, "REQUEST_LIMIT must not be negative")
	}
	if c.RequestDelay < 0 {
		problems = append(problems, "REQUEST_DELAY_MS must not be negative")
	}
	if c.FetchTimeout <= 0 {
		problems = append(problems, "FETCH_TIMEOUT_SECONDS must be positive")
	}
	if !c.RunOnce && c.CrawlInterval <= 0 {
		problems = append(problems, "CRAWL_INTERVAL_SECONDS must be positive")
	}
	if c.MaxParallelSources <= 0 {
		problems = append(problems, "MAX_PARALLEL_SOURCES must be positive")
	}
	if c.RedisAddr != "" && c.RedisStreamCount <= 0 {
		problems = append(problems, "REDIS_STREAM_COUNT must be positive")
	}
	switch c.Summarizer {
	case "extractive":
	case "llm":
		if c.SummarizerAPIKey == "" {
			problems = append(problems, "SUMMARIZER_API_KEY is required for the llm summarizer")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown SUMMARIZER %q", c.Summarizer))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// IsProduction reports whether the worker runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAllowEmpty distinguishes unset (default) from set-but-empty (disabled)
func getEnvAllowEmpty(key, defaultValue string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	return strings.TrimSpace(value)
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return b
}
