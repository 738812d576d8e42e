package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

const DefaultURL = "https://www.gov.uk/government/publications/community-amateur-sports-clubs-casc-registered-with-hmrc--2"

type Config struct {
	DBPath string

	SourceURL      string
	OrgIDPrefix    string
	AliasFile      string
	LinkExtensions string
	UserAgent      string

	HTTPTimeoutMs    int
	FetchRateLimit   int
	FetchMaxAttempts int
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath: getEnv("DB_PATH", filepath.Join(cwd, "data", "cascs.db")),

		SourceURL:      getEnv("CASC_URL", DefaultURL),
		OrgIDPrefix:    getEnv("CASC_ORG_ID_PREFIX", "GB-CASC"),
		AliasFile:      getEnv("CASC_ALIAS_FILE", "cascs_id_lookup.csv"),
		LinkExtensions: getEnv("CASC_LINK_EXTS", ".xlsx,.csv"),
		UserAgent:      getEnv("HTTP_USER_AGENT", "cascs-registry-fetcher"),

		HTTPTimeoutMs:    getEnvInt("HTTP_TIMEOUT_MS", 30000),
		FetchRateLimit:   getEnvInt("FETCH_RATE_LIMIT_RPS", 2),
		FetchMaxAttempts: getEnvInt("FETCH_MAX_ATTEMPTS", 5),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
