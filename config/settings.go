package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultSourceURL    = "http://laravel:8000/api/services"
	DefaultPageSize     = 200
	DefaultAPIKeyHeader = "X-API-Key"
)

// Settings carries everything the sync-services command reads from the
// environment. Database credentials are read separately by ConnectDatabase.
type Settings struct {
	SourceURL       string        `validate:"required,url"`
	PageSize        int           `validate:"min=1,max=1000"`
	HTTPTimeout     time.Duration `validate:"min=0"`
	APIKey          string
	APIKeyHeader    string `validate:"required"`
	RateLimitPerMin int    `validate:"min=0"`

	// PhoneRegion switches natural-key matching to E.164 normalisation.
	// Empty keeps exact matching.
	PhoneRegion string `validate:"omitempty,len=2,alpha"`

	RedisAddress string
	LockTTL      time.Duration `validate:"min=0"`

	ReportTopic  string
	ReportBucket string
	LogLevel     string `validate:"omitempty,oneof=trace debug info warn warning error fatal panic"`
}

var validate = validator.New()

// LoadSettings reads SYNC_* and related variables, applying defaults for
// anything unset or unparsable.
func LoadSettings() (*Settings, error) {
	s := &Settings{
		SourceURL:       envString("SYNC_SOURCE_URL", DefaultSourceURL),
		PageSize:        intFromEnv("SYNC_PAGE_SIZE", DefaultPageSize),
		HTTPTimeout:     time.Duration(intFromEnv("SYNC_HTTP_TIMEOUT_SECONDS", 60)) * time.Second,
		APIKey:          strings.TrimSpace(os.Getenv("SYNC_API_KEY")),
		APIKeyHeader:    envString("SYNC_API_KEY_HEADER", DefaultAPIKeyHeader),
		RateLimitPerMin: intFromEnv("SYNC_RATE_LIMIT_PER_MIN", 0),
		PhoneRegion:     strings.ToUpper(strings.TrimSpace(os.Getenv("SYNC_PHONE_REGION"))),
		RedisAddress:    strings.TrimSpace(os.Getenv("REDIS_ADDRESS")),
		LockTTL:         time.Duration(intFromEnv("SYNC_LOCK_TTL_SECONDS", 1800)) * time.Second,
		ReportTopic:     strings.TrimSpace(os.Getenv("SYNC_REPORT_TOPIC")),
		ReportBucket:    strings.TrimSpace(os.Getenv("SYNC_REPORT_GCS_BUCKET")),
		LogLevel:        strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			parts := make([]string, 0, len(verrs))
			for _, ve := range verrs {
				parts = append(parts, fmt.Sprintf("%s failed %q", ve.Field(), ve.Tag()))
			}
			return fmt.Errorf("invalid settings: %s", strings.Join(parts, ", "))
		}
		return err
	}
	return nil
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
