package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // zone data for hosts without it

	"github.com/joho/godotenv"
)

const (
	DefaultBaseURL    = "https://open.neis.go.kr/hub/mealServiceDietInfo"
	DefaultOfficeCode = "J10"     // 서울특별시교육청
	DefaultSchoolCode = "7531100" // 서울특별시교육청 관할 학교
)

// Config holds the configuration for the application.
type Config struct {
	NEISBaseURL string
	OfficeCode  string
	SchoolCode  string

	Port             string
	Location         *time.Location
	AutoFetchDelay   time.Duration
	ShowErrorDetails bool

	// Empty disables the diagnostics store.
	MetricsDBPath string

	// Telegram Config (optional as a pair)
	TelegramBotToken   string
	TelegramWebhookURL string
	// Empty allows every user.
	TelegramAllowedUserIDs []int64
}

// TelegramEnabled reports whether the bot surface should be started.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != ""
}

// NewFromEnv creates a new Config object from environment variables.
// A .env file in the working directory is loaded first when present;
// variables already set in the process win over the file.
func NewFromEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	tzName := getEnv("TIMEZONE", "Asia/Seoul")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tzName, err)
	}

	delay := 500 * time.Millisecond
	if v := os.Getenv("AUTO_FETCH_DELAY"); v != "" {
		delay, err = time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid AUTO_FETCH_DELAY %q: %w", v, err)
		}
		if delay < 0 {
			return nil, fmt.Errorf("invalid AUTO_FETCH_DELAY %q: must not be negative", v)
		}
	}

	showDetails := false
	if v := os.Getenv("SHOW_ERROR_DETAILS"); v != "" {
		showDetails, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SHOW_ERROR_DETAILS %q: %w", v, err)
		}
	}

	telegramBotToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	telegramWebhookURL := os.Getenv("TELEGRAM_WEBHOOK_URL")
	if telegramBotToken != "" && telegramWebhookURL == "" {
		return nil, fmt.Errorf("TELEGRAM_WEBHOOK_URL environment variable not set")
	}

	allowedIDs, err := parseUserIDs(os.Getenv("TELEGRAM_ALLOWED_USER_IDS"))
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS: %w", err)
	}

	return &Config{
		NEISBaseURL:        getEnv("NEIS_BASE_URL", DefaultBaseURL),
		OfficeCode:         getEnv("NEIS_OFFICE_CODE", DefaultOfficeCode),
		SchoolCode:         getEnv("NEIS_SCHOOL_CODE", DefaultSchoolCode),
		Port:               getEnv("PORT", "8080"),
		Location:           loc,
		AutoFetchDelay:     delay,
		ShowErrorDetails:   showDetails,
		MetricsDBPath:      os.Getenv("METRICS_DB_PATH"),
		TelegramBotToken:   telegramBotToken,
		TelegramWebhookURL: telegramWebhookURL,

		TelegramAllowedUserIDs: allowedIDs,
	}, nil
}

// parseUserIDs reads a comma separated list of Telegram user ids.
func parseUserIDs(v string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
