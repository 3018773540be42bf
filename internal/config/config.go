package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// ProviderGemini selects the Gemini text generation client.
	ProviderGemini = "gemini"
	// ProviderGroq selects the Groq text generation client.
	ProviderGroq = "groq"
)

// Config holds the configuration for the application.
type Config struct {
	LLMProvider  string
	GeminiAPIKey string
	GroqAPIKey   string

	DatabasePath string

	// PlanTTL is the freshness window shared by all artifact types.
	PlanTTL time.Duration
	// GenerationTimeout bounds a single generation call.
	GenerationTimeout time.Duration

	// Profile service (external collaborator)
	ProfileAPIURL string
	ProfileAPIKey string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64
}

// NewFromEnv creates a new Config object from environment variables.
// A .env file in the working directory is loaded first when present.
func NewFromEnv() (*Config, error) {
	_ = godotenv.Load()

	provider := os.Getenv("LLM_PROVIDER")
	if provider == "" {
		provider = ProviderGemini
	}
	if provider != ProviderGemini && provider != ProviderGroq {
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q (expected %q or %q)", provider, ProviderGemini, ProviderGroq)
	}

	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	if provider == ProviderGemini && geminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	groqAPIKey := os.Getenv("GROQ_API_KEY")
	if provider == ProviderGroq && groqAPIKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY environment variable not set")
	}

	databasePath := os.Getenv("DATABASE_PATH")
	if databasePath == "" {
		databasePath = "data/bodygoal.db"
	}

	planTTL, err := durationFromEnv("PLAN_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	generationTimeout, err := durationFromEnv("GENERATION_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	// Profile service (optional for the CLI when a profile is given inline,
	// required for the bot)
	profileAPIURL := os.Getenv("PROFILE_API_URL")
	profileAPIKey := os.Getenv("PROFILE_API_KEY")

	// Telegram Config (optional for CLI, required for Bot)
	telegramBotToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	telegramWebhookURL := os.Getenv("TELEGRAM_WEBHOOK_URL")

	allowedIDs, err := int64ListFromEnv("TELEGRAM_ALLOWED_USER_IDS")
	if err != nil {
		return nil, err
	}

	var adminTelegramID int64
	if v := os.Getenv("ADMIN_TELEGRAM_ID"); v != "" {
		adminTelegramID, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID %q: %w", v, err)
		}
	}

	return &Config{
		LLMProvider:            provider,
		GeminiAPIKey:           geminiAPIKey,
		GroqAPIKey:             groqAPIKey,
		DatabasePath:           databasePath,
		PlanTTL:                planTTL,
		GenerationTimeout:      generationTimeout,
		ProfileAPIURL:          profileAPIURL,
		ProfileAPIKey:          profileAPIKey,
		TelegramBotToken:       telegramBotToken,
		TelegramWebhookURL:     telegramWebhookURL,
		TelegramAllowedUserIDs: allowedIDs,
		AdminTelegramID:        adminTelegramID,
	}, nil
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, v)
	}
	return d, nil
}

func int64ListFromEnv(key string) ([]int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return nil, nil
	}

	var ids []int64
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s entry %q: %w", key, part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
