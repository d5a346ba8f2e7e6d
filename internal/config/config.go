package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BotToken string

	DBDriver   string
	DBPath     string
	DBUser     string
	DBPassword string
	DBName     string
	DBHost     string
	DBPort     string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	BotName         string
	BotUsername     string
	KeyWord         string
	Coin            string
	RegistrationKey string
	MaxByDayCoins   int
	ExcludedIDs     []int64

	LockTimeout time.Duration
	DedupTTL    time.Duration

	DigestChatID int64
	DigestTime   string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	maxByDay, err := getEnvInt("MAX_BY_DAY_COINS", 0)
	if err != nil {
		return nil, err
	}
	lockTimeout, err := getEnvDuration("LOCK_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	dedupTTL, err := getEnvDuration("DEDUP_TTL", 48*time.Hour)
	if err != nil {
		return nil, err
	}
	excluded, err := getEnvIDs("EXCLUDED_IDS")
	if err != nil {
		return nil, err
	}
	digestChat, err := getEnvInt64("DIGEST_CHAT_ID", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		BotToken:        getEnv("TELEGRAM_BOT_TOKEN", ""),
		DBDriver:        strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBPath:          getEnv("DB_PATH", "thanks.db"),
		DBUser:          getEnv("DB_USER", "postgres"),
		DBPassword:      getEnv("DB_PASSWORD", "postgres"),
		DBName:          getEnv("DB_NAME", "thanks_bot"),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "5432"),
		RedisHost:       getEnv("REDIS_HOST", ""),
		RedisPort:       getEnv("REDIS_PORT", "6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		BotName:         getEnv("BOT_NAME", ""),
		BotUsername:     strings.TrimPrefix(getEnv("BOT_USERNAME", ""), "@"),
		KeyWord:         getEnv("KEY_WORD", ""),
		Coin:            getEnv("COIN", "репутация"),
		RegistrationKey: getEnv("REGISTRATION_KEY", ""),
		MaxByDayCoins:   maxByDay,
		ExcludedIDs:     excluded,
		LockTimeout:     lockTimeout,
		DedupTTL:        dedupTTL,
		DigestChatID:    digestChat,
		DigestTime:      getEnv("DIGEST_TIME", "21:00"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.KeyWord == "" {
		return fmt.Errorf("KEY_WORD is not set")
	}
	if c.BotUsername == "" {
		return fmt.Errorf("BOT_USERNAME is not set")
	}
	if c.DBDriver != "sqlite" && c.DBDriver != "postgres" {
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.MaxByDayCoins < 0 {
		return fmt.Errorf("MAX_BY_DAY_COINS must not be negative, got %d", c.MaxByDayCoins)
	}
	if _, _, err := c.DigestClock(); err != nil {
		return err
	}
	return nil
}

// DigestClock splits DIGEST_TIME into hour and minute.
func (c *Config) DigestClock() (uint, uint, error) {
	parsed, err := time.Parse("15:04", c.DigestTime)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid DIGEST_TIME %q: %w", c.DigestTime, err)
	}
	return uint(parsed.Hour()), uint(parsed.Minute()), nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(getEnv(key, ""))
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	value := strings.TrimSpace(getEnv(key, ""))
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(key, ""))
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvIDs(key string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(getEnv(key, ""), ",") {
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
