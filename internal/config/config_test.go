package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("KEY_WORD", "спасибо")
	t.Setenv("BOT_USERNAME", "@quorra_bot")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.BotUsername != "quorra_bot" {
		t.Errorf("expected @ to be stripped from bot username, got %q", cfg.BotUsername)
	}
	if cfg.DBDriver != "sqlite" {
		t.Errorf("expected sqlite driver by default, got %q", cfg.DBDriver)
	}
	if cfg.MaxByDayCoins != 0 {
		t.Errorf("expected unlimited quota by default, got %d", cfg.MaxByDayCoins)
	}
	if cfg.LockTimeout != 5*time.Second {
		t.Errorf("unexpected lock timeout %v", cfg.LockTimeout)
	}
	if cfg.DedupTTL != 48*time.Hour {
		t.Errorf("unexpected dedup ttl %v", cfg.DedupTTL)
	}
}

func TestLoadConfigParsesValues(t *testing.T) {
	setRequired(t)
	t.Setenv("MAX_BY_DAY_COINS", "3")
	t.Setenv("EXCLUDED_IDS", "6685232640, 42")
	t.Setenv("LOCK_TIMEOUT", "250ms")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DIGEST_CHAT_ID", "-100123")
	t.Setenv("DIGEST_TIME", "09:30")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.MaxByDayCoins != 3 {
		t.Errorf("expected cap 3, got %d", cfg.MaxByDayCoins)
	}
	if len(cfg.ExcludedIDs) != 2 || cfg.ExcludedIDs[0] != 6685232640 || cfg.ExcludedIDs[1] != 42 {
		t.Errorf("unexpected excluded ids %v", cfg.ExcludedIDs)
	}
	if cfg.LockTimeout != 250*time.Millisecond {
		t.Errorf("unexpected lock timeout %v", cfg.LockTimeout)
	}
	if cfg.DBDriver != "postgres" {
		t.Errorf("expected driver to be lowercased, got %q", cfg.DBDriver)
	}
	if cfg.DigestChatID != -100123 {
		t.Errorf("unexpected digest chat %d", cfg.DigestChatID)
	}
	hour, minute, err := cfg.DigestClock()
	if err != nil || hour != 9 || minute != 30 {
		t.Errorf("unexpected digest clock %d:%d (%v)", hour, minute, err)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	cases := map[string]map[string]string{
		"missing keyword":  {"KEY_WORD": ""},
		"missing username": {"BOT_USERNAME": ""},
		"bad cap":          {"MAX_BY_DAY_COINS": "many"},
		"negative cap":     {"MAX_BY_DAY_COINS": "-1"},
		"bad ids":          {"EXCLUDED_IDS": "1,two"},
		"bad driver":       {"DB_DRIVER": "mysql"},
		"bad digest time":  {"DIGEST_TIME": "25:99"},
		"bad timeout":      {"LOCK_TIMEOUT": "soon"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(); err == nil {
				t.Errorf("expected an error")
			}
		})
	}
}
