package main

import (
	"context"
	"log"
	"os/signal"
	"strings"
	"syscall"

	"thanks-bot/internal/bot"
	"thanks-bot/internal/config"
	"thanks-bot/internal/database"
	"thanks-bot/internal/dedup"
	"thanks-bot/internal/ledger"
	"thanks-bot/internal/trigger"
	"thanks-bot/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	// Connect to Database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}

	// Connect to Redis
	rdb, err := database.ConnectRedis(ctx, cfg)
	if err != nil {
		log.Fatalf("Could not connect to redis: %v", err)
	}
	var store dedup.Store = dedup.NewMemoryStore(cfg.DedupTTL)
	if rdb != nil {
		defer rdb.Close()
		store = dedup.NewRedisStore(rdb, cfg.DedupTTL)
	}

	l := ledger.New(db, cfg.MaxByDayCoins, ledger.WithLockTimeout(cfg.LockTimeout))

	tgBot, err := bot.NewBot(cfg.BotToken, store)
	if err != nil {
		log.Fatalf("Could not create bot: %v", err)
	}

	detector := trigger.New(l, tgBot, trigger.Settings{
		BotName:         cfg.BotName,
		BotUsername:     cfg.BotUsername,
		KeyWord:         cfg.KeyWord,
		Coin:            cfg.Coin,
		RegistrationKey: cfg.RegistrationKey,
		ExcludedIDs:     cfg.ExcludedIDs,
	})

	me, err := tgBot.Identity(ctx)
	if err != nil {
		log.Fatalf("Could not reach Telegram: %v", err)
	}
	if !strings.EqualFold(me.Username, cfg.BotUsername) {
		log.Printf("BOT_USERNAME is %q but Telegram reports @%s", cfg.BotUsername, me.Username)
	}
	detector.Exclude(me.ID)
	tgBot.Detector = detector

	if cfg.DigestChatID != 0 {
		hour, minute, _ := cfg.DigestClock()
		sched, err := worker.NewDigest(l, tgBot, cfg.DigestChatID, cfg.Coin).Start(ctx, hour, minute)
		if err != nil {
			log.Fatalf("Could not schedule digest: %v", err)
		}
		defer func() {
			if err := sched.Shutdown(); err != nil {
				log.Printf("Failed to stop scheduler: %v", err)
			}
		}()
	}

	if cfg.MaxByDayCoins > 0 {
		log.Printf("Service started as @%s, keyword %q, %d awards per day", me.Username, cfg.KeyWord, cfg.MaxByDayCoins)
	} else {
		log.Printf("Service started as @%s, keyword %q, no daily limit", me.Username, cfg.KeyWord)
	}

	if err := tgBot.Start(ctx); err != nil {
		log.Fatalf("Bot stopped: %v", err)
	}
	log.Println("Closing bot... Goodbye!")
}
