package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"thanks-bot/internal/ledger"
	"thanks-bot/internal/reply"

	"github.com/go-co-op/gocron/v2"
)

type Leaderboard interface {
	Leaderboard(ctx context.Context, limit int) ([]ledger.Standing, error)
}

type Poster interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

// Digest posts the leaderboard to one chat every day.
type Digest struct {
	Ledger Leaderboard
	Poster Poster
	ChatID int64
	Coin   string
}

func NewDigest(l Leaderboard, poster Poster, chatID int64, coin string) *Digest {
	return &Digest{
		Ledger: l,
		Poster: poster,
		ChatID: chatID,
		Coin:   coin,
	}
}

// Start schedules Run daily at hour:minute UTC. The caller shuts the
// returned scheduler down.
func (d *Digest) Start(ctx context.Context, hour, minute uint) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(hour, minute, 0))),
		gocron.NewTask(func() {
			if err := d.Run(ctx); err != nil {
				log.Printf("[Digest] %v", err)
			}
		}),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to schedule digest: %w", err)
	}

	sched.Start()
	log.Printf("Daily leaderboard digest scheduled at %02d:%02d UTC for chat %d", hour, minute, d.ChatID)
	return sched, nil
}

// Run posts the current leaderboard. Nothing is posted while nobody has a
// balance row.
func (d *Digest) Run(ctx context.Context) error {
	rows, err := d.Ledger.Leaderboard(ctx, ledger.DefaultLeaderboardLimit)
	if err != nil {
		return fmt.Errorf("failed to load leaderboard: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	if err := d.Poster.SendText(ctx, d.ChatID, "🏆 Итоги дня\n\n"+reply.Leaderboard(rows, d.Coin)); err != nil {
		return fmt.Errorf("failed to post digest to chat %d: %w", d.ChatID, err)
	}
	log.Printf("Posted leaderboard digest to chat %d", d.ChatID)
	return nil
}
