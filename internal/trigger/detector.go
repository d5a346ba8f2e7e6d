// Package trigger turns normalized chat messages into ledger operations.
//
// A message is either a command addressed to the bot (/top, /reg, /start,
// /me) or free text. Free text in a group awards one unit to every
// registered member mentioned with "@" when the text also contains the
// configured keyword.
package trigger

import (
	"context"
	"fmt"
	"log"
	"strings"

	"thanks-bot/internal/ledger"
	"thanks-bot/internal/models"
	"thanks-bot/internal/reply"
)

// Ledger is the subset of *ledger.Ledger the detector needs.
type Ledger interface {
	Register(ctx context.Context, p ledger.Profile) (ledger.Outcome, error)
	Exists(ctx context.Context, id int64) (bool, error)
	FindByUsername(ctx context.Context, username string) (models.User, bool, error)
	Balance(ctx context.Context, id int64) (int64, error)
	DailyQuota(ctx context.Context, id int64) (ledger.Quota, error)
	Remaining(q ledger.Quota) int
	Transfer(ctx context.Context, senderID, recipientID int64) (ledger.Transfer, error)
	Leaderboard(ctx context.Context, limit int) ([]ledger.Standing, error)
}

// Notifier delivers private messages. Delivery is best effort.
type Notifier interface {
	NotifyUser(ctx context.Context, userID int64, text string) error
}

type Sender struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	IsBot     bool
}

func (s Sender) profile() ledger.Profile {
	return ledger.Profile{ID: s.ID, Username: s.Username, FirstName: s.FirstName, LastName: s.LastName}
}

func (s Sender) displayName() string {
	if name := strings.TrimSpace(s.FirstName + " " + s.LastName); name != "" {
		return name
	}
	if s.Username != "" {
		return "@" + s.Username
	}
	return fmt.Sprintf("%d", s.ID)
}

// Message is an incoming chat message as delivered by the transport.
type Message struct {
	ChatID    int64
	MessageID int
	Private   bool
	From      Sender
	Text      string
}

// Response is the text to post back to the originating chat. Empty means
// nothing should be sent.
type Response struct {
	Text string
}

func (r Response) Empty() bool {
	return r.Text == ""
}

type Settings struct {
	BotName         string
	BotUsername     string
	KeyWord         string
	Coin            string
	RegistrationKey string
	ExcludedIDs     []int64
}

type Detector struct {
	ledger   Ledger
	notifier Notifier
	settings Settings
	excluded map[int64]bool
}

// New builds a detector. notifier may be nil.
func New(l Ledger, notifier Notifier, settings Settings) *Detector {
	settings.BotUsername = strings.TrimPrefix(settings.BotUsername, "@")
	excluded := make(map[int64]bool, len(settings.ExcludedIDs))
	for _, id := range settings.ExcludedIDs {
		excluded[id] = true
	}
	return &Detector{
		ledger:   l,
		notifier: notifier,
		settings: settings,
		excluded: excluded,
	}
}

// Exclude adds an identity that can never receive awards, e.g. the bot's
// own account once the transport knows its id. Not safe to call while
// messages are being handled.
func (d *Detector) Exclude(id int64) {
	d.excluded[id] = true
}

// Handle classifies msg and runs the resulting ledger operations. Rejections
// (unregistered users, self awards, exhausted quota) are part of the
// response; only store failures are returned as errors.
func (d *Detector) Handle(ctx context.Context, msg Message) (Response, error) {
	if strings.TrimSpace(msg.Text) == "" || msg.From.IsBot {
		return Response{}, nil
	}

	if cmd, ok := ParseCommand(msg.Text, d.settings.BotUsername, d.settings.BotName); ok {
		switch cmd.Name {
		case "top":
			return d.top(ctx)
		case "reg":
			return d.register(ctx, msg.From, cmd.Arg)
		case "start":
			return Response{Text: reply.Start(d.settings.BotName, d.settings.KeyWord, d.settings.Coin)}, nil
		case "me":
			return d.me(ctx, msg.From)
		}
	}

	return d.scan(ctx, msg)
}

func (d *Detector) top(ctx context.Context) (Response, error) {
	rows, err := d.ledger.Leaderboard(ctx, ledger.DefaultLeaderboardLimit)
	if err != nil {
		return Response{}, err
	}
	return Response{Text: reply.Leaderboard(rows, d.settings.Coin)}, nil
}

func (d *Detector) register(ctx context.Context, from Sender, key string) (Response, error) {
	if d.settings.RegistrationKey != "" && key != d.settings.RegistrationKey {
		return Response{Text: reply.WrongKey()}, nil
	}

	outcome, err := d.ledger.Register(ctx, from.profile())
	if err != nil {
		return Response{}, err
	}
	if outcome == ledger.Created {
		log.Printf("Registered user %d (@%s)", from.ID, from.Username)
	}
	return Response{Text: reply.Registered(outcome, from.displayName())}, nil
}

func (d *Detector) me(ctx context.Context, from Sender) (Response, error) {
	registered, err := d.ledger.Exists(ctx, from.ID)
	if err != nil {
		return Response{}, err
	}
	if !registered {
		return Response{Text: reply.SenderNotRegistered(d.settings.BotUsername)}, nil
	}

	balance, err := d.ledger.Balance(ctx, from.ID)
	if err != nil {
		return Response{}, err
	}
	quota, err := d.ledger.DailyQuota(ctx, from.ID)
	if err != nil {
		return Response{}, err
	}
	return Response{Text: reply.Me(balance, d.ledger.Remaining(quota), d.settings.Coin)}, nil
}

func (d *Detector) scan(ctx context.Context, msg Message) (Response, error) {
	if msg.Private {
		return Response{Text: reply.GroupsOnly()}, nil
	}
	if !ContainsKeyword(msg.Text, d.settings.KeyWord) {
		return Response{}, nil
	}
	handles := Mentions(msg.Text)
	if len(handles) == 0 {
		return Response{}, nil
	}

	registered, err := d.ledger.Exists(ctx, msg.From.ID)
	if err != nil {
		return Response{}, err
	}
	if !registered {
		return Response{Text: reply.SenderNotRegistered(d.settings.BotUsername)}, nil
	}
	// Keep the sender's display data current.
	if _, err := d.ledger.Register(ctx, msg.From.profile()); err != nil {
		return Response{}, err
	}

	var lines []string
	for _, handle := range handles {
		line, err := d.awardOne(ctx, msg.From, handle)
		if err != nil {
			return Response{}, err
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return Response{Text: strings.Join(lines, "\n")}, nil
}

func (d *Detector) awardOne(ctx context.Context, from Sender, handle string) (string, error) {
	if from.Username != "" && strings.EqualFold(handle, from.Username) {
		return reply.SelfAward(), nil
	}
	if strings.EqualFold(handle, d.settings.BotUsername) {
		return reply.Excluded(handle), nil
	}

	recipient, found, err := d.ledger.FindByUsername(ctx, handle)
	if err != nil {
		return "", err
	}
	if !found {
		return reply.NotRegistered(handle), nil
	}
	if recipient.ID == from.ID {
		return reply.SelfAward(), nil
	}
	if d.excluded[recipient.ID] {
		return reply.Excluded(handle), nil
	}

	res, err := d.ledger.Transfer(ctx, from.ID, recipient.ID)
	if err != nil {
		return "", err
	}

	switch res.Status {
	case ledger.QuotaExceeded:
		return reply.QuotaExceeded(handle, res.Limit), nil
	default:
		log.Printf("User %d awarded %d (balance %d, %d used today)", from.ID, recipient.ID, res.Balance, res.Used)
		d.notify(ctx, recipient.ID, reply.AwardNotice(from.displayName(), res.Balance, d.settings.Coin))
		return reply.Awarded(recipient.Username, res.Balance, d.settings.Coin), nil
	}
}

func (d *Detector) notify(ctx context.Context, userID int64, text string) {
	if d.notifier == nil {
		return
	}
	if err := d.notifier.NotifyUser(ctx, userID, text); err != nil {
		log.Printf("Failed to notify user %d: %v", userID, err)
	}
}
