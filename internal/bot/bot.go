package bot

import (
	"context"
	"fmt"
	"log"

	"thanks-bot/internal/dedup"
	"thanks-bot/internal/trigger"

	"github.com/google/uuid"
	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
)

const chatTypePrivate = "private"

type Bot struct {
	Instance *telego.Bot
	Detector *trigger.Detector
	Dedup    dedup.Store

	send func(ctx context.Context, chatID int64, text string) error
}

func NewBot(token string, store dedup.Store) (*Bot, error) {
	tgBot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		Instance: tgBot,
		Dedup:    store,
	}
	b.send = func(ctx context.Context, chatID int64, text string) error {
		_, err := b.Instance.SendMessage(ctx, tu.Message(tu.ID(chatID), text))
		return err
	}
	return b, nil
}

// Identity returns the bot account as Telegram sees it.
func (b *Bot) Identity(ctx context.Context) (*telego.User, error) {
	me, err := b.Instance.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get bot info: %w", err)
	}
	return me, nil
}

// SendText posts text to a chat.
func (b *Bot) SendText(ctx context.Context, chatID int64, text string) error {
	return b.send(ctx, chatID, text)
}

// NotifyUser sends a private message. It fails when the user never
// started a conversation with the bot.
func (b *Bot) NotifyUser(ctx context.Context, userID int64, text string) error {
	return b.send(ctx, userID, text)
}

// Start long-polls until ctx is done.
func (b *Bot) Start(ctx context.Context) error {
	if b.Detector == nil {
		return fmt.Errorf("bot has no detector")
	}

	updates, err := b.Instance.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start long polling: %w", err)
	}

	handler, err := th.NewBotHandler(b.Instance, updates)
	if err != nil {
		return fmt.Errorf("failed to create update handler: %w", err)
	}

	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		if update.Message != nil {
			b.process(ctx.Context(), *update.Message)
		}
		return nil
	}, th.AnyMessageWithText())

	log.Println("Bot is polling for updates")
	handler.Start()
	return nil
}

// process handles one message end to end. Failures are logged and the
// message is dropped; the polling loop keeps going.
func (b *Bot) process(ctx context.Context, message telego.Message) {
	msg, ok := normalize(message)
	if !ok {
		return
	}
	traceID := uuid.NewString()

	if b.Dedup != nil {
		fresh, err := b.Dedup.Claim(ctx, dedup.MessageKey(msg.ChatID, msg.MessageID))
		if err != nil {
			log.Printf("[%s] Dedup check failed for message %d in chat %d, handling anyway: %v", traceID, msg.MessageID, msg.ChatID, err)
		} else if !fresh {
			log.Printf("[%s] Skipping already processed message %d in chat %d", traceID, msg.MessageID, msg.ChatID)
			return
		}
	}

	resp, err := b.Detector.Handle(ctx, msg)
	if err != nil {
		log.Printf("[%s] Failed to handle message %d from %d in chat %d: %v", traceID, msg.MessageID, msg.From.ID, msg.ChatID, err)
		return
	}
	if resp.Empty() {
		return
	}

	if err := b.send(ctx, msg.ChatID, resp.Text); err != nil {
		log.Printf("[%s] Failed to send reply to chat %d: %v", traceID, msg.ChatID, err)
	}
}

func normalize(m telego.Message) (trigger.Message, bool) {
	if m.From == nil {
		return trigger.Message{}, false
	}
	return trigger.Message{
		ChatID:    m.Chat.ID,
		MessageID: m.MessageID,
		Private:   m.Chat.Type == chatTypePrivate,
		From: trigger.Sender{
			ID:        m.From.ID,
			Username:  m.From.Username,
			FirstName: m.From.FirstName,
			LastName:  m.From.LastName,
			IsBot:     m.From.IsBot,
		},
		Text: m.Text,
	}, true
}
