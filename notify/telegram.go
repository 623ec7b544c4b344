package notify

import (
	"errors"
	"fmt"
	"html"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram renders messages as HTML and delivers them through the Bot API.
// It is both a Broadcaster (to a fixed chat) and a Messenger (user IDs are
// chat IDs in decimal form).
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram authorizes a bot. chatID is the broadcast chat and may be 0
// when only direct sends are needed.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	log.Printf("Authorized telegram bot @%s", bot.Self.UserName)
	return &Telegram{bot: bot, chatID: chatID}, nil
}

func (t *Telegram) Send(msg Message) error {
	if t.chatID == 0 {
		return fmt.Errorf("no telegram broadcast chat configured")
	}
	return t.send(t.chatID, msg)
}

func (t *Telegram) SendTo(userID string, msg Message) error {
	chatID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid telegram user ID %q: %w", userID, err)
	}
	return t.send(chatID, msg)
}

func (t *Telegram) send(chatID int64, msg Message) error {
	tgMsg := tgbotapi.NewMessage(chatID, renderHTML(msg))
	tgMsg.ParseMode = tgbotapi.ModeHTML
	tgMsg.DisableWebPagePreview = msg.ImageURL == "" && msg.URL == ""

	_, err := t.bot.Send(tgMsg)
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		wait := time.Duration(apiErr.RetryAfter) * time.Second
		log.Printf("Telegram rate limited, retrying in %v", wait)
		time.Sleep(wait)
		_, err = t.bot.Send(tgMsg)
	}
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// renderHTML flattens a rich message into Telegram HTML.
func renderHTML(msg Message) string {
	var b strings.Builder

	title := html.EscapeString(msg.Title)
	if msg.URL != "" {
		fmt.Fprintf(&b, "<b><a href=%q>%s</a></b>\n", msg.URL, title)
	} else if title != "" {
		fmt.Fprintf(&b, "<b>%s</b>\n", title)
	}
	if msg.Description != "" {
		b.WriteString(html.EscapeString(msg.Description))
		b.WriteString("\n")
	}
	for _, f := range msg.Fields {
		fmt.Fprintf(&b, "\n<b>%s</b>\n%s\n", html.EscapeString(f.Name), html.EscapeString(f.Value))
	}
	if msg.FooterText != "" {
		fmt.Fprintf(&b, "\n<i>%s</i>", html.EscapeString(msg.FooterText))
	}
	return strings.TrimRight(b.String(), "\n")
}
