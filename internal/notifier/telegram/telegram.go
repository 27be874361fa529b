package telegram

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"trending_digest/internal/domain"
)

// maxMessageLen is Telegram's limit for a single text message.
const maxMessageLen = 4096

type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier posts a compact digest to a Telegram chat.
type Notifier struct {
	bot    messageSender
	chatID int64
}

func New(token string, chatID int64) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Notifier{bot: bot, chatID: chatID}, nil
}

func (n *Notifier) Name() string {
	return "telegram"
}

func (n *Notifier) Notify(_ context.Context, digest *domain.Digest) error {
	msg := tgbotapi.NewMessage(n.chatID, Format(digest))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

// Format renders the digest as Telegram HTML, dropping whole entries past the message limit.
func Format(digest *domain.Digest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>GitHub Trending - %s</b>\n", html.EscapeString(digest.Date))

	for i := range digest.Repos {
		entry := formatEntry(&digest.Repos[i])
		if sb.Len()+len(entry) > maxMessageLen {
			break
		}
		sb.WriteString(entry)
	}

	return sb.String()
}

func formatEntry(repo *domain.Repository) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%d. <a href=\"%s\">%s</a> ★ %s (+%s)\n",
		repo.Rank,
		html.EscapeString(repo.URL),
		html.EscapeString(repo.Name),
		humanize.Comma(int64(repo.Stars)),
		humanize.Comma(int64(repo.TodayStars)),
	)

	if s := repo.Summary; s != nil {
		sb.WriteString(html.EscapeString(s.What))
		sb.WriteString("\n")
		if len(s.TechStack) > 0 {
			fmt.Fprintf(&sb, "<i>%s</i>\n", html.EscapeString(strings.Join(s.TechStack, " · ")))
		}
	}

	return sb.String()
}
