package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/semmidev/odoodrive/internal/config"
	"github.com/semmidev/odoodrive/internal/domain"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramNotifier struct {
	bot           sender
	chatID        int64
	onFailureOnly bool
}

func NewTelegram(cfg *config.TelegramConfig) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &TelegramNotifier{
		bot:           bot,
		chatID:        cfg.ChatID,
		onFailureOnly: cfg.OnFailureOnly,
	}, nil
}

func (t *TelegramNotifier) Notify(ctx context.Context, report *domain.Report) error {
	if report.Succeeded() && t.onFailureOnly {
		return nil
	}

	msg := tgbotapi.NewMessage(t.chatID, FormatReport(report))
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram notification: %w", err)
	}
	return nil
}

// FormatReport renders a run summary as plain text.
func FormatReport(report *domain.Report) string {
	var b strings.Builder

	if report.Succeeded() {
		fmt.Fprintf(&b, "✅ Backup of %s completed\n\n", report.Database)
	} else {
		fmt.Fprintf(&b, "❌ Backup of %s failed\n\n", report.Database)
	}

	if a := report.Artifact; a != nil {
		fmt.Fprintf(&b, "📁 File: %s\n", a.Filename)
		fmt.Fprintf(&b, "📊 Size: %s\n", humanize.Bytes(uint64(a.Size)))
	}
	fmt.Fprintf(&b, "🕐 Time: %s (%s)\n", report.StartedAt.Format("2006-01-02 15:04:05"), report.Duration().Round(time.Second))

	for _, target := range report.Targets {
		switch {
		case target.Err != nil:
			fmt.Fprintf(&b, "\n• %s: %v", target.Name, target.Err)
		case target.Uploaded != nil:
			fmt.Fprintf(&b, "\n• %s: uploaded, %d kept, %d pruned", target.Name, target.Retained, len(target.Deleted))
		}
	}

	var backupErr *domain.BackupError
	if errors.As(report.Err, &backupErr) {
		fmt.Fprintf(&b, "\n%v", backupErr)
	}

	return b.String()
}
