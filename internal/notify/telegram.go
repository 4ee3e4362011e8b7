package notify

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ghostcheck-engine/internal/pipeline"
)

// Reporter pushes run summaries to a Telegram chat. Nil receiver is a
// no-op, so callers don't have to branch on whether notify is enabled.
type Reporter struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func New(token string, chatID int64) (*Reporter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	return &Reporter{bot: bot, chatID: chatID}, nil
}

func (t *Reporter) send(text string) error {
	if t == nil {
		return nil
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "HTML" // for bold/italic
	_, err := t.bot.Send(msg)
	return err
}

func (t *Reporter) RunSummary(res pipeline.Result) error {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Ingestion run finished</b>\n")
	fmt.Fprintf(&b, "scraped: %d\n", res.Scraped)
	fmt.Fprintf(&b, "verified: %d\n", res.Verified)
	fmt.Fprintf(&b, "added: %d, skipped: %d, failed: %d\n", res.Added, res.Skipped, res.Failed)
	fmt.Fprintf(&b, "took %dms", res.DurationMs)
	if !res.Success {
		fmt.Fprintf(&b, "\n⚠️ run had errors: %s", strings.Join(res.Errors, "; "))
	}
	return t.send(b.String())
}

func (t *Reporter) SweepSummary(res pipeline.SweepResult) error {
	if res.Checked == 0 {
		return nil
	}
	text := fmt.Sprintf("<b>Link sweep</b>\nchecked: %d, expired: %d", res.Checked, res.Expired)
	if !res.Success {
		text += "\n⚠️ sweep had errors: " + strings.Join(res.Errors, "; ")
	}
	return t.send(text)
}

func (t *Reporter) Error(err error) error {
	return t.send(fmt.Sprintf("⚠️ <b>GhostCheck error</b>:\n%v", err))
}
