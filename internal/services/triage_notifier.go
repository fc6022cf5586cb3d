package services

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"physioplan/internal/models"
)

// telegramNotifier alerts the clinician channel when a submission triages
// as an urgent referral.
type telegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(botToken string, chatID int64) (TriageNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}
	log.Printf("[tg][init] authorized as @%s", bot.Self.UserName)
	return &telegramNotifier{bot: bot, chatID: chatID}, nil
}

func (n *telegramNotifier) NotifyUrgent(sub *models.Submission) error {
	if n.chatID == 0 {
		log.Printf("[tg][skip] chat id empty")
		return nil
	}
	text := fmt.Sprintf(
		"<b>Urgent referral</b>\nPatient: %s\nComplaint: %s\nSeverity: %d/10\nRecord: %s",
		sub.OwnerEmail, sub.ChiefComplaint, sub.Severity, sub.ID,
	)
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram sendMessage: %w", err)
	}
	log.Printf("[tg][send] urgent alert pain_data_id=%s", sub.ID)
	return nil
}
