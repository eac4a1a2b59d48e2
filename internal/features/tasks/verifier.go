// Package tasks — verifier.go: проверка подписки на Telegram-канал.
// Используется Bot API метод getChatMember через клиент telego.
package tasks

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"
)

// MembershipChecker проверяет членство пользователя в канале.
// Интерфейс позволяет подменять клиента Telegram в тестах.
type MembershipChecker interface {
	IsChannelMember(ctx context.Context, channelID string, telegramUserID int64) (bool, error)
}

// TelegramVerifier — реализация MembershipChecker поверх Bot API.
type TelegramVerifier struct {
	bot *telego.Bot
}

// NewTelegramVerifier создаёт проверяющего с данным клиентом.
func NewTelegramVerifier(bot *telego.Bot) *TelegramVerifier {
	return &TelegramVerifier{bot: bot}
}

// IsChannelMember возвращает true, если статус пользователя в канале —
// member, administrator или creator. Ошибка сети или API возвращается
// наверх: сбой проверки НЕ засчитывается как подписка.
func (v *TelegramVerifier) IsChannelMember(ctx context.Context, channelID string, telegramUserID int64) (bool, error) {
	member, err := v.bot.GetChatMember(&telego.GetChatMemberParams{
		ChatID: parseChatID(channelID),
		UserID: telegramUserID,
	})
	if err != nil {
		return false, fmt.Errorf("ошибка вызова getChatMember: %w", err)
	}
	return isSubscribedStatus(member.MemberStatus()), nil
}

// isSubscribedStatus — подписанным считается участник, админ или создатель.
func isSubscribedStatus(status string) bool {
	switch status {
	case telego.MemberStatusMember, telego.MemberStatusAdministrator, telego.MemberStatusCreator:
		return true
	default:
		return false
	}
}

// parseChatID принимает как числовой ID канала (-100...), так и @username.
func parseChatID(channelID string) telego.ChatID {
	channelID = strings.TrimSpace(channelID)
	if id, err := strconv.ParseInt(channelID, 10, 64); err == nil {
		return telego.ChatID{ID: id}
	}
	if !strings.HasPrefix(channelID, "@") {
		channelID = "@" + channelID
	}
	return telego.ChatID{Username: channelID}
}
