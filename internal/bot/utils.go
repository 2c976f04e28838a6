package bot

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/subpass/internal/domain/address"
	domainErr "github.com/Spok95/subpass/internal/domain/errors"
)

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send failed", "err", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) answerCallback(cb *tgbotapi.CallbackQuery, text string, alert bool) error {
	resp := tgbotapi.NewCallback(cb.ID, text)
	resp.ShowAlert = alert
	_, err := b.api.Request(resp)
	return err
}

func (b *Bot) editTextAndClear(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(
		chatID, messageID, text,
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}},
	)
	b.send(edit)
}

// replyErr answers with the machine reason of a rejected operation.
func (b *Bot) replyErr(chatID int64, op string, err error) {
	if _, ok := domainErr.As(err); ok {
		b.reply(chatID, fmt.Sprintf("Операция отклонена: %s", domainErr.Reason(err)))
		return
	}
	b.log.Error("bot operation failed", "op", op, "chat_id", chatID, "err", err)
	b.reply(chatID, "Внутренняя ошибка, попробуйте позже.")
}

// callerAddress returns the address linked to the telegram user, telling the
// chat how to link one when there is none.
func (b *Bot) callerAddress(ctx context.Context, chatID, tgID int64) (address.Address, bool) {
	u, err := b.users.GetByTelegramID(ctx, tgID)
	if err != nil {
		b.replyErr(chatID, "lookup user", err)
		return "", false
	}
	if !u.Linked() {
		b.reply(chatID, "Сначала привяжите адрес: /link 0x…")
		return "", false
	}
	return u.Address, true
}

func (b *Bot) isAdmin(tgID int64) bool { return b.adminChat != 0 && tgID == b.adminChat }

func parseUint(s string) (uint64, bool) {
	v, err := strconv.ParseUint(s, 10, 64)
	return v, err == nil
}
