package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/subpass/internal/dialog"
)

func (b *Bot) handleStateMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	tgID := msg.From.ID
	text := strings.TrimSpace(msg.Text)

	switch text {
	case btnMySubscription:
		b.showSubscription(ctx, chatID, tgID)
		return
	case btnSeats:
		b.showSeats(ctx, chatID, tgID)
		return
	case btnBuy:
		if _, ok := b.callerAddress(ctx, chatID, tgID); !ok {
			return
		}
		m := tgbotapi.NewMessage(chatID, "Выберите класс подписки:")
		m.ReplyMarkup = classKeyboard(b.svc.Catalog())
		b.send(m)
		return
	}

	st, err := b.states.Get(ctx, chatID)
	if err != nil {
		b.replyErr(chatID, "dialog", err)
		return
	}

	switch st.State {
	case dialog.StateAwaitAddress:
		b.link(ctx, chatID, msg.From, text)

	case dialog.StateAwaitSeatAddress:
		caller, ok := b.callerAddress(ctx, chatID, tgID)
		if !ok {
			return
		}
		b.addSeat(ctx, chatID, caller, text)

	case dialog.StateAwaitTransferTo:
		caller, ok := b.callerAddress(ctx, chatID, tgID)
		if !ok {
			return
		}
		id, ok := dialog.GetUint(st.Payload, "class_id")
		if !ok {
			_ = b.states.Reset(ctx, chatID)
			return
		}
		b.transfer(ctx, chatID, caller, text, id, 1)

	default:
		b.reply(chatID, "Не понял сообщение. Наберите /help")
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	data := cb.Data
	chatID := cb.Message.Chat.ID
	msgID := cb.Message.MessageID

	if data == "nav:cancel" {
		_ = b.states.Reset(ctx, chatID)
		b.editTextAndClear(chatID, msgID, "Операция отменена.")
		_ = b.answerCallback(cb, "Отменено", false)
		return
	}

	caller, ok := b.callerAddress(ctx, chatID, cb.From.ID)
	if !ok {
		_ = b.answerCallback(cb, "", false)
		return
	}

	switch {
	case strings.HasPrefix(data, "sub:class:"):
		id, ok := parseUint(strings.TrimPrefix(data, "sub:class:"))
		if !ok {
			break
		}
		c, err := b.svc.Catalog().Lookup(id)
		if err != nil {
			b.replyErr(chatID, "subscribe", err)
			break
		}
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID,
			fmt.Sprintf("%s: выберите срок", c.Name), durationKeyboard(c))
		b.send(edit)

	case strings.HasPrefix(data, "sub:dur:"):
		parts := strings.Split(strings.TrimPrefix(data, "sub:dur:"), ":")
		if len(parts) != 2 {
			break
		}
		id, ok1 := parseUint(parts[0])
		dur, ok2 := parseUint(parts[1])
		if !ok1 || !ok2 {
			break
		}
		sub, err := b.svc.Subscribe(ctx, caller, id, dur)
		if err != nil {
			b.editTextAndClear(chatID, msgID, "Покупка не выполнена.")
			b.replyErr(chatID, "subscribe", err)
			break
		}
		b.editTextAndClear(chatID, msgID, fmt.Sprintf(
			"Подписка оформлена до %s.", sub.ExpiresTime().Format("02.01.2006")))

	case data == "seat:add":
		b.askSeatAddress(ctx, chatID)

	case strings.HasPrefix(data, "xfer:"):
		id, err := strconv.ParseUint(strings.TrimPrefix(data, "xfer:"), 10, 64)
		if err != nil {
			break
		}
		_ = b.states.Set(ctx, chatID, dialog.StateAwaitTransferTo, dialog.Payload{"class_id": id})
		m := tgbotapi.NewMessage(chatID, "Отправьте адрес получателя в формате 0x…")
		m.ReplyMarkup = navKeyboard()
		b.send(m)
	}

	_ = b.answerCallback(cb, "", false)
}
