package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/subpass/internal/dialog"
	"github.com/Spok95/subpass/internal/domain/address"
	"github.com/Spok95/subpass/internal/domain/users"
	"github.com/Spok95/subpass/internal/export"
)

const helpText = `Команды:
/start — начать работу
/link <адрес> — привязать адрес
/me — моя подписка
/subscribe — купить подписку
/adduser <адрес> — добавить участника
/users — список участников
/transfer <адрес> <класс> [кол-во] — передать токен
/approve <адрес> [on|off] — доверить управление токенами
/help — помощь`

const adminHelpText = `
Администрирование:
/pause, /unpause — остановить или возобновить работу
/seturi <шаблон> — шаблон ссылки на метаданные
/export — выгрузка подписок в Excel`

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	tgID := msg.From.ID
	args := strings.Fields(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		u, err := b.users.UpsertFromTelegram(ctx, users.Telegram{ID: tgID, Username: msg.From.UserName})
		if err != nil {
			b.replyErr(chatID, "start", err)
			return
		}
		_ = b.states.Reset(ctx, chatID)
		text := "Привет! Привяжите адрес командой /link, чтобы покупать подписки и управлять участниками."
		if u.Linked() {
			text = fmt.Sprintf("С возвращением! Ваш адрес: %s", u.Address)
		}
		m := tgbotapi.NewMessage(chatID, text)
		m.ReplyMarkup = mainReplyKeyboard()
		b.send(m)

	case "help":
		text := helpText
		if b.isAdmin(tgID) {
			text += adminHelpText
		}
		b.reply(chatID, text)

	case "link":
		if len(args) == 0 {
			_ = b.states.Set(ctx, chatID, dialog.StateAwaitAddress, dialog.Payload{})
			m := tgbotapi.NewMessage(chatID, "Отправьте адрес в формате 0x…")
			m.ReplyMarkup = navKeyboard()
			b.send(m)
			return
		}
		b.link(ctx, chatID, msg.From, args[0])

	case "me":
		b.showSubscription(ctx, chatID, tgID)

	case "subscribe":
		if _, ok := b.callerAddress(ctx, chatID, tgID); !ok {
			return
		}
		m := tgbotapi.NewMessage(chatID, "Выберите класс подписки:")
		m.ReplyMarkup = classKeyboard(b.svc.Catalog())
		b.send(m)

	case "adduser":
		caller, ok := b.callerAddress(ctx, chatID, tgID)
		if !ok {
			return
		}
		if len(args) == 0 {
			b.askSeatAddress(ctx, chatID)
			return
		}
		b.addSeat(ctx, chatID, caller, args[0])

	case "users":
		b.showSeats(ctx, chatID, tgID)

	case "transfer":
		caller, ok := b.callerAddress(ctx, chatID, tgID)
		if !ok {
			return
		}
		if len(args) < 2 || len(args) > 3 {
			b.reply(chatID, "Формат: /transfer <адрес> <класс> [кол-во]")
			return
		}
		id, ok := parseUint(args[1])
		if !ok {
			b.reply(chatID, "Класс должен быть числом.")
			return
		}
		qty := uint64(1)
		if len(args) == 3 {
			if qty, ok = parseUint(args[2]); !ok {
				b.reply(chatID, "Количество должно быть числом.")
				return
			}
		}
		b.transfer(ctx, chatID, caller, args[0], id, qty)

	case "approve":
		caller, ok := b.callerAddress(ctx, chatID, tgID)
		if !ok {
			return
		}
		if len(args) == 0 {
			b.reply(chatID, "Формат: /approve <адрес> [on|off]")
			return
		}
		op, err := address.Parse(args[0])
		if err != nil {
			b.replyErr(chatID, "approve", err)
			return
		}
		approved := len(args) < 2 || args[1] != "off"
		if err := b.svc.SetApprovalForAll(ctx, caller, op, approved); err != nil {
			b.replyErr(chatID, "approve", err)
			return
		}
		if approved {
			b.reply(chatID, fmt.Sprintf("%s может передавать ваши токены.", op))
		} else {
			b.reply(chatID, fmt.Sprintf("Доступ %s отозван.", op))
		}

	case "pause", "unpause":
		if !b.isAdmin(tgID) {
			b.reply(chatID, "Доступ запрещён")
			return
		}
		caller, ok := b.callerAddress(ctx, chatID, tgID)
		if !ok {
			return
		}
		var err error
		text := "Сервис приостановлен."
		if msg.Command() == "pause" {
			err = b.svc.Pause(ctx, caller)
		} else {
			err = b.svc.Unpause(ctx, caller)
			text = "Работа сервиса возобновлена."
		}
		if err != nil {
			b.replyErr(chatID, msg.Command(), err)
			return
		}
		b.reply(chatID, text)

	case "seturi":
		if !b.isAdmin(tgID) {
			b.reply(chatID, "Доступ запрещён")
			return
		}
		caller, ok := b.callerAddress(ctx, chatID, tgID)
		if !ok {
			return
		}
		uri := strings.TrimSpace(msg.CommandArguments())
		if uri == "" {
			b.reply(chatID, "Формат: /seturi https://…/{id}.json")
			return
		}
		if err := b.svc.SetURI(ctx, caller, uri); err != nil {
			b.replyErr(chatID, "seturi", err)
			return
		}
		b.reply(chatID, "Шаблон метаданных обновлён.")

	case "export":
		if !b.isAdmin(tgID) {
			b.reply(chatID, "Доступ запрещён")
			return
		}
		b.exportSubscriptions(ctx, chatID)

	default:
		b.reply(chatID, "Не знаю такую команду. Наберите /help")
	}
}

func (b *Bot) link(ctx context.Context, chatID int64, from *tgbotapi.User, raw string) {
	a, err := address.Parse(raw)
	if err != nil || a.IsZero() {
		b.reply(chatID, "Адрес должен выглядеть как 0x и 40 шестнадцатеричных символов.")
		return
	}
	if _, err := b.users.UpsertFromTelegram(ctx, users.Telegram{ID: from.ID, Username: from.UserName}); err != nil {
		b.replyErr(chatID, "link", err)
		return
	}
	if _, err := b.users.SetAddress(ctx, from.ID, a); err != nil {
		if errors.Is(err, users.ErrAddressTaken) {
			b.reply(chatID, "Этот адрес уже привязан к другому аккаунту.")
			return
		}
		b.replyErr(chatID, "link", err)
		return
	}
	_ = b.states.Reset(ctx, chatID)
	b.reply(chatID, fmt.Sprintf("Адрес %s привязан.", a))
}

func (b *Bot) showSubscription(ctx context.Context, chatID, tgID int64) {
	caller, ok := b.callerAddress(ctx, chatID, tgID)
	if !ok {
		return
	}
	sub, err := b.svc.SubscriptionsToUser(ctx, caller)
	if err != nil {
		b.replyErr(chatID, "me", err)
		return
	}
	if !sub.Active() {
		b.reply(chatID, "Подписки нет. Купить: /subscribe")
		return
	}
	name := fmt.Sprintf("#%d", sub.ClassID)
	if c, err := b.svc.Catalog().Lookup(sub.ClassID); err == nil {
		name = c.Name
	}
	bal, err := b.svc.BalanceOf(ctx, caller, sub.ClassID)
	if err != nil {
		b.replyErr(chatID, "me", err)
		return
	}
	seats, err := b.svc.GetUsersAllowed(ctx, caller)
	if err != nil {
		b.replyErr(chatID, "me", err)
		return
	}
	now := b.now()
	status := "активна"
	if sub.Expired(now) {
		status = "истекла"
	}
	text := fmt.Sprintf("Подписка: %s (%s)\nДействует до: %s\nМест занято: %d из %d\nТокенов: %d",
		name, status,
		sub.ExpiresTime().Format("02.01.2006 15:04 MST"),
		len(seats)+1, sub.SeatLimit, bal)
	m := tgbotapi.NewMessage(chatID, text)
	m.ReplyMarkup = subscriptionKeyboard(sub.ClassID)
	b.send(m)
}

func (b *Bot) showSeats(ctx context.Context, chatID, tgID int64) {
	caller, ok := b.callerAddress(ctx, chatID, tgID)
	if !ok {
		return
	}
	list, err := b.svc.GetUsersAllowed(ctx, caller)
	if err != nil {
		b.replyErr(chatID, "users", err)
		return
	}
	if len(list) == 0 {
		b.reply(chatID, "Участников нет. Добавить: /adduser <адрес>")
		return
	}
	var sb strings.Builder
	sb.WriteString("Участники:\n")
	for i, u := range list {
		_, _ = fmt.Fprintf(&sb, "%d. %s\n", i+1, u)
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) askSeatAddress(ctx context.Context, chatID int64) {
	_ = b.states.Set(ctx, chatID, dialog.StateAwaitSeatAddress, dialog.Payload{})
	m := tgbotapi.NewMessage(chatID, "Отправьте адрес участника в формате 0x…")
	m.ReplyMarkup = navKeyboard()
	b.send(m)
}

func (b *Bot) addSeat(ctx context.Context, chatID int64, caller address.Address, raw string) {
	target, err := address.Parse(raw)
	if err != nil {
		b.replyErr(chatID, "adduser", err)
		return
	}
	if err := b.svc.AddUserToAllowedList(ctx, caller, target); err != nil {
		b.replyErr(chatID, "adduser", err)
		return
	}
	_ = b.states.Reset(ctx, chatID)
	b.reply(chatID, fmt.Sprintf("Участник %s добавлен.", target))
}

func (b *Bot) transfer(ctx context.Context, chatID int64, caller address.Address, rawTo string, id, qty uint64) {
	to, err := address.Parse(rawTo)
	if err != nil {
		b.replyErr(chatID, "transfer", err)
		return
	}
	if err := b.svc.Transfer(ctx, caller, caller, to, id, qty); err != nil {
		b.replyErr(chatID, "transfer", err)
		return
	}
	_ = b.states.Reset(ctx, chatID)
	b.reply(chatID, fmt.Sprintf("Передано %d шт. класса %d на %s.", qty, id, to))
}

func (b *Bot) exportSubscriptions(ctx context.Context, chatID int64) {
	now := b.now()
	data, err := export.Workbook(ctx, b.svc, now)
	if err != nil {
		b.replyErr(chatID, "export", err)
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  export.FileName(now),
		Bytes: data,
	})
	doc.Caption = "Подписки и участники"
	b.send(doc)
}
