package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/subpass/internal/domain/classes"
)

const (
	btnMySubscription = "Моя подписка"
	btnBuy            = "Купить подписку"
	btnSeats          = "Участники"
)

func navKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✖️ Отменить", "nav:cancel"),
		),
	)
}

func classKeyboard(cat classes.Catalog) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	for _, c := range cat.List() {
		label := fmt.Sprintf("%s (мест: %d)", c.Name, c.SeatLimit)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("sub:class:%d", c.ID)),
		))
	}
	rows = append(rows, navKeyboard().InlineKeyboard[0])
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func durationKeyboard(c classes.Class) tgbotapi.InlineKeyboardMarkup {
	row := []tgbotapi.InlineKeyboardButton{}
	for _, d := range c.Durations {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%d нед.", d), fmt.Sprintf("sub:dur:%d:%d", c.ID, d)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row, navKeyboard().InlineKeyboard[0])
}

func subscriptionKeyboard(classID uint64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Добавить участника", "seat:add"),
			tgbotapi.NewInlineKeyboardButtonData("📤 Передать", fmt.Sprintf("xfer:%d", classID)),
		),
	)
}

func mainReplyKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.ReplyKeyboardMarkup{
		ResizeKeyboard: true,
		Keyboard: [][]tgbotapi.KeyboardButton{
			{tgbotapi.NewKeyboardButton(btnMySubscription), tgbotapi.NewKeyboardButton(btnBuy)},
			{tgbotapi.NewKeyboardButton(btnSeats)},
		},
	}
}
