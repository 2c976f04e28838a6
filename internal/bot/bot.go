// Package bot is the telegram front end: each chat acts for the address it
// linked with /link.
package bot

import (
	"context"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/subpass/internal/dialog"
	"github.com/Spok95/subpass/internal/domain/address"
	"github.com/Spok95/subpass/internal/domain/classes"
	"github.com/Spok95/subpass/internal/domain/subscriptions"
	"github.com/Spok95/subpass/internal/domain/users"
)

// API is the part of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Service is the lifecycle controller as seen from chat commands.
type Service interface {
	Subscribe(ctx context.Context, caller address.Address, classID, duration uint64) (subscriptions.Subscription, error)
	SubscriptionsToUser(ctx context.Context, owner address.Address) (subscriptions.Subscription, error)
	ListSubscriptions(ctx context.Context) ([]subscriptions.Subscription, error)
	AddUserToAllowedList(ctx context.Context, caller, target address.Address) error
	GetUsersAllowed(ctx context.Context, owner address.Address) ([]address.Address, error)
	Transfer(ctx context.Context, operator, from, to address.Address, id, qty uint64) error
	SetApprovalForAll(ctx context.Context, holder, operator address.Address, approved bool) error
	BalanceOf(ctx context.Context, holder address.Address, id uint64) (uint64, error)
	Pause(ctx context.Context, caller address.Address) error
	Unpause(ctx context.Context, caller address.Address) error
	SetURI(ctx context.Context, caller address.Address, uri string) error
	Catalog() classes.Catalog
}

type UserStore interface {
	GetByTelegramID(ctx context.Context, tgID int64) (*users.User, error)
	UpsertFromTelegram(ctx context.Context, tg users.Telegram) (*users.User, error)
	SetAddress(ctx context.Context, tgID int64, a address.Address) (*users.User, error)
}

type StateStore interface {
	Get(ctx context.Context, chatID int64) (*dialog.Item, error)
	Set(ctx context.Context, chatID int64, state dialog.State, payload dialog.Payload) error
	Reset(ctx context.Context, chatID int64) error
}

type Bot struct {
	api       API
	log       *slog.Logger
	svc       Service
	users     UserStore
	states    StateStore
	adminChat int64
	now       func() time.Time
}

func New(api API, log *slog.Logger, svc Service, usersRepo UserStore, statesRepo StateStore, adminChatID int64) *Bot {
	return &Bot{
		api: api, log: log, svc: svc,
		users: usersRepo, states: statesRepo,
		adminChat: adminChatID, now: time.Now,
	}
}

func (b *Bot) Run(ctx context.Context, timeoutSec int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSec
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, upd)
		}
	}
}

func (b *Bot) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	switch {
	case upd.Message != nil && upd.Message.From != nil:
		if upd.Message.IsCommand() {
			b.handleCommand(ctx, upd.Message)
			return
		}
		b.handleStateMessage(ctx, upd.Message)
	case upd.CallbackQuery != nil && upd.CallbackQuery.Message != nil:
		b.handleCallback(ctx, upd.CallbackQuery)
	}
}
