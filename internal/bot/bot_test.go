package bot

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/subpass/internal/dialog"
	"github.com/Spok95/subpass/internal/domain/address"
	"github.com/Spok95/subpass/internal/domain/classes"
	"github.com/Spok95/subpass/internal/domain/settings"
	"github.com/Spok95/subpass/internal/domain/users"
	"github.com/Spok95/subpass/internal/lifecycle"
	"github.com/Spok95/subpass/internal/state"
)

const (
	adminID = int64(100)
	aliceID = int64(1)
	bobID   = int64(2)
)

var (
	owner = address.MustParse("0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266")
	alice = address.MustParse("0x70997970c51812dc3a010c7d01b50e0d17dc79c8")
	bob   = address.MustParse("0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc")
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (f *fakeAPI) StopReceivingUpdates() {}

// lastText is the text of the latest plain message or edit.
func (f *fakeAPI) lastText(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	switch m := f.sent[len(f.sent)-1].(type) {
	case tgbotapi.MessageConfig:
		return m.Text
	case tgbotapi.EditMessageTextConfig:
		return m.Text
	}
	return ""
}

func (f *fakeAPI) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, m.Text)
		}
	}
	return out
}

type harness struct {
	bot    *Bot
	api    *fakeAPI
	ctl    *lifecycle.Controller
	states *dialog.Memory
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	runner := state.NewMemory(settings.Settings{Owner: owner, URI: "https://meta.example/{id}.json"})
	ctl := lifecycle.New(runner, classes.Default())
	api := &fakeAPI{}
	states := dialog.NewMemory()
	b := New(api, slog.New(slog.NewTextHandler(io.Discard, nil)), ctl, users.NewMemory(), states, adminID)
	b.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	return &harness{bot: b, api: api, ctl: ctl, states: states}
}

func command(from int64, text string) tgbotapi.Update {
	n := len(text)
	if i := strings.IndexByte(text, ' '); i >= 0 {
		n = i
	}
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: from},
		From:     &tgbotapi.User{ID: from, UserName: "user"},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: n}},
	}}
}

func text(from int64, s string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text: s,
		Chat: &tgbotapi.Chat{ID: from},
		From: &tgbotapi.User{ID: from},
	}}
}

func callback(from int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: from},
		Message: &tgbotapi.Message{MessageID: 10, Chat: &tgbotapi.Chat{ID: from}},
		Data:    data,
	}}
}

func (h *harness) do(upd tgbotapi.Update) { h.bot.HandleUpdate(context.Background(), upd) }

func TestStartAndLink(t *testing.T) {
	h := newHarness(t)

	h.do(command(aliceID, "/start"))
	assert.Contains(t, h.api.lastText(t), "/link")

	h.do(command(aliceID, "/me"))
	assert.Contains(t, h.api.lastText(t), "Сначала привяжите адрес")

	h.do(command(aliceID, "/link not-an-address"))
	assert.Contains(t, h.api.lastText(t), "0x")

	h.do(command(aliceID, "/link "+alice.String()))
	assert.Contains(t, h.api.lastText(t), "привязан")

	h.do(command(aliceID, "/me"))
	assert.Contains(t, h.api.lastText(t), "Подписки нет")
}

func TestLinkDialog(t *testing.T) {
	h := newHarness(t)

	h.do(command(aliceID, "/link"))
	st, _ := h.states.Get(context.Background(), aliceID)
	assert.Equal(t, dialog.StateAwaitAddress, st.State)

	h.do(text(aliceID, strings.ToUpper(alice.String()[2:])))
	assert.Contains(t, h.api.lastText(t), "0x и 40")

	h.do(text(aliceID, alice.String()))
	assert.Contains(t, h.api.lastText(t), "привязан")
	st, _ = h.states.Get(context.Background(), aliceID)
	assert.Equal(t, dialog.StateIdle, st.State)
}

func TestSubscribeThroughKeyboard(t *testing.T) {
	h := newHarness(t)
	h.do(command(aliceID, "/link "+alice.String()))

	h.do(command(aliceID, "/subscribe"))
	assert.Equal(t, "Выберите класс подписки:", h.api.lastText(t))

	h.do(callback(aliceID, "sub:class:2"))
	assert.Equal(t, "Standard: выберите срок", h.api.lastText(t))

	h.do(callback(aliceID, "sub:dur:2:26"))
	assert.Contains(t, h.api.lastText(t), "Подписка оформлена")

	sub, err := h.ctl.SubscriptionsToUser(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, classes.Standard, sub.ClassID)

	h.do(callback(aliceID, "sub:dur:2:26"))
	assert.Equal(t, "Операция отклонена: AlreadySubscribed", h.api.lastText(t))
}

func TestAddUserAndList(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.do(command(aliceID, "/link "+alice.String()))
	_, err := h.ctl.Subscribe(ctx, alice, classes.Standard, 4)
	require.NoError(t, err)

	h.do(command(aliceID, "/adduser "+bob.String()))
	assert.Contains(t, h.api.lastText(t), "добавлен")

	h.do(command(aliceID, "/adduser"))
	h.do(text(aliceID, owner.String()))
	assert.Contains(t, h.api.lastText(t), "добавлен")

	h.do(command(aliceID, "/adduser "+bob.String()))
	assert.Equal(t, "Операция отклонена: DuplicateGrant", h.api.lastText(t))

	h.do(command(aliceID, "/users"))
	assert.Equal(t, "Участники:\n1. "+bob.String()+"\n2. "+owner.String()+"\n", h.api.lastText(t))

	h.do(command(aliceID, "/me"))
	assert.Contains(t, h.api.lastText(t), "Мест занято: 3 из 4")
}

func TestTransferCommandAndButton(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.do(command(aliceID, "/link "+alice.String()))
	h.do(command(bobID, "/link "+bob.String()))
	_, err := h.ctl.Subscribe(ctx, alice, classes.Basic, 4)
	require.NoError(t, err)

	h.do(command(aliceID, "/transfer "+bob.String()+" x"))
	assert.Equal(t, "Класс должен быть числом.", h.api.lastText(t))

	h.do(command(aliceID, "/transfer "+bob.String()+" 1 2"))
	assert.Equal(t, "Операция отклонена: InsufficientBalance", h.api.lastText(t))

	h.do(command(aliceID, "/transfer "+bob.String()+" 1"))
	assert.Contains(t, h.api.lastText(t), "Передано 1")

	// bob sends it back through the /me button
	h.do(callback(bobID, "xfer:1"))
	h.do(text(bobID, alice.String()))
	assert.Contains(t, h.api.lastText(t), "Передано 1")

	sub, err := h.ctl.SubscriptionsToUser(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, classes.Basic, sub.ClassID)
}

func TestAdminCommands(t *testing.T) {
	h := newHarness(t)
	h.do(command(adminID, "/link "+owner.String()))
	h.do(command(aliceID, "/link "+alice.String()))

	h.do(command(aliceID, "/pause"))
	assert.Equal(t, "Доступ запрещён", h.api.lastText(t))
	h.do(command(aliceID, "/seturi https://evil.example/{id}"))
	assert.Equal(t, "Доступ запрещён", h.api.lastText(t))

	h.do(command(adminID, "/pause"))
	assert.Equal(t, "Сервис приостановлен.", h.api.lastText(t))

	h.do(command(aliceID, "/subscribe"))
	h.do(callback(aliceID, "sub:dur:1:4"))
	assert.Equal(t, "Операция отклонена: Paused", h.api.lastText(t))

	h.do(command(adminID, "/unpause"))
	assert.Equal(t, "Работа сервиса возобновлена.", h.api.lastText(t))

	h.do(command(adminID, "/seturi https://new.example/{id}.json"))
	assert.Equal(t, "Шаблон метаданных обновлён.", h.api.lastText(t))
	uri, err := h.ctl.URI(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "https://new.example/{id}.json", uri)
}

func TestAdminChatStillNeedsOwnerAddress(t *testing.T) {
	h := newHarness(t)
	h.do(command(adminID, "/link "+alice.String()))

	h.do(command(adminID, "/pause"))
	assert.Equal(t, "Операция отклонена: NotPrivileged", h.api.lastText(t))
}

func TestLinkRefusesAddressOfAnotherAccount(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.do(command(aliceID, "/link "+alice.String()))
	_, err := h.ctl.Subscribe(ctx, alice, classes.Standard, 4)
	require.NoError(t, err)

	h.do(command(bobID, "/link "+alice.String()))
	assert.Equal(t, "Этот адрес уже привязан к другому аккаунту.", h.api.lastText(t))

	h.do(command(bobID, "/transfer "+bob.String()+" 2"))
	assert.Contains(t, h.api.lastText(t), "Сначала привяжите адрес")

	sub, err := h.ctl.SubscriptionsToUser(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, classes.Standard, sub.ClassID)
	bal, err := h.ctl.BalanceOf(ctx, alice, uint64(classes.Standard))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), bal)

	h.do(command(bobID, "/link "+owner.String()))
	h.do(command(bobID, "/pause"))
	assert.Equal(t, "Доступ запрещён", h.api.lastText(t))
	paused, err := h.ctl.Paused(ctx)
	require.NoError(t, err)
	assert.False(t, paused)
}

func TestExportOnlyForAdmin(t *testing.T) {
	h := newHarness(t)

	h.do(command(aliceID, "/export"))
	assert.Equal(t, "Доступ запрещён", h.api.lastText(t))

	h.do(command(adminID, "/export"))
	doc, ok := h.api.sent[len(h.api.sent)-1].(tgbotapi.DocumentConfig)
	require.True(t, ok)
	file, ok := doc.File.(tgbotapi.FileBytes)
	require.True(t, ok)
	assert.Equal(t, "subscriptions_20260101_000000.xlsx", file.Name)
	assert.NotEmpty(t, file.Bytes)
}

func TestCancelResetsDialog(t *testing.T) {
	h := newHarness(t)
	h.do(command(aliceID, "/link"))
	h.do(callback(aliceID, "nav:cancel"))

	st, _ := h.states.Get(context.Background(), aliceID)
	assert.Equal(t, dialog.StateIdle, st.State)
	assert.Equal(t, "Операция отменена.", h.api.lastText(t))
	assert.NotEmpty(t, h.api.requests)
}

func TestUnknownInput(t *testing.T) {
	h := newHarness(t)
	h.do(command(aliceID, "/nope"))
	assert.Equal(t, "Не знаю такую команду. Наберите /help", h.api.lastText(t))

	h.do(text(aliceID, "hello"))
	assert.Equal(t, "Не понял сообщение. Наберите /help", h.api.lastText(t))

	h.do(command(adminID, "/help"))
	assert.Contains(t, h.api.lastText(t), "/export")
	h.do(command(aliceID, "/help"))
	assert.NotContains(t, h.api.lastText(t), "/export")
	assert.Len(t, h.api.texts(), 4)
}
