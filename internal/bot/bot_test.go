package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/game_store/internal/events"
	"github.com/Skotchmaster/game_store/internal/models"
	"github.com/Skotchmaster/game_store/internal/repo"
	"github.com/Skotchmaster/game_store/internal/service"
	"github.com/Skotchmaster/game_store/internal/testutil"
)

type fakeSender struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	answered int
	failFor  map[int64]bool
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok && f.failFor[m.ChatID] {
		return tgbotapi.Message{}, errors.New("Forbidden: bot was blocked by the user")
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answered++
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, c := range f.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.PhotoConfig:
			out = append(out, m.Caption)
		}
	}
	return out
}

func (f *fakeSender) last() string {
	t := f.texts()
	if len(t) == 0 {
		return ""
	}
	return t[len(t)-1]
}

type harness struct {
	bot    *Bot
	api    *fakeSender
	repo   *repo.GormRepo
	events *events.Recorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	r := repo.New(testutil.NewDB(t), 5*time.Second)
	rec := &events.Recorder{}
	api := &fakeSender{}
	b := New(api, Deps{
		Catalog: &service.CatalogService{Repo: r, Events: rec, DefaultPlatforms: []string{"PC", "PlayStation 5"}},
		Cart:    &service.CartService{Repo: r},
		Orders:  &service.OrderService{Repo: r, Events: rec},
		Users:   &service.UserService{Repo: r},
	}, WithWorkers(4))
	return &harness{bot: b, api: api, repo: r, events: rec}
}

const testUser = int64(4242)

func textUpdate(text string) tgbotapi.Update {
	m := &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: testUser, UserName: "gamer", FirstName: "Abebe"},
		Chat:      &tgbotapi.Chat{ID: testUser},
		Text:      text,
	}
	if strings.HasPrefix(text, "/") {
		cmd, _, _ := strings.Cut(text, " ")
		m.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	}
	return tgbotapi.Update{UpdateID: 1, Message: m}
}

func callbackUpdate(data string) tgbotapi.Update {
	return tgbotapi.Update{UpdateID: 2, CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: testUser, UserName: "gamer"},
		Message: &tgbotapi.Message{MessageID: 2, Chat: &tgbotapi.Chat{ID: testUser}},
		Data:    data,
	}}
}

func (h *harness) send(t *testing.T, u tgbotapi.Update) string {
	t.Helper()
	h.bot.HandleUpdate(context.Background(), u)
	return h.api.last()
}

func TestBot_StartRegistersUser(t *testing.T) {
	h := newHarness(t)

	got := h.send(t, textUpdate("/start"))
	assert.Equal(t, welcomeText, got)

	u, err := h.repo.GetUser(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, "gamer", u.Username)
}

func TestBot_FullCheckoutFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := testutil.CreateProduct(t, h.repo.DB, "Elden Ring", 59.99, 3, "PC")

	h.send(t, textUpdate("/start"))

	assert.Contains(t, h.send(t, callbackUpdate(CbPlatform+":PC")), "Games for PC")
	assert.Contains(t, h.send(t, callbackUpdate(cbData(CbProduct, p.ID))), "Price: $59.99")

	assert.Contains(t, h.send(t, callbackUpdate(cbData(CbAddToCart, p.ID))), "How many copies of Elden Ring")
	assert.Equal(t, StepQuantity, h.bot.Sessions().Peek(testUser).Step)

	assert.Contains(t, h.send(t, textUpdate("two")), "positive whole number")
	assert.Equal(t, StepQuantity, h.bot.Sessions().Peek(testUser).Step)

	assert.Contains(t, h.send(t, textUpdate("5")), "only 3 of Elden Ring in stock")
	assert.Contains(t, h.send(t, textUpdate("2")), "Added 2 x Elden Ring")
	assert.Equal(t, StepIdle, h.bot.Sessions().Peek(testUser).Step)

	assert.Contains(t, h.send(t, callbackUpdate(CbViewCart)), "Total: $119.98")

	assert.Equal(t, promptName, h.send(t, callbackUpdate(CbConfirmCheckout)))
	assert.Contains(t, h.send(t, textUpdate("Al")), promptName)
	assert.Equal(t, promptEmail, h.send(t, textUpdate("Abebe Kebede")))
	assert.Equal(t, promptPhone, h.send(t, textUpdate("skip")))
	assert.Contains(t, h.send(t, textUpdate("12345")), promptPhone)
	assert.Equal(t, promptAddress, h.send(t, textUpdate("0911 22 33 44")))

	summary := h.send(t, textUpdate("Bole road, house 12, Addis Ababa"))
	assert.Contains(t, summary, "Please confirm your order")
	assert.Contains(t, summary, "Phone: 0911223344")
	assert.Contains(t, summary, "Email: -")
	assert.Equal(t, StepConfirm, h.bot.Sessions().Peek(testUser).Step)

	receipt := h.send(t, callbackUpdate(CbFinalizeCheckout))
	assert.Contains(t, receipt, "Order #1 has been placed")
	assert.Contains(t, receipt, "Elden Ring x2 @ $59.99")
	assert.Contains(t, receipt, "Total: $119.98")
	assert.Equal(t, StepIdle, h.bot.Sessions().Peek(testUser).Step)

	assert.Equal(t, 1, testutil.Stock(t, h.repo.DB, p.ID))
	cart, err := h.repo.GetCart(ctx, testUser)
	require.NoError(t, err)
	assert.Empty(t, cart)
	assert.Equal(t, []string{events.OrderCreated}, h.events.Types())

	u, err := h.repo.GetUser(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, "0911223344", u.Phone)

	orders := h.send(t, textUpdate("/orders"))
	assert.Contains(t, orders, "#1")
	assert.Contains(t, orders, "pending")

	assert.Contains(t, h.send(t, callbackUpdate(cbData(CbCancelOrder, 1))), "Order #1 has been cancelled")
}

func TestBot_FinalizeReportsInsufficientStock(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := testutil.CreateProduct(t, h.repo.DB, "Halo Infinite", 40, 2, "Xbox One")

	h.send(t, callbackUpdate(cbData(CbAddToCart, p.ID)))
	h.send(t, textUpdate("2"))
	h.send(t, callbackUpdate(CbConfirmCheckout))
	h.send(t, textUpdate("Abebe Kebede"))
	h.send(t, textUpdate("abebe@example.com"))
	h.send(t, textUpdate("+251911223344"))
	h.send(t, textUpdate("Bole road, house 12"))

	// another buyer takes one unit before this one confirms
	_, err := h.repo.AdjustStock(ctx, p.ID, -1)
	require.NoError(t, err)

	got := h.send(t, callbackUpdate(CbFinalizeCheckout))
	assert.Contains(t, got, "only 1 left of Halo Infinite")
	assert.Equal(t, 1, testutil.Stock(t, h.repo.DB, p.ID))
	assert.EqualValues(t, 0, testutil.Count(t, h.repo.DB, &models.Order{}))

	cart, err := h.repo.GetCart(ctx, testUser)
	require.NoError(t, err)
	assert.Len(t, cart, 1)
}

func TestBot_FinalizeWithoutDialog(t *testing.T) {
	h := newHarness(t)
	assert.Contains(t, h.send(t, callbackUpdate(CbFinalizeCheckout)), "no checkout in progress")
}

func TestBot_CheckoutEmptyCart(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "Your cart is empty.", h.send(t, textUpdate("/checkout")))
	assert.Equal(t, StepIdle, h.bot.Sessions().Peek(testUser).Step)
}

func TestBot_CancelAbortsDialog(t *testing.T) {
	h := newHarness(t)
	p := testutil.CreateProduct(t, h.repo.DB, "Hades", 25, 2)

	h.send(t, callbackUpdate(cbData(CbAddToCart, p.ID)))
	require.Equal(t, StepQuantity, h.bot.Sessions().Peek(testUser).Step)

	assert.Equal(t, "Cancelled.", h.send(t, textUpdate("/cancel")))
	assert.Equal(t, StepIdle, h.bot.Sessions().Peek(testUser).Step)
}

func TestBot_SearchCommandAndFreeText(t *testing.T) {
	h := newHarness(t)
	testutil.CreateProduct(t, h.repo.DB, "Stardew Valley", 15, 0)

	assert.Contains(t, h.send(t, textUpdate("/search valley")), "Found 1 game(s)")
	assert.Contains(t, h.send(t, textUpdate("stardew")), "Found 1 game(s)")
	assert.Contains(t, h.send(t, textUpdate("/search x")), "at least 2 characters")
	assert.Equal(t, "Usage: /search <keyword>", h.send(t, textUpdate("/search")))
	assert.Contains(t, h.send(t, textUpdate("zelda")), "No games found")
}

func TestBot_CatalogShowsDefaultPlatforms(t *testing.T) {
	h := newHarness(t)
	h.send(t, textUpdate("/catalog"))

	h.api.mu.Lock()
	msg := h.api.sent[len(h.api.sent)-1].(tgbotapi.MessageConfig)
	h.api.mu.Unlock()

	kb := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.NotEmpty(t, kb.InlineKeyboard)
	assert.Equal(t, "PC", kb.InlineKeyboard[0][0].Text)
	require.NotNil(t, kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "platform:PC", *kb.InlineKeyboard[0][0].CallbackData)
}

func TestBot_CallbacksAreAnswered(t *testing.T) {
	h := newHarness(t)
	h.send(t, callbackUpdate(CbMainMenu))
	got := h.send(t, callbackUpdate("bogus:1"))
	assert.Equal(t, "That button is no longer valid.", got)
	assert.Equal(t, 2, h.api.answered)
}

func TestBot_RunProcessesUpdates(t *testing.T) {
	h := newHarness(t)

	updates := make(chan tgbotapi.Update, 3)
	updates <- textUpdate("/help")
	updates <- textUpdate("/menu")
	updates <- callbackUpdate(CbViewCart)
	close(updates)

	require.NoError(t, h.bot.Run(context.Background(), updates))
	assert.Len(t, h.api.texts(), 3)
}

func inlineUpdate(query string) tgbotapi.Update {
	return tgbotapi.Update{UpdateID: 3, InlineQuery: &tgbotapi.InlineQuery{
		ID:    "iq",
		From:  &tgbotapi.User{ID: testUser, UserName: "gamer"},
		Query: query,
	}}
}

func (f *fakeSender) lastInline(t *testing.T) tgbotapi.InlineConfig {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	cfg, ok := f.requests[len(f.requests)-1].(tgbotapi.InlineConfig)
	require.True(t, ok, "expected InlineConfig, got %T", f.requests[len(f.requests)-1])
	return cfg
}

func TestBot_InlineSearch(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	p := testutil.CreateProduct(t, h.repo.DB, "Hollow Knight", 15, 4, "PC", "Nintendo Switch")
	testutil.CreateProduct(t, h.repo.DB, "Celeste", 20, 2, "PC")
	require.NoError(t, h.repo.CreateDiscount(ctx, &models.Discount{
		ProductID:  p.ID,
		Percentage: 20,
		StartsAt:   time.Now().Add(-time.Hour),
		EndsAt:     time.Now().Add(time.Hour),
	}))

	h.bot.HandleUpdate(ctx, inlineUpdate("hollow"))
	cfg := h.api.lastInline(t)
	assert.Equal(t, "iq", cfg.InlineQueryID)
	assert.Empty(t, cfg.SwitchPMText)
	require.Len(t, cfg.Results, 1)
	art, ok := cfg.Results[0].(tgbotapi.InlineQueryResultArticle)
	require.True(t, ok)
	assert.Equal(t, fmt.Sprint(p.ID), art.ID)
	assert.Equal(t, "Hollow Knight", art.Title)
	assert.Contains(t, art.Description, "$12.00")
	msg, ok := art.InputMessageContent.(tgbotapi.InputTextMessageContent)
	require.True(t, ok)
	assert.Contains(t, msg.Text, "Price: $12.00")

	h.bot.HandleUpdate(ctx, inlineUpdate(" h "))
	cfg = h.api.lastInline(t)
	assert.Empty(t, cfg.Results)
	assert.Contains(t, cfg.SwitchPMText, "at least 2")
	assert.Equal(t, inlineStartArg, cfg.SwitchPMParameter)

	h.bot.HandleUpdate(ctx, inlineUpdate("zelda"))
	cfg = h.api.lastInline(t)
	assert.Empty(t, cfg.Results)
	assert.NotEmpty(t, cfg.SwitchPMText)

	// inline queries never create a user record
	_, err := h.repo.GetUser(ctx, testUser)
	assert.Error(t, err)
}

func TestBot_InlineSearchCapsResults(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < inlineLimit+5; i++ {
		testutil.CreateProduct(t, h.repo.DB, fmt.Sprintf("Puzzle Pack %02d", i), 1, 1)
	}

	h.bot.HandleUpdate(context.Background(), inlineUpdate("puzzle"))
	assert.Len(t, h.api.lastInline(t).Results, inlineLimit)
}
