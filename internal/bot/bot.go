package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"github.com/Skotchmaster/game_store/internal/domain"
	"github.com/Skotchmaster/game_store/internal/models"
	"github.com/Skotchmaster/game_store/internal/service"
	"github.com/Skotchmaster/game_store/pkg/logging"
)

// Sender is the part of tgbotapi.BotAPI the bot uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Deps struct {
	Catalog *service.CatalogService
	Cart    *service.CartService
	Orders  *service.OrderService
	Users   *service.UserService
}

type Bot struct {
	api       Sender
	deps      Deps
	sessions  *Sessions
	imagesDir string
	workers   int
	log       *slog.Logger
}

type Option func(*Bot)

func WithImagesDir(dir string) Option { return func(b *Bot) { b.imagesDir = dir } }
func WithWorkers(n int) Option        { return func(b *Bot) { b.workers = n } }
func WithLogger(l *slog.Logger) Option {
	return func(b *Bot) { b.log = l }
}

func New(api Sender, deps Deps, opts ...Option) *Bot {
	b := &Bot{
		api:      api,
		deps:     deps,
		sessions: NewSessions(),
		workers:  8,
		log:      slog.Default(),
	}
	for _, o := range opts {
		o(b)
	}
	if b.workers <= 0 {
		b.workers = 1
	}
	return b
}

func (b *Bot) Sessions() *Sessions { return b.sessions }

// Run handles updates on a bounded pool of workers until ctx is done or the
// channel closes. Updates of one user are serialized by their session lock.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for {
		select {
		case <-ctx.Done():
			_ = g.Wait()
			return nil
		case u, ok := <-updates:
			if !ok {
				return g.Wait()
			}
			g.Go(func() error {
				b.HandleUpdate(gctx, u)
				return nil
			})
		}
	}
}

func (b *Bot) HandleUpdate(ctx context.Context, u tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("update_panic", "update_id", u.UpdateID, "panic", fmt.Sprint(r))
		}
	}()

	switch {
	case u.CallbackQuery != nil && u.CallbackQuery.From != nil:
		cq := u.CallbackQuery
		ctx = logging.IntoContext(ctx, b.log.With("handler", "callback", "user_id", cq.From.ID))
		sess, release := b.sessions.Acquire(cq.From.ID)
		defer release()
		b.handleCallback(ctx, sess, cq)
	case u.InlineQuery != nil:
		ctx = logging.IntoContext(ctx, b.log.With("handler", "inline", "user_id", inlineUserID(u.InlineQuery)))
		b.handleInline(ctx, u.InlineQuery)
	case u.Message != nil && u.Message.From != nil && u.Message.Chat != nil:
		m := u.Message
		ctx = logging.IntoContext(ctx, b.log.With("handler", "message", "user_id", m.From.ID))
		sess, release := b.sessions.Acquire(m.From.ID)
		defer release()
		b.handleMessage(ctx, sess, m)
	}
}

func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) {
	err := b.deps.Users.EnsureUser(ctx, models.User{
		ID:        from.ID,
		Username:  from.UserName,
		FirstName: from.FirstName,
		LastName:  from.LastName,
	})
	if err != nil {
		logging.FromContext(ctx).Error("ensure_user_error", "error", err)
	}
}

func (b *Bot) send(ctx context.Context, c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		logging.FromContext(ctx).Warn("send_error", "error", err)
	}
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string, markup any) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	b.send(ctx, msg)
}

// imagePath returns the local file for ref when it exists under imagesDir.
func (b *Bot) imagePath(ref string) (string, bool) {
	if ref == "" || b.imagesDir == "" {
		return "", false
	}
	p := filepath.Join(b.imagesDir, filepath.Base(ref))
	st, err := os.Stat(p)
	if err != nil || st.IsDir() {
		return "", false
	}
	return p, true
}

// userMessage turns an error into text fit for a buyer. Storage details are
// logged, never shown.
func userMessage(ctx context.Context, err error) string {
	var se *domain.StockError
	switch {
	case errors.As(err, &se) && errors.Is(err, domain.ErrInsufficientStock):
		return fmt.Sprintf("Sorry, only %d left of %s (you asked for %d). Please adjust your cart.", se.Available, se.Name, se.Requested)
	case errors.As(err, &se):
		return fmt.Sprintf("Sorry, only %d of %s in stock.", se.Available, se.Name)
	case errors.Is(err, domain.ErrEmptyCart):
		return "Your cart is empty."
	case errors.Is(err, domain.ErrInvalidQuantity):
		return "Please enter a positive whole number."
	case errors.Is(err, domain.ErrValidation):
		return validationText(err)
	case errors.Is(err, domain.ErrNotFound):
		return "That item is no longer available."
	case errors.Is(err, domain.ErrConflict):
		return "That order can no longer be changed."
	case errors.Is(err, domain.ErrBusy):
		return "The store is busy right now, please try again in a moment."
	default:
		logging.FromContext(ctx).Error("bot_internal_error", "error", err)
		return "Something went wrong, please try again later."
	}
}

func validationText(err error) string {
	msg := strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")
	if msg == "" || msg == domain.ErrValidation.Error() {
		return "Invalid input."
	}
	return "Invalid input: " + msg + "."
}
