package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/Skotchmaster/game_store/pkg/logging"
)

// Telegram allows about 30 messages per second per bot.
const broadcastRate = 25

type Broadcaster struct {
	api     Sender
	limiter *rate.Limiter
}

func NewBroadcaster(api Sender, perSecond float64) *Broadcaster {
	if perSecond <= 0 {
		perSecond = broadcastRate
	}
	return &Broadcaster{api: api, limiter: rate.NewLimiter(rate.Limit(perSecond), 1)}
}

// Broadcast sends text to every chat, throttled. Failed chats are skipped
// and reported together.
func (b *Broadcaster) Broadcast(ctx context.Context, chatIDs []int64, text string) (int, error) {
	l := logging.FromContext(ctx)
	delivered := 0
	var errs []error
	start := time.Now()

	for _, id := range chatIDs {
		if err := b.limiter.Wait(ctx); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := b.api.Send(tgbotapi.NewMessage(id, text)); err != nil {
			l.Warn("broadcast_send_error", "chat_id", id, "error", err)
			errs = append(errs, fmt.Errorf("chat %d: %w", id, err))
			continue
		}
		delivered++
	}

	l.Info("broadcast_done", "recipients", len(chatIDs), "delivered", delivered, "took", time.Since(start).String())
	return delivered, errors.Join(errs...)
}
