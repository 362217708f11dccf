package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Skotchmaster/game_store/internal/models"
	"github.com/Skotchmaster/game_store/internal/service"
	"github.com/Skotchmaster/game_store/pkg/logging"
)

const (
	inlineLimit     = 50
	inlineCacheTime = 30
	// inlineStartArg is the /start payload the switch-to-chat button sends.
	inlineStartArg = "search"
)

// handleInline answers "@bot <query>" from any chat with matching games.
// Short queries get no results, only a button that opens the bot.
func (b *Bot) handleInline(ctx context.Context, q *tgbotapi.InlineQuery) {
	l := logging.FromContext(ctx)
	answer := tgbotapi.InlineConfig{
		InlineQueryID: q.ID,
		CacheTime:     inlineCacheTime,
		Results:       []interface{}{},
	}

	query := strings.TrimSpace(q.Query)
	if utf8.RuneCountInString(query) < service.MinSearchLen {
		answer.SwitchPMText = fmt.Sprintf("Type at least %d characters to search", service.MinSearchLen)
		answer.SwitchPMParameter = inlineStartArg
	} else {
		items, err := b.deps.Catalog.Search(ctx, query)
		if err != nil {
			l.Warn("inline_search_error", "error", err)
		}
		if len(items) > inlineLimit {
			items = items[:inlineLimit]
		}
		for _, p := range items {
			answer.Results = append(answer.Results, inlineArticle(p))
		}
		if len(items) == 0 {
			answer.SwitchPMText = "Nothing found. Open the shop"
			answer.SwitchPMParameter = inlineStartArg
		}
	}

	if _, err := b.api.Request(answer); err != nil {
		l.Warn("inline_answer_error", "error", err)
	}
}

func inlineArticle(p models.Product) tgbotapi.InlineQueryResultArticle {
	a := tgbotapi.NewInlineQueryResultArticle(strconv.FormatUint(uint64(p.ID), 10), p.Name, productCaption(p))
	a.Description = fmt.Sprintf("%s · %s", FormatPrice(p.SalePrice()), strings.Join(p.Platforms, ", "))
	return a
}

func inlineUserID(q *tgbotapi.InlineQuery) int64 {
	if q.From == nil {
		return 0
	}
	return q.From.ID
}
