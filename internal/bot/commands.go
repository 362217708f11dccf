package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Skotchmaster/game_store/pkg/logging"
)

const ordersShown = 5

func (b *Bot) handleMessage(ctx context.Context, sess *Session, m *tgbotapi.Message) {
	chatID := m.Chat.ID
	b.ensureUser(ctx, m.From)

	if m.IsCommand() {
		b.handleCommand(ctx, sess, m)
		return
	}

	text := strings.TrimSpace(m.Text)
	if text == "" {
		return
	}
	if sess.Step != StepIdle {
		b.handleDialog(ctx, sess, chatID, m.From.ID, text)
		return
	}
	b.search(ctx, chatID, text)
}

func (b *Bot) handleCommand(ctx context.Context, sess *Session, m *tgbotapi.Message) {
	chatID, userID := m.Chat.ID, m.From.ID
	logging.FromContext(ctx).Info("command", "command", m.Command())

	switch m.Command() {
	case "start":
		sess.Reset()
		b.reply(ctx, chatID, welcomeText, mainMenuKeyboard())
		if m.CommandArguments() == inlineStartArg {
			b.reply(ctx, chatID, "Type a game name and I will search the catalog.", nil)
		}
	case "menu":
		sess.Reset()
		b.reply(ctx, chatID, "Main menu", mainMenuKeyboard())
	case "catalog":
		b.showPlatforms(ctx, chatID)
	case "cart":
		b.showCart(ctx, chatID, userID)
	case "checkout":
		b.startCheckout(ctx, sess, chatID, userID)
	case "search":
		kw := strings.TrimSpace(m.CommandArguments())
		if kw == "" {
			b.reply(ctx, chatID, "Usage: /search <keyword>", nil)
			return
		}
		b.search(ctx, chatID, kw)
	case "orders":
		b.showOrders(ctx, chatID, userID)
	case "cancel":
		sess.Reset()
		b.reply(ctx, chatID, "Cancelled.", mainMenuKeyboard())
	case "help":
		b.reply(ctx, chatID, helpText, nil)
	default:
		b.reply(ctx, chatID, "Unknown command. Type /help to see what I can do.", nil)
	}
}

func (b *Bot) showPlatforms(ctx context.Context, chatID int64) {
	platforms, err := b.deps.Catalog.Platforms(ctx)
	if err != nil {
		b.reply(ctx, chatID, userMessage(ctx, err), nil)
		return
	}
	b.reply(ctx, chatID, "Choose a platform:", platformsKeyboard(platforms))
}

func (b *Bot) showPlatform(ctx context.Context, chatID int64, platform string) {
	products, err := b.deps.Catalog.ListByPlatform(ctx, platform)
	if err != nil {
		b.reply(ctx, chatID, userMessage(ctx, err), nil)
		return
	}
	if len(products) == 0 {
		b.reply(ctx, chatID, "No games in stock for "+platform+" right now.", productsKeyboard(nil))
		return
	}
	b.reply(ctx, chatID, "Games for "+platform+":", productsKeyboard(products))
}

func (b *Bot) showProduct(ctx context.Context, chatID int64, id uint) {
	p, err := b.deps.Catalog.GetProduct(ctx, id)
	if err != nil {
		b.reply(ctx, chatID, userMessage(ctx, err), nil)
		return
	}
	if path, ok := b.imagePath(p.ImageRef); ok {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(path))
		photo.Caption = productCaption(*p)
		photo.ReplyMarkup = productKeyboard(*p)
		b.send(ctx, photo)
		return
	}
	b.reply(ctx, chatID, productCaption(*p), productKeyboard(*p))
}

func (b *Bot) showCart(ctx context.Context, chatID, userID int64) {
	cart, err := b.deps.Cart.List(ctx, userID)
	if err != nil {
		b.reply(ctx, chatID, userMessage(ctx, err), nil)
		return
	}
	b.reply(ctx, chatID, cartText(cart), cartKeyboard(cart))
}

func (b *Bot) showOrders(ctx context.Context, chatID, userID int64) {
	orders, err := b.deps.Orders.ListUserOrders(ctx, userID, ordersShown)
	if err != nil {
		b.reply(ctx, chatID, userMessage(ctx, err), nil)
		return
	}
	b.reply(ctx, chatID, ordersText(orders), ordersKeyboard(orders))
}

func (b *Bot) search(ctx context.Context, chatID int64, kw string) {
	products, err := b.deps.Catalog.Search(ctx, kw)
	if err != nil {
		b.reply(ctx, chatID, userMessage(ctx, err), nil)
		return
	}
	if len(products) == 0 {
		b.reply(ctx, chatID, searchResultsText(kw, products), mainMenuKeyboard())
		return
	}
	b.reply(ctx, chatID, searchResultsText(kw, products), productsKeyboard(products))
}

func (b *Bot) handleCallback(ctx context.Context, sess *Session, cq *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		logging.FromContext(ctx).Warn("answer_callback_error", "error", err)
	}
	if cq.Message == nil || cq.Message.Chat == nil {
		return
	}
	chatID, userID := cq.Message.Chat.ID, cq.From.ID

	cb, err := ParseCallback(cq.Data)
	if err != nil {
		logging.FromContext(ctx).Warn("bad_callback", "data", cq.Data, "error", err)
		b.reply(ctx, chatID, "That button is no longer valid.", mainMenuKeyboard())
		return
	}

	switch cb.Action {
	case CbMainMenu:
		sess.Reset()
		b.reply(ctx, chatID, "Main menu", mainMenuKeyboard())
	case CbCatalog:
		b.showPlatforms(ctx, chatID)
	case CbPlatform:
		b.showPlatform(ctx, chatID, cb.Arg)
	case CbProduct:
		b.showProduct(ctx, chatID, cb.ID)
	case CbAddToCart:
		b.askQuantity(ctx, sess, chatID, cb.ID)
	case CbRemoveFromCart:
		if err := b.deps.Cart.Remove(ctx, userID, cb.ID); err != nil {
			b.reply(ctx, chatID, userMessage(ctx, err), nil)
			return
		}
		b.showCart(ctx, chatID, userID)
	case CbViewCart:
		b.showCart(ctx, chatID, userID)
	case CbClearCart:
		if err := b.deps.Cart.Clear(ctx, userID); err != nil {
			b.reply(ctx, chatID, userMessage(ctx, err), nil)
			return
		}
		b.reply(ctx, chatID, "Your cart has been cleared.", mainMenuKeyboard())
	case CbConfirmCheckout:
		b.startCheckout(ctx, sess, chatID, userID)
	case CbFinalizeCheckout:
		b.finalizeCheckout(ctx, sess, chatID, userID)
	case CbMyOrders:
		b.showOrders(ctx, chatID, userID)
	case CbCancelOrder:
		b.cancelOrder(ctx, chatID, userID, cb.ID)
	case CbCancelOp:
		sess.Reset()
		b.reply(ctx, chatID, "Cancelled.", mainMenuKeyboard())
	}
}

func (b *Bot) cancelOrder(ctx context.Context, chatID, userID int64, orderID uint) {
	o, err := b.deps.Orders.CancelByUser(ctx, userID, orderID)
	if err != nil {
		b.reply(ctx, chatID, userMessage(ctx, err), nil)
		return
	}
	b.reply(ctx, chatID, fmt.Sprintf("Order #%d has been cancelled.", o.ID), mainMenuKeyboard())
}
