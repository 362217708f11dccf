package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/game_store/internal/domain"
	"github.com/Skotchmaster/game_store/internal/service"
	"github.com/Skotchmaster/game_store/pkg/logging"
)

const (
	promptQuantity = "How many copies of %s would you like? (%d in stock)"
	promptName     = "Please enter your full name:"
	promptEmail    = "Please enter your email address, or type skip:"
	promptPhone    = "Please enter your phone number (+2519XXXXXXXX or 09XXXXXXXX):"
	promptAddress  = "Please enter your delivery address:"
)

func (b *Bot) askQuantity(ctx context.Context, sess *Session, chatID int64, productID uint) {
	p, err := b.deps.Catalog.GetProduct(ctx, productID)
	if err != nil {
		b.reply(ctx, chatID, userMessage(ctx, err), nil)
		return
	}
	if p.Stock <= 0 {
		b.reply(ctx, chatID, p.Name+" is out of stock.", productsKeyboard(nil))
		return
	}
	sess.Reset()
	sess.Step = StepQuantity
	sess.ProductID = p.ID
	b.reply(ctx, chatID, fmt.Sprintf(promptQuantity, p.Name, p.Stock), cancelKeyboard())
}

func (b *Bot) startCheckout(ctx context.Context, sess *Session, chatID, userID int64) {
	cart, err := b.deps.Cart.List(ctx, userID)
	if err != nil {
		b.reply(ctx, chatID, userMessage(ctx, err), nil)
		return
	}
	if cart.Empty() {
		b.reply(ctx, chatID, "Your cart is empty.", cartKeyboard(cart))
		return
	}
	sess.Reset()
	sess.Step = StepName
	b.reply(ctx, chatID, promptName, cancelKeyboard())
}

// handleDialog advances the current step. Invalid input keeps the step and
// re-prompts.
func (b *Bot) handleDialog(ctx context.Context, sess *Session, chatID, userID int64, text string) {
	switch sess.Step {
	case StepQuantity:
		b.addQuantity(ctx, sess, chatID, userID, text)

	case StepName:
		name, err := service.ValidateName(text)
		if err != nil {
			b.reprompt(ctx, chatID, err, promptName)
			return
		}
		sess.Buyer.Name = name
		sess.Step = StepEmail
		b.reply(ctx, chatID, promptEmail, cancelKeyboard())

	case StepEmail:
		email := ""
		if !strings.EqualFold(text, "skip") {
			var err error
			if email, err = service.ValidateEmail(text); err != nil {
				b.reprompt(ctx, chatID, err, promptEmail)
				return
			}
		}
		sess.Buyer.Email = email
		sess.Step = StepPhone
		b.reply(ctx, chatID, promptPhone, cancelKeyboard())

	case StepPhone:
		phone, err := service.ValidatePhone(text)
		if err != nil {
			b.reprompt(ctx, chatID, err, promptPhone)
			return
		}
		sess.Buyer.Phone = phone
		sess.Step = StepAddress
		b.reply(ctx, chatID, promptAddress, cancelKeyboard())

	case StepAddress:
		addr, err := service.ValidateAddress(text)
		if err != nil {
			b.reprompt(ctx, chatID, err, promptAddress)
			return
		}
		sess.Buyer.Address = addr
		cart, err := b.deps.Cart.List(ctx, userID)
		if err != nil {
			b.reply(ctx, chatID, userMessage(ctx, err), nil)
			return
		}
		if cart.Empty() {
			sess.Reset()
			b.reply(ctx, chatID, "Your cart is empty.", cartKeyboard(cart))
			return
		}
		sess.Step = StepConfirm
		b.reply(ctx, chatID, checkoutSummary(sess.Buyer, cart), confirmKeyboard())

	case StepConfirm:
		b.reply(ctx, chatID, "Please use the buttons to place or cancel the order.", confirmKeyboard())
	}
}

func (b *Bot) reprompt(ctx context.Context, chatID int64, err error, prompt string) {
	b.reply(ctx, chatID, userMessage(ctx, err)+"\n"+prompt, cancelKeyboard())
}

func (b *Bot) addQuantity(ctx context.Context, sess *Session, chatID, userID int64, text string) {
	qty, err := service.ParseQuantity(text)
	if err != nil {
		b.reply(ctx, chatID, userMessage(ctx, err), cancelKeyboard())
		return
	}

	line, err := b.deps.Cart.Add(ctx, userID, sess.ProductID, qty)
	if err != nil {
		if errors.Is(err, domain.ErrOutOfStock) {
			// keep asking; a smaller quantity may still fit
			b.reply(ctx, chatID, userMessage(ctx, err)+"\nEnter a smaller quantity or cancel.", cancelKeyboard())
			return
		}
		sess.Reset()
		b.reply(ctx, chatID, userMessage(ctx, err), mainMenuKeyboard())
		return
	}

	sess.Reset()
	logging.FromContext(ctx).Info("add_to_cart", "product_id", line.Product.ID, "quantity", qty)
	b.reply(ctx, chatID, fmt.Sprintf("Added %d x %s to your cart (now %d).", qty, line.Product.Name, line.Quantity), continueKeyboard())
}

func (b *Bot) finalizeCheckout(ctx context.Context, sess *Session, chatID, userID int64) {
	if sess.Step != StepConfirm {
		b.reply(ctx, chatID, "There is no checkout in progress.", mainMenuKeyboard())
		return
	}

	order, err := b.deps.Orders.Checkout(ctx, userID, sess.Buyer)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBusy):
			// dialog state kept so the buyer can press the button again
			b.reply(ctx, chatID, userMessage(ctx, err), confirmKeyboard())
		case errors.Is(err, domain.ErrInsufficientStock):
			sess.Reset()
			b.reply(ctx, chatID, userMessage(ctx, err), continueKeyboard())
		default:
			sess.Reset()
			b.reply(ctx, chatID, userMessage(ctx, err), mainMenuKeyboard())
		}
		return
	}

	sess.Reset()
	b.reply(ctx, chatID, receiptText(order), mainMenuKeyboard())
}
