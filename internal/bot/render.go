package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Skotchmaster/game_store/internal/models"
	"github.com/Skotchmaster/game_store/internal/service"
)

func FormatPrice(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

const helpText = `Available commands:
/start - register and open the main menu
/menu - main menu
/catalog - browse games by platform
/cart - view your cart
/checkout - place an order for your cart
/search <keyword> - search games by name or description
/orders - your recent orders
/cancel - abort the current step
/help - this message

You can also type a game name to search, or use @bot <name> in any chat.`

const welcomeText = "Welcome to the game store! Pick an option below."

func mainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎮 Catalog", CbCatalog),
			tgbotapi.NewInlineKeyboardButtonData("🛒 Cart", CbViewCart),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📦 My orders", CbMyOrders),
		),
	)
}

func backToMenuRow() []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("⬅️ Main menu", CbMainMenu))
}

func platformsKeyboard(platforms []string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(platforms)/2+2)
	var row []tgbotapi.InlineKeyboardButton
	for _, p := range platforms {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(p, cbPlatform(p)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, backToMenuRow())
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func productsKeyboard(products []models.Product) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(products)+1)
	for _, p := range products {
		label := fmt.Sprintf("%s - %s", p.Name, FormatPrice(p.SalePrice()))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(label, cbData(CbProduct, p.ID))))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Platforms", CbCatalog),
		tgbotapi.NewInlineKeyboardButtonData("🛒 Cart", CbViewCart),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func productCaption(p models.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", p.Name)
	fmt.Fprintf(&b, "Platforms: %s\n", strings.Join(p.Platforms, ", "))
	if p.DiscountPct > 0 {
		fmt.Fprintf(&b, "Price: %s (was %s, -%g%%)\n", FormatPrice(p.SalePrice()), FormatPrice(p.Price), p.DiscountPct)
	} else {
		fmt.Fprintf(&b, "Price: %s\n", FormatPrice(p.Price))
	}
	if p.Stock > 0 {
		fmt.Fprintf(&b, "In stock: %d\n", p.Stock)
	} else {
		b.WriteString("Out of stock\n")
	}
	if p.Description != "" {
		fmt.Fprintf(&b, "\n%s", p.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

func productKeyboard(p models.Product) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	if p.Stock > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Add to cart", cbData(CbAddToCart, p.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Platforms", CbCatalog),
		tgbotapi.NewInlineKeyboardButtonData("🛒 Cart", CbViewCart),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func cartText(c *service.Cart) string {
	if c.Empty() {
		return "Your cart is empty."
	}
	var b strings.Builder
	b.WriteString("Your cart:\n")
	for _, l := range c.Lines {
		fmt.Fprintf(&b, "• %s x%d = %s\n", l.Product.Name, l.Quantity, FormatPrice(l.Subtotal()))
	}
	fmt.Fprintf(&b, "\nTotal: %s", FormatPrice(c.Total))
	return b.String()
}

func cartKeyboard(c *service.Cart) tgbotapi.InlineKeyboardMarkup {
	if c.Empty() {
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🎮 Catalog", CbCatalog)),
			backToMenuRow(),
		)
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(c.Lines)+3)
	for _, l := range c.Lines {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Remove "+l.Product.Name, cbData(CbRemoveFromCart, l.Product.ID)),
		))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Checkout", CbConfirmCheckout),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Clear cart", CbClearCart),
		),
		backToMenuRow(),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func buyerText(b models.BuyerSnapshot) string {
	email := b.Email
	if email == "" {
		email = "-"
	}
	return fmt.Sprintf("Name: %s\nEmail: %s\nPhone: %s\nAddress: %s", b.Name, email, b.Phone, b.Address)
}

func checkoutSummary(b models.BuyerSnapshot, c *service.Cart) string {
	return fmt.Sprintf("Please confirm your order.\n\n%s\n\n%s", buyerText(b), cartText(c))
}

func confirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Place order", CbFinalizeCheckout),
		tgbotapi.NewInlineKeyboardButtonData("✖️ Cancel", CbCancelOp),
	))
}

func continueKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🛒 View cart", CbViewCart),
		tgbotapi.NewInlineKeyboardButtonData("🎮 Catalog", CbCatalog),
	))
}

func cancelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✖️ Cancel", CbCancelOp),
	))
}

func receiptText(o *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thank you! Order #%d has been placed.\n\n", o.ID)
	b.WriteString(buyerText(o.Buyer))
	b.WriteString("\n\nItems:\n")
	for _, it := range o.Items {
		fmt.Fprintf(&b, "• %s x%d @ %s\n", it.ProductName, it.Quantity, FormatPrice(it.UnitPrice))
	}
	fmt.Fprintf(&b, "\nTotal: %s\nStatus: %s", FormatPrice(o.Total), o.Status)
	return b.String()
}

func ordersText(orders []models.Order) string {
	if len(orders) == 0 {
		return "You have no orders yet."
	}
	var b strings.Builder
	b.WriteString("Your recent orders:\n")
	for _, o := range orders {
		fmt.Fprintf(&b, "\n#%d  %s  %s  %s", o.ID, o.CreatedAt.Format("2006-01-02"), FormatPrice(o.Total), o.Status)
		for _, it := range o.Items {
			fmt.Fprintf(&b, "\n   %s x%d", it.ProductName, it.Quantity)
		}
	}
	return b.String()
}

func ordersKeyboard(orders []models.Order) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	for _, o := range orders {
		if o.Status.Cancellable() {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("✖️ Cancel order #%d", o.ID), cbData(CbCancelOrder, o.ID)),
			))
		}
	}
	rows = append(rows, backToMenuRow())
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func searchResultsText(kw string, products []models.Product) string {
	if len(products) == 0 {
		return fmt.Sprintf("No games found for %q.", kw)
	}
	return fmt.Sprintf("Found %d game(s) for %q:", len(products), kw)
}
