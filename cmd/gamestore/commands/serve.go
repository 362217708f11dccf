package commands

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Skotchmaster/game_store/internal/app"
)

const updatesTimeout = 60

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot and the admin API in one process",
	Long: `Run the Telegram bot and the admin API together. Both share one
database handle so stock changes made in the admin API are visible to the
bot immediately.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmdContext(cmd), true, true)
	},
}

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run only the Telegram bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmdContext(cmd), true, false)
	},
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Run only the admin API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmdContext(cmd), false, true)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, botCmd, adminCmd)
}

func newTelegram(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return api, nil
}

func run(parent context.Context, withBot, withAdmin bool) error {
	ctx, cancel := signalContext(parent)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if withBot {
		if err := a.Cfg.RequireBot(); err != nil {
			return err
		}
	}
	if withAdmin {
		if err := a.Cfg.RequireAdmin(); err != nil {
			return err
		}
	}

	var api *tgbotapi.BotAPI
	if a.Cfg.TelegramToken != "" {
		if api, err = newTelegram(a.Cfg.TelegramToken); err != nil {
			return err
		}
		a.UseTelegram(api)
	}

	g, ctx := errgroup.WithContext(ctx)
	if withBot {
		g.Go(func() error { return runBot(ctx, a, api) })
	}
	if withAdmin {
		g.Go(func() error { return a.ServeAdmin(ctx) })
	}
	err = g.Wait()
	a.Log.Info("shutdown_complete")
	return err
}

func runBot(ctx context.Context, a *app.App, api *tgbotapi.BotAPI) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = updatesTimeout
	updates := api.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		api.StopReceivingUpdates()
	}()

	a.Log.Info("bot_started", "username", api.Self.UserName)
	return a.NewBot(api).Run(ctx, updates)
}
