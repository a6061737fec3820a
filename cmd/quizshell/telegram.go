package main

import (
	"errors"

	"quiz-shell/internal/adapter/telegram"
	"quiz-shell/internal/logger"

	"github.com/spf13/cobra"
)

var telegramCmd = &cobra.Command{
	Use:   "telegram",
	Short: "Serve quiz sessions to Telegram chats",
	RunE:  runTelegram,
}

func init() {
	telegramCmd.Flags().String("token", "", "bot token (overrides telegram.token)")
}

func runTelegram(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if token, _ := cmd.Flags().GetString("token"); token != "" {
		cfg.Telegram.Token = token
	}
	if cfg.Telegram.Token == "" {
		return errors.New("telegram token is required, set APP_TELEGRAM_TOKEN or --token")
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	bot, err := telegram.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return err
	}

	logger.Get().Info("Telegram gateway started")
	return telegram.NewGateway(bot, a.dispatcher).Run(ctx)
}
