package main

import (
	"os"

	"quiz-shell/internal/adapter/linechannel"
	"quiz-shell/internal/handler"
	"quiz-shell/internal/util"

	"github.com/spf13/cobra"
)

var localCmd = &cobra.Command{
	Use:   "local",
	Short: "Run one quiz session on this terminal",
	RunE:  runLocal,
}

func init() {
	localCmd.Flags().String("player", "", "name recorded on the scoreboard (defaults to $USER)")
}

func runLocal(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	player, _ := cmd.Flags().GetString("player")
	if player == "" {
		player = os.Getenv("USER")
	}
	if player == "" {
		player = "local"
	}

	ch := linechannel.New(os.Stdin, os.Stdout,
		linechannel.WithColor(cfg.Session.Color),
		linechannel.WithPrompt(cfg.Session.Prompt),
	)
	defer ch.Close()

	return a.dispatcher.Serve(ctx, handler.Session{
		ID:      util.NewSessionID(),
		Player:  player,
		Channel: ch,
	})
}
