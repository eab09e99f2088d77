package main

import (
	"context"
	"fmt"

	"github.com/harunnryd/kaizen/internal/adapter"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the agent interactively on the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			return fmt.Errorf("config not loaded")
		}

		rt, err := buildRuntime(cfg)
		if err != nil {
			return fmt.Errorf("failed to wire runtime: %w", err)
		}
		defer rt.Close()

		userID, _ := cmd.Flags().GetString("user")

		sig := NewSignalHandler(context.Background())
		sig.Start()

		cli := adapter.NewCLIAdapter(userID, rt.handleMessage)
		return cli.Start(sig.Context())
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("user", "local", "user id to attribute messages to")
}
