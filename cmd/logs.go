/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/minetrack/apiserver/config"
	"github.com/minetrack/apiserver/internal/mq"
	"github.com/minetrack/apiserver/internal/services"
	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Inspect the audit log",
}

// logsTailCmd follows data log events published by the server.
var logsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print audit log events as they are recorded",
	Long: `Subscribes to the audit log channel on the configured broker and
prints every event as one JSON line. Requires MQ_BACKEND to be set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		queue, err := mq.Open(ctx, cfg.MQ)
		if err != nil {
			return fmt.Errorf("connect broker: %w", err)
		}
		if queue == nil {
			return errors.New("no broker configured, set MQ_BACKEND")
		}
		defer queue.Close()

		out := cmd.OutOrStdout()
		err = queue.Subscribe(ctx, services.DataLogChannel, func(ctx context.Context, msg mq.Message) error {
			_, err := fmt.Fprintln(out, string(msg.Data))
			return err
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.AddCommand(logsTailCmd)
}
