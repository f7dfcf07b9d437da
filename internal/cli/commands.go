// Package cli implements the volley subcommands. Commands receive their
// transport through a factory so tests can substitute a fake client.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/volleyhq/volley/internal/batch"
	"github.com/volleyhq/volley/internal/config"
	"github.com/volleyhq/volley/internal/transport"
)

// ClientFactory returns a connected transport client for one command
// invocation, resolved from flags and configuration.
type ClientFactory func(cmd *cobra.Command) (transport.Client, error)

func PublishCmd(cf ClientFactory, defaults config.PublishConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish [channel] [message]",
		Short: "Publish a message, or a paced batch of messages, to a channel",
		Long: `Publish sends the message to the channel. With --count > 1 it sends a
batch, spacing initiations by --delay (clamped to a 40ms minimum) and
reporting progress while sends are in flight.

The message may contain {{.Count}} (1-based message number) and
{{.Timestamp}} (epoch milliseconds) tokens.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, _ := cmd.Flags().GetInt("count")
			delayMs, _ := cmd.Flags().GetInt("delay")
			asJSON, _ := cmd.Flags().GetBool("json")

			channel := args[0]
			tmpl, err := batch.ParsePayload(args[1])
			if err != nil {
				return err
			}

			client, err := cf(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			onProgress := PrintProgress
			interval := batch.ProgressIntervalText
			if asJSON {
				interval = batch.ProgressIntervalJSON
				onProgress = func(sent, errors, total int) {
					slog.Info("publish progress",
						"channel", channel,
						"sent", sent,
						"errors", errors,
						"total", total)
				}
			}

			start := time.Now()
			sum, err := batch.Run(cmd.Context(), batch.Options{
				Total:   count,
				Delay:   time.Duration(delayMs) * time.Millisecond,
				Payload: tmpl.Render,
				Send: func(ctx context.Context, payload string) error {
					return client.Publish(ctx, channel, payload)
				},
				OnProgress:       onProgress,
				ProgressInterval: interval,
			})
			if err != nil {
				return fmt.Errorf("publish to %s failed: %w", channel, err)
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(sum); err != nil {
					return err
				}
			} else if count == 1 {
				fmt.Printf("%s published to %s\n", green("✓"), cyan(channel))
			} else {
				PrintSummary(sum, time.Since(start))
			}

			// Partial failure still exits non-zero after the full
			// summary has been reported.
			if sum.Errors > 0 {
				return fmt.Errorf("%d of %d messages failed", sum.Errors, sum.Total)
			}
			return nil
		},
	}

	cmd.Flags().IntP("count", "n", defaults.Count, "Number of messages to send")
	cmd.Flags().IntP("delay", "d", int(defaults.Delay.Std().Milliseconds()),
		"Delay between messages in milliseconds (min 40 when count > 1)")
	return cmd
}

func SubscribeCmd(cf ClientFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe [channel]",
		Short: "Tail messages on a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := cf(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			channel := args[0]
			asJSON, _ := cmd.Flags().GetBool("json")

			// Handle Ctrl+C gracefully
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigChan
				cancel()
			}()

			handler := PrintMessage
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				handler = func(channel, payload string) {
					enc.Encode(map[string]string{
						"channel": channel,
						"payload": payload,
					})
				}
			} else {
				fmt.Printf("Subscribed to %s (Ctrl+C to stop)...\n", cyan(channel))
			}

			err = client.Subscribe(ctx, channel, transport.Handler(handler))
			if errors.Is(err, context.Canceled) {
				if !asJSON {
					fmt.Println("\nStopped.")
				}
				return nil
			}
			return err
		},
	}
}

func PingCmd(cf ClientFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the broker is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := cf(cmd)
			if err != nil {
				fmt.Printf("%s Connection failed: %v\n", red("✗"), err)
				return err
			}
			defer client.Close()

			start := time.Now()
			if err := client.Ping(cmd.Context()); err != nil {
				fmt.Printf("%s Broker unreachable: %v\n", red("✗"), err)
				return err
			}

			fmt.Printf("%s Broker reachable (%s)\n", green("✓"), FormatElapsed(time.Since(start)))
			return nil
		},
	}
}
