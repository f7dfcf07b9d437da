package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/volleyhq/volley/internal/cli"
	"github.com/volleyhq/volley/internal/config"
	"github.com/volleyhq/volley/internal/transport"
	"github.com/volleyhq/volley/internal/transport/mqtt"
	"github.com/volleyhq/volley/internal/transport/redis"
)

// Build-time variables
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	// Load configuration first so we can configure logging from it
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	configureLogger(cfg.Logging)

	rootCmd := &cobra.Command{
		Use:          "volley",
		Short:        "Publish paced batches of messages to pub/sub channels",
		Long:         "Command-line tool to publish paced batches of messages to Redis or MQTT channels, track per-message outcomes, and tail channels.",
		Version:      fmt.Sprintf("%s (commit %s)", Version, GitCommit),
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().String("transport", cfg.Transport, "Pub/sub transport (redis or mqtt)")
	rootCmd.PersistentFlags().String("redis-addr", cfg.Redis.Addr, "Redis address")
	rootCmd.PersistentFlags().String("broker", cfg.MQTT.Broker, "MQTT broker URL")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")

	// Create client factory
	clientFactory := func(cmd *cobra.Command) (transport.Client, error) {
		name, _ := cmd.Flags().GetString("transport")
		switch name {
		case config.TransportRedis:
			addr, _ := cmd.Flags().GetString("redis-addr")
			return redis.NewClient(cmd.Context(), redis.Config{
				Addr:     addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
		case config.TransportMQTT:
			broker, _ := cmd.Flags().GetString("broker")
			return mqtt.NewClient(cmd.Context(), mqtt.Config{
				Broker:   broker,
				ClientID: cfg.MQTT.ClientID,
				Username: cfg.MQTT.Username,
				Password: cfg.MQTT.Password,
			})
		default:
			return nil, fmt.Errorf("unknown transport %q (expected redis or mqtt)", name)
		}
	}

	// Add commands
	rootCmd.AddCommand(cli.PublishCmd(clientFactory, cfg.Publish))
	rootCmd.AddCommand(cli.SubscribeCmd(clientFactory))
	rootCmd.AddCommand(cli.PingCmd(clientFactory))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// configureLogger sets up the default slog logger based on config values
func configureLogger(cfg config.LoggingConfig) {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
