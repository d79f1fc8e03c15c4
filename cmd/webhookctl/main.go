// Command webhookctl manages the webhook registry document and sends test
// deliveries without going through the HTTP API.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"webhook-notify/internal/common/httpclient"
	"webhook-notify/internal/config"
	"webhook-notify/internal/storage/jsonfile"
	"webhook-notify/internal/webhooks"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "webhookctl",
		Short:         "Manage webhook endpoints for the webhook notify service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newRemoveCmd())
	cmd.AddCommand(newTestCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newEnableCmd())
	cmd.AddCommand(newDisableCmd())

	return cmd
}

func openManager() (*webhooks.Manager, *config.Config) {
	_ = godotenv.Load()
	cfg := config.Load()
	return webhooks.NewManager(jsonfile.New(cfg.WebhookConfigFile)), cfg
}

func parseHeaders(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid header %q, expected key=value", pair)
		}
		headers[key] = value
	}
	return headers, nil
}

func newAddCmd() *cobra.Command {
	var (
		name    string
		events  []string
		headers []string
	)

	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Register a webhook endpoint",
		Example: `  webhookctl add https://hooks.example.com/notify
  webhookctl add https://hooks.example.com/notify --name alerts --events match --header "Authorization=Bearer token"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseHeaders(headers)
			if err != nil {
				return err
			}

			manager, _ := openManager()
			endpoint, err := manager.Add(args[0], name, parsed, events)
			if err != nil {
				return err
			}

			fmt.Printf("Webhook registered: %s\n", endpoint.ID)
			fmt.Printf("  URL:    %s\n", endpoint.URL)
			fmt.Printf("  Events: %s\n", strings.Join(endpoint.Events, ", "))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name for the endpoint")
	cmd.Flags().StringSliceVar(&events, "events", nil, "Events to subscribe to (default: match)")
	cmd.Flags().StringArrayVar(&headers, "header", nil, "Extra header as key=value (repeatable)")

	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered webhook endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, _ := openManager()
			endpoints, err := manager.List()
			if err != nil {
				return err
			}
			if len(endpoints) == 0 {
				fmt.Println("No webhooks registered.")
				return nil
			}

			for _, ep := range endpoints {
				state := "enabled"
				if !ep.Enabled {
					state = "disabled"
				}
				lastTriggered := "never"
				if ep.LastTriggered != nil {
					lastTriggered = ep.LastTriggered.Format(time.RFC3339)
				}
				fmt.Printf("%s (%s)\n", ep.ID, state)
				fmt.Printf("  Name:           %s\n", ep.Name)
				fmt.Printf("  URL:            %s\n", ep.URL)
				fmt.Printf("  Events:         %s\n", strings.Join(ep.Events, ", "))
				fmt.Printf("  Last triggered: %s\n", lastTriggered)
				fmt.Printf("  Deliveries:     %d ok, %d failed\n", ep.SuccessCount, ep.FailureCount)
				fmt.Println()
			}
			return nil
		},
	}
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a webhook endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, _ := openManager()
			if err := manager.Remove(args[0]); err != nil {
				return err
			}
			fmt.Println("Webhook removed.")
			return nil
		},
	}
}

func newTestCmd() *cobra.Command {
	var headers []string

	cmd := &cobra.Command{
		Use:   "test <url>",
		Short: "Send a test delivery to a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseHeaders(headers)
			if err != nil {
				return err
			}

			manager, cfg := openManager()
			dispatcher := webhooks.NewDispatcher(manager, httpclient.New(
				httpclient.WithTimeout(cfg.WebhookTimeout),
			))

			result := dispatcher.Test(context.Background(), args[0], parsed)
			if result.Success {
				fmt.Printf("Delivery succeeded: %d %s\n", result.StatusCode, result.StatusText)
			} else if result.Error != "" {
				fmt.Printf("Delivery failed: %s\n", result.Error)
			} else {
				fmt.Printf("Delivery failed: %d %s\n", result.StatusCode, result.StatusText)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&headers, "header", nil, "Extra header as key=value (repeatable)")

	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show delivery statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, _ := openManager()
			stats, err := manager.Stats()
			if err != nil {
				return err
			}

			state := "enabled"
			if !stats.Enabled {
				state = "disabled"
			}
			fmt.Printf("Dispatch:  %s\n", state)
			fmt.Printf("Webhooks:  %d total, %d active\n", stats.TotalWebhooks, stats.ActiveWebhooks)
			fmt.Printf("Delivered: %d ok, %d failed\n", stats.TotalSuccess, stats.TotalFailures)
			return nil
		},
	}
}

func newEnableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enable [id]",
		Short: "Enable dispatch globally, or a single endpoint by id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setEnabled(args, true)
		},
	}
}

func newDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable [id]",
		Short: "Disable dispatch globally, or a single endpoint by id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setEnabled(args, false)
		},
	}
}

func setEnabled(args []string, enabled bool) error {
	manager, _ := openManager()

	if len(args) == 0 {
		if err := manager.SetEnabled(enabled); err != nil {
			return err
		}
		fmt.Printf("Webhook dispatch %s.\n", stateWord(enabled))
		return nil
	}

	found, err := manager.SetEndpointEnabled(args[0], enabled)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("webhook %q not found", args[0])
	}
	fmt.Printf("Webhook %s %s.\n", args[0], stateWord(enabled))
	return nil
}

func stateWord(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
