// Command keyctl manages API credentials directly against the credential
// store document, for operators working on the host running the service.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"webhook-notify/internal/apikeys"
	"webhook-notify/internal/config"
	"webhook-notify/internal/storage/jsonfile"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "keyctl",
		Short:         "Manage API keys for the webhook notify service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newCreateCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newDeleteCmd())

	return cmd
}

func openStore() *apikeys.Store {
	_ = godotenv.Load()
	cfg := config.Load()
	return apikeys.NewStore(jsonfile.New(cfg.APIKeysFile))
}

func newCreateCmd() *cobra.Command {
	var permissions []string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new API key",
		Long:  "Generate a new API key and secret. The secret is shown once and cannot be retrieved again.",
		Example: `  keyctl create dashboard
  keyctl create ci --permissions read`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := openStore().Create(args[0], permissions)
			if err != nil {
				return err
			}

			fmt.Println("API key created:")
			fmt.Println()
			fmt.Printf("  API Key:    %s\n", creds.APIKey)
			fmt.Printf("  Secret Key: %s\n", creds.SecretKey)
			fmt.Println()
			fmt.Println("  Save the secret key now - it cannot be retrieved again.")
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&permissions, "permissions", nil, "Permissions to grant (default: read,write)")

	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List issued API keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := openStore().List()
			if err != nil {
				return err
			}
			if len(keys) == 0 {
				fmt.Println("No API keys issued.")
				return nil
			}

			for _, k := range keys {
				lastUsed := "never"
				if k.LastUsed != nil {
					lastUsed = k.LastUsed.Format(time.RFC3339)
				}
				fmt.Printf("%s\n", k.Name)
				fmt.Printf("  Key:         %s\n", k.APIKey)
				fmt.Printf("  Permissions: %s\n", strings.Join(k.Permissions, ", "))
				fmt.Printf("  Created:     %s\n", k.CreatedAt.Format(time.RFC3339))
				fmt.Printf("  Last used:   %s (%d requests)\n", lastUsed, k.UsageCount)
				fmt.Println()
			}
			return nil
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <api-key>",
		Short: "Show one API key's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := openStore().List()
			if err != nil {
				return err
			}

			for _, k := range keys {
				if k.APIKey != args[0] {
					continue
				}
				lastUsed := "never"
				if k.LastUsed != nil {
					lastUsed = k.LastUsed.Format(time.RFC3339)
				}
				fmt.Printf("Name:        %s\n", k.Name)
				fmt.Printf("Key:         %s\n", k.APIKey)
				fmt.Printf("Permissions: %s\n", strings.Join(k.Permissions, ", "))
				fmt.Printf("Created:     %s\n", k.CreatedAt.Format(time.RFC3339))
				fmt.Printf("Last used:   %s (%d requests)\n", lastUsed, k.UsageCount)
				return nil
			}

			return fmt.Errorf("api key %q not found", args[0])
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <api-key>",
		Short: "Revoke an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := openStore().Delete(args[0])
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("api key %q not found", args[0])
			}
			fmt.Println("API key revoked.")
			return nil
		},
	}
}
