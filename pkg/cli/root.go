// Package cli implements the catalog-console command line interface.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"catalog-console/internal/client"
	"catalog-console/internal/service"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if getOutputFormat(rootCmd) == "json" {
			_ = PrintJSON(os.Stdout, map[string]any{"error": err.Error()})
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// appState carries the resolved connection settings and lazily built
// services shared by all commands.
type appState struct {
	backendURL   string
	tokenURL     string
	clientID     string
	clientSecret string
	scope        string

	backend *client.Client
	tree    *service.TreeResolver
	access  *service.AccessService
	grants  *service.GrantService
}

// connect builds the backend client and services on first use.
func (a *appState) connect() error {
	if a.backend != nil {
		return nil
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend, err := client.New(client.Config{
		BaseURL:      a.backendURL,
		TokenURL:     a.tokenURL,
		ClientID:     a.clientID,
		ClientSecret: a.clientSecret,
		Scope:        a.scope,
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	a.backend = backend
	a.tree = service.NewTreeResolver(backend, logger)
	a.access = service.NewAccessService(backend, logger, 0, 0)
	a.grants = service.NewGrantService(backend, a.access, logger)
	return nil
}

func newRootCmd() *cobra.Command {
	app := &appState{}
	var (
		output  string
		profile string
	)

	rootCmd := &cobra.Command{
		Use:           "catalog-console",
		Short:         "Catalog management console CLI",
		Long:          "Command-line interface for browsing namespaces, grants, and principal access in a multi-tenant table catalog.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadUserConfig()
			if err != nil {
				// Config file is optional
				cfg = &UserConfig{
					CurrentProfile: "default",
					Profiles:       map[string]Profile{},
				}
			}

			p := cfg.ActiveProfile(profile)

			// Apply precedence: flag > env > profile > default
			resolve := func(flag string, dst *string, env, fromProfile string) {
				if cmd.Flags().Changed(flag) {
					return
				}
				if v := os.Getenv(env); v != "" {
					*dst = v
				} else if fromProfile != "" {
					*dst = fromProfile
				}
			}
			resolve("backend-url", &app.backendURL, "CONSOLE_BACKEND_URL", p.BackendURL)
			resolve("token-url", &app.tokenURL, "CONSOLE_TOKEN_URL", p.TokenURL)
			resolve("client-id", &app.clientID, "CONSOLE_CLIENT_ID", p.ClientID)
			resolve("client-secret", &app.clientSecret, "CONSOLE_CLIENT_SECRET", p.ClientSecret)
			resolve("output", &output, "CONSOLE_OUTPUT", p.Output)
			resolve("scope", &app.scope, "CONSOLE_SCOPE", p.Scope)

			return validateOutputFormat(output)
		},
	}

	// Accept underscore-separated flag spellings too.
	rootCmd.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	rootCmd.PersistentFlags().StringVar(&app.backendURL, "backend-url", "http://localhost:8181", "Catalog backend base URL")
	rootCmd.PersistentFlags().StringVar(&app.tokenURL, "token-url", "", "OAuth token endpoint (empty for unauthenticated dev backends)")
	rootCmd.PersistentFlags().StringVar(&app.clientID, "client-id", "", "OAuth client ID")
	rootCmd.PersistentFlags().StringVar(&app.clientSecret, "client-secret", "", "OAuth client secret")
	rootCmd.PersistentFlags().StringVar(&app.scope, "scope", "PRINCIPAL_ROLE:ALL", "OAuth scope")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "Config profile to use")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newAuthCmd(app))
	rootCmd.AddCommand(newTreeCmd(app))
	rootCmd.AddCommand(newAccessCmd(app))
	rootCmd.AddCommand(newGrantsCmd(app))
	rootCmd.AddCommand(newStatsCmd(app))
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
}
