package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2/clientcredentials"
)

func newAuthCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication helpers",
	}

	cmd.AddCommand(newAuthTokenCmd(app))
	cmd.AddCommand(newAuthInspectCmd())
	return cmd
}

func newAuthTokenCmd(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Fetch an access token using the configured client credentials",
		Example: `  # Print a bearer token for use with curl
  catalog-console auth token

  # Machine-readable output with expiry
  catalog-console auth token -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if app.clientID == "" || app.clientSecret == "" {
				return fmt.Errorf("client credentials are not configured (set --client-id/--client-secret or CONSOLE_CLIENT_ID/CONSOLE_CLIENT_SECRET)")
			}

			tokenURL := app.tokenURL
			if tokenURL == "" {
				tokenURL = strings.TrimRight(app.backendURL, "/") + "/api/catalog/v1/oauth/tokens"
			}
			cc := clientcredentials.Config{
				ClientID:     app.clientID,
				ClientSecret: app.clientSecret,
				TokenURL:     tokenURL,
				Scopes:       []string{app.scope},
			}
			tok, err := cc.Token(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch token: %w", err)
			}

			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, map[string]any{
					"access_token": tok.AccessToken,
					"token_type":   tok.TokenType,
					"expires_at":   tok.Expiry.Format(time.RFC3339),
				})
			}
			_, _ = fmt.Fprintln(os.Stdout, tok.AccessToken)
			return nil
		},
	}
}

func newAuthInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <token>",
		Short: "Decode a JWT token and print its claims without verifying the signature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			claims := jwt.MapClaims{}
			parser := jwt.NewParser()
			token, _, err := parser.ParseUnverified(args[0], claims)
			if err != nil {
				return fmt.Errorf("parse token: %w", err)
			}

			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, map[string]any{
					"header": token.Header,
					"claims": claims,
				})
			}

			headers := []string{"Claim", "Value"}
			rows := make([][]string, 0, len(claims)+1)
			rows = append(rows, []string{"alg", fmt.Sprintf("%v", token.Header["alg"])})
			for _, key := range []string{"iss", "sub", "aud", "scope", "iat", "exp"} {
				v, ok := claims[key]
				if !ok {
					continue
				}
				switch key {
				case "iat", "exp":
					if f, ok := v.(float64); ok {
						v = time.Unix(int64(f), 0).UTC().Format(time.RFC3339)
					}
				}
				rows = append(rows, []string{key, fmt.Sprintf("%v", v)})
			}
			PrintTable(os.Stdout, headers, rows)
			return nil
		},
	}
}
