package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"catalog-console/internal/domain"
)

func newGrantsCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grants",
		Short: "Manage grants on catalog roles",
	}

	cmd.AddCommand(newGrantsListCmd(app))
	cmd.AddCommand(newGrantsAddCmd(app))
	cmd.AddCommand(newGrantsRevokeCmd(app))
	return cmd
}

func newGrantsListCmd(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "list <catalog> <role>",
		Short: "List the grants attached to a catalog role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.connect(); err != nil {
				return err
			}
			grants, err := app.access.GrantsOf(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				out := make([]grantOut, 0, len(grants))
				for _, g := range grants {
					out = append(out, grantOut{
						Securable: string(g.Securable()),
						Path:      domain.FormatGrantPath(g),
						Privilege: string(g.Privilege()),
					})
				}
				return PrintJSON(os.Stdout, out)
			}
			rows := make([][]string, 0, len(grants))
			for _, g := range grants {
				rows = append(rows, []string{
					string(g.Securable()),
					domain.FormatGrantPath(g),
					string(g.Privilege()),
				})
			}
			PrintTable(os.Stdout, []string{"Securable", "Path", "Privilege"}, rows)
			return nil
		},
	}
}

// grantFlags holds the flags that identify one grant on the command line.
type grantFlags struct {
	securable string
	namespace string
	name      string
	privilege string
}

func (f *grantFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.securable, "securable", "", "Securable kind: catalog, namespace, table, view, or policy")
	cmd.Flags().StringVar(&f.namespace, "namespace", "", "Dotted namespace path of the target")
	cmd.Flags().StringVar(&f.name, "name", "", "Entity name (tables, views, and policies only)")
	cmd.Flags().StringVar(&f.privilege, "privilege", "", "Privilege to grant or revoke")
	_ = cmd.MarkFlagRequired("securable")
	_ = cmd.MarkFlagRequired("privilege")
}

func (f *grantFlags) build() (domain.Grant, error) {
	return domain.BuildGrant(
		domain.SecurableKind(f.securable),
		domain.ParseNamespace(f.namespace),
		f.name,
		domain.Privilege(f.privilege),
	)
}

func newGrantsAddCmd(app *appState) *cobra.Command {
	var flags grantFlags

	cmd := &cobra.Command{
		Use:   "add <catalog> <role>",
		Short: "Add a grant to a catalog role",
		Example: `  # Let a role read a table
  catalog-console grants add sales analysts --securable table \
    --namespace finance.reports --name q3 --privilege TABLE_READ_DATA`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.connect(); err != nil {
				return err
			}
			g, err := flags.build()
			if err != nil {
				return err
			}
			if err := app.grants.Add(cmd.Context(), args[0], args[1], g); err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, map[string]string{
					"status":    "ok",
					"securable": string(g.Securable()),
					"path":      domain.FormatGrantPath(g),
					"privilege": string(g.Privilege()),
				})
			}
			_, _ = fmt.Fprintf(os.Stdout, "Granted %s on %s to %s/%s\n",
				g.Privilege(), domain.FormatGrantPath(g), args[0], args[1])
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func newGrantsRevokeCmd(app *appState) *cobra.Command {
	var (
		flags   grantFlags
		cascade bool
	)

	cmd := &cobra.Command{
		Use:   "revoke <catalog> <role>",
		Short: "Revoke a grant from a catalog role, optionally cascading to descendants",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.connect(); err != nil {
				return err
			}
			g, err := flags.build()
			if err != nil {
				return err
			}

			outcome, err := app.grants.Revoke(cmd.Context(), args[0], args[1], g, cascade)
			var partial *domain.PartialRevokeError
			if err != nil && !errors.As(err, &partial) {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				revoked := make([]grantOut, 0, len(outcome.Revoked))
				for _, r := range outcome.Revoked {
					revoked = append(revoked, grantOut{
						Securable: string(r.Securable()),
						Path:      domain.FormatGrantPath(r),
						Privilege: string(r.Privilege()),
					})
				}
				failed := make([]map[string]string, 0, len(outcome.Failed))
				for _, f := range outcome.Failed {
					failed = append(failed, map[string]string{
						"securable": string(f.Grant.Securable()),
						"path":      domain.FormatGrantPath(f.Grant),
						"privilege": string(f.Grant.Privilege()),
						"error":     f.Err.Error(),
					})
				}
				return PrintJSON(os.Stdout, map[string]any{
					"revoked": revoked,
					"failed":  failed,
				})
			}

			_, _ = fmt.Fprintf(os.Stdout, "Revoked %d grant(s) from %s/%s\n",
				len(outcome.Revoked), args[0], args[1])
			for _, f := range outcome.Failed {
				_, _ = fmt.Fprintf(os.Stderr, "Failed to revoke %s on %s: %v\n",
					f.Grant.Privilege(), domain.FormatGrantPath(f.Grant), f.Err)
			}
			if partial != nil {
				return fmt.Errorf("%d descendant grant(s) could not be revoked", len(outcome.Failed))
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&cascade, "cascade", false, "Also revoke grants on descendants of the target entity")
	return cmd
}
