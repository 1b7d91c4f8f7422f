package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

func newStatsCmd(app *appState) *cobra.Command {
	var sampleLimit int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the principal, role, and grant universe",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.connect(); err != nil {
				return err
			}
			stats, err := app.access.CollectStats(cmd.Context(), sampleLimit)
			if err != nil {
				return err
			}

			orphans := strconv.Itoa(stats.PrincipalsWithNoRoles.Count)
			if stats.PrincipalsWithNoRoles.Sampled {
				orphans = fmt.Sprintf("%d (of first %d checked)",
					stats.PrincipalsWithNoRoles.Count, stats.PrincipalsWithNoRoles.SampleSize)
			}

			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, map[string]any{
					"total_principals":       stats.TotalPrincipals,
					"total_principal_roles":  stats.TotalPrincipalRoles,
					"total_catalog_roles":    stats.TotalCatalogRoles,
					"total_privileges":       stats.TotalPrivileges,
					"catalog_roles_no_privs": stats.CatalogRolesWithNoPrivileges,
					"principals_no_roles": map[string]any{
						"count":       stats.PrincipalsWithNoRoles.Count,
						"sample_size": stats.PrincipalsWithNoRoles.SampleSize,
						"sampled":     stats.PrincipalsWithNoRoles.Sampled,
					},
				})
			}

			rows := [][]string{
				{"Principals", strconv.Itoa(stats.TotalPrincipals)},
				{"Principal roles", strconv.Itoa(stats.TotalPrincipalRoles)},
				{"Catalog roles", strconv.Itoa(stats.TotalCatalogRoles)},
				{"Privileges granted", strconv.Itoa(stats.TotalPrivileges)},
				{"Catalog roles with no privileges", strconv.Itoa(stats.CatalogRolesWithNoPrivileges)},
				{"Principals with no roles", orphans},
			}
			PrintTable(os.Stdout, []string{"Metric", "Value"}, rows)
			return nil
		},
	}

	cmd.Flags().IntVar(&sampleLimit, "sample-limit", 100, "Cap on principals walked for the orphan check")
	return cmd
}
