package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"catalog-console/internal/domain"
	"catalog-console/internal/service"
)

func newAccessCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "access",
		Short: "Inspect what principals can do",
	}

	cmd.AddCommand(newAccessReportCmd(app))
	cmd.AddCommand(newAccessRolesCmd(app))
	cmd.AddCommand(newAccessCatalogRolesCmd(app))
	return cmd
}

func newAccessReportCmd(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "report <principal>",
		Short: "Show every grant a principal can reach, with the roles it is reachable through",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.connect(); err != nil {
				return err
			}
			report, err := app.access.PrincipalAccess(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, accessReportOut(report))
			}

			_, _ = fmt.Fprintf(os.Stdout, "Principal: %s\n\n", report.Principal)
			roleRows := make([][]string, 0, len(report.Roles))
			for _, r := range report.Roles {
				roleRows = append(roleRows, []string{r.Name})
			}
			PrintTable(os.Stdout, []string{"Principal Role"}, roleRows)
			_, _ = fmt.Fprintln(os.Stdout)

			grantRows := make([][]string, 0, len(report.Grants))
			for _, rg := range report.Grants {
				grantRows = append(grantRows, []string{
					string(rg.Grant.Securable()),
					domain.FormatGrantPath(rg.Grant),
					string(rg.Grant.Privilege()),
					joinRoleRefs(rg.Sources),
				})
			}
			PrintTable(os.Stdout, []string{"Securable", "Path", "Privilege", "Via"}, grantRows)
			return nil
		},
	}
}

func newAccessRolesCmd(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "roles <principal>",
		Short: "List the principal roles assigned to a principal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.connect(); err != nil {
				return err
			}
			roles, err := app.access.RolesOf(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				out := make([]map[string]any, 0, len(roles))
				for _, r := range roles {
					out = append(out, map[string]any{"name": r.Name, "properties": r.Properties})
				}
				return PrintJSON(os.Stdout, out)
			}
			rows := make([][]string, 0, len(roles))
			for _, r := range roles {
				rows = append(rows, []string{r.Name})
			}
			PrintTable(os.Stdout, []string{"Name"}, rows)
			return nil
		},
	}
}

func newAccessCatalogRolesCmd(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog-roles <principal-role>",
		Short: "List the catalog roles a principal role reaches, across all catalogs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.connect(); err != nil {
				return err
			}
			refs, err := app.access.CatalogRolesReachableFrom(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				out := make([]map[string]string, 0, len(refs))
				for _, ref := range refs {
					out = append(out, map[string]string{"catalog": ref.Catalog, "role": ref.Role})
				}
				return PrintJSON(os.Stdout, out)
			}
			rows := make([][]string, 0, len(refs))
			for _, ref := range refs {
				rows = append(rows, []string{ref.Catalog, ref.Role})
			}
			PrintTable(os.Stdout, []string{"Catalog", "Role"}, rows)
			return nil
		},
	}
}

type grantOut struct {
	Securable string   `json:"securable"`
	Path      string   `json:"path"`
	Privilege string   `json:"privilege"`
	Sources   []string `json:"sources,omitempty"`
}

func accessReportOut(report *service.AccessReport) map[string]any {
	roles := make([]string, 0, len(report.Roles))
	for _, r := range report.Roles {
		roles = append(roles, r.Name)
	}
	catalogRoles := make([]string, 0, len(report.CatalogRoles))
	for _, ref := range report.CatalogRoles {
		catalogRoles = append(catalogRoles, ref.Catalog+"/"+ref.Role)
	}
	grants := make([]grantOut, 0, len(report.Grants))
	for _, rg := range report.Grants {
		sources := make([]string, 0, len(rg.Sources))
		for _, ref := range rg.Sources {
			sources = append(sources, ref.Catalog+"/"+ref.Role)
		}
		grants = append(grants, grantOut{
			Securable: string(rg.Grant.Securable()),
			Path:      domain.FormatGrantPath(rg.Grant),
			Privilege: string(rg.Grant.Privilege()),
			Sources:   sources,
		})
	}
	return map[string]any{
		"principal":     report.Principal,
		"roles":         roles,
		"catalog_roles": catalogRoles,
		"grants":        grants,
	}
}

func joinRoleRefs(refs []domain.CatalogRoleRef) string {
	parts := make([]string, 0, len(refs))
	for _, ref := range refs {
		parts = append(parts, ref.Catalog+"/"+ref.Role)
	}
	return strings.Join(parts, ", ")
}
