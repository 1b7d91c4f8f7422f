package cli

import (
	"os"

	"github.com/spf13/cobra"

	"catalog-console/internal/domain"
)

func newTreeCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Browse the catalog namespace tree",
	}

	cmd.AddCommand(newTreeCatalogsCmd(app))
	cmd.AddCommand(newTreeLsCmd(app))
	return cmd
}

func newTreeCatalogsCmd(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "catalogs",
		Short: "List catalogs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.connect(); err != nil {
				return err
			}
			catalogs, err := app.backend.ListCatalogs(cmd.Context())
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				out := make([]map[string]string, 0, len(catalogs))
				for _, c := range catalogs {
					out = append(out, map[string]string{"name": c.Name, "type": c.Type})
				}
				return PrintJSON(os.Stdout, out)
			}

			rows := make([][]string, 0, len(catalogs))
			for _, c := range catalogs {
				rows = append(rows, []string{c.Name, c.Type})
			}
			PrintTable(os.Stdout, []string{"Name", "Type"}, rows)
			return nil
		},
	}
}

func newTreeLsCmd(app *appState) *cobra.Command {
	var namespace string

	cmd := &cobra.Command{
		Use:   "ls <catalog>",
		Short: "List the namespaces and tables directly under a path",
		Example: `  # Direct children of a catalog
  catalog-console tree ls sales

  # Children of a nested namespace
  catalog-console tree ls sales --namespace finance.reports`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.connect(); err != nil {
				return err
			}
			catalog := args[0]
			parent := domain.ParseNamespace(namespace)

			namespaces, err := app.backend.ListNamespaces(cmd.Context(), catalog, parent)
			if err != nil {
				return err
			}
			var tables []domain.TableIdent
			if !parent.IsRoot() {
				tables, err = app.backend.ListTables(cmd.Context(), catalog, parent)
				if err != nil {
					return err
				}
			}

			type entry struct {
				Kind string `json:"kind"`
				Path string `json:"path"`
			}
			entries := make([]entry, 0, len(namespaces)+len(tables))
			for _, ns := range namespaces {
				entries = append(entries, entry{Kind: "namespace", Path: ns.String()})
			}
			for _, t := range tables {
				entries = append(entries, entry{Kind: "table", Path: t.Namespace.Child(t.Name).String()})
			}

			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, entries)
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.Kind, e.Path})
			}
			PrintTable(os.Stdout, []string{"Kind", "Path"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&namespace, "namespace", "", "Dotted namespace path to list under (default: catalog root)")

	return cmd
}
