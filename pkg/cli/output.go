package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// PrintJSON writes v to w as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintTable writes rows as a two-space separated table with uppercased
// headers. Cell values are truncated so a row fits the terminal when stdout
// is one.
func PrintTable(w io.Writer, columns []string, rows [][]string) {
	if len(columns) == 0 {
		return
	}

	maxCell := maxCellWidth(len(columns))
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = len(col)
	}
	clipped := make([][]string, len(rows))
	for r, row := range rows {
		clipped[r] = make([]string, len(columns))
		for i := range columns {
			cell := ""
			if i < len(row) {
				cell = truncate(row[i], maxCell)
			}
			clipped[r][i] = cell
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = pad(strings.ToUpper(col), widths[i])
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(header, "  "), " "))

	for _, row := range clipped {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = pad(cell, widths[i])
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
	}
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func truncate(s string, max int) string {
	if max <= 3 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// maxCellWidth derives a per-cell cap from the terminal width, so wide values
// (encoded paths, long messages) cannot wrap every row. Non-terminal output
// is not capped.
func maxCellWidth(columns int) int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 1 << 20
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return 1 << 20
	}
	per := width/columns - 2
	if per < 16 {
		per = 16
	}
	return per
}

// getOutputFormat returns the effective output format from the root command's
// persistent flags.
func getOutputFormat(cmd *cobra.Command) string {
	v, _ := cmd.Root().PersistentFlags().GetString("output")
	return v
}

func validateOutputFormat(output string) error {
	if output != "" && output != "table" && output != "json" {
		return fmt.Errorf("unsupported output format %q: use 'table' or 'json'", output)
	}
	return nil
}
