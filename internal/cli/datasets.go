package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/vvka-141/csvingest/internal/config"
	"github.com/vvka-141/csvingest/internal/tui"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List dataset presets",
	Long: `Datasets lists the built-in dataset presets and the ones defined in
csvingest.yaml. A preset in the config file replaces the built-in preset of
the same name.

With --verbose the declared column types of each preset are printed too.`,
	Args: cobra.NoArgs,
	RunE: runDatasets,
}

func init() {
	rootCmd.AddCommand(datasetsCmd)
}

func runDatasets(cmd *cobra.Command, args []string) error {
	fileCfg, err := loadFileConfig(cmd)
	if err != nil {
		return err
	}

	datasets := config.ListDatasets(fileCfg)
	out := cmd.OutOrStdout()

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(tui.ColorMuted)).
		Headers("NAME", "SOURCE", "TABLE", "BATCH SIZE", "URL").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tui.TitleStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, ds := range datasets {
		batch := "-"
		if ds.BatchSize > 0 {
			batch = strconv.Itoa(ds.BatchSize)
		}
		t.Row(ds.Name, string(ds.Source), ds.Table, batch, ds.URL)
	}
	fmt.Fprintln(out, t.String())

	if !getVerboseFlag(cmd) {
		return nil
	}
	for _, ds := range datasets {
		fmt.Fprintf(out, "\n%s:\n", ds.Name)
		for _, c := range ds.Columns {
			fmt.Fprintf(out, "  %-24s %s\n", c.Name, c.Type)
		}
		if len(ds.Columns) == 0 {
			fmt.Fprintln(out, "  (none declared, pass --column)")
		}
	}
	return nil
}
