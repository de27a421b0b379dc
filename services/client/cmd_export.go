package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/02loveslollipop/arbor-inventory/services/client/internal/export"
	"github.com/02loveslollipop/arbor-inventory/services/client/internal/models"
	"github.com/02loveslollipop/arbor-inventory/services/client/internal/ui"
)

func newExportCmd(c *cli) *cobra.Command {
	var (
		filter models.Filter
		output string
	)
	cmd := &cobra.Command{
		Use:   "export -o FILE.xlsx",
		Short: "Write the trees matching a filter to a spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.dispatch(cmd.Context(), ui.Command{Intent: ui.IntentFilter, Filter: filter}); err != nil {
				return err
			}
			rows := c.app.List.Rows()

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := export.WriteXLSX(f, c.cfg.ExportSheet, rows); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", output, err)
			}

			c.logger.Debug("export written", zap.String("path", output), zap.Int("trees", len(rows)))
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d trees to %s\n", len(rows), output)
			return nil
		},
	}
	addFilterFlags(cmd, &filter)
	cmd.Flags().StringVarP(&output, "output", "o", "trees.xlsx", "Workbook path")
	return cmd
}
