package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/spf13/cobra"

	"fincheck/collections"
	"fincheck/config"
	"fincheck/services"
)

func newSeedAQLCommand(app *pocketbase.PocketBase) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "seed-aql",
		Short: "Seed the Z1.4 code letter and sampling plan tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			collections.Setup(app)
			if err := collections.SeedAQL(app, force); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "AQL tables seeded")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace existing rows")
	return cmd
}

func newExportAQLCommand(app *pocketbase.PocketBase, cfg *config.Config) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-aql",
		Short: "Write the AQL chart to an .xlsx or .pdf file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return fmt.Errorf("export-aql: --out is required")
			}
			collections.Setup(app)
			data, err := exportChart(cmd.Context(), app, cfg, out)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("export-aql: write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output file (.xlsx or .pdf)")
	return cmd
}

// exportChart renders the stored tables in the format named by the file
// extension of out.
func exportChart(ctx context.Context, app *pocketbase.PocketBase, cfg *config.Config, out string) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	tables, err := services.LoadTables(ctx, services.NewRecordStore(app))
	if err != nil {
		return nil, fmt.Errorf("export-aql: %w", err)
	}
	plans, err := services.BuildSamplingPlanMatrix(tables.Plans)
	if err != nil {
		return nil, fmt.Errorf("export-aql: %w", err)
	}
	letters := services.BuildCodeLetterMatrix(tables.SampleLetters)

	switch strings.ToLower(filepath.Ext(out)) {
	case ".xlsx":
		return services.GenerateAQLWorkbook(letters, plans)
	case ".pdf":
		meta := services.ChartMeta{
			Title:       cfg.Export.Title,
			Author:      cfg.Export.Author,
			GeneratedOn: time.Now().Format("02 Jan 2006"),
		}
		return services.GenerateAQLChartPDF(meta, letters, plans)
	default:
		return nil, fmt.Errorf("export-aql: unsupported output format %q", filepath.Ext(out))
	}
}
