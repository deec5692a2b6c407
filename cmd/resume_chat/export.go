package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var exportOutDir string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render the saved form as a PDF résumé",
	Long: "Renders the persisted form through the résumé template in headless Chrome and writes " +
		"<Full_Name>_Resume.pdf. Every field must be filled.",
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutDir, "out", "o", "", "Directory to write the PDF to (default: export_dir from config)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	a.ctl.Restore(ctx)
	res, err := a.ctl.ExportPDF(ctx)
	if err != nil {
		return err
	}

	dir := exportOutDir
	if dir == "" {
		dir = a.cfg.ExportDir
	}
	path, err := res.Save(dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d page(s))\n", filepath.Clean(path), res.Pages) //nolint:errcheck
	return nil
}
