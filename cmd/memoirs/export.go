package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/memoirs/pkg/memoirs"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every memoir as JSON or YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("output")

		a, err := openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		w := cmd.OutOrStdout()
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("failed to create export file: %w", err)
			}
			defer f.Close()
			w = f
		}
		return memoirs.Export(w, a.svc.Store().List(), format)
	},
}

func initExportCmd() {
	exportCmd.Flags().StringP("format", "f", memoirs.FormatJSON, "Output format: json or yaml")
	exportCmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
}
