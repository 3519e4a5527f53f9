//go:build tui

package main

import (
	"github.com/spf13/cobra"

	"github.com/unowned-ai/memoirs/pkg/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Show terminal UI",
	Long:  `Display an interactive terminal UI for browsing memoirs and their media.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		return tui.ShowTUI(a.svc, a.db)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
