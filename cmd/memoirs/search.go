package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/memoirs/pkg/memoirs"
)

var searchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "Search memoirs by text, category and date",
	Long: `Finds memoirs whose title or plain-text content contains the text
(case-insensitive), that carry all given categories, and whose date falls
within --from and --to (inclusive, YYYY-MM-DD).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var q memoirs.Query
		if len(args) == 1 {
			q.Text = args[0]
		}
		if raw, _ := cmd.Flags().GetString("categories"); raw != "" {
			cats, err := parseCategories(raw)
			if err != nil {
				return err
			}
			q.Categories = cats
		}
		q.From, _ = cmd.Flags().GetString("from")
		q.To, _ = cmd.Flags().GetString("to")

		a, err := openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		found := memoirs.Search(a.svc.Store().List(), q)
		if len(found) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "No memoirs match.")
			return nil
		}
		return printJSON(cmd.OutOrStdout(), found)
	},
}

func initSearchCmd() {
	searchCmd.Flags().StringP("categories", "c", "", "Comma-separated categories the memoir must all have")
	searchCmd.Flags().String("from", "", "Earliest date, YYYY-MM-DD")
	searchCmd.Flags().String("to", "", "Latest date, YYYY-MM-DD")
}
