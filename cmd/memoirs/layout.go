package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/memoirs/pkg/layout"
)

var layoutCmd = &cobra.Command{
	Use:   "layout [memoir-id]",
	Short: "Print the media grid layout for a memoir or a media count",
	Long: `Resolves the grid template for a memoir's media (or for --count items) and prints
the layout tree as JSON. With --width the tree is also placed into a viewport
of that width and the resulting rectangles are printed.

Examples:

  memoirs layout 2b0c... --mode preview
  memoirs layout --count 9 --mode preview --width 360`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		modeFlag, _ := cmd.Flags().GetString("mode")
		expanded, _ := cmd.Flags().GetBool("expanded")
		width, _ := cmd.Flags().GetFloat64("width")
		gap, _ := cmd.Flags().GetFloat64("gap")
		mode := layout.ParseMode(modeFlag)

		var count int
		switch {
		case len(args) == 1:
			a, err := openApp(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			m, ok := a.svc.Store().Get(args[0])
			if !ok {
				return fmt.Errorf("memoir not found: %s", args[0])
			}
			count = len(m.Media)
		case cmd.Flags().Changed("count"):
			count, _ = cmd.Flags().GetInt("count")
		default:
			return fmt.Errorf("provide a memoir id or --count")
		}

		out := struct {
			Count int           `json:"count"`
			Mode  string        `json:"mode"`
			Tree  *layout.Tree  `json:"tree"`
			Frame *layout.Frame `json:"frame,omitempty"`
		}{Count: count, Mode: mode.String(), Tree: layout.ResolveCount(count, mode, expanded)}
		if width > 0 {
			f := layout.Place(out.Tree, width, gap)
			out.Frame = &f
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}

func initLayoutCmd() {
	layoutCmd.Flags().Int("count", 0, "Resolve for this many items instead of a memoir")
	layoutCmd.Flags().String("mode", "full", "Layout mode: full or preview")
	layoutCmd.Flags().Bool("expanded", false, "Resolve an expanded preview")
	layoutCmd.Flags().Float64("width", 0, "Place the tree into a viewport of this width")
	layoutCmd.Flags().Float64("gap", 2, "Spacing between cells when placing")
}
