package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/memoirs/pkg/memoirs"
)

var memoirsCmd = &cobra.Command{
	Use:     "memoirs",
	Aliases: []string{"m"},
	Short:   "Manage memoirs",
	Long:    `Create, list, show, update, bookmark, and delete memoirs.`,
}

// stringFlag returns the flag value if the user set it, nil otherwise.
func stringFlag(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

var createMemoirCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new memoir",
	Long:  `Creates a memoir with an optional title, rich-text content and date. Attach media afterwards with 'memoirs media add'.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		bookmark, _ := cmd.Flags().GetBool("bookmark")
		d := memoirs.Draft{
			Title:    stringFlag(cmd, "title"),
			Content:  stringFlag(cmd, "content"),
			Date:     stringFlag(cmd, "date"),
			Bookmark: bookmark,
		}
		if cmd.Flags().Changed("hide-title") {
			visible := false
			d.TitleVisible = &visible
		}

		m := a.svc.Create(cmd.Context(), d)
		return printJSON(cmd.OutOrStdout(), m)
	},
}

var listMemoirsCmd = &cobra.Command{
	Use:   "list",
	Short: "List memoirs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		list := a.svc.Store().List()
		if raw, _ := cmd.Flags().GetString("category"); raw != "" {
			cats, err := parseCategories(raw)
			if err != nil {
				return err
			}
			list = memoirs.Search(list, memoirs.Query{Categories: cats})
		}

		if len(list) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "No memoirs found.")
			return nil
		}

		if full, _ := cmd.Flags().GetBool("json"); full {
			return printJSON(cmd.OutOrStdout(), list)
		}
		for _, m := range list {
			mark := " "
			if m.Bookmark {
				mark = "*"
			}
			date := memoirs.Deref(m.Date)
			if date == "" {
				date = "----------"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s  %s (%d media)\n", mark, m.ID, date, m.DisplayTitle(), len(m.Media))
		}
		return nil
	},
}

var getMemoirCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show a memoir and its derived categories",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		m, ok := a.svc.Store().Get(args[0])
		if !ok {
			return fmt.Errorf("memoir not found: %s", args[0])
		}
		return printJSON(cmd.OutOrStdout(), struct {
			memoirs.Memoir
			Categories []memoirs.Category `json:"categories"`
		}{m, m.Categories()})
	},
}

var updateMemoirCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Update an existing memoir",
	Long:  `Updates an existing memoir. Only provided fields are changed.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := memoirs.Patch{
			ID:      args[0],
			Title:   stringFlag(cmd, "title"),
			Content: stringFlag(cmd, "content"),
			Date:    stringFlag(cmd, "date"),
		}

		showSet, hideSet := cmd.Flags().Changed("show-title"), cmd.Flags().Changed("hide-title")
		if showSet && hideSet {
			return fmt.Errorf("cannot use --show-title and --hide-title flags simultaneously")
		}
		if showSet || hideSet {
			visible := showSet
			p.TitleVisible = &visible
		}
		if p.Empty() {
			return fmt.Errorf("no update fields provided, use --title, --content, --date, --show-title or --hide-title")
		}

		a, err := openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		m, ok := a.svc.Edit(cmd.Context(), p)
		if !ok {
			return fmt.Errorf("memoir not found: %s", args[0])
		}
		return printJSON(cmd.OutOrStdout(), m)
	},
}

var deleteMemoirCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a memoir and its media files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if !a.svc.DeleteMemoir(cmd.Context(), args[0]) {
			return fmt.Errorf("memoir not found: %s", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Memoir %s deleted.\n", args[0])
		return nil
	},
}

var bookmarkMemoirCmd = &cobra.Command{
	Use:   "bookmark [id]",
	Short: "Toggle a memoir's bookmark",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		m, ok := a.svc.ToggleBookmark(cmd.Context(), args[0])
		if !ok {
			return fmt.Errorf("memoir not found: %s", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Bookmark on %s: %t\n", m.ID, m.Bookmark)
		return nil
	},
}

func parseCategories(raw string) ([]memoirs.Category, error) {
	var out []memoirs.Category
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		c, ok := memoirs.ParseCategory(part)
		if !ok {
			return nil, fmt.Errorf("unknown category: %s", part)
		}
		out = append(out, c)
	}
	return out, nil
}

func initMemoirsCmd() {
	createMemoirCmd.Flags().StringP("title", "t", "", "Title of the memoir")
	createMemoirCmd.Flags().StringP("content", "c", "", "Rich-text (HTML) content")
	createMemoirCmd.Flags().StringP("date", "d", "", "Nominal date, YYYY-MM-DD")
	createMemoirCmd.Flags().Bool("bookmark", false, "Bookmark the new memoir")
	createMemoirCmd.Flags().Bool("hide-title", false, "Hide the title when displaying the memoir")

	listMemoirsCmd.Flags().String("category", "", "Comma-separated categories the memoir must all have (bookmark, photo, video, audio, text)")
	listMemoirsCmd.Flags().Bool("json", false, "Print full records as JSON")

	updateMemoirCmd.Flags().StringP("title", "t", "", "New title")
	updateMemoirCmd.Flags().StringP("content", "c", "", "New rich-text content")
	updateMemoirCmd.Flags().StringP("date", "d", "", "New nominal date, YYYY-MM-DD")
	updateMemoirCmd.Flags().Bool("show-title", false, "Show the title")
	updateMemoirCmd.Flags().Bool("hide-title", false, "Hide the title")

	memoirsCmd.AddCommand(createMemoirCmd, listMemoirsCmd, getMemoirCmd, updateMemoirCmd, deleteMemoirCmd, bookmarkMemoirCmd)
}
