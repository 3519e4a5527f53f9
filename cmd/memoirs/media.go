package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/memoirs/pkg/media"
	"github.com/unowned-ai/memoirs/pkg/memoirs"
)

var mediaCmd = &cobra.Command{
	Use:   "media",
	Short: "Attach and remove memoir media",
	Long:  `Import files into the media directory and attach them to memoirs, or remove attached items.`,
}

var addMediaCmd = &cobra.Command{
	Use:   "add [memoir-id] [file...]",
	Short: "Import files and attach them to a memoir",
	Long: `Copies each file into the media directory and appends it to the memoir's media
list. When the pick would exceed the attachment limit the command fails unless
--replace-last is set, in which case the memoir's last item is replaced by the
first file and the rest of the pick is discarded.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		memoirID, paths := args[0], args[1:]
		if _, ok := a.svc.Store().Get(memoirID); !ok {
			return fmt.Errorf("memoir not found: %s", memoirID)
		}

		typeFlag, _ := cmd.Flags().GetString("type")
		var picked []media.Asset
		for _, p := range paths {
			t := media.ParseType(typeFlag)
			if t == media.TypeUndefined {
				t = guessType(p)
			}
			asset, err := a.files.Import(cmd.Context(), p, t)
			if err != nil {
				a.files.DeleteFiles(cmd.Context(), picked)
				return err
			}
			if t.Timed() && cmd.Flags().Changed("duration") {
				d, _ := cmd.Flags().GetFloat64("duration")
				asset.Duration = &d
			}
			picked = append(picked, asset)
		}

		replaceLast, _ := cmd.Flags().GetBool("replace-last")
		confirm := func(_, _ []media.Asset, _ int) memoirs.LimitDecision {
			if replaceLast {
				return memoirs.ReplaceLast
			}
			return memoirs.Cancel
		}

		m, err := a.svc.AttachMedia(cmd.Context(), memoirID, picked, confirm)
		if err != nil {
			a.files.DeleteFiles(cmd.Context(), picked)
			if errors.Is(err, memoirs.ErrAttachmentLimit) {
				return fmt.Errorf("a memoir can hold at most %d media items, use --replace-last to swap the last one", a.svc.AttachmentLimit())
			}
			return err
		}
		if replaceLast && len(picked) > 1 {
			// Only the first file made it in; the rest are not referenced anywhere.
			a.files.DeleteFiles(cmd.Context(), unattached(m.Media, picked))
		}
		return printJSON(cmd.OutOrStdout(), m)
	},
}

var removeMediaCmd = &cobra.Command{
	Use:   "remove [memoir-id] [media-id]",
	Short: "Remove one media item from a memoir",
	Long: `Removes a media item and deletes its file. If the memoir has nothing left
(no media, no title, no text), the memoir itself is deleted.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		outcome, ok := a.svc.RemoveMedia(cmd.Context(), args[0], args[1])
		if !ok {
			return fmt.Errorf("media item %s not found on memoir %s", args[1], args[0])
		}
		if outcome == memoirs.OutcomeMemoirDeleted {
			fmt.Fprintf(cmd.OutOrStdout(), "Removed media %s; memoir %s was empty and has been deleted.\n", args[1], args[0])
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed media %s from memoir %s.\n", args[1], args[0])
		return nil
	},
}

var extensionTypes = map[string]media.Type{
	".jpg":  media.TypeImage,
	".jpeg": media.TypeImage,
	".png":  media.TypeImage,
	".gif":  media.TypeImage,
	".webp": media.TypeImage,
	".heic": media.TypeImage,
	".mp4":  media.TypeVideo,
	".mov":  media.TypeVideo,
	".m4v":  media.TypeVideo,
	".webm": media.TypeVideo,
	".mp3":  media.TypeAudio,
	".m4a":  media.TypeAudio,
	".aac":  media.TypeAudio,
	".wav":  media.TypeAudio,
	".ogg":  media.TypeAudio,
}

// guessType picks a media type from the file extension.
func guessType(path string) media.Type {
	return extensionTypes[strings.ToLower(filepath.Ext(path))]
}

// unattached returns the picked assets that are not in list.
func unattached(list, picked []media.Asset) []media.Asset {
	var out []media.Asset
	for _, p := range picked {
		if media.IndexOf(list, p.ID) < 0 {
			out = append(out, p)
		}
	}
	return out
}

func initMediaCmd() {
	addMediaCmd.Flags().String("type", "", "Media type for every file (image, video, audio, livePhoto, pairedVideo); guessed from the extension when empty")
	addMediaCmd.Flags().Float64("duration", 0, "Duration in seconds for video or audio files")
	addMediaCmd.Flags().Bool("replace-last", false, "Replace the last item when the attachment limit is reached")

	mediaCmd.AddCommand(addMediaCmd, removeMediaCmd)
}
