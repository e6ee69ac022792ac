package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/playbill/playbill"
	"github.com/playbill/playbill/pkg/catalog"
	"github.com/playbill/playbill/pkg/schema"
)

var (
	addTag            string
	addAllowDuplicate bool
	deleteTagFlag     string
	moveFrom          string
	moveTo            string
	toggleField       string
	folderPatterns    []string
)

var mediaCmd = &cobra.Command{
	Use:   "media",
	Short: "Manage media records",
}

var mediaAddCmd = &cobra.Command{
	Use:   "add <url>...",
	Short: "Add media by URL",
	Long: `Add one or more media URLs to the catalog. URLs are canonicalized
before insertion, so the same video added with different query strings
still counts as one record. Duplicates are reported, not re-inserted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, closer, err := newClient()
		if err != nil {
			return err
		}
		defer closer()

		if len(args) > 1 {
			result, err := client.AddBatch(cmd.Context(), playbill.Batch{
				Sources:        args,
				Tag:            addTag,
				CheckDuplicate: !addAllowDuplicate,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Summary)
			return nil
		}

		result, err := client.AddMedia(cmd.Context(), args[0], playbill.AddOptions{
			Tag:            addTag,
			AllowDuplicate: addAllowDuplicate,
		})
		if err != nil {
			return err
		}
		if result.IsDuplicate {
			fmt.Fprintf(cmd.OutOrStdout(), "already in catalog: %s\n", result.Existing.Title)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "added")
		return nil
	},
}

var mediaDeleteCmd = &cobra.Command{
	Use:   "delete [title]",
	Short: "Delete media by title, or clear a whole tag",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, closer, err := newClient()
		if err != nil {
			return err
		}
		defer closer()

		if deleteTagFlag != "" {
			removed, err := client.ClearTag(cmd.Context(), deleteTagFlag)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d items\n", removed)
			return nil
		}
		if len(args) == 0 {
			return fmt.Errorf("a title or --tag is required")
		}
		if err := client.DeleteMedia(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "deleted")
		return nil
	},
}

var mediaUpdateCmd = &cobra.Command{
	Use:   "update <title> <field=value>...",
	Short: "Update fields on a media record",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		set := make(map[string]any, len(args)-1)
		for _, pair := range args[1:] {
			key, value, found := strings.Cut(pair, "=")
			if !found || key == "" {
				return fmt.Errorf("invalid assignment %q, expected field=value", pair)
			}
			switch value {
			case "true":
				set[key] = true
			case "false":
				set[key] = false
			default:
				set[key] = value
			}
		}

		client, closer, err := newClient()
		if err != nil {
			return err
		}
		defer closer()

		if _, err := client.UpdateMedia(cmd.Context(), args[0], catalog.Update{Set: set}); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "updated")
		return nil
	},
}

var mediaMoveCmd = &cobra.Command{
	Use:   "move <title>",
	Short: "Move a record from one tag to another",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, closer, err := newClient()
		if err != nil {
			return err
		}
		defer closer()

		if err := client.MoveMedia(cmd.Context(), args[0], moveFrom, moveTo); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "moved to %s\n", moveTo)
		return nil
	},
}

var mediaToggleCmd = &cobra.Command{
	Use:   "toggle <title>",
	Short: "Flip a checkbox field such as favorite or pinned",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, closer, err := newClient()
		if err != nil {
			return err
		}
		defer closer()

		value, err := client.ToggleMedia(cmd.Context(), args[0], toggleField)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", toggleField, value)
		return nil
	},
}

var mediaRemoveCmd = &cobra.Command{
	Use:   "remove <title> <tag>",
	Short: "Remove one tag from a record",
	Long: `Remove a record from a tag without touching its other tags. When the
removed tag was the record's last one, the record itself is deleted.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, closer, err := newClient()
		if err != nil {
			return err
		}
		defer closer()

		result, err := client.RemoveFromTag(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if result.Deleted {
			fmt.Fprintln(cmd.OutOrStdout(), "last tag removed, record deleted")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed from %s\n", args[1])
		return nil
	},
}

var folderAddCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Import local media files from a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, closer, err := newClient()
		if err != nil {
			return err
		}
		defer closer()

		result, err := client.AddFolder(cmd.Context(), args[0], addTag, folderPatterns...)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Summary)
		return nil
	},
}

func init() {
	mediaAddCmd.Flags().StringVarP(&addTag, "tag", "t", "", "tag the new records join")
	mediaAddCmd.Flags().BoolVar(&addAllowDuplicate, "allow-duplicate", false, "insert even when the canonical URL already exists")

	mediaDeleteCmd.Flags().StringVar(&deleteTagFlag, "tag", "", "delete every record carrying this tag")

	mediaMoveCmd.Flags().StringVar(&moveFrom, "from", "", "tag to leave")
	mediaMoveCmd.Flags().StringVar(&moveTo, "to", "", "tag to join")
	_ = mediaMoveCmd.MarkFlagRequired("from")
	_ = mediaMoveCmd.MarkFlagRequired("to")

	mediaToggleCmd.Flags().StringVarP(&toggleField, "field", "f", schema.FieldPinned, "checkbox field to flip")

	folderAddCmd.Flags().StringVarP(&addTag, "tag", "t", "", "tag the imported records join")
	folderAddCmd.Flags().StringSliceVar(&folderPatterns, "pattern", nil, "glob patterns to match (repeatable)")

	mediaCmd.AddCommand(mediaAddCmd)
	mediaCmd.AddCommand(mediaDeleteCmd)
	mediaCmd.AddCommand(mediaUpdateCmd)
	mediaCmd.AddCommand(mediaMoveCmd)
	mediaCmd.AddCommand(mediaToggleCmd)
	mediaCmd.AddCommand(mediaRemoveCmd)
	mediaCmd.AddCommand(folderAddCmd)
	rootCmd.AddCommand(mediaCmd)
}
