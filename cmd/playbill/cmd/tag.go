package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage tags",
}

var tagAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Declare a tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, closer, err := newClient()
		if err != nil {
			return err
		}
		defer closer()

		if err := client.EnsureTag(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "tag ensured")
		return nil
	},
}

var tagDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a tag and cascade its orphaned records",
	Long: `Delete a tag declaration. The tag is stripped from every record;
records whose only tag it was are removed entirely. The default tag
cannot be deleted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, closer, err := newClient()
		if err != nil {
			return err
		}
		defer closer()

		if err := client.DeleteTag(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "tag deleted")
		return nil
	},
}

var tagRenameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Rename a tag",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, closer, err := newClient()
		if err != nil {
			return err
		}
		defer closer()

		if err := client.RenameTag(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "renamed %s to %s\n", args[0], args[1])
		return nil
	},
}

var tagReorderCmd = &cobra.Command{
	Use:   "reorder <name>...",
	Short: "Persist tags in the given display order",
	Long: `Persist the tag options in exactly the given order. Pass the full
current set: declared tags missing from the arguments are dropped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, closer, err := newClient()
		if err != nil {
			return err
		}
		defer closer()

		if err := client.ReorderTags(cmd.Context(), args); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "tags reordered")
		return nil
	},
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List declared tags",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, closer, err := newClient()
		if err != nil {
			return err
		}
		defer closer()

		view, err := client.View(cmd.Context(), "")
		if err != nil {
			return err
		}
		f, err := formatter()
		if err != nil {
			return err
		}
		return f.Format(cmd.OutOrStdout(), view.Tags)
	},
}

func init() {
	tagCmd.AddCommand(tagAddCmd)
	tagCmd.AddCommand(tagDeleteCmd)
	tagCmd.AddCommand(tagRenameCmd)
	tagCmd.AddCommand(tagReorderCmd)
	tagCmd.AddCommand(tagListCmd)
	rootCmd.AddCommand(tagCmd)
}
