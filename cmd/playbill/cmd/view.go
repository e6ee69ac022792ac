package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var viewCmd = &cobra.Command{
	Use:   "view [tag]",
	Short: "Show the catalog filtered to a tag",
	Long: `Project the catalog filtered to one tag. Without an argument the
persisted active tag is shown. The active tag selection itself is
changed with "view set".`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, closer, err := newClient()
		if err != nil {
			return err
		}
		defer closer()

		tag := ""
		if len(args) == 1 {
			tag = args[0]
		}
		view, err := client.View(cmd.Context(), tag)
		if err != nil {
			return err
		}
		f, err := formatter()
		if err != nil {
			return err
		}
		return f.Format(cmd.OutOrStdout(), view)
	},
}

var viewSetCmd = &cobra.Command{
	Use:   "set <tag>",
	Short: "Persist the active tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, closer, err := newClient()
		if err != nil {
			return err
		}
		defer closer()

		if err := client.SetActiveTag(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "active tag set to %s\n", args[0])
		return nil
	},
}

func init() {
	viewCmd.AddCommand(viewSetCmd)
	rootCmd.AddCommand(viewCmd)
}
