package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize or reconcile the store schema",
	Long: `Create missing columns, drop unknown ones, and retype drifted ones
so the store matches the fixed field registry. Running init on an
up-to-date store is a no-op and does not rewrite the document.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, closer, err := newClient()
		if err != nil {
			return err
		}
		defer closer()

		result, err := client.Init(cmd.Context())
		if err != nil {
			return err
		}
		if result.Created == 0 && result.Updated == 0 && result.Dropped == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema reconciled: %d created, %d updated, %d dropped\n",
			result.Created, result.Updated, result.Dropped)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
