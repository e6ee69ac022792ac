package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/playbill/playbill"
	"github.com/playbill/playbill/internal/config"
	"github.com/playbill/playbill/internal/notify"
	"github.com/playbill/playbill/internal/store"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the store for external writes",
	Long: `Watch the backing document for writes by other processes and print a
line for each change. Only the file backend has a watchable document.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if cfg.Backend != store.BackendFile && cfg.Backend != "" {
			return fmt.Errorf("watch requires the file backend, not %s", cfg.Backend)
		}

		storeID := cfg.StoreID
		if storeFlag != "" {
			storeID = storeFlag
		}
		if storeID == "" {
			return fmt.Errorf("a store identifier is required")
		}

		var notifier notify.Notifier = notify.Noop{}
		if cfg.RefreshURL != "" {
			notifier = notify.NewWebhook(cfg.RefreshURL, 10*time.Second)
		}
		fileStore, err := store.NewFileStore(store.Options{Dir: cfg.Dir, Notifier: notifier})
		if err != nil {
			return err
		}

		client, err := playbill.New(
			playbill.WithGateway(fileStore),
			playbill.WithStoreID(storeID),
			playbill.WithWatchPath(fileStore.Path(storeID)),
		)
		if err != nil {
			return err
		}
		defer client.Close()

		client.OnChange(func(ev playbill.ChangeEvent) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  store %s changed\n", ev.At, ev.StoreID)
		})

		if err := client.Watch(cmd.Context()); err != nil {
			return err
		}
		<-cmd.Context().Done()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
