// Package cmd implements the playbill command line interface.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/playbill/playbill"
	"github.com/playbill/playbill/internal/cmd/output"
	"github.com/playbill/playbill/internal/config"
	"github.com/playbill/playbill/internal/notify"
	"github.com/playbill/playbill/internal/store"
	"github.com/playbill/playbill/pkg/logging"
	"github.com/playbill/playbill/pkg/resolve"
)

var (
	configFile  string
	storeFlag   string
	outputFlag  string
	verboseFlag bool

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "playbill",
	Short: "Media catalog CLI",
	Long: `Playbill is a tag-oriented media catalog. Every store is a single
typed document holding your media entries, their tags, and the view
state. Records deduplicate on canonical URL, tags cascade when a
record's last tag is removed, and every write notifies the host so it
can re-render.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date
	rootCmd.Version = version

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is ~/.playbill/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&storeFlag, "store", "", "store identifier (default from config or PLAYBILL_STORE_ID)")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "", "output format: table, json, yaml (default auto-detected)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
}

// initConfig loads .env files, wires viper, and configures logging.
func initConfig() {
	// .env.local overrides .env
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Overload(envFile)
	}

	if err := config.Init(configFile); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	cfg := config.Load()
	if verboseFlag {
		logging.SetLevel("debug")
	} else if cfg.LogLevel != "" {
		logging.SetLevel(cfg.LogLevel)
	}
}

// formatter returns the output formatter for the current invocation.
func formatter() (output.Formatter, error) {
	format, err := output.ParseFormat(outputFlag)
	if err != nil {
		return nil, err
	}
	if format == "" {
		format = output.DetectFormat("")
	}
	return output.NewFormatter(format), nil
}

// newClient assembles a playbill client from the resolved configuration.
// The returned closer shuts down the gateway.
func newClient() (playbill.Client, func() error, error) {
	cfg := config.Load()

	storeID := cfg.StoreID
	if storeFlag != "" {
		storeID = storeFlag
	}

	var notifier notify.Notifier = notify.Noop{}
	if cfg.RefreshURL != "" {
		notifier = notify.NewWebhook(cfg.RefreshURL, 10*time.Second)
	}

	gateway, err := store.Open(cfg.Backend, store.Options{
		Dir:      cfg.Dir,
		Notifier: notifier,
	})
	if err != nil {
		return nil, nil, err
	}

	client, err := playbill.New(
		playbill.WithGateway(gateway),
		playbill.WithStoreID(storeID),
		playbill.WithResolver(resolve.Generic()),
	)
	if err != nil {
		gateway.Close()
		return nil, nil, err
	}

	closer := func() error {
		if err := client.Close(); err != nil {
			gateway.Close()
			return err
		}
		return gateway.Close()
	}
	return client, closer, nil
}
