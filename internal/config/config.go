// Package config resolves playbill's runtime configuration through Viper.
// Values come from (highest precedence first) environment variables with
// the PLAYBILL_ prefix, an optional config file, and built-in defaults.
package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/playbill/playbill/pkg/errors"
)

// Config holds the resolved runtime configuration.
type Config struct {
	// StoreID is the active catalog store identifier. Empty means no store
	// is configured; mutating operations fail until one is.
	StoreID string
	// Backend selects the persistence gateway: file, sqlite, or badger.
	Backend string
	// Dir is the data directory for the selected backend.
	Dir string
	// RefreshURL, when set, receives a webhook POST after every catalog
	// write so the host can re-render.
	RefreshURL string
	// LogLevel overrides the default log level.
	LogLevel string
}

// Defaults registered with viper.
const (
	defaultBackend = "file"
)

// Init wires viper's environment handling and defaults. Called once from
// the CLI root; safe to call again.
func Init(configFile string) error {
	viper.SetEnvPrefix("PLAYBILL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("store.backend", defaultBackend)
	viper.SetDefault("store.dir", defaultDir())

	if configFile != "" {
		viper.SetConfigFile(configFile)
		return errors.WrapIO("read", configFile, viper.ReadInConfig())
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultDir())
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine; everything has defaults or env.
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) && !os.IsNotExist(err) {
			return errors.WrapParse("yaml", viper.ConfigFileUsed(), err)
		}
	}
	return nil
}

// Load returns the resolved configuration.
func Load() *Config {
	return &Config{
		StoreID:    viper.GetString("store.id"),
		Backend:    viper.GetString("store.backend"),
		Dir:        viper.GetString("store.dir"),
		RefreshURL: viper.GetString("refresh.url"),
		LogLevel:   viper.GetString("log.level"),
	}
}

// defaultDir is ~/.playbill, falling back to the working directory when the
// home directory cannot be resolved.
func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".playbill"
	}
	return filepath.Join(home, ".playbill")
}
