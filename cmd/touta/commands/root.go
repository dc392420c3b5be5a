package commands

import (
	"encoding/json"
	"io"
	"os"

	"github.com/agrihope/backend/config"
	"github.com/agrihope/backend/internal/app"
	"github.com/agrihope/backend/internal/catalog"
	"github.com/agrihope/backend/internal/observability/logging"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "touta",
	Short: "Touta farming assistant CLI",
	Long: `Runs the AgriHope assistant pipeline from the terminal
without starting the HTTP server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadFile(cfgFile)
	}
	return config.Load()
}

func newLogger() zerolog.Logger {
	level := "warn"
	if verbose {
		level = "debug"
	}
	return logging.New(logging.Config{
		Level:   level,
		Format:  "console",
		Service: app.ServiceName,
		Output:  os.Stderr,
	})
}

func loadCatalog() (*catalog.Catalog, error) {
	return catalog.Default()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
