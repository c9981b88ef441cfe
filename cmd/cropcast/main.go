package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	configPath string
	verbose    bool
	serverURL  string
	timeout    time.Duration

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cropcast",
	Short: "cropcast - crop yield prediction service",
	Long: `cropcast predicts crop yields for Indian field conditions.

The serve command runs the HTTP API. Yield models are loaded from artifact
files; incompatible artifacts degrade the affected crop to a built-in
baseline model, which the health endpoint reports as fallback mode. When a
request omits the variety, the service auto-selects one (regional
registration, then agro-climatic zone, then the crop's national default)
and reports how it chose.

The remaining commands are thin API clients for a running server.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "cropcast.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8099", "base URL of a running cropcast server (client commands)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "client request timeout")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(varietiesCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(smokeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
