package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/pulseboard/internal/config"
	"github.com/KaramelBytes/pulseboard/internal/monitoring"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "pulseboard",
	Short: "Pulseboard: explore Apple Watch health exports",
	Long: `Pulseboard cleans Apple Watch health CSV exports (column aliases, type coercion,
gender codes), then shows distributions, per-activity box plots, the heart rate
vs steps relationship and a few key insights, in a browser dashboard or as a
report on the command line.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		monitoring.SetDebug(debug)
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.pulseboard/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
}

// currentConfig returns the loaded configuration, loading it on first use
// and falling back to defaults.
func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		loadConfig()
	}
	if cfg == nil {
		cfg = cfgpkg.Defaults()
	}
	return cfg
}
