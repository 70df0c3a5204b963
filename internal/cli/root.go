// Package cli provides the command-line interface for algokit-lora.
package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/algorandfoundation/algokit-lora/internal/config"
	"github.com/algorandfoundation/algokit-lora/internal/logging"
	"github.com/algorandfoundation/algokit-lora/internal/version"
	"github.com/algorandfoundation/algokit-lora/internal/wailsapp"
)

var (
	// Global flags
	debug bool

	// Global logger
	logger *logging.Logger

	// Resolved configuration, loaded before any command runs
	cfg *config.Config

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc

	// runGUI is swapped out by tests.
	runGUI = wailsapp.Run
)

// NewRootCmd creates the root command. Without a subcommand it opens the
// window, delivering the optional URL argument; this is also how the
// operating system launches the app for a clicked link.
func NewRootCmd(assets fs.FS) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "algokit-lora [url]",
		Short: "AlgoKit lora desktop application",
		Long: `AlgoKit lora ` + version.Version + ` - Built: ` + version.BuildTime + `

Opens the lora window. A ` + config.Scheme + `:// URL argument is handed to the
window; if lora is already running the URL is passed to the running window
instead and this process exits.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		// macOS adds -psn_* when launched from Finder.
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded
			if debug {
				cfg.Debug = true
			}

			logger = logging.NewLogger("cli", cfg.LogFormat)
			if cfg.Debug {
				logging.SetGlobalLevel(zerolog.DebugLevel)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI(GetContext(), wailsapp.Options{
				Config: cfg,
				Args:   launchArgs(args),
				Assets: assets,
				Logger: logging.NewLogger("gui", cfg.LogFormat),
			})
		},
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug output (same as LORA_DEBUG=true)")

	rootCmd.Version = version.Version + " (" + version.BuildTime + ")"

	return rootCmd
}

// launchArgs rebuilds an argument vector with the program name first, as
// the relay and the launch strategies expect.
func launchArgs(args []string) []string {
	program := "algokit-lora"
	if len(os.Args) > 0 {
		program = os.Args[0]
	}
	return append([]string{program}, args...)
}

// Execute runs the CLI.
func Execute(assets fs.FS) error {
	// Create a context that can be cancelled by signals
	rootContext, cancelFunc = context.WithCancel(context.Background())
	defer cancelFunc()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		for sig := range sigChan {
			if sig != nil {
				fmt.Fprintf(os.Stderr, "\nReceived signal %v, shutting down...\n", sig)
				cancelFunc()
			}
		}
	}()

	rootCmd := NewRootCmd(assets)
	AddCommands(rootCmd)
	err := rootCmd.Execute()

	// Clean up signal handler
	signal.Stop(sigChan)
	close(sigChan)

	return err
}

// AddCommands adds all subcommands to the root command.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newOpenCmd())
	rootCmd.AddCommand(newSchemeCmd())
}

// GetLogger returns the global CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	return logger
}

// GetContext returns the global CLI context with signal handling.
func GetContext() context.Context {
	if rootContext == nil {
		// Fallback to background context if called before Execute()
		return context.Background()
	}
	return rootContext
}
