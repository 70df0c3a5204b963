package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/algorandfoundation/algokit-lora/internal/deeplink"
	"github.com/algorandfoundation/algokit-lora/internal/singleinstance"
	"github.com/algorandfoundation/algokit-lora/internal/wailsapp"
)

// newOpenCmd creates the 'open' command.
func newOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <url>",
		Short: "Send a URL to the running lora window",
		Long: `Send a deep link to the lora window that is already running, without
starting a new one. Fails if lora is not running.

Example:
  algokit-lora open algokit-lora://asset/123`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := deeplink.NewScheme(cfg.Scheme)
			if err != nil {
				return err
			}
			req, err := s.Parse(args[0])
			if err != nil {
				return fmt.Errorf("%q is not a %s URL: %w", args[0], s.Prefix(), err)
			}

			wd, _ := os.Getwd()
			wailsapp.AllowForegroundHandoff()

			err = singleinstance.Relay(GetContext(), cfg.RelayEndpoint(), launchArgs([]string{req.Raw}), wd, cfg.RelayTimeout)
			if errors.Is(err, singleinstance.ErrNotRunning) {
				return fmt.Errorf("lora is not running (start it with: %s %s)", cmd.Root().Name(), req.Raw)
			}
			if err != nil {
				return err
			}

			GetLogger().Debug().Str("url", req.Raw).Msg("URL sent to running instance")
			fmt.Fprintln(cmd.OutOrStdout(), "Opened", req.Raw)
			return nil
		},
	}
}
