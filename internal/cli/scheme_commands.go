package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/algorandfoundation/algokit-lora/internal/config"
	"github.com/algorandfoundation/algokit-lora/internal/logging"
	"github.com/algorandfoundation/algokit-lora/internal/scheme"
)

// newRegistrar builds the platform registrar. Tests replace it.
var newRegistrar = func(c *config.Config, l *logging.Logger) (scheme.Registrar, error) {
	return scheme.New(scheme.Options{
		AppID:       c.AppID,
		Scheme:      c.Scheme,
		ProductName: c.ProductName,
		Logger:      l,
	})
}

// newSchemeCmd creates the 'scheme' command group.
func newSchemeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scheme",
		Short: "Manage the " + config.Scheme + ":// URL handler registration",
		Long: `Manage the operating system registration that routes ` + config.Scheme + `:// links
to this executable.

The running app registers itself on every start; these commands are for
installers and troubleshooting.

Available commands:
  register    Point the scheme at this executable
  unregister  Remove the registration
  status      Show the current registration

On macOS the scheme is declared by the app bundle and these commands only
report it.`,
	}

	cmd.AddCommand(newSchemeRegisterCmd())
	cmd.AddCommand(newSchemeUnregisterCmd())
	cmd.AddCommand(newSchemeStatusCmd())

	return cmd
}

func newSchemeRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Register this executable as the URL handler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRegistrar(cfg, GetLogger())
			if err != nil {
				return err
			}
			if err := r.Register(GetContext()); err != nil {
				return fmt.Errorf("failed to register url scheme: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s://\n", cfg.Scheme)
			return nil
		},
	}
}

func newSchemeUnregisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unregister",
		Short: "Remove the URL handler registration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRegistrar(cfg, GetLogger())
			if err != nil {
				return err
			}
			err = r.Unregister(GetContext())
			if errors.Is(err, scheme.ErrNotRegistered) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s:// was not registered\n", cfg.Scheme)
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to unregister url scheme: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unregistered %s://\n", cfg.Scheme)
			return nil
		},
	}
}

func newSchemeStatusCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the URL handler registration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRegistrar(cfg, GetLogger())
			if err != nil {
				return err
			}
			st, err := r.Status(GetContext())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}

			fmt.Fprintf(out, "Scheme:     %s://\n", cfg.Scheme)
			fmt.Fprintf(out, "Registered: %s\n", yesNo(st.Registered))
			fmt.Fprintf(out, "Method:     %s\n", st.Method)
			if st.Location != "" {
				fmt.Fprintf(out, "Location:   %s\n", st.Location)
			}
			if st.Command != "" {
				fmt.Fprintf(out, "Command:    %s\n", st.Command)
			}
			if st.Registered && !st.Current {
				fmt.Fprintln(out, "Warning:    registration points at a different executable; run 'scheme register' to update it")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the status as JSON")

	return cmd
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
