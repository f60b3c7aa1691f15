// ProofPoint command-line client.
//
// Sub-commands:
//
//	proofpoint login [email]      Sign in and save the session
//	proofpoint logout             Forget the saved session
//	proofpoint whoami             Validate the saved session
//	proofpoint verify <file>      Verify a document
//	proofpoint dashboard          Show the dashboard for your role
//	proofpoint ticket <message>   Send a support ticket
//	proofpoint shell              Interactive session (default)
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/proofpoint/proofpoint/internal/config"
	"github.com/proofpoint/proofpoint/pkg/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(os.Stdin, os.Stdout)
	err := root.ExecuteContext(ctx)
	logging.Sync()
	if err != nil {
		var se shownError
		if !errors.As(err, &se) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// cli carries state shared by every sub-command.
type cli struct {
	in  io.Reader
	out io.Writer

	serverURL string
	logLevel  string

	cfg *config.Config
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	c := &cli{in: in, out: out}

	root := &cobra.Command{
		Use:           "proofpoint",
		Short:         "ProofPoint document verification client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runShell(cmd.Context())
		},
	}
	root.SetIn(in)
	root.SetOut(out)

	root.PersistentFlags().StringVar(&c.serverURL, "server", "", "API server URL (overrides config)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(
		c.newLoginCmd(),
		c.newLogoutCmd(),
		c.newWhoamiCmd(),
		c.newVerifyCmd(),
		c.newDashboardCmd(),
		c.newTicketCmd(),
		c.newShellCmd(),
	)
	return root
}

func (c *cli) loadConfig(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("server") {
		cfg.ServerURL = c.serverURL
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = c.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := logging.Init(cfg.LoggingConfig()); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	c.cfg = cfg
	return nil
}
