package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/proofpoint/proofpoint/internal/app"
	"github.com/proofpoint/proofpoint/internal/nav"
	"github.com/proofpoint/proofpoint/internal/verify"
)

// withEnv wires a controller for one command and prints its notifications
// when the command returns.
func (c *cli) withEnv(ctx context.Context, fn func(e *env) error) error {
	e := newEnv(ctx, c.cfg, c.in, c.out)
	defer e.close()
	return fn(e)
}

// shownError is an error the controller has already presented to the user.
type shownError struct{ error }

func (e shownError) Unwrap() error { return e.error }

func shown(err error) error {
	if err == nil {
		return nil
	}
	return shownError{err}
}

// restore requires a valid saved session.
func restore(ctx context.Context, e *env) error {
	err := e.ctl.Restore(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, app.ErrNotLoggedIn):
		return errors.New("not logged in; run 'proofpoint login' first")
	default:
		return errors.New(app.Message(err, "could not validate session"))
	}
}

func (c *cli) newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login [email]",
		Short: "Sign in and save the session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := ""
			if len(args) == 1 {
				email = args[0]
			}
			return c.withEnv(cmd.Context(), func(e *env) error {
				if err := e.login(cmd.Context(), email); err != nil {
					return err
				}
				fmt.Fprintf(c.out, "Logged in as %s (%s)\n", e.ctl.UserName(), e.ctl.Role())
				return nil
			})
		},
	}
}

func (c *cli) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEnv(cmd.Context(), func(e *env) error {
				e.ctl.Logout(cmd.Context())
				return nil
			})
		},
	}
}

func (c *cli) newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Validate the saved session and show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEnv(cmd.Context(), func(e *env) error {
				if err := restore(cmd.Context(), e); err != nil {
					return err
				}
				fmt.Fprintf(c.out, "%s (%s) at %s\n", e.ctl.UserName(), e.ctl.Role(), e.client.BaseURL())
				return nil
			})
		},
	}
}

func (c *cli) newVerifyCmd() *cobra.Command {
	var (
		saveReport bool
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "verify <file>",
		Short: "Verify a PDF or image document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withEnv(ctx, func(e *env) error {
				if err := restore(ctx, e); err != nil {
					return err
				}
				f, err := verify.OpenFile(args[0])
				if err != nil {
					return err
				}
				if err := e.ctl.SelectFile(f); err != nil {
					return shown(err)
				}
				res, err := e.ctl.Verify(ctx)
				if err != nil {
					return shown(err)
				}
				if asJSON {
					enc := json.NewEncoder(c.out)
					enc.SetIndent("", "  ")
					if err := enc.Encode(res); err != nil {
						return err
					}
				}
				if saveReport {
					if _, err := e.ctl.DownloadReport(ctx); err != nil {
						return shown(err)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&saveReport, "report", false, "Save the PDF report to the configured sink")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Also print the raw result as JSON")
	return cmd
}

func (c *cli) newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the dashboard for your role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withEnv(ctx, func(e *env) error {
				if err := restore(ctx, e); err != nil {
					return err
				}
				page, err := dashboardPage(e.ctl)
				if err != nil {
					return err
				}
				return shown(e.ctl.GoTo(ctx, page))
			})
		},
	}
}

// dashboardPage returns the dashboard page of the signed-in role.
func dashboardPage(ctl *app.Controller) (nav.Page, error) {
	entry, ok := ctl.MenuEntry()
	if !ok {
		return "", fmt.Errorf("no dashboard for role %s", ctl.Role())
	}
	page, ok := nav.ParsePage(entry.Page)
	if !ok {
		return "", fmt.Errorf("unknown page %q", entry.Page)
	}
	return page, nil
}

func (c *cli) newTicketCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ticket <message>",
		Short: "Send a support ticket",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withEnv(ctx, func(e *env) error {
				if err := restore(ctx, e); err != nil {
					return err
				}
				return shown(e.ctl.SubmitTicket(ctx, strings.Join(args, " ")))
			})
		},
	}
}

func (c *cli) newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runShell(cmd.Context())
		},
	}
}

func (c *cli) runShell(ctx context.Context) error {
	return c.withEnv(ctx, func(e *env) error {
		return newShell(e).run(ctx)
	})
}
