package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/proofpoint/proofpoint/internal/app"
	"github.com/proofpoint/proofpoint/internal/config"
	"github.com/proofpoint/proofpoint/internal/events"
	"github.com/proofpoint/proofpoint/internal/report"
	"github.com/proofpoint/proofpoint/internal/termui"
	"github.com/proofpoint/proofpoint/pkg/client"
	"github.com/proofpoint/proofpoint/pkg/credentials"
	"github.com/proofpoint/proofpoint/pkg/logging"
)

// env is a wired controller with its terminal front end.
type env struct {
	cfg    *config.Config
	store  credentials.Store
	client *client.Client
	bus    *events.Broadcaster
	sub    chan events.Event
	ui     *termui.Renderer
	in     *bufio.Reader
	rawIn  io.Reader
	out    io.Writer
	ctl    *app.Controller
}

func newEnv(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) *env {
	store := credentials.NewFileStore(cfg.CredentialsFile)
	return wire(ctx, cfg, store, in, out)
}

func wire(ctx context.Context, cfg *config.Config, store credentials.Store, in io.Reader, out io.Writer) *env {
	e := &env{
		cfg:   cfg,
		store: store,
		bus:   events.NewBroadcaster(),
		in:    bufio.NewReader(in),
		rawIn: in,
		out:   out,
	}
	e.sub = e.bus.Subscribe()

	e.client = client.New(client.Config{
		BaseURL:     cfg.ServerURL,
		Timeout:     cfg.Timeout,
		RetryConfig: cfg.RetryConfig(),
		Tokens:      credentials.TokenSource{Store: store},
	})

	sink, err := report.NewSink(ctx, cfg.ReportConfig())
	if err != nil {
		logging.Warn("report sink unavailable", logging.String("type", cfg.ReportSink), logging.Err(err))
		sink = nil
	}

	e.ui = termui.NewRenderer(out, app.ThemeLight)
	e.ctl = app.New(app.Options{
		Gateway:   e.client,
		Store:     store,
		Notifier:  e.bus,
		Presenter: e.ui,
		Confirmer: termui.NewPrompt(e.in, out),
		Renderer:  e.ui,
		Reports:   sink,
	})
	e.ui.SetTheme(e.ctl.Theme())
	return e
}

// flush prints pending notifications.
func (e *env) flush() {
	for _, ev := range events.Drain(e.sub) {
		e.ui.PrintEvent(ev)
	}
}

func (e *env) close() {
	e.flush()
	e.bus.Unsubscribe(e.sub)
}

// readLine prints prompt and returns the next trimmed input line.
func (e *env) readLine(prompt string) (string, error) {
	fmt.Fprint(e.out, prompt)
	line, err := e.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads without echo on a terminal and falls back to a plain
// line otherwise.
func (e *env) readPassword(prompt string) (string, error) {
	if f, ok := e.rawIn.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(e.out, prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(e.out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	return e.readLine(prompt)
}

// login prompts for whatever of email and password is missing.
func (e *env) login(ctx context.Context, email string) error {
	var err error
	if email == "" {
		if email, err = e.readLine("Email: "); err != nil {
			return err
		}
	}
	password, err := e.readPassword("Password: ")
	if err != nil {
		return err
	}
	if err := e.ctl.Login(ctx, email, password); err != nil {
		logging.Debug("login failed", logging.Err(err))
		return errors.New(app.LoginMessage(err))
	}
	return nil
}
