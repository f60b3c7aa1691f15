package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/proofpoint/proofpoint/internal/app"
	"github.com/proofpoint/proofpoint/internal/nav"
	"github.com/proofpoint/proofpoint/internal/verify"
	"github.com/proofpoint/proofpoint/pkg/logging"
	"github.com/proofpoint/proofpoint/pkg/metrics"
)

var errQuit = errors.New("quit")

type shellCommand struct {
	usage   string
	help    string
	public  bool // available before login
	minArgs int
	run     func(ctx context.Context, args []string) error
}

type shell struct {
	e        *env
	commands map[string]shellCommand
}

func newShell(e *env) *shell {
	s := &shell{e: e}
	s.commands = map[string]shellCommand{
		"help":      {usage: "help", help: "List commands", public: true, run: s.help},
		"quit":      {usage: "quit", help: "Leave the shell", public: true, run: s.quit},
		"exit":      {usage: "exit", help: "Leave the shell", public: true, run: s.quit},
		"login":     {usage: "login [email]", help: "Sign in", public: true, run: s.login},
		"theme":     {usage: "theme", help: "Toggle light/dark theme", public: true, run: s.theme},
		"logout":    {usage: "logout", help: "Sign out", run: s.logout},
		"whoami":    {usage: "whoami", help: "Show the signed-in user", run: s.whoami},
		"pages":     {usage: "pages", help: "List pages", run: s.pages},
		"go":        {usage: "go <page>", help: "Open a page", minArgs: 1, run: s.goTo},
		"back":      {usage: "back", help: "Return to the previous page", run: s.back},
		"home":      {usage: "home", help: "Return to the landing page", run: s.home},
		"select":    {usage: "select <path>", help: "Choose a document to verify", minArgs: 1, run: s.selectFile},
		"clear":     {usage: "clear", help: "Drop the selected document", run: s.clearSelection},
		"verify":    {usage: "verify [path]", help: "Verify the selected document", run: s.verify},
		"another":   {usage: "another", help: "Verify another document", run: s.another},
		"last":      {usage: "last", help: "Show the last result", run: s.last},
		"history":   {usage: "history", help: "Show verification history", run: s.history},
		"search":    {usage: "search [term]", help: "Filter history by text", run: s.search},
		"filter":    {usage: "filter <status|all>", help: "Filter history by status", minArgs: 1, run: s.filter},
		"view":      {usage: "view <n>", help: "Show history entry n", minArgs: 1, run: s.view},
		"delete":    {usage: "delete <n>", help: "Delete history entry n", minArgs: 1, run: s.remove},
		"report":    {usage: "report", help: "Save the PDF report of the last result", run: s.report},
		"dashboard": {usage: "dashboard", help: "Open your dashboard", run: s.dashboard},
		"ticket":    {usage: "ticket <message>", help: "Send a support ticket", minArgs: 1, run: s.ticket},
	}
	return s
}

// run reads commands until quit or end of input.
func (s *shell) run(ctx context.Context) error {
	if addr := s.e.cfg.MetricsAddr; addr != "" {
		srv := &http.Server{Addr: addr, Handler: metrics.Handler()}
		go func() {
			logging.Info("metrics server listening", zap.String("addr", addr))
			if err := srv.ListenAndServe(); err != http.ErrServerClosed {
				logging.Error("metrics server error", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	if err := s.e.ctl.Restore(ctx); err != nil && !errors.Is(err, app.ErrNotLoggedIn) {
		logging.Debug("restore session", logging.Err(err))
	}
	s.e.flush()
	if !s.e.ctl.LoggedIn() {
		fmt.Fprintln(s.e.out, "Type 'login' to sign in, 'help' for commands.")
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := s.e.readLine(fmt.Sprintf("proofpoint:%s> ", s.e.ctl.CurrentPage()))
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.e.out)
				return nil
			}
			return err
		}
		err = s.exec(ctx, line)
		s.e.flush()
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			s.e.ui.ShowError(err.Error())
		}
	}
}

// exec runs one command line.
func (s *shell) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]
	cmd, ok := s.commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q; type 'help'", name)
	}
	if !cmd.public && !s.e.ctl.LoggedIn() {
		return errors.New("please log in first")
	}
	if len(args) < cmd.minArgs {
		return fmt.Errorf("usage: %s", cmd.usage)
	}
	return cmd.run(ctx, args)
}

func (s *shell) help(ctx context.Context, args []string) error {
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cmd := s.commands[name]
		s.e.ui.Printf("  %-22s %s\n", cmd.usage, cmd.help)
	}
	return nil
}

func (s *shell) quit(ctx context.Context, args []string) error {
	return errQuit
}

func (s *shell) login(ctx context.Context, args []string) error {
	email := ""
	if len(args) > 0 {
		email = args[0]
	}
	return s.e.login(ctx, email)
}

func (s *shell) logout(ctx context.Context, args []string) error {
	s.e.ctl.Logout(ctx)
	return nil
}

func (s *shell) whoami(ctx context.Context, args []string) error {
	s.e.ui.Printf("%s (%s) at %s\n", s.e.ctl.UserName(), s.e.ctl.Role(), s.e.client.BaseURL())
	return nil
}

func (s *shell) theme(ctx context.Context, args []string) error {
	next := s.e.ctl.ToggleTheme()
	s.e.ui.SetTheme(next)
	s.e.ui.Printf("Theme: %s\n", next)
	return nil
}

func (s *shell) pages(ctx context.Context, args []string) error {
	for _, p := range nav.Pages {
		if p == nav.Login {
			continue
		}
		s.e.ui.Printf("  %s\n", p)
	}
	return nil
}

func (s *shell) goTo(ctx context.Context, args []string) error {
	page, ok := nav.ParsePage(args[0])
	if !ok || page == nav.Login {
		return fmt.Errorf("unknown page %q; type 'pages'", args[0])
	}
	if page.IsDashboard() {
		if own, err := dashboardPage(s.e.ctl); err != nil || own != page {
			return fmt.Errorf("%s is not available for your role", page)
		}
	}
	s.e.ctl.GoTo(ctx, page)
	return nil
}

func (s *shell) back(ctx context.Context, args []string) error {
	if !s.e.ctl.Back(ctx) {
		s.e.ui.Printf("Nothing to go back to.\n")
	}
	return nil
}

func (s *shell) home(ctx context.Context, args []string) error {
	s.e.ctl.Home(ctx)
	return nil
}

func (s *shell) selectFile(ctx context.Context, args []string) error {
	if s.e.ctl.CurrentPage() != nav.Upload {
		s.e.ctl.GoTo(ctx, nav.Upload)
	}
	f, err := verify.OpenFile(strings.Join(args, " "))
	if err != nil {
		return err
	}
	// rejection is already shown
	s.e.ctl.SelectFile(f)
	return nil
}

func (s *shell) clearSelection(ctx context.Context, args []string) error {
	s.e.ctl.ClearSelection()
	return nil
}

func (s *shell) verify(ctx context.Context, args []string) error {
	if len(args) > 0 {
		if err := s.selectFile(ctx, args); err != nil {
			return err
		}
	}
	s.e.ctl.Verify(ctx)
	return nil
}

func (s *shell) another(ctx context.Context, args []string) error {
	s.e.ctl.VerifyAnother(ctx)
	return nil
}

func (s *shell) last(ctx context.Context, args []string) error {
	if !s.e.ctl.ViewLastResult(ctx) {
		s.e.ui.Printf("No document verified yet.\n")
	}
	return nil
}

func (s *shell) history(ctx context.Context, args []string) error {
	if s.e.ctl.CurrentPage() == nav.History {
		term, status := s.e.ctl.HistoryQuery()
		s.e.ctl.SetHistoryQuery(term, status)
		return nil
	}
	s.e.ctl.GoTo(ctx, nav.History)
	return nil
}

func (s *shell) search(ctx context.Context, args []string) error {
	_, status := s.e.ctl.HistoryQuery()
	s.e.ctl.SetHistoryQuery(strings.Join(args, " "), status)
	return nil
}

func (s *shell) filter(ctx context.Context, args []string) error {
	term, _ := s.e.ctl.HistoryQuery()
	s.e.ctl.SetHistoryQuery(term, strings.Join(args, " "))
	return nil
}

func historyIndex(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid entry number %q", arg)
	}
	return n, nil
}

func (s *shell) view(ctx context.Context, args []string) error {
	n, err := historyIndex(args[0])
	if err != nil {
		return err
	}
	if !s.e.ctl.ViewHistoryEntry(ctx, n) {
		return fmt.Errorf("no history entry %d", n)
	}
	return nil
}

func (s *shell) remove(ctx context.Context, args []string) error {
	n, err := historyIndex(args[0])
	if err != nil {
		return err
	}
	s.e.ctl.DeleteHistoryEntry(n)
	return nil
}

func (s *shell) report(ctx context.Context, args []string) error {
	s.e.ctl.DownloadReport(ctx)
	return nil
}

func (s *shell) dashboard(ctx context.Context, args []string) error {
	page, err := dashboardPage(s.e.ctl)
	if err != nil {
		return err
	}
	s.e.ctl.GoTo(ctx, page)
	return nil
}

func (s *shell) ticket(ctx context.Context, args []string) error {
	s.e.ctl.SubmitTicket(ctx, strings.Join(args, " "))
	return nil
}
