// Package app is the client controller. It owns the navigation stack and the
// verification session, drives the gateway, and reports to a UI through
// small interfaces.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/proofpoint/proofpoint/internal/events"
	"github.com/proofpoint/proofpoint/internal/nav"
	"github.com/proofpoint/proofpoint/internal/report"
	"github.com/proofpoint/proofpoint/internal/verify"
	"github.com/proofpoint/proofpoint/pkg/client"
	"github.com/proofpoint/proofpoint/pkg/credentials"
	"github.com/proofpoint/proofpoint/pkg/logging"
	"github.com/proofpoint/proofpoint/pkg/protocol"
)

// Messages shown to the user.
const (
	MsgNoFile            = "Please select a file to verify."
	MsgVerifyFailed      = "Verification failed"
	MsgVerifyError       = "An error occurred during verification. Please try again."
	MsgVerified          = "Document verification completed successfully!"
	MsgSessionExpired    = "Session expired. Please log in again."
	MsgLoggedOut         = "You have been logged out successfully"
	MsgLoginFailed       = "Login failed"
	MsgDashboardFailed   = "Could not load dashboard data. Please refresh the page."
	MsgTicketTooShort    = "Please provide a more detailed message."
	MsgTicketFailed      = "Failed to submit ticket."
	MsgTicketSent        = "Ticket submitted successfully"
	MsgNoResult          = "No result to download."
	MsgReportFailed      = "Failed to generate PDF report."
	MsgConfirmDelete     = "Are you sure you want to delete this verification record?"
	MsgRecordDeleted     = "Verification record deleted"
	MsgNoReportSink      = "Report downloads are not configured."
	minTicketMessageSize = 10
)

var (
	// ErrNotLoggedIn is returned by Restore when no token is saved.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrTicketTooShort is returned for ticket messages under 10 characters.
	ErrTicketTooShort = errors.New("ticket message too short")
	// ErrNoResult is returned by DownloadReport when nothing has been verified.
	ErrNoResult = errors.New("no result to download")
	// ErrNoReportSink is returned by DownloadReport when reports have nowhere to go.
	ErrNoReportSink = errors.New("no report sink configured")
)

// Theme names.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Options configures a Controller. Nil collaborators are replaced with
// no-ops; Gateway and Store are required.
type Options struct {
	Gateway   Gateway
	Store     credentials.Store
	Notifier  Notifier
	Presenter Presenter
	Confirmer Confirmer
	Renderer  Renderer
	Reports   report.Sink
}

// Controller coordinates navigation, the verification session and the
// remote gateway.
type Controller struct {
	gw        Gateway
	store     credentials.Store
	notifier  Notifier
	presenter Presenter
	confirmer Confirmer
	renderer  Renderer
	reports   report.Sink

	nav     *nav.Stack
	session *verify.Session

	mu           sync.Mutex
	searchTerm   string
	statusFilter string
}

// New creates a controller on the login page and registers its forced
// logout with the gateway.
func New(opts Options) *Controller {
	c := &Controller{
		gw:           opts.Gateway,
		store:        opts.Store,
		notifier:     opts.Notifier,
		presenter:    opts.Presenter,
		confirmer:    opts.Confirmer,
		renderer:     opts.Renderer,
		reports:      opts.Reports,
		nav:          nav.New(nav.Login),
		session:      verify.NewSession(),
		statusFilter: verify.StatusAll,
	}
	if c.notifier == nil {
		c.notifier = nopNotifier{}
	}
	if c.presenter == nil {
		c.presenter = nopPresenter{}
	}
	if c.confirmer == nil {
		c.confirmer = nopConfirmer{}
	}
	if c.renderer == nil {
		c.renderer = nopRenderer{}
	}
	c.gw.OnUnauthorized(c.forceLogout)
	return c
}

// Session returns the verification session.
func (c *Controller) Session() *verify.Session {
	return c.session
}

// CurrentPage returns the page on display.
func (c *Controller) CurrentPage() nav.Page {
	return c.nav.Current()
}

// CanGoBack reports whether the back control is shown.
func (c *Controller) CanGoBack() bool {
	return c.nav.CanGoBack()
}

// GoTo navigates to page and runs its initialization. The error is the
// page's data load failure, which has already been shown.
func (c *Controller) GoTo(ctx context.Context, page nav.Page) error {
	return c.enter(ctx, c.nav.GoTo(page, false))
}

// Back returns to the previous page. It reports false when there is none.
func (c *Controller) Back(ctx context.Context) bool {
	t, ok := c.nav.Back()
	if !ok {
		return false
	}
	c.enter(ctx, t)
	return true
}

// Home clears the navigation history and shows the landing page.
func (c *Controller) Home(ctx context.Context) {
	c.enter(ctx, c.nav.Reset(nav.Landing))
}

func (c *Controller) enter(ctx context.Context, t nav.Transition) error {
	logging.Debug("navigate",
		logging.String("from", string(t.From)),
		logging.String("to", string(t.To)),
		logging.Bool("back", t.Back))
	c.renderer.RenderPage(t, c.nav.CanGoBack())

	switch {
	case t.To == nav.Upload:
		c.renderer.RenderFileSelection(c.session.Selected())
	case t.To == nav.History:
		c.renderer.RenderHistory(c.FilteredHistory())
	case t.To.IsDashboard():
		_, err := c.LoadDashboard(ctx)
		return err
	}
	return nil
}

// Role returns the signed-in user's role.
func (c *Controller) Role() protocol.Role {
	role, _ := c.store.Get(credentials.KeyUserRole)
	return protocol.ParseRole(role)
}

// UserName returns the signed-in user's name.
func (c *Controller) UserName() string {
	name, _ := c.store.Get(credentials.KeyUserName)
	return name
}

// LoggedIn reports whether a token is saved.
func (c *Controller) LoggedIn() bool {
	token, _ := c.store.Get(credentials.KeyToken)
	return token != ""
}

// MenuEntry returns the dashboard link for the signed-in role.
func (c *Controller) MenuEntry() (protocol.MenuEntry, bool) {
	return c.Role().MenuEntry()
}

// Restore validates a saved token with the server. On success the user lands
// on the landing page; on any failure the session is logged out.
func (c *Controller) Restore(ctx context.Context) error {
	if !c.LoggedIn() {
		c.enter(ctx, c.nav.Reset(nav.Login))
		return ErrNotLoggedIn
	}

	resp, err := c.gw.CheckAuth(ctx)
	if err != nil {
		logging.Warn("token validation failed", logging.Err(err))
		if !errors.Is(err, client.ErrSessionExpired) {
			c.Logout(ctx)
		}
		return err
	}

	if err := c.saveUser(resp.UserName, resp.UserRole); err != nil {
		logging.Warn("save user", logging.Err(err))
	}
	c.renderer.RenderUser(resp.UserName, protocol.ParseRole(resp.UserRole))
	c.GoTo(ctx, nav.Landing)
	return nil
}

func (c *Controller) saveUser(name, role string) error {
	if err := c.store.Set(credentials.KeyUserName, name); err != nil {
		return err
	}
	return c.store.Set(credentials.KeyUserRole, role)
}

// Login authenticates and stores the token, name and role.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	resp, err := c.gw.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := credentials.Save(c.store, credentials.Record{
		Token:    resp.Token,
		UserName: resp.UserName,
		UserRole: resp.UserRole,
	}); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}

	c.renderer.RenderUser(resp.UserName, protocol.ParseRole(resp.UserRole))
	c.GoTo(ctx, nav.Landing)
	return nil
}

// LoginMessage returns the text to show for a failed login.
func LoginMessage(err error) string {
	if msg, ok := client.ServerMessage(err); ok {
		return msg
	}
	return MsgLoginFailed
}

// Logout clears stored credentials and preferences, resets the session and
// navigation, and shows the login page.
func (c *Controller) Logout(ctx context.Context) {
	c.clear(ctx)
	c.notifier.Notify(events.LevelInfo, MsgLoggedOut)
}

func (c *Controller) forceLogout(ctx context.Context) {
	c.notifier.Notify(events.LevelError, MsgSessionExpired)
	c.Logout(ctx)
}

func (c *Controller) clear(ctx context.Context) {
	if err := c.store.Clear(); err != nil {
		logging.Error("clear credentials", logging.Err(err))
	}
	c.session.Reset()
	c.mu.Lock()
	c.searchTerm, c.statusFilter = "", verify.StatusAll
	c.mu.Unlock()
	c.renderer.RenderUser("", protocol.RoleOther)
	c.enter(ctx, c.nav.Reset(nav.Login))
}

// SelectFile makes f the file to verify. A rejected file is reported and the
// previous selection kept.
func (c *Controller) SelectFile(f *verify.FileHandle) error {
	if err := c.session.SelectFile(f); err != nil {
		c.presenter.ShowError(Message(err, MsgNoFile))
		return err
	}
	c.renderer.RenderFileSelection(f)
	c.notifier.Notify(events.LevelSuccess, fmt.Sprintf("File %q selected successfully!", f.Name))
	return nil
}

// ClearSelection drops the selected file.
func (c *Controller) ClearSelection() {
	c.session.ClearSelection()
	c.renderer.RenderFileSelection(nil)
}

// Verify submits the selected file. On success the result is shown on the
// results page.
func (c *Controller) Verify(ctx context.Context) (protocol.VerificationResult, error) {
	res, err := c.session.Submit(ctx, c.gw)
	switch {
	case err == nil:
	case errors.Is(err, verify.ErrNoFile):
		c.presenter.ShowError(MsgNoFile)
		return res, err
	case errors.Is(err, verify.ErrBusy), errors.Is(err, verify.ErrDiscarded):
		return res, err
	default:
		c.presenter.ShowError(verificationMessage(err))
		return res, err
	}

	c.renderer.RenderResult(res)
	c.GoTo(ctx, nav.Results)
	c.notifier.Notify(events.LevelSuccess, MsgVerified)
	return res, nil
}

func verificationMessage(err error) string {
	if ae, ok := client.AsAPIError(err); ok {
		if ae.Message != "" {
			return ae.Message
		}
		return MsgVerifyFailed
	}
	return Message(err, MsgVerifyError)
}

// VerifyAnother drops the selected file and returns to the upload page.
func (c *Controller) VerifyAnother(ctx context.Context) {
	c.session.ClearSelection()
	c.GoTo(ctx, nav.Upload)
}

// ViewLastResult shows the last result, if there is one.
func (c *Controller) ViewLastResult(ctx context.Context) bool {
	last, ok := c.session.Last()
	if !ok {
		return false
	}
	c.renderer.RenderResult(last)
	c.GoTo(ctx, nav.Results)
	return true
}

// ViewHistoryEntry shows history entry index on the results page. Out of
// range does nothing.
func (c *Controller) ViewHistoryEntry(ctx context.Context, index int) bool {
	r, ok := c.session.View(index)
	if !ok {
		return false
	}
	c.renderer.RenderResult(r)
	c.GoTo(ctx, nav.Results)
	return true
}

// DeleteHistoryEntry removes history entry index after confirmation.
func (c *Controller) DeleteHistoryEntry(index int) bool {
	ok := c.session.Delete(index, func() bool {
		return c.confirmer.Confirm(MsgConfirmDelete)
	})
	if !ok {
		return false
	}
	c.renderer.RenderHistory(c.FilteredHistory())
	c.notifier.Notify(events.LevelSuccess, MsgRecordDeleted)
	return true
}

// SetHistoryQuery sets the history search term and status filter and
// re-renders the list.
func (c *Controller) SetHistoryQuery(term, status string) {
	if status == "" {
		status = verify.StatusAll
	}
	c.mu.Lock()
	c.searchTerm, c.statusFilter = term, status
	c.mu.Unlock()
	c.renderer.RenderHistory(c.FilteredHistory())
}

// HistoryQuery returns the current search term and status filter.
func (c *Controller) HistoryQuery() (term, status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searchTerm, c.statusFilter
}

// FilteredHistory returns the history entries matching the current query.
func (c *Controller) FilteredHistory() []verify.Entry {
	term, status := c.HistoryQuery()
	return verify.FilterIndexed(c.session.History(), term, status)
}

// LoadDashboard fetches and renders the dashboard for the signed-in role.
// Roles without a dashboard get (nil, nil).
func (c *Controller) LoadDashboard(ctx context.Context) (*protocol.DashboardData, error) {
	role := c.Role()
	if _, ok := role.DashboardPath(); !ok {
		return nil, nil
	}
	data, err := c.gw.DashboardData(ctx, role)
	if err != nil {
		logging.Error("dashboard data loading failed", logging.String("role", role.String()), logging.Err(err))
		c.presenter.ShowError(MsgDashboardFailed)
		return nil, err
	}
	c.renderer.RenderDashboard(data)
	return data, nil
}

// SubmitTicket sends a support message. Messages shorter than 10 characters
// after trimming are rejected locally.
func (c *Controller) SubmitTicket(ctx context.Context, message string) error {
	if len(strings.TrimSpace(message)) < minTicketMessageSize {
		c.presenter.ShowError(MsgTicketTooShort)
		return ErrTicketTooShort
	}
	resp, err := c.gw.SubmitTicket(ctx, message)
	if err != nil {
		if errors.Is(err, client.ErrSessionExpired) {
			c.presenter.ShowError(Message(err, MsgTicketFailed))
		} else {
			c.presenter.ShowError(MsgTicketFailed)
		}
		return err
	}
	msg := resp.Message
	if msg == "" {
		msg = MsgTicketSent
	}
	c.notifier.Notify(events.LevelSuccess, msg)
	return nil
}

// DownloadReport generates a PDF for the last result and writes it to the
// report sink. It returns where the report went.
func (c *Controller) DownloadReport(ctx context.Context) (string, error) {
	last, ok := c.session.Last()
	if !ok {
		c.presenter.ShowError(MsgNoResult)
		return "", ErrNoResult
	}
	if c.reports == nil {
		c.presenter.ShowError(MsgNoReportSink)
		return "", ErrNoReportSink
	}

	rep, err := c.gw.GenerateReport(ctx, &last)
	if err != nil {
		if errors.Is(err, client.ErrSessionExpired) {
			c.presenter.ShowError(Message(err, MsgReportFailed))
		} else {
			c.presenter.ShowError(MsgReportFailed)
		}
		return "", err
	}

	loc, err := c.reports.Save(ctx, report.FileName(&last), rep.Data, rep.ContentType)
	if err != nil {
		logging.Error("save report", logging.String("sink", c.reports.Type()), logging.Err(err))
		c.presenter.ShowError(MsgReportFailed)
		return "", err
	}
	c.notifier.Notify(events.LevelSuccess, "Report saved to "+loc)
	return loc, nil
}

// Theme returns the saved theme, light by default.
func (c *Controller) Theme() string {
	if t, _ := c.store.Get(credentials.KeyTheme); t == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// ToggleTheme switches between light and dark and saves the choice.
func (c *Controller) ToggleTheme() string {
	next := ThemeDark
	if c.Theme() == ThemeDark {
		next = ThemeLight
	}
	if err := c.store.Set(credentials.KeyTheme, next); err != nil {
		logging.Warn("save theme", logging.Err(err))
	}
	return next
}

// Message returns the user-facing text for err: the validation message, the
// server's own message, "Session expired", or fallback.
func Message(err error, fallback string) string {
	var ve *verify.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Error()
	case errors.Is(err, client.ErrSessionExpired):
		return "Session expired"
	}
	if msg, ok := client.ServerMessage(err); ok {
		return msg
	}
	return fallback
}
