package termui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/proofpoint/proofpoint/internal/events"
	"github.com/proofpoint/proofpoint/internal/nav"
	"github.com/proofpoint/proofpoint/internal/verify"
	"github.com/proofpoint/proofpoint/pkg/protocol"
)

// Renderer draws controller state as styled text. It implements the
// controller's Renderer and Presenter ports.
type Renderer struct {
	mu     sync.Mutex
	out    io.Writer
	lg     *lipgloss.Renderer
	styles Styles
	now    func() time.Time
}

// NewRenderer writes to out using the named theme.
func NewRenderer(out io.Writer, theme string) *Renderer {
	lg := lipgloss.NewRenderer(out)
	return &Renderer{
		out:    out,
		lg:     lg,
		styles: NewStyles(lg, ThemeByName(theme)),
		now:    time.Now,
	}
}

// SetTheme switches the color scheme.
func (r *Renderer) SetTheme(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.styles = NewStyles(r.lg, ThemeByName(name))
}

func (r *Renderer) println(a ...any) {
	fmt.Fprintln(r.out, a...)
}

func (r *Renderer) row(label, value string) {
	r.println(r.styles.Label.Render(label) + " " + r.styles.Value.Render(value))
}

// RenderPage prints the heading of the page just entered.
func (r *Renderer) RenderPage(t nav.Transition, canGoBack bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	title := r.styles.Header.Render("== " + PageTitle(string(t.To)) + " ==")
	if canGoBack {
		title += " " + r.styles.Muted.Render("(back available)")
	}
	r.println(title)
}

// RenderUser prints the greeting and dashboard link for the signed-in user.
func (r *Renderer) RenderUser(name string, role protocol.Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if name == "" {
		return
	}
	line := "Hello, " + name
	if entry, ok := role.MenuEntry(); ok {
		line += r.styles.Muted.Render(fmt.Sprintf("  (menu: %s -> %s)", entry.Label, entry.Page))
	}
	r.println(r.styles.Info.Render(line))
}

// RenderFileSelection prints the selected file, or the upload hint.
func (r *Renderer) RenderFileSelection(f *verify.FileHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f == nil {
		r.println(r.styles.Muted.Render("No file selected. Supports PDF, PNG, JPG, JPEG (Max 10MB)"))
		return
	}
	r.println(r.styles.Success.Render(f.Name))
	r.println("File selected and ready to verify")
	r.println(r.styles.Muted.Render("Size: " + f.DisplaySize()))
}

// RenderResult prints a verification result.
func (r *Renderer) RenderResult(res protocol.VerificationResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var b strings.Builder
	status := StatusLabel(res.Status)
	if PositiveStatus(status) {
		b.WriteString(r.styles.Success.Render(status))
	} else {
		b.WriteString(r.styles.Error.Render(status))
	}
	if res.RetrievedFromCache {
		b.WriteString("  " + r.styles.Muted.Render("(retrieved from cache)"))
	}
	b.WriteString("\n")

	score := fmt.Sprintf("%d / 100", res.TamperAnalysis.TamperScore)
	switch ScoreBand(res.TamperAnalysis.TamperScore) {
	case BandHigh:
		score = r.styles.Error.Render(score)
	case BandMedium:
		score = r.styles.Warning.Render(score)
	default:
		score = r.styles.Success.Render(score)
	}
	b.WriteString(r.styles.Label.Render("Tamper Score") + " " + score + "\n")

	summary := res.TamperAnalysis.AnalysisSummary
	if summary == "" {
		summary = "No analysis available"
	}
	b.WriteString(r.styles.Label.Render("Analysis") + " " + summary + "\n")

	if res.QRCodeData != nil && *res.QRCodeData != "" {
		b.WriteString(r.styles.Label.Render("QR Code") + " " + *res.QRCodeData + "\n")
	}
	if !res.ProcessingTimestamp.IsZero() {
		b.WriteString(r.styles.Label.Render("Processed") + " " + r.when(res.ProcessingTimestamp.Time) + "\n")
	}

	rows := DetailRows(res.ExtractedDetails)
	if len(rows) == 0 {
		b.WriteString(r.styles.Muted.Render("No structured details could be extracted from this document."))
	} else {
		for i, row := range rows {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(r.styles.Label.Render(row.Label) + " " + r.styles.Value.Render(row.Value))
		}
	}

	r.println(r.styles.Card.Render(b.String()))
}

func (r *Renderer) when(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05") + " (" + humanize.RelTime(t, r.now(), "ago", "from now") + ")"
}

// RenderHistory prints the filtered history. Each entry is numbered by its
// position in the full history.
func (r *Renderer) RenderHistory(entries []verify.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(entries) == 0 {
		r.println(r.styles.Muted.Render("No verification history found."))
		return
	}
	for _, e := range entries {
		res := e.Result
		status := StatusLabel(res.Status)
		statusStyle := r.styles.Error
		if PositiveStatus(status) {
			statusStyle = r.styles.Success
		}
		r.println(fmt.Sprintf("[%d] %s  %s", e.Index, r.styles.Value.Render(Headline(&res)), statusStyle.Render(status)))
		r.println(r.styles.Muted.Render(fmt.Sprintf("    Doc No: %s  Tamper Score: %d/100  Verified: %s",
			DocNumber(&res), res.TamperAnalysis.TamperScore, r.when(res.ProcessingTimestamp.Time))))
	}
}

// RenderDashboard prints dashboard figures for the role they belong to.
func (r *Renderer) RenderDashboard(d *protocol.DashboardData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch d.Role {
	case protocol.RoleAdmin:
		r.row("Total Verifications", humanize.Comma(int64(d.TotalVerifications)))
		r.row("High Risk Alerts", humanize.Comma(int64(d.HighRiskAlerts)))
		r.row("Support Tickets", humanize.Comma(int64(d.SupportTickets)))
	case protocol.RoleInstitution:
		name := d.InstitutionName
		if name == "" {
			name = "Institution"
		}
		r.row("Institution", name)
		r.row("Verifications Today", humanize.Comma(int64(d.VerificationsToday)))
		r.row("Total Records", humanize.Comma(int64(d.TotalRecordsInDB)))
	}
}

// ShowError prints an error message.
func (r *Renderer) ShowError(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if message == "" {
		message = "An unexpected error occurred."
	}
	r.println(r.styles.Error.Render("Error: ") + message)
}

// PrintEvent prints a notification.
func (r *Renderer) PrintEvent(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var style lipgloss.Style
	switch e.Level {
	case events.LevelSuccess:
		style = r.styles.Success
	case events.LevelError:
		style = r.styles.Error
	case events.LevelWarning:
		style = r.styles.Warning
	default:
		style = r.styles.Info
	}
	r.println(style.Render("* " + e.Message))
}

// Printf writes plain formatted text.
func (r *Renderer) Printf(format string, a ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, format, a...)
}
