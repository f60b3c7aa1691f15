package app

import (
	"context"

	"github.com/proofpoint/proofpoint/internal/events"
	"github.com/proofpoint/proofpoint/internal/nav"
	"github.com/proofpoint/proofpoint/internal/verify"
	"github.com/proofpoint/proofpoint/pkg/client"
	"github.com/proofpoint/proofpoint/pkg/protocol"
)

// Gateway is the remote API the controller drives. *client.Client
// implements it.
type Gateway interface {
	verify.Verifier
	Login(ctx context.Context, email, password string) (*protocol.LoginResponse, error)
	CheckAuth(ctx context.Context) (*protocol.AuthCheckResponse, error)
	DashboardData(ctx context.Context, role protocol.Role) (*protocol.DashboardData, error)
	SubmitTicket(ctx context.Context, message string) (*protocol.TicketResponse, error)
	GenerateReport(ctx context.Context, result *protocol.VerificationResult) (*client.Report, error)
	OnUnauthorized(fn func(ctx context.Context))
}

// Notifier shows transient notifications.
type Notifier interface {
	Notify(level events.Level, message string)
}

// Presenter shows an error that needs the user's attention.
type Presenter interface {
	ShowError(message string)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Renderer draws controller state.
type Renderer interface {
	RenderPage(t nav.Transition, canGoBack bool)
	RenderUser(name string, role protocol.Role)
	RenderFileSelection(f *verify.FileHandle)
	RenderResult(r protocol.VerificationResult)
	RenderHistory(entries []verify.Entry)
	RenderDashboard(d *protocol.DashboardData)
}

type nopNotifier struct{}

func (nopNotifier) Notify(events.Level, string) {}

type nopPresenter struct{}

func (nopPresenter) ShowError(string) {}

type nopConfirmer struct{}

func (nopConfirmer) Confirm(string) bool { return false }

type nopRenderer struct{}

func (nopRenderer) RenderPage(nav.Transition, bool) {}
func (nopRenderer) RenderUser(string, protocol.Role) {}
func (nopRenderer) RenderFileSelection(*verify.FileHandle) {}
func (nopRenderer) RenderResult(protocol.VerificationResult) {}
func (nopRenderer) RenderHistory([]verify.Entry) {}
func (nopRenderer) RenderDashboard(*protocol.DashboardData) {}
