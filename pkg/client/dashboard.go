package client

import (
	"context"
	"net/http"

	"github.com/proofpoint/proofpoint/pkg/protocol"
)

// DashboardData fetches the dashboard figures for role.
func (c *Client) DashboardData(ctx context.Context, role protocol.Role) (*protocol.DashboardData, error) {
	path, ok := role.DashboardPath()
	if !ok {
		return nil, ErrNoDashboard
	}
	cl := call{op: "dashboard_data", method: http.MethodGet, path: path, auth: true, retry: true}
	resp, err := c.do(ctx, cl)
	if err != nil {
		return nil, err
	}

	var data protocol.DashboardData
	if err := decodeJSON(cl.op, resp, &data); err != nil {
		return nil, err
	}
	data.Role = role
	return &data, nil
}

// SubmitTicket files a support ticket and returns the server's confirmation.
func (c *Client) SubmitTicket(ctx context.Context, message string) (*protocol.TicketResponse, error) {
	cl, err := jsonCall("submit_ticket", http.MethodPost, "/submit_ticket",
		protocol.TicketRequest{Message: message}, true)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, cl)
	if err != nil {
		return nil, err
	}

	var result protocol.TicketResponse
	if err := decodeJSON(cl.op, resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
