package client

import (
	"context"
	"net/http"

	"github.com/proofpoint/proofpoint/pkg/logging"
	"github.com/proofpoint/proofpoint/pkg/protocol"
)

// Login authenticates with email/password. It does not store the token; the
// caller owns the credential store. A 401 here means bad credentials and
// does not fire the OnUnauthorized hook.
func (c *Client) Login(ctx context.Context, email, password string) (*protocol.LoginResponse, error) {
	cl, err := jsonCall("login", http.MethodPost, "/login",
		protocol.LoginRequest{Email: email, Password: password}, false)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, cl)
	if err != nil {
		return nil, err
	}

	var result protocol.LoginResponse
	if err := decodeJSON(cl.op, resp, &result); err != nil {
		return nil, err
	}
	logging.Info("logged in", logging.String("user", result.UserName), logging.String("role", result.UserRole))
	return &result, nil
}

// CheckAuth validates the saved token with the server.
func (c *Client) CheckAuth(ctx context.Context) (*protocol.AuthCheckResponse, error) {
	cl := call{op: "check_auth", method: http.MethodPost, path: "/check_auth", auth: true, retry: true}
	resp, err := c.do(ctx, cl)
	if err != nil {
		return nil, err
	}

	var result protocol.AuthCheckResponse
	if err := decodeJSON(cl.op, resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
