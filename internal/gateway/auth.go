package gateway

import (
	"context"
	"net/http"

	"go-pos-terminal/internal/model"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Envelope
	User model.User `json:"user"`
}

// Login authenticates against the backend. The password travels in the JSON
// body as-is; transport security is the deployment's concern.
func (c *Client) Login(ctx context.Context, username, password string) (*model.User, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, &loginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.User, nil
}
