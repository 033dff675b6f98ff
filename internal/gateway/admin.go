package gateway

import (
	"context"
	"net/http"

	"go-pos-terminal/internal/model"
)

type userListResponse struct {
	Envelope
	Users []model.User `json:"users"`
}

type auditListResponse struct {
	Envelope
	Entries []model.AuditEntry `json:"entries"`
}

type backupResponse struct {
	Envelope
	File string `json:"file"`
}

// CreateUserRequest is the admin user creation form.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=admin user cashier"`
}

// ListUsers returns all backend accounts (admin view).
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var resp userListResponse
	if err := c.do(ctx, http.MethodGet, "/api/admin/users", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// CreateUser registers a new backend account.
func (c *Client) CreateUser(ctx context.Context, req *CreateUserRequest) error {
	return c.do(ctx, http.MethodPost, "/api/admin/users", nil, req, nil)
}

// AuditLogs returns recent audit entries.
func (c *Client) AuditLogs(ctx context.Context) ([]model.AuditEntry, error) {
	var resp auditListResponse
	if err := c.do(ctx, http.MethodGet, "/api/admin/audit", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

// TriggerBackup asks the backend to snapshot itself; returns the backup file
// name it reports.
func (c *Client) TriggerBackup(ctx context.Context) (string, error) {
	var resp backupResponse
	if err := c.do(ctx, http.MethodPost, "/api/admin/backup", nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.File, nil
}
