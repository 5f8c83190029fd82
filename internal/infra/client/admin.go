package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/clubbook/members-book-go/internal/domain"
)

type approvalListResponse struct {
	Requests []domain.ApprovalRequest `json:"requests"`
}

type approvalActionResponse struct {
	Request *domain.ApprovalRequest `json:"request"`
}

func (c *APIClient) CreateApproval(ctx context.Context, req *domain.ApprovalRequest) error {
	var out approvalActionResponse
	if err := c.do(ctx, "CreateApproval", http.MethodPost, "/admin/approvals", req, &out); err != nil {
		return err
	}
	if out.Request != nil {
		*req = *out.Request
	}
	return nil
}

func (c *APIClient) GetApproval(ctx context.Context, id string) (*domain.ApprovalRequest, error) {
	var out approvalActionResponse
	if err := c.do(ctx, "GetApproval", http.MethodGet, "/admin/approvals/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	if out.Request == nil {
		return nil, &domain.ErrNotFound{Resource: "approval request", ID: id}
	}
	return out.Request, nil
}

// ListApprovals returns the review queue. An empty status fetches all
// requests; pending maps to the dedicated backend route.
func (c *APIClient) ListApprovals(ctx context.Context, status domain.ApprovalStatus) ([]domain.ApprovalRequest, error) {
	path := "/admin/approvals"
	if status == domain.ApprovalPending {
		path = "/admin/approvals/pending"
	} else if status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}
	var out approvalListResponse
	if err := c.do(ctx, "ListApprovals", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Requests, nil
}

func (c *APIClient) DecideApproval(ctx context.Context, id string, decision domain.ApprovalStatus, reviewerID, comments string) (*domain.ApprovalRequest, error) {
	action := "approve"
	if decision == domain.ApprovalRejected {
		action = "reject"
	}
	body := map[string]string{"comments": comments}
	var out approvalActionResponse
	path := "/admin/approvals/" + url.PathEscape(id) + "/" + action
	if err := c.do(ctx, "DecideApproval", http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	if out.Request == nil {
		return nil, &domain.ErrNotFound{Resource: "approval request", ID: id}
	}
	return out.Request, nil
}

func (c *APIClient) ListUsers(ctx context.Context) ([]domain.AdminUser, error) {
	var users []domain.AdminUser
	if err := c.do(ctx, "ListUsers", http.MethodGet, "/admin/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *APIClient) UpdateUserStatus(ctx context.Context, id string, status domain.UserStatus) error {
	body := map[string]string{"status": string(status)}
	return c.do(ctx, "UpdateUserStatus", http.MethodPatch, "/admin/users/"+url.PathEscape(id)+"/status", body, nil)
}

func (c *APIClient) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, "DeleteUser", http.MethodDelete, "/admin/users/"+url.PathEscape(id), nil, nil)
}

func (c *APIClient) SystemMetrics(ctx context.Context) ([]domain.SystemMetric, error) {
	var metrics []domain.SystemMetric
	if err := c.do(ctx, "SystemMetrics", http.MethodGet, "/admin/metrics", nil, &metrics); err != nil {
		return nil, err
	}
	return metrics, nil
}
