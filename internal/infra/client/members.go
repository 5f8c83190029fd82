package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/clubbook/members-book-go/internal/domain"
)

// ListMembers fetches the full directory. Search and hierarchy
// filtering happen locally, so no query parameters are sent.
func (c *APIClient) ListMembers(ctx context.Context) ([]domain.Member, error) {
	var members []domain.Member
	if err := c.do(ctx, "ListMembers", http.MethodGet, "/members", nil, &members); err != nil {
		return nil, err
	}
	return members, nil
}

func (c *APIClient) GetMember(ctx context.Context, id string) (*domain.Member, error) {
	var member domain.Member
	if err := c.do(ctx, "GetMember", http.MethodGet, "/members/"+url.PathEscape(id), nil, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

func (c *APIClient) ConnectMember(ctx context.Context, id string) error {
	return c.do(ctx, "ConnectMember", http.MethodPost, "/members/"+url.PathEscape(id)+"/connect", nil, nil)
}

func (c *APIClient) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	var p domain.Profile
	if err := c.do(ctx, "GetProfile", http.MethodGet, "/members/"+url.PathEscape(userID)+"/profile", nil, &p); err != nil {
		return nil, err
	}
	return p, nil
}

func (c *APIClient) ApplyProfileChanges(ctx context.Context, userID string, changes domain.Profile) error {
	return c.do(ctx, "ApplyProfileChanges", http.MethodPut, "/members/"+url.PathEscape(userID)+"/profile", changes, nil)
}
