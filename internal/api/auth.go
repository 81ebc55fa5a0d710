package api

import (
	"context"
	"time"

	"github.com/kvasir-media/clipstream/internal/model"
)

type authResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"_id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

func (r *authResponse) session() *model.Session {
	return &model.Session{
		UserID:    r.User.ID,
		Name:      r.User.Name,
		Email:     r.User.Email,
		Token:     r.Token,
		CreatedAt: time.Now(),
	}
}

// Login authenticates with the platform and returns the new session.
func (c *Client) Login(ctx context.Context, email, password string) (*model.Session, error) {
	payload := map[string]string{"email": email, "password": password}
	var out authResponse
	if err := c.postJSON(ctx, "/api/auth/login", payload, &out); err != nil {
		return nil, err
	}
	return out.session(), nil
}

// Register creates an account and returns the new session.
func (c *Client) Register(ctx context.Context, name, email, password string) (*model.Session, error) {
	payload := map[string]string{"name": name, "email": email, "password": password}
	var out authResponse
	if err := c.postJSON(ctx, "/api/auth/register", payload, &out); err != nil {
		return nil, err
	}
	return out.session(), nil
}
