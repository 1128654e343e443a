package marketplace

import (
	"context"
	"net/http"
)

type authUserResponse struct {
	User User `json:"user"`
}

// Me runs the identity check against the upstream session cookie. It is
// the bootstrap call: a 2xx with a user payload means the cookie in the
// jar still names an authenticated account.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var resp authUserResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for an upstream session cookie. The
// cookie lands in the client's jar; the decoded user is returned.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var resp authUserResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Register creates a new account. It does not log the account in.
func (c *Client) Register(ctx context.Context, params RegisterParams) (*User, error) {
	var created User
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, params, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Logout asks the backend to invalidate the session cookie.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}
