package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"callcenter-go/internal/types"
)

// RequestOTP asks the backend to send a one-time code to phone.
func (c *Client) RequestOTP(ctx context.Context, phone string) error {
	return c.doJSON(ctx, request{
		method: http.MethodPost,
		path:   "/api/request-otp/",
		body:   map[string]string{"phone": phone},
		public: true,
	}, nil)
}

// VerifyOTP exchanges the code for a token and stores the new session.
func (c *Client) VerifyOTP(ctx context.Context, phone, code string) (types.Profile, error) {
	var resp types.VerifyOTPResponse
	err := c.doJSON(ctx, request{
		method: http.MethodPost,
		path:   "/api/verify-otp/",
		body:   map[string]string{"phone": phone, "otp": code},
		public: true,
	}, &resp)
	if err != nil {
		return types.Profile{}, err
	}
	if resp.Token == "" {
		return types.Profile{}, fmt.Errorf("%w: verify-otp returned no token", ErrMalformed)
	}
	profile := resp.Profile()
	if err := c.store.Save(resp.Token, profile); err != nil {
		return types.Profile{}, fmt.Errorf("save session: %w", err)
	}
	c.log.WithField("user_id", profile.UserID).Info("signed in")
	return profile, nil
}

// Logout forgets the local session. The backend is not contacted.
func (c *Client) Logout() error {
	return c.store.Clear()
}
