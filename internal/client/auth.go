package client

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/amishk599/jobfit/internal/model"
)

// AuthSession is the bearer token and its expiry. It lives only as long as
// the process. A zero ExpiresAt means the token carries no exp claim.
type AuthSession struct {
	Token     string
	ExpiresAt time.Time
}

func (a AuthSession) expired(now time.Time) bool {
	if a.Token == "" {
		return true
	}
	return !a.ExpiresAt.IsZero() && now.After(a.ExpiresAt)
}

// tokenExpiry reads exp without verifying the signature; the server is the
// only party that checks it. ok is false if the token cannot be decoded.
func tokenExpiry(token string) (exp time.Time, ok bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, true
	}
	return claims.ExpiresAt.Time, true
}

type authRequest struct {
	ClientSecret string `json:"client_secret"`
}

type authResponse struct {
	Token string `json:"token" validate:"required"`
}

// ensureToken returns a live bearer token, authenticating if needed. A token
// whose claims cannot be decoded is used once and then treated as expired.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.auth.expired(c.now()) {
		return c.auth.Token, nil
	}

	var resp authResponse
	err := c.post(ctx, "/authenticate", "", authRequest{ClientSecret: c.clientSecret}, &resp)
	if err == nil {
		err = c.validate.Struct(&resp)
	}
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		var httpErr *model.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusTooManyRequests {
			return "", model.AuthenticationError(model.RateLimitMessage, err)
		}
		return "", model.AuthenticationError("Failed to authenticate with the server.", err)
	}

	exp, ok := tokenExpiry(resp.Token)
	if !ok {
		c.logger.Warn("could not decode auth token; it will not be reused")
		c.auth = AuthSession{}
		return resp.Token, nil
	}
	c.auth = AuthSession{Token: resp.Token, ExpiresAt: exp}
	c.logger.Debug("authenticated", "expires_at", exp)
	return resp.Token, nil
}
