package auth

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	domainErrors "github.com/thomas-vilte/deckreport/internal/errors"
	"github.com/thomas-vilte/deckreport/internal/logger"
	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"
)

// DefaultClientID is the GitHub App that reports are submitted through.
const DefaultClientID = "Iv23liOILKnctgTZ9i33"

// TokenProvider hands out an access token that is valid for at least the refresh window, or ""
// when the user has to log in again.
type TokenProvider interface {
	EnsureFreshToken(ctx context.Context) (string, error)
}

// NewOAuthConfig builds the public-client config for the device flow and refresh grant. A zero
// endpoint selects github.com.
func NewOAuthConfig(clientID string, endpoint oauth2.Endpoint) *oauth2.Config {
	if clientID == "" {
		clientID = DefaultClientID
	}
	if endpoint.TokenURL == "" {
		endpoint = githuboauth.Endpoint
	}
	endpoint.AuthStyle = oauth2.AuthStyleInParams
	return &oauth2.Config{
		ClientID: clientID,
		Endpoint: endpoint,
	}
}

type Refresher struct {
	tokens *TokenStore
	cfg    *oauth2.Config
	client *http.Client
	now    func() time.Time
}

var _ TokenProvider = (*Refresher)(nil)

type RefresherOption func(*Refresher)

func WithRefreshClock(now func() time.Time) RefresherOption {
	return func(r *Refresher) {
		r.now = now
	}
}

// WithHTTPClient sets the client used for token endpoint calls.
func WithHTTPClient(c *http.Client) RefresherOption {
	return func(r *Refresher) {
		r.client = c
	}
}

func NewRefresher(tokens *TokenStore, cfg *oauth2.Config, opts ...RefresherOption) *Refresher {
	r := &Refresher{tokens: tokens, cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// EnsureFreshToken returns the stored access token, refreshing it first when it expires within a
// minute. Without a usable refresh token the stored tokens are cleared and "" is returned.
func (r *Refresher) EnsureFreshToken(ctx context.Context) (string, error) {
	t, err := r.tokens.Load(ctx)
	if err != nil {
		return "", err
	}
	if t == nil || t.AccessToken == "" {
		return "", nil
	}
	now := r.now()
	if !t.Expired(now) {
		return t.AccessToken, nil
	}

	refreshGone := t.RefreshExpiresAt != nil && now.UnixMilli() >= *t.RefreshExpiresAt
	if t.RefreshToken == "" || refreshGone {
		logger.Info(ctx, "github token expired and cannot be refreshed")
		if err := r.tokens.Clear(ctx); err != nil {
			return "", err
		}
		return "", nil
	}

	logger.Debug(ctx, "refreshing github token")
	src := r.cfg.TokenSource(r.httpContext(ctx), &oauth2.Token{RefreshToken: t.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		return "", domainErrors.ErrTokenRefresh.WithError(err)
	}

	if err := r.tokens.Save(ctx, bundleFromToken(tok, r.now())); err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

func (r *Refresher) httpContext(ctx context.Context) context.Context {
	if r.client == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, r.client)
}

// bundleFromToken recovers the lifetimes GitHub sent. expires_in is read from the response when
// present; otherwise it is measured from now against the library's absolute expiry.
func bundleFromToken(tok *oauth2.Token, now time.Time) TokenBundle {
	b := TokenBundle{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
	}
	if n, ok := extraSeconds(tok, "expires_in"); ok {
		b.ExpiresIn = n
	} else if !tok.Expiry.IsZero() {
		b.ExpiresIn = int64(math.Round(tok.Expiry.Sub(now).Seconds()))
	}
	if n, ok := extraSeconds(tok, "refresh_token_expires_in"); ok {
		b.RefreshTokenExpiresIn = n
	}
	return b
}

func extraSeconds(tok *oauth2.Token, key string) (int64, bool) {
	switch v := tok.Extra(key).(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
