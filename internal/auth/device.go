package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainErrors "github.com/thomas-vilte/deckreport/internal/errors"
	"github.com/thomas-vilte/deckreport/internal/httpclient"
	"github.com/thomas-vilte/deckreport/internal/logger"
	"golang.org/x/oauth2"
)

const (
	deviceGrantType = "urn:ietf:params:oauth:grant-type:device_code"

	defaultPollInterval = 5 * time.Second
	slowDownStep        = 5 * time.Second
)

// Device flow error codes returned by the token endpoint.
const (
	errAuthorizationPending = "authorization_pending"
	errSlowDown             = "slow_down"
	errExpiredToken         = "expired_token"
	errAccessDenied         = "access_denied"
)

// Sleeper waits for d or until ctx is done, whichever comes first.
type Sleeper func(ctx context.Context, d time.Duration) error

func contextSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// DeviceCode is what the user needs to approve the login on another device.
type DeviceCode struct {
	DeviceCode      string
	UserCode        string
	VerificationURI string
	Interval        time.Duration
	Expiry          time.Time
}

type pollResponse struct {
	TokenBundle
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

type DeviceFlow struct {
	cfg    *oauth2.Config
	client httpclient.HTTPClient
	sleep  Sleeper
	tokens *TokenStore
}

type DeviceFlowOption func(*DeviceFlow)

func WithSleeper(s Sleeper) DeviceFlowOption {
	return func(f *DeviceFlow) {
		f.sleep = s
	}
}

func WithPollClient(c httpclient.HTTPClient) DeviceFlowOption {
	return func(f *DeviceFlow) {
		f.client = c
	}
}

func NewDeviceFlow(cfg *oauth2.Config, tokens *TokenStore, opts ...DeviceFlowOption) *DeviceFlow {
	f := &DeviceFlow{
		cfg:    cfg,
		client: http.DefaultClient,
		sleep:  contextSleep,
		tokens: tokens,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Begin requests a device and user code pair.
func (f *DeviceFlow) Begin(ctx context.Context) (*DeviceCode, error) {
	if c, ok := f.client.(*http.Client); ok {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c)
	}
	resp, err := f.cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, domainErrors.NewAppError(domainErrors.TypeAuth, "Failed to start GitHub login", err)
	}
	interval := time.Duration(resp.Interval) * time.Second
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &DeviceCode{
		DeviceCode:      resp.DeviceCode,
		UserCode:        resp.UserCode,
		VerificationURI: resp.VerificationURI,
		Interval:        interval,
		Expiry:          resp.Expiry,
	}, nil
}

// Poll waits for the user to approve code and stores the resulting tokens. It returns when a
// token arrives, the code is denied or expires, or ctx is cancelled.
func (f *DeviceFlow) Poll(ctx context.Context, code *DeviceCode) (TokenBundle, error) {
	interval := code.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	for {
		if err := f.sleep(ctx, interval); err != nil {
			return TokenBundle{}, err
		}

		resp, err := f.pollOnce(ctx, code.DeviceCode)
		if err != nil {
			return TokenBundle{}, err
		}

		switch resp.Error {
		case "":
			if resp.AccessToken == "" {
				return TokenBundle{}, domainErrors.NewAppError(domainErrors.TypeAuth, "GitHub returned no access token", nil)
			}
			if err := f.tokens.Save(ctx, resp.TokenBundle); err != nil {
				return TokenBundle{}, err
			}
			return resp.TokenBundle, nil
		case errAuthorizationPending:
			logger.Debug(ctx, "waiting for device authorization", "interval", interval)
		case errSlowDown:
			interval += slowDownStep
			logger.Debug(ctx, "device flow asked to slow down", "interval", interval)
		case errExpiredToken:
			return TokenBundle{}, domainErrors.ErrDeviceFlowExpired
		case errAccessDenied:
			return TokenBundle{}, domainErrors.ErrDeviceFlowDenied
		default:
			return TokenBundle{}, domainErrors.NewAppError(domainErrors.TypeAuth, "GitHub login failed", nil).
				WithContext("detail", strings.TrimSpace(resp.Error+" "+resp.ErrorDescription))
		}
	}
}

func (f *DeviceFlow) pollOnce(ctx context.Context, deviceCode string) (*pollResponse, error) {
	form := url.Values{}
	form.Set("client_id", f.cfg.ClientID)
	form.Set("device_code", deviceCode)
	form.Set("grant_type", deviceGrantType)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.cfg.Endpoint.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("error creating poll request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	res, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error polling for token: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading poll response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("poll for token failed: %d %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var out pollResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("error decoding poll response: %w", err)
	}
	return &out, nil
}
