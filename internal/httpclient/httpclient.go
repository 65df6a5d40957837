package httpclient

import (
	"net/http"
	"time"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// New returns the client shared by every outbound call. A zero timeout means none.
func New(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
