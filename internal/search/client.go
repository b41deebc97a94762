package search

import (
	"net/http"
	"time"
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=search_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// settings holds the shared provider knobs, set through Options.
type settings struct {
	baseURL    string
	httpClient HTTPClient
	header     http.Header
	timeout    time.Duration
}

// Option configures a search provider.
type Option func(*settings)

// WithBaseURL overrides the provider endpoint.
func WithBaseURL(baseURL string) Option {
	return func(s *settings) { s.baseURL = baseURL }
}

// WithHTTPClient sets the HTTP client used for provider calls.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(s *settings) { s.httpClient = httpClient }
}

// WithHeader adds headers to every provider request.
func WithHeader(header http.Header) Option {
	return func(s *settings) {
		for key, values := range header {
			for _, value := range values {
				s.header.Add(key, value)
			}
		}
	}
}

// WithTimeout bounds each provider call. Defaults to 5s.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

func newSettings(baseURL string, options ...Option) settings {
	s := settings{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		timeout:    5 * time.Second,
	}
	for _, option := range options {
		option(&s)
	}
	return s
}
