package flowdock

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/shini4i/postdeplist/internal/chat"
	"github.com/shini4i/postdeplist/internal/models"
)

const (
	// DefaultBaseURL is the public Flowdock REST API.
	DefaultBaseURL = "https://api.flowdock.com"

	messageEvent      = "message"
	maxErrorBodyBytes = 4096
)

// Config describes settings required to post messages to a Flowdock flow.
type Config struct {
	BaseURL      string
	Organization string
	Flow         string
	DisplayName  string
	Credentials  models.Credentials
	HTTPClient   *http.Client
}

type Poster struct {
	client      *http.Client
	endpoint    string
	displayName string
	credentials models.Credentials
}

type messagePayload struct {
	Event            string `json:"event"`
	Content          string `json:"content"`
	ExternalUserName string `json:"external_user_name,omitempty"`
}

// Ensure Poster implements chat.Poster.
var _ chat.Poster = (*Poster)(nil)

// NewPoster builds a Flowdock flow message poster.
func NewPoster(cfg Config) (*Poster, error) {
	if cfg.Organization == "" {
		return nil, fmt.Errorf("flowdock: organization is required")
	}
	if cfg.Flow == "" {
		return nil, fmt.Errorf("flowdock: flow is required")
	}
	if !cfg.Credentials.Complete() {
		return nil, fmt.Errorf("flowdock: username and password are required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("flowdock: parse base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("flowdock: base URL %q must be absolute", baseURL)
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	endpoint := *base
	endpoint.Path = path.Join("/", endpoint.Path, "flows", url.PathEscape(cfg.Organization), url.PathEscape(cfg.Flow), "messages")

	return &Poster{
		client:      client,
		endpoint:    endpoint.String(),
		displayName: cfg.DisplayName,
		credentials: cfg.Credentials,
	}, nil
}

// Post sends content as a single message to the configured flow.
// Only 201 Created counts as delivered.
func (p *Poster) Post(content string) error {
	payload, err := json.Marshal(messagePayload{
		Event:            messageEvent,
		Content:          content,
		ExternalUserName: p.displayName,
	})
	if err != nil {
		return fmt.Errorf("flowdock: marshal payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("flowdock: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(p.credentials.Username, p.credentials.Password)

	resp, err := p.client.Do(req)
	if err != nil {
		return &chat.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return &chat.RejectedError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}

	// Drain response body for connection reuse; errors are intentionally ignored.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
