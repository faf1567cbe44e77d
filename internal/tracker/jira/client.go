package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/op/go-logging"
	"github.com/shini4i/postdeplist/internal/models"
	"github.com/shini4i/postdeplist/internal/tracker"
)

const (
	// DefaultDeployTimeField is the custom field holding the scheduled deploy time.
	DefaultDeployTimeField = "customfield_10305"

	apiPrefix         = "/rest/api/2"
	defaultPageSize   = 100
	maxErrorBodyBytes = 4096
)

// Config describes settings required to query a Jira instance.
type Config struct {
	BaseURL         string
	Credentials     models.Credentials
	DeployTimeField string
	PageSize        int
	HTTPClient      *http.Client
	Log             *logging.Logger
}

type Client struct {
	client          *http.Client
	baseURL         *url.URL
	credentials     models.Credentials
	deployTimeField string
	pageSize        int
	log             *logging.Logger
}

// Ensure Client implements tracker.Searcher.
var _ tracker.Searcher = (*Client)(nil)

type filterResponse struct {
	JQL string `json:"jql"`
}

type searchRequest struct {
	JQL        string   `json:"jql"`
	StartAt    int      `json:"startAt"`
	MaxResults int      `json:"maxResults"`
	Fields     []string `json:"fields"`
}

type searchResponse struct {
	StartAt    int           `json:"startAt"`
	MaxResults int           `json:"maxResults"`
	Total      int           `json:"total"`
	Issues     []issueRecord `json:"issues"`
}

type issueRecord struct {
	Key    string                     `json:"key"`
	Fields map[string]json.RawMessage `json:"fields"`
}

// NewClient builds a Jira search client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("jira: base URL is required")
	}
	if !cfg.Credentials.Complete() {
		return nil, fmt.Errorf("jira: username and password are required")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("jira: parse base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("jira: base URL %q must be absolute", cfg.BaseURL)
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	field := cfg.DeployTimeField
	if field == "" {
		field = DefaultDeployTimeField
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	log := cfg.Log
	if log == nil {
		log = logging.MustGetLogger("jira")
	}

	return &Client{
		client:          client,
		baseURL:         base,
		credentials:     cfg.Credentials,
		deployTimeField: field,
		pageSize:        pageSize,
		log:             log,
	}, nil
}

// Search resolves the saved filter to its JQL and returns every matching issue.
func (c *Client) Search(ctx context.Context, filterID string) ([]models.Issue, error) {
	if strings.TrimSpace(filterID) == "" {
		return nil, &tracker.QueryError{Stage: tracker.StageFilter, Err: errors.New("filter ID is empty")}
	}

	jql, err := c.filterJQL(ctx, filterID)
	if err != nil {
		return nil, &tracker.QueryError{Stage: tracker.StageFilter, Err: err}
	}
	c.log.Debugf("▶ Filter [%s] resolved to JQL: %s", filterID, jql)

	issues, err := c.searchAll(ctx, jql)
	if err != nil {
		return nil, &tracker.QueryError{Stage: tracker.StageSearch, Err: err}
	}

	return issues, nil
}

func (c *Client) filterJQL(ctx context.Context, filterID string) (string, error) {
	var filter filterResponse
	if err := c.do(ctx, http.MethodGet, c.endpoint("filter", filterID), nil, &filter); err != nil {
		return "", err
	}
	if strings.TrimSpace(filter.JQL) == "" {
		return "", fmt.Errorf("filter %s has no JQL", filterID)
	}
	return filter.JQL, nil
}

func (c *Client) searchAll(ctx context.Context, jql string) ([]models.Issue, error) {
	issues := []models.Issue{}

	for startAt := 0; ; {
		var page searchResponse
		req := searchRequest{
			JQL:        jql,
			StartAt:    startAt,
			MaxResults: c.pageSize,
			Fields:     []string{"summary", c.deployTimeField},
		}
		if err := c.do(ctx, http.MethodPost, c.endpoint("search"), req, &page); err != nil {
			return nil, err
		}

		for _, record := range page.Issues {
			issue, err := c.toIssue(record)
			if err != nil {
				return nil, err
			}
			issues = append(issues, issue)
		}

		startAt += len(page.Issues)
		if len(page.Issues) == 0 || startAt >= page.Total {
			break
		}
	}

	c.log.Debugf("▶ Search returned %d issues", len(issues))

	return issues, nil
}

func (c *Client) toIssue(record issueRecord) (models.Issue, error) {
	issue := models.Issue{Key: record.Key}

	if raw, ok := record.Fields["summary"]; ok {
		if err := json.Unmarshal(raw, &issue.Summary); err != nil {
			return models.Issue{}, fmt.Errorf("issue %s: decode summary: %w", record.Key, err)
		}
	}

	if raw, ok := record.Fields[c.deployTimeField]; ok {
		var deployTime *string
		if err := json.Unmarshal(raw, &deployTime); err != nil {
			return models.Issue{}, fmt.Errorf("issue %s: decode %s: %w", record.Key, c.deployTimeField, err)
		}
		if deployTime != nil {
			issue.DeployTime = *deployTime
		}
	}

	return issue, nil
}

func (c *Client) endpoint(parts ...string) string {
	endpoint := *c.baseURL
	segments := []string{"/", endpoint.Path, apiPrefix}
	for _, part := range parts {
		segments = append(segments, url.PathEscape(part))
	}
	endpoint.Path = path.Join(segments...)
	return endpoint.String()
}

func (c *Client) do(ctx context.Context, method, endpoint string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.SetBasicAuth(c.credentials.Username, c.credentials.Password)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
