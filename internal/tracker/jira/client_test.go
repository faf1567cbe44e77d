package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/shini4i/postdeplist/internal/models"
	"github.com/shini4i/postdeplist/internal/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCredentials = models.Credentials{Username: "jira-user", Password: "jira-pass"}

type fakeJira struct {
	mu       sync.Mutex
	t        *testing.T
	jql      string
	issues   []map[string]interface{}
	requests []searchRequest
	status   map[string]int
}

func (f *fakeJira) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/rest/api/2/filter/", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(w, r) {
			return
		}
		if status, ok := f.status["filter"]; ok {
			http.Error(w, `{"errorMessages":["filter not found"]}`, status)
			return
		}
		assert.Equal(f.t, http.MethodGet, r.Method)
		assert.Equal(f.t, "/rest/api/2/filter/12345", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{"jql": f.jql})
	})

	mux.HandleFunc("/rest/api/2/search", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(w, r) {
			return
		}
		if status, ok := f.status["search"]; ok {
			http.Error(w, `{"errorMessages":["bad jql"]}`, status)
			return
		}
		assert.Equal(f.t, http.MethodPost, r.Method)

		var req searchRequest
		assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
		f.mu.Lock()
		f.requests = append(f.requests, req)
		f.mu.Unlock()

		end := req.StartAt + req.MaxResults
		if end > len(f.issues) {
			end = len(f.issues)
		}
		page := f.issues[req.StartAt:end]

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"startAt":    req.StartAt,
			"maxResults": req.MaxResults,
			"total":      len(f.issues),
			"issues":     page,
		})
	})

	return mux
}

func (f *fakeJira) searches() []searchRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]searchRequest(nil), f.requests...)
}

func (f *fakeJira) authorized(w http.ResponseWriter, r *http.Request) bool {
	user, pass, ok := r.BasicAuth()
	if !ok || user != testCredentials.Username || pass != testCredentials.Password {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

func issue(key, summary string, deployTime interface{}) map[string]interface{} {
	return map[string]interface{}{
		"key": key,
		"fields": map[string]interface{}{
			"summary":              summary,
			DefaultDeployTimeField: deployTime,
		},
	}
}

func newTestClient(t *testing.T, server *httptest.Server, creds models.Credentials, pageSize int) *Client {
	t.Helper()
	client, err := NewClient(Config{
		BaseURL:     server.URL + "/",
		Credentials: creds,
		PageSize:    pageSize,
		HTTPClient:  server.Client(),
	})
	require.NoError(t, err)
	return client
}

func TestClientSearch(t *testing.T) {
	fake := &fakeJira{
		t:   t,
		jql: "project = CM AND status = Approved",
		issues: []map[string]interface{}{
			issue("DEP-1", "billing 2.3.1", "2026-10-19T21:00:00.000-0400"),
			issue("DBADMIN-4", "reindex", nil),
		},
	}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client := newTestClient(t, server, testCredentials, 0)

	issues, err := client.Search(context.Background(), "12345")
	require.NoError(t, err)

	assert.Equal(t, []models.Issue{
		{Key: "DEP-1", Summary: "billing 2.3.1", DeployTime: "2026-10-19T21:00:00.000-0400"},
		{Key: "DBADMIN-4", Summary: "reindex"},
	}, issues)

	require.Len(t, fake.searches(), 1)
	assert.Equal(t, "project = CM AND status = Approved", fake.searches()[0].JQL)
	assert.Equal(t, []string{"summary", DefaultDeployTimeField}, fake.searches()[0].Fields)
	assert.Equal(t, defaultPageSize, fake.searches()[0].MaxResults)
}

func TestClientSearchPaginates(t *testing.T) {
	fake := &fakeJira{t: t, jql: "project = CM"}
	for i := 1; i <= 5; i++ {
		fake.issues = append(fake.issues, issue(fmt.Sprintf("DEP-%d", i), "deploy", nil))
	}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client := newTestClient(t, server, testCredentials, 2)

	issues, err := client.Search(context.Background(), "12345")
	require.NoError(t, err)
	assert.Len(t, issues, 5)

	require.Len(t, fake.searches(), 3)
	assert.Equal(t, 0, fake.searches()[0].StartAt)
	assert.Equal(t, 2, fake.searches()[1].StartAt)
	assert.Equal(t, 4, fake.searches()[2].StartAt)
}

func TestClientSearchErrors(t *testing.T) {
	cases := []struct {
		name      string
		creds     models.Credentials
		status    map[string]int
		filterID  string
		wantStage string
	}{
		{
			name:      "bad credentials",
			creds:     models.Credentials{Username: "jira-user", Password: "wrong"},
			filterID:  "12345",
			wantStage: tracker.StageFilter,
		},
		{
			name:      "missing filter",
			creds:     testCredentials,
			status:    map[string]int{"filter": http.StatusNotFound},
			filterID:  "12345",
			wantStage: tracker.StageFilter,
		},
		{
			name:      "search failure",
			creds:     testCredentials,
			status:    map[string]int{"search": http.StatusBadRequest},
			filterID:  "12345",
			wantStage: tracker.StageSearch,
		},
		{
			name:      "empty filter ID",
			creds:     testCredentials,
			filterID:  " ",
			wantStage: tracker.StageFilter,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeJira{t: t, jql: "project = CM", status: tc.status}
			server := httptest.NewServer(fake.handler())
			defer server.Close()

			client := newTestClient(t, server, tc.creds, 0)

			_, err := client.Search(context.Background(), tc.filterID)
			require.Error(t, err)

			var queryErr *tracker.QueryError
			require.ErrorAs(t, err, &queryErr)
			assert.Equal(t, tc.wantStage, queryErr.Stage)
		})
	}
}

func TestClientSearchEmptyJQL(t *testing.T) {
	fake := &fakeJira{t: t, jql: ""}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client := newTestClient(t, server, testCredentials, 0)

	_, err := client.Search(context.Background(), "12345")

	var queryErr *tracker.QueryError
	require.ErrorAs(t, err, &queryErr)
	assert.Equal(t, tracker.StageFilter, queryErr.Stage)
	assert.Contains(t, err.Error(), "has no JQL")
}

func TestClientSearchCustomField(t *testing.T) {
	fake := &fakeJira{
		t:   t,
		jql: "project = CM",
		issues: []map[string]interface{}{
			{
				"key": "DEP-9",
				"fields": map[string]interface{}{
					"summary":           "custom",
					"customfield_20000": "2026-10-19T21:00:00.000-0400",
				},
			},
		},
	}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client, err := NewClient(Config{
		BaseURL:         server.URL,
		Credentials:     testCredentials,
		DeployTimeField: "customfield_20000",
		HTTPClient:      server.Client(),
	})
	require.NoError(t, err)

	issues, err := client.Search(context.Background(), "12345")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "2026-10-19T21:00:00.000-0400", issues[0].DeployTime)
	assert.Equal(t, []string{"summary", "customfield_20000"}, fake.searches()[0].Fields)
}

func TestNewClientValidatesConfig(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)

	_, err = NewClient(Config{BaseURL: "https://jira.example.com"})
	require.Error(t, err)

	_, err = NewClient(Config{BaseURL: "jira.example.com", Credentials: testCredentials})
	require.Error(t, err)

	client, err := NewClient(Config{BaseURL: "https://jira.example.com/", Credentials: testCredentials})
	require.NoError(t, err)
	assert.Equal(t, DefaultDeployTimeField, client.deployTimeField)
	assert.Equal(t, "https://jira.example.com/rest/api/2/filter/42", client.endpoint("filter", "42"))
}
