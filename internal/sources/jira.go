package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lunadata/weekreport/internal/config"
	"github.com/lunadata/weekreport/pkg/logger"
	"github.com/rs/zerolog"
)

const jiraMaxResults = 1000

// JiraClient queries the Jira Cloud REST API with basic auth and normalizes
// issues into TaskRecords. The JQL for each tab comes from configuration.
type JiraClient struct {
	cfg    config.JiraConfig
	client *http.Client
	log    zerolog.Logger
}

func NewJiraClient(cfg config.JiraConfig) *JiraClient {
	return &JiraClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
		log: logger.Module("jira"),
	}
}

// FetchDoneTasks returns this week's completed issues.
func (c *JiraClient) FetchDoneTasks(ctx context.Context) ([]TaskRecord, error) {
	return c.search(ctx, c.cfg.DoneJQL)
}

// FetchPlanTasks returns the upcoming planned issues.
func (c *JiraClient) FetchPlanTasks(ctx context.Context) ([]TaskRecord, error) {
	return c.search(ctx, c.cfg.PlanJQL)
}

// HealthCheck verifies API reachability and credentials.
func (c *JiraClient) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/rest/api/3/myself", nil)
	if err != nil {
		return false
	}
	req.SetBasicAuth(c.cfg.Email, c.cfg.APIToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Msg("jira health check failed")
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

type jiraSearchRequest struct {
	JQL        string   `json:"jql"`
	Fields     []string `json:"fields"`
	MaxResults int      `json:"maxResults"`
}

type jiraSearchResponse struct {
	Total  int         `json:"total"`
	Issues []jiraIssue `json:"issues"`
}

type jiraIssue struct {
	Key    string `json:"key"`
	Fields struct {
		Summary string `json:"summary"`
		Status  *struct {
			Name string `json:"name"`
		} `json:"status"`
		Assignee *struct {
			DisplayName string `json:"displayName"`
		} `json:"assignee"`
		StoryPoints *float64 `json:"customfield_10016"`
	} `json:"fields"`
}

func (c *JiraClient) search(ctx context.Context, jql string) ([]TaskRecord, error) {
	body, err := json.Marshal(jiraSearchRequest{
		JQL:        jql,
		Fields:     c.cfg.Fields,
		MaxResults: jiraMaxResults,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/rest/api/3/search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.cfg.Email, c.cfg.APIToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jira search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("jira search returned %d: %s", resp.StatusCode, string(data))
	}

	var result jiraSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("jira search decode: %w", err)
	}

	c.log.Info().Int("total", result.Total).Str("jql", jql).Msg("jql query done")

	tasks := make([]TaskRecord, 0, len(result.Issues))
	for _, issue := range result.Issues {
		tasks = append(tasks, normalizeIssue(issue))
	}
	return tasks, nil
}

func normalizeIssue(issue jiraIssue) TaskRecord {
	task := TaskRecord{
		JiraKey:     issue.Key,
		Title:       issue.Fields.Summary,
		Status:      "Unknown",
		Assignee:    "未分配",
		StoryPoints: issue.Fields.StoryPoints,
	}
	if issue.Fields.Status != nil && issue.Fields.Status.Name != "" {
		task.Status = issue.Fields.Status.Name
	}
	if issue.Fields.Assignee != nil && issue.Fields.Assignee.DisplayName != "" {
		task.Assignee = issue.Fields.Assignee.DisplayName
	}
	return task
}
