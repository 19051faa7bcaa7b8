package sources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lunadata/weekreport/internal/config"
)

func jiraTestConfig(baseURL string) config.JiraConfig {
	return config.JiraConfig{
		BaseURL:   baseURL,
		Email:     "bot@example.com",
		APIToken:  "token",
		DoneJQL:   "status = Done AND resolved >= -7d",
		PlanJQL:   "sprint in openSprints()",
		Fields:    []string{"summary", "status", "assignee", "customfield_10016"},
		TimeoutMS: 5000,
	}
}

func TestFetchDoneTasks_Normalization(t *testing.T) {
	var gotJQL string
	var gotAuthOK bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/api/3/search" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		gotAuthOK = ok && user == "bot@example.com" && pass == "token"

		var req jiraSearchRequest
		json.NewDecoder(r.Body).Decode(&req)
		gotJQL = req.JQL
		if req.MaxResults != 1000 {
			t.Errorf("maxResults = %d, expected 1000", req.MaxResults)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"total": 2,
			"issues": [
				{"key": "PROJ-1", "fields": {"summary": "Ship exporter", "status": {"name": "Done"}, "assignee": {"displayName": "Wang Lei"}, "customfield_10016": 5}},
				{"key": "PROJ-2", "fields": {"summary": "Fix pipeline", "status": null, "assignee": null}}
			]
		}`))
	}))
	defer srv.Close()

	c := NewJiraClient(jiraTestConfig(srv.URL))
	tasks, err := c.FetchDoneTasks(context.Background())
	if err != nil {
		t.Fatalf("FetchDoneTasks() error = %v", err)
	}

	if !gotAuthOK {
		t.Error("basic auth credentials not sent")
	}
	if gotJQL != "status = Done AND resolved >= -7d" {
		t.Errorf("jql = %q", gotJQL)
	}
	if len(tasks) != 2 {
		t.Fatalf("len(tasks) = %d, expected 2", len(tasks))
	}

	first := tasks[0]
	if first.JiraKey != "PROJ-1" || first.Title != "Ship exporter" || first.Status != "Done" || first.Assignee != "Wang Lei" {
		t.Errorf("tasks[0] = %+v", first)
	}
	if first.StoryPoints == nil || *first.StoryPoints != 5 {
		t.Errorf("tasks[0].StoryPoints = %v, expected 5", first.StoryPoints)
	}

	second := tasks[1]
	if second.Status != "Unknown" {
		t.Errorf("tasks[1].Status = %q, expected fallback Unknown", second.Status)
	}
	if second.Assignee != "未分配" {
		t.Errorf("tasks[1].Assignee = %q, expected fallback", second.Assignee)
	}
	if second.StoryPoints != nil {
		t.Errorf("tasks[1].StoryPoints = %v, expected nil", second.StoryPoints)
	}
}

func TestFetchPlanTasks_UsesPlanJQL(t *testing.T) {
	var gotJQL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req jiraSearchRequest
		json.NewDecoder(r.Body).Decode(&req)
		gotJQL = req.JQL
		w.Write([]byte(`{"total": 0, "issues": []}`))
	}))
	defer srv.Close()

	c := NewJiraClient(jiraTestConfig(srv.URL))
	tasks, err := c.FetchPlanTasks(context.Background())
	if err != nil {
		t.Fatalf("FetchPlanTasks() error = %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("len(tasks) = %d, expected 0", len(tasks))
	}
	if gotJQL != "sprint in openSprints()" {
		t.Errorf("jql = %q", gotJQL)
	}
}

func TestSearch_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errorMessages": ["bad token"]}`))
	}))
	defer srv.Close()

	c := NewJiraClient(jiraTestConfig(srv.URL))
	if _, err := c.FetchDoneTasks(context.Background()); err == nil {
		t.Error("FetchDoneTasks() with 401 expected error")
	}
}

func TestHealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/rest/api/3/myself" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewJiraClient(jiraTestConfig(srv.URL))
	if !c.HealthCheck(context.Background()) {
		t.Error("HealthCheck() = false against healthy server")
	}

	srv.Close()
	if c.HealthCheck(context.Background()) {
		t.Error("HealthCheck() = true against closed server")
	}
}
