// Package sources contains the adapters the report generator pulls from:
// the Jira REST API for task lines and external PostgreSQL databases for
// system metrics.
package sources

import "context"

// TaskRecord is a normalized Jira issue. Its JSON form is what gets stored
// in a report item's content payload.
type TaskRecord struct {
	JiraKey     string   `json:"jiraKey"`
	Title       string   `json:"title"`
	Status      string   `json:"status"`
	Assignee    string   `json:"assignee"`
	StoryPoints *float64 `json:"storyPoints,omitempty"`
}

// MetricRecord is a normalized metric row from an external database.
type MetricRecord struct {
	MetricKey   string
	MetricValue string
	StatusCode  string
}

// Gateway is the external-data boundary consumed by report generation.
// Each fetch fails as a unit; there is no partial-source degradation.
type Gateway interface {
	FetchDoneTasks(ctx context.Context) ([]TaskRecord, error)
	FetchPlanTasks(ctx context.Context) ([]TaskRecord, error)
	FetchMetrics(ctx context.Context, weekNumber int) ([]MetricRecord, error)
	// HealthCheck reports reachability per configured source, keyed by
	// source name ("jira", external database names).
	HealthCheck(ctx context.Context) map[string]bool
}

type gateway struct {
	jira    *JiraClient
	metrics *MetricDB
}

// NewGateway combines the Jira client and the external metric databases
// into the single boundary the generator consumes.
func NewGateway(jira *JiraClient, metrics *MetricDB) Gateway {
	return &gateway{jira: jira, metrics: metrics}
}

func (g *gateway) FetchDoneTasks(ctx context.Context) ([]TaskRecord, error) {
	return g.jira.FetchDoneTasks(ctx)
}

func (g *gateway) FetchPlanTasks(ctx context.Context) ([]TaskRecord, error) {
	return g.jira.FetchPlanTasks(ctx)
}

func (g *gateway) FetchMetrics(ctx context.Context, weekNumber int) ([]MetricRecord, error) {
	return g.metrics.FetchMetrics(ctx, weekNumber)
}

func (g *gateway) HealthCheck(ctx context.Context) map[string]bool {
	status := map[string]bool{
		"jira": g.jira.HealthCheck(ctx),
	}
	for name, ok := range g.metrics.HealthCheck(ctx) {
		status[name] = ok
	}
	return status
}
