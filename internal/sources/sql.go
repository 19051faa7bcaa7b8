package sources

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/lunadata/weekreport/internal/config"
	"github.com/lunadata/weekreport/pkg/logger"
	"github.com/rs/zerolog"
)

// MetricDB runs the configured metric queries against external PostgreSQL
// databases. Queries execute on the first configured database; a query
// containing a $1 placeholder receives the week number as its argument.
type MetricDB struct {
	pools       map[string]*sql.DB
	defaultName string
	queries     config.SQLQueriesConfig
	queryOrder  []string
	timeout     time.Duration
	log         zerolog.Logger
}

func NewMetricDB(externals []config.ExternalDB, queries config.SQLQueriesConfig) (*MetricDB, error) {
	if len(externals) == 0 {
		return nil, fmt.Errorf("no external databases configured")
	}

	m := &MetricDB{
		pools:       make(map[string]*sql.DB, len(externals)),
		defaultName: externals[0].Name,
		queries:     queries,
		timeout:     time.Duration(externals[0].QueryTimeoutMS) * time.Millisecond,
		log:         logger.Module("metricdb"),
	}

	for _, ext := range externals {
		sslMode := "disable"
		if ext.SSL {
			sslMode = "require"
		}
		dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s connect_timeout=%d",
			ext.Host, ext.Port, ext.Database, ext.Username, ext.Password, sslMode, ext.ConnectTimeoutMS/1000)

		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("open external database %s: %w", ext.Name, err)
		}
		db.SetMaxOpenConns(10)
		db.SetConnMaxIdleTime(30 * time.Second)
		m.pools[ext.Name] = db
		m.log.Info().Str("name", ext.Name).Str("host", ext.Host).Int("port", ext.Port).Msg("external database pool created")
	}

	// Stable query order so metric ID assignment is deterministic.
	for name := range queries {
		m.queryOrder = append(m.queryOrder, name)
	}
	sort.Strings(m.queryOrder)

	return m, nil
}

// FetchMetrics executes every configured query and concatenates the
// normalized rows in query-name order.
func (m *MetricDB) FetchMetrics(ctx context.Context, weekNumber int) ([]MetricRecord, error) {
	var records []MetricRecord
	for _, name := range m.queryOrder {
		rows, err := m.runQuery(ctx, name, weekNumber)
		if err != nil {
			return nil, err
		}
		records = append(records, rows...)
	}
	return records, nil
}

// HealthCheck pings every pool.
func (m *MetricDB) HealthCheck(ctx context.Context) map[string]bool {
	status := make(map[string]bool, len(m.pools))
	for name, db := range m.pools {
		err := db.PingContext(ctx)
		status[name] = err == nil
		if err != nil {
			m.log.Warn().Str("name", name).Err(err).Msg("external database ping failed")
		}
	}
	return status
}

// Close shuts down all pools.
func (m *MetricDB) Close() {
	for name, db := range m.pools {
		if err := db.Close(); err != nil {
			m.log.Warn().Str("name", name).Err(err).Msg("closing pool failed")
		}
	}
}

func (m *MetricDB) runQuery(ctx context.Context, name string, weekNumber int) ([]MetricRecord, error) {
	query, ok := m.queries[name]
	if !ok || query == "" {
		return nil, fmt.Errorf("sql query %q not configured", name)
	}
	db := m.pools[m.defaultName]

	qctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var rows *sql.Rows
	var err error
	if strings.Contains(query, "$1") {
		rows, err = db.QueryContext(qctx, query, weekNumber)
	} else {
		rows, err = db.QueryContext(qctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("sql query %s: %w", name, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("sql query %s columns: %w", name, err)
	}

	var records []MetricRecord
	for rows.Next() {
		vals := make([]interface{}, len(cols))
		for i := range vals {
			vals[i] = new(interface{})
		}
		if err := rows.Scan(vals...); err != nil {
			return nil, fmt.Errorf("sql query %s scan: %w", name, err)
		}

		row := make(map[string]interface{}, len(cols))
		for i, col := range cols {
			row[strings.ToLower(col)] = *(vals[i].(*interface{}))
		}
		records = append(records, normalizeMetricRow(name, row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sql query %s rows: %w", name, err)
	}

	if len(records) == 0 {
		m.log.Warn().Str("query", name).Msg("query returned no rows")
	} else {
		m.log.Info().Str("query", name).Int("rows", len(records)).Msg("metric query done")
	}
	return records, nil
}

// normalizeMetricRow maps one result row onto a MetricRecord. Rows are
// expected to carry metric_key, metric_value and status columns; a missing
// key falls back to the query name.
func normalizeMetricRow(queryName string, row map[string]interface{}) MetricRecord {
	key := stringify(row["metric_key"])
	if key == "" {
		key = strings.ToUpper(queryName)
	}
	value := stringify(row["metric_value"])
	if value == "" {
		value = "0"
	}
	return MetricRecord{
		MetricKey:   key,
		MetricValue: value,
		StatusCode:  mapStatus(stringify(row["status"])),
	}
}

// mapStatus folds free-form status text from external systems onto the
// three status codes the UI understands.
func mapStatus(status string) string {
	if status == "" {
		return "normal"
	}
	lower := strings.ToLower(status)
	if strings.Contains(lower, "success") || strings.Contains(lower, "ok") {
		return "success"
	}
	if strings.Contains(lower, "loading") || strings.Contains(lower, "pending") {
		return "loading"
	}
	return "normal"
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
