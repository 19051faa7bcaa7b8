package sources

import "testing"

func TestMapStatus(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: "normal"},
		{name: "success", input: "SUCCESS", expected: "success"},
		{name: "ok substring", input: "etl ok at 03:00", expected: "success"},
		{name: "loading", input: "Loading", expected: "loading"},
		{name: "pending", input: "job pending", expected: "loading"},
		{name: "anything else", input: "stalled", expected: "normal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapStatus(tt.input); got != tt.expected {
				t.Errorf("mapStatus(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeMetricRow(t *testing.T) {
	rec := normalizeMetricRow("metrics_brv", map[string]interface{}{
		"metric_key":   "TOTAL_COUNT",
		"metric_value": int64(1234),
		"status":       "success",
	})
	if rec.MetricKey != "TOTAL_COUNT" {
		t.Errorf("MetricKey = %q", rec.MetricKey)
	}
	if rec.MetricValue != "1234" {
		t.Errorf("MetricValue = %q, expected stringified number", rec.MetricValue)
	}
	if rec.StatusCode != "success" {
		t.Errorf("StatusCode = %q", rec.StatusCode)
	}
}

func TestNormalizeMetricRow_Defaults(t *testing.T) {
	rec := normalizeMetricRow("etl_status_rev", map[string]interface{}{})
	if rec.MetricKey != "ETL_STATUS_REV" {
		t.Errorf("MetricKey = %q, expected query-name fallback", rec.MetricKey)
	}
	if rec.MetricValue != "0" {
		t.Errorf("MetricValue = %q, expected \"0\"", rec.MetricValue)
	}
	if rec.StatusCode != "normal" {
		t.Errorf("StatusCode = %q, expected normal", rec.StatusCode)
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{name: "nil", input: nil, expected: ""},
		{name: "string", input: "x", expected: "x"},
		{name: "bytes", input: []byte("raw"), expected: "raw"},
		{name: "float", input: 3.5, expected: "3.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stringify(tt.input); got != tt.expected {
				t.Errorf("stringify(%v) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}
