package services

import (
	"testing"
	"time"
)

func TestIsWorkday(t *testing.T) {
	svc := NewHolidayService()

	wednesday := time.Date(2026, 1, 14, 9, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, 1, 18, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		date     time.Time
		country  string
		expected bool
	}{
		{name: "cn weekday", date: wednesday, country: "CN", expected: true},
		{name: "cn sunday", date: sunday, country: "CN", expected: false},
		{name: "none weekday", date: wednesday, country: "NONE", expected: true},
		{name: "none sunday", date: sunday, country: "NONE", expected: false},
		{name: "us christmas", date: time.Date(2026, 12, 25, 9, 0, 0, 0, time.UTC), country: "US", expected: false},
		{name: "unknown country falls back to weekends", date: wednesday, country: "XX", expected: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.IsWorkday(tt.date, tt.country); got != tt.expected {
				t.Errorf("IsWorkday(%v, %s) = %t, expected %t", tt.date.Format("2006-01-02"), tt.country, got, tt.expected)
			}
		})
	}
}
