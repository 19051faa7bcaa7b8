package services

import (
	"testing"

	"github.com/lunadata/weekreport/internal/models"
)

func TestValidateContent(t *testing.T) {
	tests := []struct {
		name    string
		tabType string
		content string
		wantErr bool
	}{
		{name: "done full payload", tabType: models.TabDone,
			content: `{"jiraKey":"PROJ-1","title":"t","status":"Done","assignee":"a","devStatus":"ok","prodStatus":""}`},
		{name: "done rejects numeric status", tabType: models.TabDone,
			content: `{"devStatus": 1}`, wantErr: true},
		{name: "plan numeric fields", tabType: models.TabPlan,
			content: `{"title":"t","storyPoints":5,"workDays":2.5}`},
		{name: "plan rejects string workDays", tabType: models.TabPlan,
			content: `{"workDays":"three"}`, wantErr: true},
		{name: "self free text fields", tabType: models.TabSelf,
			content: `{"title":"t","description":"d","progress":"50%","remarks":""}`},
		{name: "self rejects numeric progress", tabType: models.TabSelf,
			content: `{"progress": 50}`, wantErr: true},
		{name: "extra unknown fields pass", tabType: models.TabSelf,
			content: `{"title":"t","custom":123}`},
		{name: "empty object valid", tabType: models.TabDone, content: `{}`},
		{name: "null fields tolerated", tabType: models.TabPlan, content: `{"workDays":null}`},
		{name: "unknown tab", tabType: "WEEKLY", content: `{}`, wantErr: true},
		{name: "array payload", tabType: models.TabDone, content: `[1,2]`, wantErr: true},
		{name: "null payload", tabType: models.TabDone, content: `null`, wantErr: true},
		{name: "not json", tabType: models.TabDone, content: `{title}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContent(tt.tabType, tt.content)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateContent(%s, %s) error = %v, wantErr %t", tt.tabType, tt.content, err, tt.wantErr)
			}
		})
	}
}
