package services

import (
	"encoding/json"
	"fmt"

	"github.com/lunadata/weekreport/internal/models"
)

// Fields every tab shares; all string-valued.
var baseContentFields = []string{"jiraKey", "title", "status", "assignee"}

// Extra fields by tab. DONE carries per-environment rollout status, PLAN
// carries estimation numbers, SELF carries free-form progress text.
var (
	doneStringFields = []string{"devStatus", "testStatus", "verifyStatus", "reviewStatus", "prodStatus"}
	planNumberFields = []string{"storyPoints", "workDays"}
	selfStringFields = []string{"description", "progress", "remarks"}
)

// ValidateContent checks a content payload against the tab's field schema.
// Every field is optional but a present field must have the right type.
// Unknown extra fields pass through untouched.
func ValidateContent(tabType, contentJSON string) error {
	var content map[string]interface{}
	if err := json.Unmarshal([]byte(contentJSON), &content); err != nil {
		return &ValidationError{Msg: fmt.Sprintf("contentJson is not a JSON object: %v", err)}
	}
	if content == nil {
		return &ValidationError{Msg: "contentJson must not be null"}
	}

	stringFields := append([]string{}, baseContentFields...)
	var numberFields []string

	switch tabType {
	case models.TabDone:
		stringFields = append(stringFields, doneStringFields...)
	case models.TabPlan:
		numberFields = planNumberFields
	case models.TabSelf:
		stringFields = append(stringFields, selfStringFields...)
	default:
		return &ValidationError{Msg: fmt.Sprintf("unknown tab type: %s", tabType)}
	}

	for _, field := range stringFields {
		v, ok := content[field]
		if !ok || v == nil {
			continue
		}
		if _, isString := v.(string); !isString {
			return &ValidationError{Msg: fmt.Sprintf("field %s must be a string", field)}
		}
	}
	for _, field := range numberFields {
		v, ok := content[field]
		if !ok || v == nil {
			continue
		}
		if _, isNumber := v.(float64); !isNumber {
			return &ValidationError{Msg: fmt.Sprintf("field %s must be a number", field)}
		}
	}
	return nil
}
