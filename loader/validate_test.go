package loader

import (
	"strings"
	"testing"

	"github.com/nathoo/factcore/engine/tag"
	"github.com/nathoo/factcore/types"
)

func TestValidate_Warnings(t *testing.T) {
	content := &types.Content{
		Presets: map[string]types.Preset{
			"empty": {Name: "empty"},
			"bad": {Name: "bad", Entries: []types.PresetEntry{
				{Name: "no good", Tag: tag.None, Value: 1},
			}},
			"fine": {Name: "fine", Entries: []types.PresetEntry{
				{Name: "Quest.Step", Tag: tag.MustRequest("Quest.Step"), Value: 1},
			}},
		},
		Conditions: map[string]types.Condition{
			"broken": {Name: "broken", Or: []types.SimpleCondition{{Tag: tag.None, Operator: types.IsDefined}}},
			"ok":     {Name: "ok", And: []types.SimpleCondition{{Tag: tag.MustRequest("Quest.Step"), Operator: types.IsDefined}}},
		},
	}
	ve := &ValidationError{}
	validate(content, ve)

	if len(ve.Errors) != 0 {
		t.Errorf("expected no errors, got %v", ve.Errors)
	}
	if len(ve.Warnings) != 3 {
		t.Fatalf("expected 3 warnings, got %v", ve.Warnings)
	}
	all := strings.Join(ve.Warnings, "\n")
	for _, want := range []string{
		`preset "bad": fact tag "no good" is not valid`,
		`preset "empty" is empty`,
		`condition "broken": invalid condition: or[0]: fact tag is not valid`,
	} {
		if !strings.Contains(all, want) {
			t.Errorf("expected warning %q in:\n%s", want, all)
		}
	}
}

func TestValidationError_Message(t *testing.T) {
	ve := &ValidationError{Errors: []string{"one", "two"}}
	if got := ve.Error(); got != "validation failed with 2 error(s):\n  one\n  two" {
		t.Errorf("unexpected message %q", got)
	}
}
