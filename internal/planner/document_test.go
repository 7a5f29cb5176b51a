package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/weddingplanner/internal/models"
)

const validPlanJSON = `{
  "overview": "A rustic celebration in Lisbon.",
  "timeline": [{"phase": "Planning Phase", "description": "Set the vision", "startTime": "12 Months Before"}],
  "budget": [
    {"category": "Venue", "percentage": 40, "amount": 12000},
    {"category": "Catering", "percentage": 60, "amount": 18000}
  ],
  "categories": [{"name": "Venue", "description": "Where it happens", "icon": "ri-home-heart-line"}],
  "todoList": [
    {"title": "Book venue", "description": "Visit three venues", "category": "Venue", "dueDate": "10 Months Before", "status": "pending"},
    {"title": "Taste menus", "description": "", "category": "Catering", "dueDate": "6 Months Before", "status": "pending"}
  ]
}`

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around", "Here is your plan:\n{\"a\":{\"b\":2}}\nEnjoy!", `{"a":{"b":2}}`},
		{"truncated", "```json\n{\"a\":[1,2", `{"a":[1,2`},
		{"whitespace", "   \n\t ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFences(tt.in))
		})
	}
}

func TestParseDocumentValid(t *testing.T) {
	doc, err := ParseDocument("```json\n" + validPlanJSON + "\n```")
	require.NoError(t, err)

	assert.Equal(t, "A rustic celebration in Lisbon.", doc.Overview)
	require.Len(t, doc.TodoList, 2)
	assert.Equal(t, "Venue", doc.TodoList[0].Category)
	assert.Equal(t, "10 Months Before", doc.TodoList[0].DueDate)
	require.Len(t, doc.Budget, 2)
	assert.Equal(t, 12000.0, doc.Budget[0].Amount)
}

func TestParseDocumentEmpty(t *testing.T) {
	for _, raw := range []string{"", "   ", "```json\n```"} {
		_, err := ParseDocument(raw)
		assert.ErrorIs(t, err, ErrMalformedOutput, "input %q", raw)
	}
}

func TestParseDocumentRepairsSyntax(t *testing.T) {
	broken := `{
  "overview": "Beach wedding",
  "timeline": [{"phase": "Planning", "description": "", "startTime": "6 Months Before"},],
  "budget": [{"category": "Venue", "percentage": 100, "amount": 5000}],
  "categories": [{"name": "Venue", "description": "", "icon": ""}],
  "todoList": [{"title": "Book venue", "description": "", "category": "Venue", "dueDate": "5 Months Before", "status": "pending"},]
}`
	doc, err := ParseDocument(broken)
	require.NoError(t, err)
	assert.Equal(t, "Beach wedding", doc.Overview)
	assert.Len(t, doc.TodoList, 1)
}

func TestParseDocumentRejectsTypeMismatch(t *testing.T) {
	_, err := ParseDocument(`{"overview": "x", "timeline": "soon", "budget": [], "categories": [], "todoList": []}`)
	assert.ErrorIs(t, err, ErrMalformedOutput)
}

func TestParseDocumentRejectsMissingFields(t *testing.T) {
	_, err := ParseDocument(`{"overview": "", "timeline": [], "budget": [], "categories": [], "todoList": []}`)
	require.ErrorIs(t, err, ErrMalformedOutput)
	assert.Contains(t, err.Error(), "overview is empty")
	assert.Contains(t, err.Error(), "timeline is empty")
	assert.Contains(t, err.Error(), "budget is empty")
	assert.Contains(t, err.Error(), "categories is empty")
	assert.Contains(t, err.Error(), "todoList is empty")
}

func TestParseDocumentRejectsAbsentBudgetAndCategories(t *testing.T) {
	_, err := ParseDocument(`{
  "overview": "Garden wedding",
  "timeline": [{"phase": "Planning", "description": "", "startTime": "6 Months Before"}],
  "todoList": [{"title": "Book venue", "description": "", "category": "Venue", "dueDate": "5 Months Before", "status": "pending"}]
}`)
	require.ErrorIs(t, err, ErrMalformedOutput)
	assert.Contains(t, err.Error(), "budget is empty")
	assert.Contains(t, err.Error(), "categories is empty")
	assert.NotContains(t, err.Error(), "todoList is empty")
}

func TestValidateDuplicateCategoriesAndRanges(t *testing.T) {
	doc := &GeneratedPlanDocument{
		Overview: "x",
		Timeline: []TimelinePhase{{Phase: "Planning"}},
		Budget:   []BudgetItem{{Category: "Venue", Percentage: 140, Amount: -1}},
		TodoList: []TodoItem{{Title: "t", Category: "Venue"}},
	}
	doc.Categories = []models.PlanCategory{{Name: "Venue"}, {Name: "Venue"}}

	err := doc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate name")
	assert.Contains(t, err.Error(), "out of range")
	assert.Contains(t, err.Error(), "negative amount")
}

func TestBudgetDrift(t *testing.T) {
	doc, err := ParseDocument(validPlanJSON)
	require.NoError(t, err)

	pct, amount := doc.BudgetDrift(30000)
	assert.InDelta(t, 0, pct, 1e-9)
	assert.InDelta(t, 0, amount, 1e-9)

	pct, amount = doc.BudgetDrift(32000)
	assert.InDelta(t, 0, pct, 1e-9)
	assert.InDelta(t, 2000, amount, 1e-9)
}
