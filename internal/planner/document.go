package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/kaptinlin/jsonrepair"

	"github.com/Kerhoff/weddingplanner/internal/models"
)

// GeneratedPlanDocument is the structured plan the model is asked to return.
type GeneratedPlanDocument struct {
	Overview   string                `json:"overview"`
	Timeline   []TimelinePhase       `json:"timeline"`
	Budget     []BudgetItem          `json:"budget"`
	Categories []models.PlanCategory `json:"categories"`
	TodoList   []TodoItem            `json:"todoList"`
}

type TimelinePhase struct {
	Phase       string `json:"phase"`
	Description string `json:"description"`
	StartTime   string `json:"startTime"`
}

type BudgetItem struct {
	Category   string  `json:"category"`
	Percentage float64 `json:"percentage"`
	Amount     float64 `json:"amount"`
}

type TodoItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	DueDate     string `json:"dueDate"`
	Status      string `json:"status"`
}

// StripCodeFences removes markdown fences and surrounding prose from a model
// reply, leaving the outermost JSON object.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// drop the language tag line, e.g. ```json
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		} else {
			s = strings.TrimPrefix(s, "json")
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.IndexByte(s, '{')
	if start < 0 {
		return s
	}
	end := strings.LastIndexByte(s, '}')
	if end < start {
		return s[start:]
	}
	return s[start : end+1]
}

// ParseDocument turns raw model output into a validated document. Syntax
// errors get a single repair attempt; shape errors are never repaired.
func ParseDocument(raw string) (*GeneratedPlanDocument, error) {
	text := StripCodeFences(raw)
	if text == "" {
		return nil, fmt.Errorf("%w: empty completion", ErrMalformedOutput)
	}

	var doc GeneratedPlanDocument
	err := json.Unmarshal([]byte(text), &doc)
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		repaired, repairErr := jsonrepair.JSONRepair(text)
		if repairErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedOutput, err)
		}
		doc = GeneratedPlanDocument{}
		err = json.Unmarshal([]byte(repaired), &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedOutput, err)
	}

	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedOutput, err)
	}
	return &doc, nil
}

// Validate checks that every field the pipeline relies on is present.
func (d *GeneratedPlanDocument) Validate() error {
	var result *multierror.Error

	if strings.TrimSpace(d.Overview) == "" {
		result = multierror.Append(result, errors.New("overview is empty"))
	}

	if len(d.Timeline) == 0 {
		result = multierror.Append(result, errors.New("timeline is empty"))
	}
	for i, p := range d.Timeline {
		if strings.TrimSpace(p.Phase) == "" {
			result = multierror.Append(result, fmt.Errorf("timeline[%d]: phase is empty", i))
		}
	}

	if len(d.Budget) == 0 {
		result = multierror.Append(result, errors.New("budget is empty"))
	}
	for i, b := range d.Budget {
		if strings.TrimSpace(b.Category) == "" {
			result = multierror.Append(result, fmt.Errorf("budget[%d]: category is empty", i))
		}
		if b.Percentage < 0 || b.Percentage > 100 {
			result = multierror.Append(result, fmt.Errorf("budget[%d]: percentage %v out of range", i, b.Percentage))
		}
		if b.Amount < 0 {
			result = multierror.Append(result, fmt.Errorf("budget[%d]: negative amount", i))
		}
	}

	if len(d.Categories) == 0 {
		result = multierror.Append(result, errors.New("categories is empty"))
	}
	seen := make(map[string]bool, len(d.Categories))
	for i, c := range d.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			result = multierror.Append(result, fmt.Errorf("categories[%d]: name is empty", i))
			continue
		}
		if seen[name] {
			result = multierror.Append(result, fmt.Errorf("categories[%d]: duplicate name %q", i, name))
		}
		seen[name] = true
	}

	if len(d.TodoList) == 0 {
		result = multierror.Append(result, errors.New("todoList is empty"))
	}
	for i, t := range d.TodoList {
		if strings.TrimSpace(t.Title) == "" {
			result = multierror.Append(result, fmt.Errorf("todoList[%d]: title is empty", i))
		}
		if strings.TrimSpace(t.Category) == "" {
			result = multierror.Append(result, fmt.Errorf("todoList[%d]: category is empty", i))
		}
	}

	return result.ErrorOrNil()
}

// BudgetDrift reports how far the budget rows are from summing to 100 percent
// and to total.
func (d *GeneratedPlanDocument) BudgetDrift(total float64) (pctOff, amountOff float64) {
	var pct, amount float64
	for _, b := range d.Budget {
		pct += b.Percentage
		amount += b.Amount
	}
	return math.Abs(pct - 100), math.Abs(amount - total)
}
