package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Plan is a generated wedding plan persisted against a wedding. The budget,
// timeline and categories are stored as the JSON the model produced.
type Plan struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	WeddingID       uuid.UUID       `json:"weddingId" db:"wedding_id"`
	Overview        string          `json:"overview" db:"overview"`
	BudgetBreakdown json.RawMessage `json:"budgetBreakdown" db:"budget_breakdown"`
	Timeline        json.RawMessage `json:"timeline" db:"timeline"`
	Categories      json.RawMessage `json:"categories" db:"categories"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
	Tasks           []*Task         `json:"tasks"`
}

// PlanCategory is one entry of a plan's serialized category list.
type PlanCategory struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// CategoryList decodes the serialized categories. A plan without categories
// yields an empty list.
func (p *Plan) CategoryList() ([]PlanCategory, error) {
	var out []PlanCategory
	if len(p.Categories) == 0 || string(p.Categories) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(p.Categories, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CompletedCount returns the number of completed tasks
func (p *Plan) CompletedCount() int {
	n := 0
	for _, t := range p.Tasks {
		if t.IsCompleted {
			n++
		}
	}
	return n
}
