// Package tier maps a subscription level to the generation parameters and
// feature gates it buys.
package tier

import "strings"

// Tier is the caller's subscription level
type Tier string

const (
	Basic   Tier = "BASIC"
	Premium Tier = "PREMIUM"
)

// Parse converts a stored subscription value into a Tier. Unknown values
// become Basic, the most restrictive tier.
func Parse(s string) Tier {
	switch Tier(strings.ToUpper(strings.TrimSpace(s))) {
	case Premium:
		return Premium
	default:
		return Basic
	}
}

// Policy is everything a tier decides about plan generation.
type Policy struct {
	Tier                     Tier
	Model                    string
	MaxOutputTokens          int
	IncludeCulturalPrompting bool
	MinTasksPerCategory      int
	MaxTasks                 int
	AllowSpecialRequests     bool
	ConcreteDueDates         bool
	MaxGenerations           int
}

// RemainingGenerations returns how many more plans the user may generate.
func (p Policy) RemainingGenerations(used int) int {
	if left := p.MaxGenerations - used; left > 0 {
		return left
	}
	return 0
}

// Table maps tiers to policies.
type Table map[Tier]Policy

// DefaultTable returns the built-in policies.
func DefaultTable() Table {
	return Table{
		Basic: {
			Tier:                     Basic,
			Model:                    "gpt-4o-mini",
			MaxOutputTokens:          2000,
			IncludeCulturalPrompting: false,
			MinTasksPerCategory:      2,
			MaxTasks:                 15,
			AllowSpecialRequests:     false,
			ConcreteDueDates:         false,
			MaxGenerations:           3,
		},
		Premium: {
			Tier:                     Premium,
			Model:                    "gpt-4o",
			MaxOutputTokens:          4000,
			IncludeCulturalPrompting: true,
			MinTasksPerCategory:      5,
			MaxTasks:                 30,
			AllowSpecialRequests:     true,
			ConcreteDueDates:         true,
			MaxGenerations:           10,
		},
	}
}

// Resolve returns the policy for t. Tiers missing from the table fall back to
// the Basic row, and a table without a Basic row falls back to the default
// Basic policy, so Resolve never fails.
func (tb Table) Resolve(t Tier) Policy {
	if p, ok := tb[t]; ok {
		return p
	}
	if p, ok := tb[Basic]; ok {
		return p
	}
	return DefaultTable()[Basic]
}

// WithModels returns a copy of the table with the model ids replaced. Empty
// arguments keep the existing model.
func (tb Table) WithModels(basic, premium string) Table {
	out := make(Table, len(tb))
	for k, v := range tb {
		out[k] = v
	}
	if p, ok := out[Basic]; ok && basic != "" {
		p.Model = basic
		out[Basic] = p
	}
	if p, ok := out[Premium]; ok && premium != "" {
		p.Model = premium
		out[Premium] = p
	}
	return out
}

// Resolve looks t up in the default table.
func Resolve(t Tier) Policy {
	return DefaultTable().Resolve(t)
}
