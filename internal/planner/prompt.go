package planner

import (
	"bytes"
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/Kerhoff/weddingplanner/internal/models"
	"github.com/Kerhoff/weddingplanner/internal/tier"
)

//go:embed prompt.tmpl
var promptTemplate string

var planPrompt = template.Must(template.New("plan").Parse(promptTemplate))

// SystemPrompt frames the model for every generation.
const SystemPrompt = "You are a professional wedding planner who creates detailed, personalized wedding plans " +
	"based on a couple's religion, cultural background and preferences. You always answer with a single JSON object."

// notProvided replaces optional attributes the caller left empty, so the
// model sees an explicit marker instead of a missing line.
const notProvided = "None"

// Prompt is the rendered instruction pair sent to the model.
type Prompt struct {
	System string
	User   string
}

type promptData struct {
	Partner1Name       string
	Partner2Name       string
	CulturalBackground string
	Religion           string
	Email              string
	PhoneNumber        string
	Date               string
	Country            string
	State              string
	Budget             string
	GuestCount         int
	Theme              string
	SpecialRequests    string
	CategoryVocabulary string
	Policy             tier.Policy
}

// BuildPrompt renders the generation prompt for attrs under policy p.
// Special requests are only rendered when the policy allows them.
func BuildPrompt(attrs WeddingAttributes, p tier.Policy) (Prompt, error) {
	date, err := attrs.Date()
	if err != nil {
		return Prompt{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	special := notProvided
	if p.AllowSpecialRequests {
		special = orNone(attrs.SpecialRequests)
	}

	data := promptData{
		Partner1Name:       orNone(attrs.Partner1Name),
		Partner2Name:       orNone(attrs.Partner2Name),
		CulturalBackground: orNone(attrs.CulturalBackground),
		Religion:           orNone(attrs.Religion),
		Email:              orNone(attrs.Email),
		PhoneNumber:        orNone(attrs.PhoneNumber),
		Date:               date.Format(dateLayout),
		Country:            orNone(attrs.Country),
		State:              orNone(attrs.State),
		Budget:             FormatAmount(attrs.Budget),
		GuestCount:         attrs.GuestCount,
		Theme:              orNone(attrs.Theme),
		SpecialRequests:    special,
		CategoryVocabulary: categoryVocabulary(p),
		Policy:             p,
	}

	var buf bytes.Buffer
	if err := planPrompt.Execute(&buf, data); err != nil {
		return Prompt{}, fmt.Errorf("failed to render prompt: %w", err)
	}

	return Prompt{System: SystemPrompt, User: buf.String()}, nil
}

// FormatAmount prints a budget figure without a trailing fraction when it is
// whole, e.g. 30000 rather than 30000.00.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func categoryVocabulary(p tier.Policy) string {
	var names []string
	for _, c := range models.TaskCategories() {
		if !p.IncludeCulturalPrompting && (c == models.CategoryCultural || c == models.CategoryReligious) {
			continue
		}
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

func orNone(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return notProvided
	}
	return s
}
