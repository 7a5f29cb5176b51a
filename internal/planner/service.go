package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/weddingplanner/internal/llm"
	"github.com/Kerhoff/weddingplanner/internal/metrics"
	"github.com/Kerhoff/weddingplanner/internal/models"
	"github.com/Kerhoff/weddingplanner/internal/repository"
	"github.com/Kerhoff/weddingplanner/internal/tier"
)

const (
	defaultTimeout = 60 * time.Second
	temperature    = 0.7
)

// Generator turns wedding attributes into a persisted plan with tasks.
type Generator struct {
	users    repository.UserRepository
	weddings repository.WeddingRepository
	plans    repository.PlanRepository
	model    llm.Completer
	logger   *logrus.Logger

	policies tier.Table
	timeout  time.Duration
	metrics  *metrics.Metrics
	now      func() time.Time
}

// Option customizes a Generator.
type Option func(*Generator)

// WithPolicies replaces the default tier table.
func WithPolicies(t tier.Table) Option {
	return func(g *Generator) { g.policies = t }
}

// WithTimeout sets the ceiling on a single model call.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithMetrics records generation outcomes and model latency.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Generator) { g.metrics = m }
}

// WithClock overrides the time source used to resolve "now" due dates.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// NewGenerator creates a plan generator.
func NewGenerator(
	users repository.UserRepository,
	weddings repository.WeddingRepository,
	plans repository.PlanRepository,
	model llm.Completer,
	logger *logrus.Logger,
	opts ...Option,
) *Generator {
	g := &Generator{
		users:    users,
		weddings: weddings,
		plans:    plans,
		model:    model,
		logger:   logger,
		policies: tier.DefaultTable(),
		timeout:  defaultTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GeneratePlan runs one generation for weddingID on behalf of userID. On
// success the wedding's earlier plan, if any, has been replaced and the
// user's generation count has grown by one. On failure nothing is stored.
func (g *Generator) GeneratePlan(ctx context.Context, userID, weddingID uuid.UUID, attrs WeddingAttributes) (*models.Plan, error) {
	log := g.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"wedding_id": weddingID,
	})

	user, err := g.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}

	policy := g.policies.Resolve(tier.Parse(string(user.Subscription)))
	tierName := string(policy.Tier)
	log = log.WithField("tier", tierName)

	member, err := g.weddings.IsMember(ctx, weddingID, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if !member {
		return nil, fmt.Errorf("%w: wedding %s", ErrNotFound, weddingID)
	}

	if policy.RemainingGenerations(user.GeneratedCount) == 0 {
		g.metrics.RecordGeneration(tierName, metrics.OutcomeQuota)
		return nil, fmt.Errorf("%w: %d of %d used", ErrQuotaExceeded, user.GeneratedCount, policy.MaxGenerations)
	}

	if err := attrs.Validate(); err != nil {
		g.metrics.RecordGeneration(tierName, metrics.OutcomeRejected)
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	prompt, err := BuildPrompt(attrs, policy)
	if err != nil {
		g.metrics.RecordGeneration(tierName, metrics.OutcomeRejected)
		return nil, err
	}

	content, err := g.complete(ctx, policy, prompt)
	if err != nil {
		g.metrics.RecordGeneration(tierName, metrics.OutcomeUpstream)
		log.WithError(err).Error("Plan model call failed")
		return nil, err
	}

	doc, err := ParseDocument(content)
	if err != nil {
		g.metrics.RecordGeneration(tierName, metrics.OutcomeMalformed)
		log.WithError(err).WithField("content", StripCodeFences(content)).Error("Failed to parse generated plan")
		return nil, err
	}

	if pctOff, amountOff := doc.BudgetDrift(attrs.Budget); pctOff > 0.5 || amountOff > attrs.Budget*0.005 {
		log.WithFields(logrus.Fields{
			"percent_drift": pctOff,
			"amount_drift":  amountOff,
		}).Warn("Generated budget does not add up")
	}

	weddingDate, _ := attrs.Date()
	plan, tasks, err := g.materialize(doc, weddingDate)
	if err != nil {
		g.metrics.RecordGeneration(tierName, metrics.OutcomeMalformed)
		return nil, err
	}

	stored, err := g.plans.ReplaceForWedding(ctx, userID, weddingID, policy.MaxGenerations, plan, tasks)
	if errors.Is(err, repository.ErrLimitReached) {
		g.metrics.RecordGeneration(tierName, metrics.OutcomeQuota)
		log.WithError(err).Warn("Generation quota used up while generating")
		return nil, fmt.Errorf("%w: %w", ErrQuotaExceeded, err)
	}
	if err != nil {
		g.metrics.RecordGeneration(tierName, metrics.OutcomePersisting)
		log.WithError(err).Error("Failed to store generated plan")
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	result, err := g.plans.GetWithTasks(ctx, stored.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if result == nil {
		return nil, fmt.Errorf("%w: plan %s vanished after commit", ErrPersistence, stored.ID)
	}

	g.metrics.RecordGeneration(tierName, metrics.OutcomeSuccess)
	g.metrics.ObservePlanTasks(len(result.Tasks))
	log.WithFields(logrus.Fields{
		"plan_id": result.ID,
		"tasks":   len(result.Tasks),
	}).Info("Generated wedding plan")

	return result, nil
}

func (g *Generator) complete(ctx context.Context, policy tier.Policy, prompt Prompt) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	resp, err := g.model.Complete(callCtx, llm.Request{
		Model:       policy.Model,
		System:      prompt.System,
		User:        prompt.User,
		Temperature: temperature,
		MaxTokens:   policy.MaxOutputTokens,
		JSON:        true,
	})
	g.metrics.ObserveModel(policy.Model, time.Since(start))

	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
		}
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return resp.Content, nil
}

// materialize builds the plan row and its tasks. Task categories are coerced
// to the closed set; plan-level categories are stored as generated.
func (g *Generator) materialize(doc *GeneratedPlanDocument, weddingDate time.Time) (*models.Plan, []*models.Task, error) {
	budget, err := json.Marshal(doc.Budget)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrMalformedOutput, err)
	}
	timeline, err := json.Marshal(doc.Timeline)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrMalformedOutput, err)
	}
	categories, err := json.Marshal(doc.Categories)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrMalformedOutput, err)
	}

	plan := &models.Plan{
		ID:              uuid.New(),
		Overview:        doc.Overview,
		BudgetBreakdown: budget,
		Timeline:        timeline,
		Categories:      categories,
	}

	now := g.now()
	tasks := make([]*models.Task, 0, len(doc.TodoList))
	for i, item := range doc.TodoList {
		tasks = append(tasks, &models.Task{
			ID:          uuid.New(),
			PlanID:      plan.ID,
			Title:       item.Title,
			Description: item.Description,
			DueDate:     ResolveDueDate(item.DueDate, weddingDate, now),
			Category:    models.MapTaskCategory(item.Category),
			Position:    i,
		})
	}
	return plan, tasks, nil
}
