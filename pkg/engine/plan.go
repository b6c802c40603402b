package engine

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rhuss/promptly/pkg/api"
	"github.com/rhuss/promptly/pkg/debug"
	"github.com/rhuss/promptly/pkg/observability"
	"github.com/rhuss/promptly/pkg/provider"
)

// Prompt texts of the plan workflow.
const (
	PlanSystemPrompt = "You are a strategic planner."
	StepSystemPrompt = "You are an expert in this field."

	// StepCount is the number of step prompts issued in the fan-out phase.
	StepCount = 3
)

const (
	workflowPlan = "plan"

	phasePlan      = "plan"
	phaseFanOut    = "fan_out"
	phaseAggregate = "aggregate"

	outcomeCompleted = "completed"
	outcomeAborted   = "aborted"
)

// PlanResult is the outcome of one plan workflow run.
type PlanResult struct {
	RunID string
	Topic string

	// Plan is the answer of the plan phase.
	Plan string

	// Steps holds the step answers in submission order. A step that failed
	// under the default fan-out policy is "".
	Steps []string

	// Aggregate is Steps joined with "\n".
	Aggregate string
}

// PlanPrompt builds the plan phase prompt for topic.
func PlanPrompt(topic string) *api.Prompt {
	return api.NewPrompt("Create a detailed plan for the topic: "+topic, PlanSystemPrompt)
}

// StepPrompts builds the StepCount fan-out prompts, each embedding the full
// plan text.
func StepPrompts(plan string) []*api.Prompt {
	prompts := make([]*api.Prompt, StepCount)
	for i := range prompts {
		prompts[i] = api.NewPrompt(fmt.Sprintf("Step %d of the plan: %s", i+1, plan), StepSystemPrompt)
	}
	return prompts
}

// Aggregate joins step results with a newline in the order given.
func Aggregate(results []string) string {
	return strings.Join(results, "\n")
}

// ExecutePlan runs the plan workflow for topic:
//  1. request a plan and wait for it
//  2. issue StepCount step prompts concurrently, each embedding the plan
//  3. wait for all steps and join their answers in submission order
//
// An error in the plan phase aborts the run before any step is issued.
// A failed step degrades to "" unless Config.StrictFanOut is set.
func (e *Engine) ExecutePlan(ctx context.Context, topic string) (*PlanResult, error) {
	runID := api.NewRunID()
	logger := e.logger.With(zap.String("run_id", runID), zap.String("workflow", workflowPlan))

	ctx, span := observability.StartWorkflowSpan(ctx, workflowPlan, runID)
	defer span.End()

	// Providers report failures as errors; the phases below decide whether
	// a failure aborts the run or degrades a step.
	ctx = provider.WithFailurePolicy(ctx, provider.PolicyStrict)

	logger.Info("plan workflow started", zap.String("topic", topic))

	plan, err := e.planPhase(ctx, topic)
	if err != nil {
		observability.RecordError(span, err)
		observability.WorkflowRunsTotal.WithLabelValues(workflowPlan, outcomeAborted).Inc()
		logger.Error("plan phase failed, aborting run", zap.Error(err))
		return nil, fmt.Errorf("plan phase: %w", err)
	}
	debug.Log("engine", "plan received", zap.String("run_id", runID), zap.Int("plan_length", len(plan)))

	steps, err := e.fanOut(ctx, logger, StepPrompts(plan))
	if err != nil {
		observability.RecordError(span, err)
		observability.WorkflowRunsTotal.WithLabelValues(workflowPlan, outcomeAborted).Inc()
		logger.Error("fan-out phase failed, aborting run", zap.Error(err))
		return nil, fmt.Errorf("fan-out phase: %w", err)
	}

	start := time.Now()
	aggregate := Aggregate(steps)
	observability.WorkflowPhaseDuration.WithLabelValues(workflowPlan, phaseAggregate).Observe(time.Since(start).Seconds())

	observability.WorkflowRunsTotal.WithLabelValues(workflowPlan, outcomeCompleted).Inc()
	logger.Info("plan workflow completed", zap.Int("aggregate_length", len(aggregate)))

	return &PlanResult{
		RunID:     runID,
		Topic:     topic,
		Plan:      plan,
		Steps:     steps,
		Aggregate: aggregate,
	}, nil
}

func (e *Engine) planPhase(ctx context.Context, topic string) (string, error) {
	start := time.Now()
	defer func() {
		observability.WorkflowPhaseDuration.WithLabelValues(workflowPlan, phasePlan).Observe(time.Since(start).Seconds())
	}()

	ctx, span := observability.StartPhaseSpan(ctx, workflowPlan, phasePlan)
	defer span.End()

	plan, err := e.provider.Complete(ctx, PlanPrompt(topic))
	if err != nil {
		observability.RecordError(span, err)
		return "", err
	}
	return plan, nil
}

// fanOut submits all prompts concurrently and returns their answers indexed
// by submission order, independent of completion order.
func (e *Engine) fanOut(ctx context.Context, logger *zap.Logger, prompts []*api.Prompt) ([]string, error) {
	start := time.Now()
	defer func() {
		observability.WorkflowPhaseDuration.WithLabelValues(workflowPlan, phaseFanOut).Observe(time.Since(start).Seconds())
	}()

	ctx, span := observability.StartPhaseSpan(ctx, workflowPlan, phaseFanOut)
	defer span.End()

	results := make([]string, len(prompts))
	var degraded atomic.Bool
	g, gctx := errgroup.WithContext(ctx)

	for idx, prompt := range prompts {
		g.Go(func() error {
			observability.FanOutInFlight.Inc()
			defer observability.FanOutInFlight.Dec()

			text, err := e.provider.Complete(gctx, prompt)
			if err != nil {
				if e.cfg.StrictFanOut {
					return fmt.Errorf("step %d: %w", idx+1, err)
				}
				degraded.Store(true)
				logger.Warn("step failed, using empty result",
					zap.Int("step", idx+1),
					zap.String("kind", string(api.KindOf(err))),
					zap.Error(err))
				return nil
			}
			results[idx] = text
			debug.Log("engine", "step completed", zap.Int("step", idx+1), zap.Int("length", len(text)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	// A step degraded by cancellation would leave a hollow aggregate.
	if err := ctx.Err(); err != nil && degraded.Load() {
		observability.RecordError(span, err)
		return nil, err
	}

	return results, nil
}
