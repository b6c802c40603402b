package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rhuss/promptly/pkg/api"
	"github.com/rhuss/promptly/pkg/observability"
	"github.com/rhuss/promptly/pkg/provider"
)

const workflowChain = "chain"

// Turn is one exchange of a prompt chain.
type Turn struct {
	Iteration int
	User      string
	System    string
	Response  string
}

// Chain submits user and system text, then feeds each response back as the
// next user text, for the given number of iterations. Each step depends on
// the previous one, so any error aborts the chain and no turns are returned.
func (e *Engine) Chain(ctx context.Context, user, system string, iterations int) ([]Turn, error) {
	if iterations < 1 {
		return nil, api.NewCallerContractError(fmt.Sprintf("iterations must be >= 1, got %d", iterations))
	}

	runID := api.NewRunID()
	logger := e.logger.With(zap.String("run_id", runID), zap.String("workflow", workflowChain))

	ctx, span := observability.StartWorkflowSpan(ctx, workflowChain, runID)
	defer span.End()
	ctx = provider.WithFailurePolicy(ctx, provider.PolicyStrict)

	turns := make([]Turn, 0, iterations)
	current := user
	for i := 1; i <= iterations; i++ {
		start := time.Now()
		response, err := e.provider.Complete(ctx, api.NewPrompt(current, system))
		observability.WorkflowPhaseDuration.WithLabelValues(workflowChain, "turn").Observe(time.Since(start).Seconds())
		if err != nil {
			observability.RecordError(span, err)
			observability.WorkflowRunsTotal.WithLabelValues(workflowChain, outcomeAborted).Inc()
			logger.Error("chain turn failed, aborting run", zap.Int("iteration", i), zap.Error(err))
			return nil, fmt.Errorf("chain turn %d: %w", i, err)
		}

		turns = append(turns, Turn{
			Iteration: i,
			User:      current,
			System:    system,
			Response:  response,
		})
		current = response
	}

	observability.WorkflowRunsTotal.WithLabelValues(workflowChain, outcomeCompleted).Inc()
	logger.Info("chain completed", zap.Int("iterations", iterations))
	return turns, nil
}
