package groupexam

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// Workflow scores one group exam cohort. It runs after the exam deadline;
// the start delay is handled by the scheduler, not here.
func Workflow(ctx workflow.Context, templateID uint) error {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    30 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Minute,
			MaximumAttempts:    5,
		},
	})
	return workflow.ExecuteActivity(ctx, ActivityScore, templateID).Get(ctx, nil)
}
