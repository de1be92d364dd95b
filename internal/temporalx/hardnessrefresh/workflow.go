package hardnessrefresh

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// Workflow recomputes question hardness across the whole bank. It is started
// on a cron schedule; each run is a single activity.
func Workflow(ctx workflow.Context) error {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Minute,
		HeartbeatTimeout:    time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Minute,
			BackoffCoefficient: 2.0,
			MaximumInterval:    15 * time.Minute,
			MaximumAttempts:    3,
		},
	})
	return workflow.ExecuteActivity(ctx, ActivityRefresh).Get(ctx, nil)
}
