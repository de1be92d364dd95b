package temporalx

import (
	"context"
	"fmt"
	"time"

	enums "go.temporal.io/api/enums/v1"
	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/deebajee2009/OnlineExamBackEnd/internal/platform/logger"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/temporalx/groupexam"
)

// Scheduler arms deferred group-exam scoring on Temporal. The workflow ID is
// derived from the template, and TERMINATE_IF_RUNNING makes a reschedule
// replace the previously armed run instead of adding a second one.
type Scheduler struct {
	tc        temporalsdkclient.Client
	taskQueue string
	log       *logger.Logger
}

func NewScheduler(tc temporalsdkclient.Client, log *logger.Logger) (*Scheduler, error) {
	if tc == nil {
		return nil, fmt.Errorf("temporal client is not configured")
	}
	cfg := LoadConfig()
	return &Scheduler{
		tc:        tc,
		taskQueue: cfg.TaskQueue,
		log:       log.With("service", "GroupExamScheduler"),
	}, nil
}

func (s *Scheduler) ScheduleGroupExamScoring(ctx context.Context, templateID uint, runAt time.Time) error {
	delay := time.Until(runAt)
	if delay < 0 {
		delay = 0
	}

	opts := temporalsdkclient.StartWorkflowOptions{
		ID:                    groupexam.WorkflowID(templateID),
		TaskQueue:             s.taskQueue,
		StartDelay:            delay,
		WorkflowIDReusePolicy: enums.WORKFLOW_ID_REUSE_POLICY_TERMINATE_IF_RUNNING,
	}
	run, err := s.tc.ExecuteWorkflow(ctx, opts, groupexam.WorkflowName, templateID)
	if err != nil {
		return fmt.Errorf("schedule group exam scoring: %w", err)
	}

	s.log.Info("Group exam scoring armed",
		"journey_template_id", templateID,
		"workflow_id", run.GetID(),
		"run_at", runAt)
	return nil
}
