package temporalworker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/activity"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/deebajee2009/OnlineExamBackEnd/internal/platform/logger"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/services"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/temporalx"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/temporalx/groupexam"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/temporalx/hardnessrefresh"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/utils"
)

// Runner hosts the task queue worker for group exam scoring and the hourly
// hardness refresh.
type Runner struct {
	log *logger.Logger

	tc       temporalsdkclient.Client
	scoring  services.ScoringService
	hardness services.HardnessService
}

func NewRunner(
	log *logger.Logger,
	tc temporalsdkclient.Client,
	scoring services.ScoringService,
	hardness services.HardnessService,
) (*Runner, error) {
	if tc == nil {
		return nil, fmt.Errorf("temporal client is not configured")
	}
	if scoring == nil || hardness == nil {
		return nil, fmt.Errorf("temporal worker missing deps")
	}
	return &Runner{
		log:      log,
		tc:       tc,
		scoring:  scoring,
		hardness: hardness,
	}, nil
}

func (r *Runner) Start(ctx context.Context) error {
	if r == nil || r.tc == nil {
		return fmt.Errorf("temporal worker not initialized")
	}

	cfg := temporalx.LoadConfig()
	if r.log != nil {
		r.log.Info("Starting Temporal worker", "address", cfg.Address, "namespace", cfg.Namespace, "task_queue", cfg.TaskQueue)
	}

	maxWait := utils.GetEnvAsDuration("TEMPORAL_WORKER_START_MAX_WAIT", 60*time.Second, r.log)
	backoff := 250 * time.Millisecond

	deadline := time.Now().Add(maxWait)
	for attempt := 1; ; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		w := r.newWorker(cfg)
		startErr := w.Start()
		if startErr == nil {
			go func() {
				<-ctx.Done()
				w.Stop()
			}()
			if r.log != nil {
				r.log.Info("Temporal worker started", "namespace", cfg.Namespace, "task_queue", cfg.TaskQueue, "attempts", attempt)
			}
			return r.startHardnessCron(ctx, cfg)
		}
		w.Stop()

		if maxWait <= 0 || time.Now().After(deadline) {
			var nfe *serviceerror.NamespaceNotFound
			if errors.As(startErr, &nfe) {
				return fmt.Errorf("temporal namespace not found (namespace=%s): %w", cfg.Namespace, startErr)
			}
			return startErr
		}

		if r.log != nil {
			r.log.Warn("Temporal worker failed to start; retrying", "namespace", cfg.Namespace, "task_queue", cfg.TaskQueue, "attempt", attempt, "error", startErr)
		}

		sleep := backoff << (attempt - 1)
		if sleep > 5*time.Second {
			sleep = 5 * time.Second
		}
		time.Sleep(sleep)
	}
}

func (r *Runner) newWorker(cfg temporalx.Config) worker.Worker {
	concurrency := utils.GetEnvAsInt("WORKER_CONCURRENCY", 4, r.log)
	if concurrency < 1 {
		concurrency = 1
	}

	w := worker.New(r.tc, cfg.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize:     concurrency,
		MaxConcurrentWorkflowTaskExecutionSize: concurrency,
	})

	scoreActs := &groupexam.Activities{Log: r.log, Scoring: r.scoring}
	w.RegisterWorkflowWithOptions(groupexam.Workflow, workflow.RegisterOptions{Name: groupexam.WorkflowName})
	w.RegisterActivityWithOptions(scoreActs.Score, activity.RegisterOptions{Name: groupexam.ActivityScore})

	refreshActs := &hardnessrefresh.Activities{Log: r.log, Hardness: r.hardness}
	w.RegisterWorkflowWithOptions(hardnessrefresh.Workflow, workflow.RegisterOptions{Name: hardnessrefresh.WorkflowName})
	w.RegisterActivityWithOptions(refreshActs.Refresh, activity.RegisterOptions{Name: hardnessrefresh.ActivityRefresh})

	return w
}

// startHardnessCron arms the hourly refresh. The fixed workflow ID means a
// second worker joining the queue leaves the existing cron in place.
func (r *Runner) startHardnessCron(ctx context.Context, cfg temporalx.Config) error {
	schedule := utils.GetEnv("HARDNESS_REFRESH_CRON", "@hourly", r.log)

	opts := temporalsdkclient.StartWorkflowOptions{
		ID:           hardnessrefresh.WorkflowID,
		TaskQueue:    cfg.TaskQueue,
		CronSchedule: schedule,
	}
	_, err := r.tc.ExecuteWorkflow(ctx, opts, hardnessrefresh.WorkflowName)
	if err != nil {
		var already *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &already) {
			return nil
		}
		return fmt.Errorf("start hardness refresh cron: %w", err)
	}

	if r.log != nil {
		r.log.Info("Hardness refresh cron armed", "schedule", schedule)
	}
	return nil
}
