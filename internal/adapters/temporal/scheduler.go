package temporaladapter

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/client"

	"github.com/arjunrs/saferoutes/internal/workflows"
)

// Scheduler implements ports.RetrainScheduler by starting the retraining
// workflow on Temporal. The workflow ID embeds the sample count so duplicate
// triggers for the same threshold collapse into one run.
type Scheduler struct {
	client    client.Client
	taskQueue string
}

// NewScheduler creates a scheduler over an existing Temporal client.
func NewScheduler(c client.Client, taskQueue string) *Scheduler {
	return &Scheduler{client: c, taskQueue: taskQueue}
}

// ScheduleRetrain starts a RetrainWorkflow run.
func (s *Scheduler) ScheduleRetrain(ctx context.Context, sampleCount int) error {
	opts := client.StartWorkflowOptions{
		ID:        fmt.Sprintf("retrain-%d", sampleCount),
		TaskQueue: s.taskQueue,
	}
	_, err := s.client.ExecuteWorkflow(ctx, opts, workflows.RetrainWorkflow, workflows.RetrainInput{
		ReportedSamples: sampleCount,
	})
	if err != nil {
		return fmt.Errorf("start retrain workflow: %w", err)
	}
	return nil
}
