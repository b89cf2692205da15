package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// RetrainInput is the input for the retraining workflow.
type RetrainInput struct {
	// ReportedSamples is the unsafe-segment count that triggered the run.
	ReportedSamples int
}

// RetrainWorkflow orchestrates one model retraining run: verify the sidecar
// has enough samples, trigger training, and announce the new model on the
// broker so interested consumers can refresh.
func RetrainWorkflow(ctx workflow.Context, input RetrainInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting retrain workflow", "reportedSamples", input.ReportedSamples)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: confirm the sidecar actually has a training set.
	var sampleCount int
	if err := workflow.ExecuteActivity(ctx, "CountTrainingSamples").Get(ctx, &sampleCount); err != nil {
		return err
	}
	if sampleCount < input.ReportedSamples/2 {
		// The sidecar lost samples (restart, pruning); train anyway but
		// flag it.
		logger.Warn("sidecar sample count lower than reported", "sidecar", sampleCount, "reported", input.ReportedSamples)
	}

	// Step 2: kick off training.
	if err := workflow.ExecuteActivity(ctx, "TriggerRetraining").Get(ctx, nil); err != nil {
		return err
	}

	// Step 3: announce the refreshed model.
	if err := workflow.ExecuteActivity(ctx, "AnnounceModelUpdate", sampleCount).Get(ctx, nil); err != nil {
		logger.Warn("model update announcement failed", "error", err)
		// The model is already trained; do not fail the run.
	}

	logger.Info("Retrain workflow finished", "samples", sampleCount)
	return nil
}
