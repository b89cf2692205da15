package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/arjunrs/saferoutes/internal/adapters/mlsvc"
	natsadapter "github.com/arjunrs/saferoutes/internal/adapters/nats"
)

// RetrainActivities holds the activity implementations for the retraining
// workflow.
type RetrainActivities struct {
	ML        *mlsvc.Client
	Publisher *natsadapter.Publisher
}

// CountTrainingSamples asks the sidecar how many samples it holds.
func (a *RetrainActivities) CountTrainingSamples(ctx context.Context) (int, error) {
	count, err := a.ML.SampleCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("sample count: %w", err)
	}
	return count, nil
}

// TriggerRetraining starts a training run on the sidecar.
func (a *RetrainActivities) TriggerRetraining(ctx context.Context) error {
	if err := a.ML.Retrain(ctx); err != nil {
		return fmt.Errorf("trigger retraining: %w", err)
	}
	return nil
}

// AnnounceModelUpdate publishes a model_updated event.
func (a *RetrainActivities) AnnounceModelUpdate(ctx context.Context, sampleCount int) error {
	if a.Publisher == nil {
		return nil
	}
	event := struct {
		Samples int       `json:"samples"`
		At      time.Time `json:"at"`
	}{Samples: sampleCount, At: time.Now().UTC()}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return a.Publisher.PublishModelUpdated(ctx, data)
}
