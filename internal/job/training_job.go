package job

import (
	"context"
	"log"
	"time"

	"benchcoach/internal/ml/training"

	"go.opentelemetry.io/otel/trace"
)

type ModelTrainer interface {
	TrainAll(ctx context.Context, now time.Time) (training.TrainResult, error)
}

// TrainingJob retrains the ensemble models once per day at a fixed UTC hour.
type TrainingJob struct {
	tracer    trace.Tracer
	trainer   ModelTrainer
	trainHour int
}

func NewTrainingJob(tracer trace.Tracer, trainer ModelTrainer, trainHourUTC int) *TrainingJob {
	if trainHourUTC < 0 || trainHourUTC > 23 {
		trainHourUTC = 4
	}
	return &TrainingJob{tracer: tracer, trainer: trainer, trainHour: trainHourUTC}
}

func (j *TrainingJob) Start(ctx context.Context) {
	if j.trainer == nil {
		log.Println("Training job disabled: no trainer")
		<-ctx.Done()
		return
	}
	for {
		next := nextRunUTC(time.Now().UTC(), j.trainHour)
		wait := time.Until(next)
		if wait < time.Second {
			wait = time.Second
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			j.runOnce(ctx)
		}
	}
}

func (j *TrainingJob) runOnce(ctx context.Context) {
	_, span := j.tracer.Start(ctx, "training-job.run-once")
	defer span.End()

	result, err := j.trainer.TrainAll(ctx, time.Now().UTC())
	if err != nil {
		log.Printf("Model training error: %v", err)
		return
	}
	log.Printf(
		"Model training complete samples=%d outliers=%d test=%d rmse_a=%.3f rmse_b=%.3f",
		result.Samples, result.Outliers, result.TestCount,
		result.MetricsA["rmse"], result.MetricsB["rmse"],
	)
}
