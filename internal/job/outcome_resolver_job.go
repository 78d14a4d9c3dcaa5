package job

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel/trace"
)

type OutcomeResolver interface {
	ResolvePending(ctx context.Context, now time.Time) (int, error)
}

// OutcomeResolverJob periodically backfills fantasy-point outcomes for
// past scored dates so calibration and training have labeled history.
type OutcomeResolverJob struct {
	tracer       trace.Tracer
	resolver     OutcomeResolver
	pollInterval time.Duration
}

func NewOutcomeResolverJob(tracer trace.Tracer, resolver OutcomeResolver, pollInterval time.Duration) *OutcomeResolverJob {
	if pollInterval <= 0 {
		pollInterval = 30 * time.Minute
	}
	return &OutcomeResolverJob{tracer: tracer, resolver: resolver, pollInterval: pollInterval}
}

func (j *OutcomeResolverJob) Start(ctx context.Context) {
	if j.resolver == nil {
		log.Println("Outcome resolver job disabled: no resolver")
		<-ctx.Done()
		return
	}
	j.runOnce(ctx)
	ticker := time.NewTicker(j.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.runOnce(ctx)
		}
	}
}

func (j *OutcomeResolverJob) runOnce(ctx context.Context) {
	_, span := j.tracer.Start(ctx, "outcome-resolver-job.run-once")
	defer span.End()

	resolved, err := j.resolver.ResolvePending(ctx, time.Now().UTC())
	if err != nil {
		log.Printf("Outcome resolver error: %v", err)
		return
	}
	if resolved > 0 {
		log.Printf("Outcome resolver labeled %d game dates", resolved)
	}
}
