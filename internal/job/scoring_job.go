package job

import (
	"context"
	"log"
	"time"

	"benchcoach/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type SlateScorer interface {
	ScoreDate(ctx context.Context, date time.Time) ([]domain.Recommendation, error)
}

// ScoringJob rescores the day's slate once per day at a fixed UTC hour.
type ScoringJob struct {
	tracer    trace.Tracer
	scorer    SlateScorer
	scoreHour int
}

func NewScoringJob(tracer trace.Tracer, scorer SlateScorer, scoreHourUTC int) *ScoringJob {
	if scoreHourUTC < 0 || scoreHourUTC > 23 {
		scoreHourUTC = 10
	}
	return &ScoringJob{tracer: tracer, scorer: scorer, scoreHour: scoreHourUTC}
}

func (j *ScoringJob) Start(ctx context.Context) {
	if j.scorer == nil {
		log.Println("Scoring job disabled: no scorer")
		<-ctx.Done()
		return
	}
	for {
		next := nextRunUTC(time.Now().UTC(), j.scoreHour)
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

func (j *ScoringJob) runOnce(ctx context.Context) {
	_, span := j.tracer.Start(ctx, "scoring-job.run-once")
	defer span.End()

	date := domain.DateOnly(time.Now().UTC())
	recs, err := j.scorer.ScoreDate(ctx, date)
	if err != nil {
		log.Printf("Daily scoring error: %v", err)
		return
	}
	log.Printf("Daily scoring complete date=%s players=%d", date.Format("2006-01-02"), len(recs))
}

func nextRunUTC(now time.Time, hour int) time.Time {
	run := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	if !run.After(now) {
		run = run.Add(24 * time.Hour)
	}
	return run
}
