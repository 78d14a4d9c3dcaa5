package service

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"go.opentelemetry.io/otel/trace"

	"benchcoach/internal/domain"
)

type GameLogProvider interface {
	FetchGameLogs(ctx context.Context, date time.Time) ([]domain.GameLog, error)
}

type OutcomeStore interface {
	UpsertOutcomes(ctx context.Context, logs []domain.GameLog) error
	ListUnresolvedDates(ctx context.Context, before time.Time) ([]time.Time, error)
}

// OutcomeService backfills realized fantasy points for past game dates so
// history rows become labeled training and calibration data.
type OutcomeService struct {
	tracer trace.Tracer
	logs   GameLogProvider
	store  OutcomeStore
}

func NewOutcomeService(tracer trace.Tracer, logs GameLogProvider, store OutcomeStore) *OutcomeService {
	return &OutcomeService{tracer: tracer, logs: logs, store: store}
}

// ResolvePending labels every unresolved date strictly before today. Dates
// whose box scores have not landed yet are skipped and retried next run.
func (s *OutcomeService) ResolvePending(ctx context.Context, now time.Time) (int, error) {
	ctx, span := s.tracer.Start(ctx, "outcome-service.resolve-pending")
	defer span.End()

	today := domain.DateOnly(now)
	dates, err := s.store.ListUnresolvedDates(ctx, today)
	if err != nil {
		return 0, err
	}

	resolved := 0
	for _, date := range dates {
		logs, err := s.logs.FetchGameLogs(ctx, date)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			log.Printf("outcome resolve failed for %s: %v", date.Format("2006-01-02"), err)
			continue
		}
		if len(logs) == 0 {
			continue
		}
		if err := s.store.UpsertOutcomes(ctx, logs); err != nil {
			log.Printf("outcome write failed for %s: %v", date.Format("2006-01-02"), err)
			continue
		}
		resolved += len(logs)
	}

	if resolved > 0 {
		log.Printf("Resolved outcomes for %d player-games", resolved)
	}
	return resolved, nil
}
