package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"

	"benchcoach/internal/domain"
	"benchcoach/internal/factor"
	"benchcoach/internal/ml/ensemble"
	"benchcoach/internal/scoring"
	"benchcoach/internal/weights"
)

const recommendationCacheTTL = 6 * time.Hour

type SlateProvider interface {
	FetchSlate(ctx context.Context, date time.Time) (*domain.Slate, error)
}

type HistoryStore interface {
	UpsertScores(ctx context.Context, rows []domain.HistoryRow) error
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// ScoringService runs the daily pass: every analyzer over the slate, the
// weighted sum per player, tier assignment, and the ensemble overlay. A run
// always produces a recommendation for every roster player, whatever is
// missing or broken around it.
type ScoringService struct {
	tracer    trace.Tracer
	registry  *factor.Registry
	weights   *weights.Config
	engine    *scoring.Engine
	predictor *ensemble.Predictor
	slates    SlateProvider
	history   HistoryStore
	redis     RedisClient
}

func NewScoringService(
	tracer trace.Tracer,
	registry *factor.Registry,
	weightConfig *weights.Config,
	engine *scoring.Engine,
	predictor *ensemble.Predictor,
	slates SlateProvider,
	history HistoryStore,
	redisClient RedisClient,
) *ScoringService {
	return &ScoringService{
		tracer:    tracer,
		registry:  registry,
		weights:   weightConfig,
		engine:    engine,
		predictor: predictor,
		slates:    slates,
		history:   history,
		redis:     redisClient,
	}
}

// GetRecommendations returns the scored slate for a date, serving from the
// cache when a previous run is still fresh.
func (s *ScoringService) GetRecommendations(ctx context.Context, date time.Time) ([]domain.Recommendation, error) {
	ctx, span := s.tracer.Start(ctx, "scoring-service.get-recommendations")
	defer span.End()

	if s.redis != nil {
		if cached, err := s.getRecommendationCache(ctx, date); err != nil {
			log.Printf("redis cache read error: %v", err)
		} else if cached != nil {
			return cached, nil
		}
	}
	return s.ScoreDate(ctx, date)
}

// ScoreDate runs a full scoring pass for one date and refreshes the cache.
func (s *ScoringService) ScoreDate(ctx context.Context, date time.Time) ([]domain.Recommendation, error) {
	ctx, span := s.tracer.Start(ctx, "scoring-service.score-date")
	defer span.End()

	slate, err := s.slates.FetchSlate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("fetch slate: %w", err)
	}
	if len(slate.Roster) == 0 {
		return []domain.Recommendation{}, nil
	}

	scoresByPlayer := s.runAnalyzers(ctx, slate)

	recs := make([]domain.Recommendation, 0, len(slate.Roster))
	rows := make([]domain.HistoryRow, 0, len(slate.Roster))
	for _, p := range slate.Roster {
		factorScores := scoresByPlayer[p.ID]
		w := s.weights.Weights(p.ID)
		ps := s.engine.Score(p.ID, p.Name, domain.DateOnly(slate.Date), factorScores, w)

		rec := domain.Recommendation{
			PlayerID:       ps.PlayerID,
			PlayerName:     ps.PlayerName,
			GameDate:       ps.GameDate,
			FinalScore:     ps.FinalScore,
			Recommendation: ps.Recommendation.String(),
			Factors:        make(map[string]domain.FactorLine, len(factorScores)),
		}
		row := domain.HistoryRow{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			GameDate:   ps.GameDate,
			Scores:     make(map[string]float64, len(factorScores)),
		}
		for _, fs := range factorScores {
			rec.Factors[fs.Factor] = domain.FactorLine{
				Score:        fs.Value,
				Weight:       w.Weight(fs.Factor),
				Contribution: ps.Contributions[fs.Factor],
			}
			row.Scores[fs.Factor] = fs.Value
		}
		recs = append(recs, rec)
		rows = append(rows, row)
	}

	preds := s.predictor.PredictEnsemble(rows)
	for i := range recs {
		p := preds[i]
		recs[i].Ensemble = &p
	}

	if s.history != nil {
		if err := s.history.UpsertScores(ctx, rows); err != nil {
			log.Printf("history write failed for %s: %v", date.UTC().Format("2006-01-02"), err)
		}
	}
	if s.redis != nil {
		if err := s.setRecommendationCache(ctx, date, recs); err != nil {
			log.Printf("redis cache write error: %v", err)
		}
	}

	log.Printf("Scored %d players for %s", len(recs), date.UTC().Format("2006-01-02"))
	return recs, nil
}

// InvalidateDate drops a cached slate after a weight edit or calibration so
// the next read rescores with the new vector.
func (s *ScoringService) InvalidateDate(ctx context.Context, date time.Time) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, recommendationKey(date)).Err(); err != nil {
		log.Printf("redis cache invalidate error: %v", err)
	}
}

// runAnalyzers executes every registered analyzer and regroups the output
// by player. Registered analyzers are Safe-wrapped, so each contributes a
// value for every roster player and never returns an error.
func (s *ScoringService) runAnalyzers(ctx context.Context, slate *domain.Slate) map[string][]domain.FactorScore {
	byPlayer := make(map[string][]domain.FactorScore, len(slate.Roster))
	for _, a := range s.registry.Analyzers() {
		scores, err := a.Analyze(ctx, slate)
		if err != nil {
			log.Printf("factor %s returned an error past its wrapper: %v", a.Name(), err)
			continue
		}
		for _, fs := range scores {
			byPlayer[fs.PlayerID] = append(byPlayer[fs.PlayerID], fs)
		}
	}
	return byPlayer
}

func recommendationKey(date time.Time) string {
	return "recs:" + date.UTC().Format("2006-01-02")
}

func (s *ScoringService) setRecommendationCache(ctx context.Context, date time.Time, recs []domain.Recommendation) error {
	data, err := json.Marshal(recs)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, recommendationKey(date), data, recommendationCacheTTL).Err()
}

func (s *ScoringService) getRecommendationCache(ctx context.Context, date time.Time) ([]domain.Recommendation, error) {
	data, err := s.redis.Get(ctx, recommendationKey(date)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var recs []domain.Recommendation
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}
