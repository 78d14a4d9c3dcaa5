package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/trace"

	"benchcoach/internal/domain"
)

// FileSlateProvider reads daily slates from the data drop directory. The
// upstream feed writes one file per date, slate_YYYY-MM-DD.json, containing
// the roster plus every context block the analyzers read.
type FileSlateProvider struct {
	dataDir string
	tracer  trace.Tracer
}

func NewFileSlateProvider(tracer trace.Tracer, dataDir string) *FileSlateProvider {
	return &FileSlateProvider{dataDir: dataDir, tracer: tracer}
}

func (p *FileSlateProvider) slatePath(date time.Time) string {
	return filepath.Join(p.dataDir, fmt.Sprintf("slate_%s.json", date.UTC().Format("2006-01-02")))
}

// FetchSlate loads the slate for the given date. A missing file means no
// games that day, reported as os.ErrNotExist so callers can skip quietly.
func (p *FileSlateProvider) FetchSlate(ctx context.Context, date time.Time) (*domain.Slate, error) {
	_, span := p.tracer.Start(ctx, "slate.fetch")
	defer span.End()

	path := p.slatePath(date)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read slate %s: %w", path, err)
	}

	var slate domain.Slate
	if err := json.Unmarshal(raw, &slate); err != nil {
		return nil, fmt.Errorf("decode slate %s: %w", path, err)
	}
	if slate.Date.IsZero() {
		slate.Date = domain.DateOnly(date)
	}
	return &slate, nil
}

// FetchGameLogs loads the realized box scores for a date, written by the
// feed as logs_YYYY-MM-DD.json once games have gone final.
func (p *FileSlateProvider) FetchGameLogs(ctx context.Context, date time.Time) ([]domain.GameLog, error) {
	_, span := p.tracer.Start(ctx, "slate.fetch-game-logs")
	defer span.End()

	path := filepath.Join(p.dataDir, fmt.Sprintf("logs_%s.json", date.UTC().Format("2006-01-02")))
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read game logs %s: %w", path, err)
	}

	var logs []domain.GameLog
	if err := json.Unmarshal(raw, &logs); err != nil {
		return nil, fmt.Errorf("decode game logs %s: %w", path, err)
	}
	for i := range logs {
		if logs[i].GameDate.IsZero() {
			logs[i].GameDate = domain.DateOnly(date)
		}
	}
	return logs, nil
}
