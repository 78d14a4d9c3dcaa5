package ensemble

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"benchcoach/internal/domain"
	"benchcoach/internal/factor"
	"benchcoach/internal/ml/features"
	"benchcoach/internal/ml/models/gbr"
	"benchcoach/internal/ml/models/ridge"
	"benchcoach/internal/weights"
)

const (
	ridgeArtifact = "ridge_model.json"
	gbrArtifact   = "gbr_model.json"
	blendArtifact = "blend.json"

	blendWeightedSum = 0.30
	blendModelA      = 0.40
	blendModelB      = 0.30
)

// Blend is the third artifact of the triple: the mixing weights, the
// factor-weight dictionary the weighted sum was trained against, and the
// feature layout version the models expect.
type Blend struct {
	WeightedSum        float64            `json:"weighted_sum"`
	ModelA             float64            `json:"model_a"`
	ModelB             float64            `json:"model_b"`
	FactorWeights      map[string]float64 `json:"factor_weights"`
	FeatureSpecVersion string             `json:"feature_spec_version"`
	TrainedAt          time.Time          `json:"trained_at"`
}

func defaultBlend() Blend {
	return Blend{
		WeightedSum:   blendWeightedSum,
		ModelA:        blendModelA,
		ModelB:        blendModelB,
		FactorWeights: weights.Defaults().Map(),
	}
}

// Predictor blends the transparent weighted sum with the two trained
// regressors. It always answers: with no trained models every component
// falls back to the weighted sum, so the blend and its confidence stay
// well-defined.
type Predictor struct {
	mu       sync.RWMutex
	modelDir string
	blend    Blend
	modelA   *ridge.Model
	modelB   *gbr.Model
}

func NewPredictor(modelDir string) *Predictor {
	return &Predictor{modelDir: modelDir, blend: defaultBlend()}
}

// Trained reports whether at least one regression model is loaded.
func (p *Predictor) Trained() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.modelA != nil || p.modelB != nil
}

// Load reads whatever subset of the artifact triple exists. Missing or
// unreadable files degrade to the untrained state, never to an error the
// caller has to handle; the returned error covers I/O on present files
// only when the directory itself is unusable.
func (p *Predictor) Load() {
	blend := defaultBlend()
	var modelA *ridge.Model
	var modelB *gbr.Model

	if raw, err := os.ReadFile(filepath.Join(p.modelDir, blendArtifact)); err == nil {
		var loaded Blend
		if err := json.Unmarshal(raw, &loaded); err != nil {
			log.Printf("ensemble: unreadable %s, using defaults: %v", blendArtifact, err)
		} else if loaded.FeatureSpecVersion != features.FeatureSpecVersion() {
			log.Printf("ensemble: artifacts built for feature spec %q, want %q, staying untrained",
				loaded.FeatureSpecVersion, features.FeatureSpecVersion())
			p.install(blend, nil, nil)
			return
		} else {
			if loaded.WeightedSum+loaded.ModelA+loaded.ModelB == 0 {
				loaded.WeightedSum = blendWeightedSum
				loaded.ModelA = blendModelA
				loaded.ModelB = blendModelB
			}
			if len(loaded.FactorWeights) == 0 {
				loaded.FactorWeights = weights.Defaults().Map()
			}
			blend = loaded
		}
	}

	if raw, err := os.ReadFile(filepath.Join(p.modelDir, ridgeArtifact)); err == nil {
		m, err := ridge.UnmarshalBinary(raw)
		if err != nil {
			log.Printf("ensemble: unreadable %s, model A disabled: %v", ridgeArtifact, err)
		} else {
			modelA = m
		}
	}
	if raw, err := os.ReadFile(filepath.Join(p.modelDir, gbrArtifact)); err == nil {
		m, err := gbr.UnmarshalBinary(raw)
		if err != nil {
			log.Printf("ensemble: unreadable %s, model B disabled: %v", gbrArtifact, err)
		} else {
			modelB = m
		}
	}

	p.install(blend, modelA, modelB)
}

func (p *Predictor) install(blend Blend, modelA *ridge.Model, modelB *gbr.Model) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.blend = blend
	p.modelA = modelA
	p.modelB = modelB
}

// Save writes the artifact triple for the given trained pair. Files land
// in a staging directory first and move into place with renames, blend
// last, so a concurrent Load never sees models without their blend record.
func (p *Predictor) Save(modelA *ridge.Model, modelB *gbr.Model, factorWeights weights.Vector, trainedAt time.Time) error {
	if modelA == nil || modelB == nil {
		return errors.New("both models are required to save an artifact set")
	}
	aBlob, err := modelA.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal model A: %w", err)
	}
	bBlob, err := modelB.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal model B: %w", err)
	}
	blend := Blend{
		WeightedSum:        blendWeightedSum,
		ModelA:             blendModelA,
		ModelB:             blendModelB,
		FactorWeights:      factorWeights.Map(),
		FeatureSpecVersion: features.FeatureSpecVersion(),
		TrainedAt:          trainedAt.UTC(),
	}
	blendBlob, err := json.MarshalIndent(blend, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(p.modelDir, 0o755); err != nil {
		return err
	}
	staging, err := os.MkdirTemp(p.modelDir, ".staging-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(staging)

	files := []struct {
		name string
		blob []byte
	}{
		{ridgeArtifact, aBlob},
		{gbrArtifact, bBlob},
		{blendArtifact, blendBlob},
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(staging, f.name), f.blob, 0o644); err != nil {
			return err
		}
	}
	for _, f := range files {
		if err := os.Rename(filepath.Join(staging, f.name), filepath.Join(p.modelDir, f.name)); err != nil {
			return err
		}
	}

	p.install(blend, modelA, modelB)
	return nil
}

// PredictEnsemble scores a batch of factor-score rows. The weighted sum is
// built from the factor weights saved with the models so the three
// components always share one worldview.
func (p *Predictor) PredictEnsemble(rows []domain.HistoryRow) []domain.EnsemblePrediction {
	p.mu.RLock()
	blend := p.blend
	modelA := p.modelA
	modelB := p.modelB
	p.mu.RUnlock()

	out := make([]domain.EnsemblePrediction, 0, len(rows))
	for i := range rows {
		out = append(out, predictOne(rows[i], blend, modelA, modelB))
	}
	return out
}

func predictOne(row domain.HistoryRow, blend Blend, modelA *ridge.Model, modelB *gbr.Model) domain.EnsemblePrediction {
	ws := 0.0
	for _, name := range factor.Catalog {
		if v, ok := row.Scores[name]; ok {
			ws += v * blend.FactorWeights[name]
		}
	}

	predA := ws
	predB := ws
	if modelA != nil || modelB != nil {
		vec := features.Vector(row.Scores)
		if modelA != nil {
			predA = modelA.PredictOne(vec)
		}
		if modelB != nil {
			predB = modelB.PredictOne(vec)
		}
	}

	return domain.EnsemblePrediction{
		PlayerID:        row.PlayerID,
		PlayerName:      row.PlayerName,
		GameDate:        row.GameDate,
		PredWeightedSum: ws,
		PredModelA:      predA,
		PredModelB:      predB,
		PredEnsemble:    blend.Mix(ws, predA, predB),
		Confidence:      Confidence(ws, predA, predB),
	}
}

// Mix applies the convex blend to the three component predictions.
func (b Blend) Mix(ws, predA, predB float64) float64 {
	return b.WeightedSum*ws + b.ModelA*predA + b.ModelB*predB
}

// Confidence maps disagreement among the components to (0, 1]: identical
// predictions give 1.0 and the value decays as their variance grows.
func Confidence(ws, predA, predB float64) float64 {
	return 1 / (1 + stat.Variance([]float64{ws, predA, predB}, nil))
}
