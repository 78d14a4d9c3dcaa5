package gbr

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"sort"

	"github.com/rmera/boo"
	"github.com/rmera/boo/utils"
)

type TrainOptions struct {
	Bins         int
	RoundsGrid   []int
	LearningRate float64
	MaxDepth     int
}

type artifact struct {
	FeatureNames []string  `json:"feature_names"`
	BinMeans     []float64 `json:"bin_means"`
	Rounds       int       `json:"rounds"`
	ModelText    string    `json:"model_text"`
}

// Model regresses fantasy points with a gradient-boosted classifier over
// quantile bins of the target. A prediction is the probability-weighted
// average of the bin means, which smooths the discrete classes back into
// a continuous output.
type Model struct {
	featureNames []string
	binMeans     []float64
	rounds       int
	boost        *boo.MultiClass
}

func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		Bins:         8,
		RoundsGrid:   []int{20, 40, 60, 80},
		LearningRate: 0.08,
		MaxDepth:     4,
	}
}

func Train(samples [][]float64, labels []float64, featureNames []string, opts TrainOptions) (*Model, error) {
	if len(samples) == 0 || len(samples) != len(labels) {
		return nil, errors.New("invalid training dataset")
	}
	if len(samples[0]) == 0 {
		return nil, errors.New("empty feature vectors")
	}
	if len(featureNames) != len(samples[0]) {
		return nil, errors.New("feature name count does not match vector width")
	}
	if opts.Bins <= 1 {
		opts.Bins = DefaultTrainOptions().Bins
	}
	if len(opts.RoundsGrid) == 0 {
		opts.RoundsGrid = DefaultTrainOptions().RoundsGrid
	}
	if opts.LearningRate <= 0 {
		opts.LearningRate = DefaultTrainOptions().LearningRate
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultTrainOptions().MaxDepth
	}

	edges := quantileEdges(labels, opts.Bins)
	if len(edges) == 0 {
		return nil, errors.New("targets have no spread to bin")
	}
	binned := make([]int, len(labels))
	counts := make([]float64, len(edges)+1)
	sums := make([]float64, len(edges)+1)
	for i, v := range labels {
		b := binFor(v, edges)
		binned[i] = b
		counts[b]++
		sums[b] += v
	}
	binMeans := make([]float64, len(counts))
	for b := range counts {
		if counts[b] > 0 {
			binMeans[b] = sums[b] / counts[b]
		}
	}

	// Hold out the chronological tail so the round count is picked on
	// unseen games rather than training fit.
	cut := len(samples)
	if len(opts.RoundsGrid) > 1 && len(samples) >= 10 {
		cut = len(samples) * 8 / 10
	}

	var best *Model
	bestRMSE := math.Inf(1)
	for _, rounds := range opts.RoundsGrid {
		boost, err := fitBoost(samples[:cut], binned[:cut], featureNames, rounds, opts)
		if err != nil {
			continue
		}
		candidate := &Model{
			featureNames: append([]string(nil), featureNames...),
			binMeans:     binMeans,
			rounds:       rounds,
			boost:        boost,
		}
		if cut == len(samples) {
			return candidate, nil
		}
		sse := 0.0
		for i := cut; i < len(samples); i++ {
			d := candidate.PredictOne(samples[i]) - labels[i]
			sse += d * d
		}
		if rmse := math.Sqrt(sse / float64(len(samples)-cut)); rmse < bestRMSE {
			bestRMSE = rmse
			best = candidate
		}
	}
	if best == nil {
		return nil, errors.New("failed to train boosted model")
	}
	// Refit the winning configuration on the full dataset.
	boost, err := fitBoost(samples, binned, featureNames, best.rounds, opts)
	if err != nil {
		return best, nil
	}
	best.boost = boost
	return best, nil
}

func fitBoost(samples [][]float64, binned []int, featureNames []string, rounds int, opts TrainOptions) (*boo.MultiClass, error) {
	classSet := make(map[int]struct{})
	for _, b := range binned {
		classSet[b] = struct{}{}
	}
	if len(classSet) < 2 {
		return nil, errors.New("need at least two target bins")
	}

	o := boo.DefaultXOptions()
	o.Rounds = rounds
	o.LearningRate = opts.LearningRate
	o.MaxDepth = opts.MaxDepth
	o.Verbose = false
	o.EarlyStop = 0

	data := &utils.DataBunch{
		Data:   samples,
		Labels: binned,
		Keys:   featureNames,
	}
	boost := boo.NewMultiClass(data, o)
	if boost == nil {
		return nil, errors.New("boo returned nil model")
	}
	return boost, nil
}

// PredictOne decodes class probabilities into an expected value over the
// bin means.
func (m *Model) PredictOne(sample []float64) float64 {
	if m == nil || m.boost == nil {
		return 0
	}
	probs := m.boost.PredictSingle(sample)
	labels := m.boost.ClassLabels()
	sum := 0.0
	for i := range labels {
		if i >= len(probs) {
			break
		}
		b := labels[i]
		if b >= 0 && b < len(m.binMeans) {
			sum += probs[i] * m.binMeans[b]
		}
	}
	return sum
}

func (m *Model) PredictBatch(samples [][]float64) []float64 {
	out := make([]float64, len(samples))
	for i := range samples {
		out[i] = m.PredictOne(samples[i])
	}
	return out
}

func (m *Model) MarshalBinary() ([]byte, error) {
	if m == nil || m.boost == nil {
		return nil, errors.New("nil model")
	}
	var buf bytes.Buffer
	if err := boo.JSONMultiClass(m.boost, "softmax", &buf); err != nil {
		return nil, err
	}
	return json.Marshal(artifact{
		FeatureNames: m.featureNames,
		BinMeans:     m.binMeans,
		Rounds:       m.rounds,
		ModelText:    buf.String(),
	})
}

func UnmarshalBinary(blob []byte) (*Model, error) {
	if len(blob) == 0 {
		return nil, errors.New("empty artifact")
	}
	var a artifact
	if err := json.Unmarshal(blob, &a); err != nil {
		return nil, err
	}
	if len(a.BinMeans) == 0 {
		return nil, errors.New("invalid artifact")
	}
	reader := bufio.NewReader(bytes.NewReader([]byte(a.ModelText)))
	boost, err := boo.UnJSONMultiClass(reader)
	if err != nil {
		return nil, err
	}
	return &Model{
		featureNames: append([]string(nil), a.FeatureNames...),
		binMeans:     a.BinMeans,
		rounds:       a.Rounds,
		boost:        boost,
	}, nil
}

func (m *Model) FeatureNames() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.featureNames))
	copy(out, m.featureNames)
	return out
}

// quantileEdges returns interior cut points that split sorted targets into
// roughly equal-count bins, deduplicated when the target is lumpy.
func quantileEdges(labels []float64, bins int) []float64 {
	sorted := append([]float64(nil), labels...)
	sort.Float64s(sorted)

	var edges []float64
	for b := 1; b < bins; b++ {
		idx := len(sorted) * b / bins
		if idx >= len(sorted) {
			idx = len(sorted) - 1
		}
		edge := sorted[idx]
		if len(edges) == 0 || edge > edges[len(edges)-1] {
			edges = append(edges, edge)
		}
	}
	return edges
}

func binFor(v float64, edges []float64) int {
	for i, e := range edges {
		if v < e {
			return i
		}
	}
	return len(edges)
}
