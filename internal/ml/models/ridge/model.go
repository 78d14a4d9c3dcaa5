package ridge

import (
	"encoding/json"
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

type TrainOptions struct {
	// Lambdas is the regularization grid. With more than one value the
	// trainer holds out the chronological tail of the samples to pick one.
	Lambdas []float64
}

type Artifact struct {
	FeatureNames []string  `json:"feature_names"`
	Weights      []float64 `json:"weights"`
	Intercept    float64   `json:"intercept"`
	Means        []float64 `json:"means"`
	Stds         []float64 `json:"stds"`
	Lambda       float64   `json:"lambda"`
}

// Model is an L2-regularized linear regressor fit in closed form. Inputs
// are standardized with the training moments baked into the artifact.
type Model struct {
	artifact Artifact
}

func DefaultTrainOptions() TrainOptions {
	return TrainOptions{Lambdas: []float64{0.01, 0.1, 1.0, 10.0}}
}

func Train(samples [][]float64, labels []float64, featureNames []string, opts TrainOptions) (*Model, error) {
	if len(samples) == 0 || len(samples) != len(labels) {
		return nil, errors.New("invalid training dataset")
	}
	featCount := len(samples[0])
	if featCount == 0 {
		return nil, errors.New("empty feature vectors")
	}
	if len(opts.Lambdas) == 0 {
		opts.Lambdas = DefaultTrainOptions().Lambdas
	}
	if len(featureNames) != featCount {
		return nil, errors.New("feature name count does not match vector width")
	}

	lambda := opts.Lambdas[0]
	if len(opts.Lambdas) > 1 && len(samples) >= 10 {
		lambda = selectLambda(samples, labels, opts.Lambdas)
	}

	art, err := fit(samples, labels, lambda)
	if err != nil {
		return nil, err
	}
	art.FeatureNames = append([]string(nil), featureNames...)
	return &Model{artifact: art}, nil
}

// selectLambda holds out the last 20% of samples (the rows are assumed
// chronological) and picks the grid value with the lowest held-out RMSE.
func selectLambda(samples [][]float64, labels []float64, grid []float64) float64 {
	cut := len(samples) * 8 / 10
	trainX, trainY := samples[:cut], labels[:cut]
	valX, valY := samples[cut:], labels[cut:]

	best := grid[0]
	bestRMSE := math.Inf(1)
	for _, lambda := range grid {
		art, err := fit(trainX, trainY, lambda)
		if err != nil {
			continue
		}
		m := &Model{artifact: art}
		sse := 0.0
		for i := range valX {
			d := m.PredictOne(valX[i]) - valY[i]
			sse += d * d
		}
		rmse := math.Sqrt(sse / float64(len(valX)))
		if rmse < bestRMSE {
			bestRMSE = rmse
			best = lambda
		}
	}
	return best
}

func fit(samples [][]float64, labels []float64, lambda float64) (Artifact, error) {
	n := len(samples)
	p := len(samples[0])

	means := make([]float64, p)
	stds := make([]float64, p)
	for j := 0; j < p; j++ {
		for i := range samples {
			means[j] += samples[i][j]
		}
		means[j] /= float64(n)
		for i := range samples {
			d := samples[i][j] - means[j]
			stds[j] += d * d
		}
		stds[j] = math.Sqrt(stds[j] / float64(n))
		if stds[j] == 0 {
			stds[j] = 1
		}
	}

	yMean := 0.0
	for _, v := range labels {
		yMean += v
	}
	yMean /= float64(n)

	// Normal equations on standardized X and centered y. The ridge term
	// scales with n so lambda means the same thing at any corpus size.
	gram := mat.NewSymDense(p, nil)
	xty := make([]float64, p)
	z := make([]float64, p)
	for i := range samples {
		for j := 0; j < p; j++ {
			z[j] = (samples[i][j] - means[j]) / stds[j]
		}
		yc := labels[i] - yMean
		for j := 0; j < p; j++ {
			xty[j] += z[j] * yc
			for k := j; k < p; k++ {
				gram.SetSym(j, k, gram.At(j, k)+z[j]*z[k])
			}
		}
	}
	for j := 0; j < p; j++ {
		gram.SetSym(j, j, gram.At(j, j)+lambda*float64(n))
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(gram); !ok {
		return Artifact{}, errors.New("ridge system not positive definite")
	}
	var w mat.VecDense
	if err := chol.SolveVecTo(&w, mat.NewVecDense(p, xty)); err != nil {
		return Artifact{}, err
	}

	weights := make([]float64, p)
	for j := 0; j < p; j++ {
		weights[j] = w.AtVec(j)
	}
	return Artifact{
		Weights:   weights,
		Intercept: yMean,
		Means:     means,
		Stds:      stds,
		Lambda:    lambda,
	}, nil
}

func (m *Model) PredictOne(sample []float64) float64 {
	if m == nil || len(sample) != len(m.artifact.Weights) {
		return 0
	}
	sum := m.artifact.Intercept
	for j := range sample {
		sum += m.artifact.Weights[j] * (sample[j] - m.artifact.Means[j]) / m.artifact.Stds[j]
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
	if m == nil {
		return nil, errors.New("nil model")
	}
	return json.Marshal(m.artifact)
}

func UnmarshalBinary(data []byte) (*Model, error) {
	if len(data) == 0 {
		return nil, errors.New("empty artifact")
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	if len(a.Weights) == 0 || len(a.Weights) != len(a.Means) || len(a.Weights) != len(a.Stds) {
		return nil, errors.New("invalid artifact")
	}
	return &Model{artifact: a}, nil
}

func (m *Model) FeatureNames() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.artifact.FeatureNames))
	copy(out, m.artifact.FeatureNames)
	return out
}
