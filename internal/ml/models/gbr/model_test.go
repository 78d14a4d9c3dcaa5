package gbr

import (
	"testing"
)

func dataset() ([][]float64, []float64) {
	samples := make([][]float64, 0, 160)
	labels := make([]float64, 0, 160)
	for i := 0; i < 160; i++ {
		a := -2.0 + 4.0*float64(i)/159.0
		b := float64(i%5) - 2
		samples = append(samples, []float64{a, b})
		labels = append(labels, 6+4*a+0.5*b)
	}
	return samples, labels
}

func TestTrainPredictAndRoundTrip(t *testing.T) {
	samples, labels := dataset()
	model, err := Train(samples, labels, []string{"x1", "x2"}, TrainOptions{
		Bins:       6,
		RoundsGrid: []int{20},
	})
	if err != nil {
		t.Fatalf("train failed: %v", err)
	}

	pLow := model.PredictOne([]float64{-1.8, -1})
	pHigh := model.PredictOne([]float64{1.8, 1})
	if pHigh <= pLow {
		t.Fatalf("expected high input to outscore low input, got %.4f <= %.4f", pHigh, pLow)
	}
	// Expected-value decoding cannot leave the span of the bin means.
	if pLow < -3 || pHigh > 15 {
		t.Fatalf("predictions escaped target range: low=%.4f high=%.4f", pLow, pHigh)
	}

	blob, err := model.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	restored, err := UnmarshalBinary(blob)
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if got := restored.PredictOne([]float64{1.8, 1}); got != pHigh {
		t.Fatalf("round trip changed prediction: %.6f vs %.6f", got, pHigh)
	}
}

func TestTrainRejectsFlatTargets(t *testing.T) {
	samples := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	labels := []float64{7, 7, 7}
	if _, err := Train(samples, labels, []string{"x1", "x2"}, DefaultTrainOptions()); err == nil {
		t.Fatal("expected error for targets with no spread")
	}
}

func TestQuantileEdgesDeduplicate(t *testing.T) {
	labels := []float64{1, 1, 1, 1, 1, 1, 9}
	edges := quantileEdges(labels, 4)
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			t.Fatalf("edges not strictly increasing: %v", edges)
		}
	}
}
