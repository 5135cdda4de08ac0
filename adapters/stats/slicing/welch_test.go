package slicing

import (
	"math"
	"testing"
)

func TestWelchTTest_ReferenceValues(t *testing.T) {
	slice := sampleSummary{mean: 0.9, std: 0.1, n: 500}
	base := sampleSummary{mean: 0.8, std: 0.1, n: 1500}

	got := welchTTest(slice, base)

	if math.Abs(got.tStat-19.36491673103708) > 1e-9 {
		t.Errorf("t = %v, want 19.36491673103708", got.tStat)
	}
	if math.Abs(got.df-855.4693352394565) > 1e-6 {
		t.Errorf("df = %v, want 855.4693352394565", got.df)
	}
	if math.Abs(got.pValue-7.356017854191938e-70)/7.356017854191938e-70 > 1e-6 {
		t.Errorf("p = %v, want 7.356017854191938e-70", got.pValue)
	}
}

func TestWelchTTest_Symmetric(t *testing.T) {
	a := sampleSummary{mean: 0.75, std: 0.2, n: 80}
	b := sampleSummary{mean: 0.8, std: 0.1, n: 400}

	ab := welchTTest(a, b)
	ba := welchTTest(b, a)

	if ab.tStat != -ba.tStat {
		t.Errorf("expected antisymmetric t, got %v and %v", ab.tStat, ba.tStat)
	}
	if ab.pValue != ba.pValue {
		t.Errorf("expected equal p-values, got %v and %v", ab.pValue, ba.pValue)
	}
	if ab.pValue <= 0 || ab.pValue >= 0.5 {
		t.Errorf("one-sided p-value out of range: %v", ab.pValue)
	}
}

func TestWelchTTest_Degenerate(t *testing.T) {
	tests := []struct {
		name  string
		slice sampleSummary
		base  sampleSummary
		wantP float64
	}{
		{"single example", sampleSummary{mean: 0.1, std: 0.1, n: 1}, sampleSummary{mean: 0.8, std: 0.1, n: 100}, 1},
		{"no examples", sampleSummary{mean: 0.1, std: 0.1, n: 0}, sampleSummary{mean: 0.8, std: 0.1, n: 100}, 1},
		{"zero variance tie", sampleSummary{mean: 0.8, n: 10}, sampleSummary{mean: 0.8, n: 100}, 1},
		{"zero variance gap", sampleSummary{mean: 0.7, n: 10}, sampleSummary{mean: 0.8, n: 100}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := welchTTest(tt.slice, tt.base)
			if got.pValue != tt.wantP {
				t.Errorf("p = %v, want %v", got.pValue, tt.wantP)
			}
		})
	}
}

func TestEffectSize(t *testing.T) {
	tests := []struct {
		name  string
		slice sampleSummary
		base  sampleSummary
		want  float64
	}{
		{"four sigma", sampleSummary{mean: 0.4, std: 0.1}, sampleSummary{mean: 0.8, std: 0.1}, 4},
		{"one sigma", sampleSummary{mean: 0.9, std: 0.1}, sampleSummary{mean: 0.8, std: 0.1}, 1},
		{"tie", sampleSummary{mean: 0.8}, sampleSummary{mean: 0.8}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := effectSize(tt.slice, tt.base); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("effectSize = %v, want %v", got, tt.want)
			}
		})
	}

	if got := effectSize(sampleSummary{mean: 0.7}, sampleSummary{mean: 0.8}); !math.IsInf(got, 1) {
		t.Errorf("expected +Inf for a gap without variance, got %v", got)
	}
}
