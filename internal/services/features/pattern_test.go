package features

import (
	"errors"
	"testing"

	"FlowScan/internal/domain"
	"FlowScan/internal/domain/models"
)

func candle(o, h, l, c float64) models.Candle {
	return models.Candle{Open: o, High: h, Low: l, Close: c}
}

// confirmedWindow satisfies every rule of the swing-high rejection.
func confirmedWindow() models.CandleWindow {
	return models.CandleWindow{
		Left:    candle(10, 13, 9, 12),
		Middle:  candle(12, 15, 11, 11),
		Current: candle(11, 11, 8, 9),
	}
}

func TestSwingHighRejectionConfirmed(t *testing.T) {
	r := EvaluateSwingHighRejection(confirmedWindow())
	for i, ok := range r.Rules() {
		if !ok {
			t.Fatalf("rule %d failed on confirmed fixture", i+1)
		}
	}
	if !r.Confirmed() {
		t.Fatalf("expected confirmation")
	}
}

func TestSwingHighRejectionEachRuleSuppresses(t *testing.T) {
	cases := []struct {
		name   string
		rule   int
		mutate func(w *models.CandleWindow)
	}{
		{"current not bearish", 0, func(w *models.CandleWindow) { w.Current = candle(11, 12, 8, 12) }},
		{"left not bullish", 1, func(w *models.CandleWindow) { w.Left = candle(10.5, 13, 9, 9.4) }},
		{"no new high", 2, func(w *models.CandleWindow) { w.Middle.High = 13 }},
		{"high not rejected", 3, func(w *models.CandleWindow) { w.Middle = candle(13.5, 15, 11, 12.6) }},
		{"gave back the move", 4, func(w *models.CandleWindow) { w.Middle.Low = 10 }},
		{"no follow through", 5, func(w *models.CandleWindow) { w.Current.High = 15 }},
		{"middle body not smaller", 6, func(w *models.CandleWindow) { w.Middle = candle(12.9, 15, 10.5, 10.9) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := confirmedWindow()
			tc.mutate(&w)
			r := EvaluateSwingHighRejection(w)
			rules := r.Rules()
			for i, ok := range rules {
				if i == tc.rule && ok {
					t.Fatalf("rule %d should fail", i+1)
				}
				if i != tc.rule && !ok {
					t.Fatalf("rule %d failed but only rule %d was flipped", i+1, tc.rule+1)
				}
			}
			if r.Confirmed() {
				t.Fatalf("signal must be suppressed")
			}
		})
	}
}

func TestNewCandleWindowUsesNewestThree(t *testing.T) {
	w := confirmedWindow()
	oldest := candle(1, 2, 0.5, 1.5)
	got, err := NewCandleWindow([]models.Candle{oldest, w.Left, w.Middle, w.Current})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != w {
		t.Fatalf("window = %+v, want %+v", got, w)
	}
}

func TestNewCandleWindowInsufficient(t *testing.T) {
	_, err := NewCandleWindow([]models.Candle{candle(1, 1, 1, 1), candle(1, 1, 1, 1)})
	if !errors.Is(err, domain.ErrInsufficientCandles) {
		t.Fatalf("expected ErrInsufficientCandles, got %v", err)
	}
}
