package features

import (
	"fmt"

	"FlowScan/internal/domain"
	"FlowScan/internal/domain/models"
)

// WindowSize is the number of candles the swing-high rejection looks at.
const WindowSize = 3

// NewCandleWindow takes the three newest candles; older ones are ignored.
func NewCandleWindow(candles []models.Candle) (models.CandleWindow, error) {
	if len(candles) < WindowSize {
		return models.CandleWindow{}, fmt.Errorf("%w: have %d, need %d", domain.ErrInsufficientCandles, len(candles), WindowSize)
	}
	n := len(candles)
	return models.CandleWindow{
		Left:    candles[n-3],
		Middle:  candles[n-2],
		Current: candles[n-1],
	}, nil
}

// SwingHighRejection holds the outcome of every rule for one window.
type SwingHighRejection struct {
	CurrentBearish bool // live candle trades below its open
	LeftBullish    bool
	NewHigh        bool // middle high above left high
	HighRejected   bool // middle body top back below left high
	HeldAboveOpen  bool // middle low above left open
	FollowThrough  bool // current high below middle high
	WeakMiddle     bool // middle body smaller than left body
}

// EvaluateSwingHighRejection runs every rule against w.
func EvaluateSwingHighRejection(w models.CandleWindow) SwingHighRejection {
	l, m, c := w.Left, w.Middle, w.Current
	return SwingHighRejection{
		CurrentBearish: c.Bearish(),
		LeftBullish:    l.Bullish(),
		NewHigh:        m.High > l.High,
		HighRejected:   m.BodyTop() < l.High,
		HeldAboveOpen:  m.Low > l.Open,
		FollowThrough:  c.High < m.High,
		WeakMiddle:     m.BodySize() < l.BodySize(),
	}
}

// Rules returns the rule outcomes in evaluation order.
func (r SwingHighRejection) Rules() [7]bool {
	return [7]bool{
		r.CurrentBearish,
		r.LeftBullish,
		r.NewHigh,
		r.HighRejected,
		r.HeldAboveOpen,
		r.FollowThrough,
		r.WeakMiddle,
	}
}

// Confirmed is true only when every rule holds.
func (r SwingHighRejection) Confirmed() bool {
	for _, ok := range r.Rules() {
		if !ok {
			return false
		}
	}
	return true
}
