package domain

import "errors"

var (
	// ErrSourceUnavailable means a bulk source (ranking, catalog) could not be read.
	// Fatal for the current cycle.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrEvidenceUnavailable means a per-symbol read failed. The symbol is skipped.
	ErrEvidenceUnavailable = errors.New("symbol evidence unavailable")

	// ErrInsufficientCandles means fewer candles than a window needs.
	ErrInsufficientCandles = errors.New("insufficient candles")
)
