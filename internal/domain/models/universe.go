package models

// Candidate is one entry of the market-cap ranking, Rank is 1-based.
type Candidate struct {
	Symbol    string
	Name      string
	Rank      int
	MarketCap float64
}

// Instrument is one contract of the venue catalog.
type Instrument struct {
	Symbol       string
	BaseAsset    string
	QuoteAsset   string
	Status       string
	ContractType string
}

const (
	InstrumentTrading = "TRADING"
	ContractPerpetual = "PERPETUAL"
)
