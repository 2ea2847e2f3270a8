package binance

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"FlowScan/internal/domain/models"
	xhttp "FlowScan/pkg/http"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

const (
	pathExchangeInfo = "/fapi/v1/exchangeInfo"
	pathDepth        = "/fapi/v1/depth"
	pathAggTrades    = "/fapi/v1/aggTrades"
	pathKlines       = "/fapi/v1/klines"

	maxKlines = 1500
)

// Client reads the public USDT-M futures REST API. It is both the instrument
// catalog and the per-symbol market data source.
type Client struct {
	baseURL string
	http    *xhttp.Client
}

// New creates a Binance futures client. Every read is bounded by timeout.
func New(baseURL string, timeout time.Duration, opts ...xhttp.ClientOption) *Client {
	opts = append([]xhttp.ClientOption{xhttp.WithTimeout(timeout)}, opts...)
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    xhttp.NewClient(opts...),
	}
}

// Instruments returns every contract listed by exchangeInfo, in catalog order.
func (c *Client) Instruments(ctx context.Context) ([]models.Instrument, error) {
	body, err := c.http.GetBytes(ctx, c.baseURL+pathExchangeInfo, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("binance exchangeInfo: %w", err)
	}
	symbols := gjson.GetBytes(body, "symbols")
	if !symbols.IsArray() {
		return nil, fmt.Errorf("binance exchangeInfo: missing symbols array")
	}

	out := make([]models.Instrument, 0, len(symbols.Array()))
	symbols.ForEach(func(_, s gjson.Result) bool {
		out = append(out, models.Instrument{
			Symbol:       s.Get("symbol").String(),
			BaseAsset:    s.Get("baseAsset").String(),
			QuoteAsset:   s.Get("quoteAsset").String(),
			Status:       s.Get("status").String(),
			ContractType: s.Get("contractType").String(),
		})
		return true
	})
	return out, nil
}

// OrderBook returns the depth snapshot for symbol.
func (c *Client) OrderBook(ctx context.Context, symbol string, depth int) (models.OrderBook, error) {
	body, err := c.http.GetBytes(ctx, c.baseURL+pathDepth, map[string][]string{
		"symbol": {symbol},
		"limit":  {strconv.Itoa(depth)},
	}, nil)
	if err != nil {
		return models.OrderBook{}, fmt.Errorf("binance depth %s: %w", symbol, err)
	}

	bids, err := parseLevels(gjson.GetBytes(body, "bids"))
	if err != nil {
		return models.OrderBook{}, fmt.Errorf("binance depth %s bids: %w", symbol, err)
	}
	asks, err := parseLevels(gjson.GetBytes(body, "asks"))
	if err != nil {
		return models.OrderBook{}, fmt.Errorf("binance depth %s asks: %w", symbol, err)
	}
	return models.OrderBook{Bids: bids, Asks: asks}, nil
}

// AggTrades returns the most recent aggregated trades for symbol, oldest first.
func (c *Client) AggTrades(ctx context.Context, symbol string, limit int) ([]models.AggTrade, error) {
	body, err := c.http.GetBytes(ctx, c.baseURL+pathAggTrades, map[string][]string{
		"symbol": {symbol},
		"limit":  {strconv.Itoa(limit)},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("binance aggTrades %s: %w", symbol, err)
	}

	res := gjson.ParseBytes(body)
	if !res.IsArray() {
		return nil, fmt.Errorf("binance aggTrades %s: unexpected payload", symbol)
	}
	rows := res.Array()
	out := make([]models.AggTrade, 0, len(rows))
	for _, row := range rows {
		price, err := decimal.NewFromString(row.Get("p").String())
		if err != nil {
			return nil, fmt.Errorf("binance aggTrades %s price: %w", symbol, err)
		}
		qty, err := decimal.NewFromString(row.Get("q").String())
		if err != nil {
			return nil, fmt.Errorf("binance aggTrades %s qty: %w", symbol, err)
		}
		out = append(out, models.AggTrade{Price: price, Quantity: qty, BuyerIsMaker: row.Get("m").Bool()})
	}
	return out, nil
}

// Candles returns the last limit klines, newest (still forming) last.
func (c *Client) Candles(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	body, err := c.http.GetBytes(ctx, c.baseURL+pathKlines, map[string][]string{
		"symbol":   {symbol},
		"interval": {interval},
		"limit":    {strconv.Itoa(min(limit, maxKlines))},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("binance klines %s: %w", symbol, err)
	}

	res := gjson.ParseBytes(body)
	if !res.IsArray() {
		return nil, fmt.Errorf("binance klines %s: unexpected payload", symbol)
	}
	rows := res.Array()
	out := make([]models.Candle, 0, len(rows))
	for i, v := range rows {
		row := v.Array()
		if len(row) < 6 {
			return nil, fmt.Errorf("binance klines %s: row %d has %d fields", symbol, i, len(row))
		}
		var ohlcv [5]float64
		for k := range ohlcv {
			f, err := strconv.ParseFloat(row[k+1].String(), 64)
			if err != nil {
				return nil, fmt.Errorf("binance klines %s: row %d field %d: %w", symbol, i, k+1, err)
			}
			ohlcv[k] = f
		}
		out = append(out, models.Candle{
			OpenTime: time.UnixMilli(row[0].Int()).UTC(),
			Open:     ohlcv[0],
			High:     ohlcv[1],
			Low:      ohlcv[2],
			Close:    ohlcv[3],
			Volume:   ohlcv[4],
		})
	}
	return out, nil
}

func parseLevels(arr gjson.Result) ([]models.BookLevel, error) {
	if !arr.Exists() {
		return nil, nil
	}
	rows := arr.Array()
	out := make([]models.BookLevel, 0, len(rows))
	for _, v := range rows {
		pair := v.Array()
		if len(pair) < 2 {
			return nil, fmt.Errorf("malformed level %s", v.Raw)
		}
		price, err := decimal.NewFromString(pair[0].String())
		if err != nil {
			return nil, fmt.Errorf("price: %w", err)
		}
		qty, err := decimal.NewFromString(pair[1].String())
		if err != nil {
			return nil, fmt.Errorf("quantity: %w", err)
		}
		out = append(out, models.BookLevel{Price: price, Quantity: qty})
	}
	return out, nil
}
