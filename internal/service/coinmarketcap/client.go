package coinmarketcap

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"FlowScan/internal/domain/models"
	xhttp "FlowScan/pkg/http"
)

const pathListingsLatest = "/v1/cryptocurrency/listings/latest"

// Client reads the market-cap ranking from the CoinMarketCap pro API.
type Client struct {
	baseURL string
	apiKey  string
	http    *xhttp.Client
}

type listingsResponse struct {
	Status struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
	Data []struct {
		Symbol  string `json:"symbol"`
		Name    string `json:"name"`
		CMCRank int    `json:"cmc_rank"`
		Quote   map[string]struct {
			MarketCap float64 `json:"market_cap"`
		} `json:"quote"`
	} `json:"data"`
}

func New(baseURL, apiKey string, timeout time.Duration, opts ...xhttp.ClientOption) *Client {
	opts = append([]xhttp.ClientOption{xhttp.WithTimeout(timeout)}, opts...)
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    xhttp.NewClient(opts...),
	}
}

// TopByMarketCap returns up to limit listings sorted by market cap, rank order preserved.
func (c *Client) TopByMarketCap(ctx context.Context, limit int) ([]models.Candidate, error) {
	var resp listingsResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + pathListingsLatest,
		Headers: map[string]string{
			"X-CMC_PRO_API_KEY": c.apiKey,
		},
		QueryParams: map[string][]string{
			"start":   {"1"},
			"limit":   {strconv.Itoa(limit)},
			"convert": {"USD"},
			"sort":    {"market_cap"},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("coinmarketcap listings: %w", err)
	}
	if resp.Status.ErrorCode != 0 {
		return nil, fmt.Errorf("coinmarketcap listings: %d %s", resp.Status.ErrorCode, resp.Status.ErrorMessage)
	}

	out := make([]models.Candidate, 0, len(resp.Data))
	for i, d := range resp.Data {
		rank := d.CMCRank
		if rank == 0 {
			rank = i + 1
		}
		out = append(out, models.Candidate{
			Symbol:    d.Symbol,
			Name:      d.Name,
			Rank:      rank,
			MarketCap: d.Quote["USD"].MarketCap,
		})
	}
	return out, nil
}
