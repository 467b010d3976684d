package source

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"assetwatch/internal/domain/model"
)

const yahooChartBase = "https://query1.finance.yahoo.com/v8/finance/chart"

// chartResponse is the slice of the Yahoo Finance chart payload we read.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				ShortName          string  `json:"shortName"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
			} `json:"meta"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"chart"`
}

// YahooEquity backs both the JP and US equity adapters; they differ only
// in the symbol suffix appended before the request.
type YahooEquity struct {
	client  *Client
	baseURL string
	name    string
	suffix  string // ".T" for Tokyo listings
}

// NewYahooJP quotes Tokyo-listed equities by four-digit code.
func NewYahooJP(c *Client, baseURL string) *YahooEquity {
	if baseURL == "" {
		baseURL = yahooChartBase
	}
	return &YahooEquity{client: c, baseURL: baseURL, name: "yahoo_jp", suffix: ".T"}
}

// NewYahooUS quotes US-listed equities by ticker.
func NewYahooUS(c *Client, baseURL string) *YahooEquity {
	if baseURL == "" {
		baseURL = yahooChartBase
	}
	return &YahooEquity{client: c, baseURL: baseURL, name: "yahoo_us"}
}

func (y *YahooEquity) Name() string { return y.name }

func (y *YahooEquity) Fetch(ctx context.Context, symbol string) (model.Quote, error) {
	url := fmt.Sprintf("%s/%s%s?range=1d&interval=1d", y.baseURL, symbol, y.suffix)

	var resp chartResponse
	if err := y.client.getJSON(ctx, url, &resp); err != nil {
		return model.Quote{}, err
	}
	return quoteFromChart(symbol, y.name, resp, true)
}

func quoteFromChart(symbol, sourceName string, resp chartResponse, withPrevClose bool) (model.Quote, error) {
	if len(resp.Chart.Result) == 0 {
		return model.Quote{}, fmt.Errorf("%w: %s: empty chart result for %q", model.ErrParseFailure, sourceName, symbol)
	}
	meta := resp.Chart.Result[0].Meta
	if meta.RegularMarketPrice <= 0 {
		return model.Quote{}, fmt.Errorf("%w: %s: no market price for %q", model.ErrParseFailure, sourceName, symbol)
	}

	q := model.Quote{
		Symbol:       symbol,
		Name:         meta.ShortName,
		CurrentPrice: decimal.NewFromFloat(meta.RegularMarketPrice),
		FetchedAt:    time.Now(),
		Source:       sourceName,
	}
	if q.Name == "" {
		q.Name = symbol
	}
	if withPrevClose && meta.ChartPreviousClose > 0 {
		prev := decimal.NewFromFloat(meta.ChartPreviousClose)
		q.PreviousClose = &prev
	}
	return q, nil
}

// FXSource quotes currency pairs through the same chart endpoint
// ("USDJPY=X" and friends). No previous close is attached: the rate is
// only used as a conversion factor.
type FXSource struct {
	client  *Client
	baseURL string
}

func NewFX(c *Client, baseURL string) *FXSource {
	if baseURL == "" {
		baseURL = yahooChartBase
	}
	return &FXSource{client: c, baseURL: baseURL}
}

func (f *FXSource) Name() string { return "yahoo_fx" }

func (f *FXSource) Fetch(ctx context.Context, pair string) (model.Quote, error) {
	url := fmt.Sprintf("%s/%s=X?range=1d&interval=1d", f.baseURL, pair)

	var resp chartResponse
	if err := f.client.getJSON(ctx, url, &resp); err != nil {
		return model.Quote{}, err
	}
	return quoteFromChart(pair, f.Name(), resp, false)
}
