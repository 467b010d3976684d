package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"assetwatch/internal/domain/model"
)

const rakutenBase = "https://www.rakuten-sec.co.jp/web/fund/detail/"

// fundCodes maps the display names users register to Rakuten fund IDs.
var fundCodes = map[string]string{
	"S&P500": "2558",
	"オルカン":   "03311187",
	"FANG+":  "03312187",
}

// Rakuten scrapes the Rakuten Securities fund page for a fund's net asset
// value. Symbols are either one of the known display names or a raw
// numeric fund ID.
type Rakuten struct {
	client  *Client
	baseURL string
}

func NewRakuten(c *Client, baseURL string) *Rakuten {
	if baseURL == "" {
		baseURL = rakutenBase
	}
	return &Rakuten{client: c, baseURL: baseURL}
}

func (r *Rakuten) Name() string { return "rakuten_fund" }

func (r *Rakuten) Fetch(ctx context.Context, symbol string) (model.Quote, error) {
	code, err := fundCode(symbol)
	if err != nil {
		return model.Quote{}, err
	}

	doc, err := r.client.getDoc(ctx, r.baseURL+"?ID="+code)
	if err != nil {
		return model.Quote{}, err
	}

	raw, ok := selectFirst(doc, "span.value", "dd.fund-detail-nav")
	if !ok {
		return model.Quote{}, fmt.Errorf("%w: %s: nav element not found for %q", model.ErrParseFailure, r.Name(), symbol)
	}

	price, err := parsePrice(r.Name(), raw)
	if err != nil {
		return model.Quote{}, err
	}

	return model.Quote{
		Symbol:       symbol,
		Name:         symbol,
		CurrentPrice: price,
		FetchedAt:    time.Now(),
		Source:       r.Name(),
	}, nil
}

func fundCode(symbol string) (string, error) {
	if code, ok := fundCodes[strings.TrimSpace(symbol)]; ok {
		return code, nil
	}
	// raw fund IDs are digits only
	trimmed := strings.TrimSpace(symbol)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty fund symbol", model.ErrUnsupportedAsset)
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: fund %q", model.ErrUnsupportedAsset, symbol)
		}
	}
	return trimmed, nil
}
