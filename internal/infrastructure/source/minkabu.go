package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"assetwatch/internal/domain/model"
)

const minkabuBase = "https://cc.minkabu.jp"

// cryptoPairs 支持的币种 -> JPY 交易对路径
var cryptoPairs = map[string]string{
	"BTC":  "btc_jpy",
	"ETH":  "eth_jpy",
	"XRP":  "xrp_jpy",
	"DOGE": "doge_jpy",
}

var cryptoNames = map[string]string{
	"BTC":  "ビットコイン",
	"ETH":  "イーサリアム",
	"XRP":  "リップル",
	"DOGE": "ドージコイン",
}

// Minkabu scrapes the Minkabu crypto aggregator for the yen price of one
// of the supported coins. Anything outside the fixed set is rejected
// before any network call is made.
type Minkabu struct {
	client  *Client
	baseURL string
}

func NewMinkabu(c *Client, baseURL string) *Minkabu {
	if baseURL == "" {
		baseURL = minkabuBase
	}
	return &Minkabu{client: c, baseURL: baseURL}
}

func (m *Minkabu) Name() string { return "minkabu_crypto" }

func (m *Minkabu) Fetch(ctx context.Context, symbol string) (model.Quote, error) {
	upper := strings.ToUpper(strings.TrimSpace(symbol))
	pair, ok := cryptoPairs[upper]
	if !ok {
		return model.Quote{}, fmt.Errorf("%w: crypto symbol %q", model.ErrUnsupportedAsset, symbol)
	}

	doc, err := m.client.getDoc(ctx, m.baseURL+"/pair/"+pair)
	if err != nil {
		return model.Quote{}, err
	}

	raw, ok := selectFirst(doc, "div.md_price", "span.price")
	if !ok {
		return model.Quote{}, fmt.Errorf("%w: %s: price element not found for %s", model.ErrParseFailure, m.Name(), upper)
	}

	price, err := parsePrice(m.Name(), raw)
	if err != nil {
		return model.Quote{}, err
	}

	return model.Quote{
		Symbol:       upper,
		Name:         cryptoNames[upper],
		CurrentPrice: price,
		FetchedAt:    time.Now(),
		Source:       m.Name(),
	}, nil
}
