package source

import (
	"context"
	"fmt"
	"time"

	"assetwatch/internal/domain/model"
)

const tanakaGoldURL = "https://gold.tanaka.co.jp/commodity/souba/m-gold.php"

// Tanaka scrapes the Tanaka Kikinzoku retail page for the per-gram gold
// price in yen. The vendor publishes no previous close.
type Tanaka struct {
	client  *Client
	baseURL string
}

func NewTanaka(c *Client, baseURL string) *Tanaka {
	if baseURL == "" {
		baseURL = tanakaGoldURL
	}
	return &Tanaka{client: c, baseURL: baseURL}
}

func (t *Tanaka) Name() string { return "tanaka_gold" }

// Fetch ignores symbol: there is exactly one gold price per day.
func (t *Tanaka) Fetch(ctx context.Context, symbol string) (model.Quote, error) {
	doc, err := t.client.getDoc(ctx, t.baseURL)
	if err != nil {
		return model.Quote{}, err
	}

	raw, ok := selectFirst(doc,
		"table.table_main tr:nth-of-type(2) td:nth-of-type(3)",
		"td.retail_tax",
	)
	if !ok {
		return model.Quote{}, fmt.Errorf("%w: %s: price cell not found", model.ErrParseFailure, t.Name())
	}

	price, err := parsePrice(t.Name(), raw)
	if err != nil {
		return model.Quote{}, err
	}

	return model.Quote{
		Symbol:       symbol,
		Name:         "金(Gold)",
		CurrentPrice: price,
		FetchedAt:    time.Now(),
		Source:       t.Name(),
	}, nil
}
