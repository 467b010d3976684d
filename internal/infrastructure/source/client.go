// Package source holds the per-asset-kind price source adapters.
// Each adapter targets one external endpoint and maps its failures onto
// the shared taxonomy: transport problems become ErrSourceUnreachable,
// shape mismatches become ErrParseFailure with a sample of the raw text.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"assetwatch/internal/domain/model"
	"assetwatch/internal/infrastructure/textparse"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Client wraps the shared http.Client every adapter fetches through.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

func NewClient(timeout time.Duration, userAgent string) *Client {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request %s: %v", model.ErrSourceUnreachable, url, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrSourceUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", model.ErrSourceUnreachable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: http %d from %s", model.ErrSourceUnreachable, resp.StatusCode, url)
	}
	return body, nil
}

// getJSON fetches url and decodes the JSON body into v.
func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	body, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: json decode: %v", model.ErrParseFailure, err)
	}
	return nil
}

// getDoc fetches url and parses the body as an HTML document.
func (c *Client) getDoc(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: html parse: %v", model.ErrParseFailure, err)
	}
	return doc, nil
}

// parsePrice runs the shared text parser and enforces a non-negative price.
func parsePrice(sourceName, raw string) (decimal.Decimal, error) {
	price, err := textparse.Price(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", sourceName, err)
	}
	if price.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s: negative price in %q", model.ErrParseFailure, sourceName, textparse.Clip(raw, 120))
	}
	return price, nil
}

// selectFirst returns the trimmed text of the first selector that matches.
func selectFirst(doc *goquery.Document, selectors ...string) (string, bool) {
	for _, sel := range selectors {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			return node.Text(), true
		}
	}
	return "", false
}
