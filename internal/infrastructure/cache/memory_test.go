package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"assetwatch/internal/domain/model"
)

func testQuote(price int64) model.Quote {
	return model.Quote{
		Symbol:       "BTC",
		CurrentPrice: decimal.NewFromInt(price),
		FetchedAt:    time.Now(),
		Source:       "test",
	}
}

func TestMemoryGetWithinTTL(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	q := model.PriceQuery{Kind: model.KindCrypto, Symbol: "BTC"}

	m.Put(ctx, q, testQuote(9800000), 5*time.Minute)

	got, ok := m.Get(ctx, q)
	if !ok {
		t.Fatal("expected hit inside TTL")
	}
	if got.CurrentPrice.String() != "9800000" {
		t.Errorf("price = %s, want 9800000", got.CurrentPrice)
	}
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	q := model.PriceQuery{Kind: model.KindGold, Symbol: "GOLD"}

	base := time.Now()
	m.now = func() time.Time { return base }
	m.Put(ctx, q, testQuote(17880), time.Minute)

	if _, ok := m.Get(ctx, q); !ok {
		t.Fatal("expected hit before expiry")
	}

	// exactly at expiry is already a miss
	m.now = func() time.Time { return base.Add(time.Minute) }
	if _, ok := m.Get(ctx, q); ok {
		t.Error("expected miss at expiry boundary")
	}

	m.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, ok := m.Get(ctx, q); ok {
		t.Error("expected miss after expiry")
	}
}

func TestMemoryOverwrite(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	q := model.PriceQuery{Kind: model.KindJPStock, Symbol: "7203"}

	m.Put(ctx, q, testQuote(2800), time.Minute)
	m.Put(ctx, q, testQuote(2890), time.Minute)

	got, ok := m.Get(ctx, q)
	if !ok {
		t.Fatal("expected hit")
	}
	if got.CurrentPrice.String() != "2890" {
		t.Errorf("price = %s, want refreshed 2890", got.CurrentPrice)
	}
	if m.Len() != 1 {
		t.Errorf("entries = %d, want 1 per distinct query", m.Len())
	}
}

func TestMemoryZeroTTLIgnored(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	q := model.PriceQuery{Kind: model.KindFund, Symbol: "S&P500"}

	m.Put(ctx, q, testQuote(27345), 0)
	if _, ok := m.Get(ctx, q); ok {
		t.Error("zero TTL put should not create an entry")
	}
}

func TestMemoryConcurrentAccess(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n int64) {
			defer wg.Done()
			q := model.PriceQuery{Kind: model.KindCrypto, Symbol: "BTC"}
			m.Put(ctx, q, testQuote(n), time.Minute)
		}(int64(i))
		go func() {
			defer wg.Done()
			q := model.PriceQuery{Kind: model.KindCrypto, Symbol: "BTC"}
			m.Get(ctx, q)
		}()
	}
	wg.Wait()

	if _, ok := m.Get(ctx, model.PriceQuery{Kind: model.KindCrypto, Symbol: "BTC"}); !ok {
		t.Fatal("expected an entry after concurrent writes")
	}
}
